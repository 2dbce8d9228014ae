// services/chunker.go
package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var headingRe = regexp.MustCompile(`(?m)^(#{1,3}\s.*)$`)

// chunkMarkdownByHeadings splits markdown text at h1-h3 headings.
func chunkMarkdownByHeadings(markdown string) []string {
	indexes := headingRe.FindAllStringIndex(markdown, -1)
	var chunks []string
	start := 0

	if len(indexes) > 0 && indexes[0][0] > 0 {
		firstChunk := strings.TrimSpace(markdown[0:indexes[0][0]])
		if firstChunk != "" {
			chunks = append(chunks, firstChunk)
		}
	} else if len(indexes) == 0 && strings.TrimSpace(markdown) != "" {
		chunks = append(chunks, strings.TrimSpace(markdown))
		return chunks
	}

	for i, index := range indexes {
		start = index[0]
		var end int
		if i < len(indexes)-1 {
			end = indexes[i+1][0]
		} else {
			end = len(markdown)
		}
		chunk := strings.TrimSpace(markdown[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// smartChunk splits markdown semantically by headings, then caps each chunk at
// a character limit that stays well under the embedding token limit.
func smartChunk(text string) []string {
	// 1 token is ~4 chars, so 8192 tokens is ~32k chars. 8000 is a very safe buffer.
	const maxChunkSize = 8000

	var finalChunks []string

	initialChunks := chunkMarkdownByHeadings(text)

	for _, chunk := range initialChunks {
		if len(chunk) <= maxChunkSize {
			finalChunks = append(finalChunks, chunk)
			continue
		}

		// This chunk is too long, so we must split it further by character length.
		// Boundaries back up to a rune start so no chunk holds a torn multi-byte
		// character.
		for i := 0; i < len(chunk); {
			end := i + maxChunkSize
			if end >= len(chunk) {
				end = len(chunk)
			} else {
				for end > i && !utf8.RuneStart(chunk[end]) {
					end--
				}
				if end == i {
					// Not valid UTF-8, cut at the raw limit.
					end = i + maxChunkSize
				}
			}
			finalChunks = append(finalChunks, chunk[i:end])
			i = end
		}
	}
	return finalChunks
}
