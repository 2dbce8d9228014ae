package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkMarkdownByHeadings(t *testing.T) {
	markdown := `Intro paragraph before any heading.

# About Acme

Acme makes widgets.

## Products

Widget One and Widget Two.

### Pricing

Starts at $10.`

	chunks := chunkMarkdownByHeadings(markdown)

	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "Intro paragraph before any heading." {
		t.Errorf("unexpected first chunk: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "# About Acme") {
		t.Errorf("unexpected second chunk: %q", chunks[1])
	}
	if !strings.HasPrefix(chunks[3], "### Pricing") {
		t.Errorf("unexpected last chunk: %q", chunks[3])
	}
}

func TestChunkMarkdownNoHeadings(t *testing.T) {
	chunks := chunkMarkdownByHeadings("Just a plain paragraph.")
	if len(chunks) != 1 || chunks[0] != "Just a plain paragraph." {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}

func TestChunkMarkdownEmpty(t *testing.T) {
	if chunks := chunkMarkdownByHeadings("   \n  "); len(chunks) != 0 {
		t.Errorf("expected no chunks for blank input, got %v", chunks)
	}
}

func TestSmartChunkCapsLongSections(t *testing.T) {
	long := "# Heading\n" + strings.Repeat("a", 20000)

	chunks := smartChunk(long)

	if len(chunks) < 3 {
		t.Fatalf("expected long section to be split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 8000 {
			t.Errorf("chunk %d exceeds max size: %d chars", i, len(chunk))
		}
	}

	// All content is preserved
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	if total != len(long) {
		t.Errorf("content lost in chunking: %d != %d", total, len(long))
	}
}

func TestSmartChunkShortDocumentUnchanged(t *testing.T) {
	chunks := smartChunk("# Title\nShort content.")
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestSmartChunkKeepsRunesIntact(t *testing.T) {
	// Multi-byte text long enough to force several raw splits.
	text := strings.Repeat("ü", 20000)

	chunks := smartChunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var rebuilt strings.Builder
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d contains invalid UTF-8 at a split boundary", i)
		}
		rebuilt.WriteString(chunk)
	}
	if rebuilt.String() != text {
		t.Error("chunks do not reassemble into the original text")
	}
}
