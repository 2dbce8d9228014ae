// workflows/monitoring.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
)

// WeeklyLoadAnalyzer checks how evenly brands are spread across the weekly
// schedule slots.
func (p *ScheduledProcessor) WeeklyLoadAnalyzer() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "weekly-load-analyzer",
			Name: "Analyze Weekly Load Distribution",
		},
		inngestgo.CronTrigger("0 0 * * 0"), // Every Sunday at midnight
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			distribution, err := step.Run(ctx, "get-weekday-distribution", func(ctx context.Context) (map[string]int, error) {
				counts := make(map[string]int)
				for dow := 0; dow < 7; dow++ {
					ids, err := p.brandService.GetBrandIDsByScheduledDOW(ctx, dow)
					if err != nil {
						return nil, fmt.Errorf("failed to count brands for dow %d: %w", dow, err)
					}
					// Schedule uses Monday=0, time.Weekday uses Sunday=0
					day := time.Weekday((dow + 1) % 7).String()
					counts[day] = len(ids)
				}
				return counts, nil
			})

			if err != nil {
				return nil, err
			}

			var total int
			for _, count := range distribution {
				total += count
			}
			avgPerDay := total / 7

			highLoadDays := []string{}
			lowLoadDays := []string{}

			if avgPerDay > 0 {
				for day, count := range distribution {
					variance := float64(count-avgPerDay) / float64(avgPerDay) * 100
					if variance > 20 {
						highLoadDays = append(highLoadDays, fmt.Sprintf("%s: %d brands (+%.1f%%)", day, count, variance))
					} else if variance < -20 {
						lowLoadDays = append(lowLoadDays, fmt.Sprintf("%s: %d brands (%.1f%%)", day, count, variance))
					}
				}
			}

			return map[string]interface{}{
				"total_brands":       total,
				"avg_brands_per_day": avgPerDay,
				"distribution":       distribution,
				"high_load_days":     highLoadDays,
				"low_load_days":      lowLoadDays,
				"recommendation":     generateLoadRecommendation(distribution, avgPerDay),
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create weekly load analyzer function: %v\n", err)
	}

	return fn
}

func generateLoadRecommendation(distribution map[string]int, avg int) string {
	if avg == 0 {
		return "Not enough brands to analyze load distribution"
	}

	maxVariance := 0.0
	for _, count := range distribution {
		variance := float64(abs(count-avg)) / float64(avg)
		if variance > maxVariance {
			maxVariance = variance
		}
	}

	if maxVariance < 0.2 {
		return "Load is well distributed across weekdays"
	} else if maxVariance < 0.5 {
		return "Load distribution is acceptable but could be improved"
	}
	return "Consider rebalancing brand schedules across weekdays"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
