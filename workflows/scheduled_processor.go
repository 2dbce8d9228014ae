// workflows/scheduled_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/beenruuu/mentha/services"
)

type ScheduledProcessor struct {
	brandService services.BrandService
	client       inngestgo.Client
}

func NewScheduledProcessor(brandService services.BrandService) *ScheduledProcessor {
	return &ScheduledProcessor{
		brandService: brandService,
	}
}

func (p *ScheduledProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// DailyBrandProcessor fans out analysis events for every brand whose weekly
// schedule lands on today.
func (p *ScheduledProcessor) DailyBrandProcessor() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-brand-processor",
			Name: "Daily Brand Processor - Weekly Cycle",
		},
		inngestgo.CronTrigger("0 2 * * *"), // Every day at 2 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			now := time.Now()

			// Step 1: Get brands scheduled for this day of the week
			brandIDs, err := step.Run(ctx, "get-scheduled-brands", func(ctx context.Context) ([]string, error) {
				return p.brandService.GetBrandsScheduledForDate(ctx, now)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get scheduled brands: %w", err)
			}

			if len(brandIDs) == 0 {
				return map[string]interface{}{
					"execution_date":     now.Format("2006-01-02"),
					"weekday":            now.Weekday().String(),
					"total_brands_found": 0,
					"message":            fmt.Sprintf("No brands scheduled for %s", now.Weekday().String()),
				}, nil
			}

			// Step 2: Trigger an idempotent step-run per brand so a retry only
			// resends the events that didn't complete.
			for _, brandID := range brandIDs {
				stepName := fmt.Sprintf("trigger-analysis-%s", brandID)

				_, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
					evt := inngestgo.Event{
						Name: "brand.analyze",
						Data: map[string]interface{}{
							"brand_id":     brandID,
							"triggered_by": "automatic_scheduler",
						},
					}
					return p.client.Send(ctx, evt)
				})

				if err != nil {
					// Log and continue so one bad brand doesn't block the rest
					fmt.Printf("Warning: Failed to send event for brand %s: %v\n", brandID, err)
				}
			}

			return map[string]interface{}{
				"execution_date":     now.Format("2006-01-02"),
				"weekday":            now.Weekday().String(),
				"total_brands_found": len(brandIDs),
				"brands_processed":   brandIDs,
				"message":            fmt.Sprintf("Triggered %d analysis pipelines for %s", len(brandIDs), now.Weekday().String()),
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create daily brand processor function: %v\n", err)
	}

	return fn
}
