package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlavelle/wardroster/pkg/core/offers"
	"github.com/mlavelle/wardroster/pkg/core/services"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate this month's schedule proposal and send change offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			group, _ := cmd.Flags().GetString("group")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := services.GenerateSchedule(
				app.Ctx,
				app.Database,
				app.notifier(),
				app.Cfg,
				app.Logger,
				group,
				dryRun,
				time.Now(),
			)
			if err != nil {
				return err
			}

			// Display results
			if result.DryRun {
				fmt.Printf("\n✓ Generation complete (DRY RUN - nothing saved or sent)\n\n")
			} else {
				fmt.Printf("\n✓ Generation complete!\n\n")
			}

			if result.Requester != offers.SystemRequester {
				fmt.Printf("Winning request: %s (reward %d tokens)\n\n", result.Requester, result.Reward)
			}

			fmt.Printf("Free moves:     %d\n", len(result.FreeMoves))
			fmt.Printf("Change notices: %d\n", len(result.Notes))
			fmt.Printf("Offers logged:  %d (%d sent)\n", len(result.Offers), result.OffersSent)

			if len(result.Offers) > 0 {
				fmt.Printf("\nPending offers:\n")
				for _, offer := range result.Offers {
					fmt.Printf("  - %s → %s (%d changes, expires %s)\n",
						offer.ID,
						offer.Employee,
						len(offer.Changes),
						offer.Expiry.Format("15:04"),
					)
				}
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("group", "", "Restrict scheduling to one role group")
	cmd.Flags().Bool("dry-run", false, "Run without sending emails or saving anything")

	return cmd
}
