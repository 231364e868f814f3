package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlavelle/wardroster/pkg/core/services"
)

// FinalizeCmd creates the finalize command
func FinalizeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Process offer replies, reconcile the sandbox, and settle tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := services.ProcessReplies(
				app.Ctx,
				app.Database,
				app.notifier(),
				app.replySource(),
				app.Cfg,
				app.Logger,
				dryRun,
				time.Now(),
			)
			if err != nil {
				return err
			}

			// Display results
			if result.DryRun {
				fmt.Printf("\n✓ Reply processing complete (DRY RUN - nothing saved or sent)\n\n")
			} else {
				fmt.Printf("\n✓ Reply processing complete!\n\n")
			}

			fmt.Printf("Accepted: %d\n", result.Accepted)
			fmt.Printf("Declined: %d\n", result.Declined)
			fmt.Printf("Expired:  %d\n", result.Expired)

			if result.Reverted {
				fmt.Printf("\n⚠️  Changes were reverted due to failed offers.\n")
				for _, requester := range result.FailedRequesters {
					fmt.Printf("  ✗ request by %s not accommodated\n", requester)
				}
			}

			if len(result.Transfers) > 0 {
				fmt.Printf("\nToken transfers:\n")
				for _, transfer := range result.Transfers {
					fmt.Printf("  %s → %s: %d tokens\n", transfer.From, transfer.To, transfer.Amount)
				}
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without sending emails or saving anything")

	return cmd
}
