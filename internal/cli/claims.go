package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ClaimsCmd returns the claims command
func ClaimsCmd(open OpenFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "Inspect inbound processing claims",
	}

	cmd.AddCommand(claimsShowCmd(open))
	cmd.AddCommand(claimsStatsCmd(open))

	return cmd
}

func claimsShowCmd(open OpenFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show [account-id] [message-id]",
		Short: "Show the claim for one inbound message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			ops, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			claim, err := ops.GetClaim(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if claim == nil {
				return fmt.Errorf("no claim for %s:%s", args[0], args[1])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Claim %s:%s\n", claim.WaAccountID, claim.WaMessageID)
			fmt.Fprintf(out, "  Status:    %s\n", claimStatusColor(claim.Status))
			fmt.Fprintf(out, "  Attempts:  %d\n", claim.Attempts)
			fmt.Fprintf(out, "  Locked at: %s\n", claim.LockedAt.UTC().Format("2006-01-02 15:04:05"))
			if claim.ProcessedAt != nil {
				fmt.Fprintf(out, "  Processed: %s\n", claim.ProcessedAt.UTC().Format("2006-01-02 15:04:05"))
			}
			if claim.LastError != nil {
				fmt.Fprintf(out, "  Error:     %s\n", color.New(color.FgRed).Sprint(*claim.LastError))
			}
			return nil
		},
	}
}

func claimsStatsCmd(open OpenFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show claim counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			ops, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			stats, err := ops.ClaimStats(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STATUS\tCLAIMS")
			fmt.Fprintf(w, "processing\t%s\n", countColor(stats.Processing, color.FgYellow))
			fmt.Fprintf(w, "done\t%d\n", stats.Done)
			fmt.Fprintf(w, "failed\t%s\n", countColor(stats.Failed, color.FgRed))
			fmt.Fprintf(w, "total\t%d\n", stats.Processing+stats.Done+stats.Failed)
			return w.Flush()
		},
	}
}
