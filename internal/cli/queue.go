package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// QueueCmd returns the queue command
func QueueCmd(open OpenFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and repair the inbound job queue",
	}

	cmd.AddCommand(queueCountsCmd(open))
	cmd.AddCommand(queueFailedCmd(open))
	cmd.AddCommand(queueRetryCmd(open))

	return cmd
}

func queueCountsCmd(open OpenFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show the number of jobs per state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			ops, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			counts, err := ops.JobCounts(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STATE\tJOBS")
			fmt.Fprintf(w, "waiting\t%d\n", counts.Waiting)
			fmt.Fprintf(w, "active\t%d\n", counts.Active)
			fmt.Fprintf(w, "delayed\t%d\n", counts.Delayed)
			fmt.Fprintf(w, "completed\t%d\n", counts.Completed)
			fmt.Fprintf(w, "failed\t%s\n", countColor(counts.Failed, color.FgRed))
			return w.Flush()
		},
	}
}

func queueFailedCmd(open OpenFunc) *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List terminally failed jobs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			ops, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			jobs, total, err := ops.ListFailedJobs(ctx, page, pageSize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No failed jobs")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tATTEMPTS\tFINISHED\tREASON")
			for _, job := range jobs {
				finished := "-"
				if job.FinishedAt != nil {
					finished = job.FinishedAt.UTC().Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%s\t%d/%d\t%s\t%s\n",
					job.ID,
					job.AttemptsMade,
					job.MaxAttempts,
					finished,
					color.New(color.FgRed).Sprint(job.FailedReason),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nShowing %d of %d (page %d)\n", len(jobs), total, page)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Page size")

	return cmd
}

func queueRetryCmd(open OpenFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [job-id]",
		Short: "Move a failed job back to the wait list",
		Long: `Resubmit a terminally failed job with a fresh attempt budget.

The job id is <waAccountId>:<waMessageId>. A job whose claim is already done is
skipped by the worker, so retrying never runs business logic twice.

Examples:
  wactl queue retry 6b1f...:wamid.HBgL...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			ops, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			job, err := ops.RetryJob(ctx, args[0])
			if err != nil {
				return err
			}

			state := "waiting"
			if job != nil {
				state = job.State
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Job %s requeued (%s)\n", color.New(color.FgGreen).Sprint("✓"), args[0], state)
			return nil
		},
	}
}
