package cli

import (
	"context"

	"github.com/fatih/color"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
)

// Ops is the operator surface the commands need. *service.OpsService satisfies it.
type Ops interface {
	JobCounts(ctx context.Context) (queue.Counts, error)
	ListFailedJobs(ctx context.Context, page, pageSize int) ([]queue.JobInfo, int64, error)
	RetryJob(ctx context.Context, id string) (*queue.JobInfo, error)
	GetClaim(ctx context.Context, waAccountID, waMessageID string) (*domain.ProcessingClaim, error)
	ClaimStats(ctx context.Context) (domain.ClaimStats, error)
}

// OpenFunc connects to the backing stores. The returned func releases them.
type OpenFunc func(ctx context.Context) (Ops, func(), error)

func claimStatusColor(status domain.ClaimStatus) string {
	switch status {
	case domain.ClaimDone:
		return color.New(color.FgGreen).Sprint(status)
	case domain.ClaimFailed:
		return color.New(color.FgRed).Sprint(status)
	default:
		return color.New(color.FgYellow).Sprint(status)
	}
}

func countColor(n int64, c color.Attribute) string {
	if n == 0 {
		return "0"
	}
	return color.New(c).Sprint(n)
}
