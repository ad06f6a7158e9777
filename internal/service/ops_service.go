package service

import (
	"context"
	"fmt"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
)

type claimReader interface {
	Get(ctx context.Context, waAccountID, waMessageID string) (*domain.ProcessingClaim, error)
	List(ctx context.Context, status *domain.ClaimStatus, page, pageSize int) ([]domain.ProcessingClaim, int64, error)
	Stats(ctx context.Context) (domain.ClaimStats, error)
}

type queueInspector interface {
	Counts(ctx context.Context) (queue.Counts, error)
	ListFailed(ctx context.Context, page, pageSize int) ([]queue.JobInfo, int64, error)
	RetryFailed(ctx context.Context, id string) error
	GetJob(ctx context.Context, id string) (*queue.JobInfo, error)
}

// OpsService backs the operator API and CLI: claim inspection and manual
// resurrection of terminally failed jobs.
type OpsService struct {
	claims claimReader
	queue  queueInspector
}

func NewOpsService(claims claimReader, queue queueInspector) *OpsService {
	return &OpsService{claims: claims, queue: queue}
}

// ParseClaimStatus maps an optional filter value; "" means no filter.
func ParseClaimStatus(s string) (*domain.ClaimStatus, error) {
	if s == "" {
		return nil, nil
	}

	status := domain.ClaimStatus(s)
	switch status {
	case domain.ClaimProcessing, domain.ClaimDone, domain.ClaimFailed:
		return &status, nil
	default:
		return nil, fmt.Errorf("status must be one of processing, done, failed")
	}
}

func (s *OpsService) ListClaims(
	ctx context.Context,
	status *domain.ClaimStatus,
	page, pageSize int,
) ([]domain.ProcessingClaim, int64, error) {
	return s.claims.List(ctx, status, page, pageSize)
}

func (s *OpsService) GetClaim(ctx context.Context, waAccountID, waMessageID string) (*domain.ProcessingClaim, error) {
	return s.claims.Get(ctx, waAccountID, waMessageID)
}

func (s *OpsService) ClaimStats(ctx context.Context) (domain.ClaimStats, error) {
	return s.claims.Stats(ctx)
}

func (s *OpsService) JobCounts(ctx context.Context) (queue.Counts, error) {
	return s.queue.Counts(ctx)
}

func (s *OpsService) ListFailedJobs(ctx context.Context, page, pageSize int) ([]queue.JobInfo, int64, error) {
	return s.queue.ListFailed(ctx, page, pageSize)
}

// RetryJob resubmits a failed job. The claim row is left as is: a failed claim is
// reclaimable, and a done claim makes the worker skip the job.
func (s *OpsService) RetryJob(ctx context.Context, id string) (*queue.JobInfo, error) {
	if err := s.queue.RetryFailed(ctx, id); err != nil {
		return nil, err
	}

	return s.queue.GetJob(ctx, id)
}
