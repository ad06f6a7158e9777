package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/internal/service"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
	"github.com/onurcolak/wa-inbound-service/pkg/response"
)

type opsReader interface {
	ListClaims(ctx context.Context, status *domain.ClaimStatus, page, pageSize int) ([]domain.ProcessingClaim, int64, error)
	GetClaim(ctx context.Context, waAccountID, waMessageID string) (*domain.ProcessingClaim, error)
	ClaimStats(ctx context.Context) (domain.ClaimStats, error)
	JobCounts(ctx context.Context) (queue.Counts, error)
	ListFailedJobs(ctx context.Context, page, pageSize int) ([]queue.JobInfo, int64, error)
	RetryJob(ctx context.Context, id string) (*queue.JobInfo, error)
}

// OpsHandler exposes claim and queue inspection to operators.
type OpsHandler struct {
	ops opsReader
}

func NewOpsHandler(ops opsReader) *OpsHandler {
	return &OpsHandler{ops: ops}
}

// ListClaims godoc
// @Summary List processing claims
// @Description Retrieves a paginated list of processing claims with optional status filter, most recently updated first
// @Tags ops
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param status query string false "Filter by status (processing, done, failed)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/claims [get]
func (h *OpsHandler) ListClaims(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	status, err := service.ParseClaimStatus(c.QueryParam("status"))
	if err != nil {
		return response.BadRequest(c, err)
	}

	claims, totalCount, err := h.ops.ListClaims(c.Request().Context(), status, page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, claims, page, pageSize, totalCount)
}

// GetClaim godoc
// @Summary Get a processing claim
// @Tags ops
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Param accountId path string true "WhatsApp account id"
// @Param messageId path string true "Provider message id"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/claims/{accountId}/{messageId} [get]
func (h *OpsHandler) GetClaim(c echo.Context) error {
	claim, err := h.ops.GetClaim(c.Request().Context(), c.Param("accountId"), c.Param("messageId"))
	if err != nil {
		return response.InternalServerError(c, err)
	}
	if claim == nil {
		return response.NotFound(c, "claim not found")
	}

	return response.Ok(c, claim)
}

// GetClaimStats godoc
// @Summary Get claim statistics
// @Description Returns count of claims by status
// @Tags ops
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/claims/stats [get]
func (h *OpsHandler) GetClaimStats(c echo.Context) error {
	stats, err := h.ops.ClaimStats(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, map[string]any{
		"processing": stats.Processing,
		"done":       stats.Done,
		"failed":     stats.Failed,
		"total":      stats.Processing + stats.Done + stats.Failed,
	})
}

// GetJobCounts godoc
// @Summary Get queue counts
// @Description Returns the number of jobs per queue state
// @Tags ops
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/jobs/counts [get]
func (h *OpsHandler) GetJobCounts(c echo.Context) error {
	counts, err := h.ops.JobCounts(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, counts)
}

// ListFailedJobs godoc
// @Summary List failed jobs
// @Description Retrieves terminally failed jobs, most recent first
// @Tags ops
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/jobs/failed [get]
func (h *OpsHandler) ListFailedJobs(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	jobs, totalCount, err := h.ops.ListFailedJobs(c.Request().Context(), page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, jobs, page, pageSize, totalCount)
}

// RetryJob godoc
// @Summary Retry a failed job
// @Description Moves a terminally failed job back to the wait list with a fresh attempt budget
// @Tags ops
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Param id path string true "Job id (<waAccountId>:<waMessageId>)"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/jobs/{id}/retry [post]
func (h *OpsHandler) RetryJob(c echo.Context) error {
	job, err := h.ops.RetryJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Job requeued", job)
}

func parsePaginationParams(c echo.Context) (int, int, error) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)

	pageStr := c.QueryParam("page")
	pageSizeStr := c.QueryParam("pageSize")

	// Page
	page := defaultPage
	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
		page = p
	}

	// Page size
	pageSize := defaultPageSize
	if pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps <= 0 || ps > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}

		pageSize = ps
	}

	return page, pageSize, nil
}
