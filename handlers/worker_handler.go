package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/wa-inbound-service/internal/worker"
	"github.com/onurcolak/wa-inbound-service/pkg/response"
)

type workerPool interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	GetStatus() worker.PoolStatus
}

// WorkerHandler controls the worker pool embedded in the API process.
type WorkerHandler struct {
	pool workerPool
	ctx  context.Context
}

func NewWorkerHandler(pool workerPool, ctx context.Context) *WorkerHandler {
	return &WorkerHandler{
		pool: pool,
		ctx:  ctx,
	}
}

// StartWorker godoc
// @Summary Start the embedded worker pool
// @Tags worker
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/worker/start [post]
func (h *WorkerHandler) StartWorker(c echo.Context) error {
	if h.pool.IsRunning() {
		return response.OkWithMessage(c, "Worker pool is already running", h.pool.GetStatus())
	}

	if err := h.pool.Start(h.ctx); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Worker pool started successfully", h.pool.GetStatus())
}

// StopWorker godoc
// @Summary Stop the embedded worker pool
// @Description Stops fetching and waits for in-flight jobs to finish
// @Tags worker
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/worker/stop [post]
func (h *WorkerHandler) StopWorker(c echo.Context) error {
	if !h.pool.IsRunning() {
		return response.OkWithMessage(c, "Worker pool is already stopped", h.pool.GetStatus())
	}

	if err := h.pool.Stop(); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Worker pool stopped successfully", h.pool.GetStatus())
}

// GetWorkerStatus godoc
// @Summary Get worker pool status
// @Tags worker
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/worker/status [get]
func (h *WorkerHandler) GetWorkerStatus(c echo.Context) error {
	return response.Ok(c, h.pool.GetStatus())
}
