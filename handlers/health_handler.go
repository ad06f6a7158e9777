package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/wa-inbound-service/pkg/response"
)

type dbPinger interface {
	PingContext(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health checks.
type HealthHandler struct {
	db           dbPinger
	queue        pinger
	cache        pinger
	checkTimeout time.Duration
}

// NewHealthHandler takes an optional cache; pass a nil interface when caching is off.
func NewHealthHandler(db dbPinger, queue pinger, cache pinger) *HealthHandler {
	return &HealthHandler{
		db:           db,
		queue:        queue,
		cache:        cache,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and component statuses (DB, queue and cache).
// @Summary Health check
// @Description Returns overall status with DB, queue and cache connectivity results
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} response.SuccessResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
		overallStatus = "down"
	} else if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "down"
		overallStatus = "down"
	}

	queueStatus := "up"
	if h.queue == nil {
		queueStatus = "down"
		overallStatus = "down"
	} else if err := h.queue.Ping(ctx); err != nil {
		queueStatus = "down"
		overallStatus = "down"
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "down"
			if overallStatus == "ok" {
				overallStatus = "degraded"
			}
		} else {
			cacheStatus = "up"
		}
	}

	body := map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"database": map[string]any{
				"status": dbStatus,
			},
			"queue": map[string]any{
				"status": queueStatus,
			},
			"cache": map[string]any{
				"status": cacheStatus,
			},
		},
	}

	if overallStatus == "down" {
		return response.ServiceUnavailable(c, body)
	}

	return c.JSON(http.StatusOK, body)
}
