package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/handlers"
	"github.com/onurcolak/wa-inbound-service/internal/middlewares"
)

// Handlers groups everything RegisterRoutes mounts. Worker is nil unless the pool
// runs inside the API process.
type Handlers struct {
	Health  *handlers.HealthHandler
	Webhook *handlers.WebhookHandler
	Send    *handlers.SendHandler
	Ops     *handlers.OpsHandler
	Worker  *handlers.WorkerHandler
}

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(e *echo.Echo, h Handlers, cfg *environments.Config) {
	e.GET("/health", h.Health.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	internalAuth := middlewares.APIKeyAuth(cfg.Auth.InternalAPIKey)

	// Provider-facing webhook; authenticated by body signature, not by API key.
	wa := e.Group("/wa")
	wa.GET("/webhook", h.Webhook.Verify)
	wa.POST("/webhook", h.Webhook.Receive)
	wa.POST("/send", h.Send.SendMessage, internalAuth)

	// API v1 base group
	v1 := e.Group("/api/v1", internalAuth)

	claims := v1.Group("/claims")
	claims.GET("", h.Ops.ListClaims)
	claims.GET("/stats", h.Ops.GetClaimStats)
	claims.GET("/:accountId/:messageId", h.Ops.GetClaim)

	jobs := v1.Group("/jobs")
	jobs.GET("/counts", h.Ops.GetJobCounts)
	jobs.GET("/failed", h.Ops.ListFailedJobs)
	jobs.POST("/:id/retry", h.Ops.RetryJob)

	if h.Worker != nil {
		workerGroup := v1.Group("/worker")
		workerGroup.POST("/start", h.Worker.StartWorker)
		workerGroup.POST("/stop", h.Worker.StopWorker)
		workerGroup.GET("/status", h.Worker.GetWorkerStatus)
	}
}
