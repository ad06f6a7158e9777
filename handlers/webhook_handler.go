package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/wa-inbound-service/internal/service"
	"github.com/onurcolak/wa-inbound-service/internal/signature"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

type webhookIngestor interface {
	Ingest(ctx context.Context, rawBody []byte, signatureHeader string) (service.Outcome, error)
}

// WebhookHandler receives provider webhook deliveries.
type WebhookHandler struct {
	ingestor    webhookIngestor
	verifyToken string
}

func NewWebhookHandler(ingestor webhookIngestor, verifyToken string) *WebhookHandler {
	return &WebhookHandler{ingestor: ingestor, verifyToken: verifyToken}
}

// Verify godoc
// @Summary Webhook subscription handshake
// @Description Echoes hub.challenge when hub.mode is subscribe and hub.verify_token matches WA_VERIFY_TOKEN
// @Tags webhook
// @Produce plain
// @Param hub.mode query string true "Must be subscribe"
// @Param hub.verify_token query string true "Verify token"
// @Param hub.challenge query string true "Challenge to echo"
// @Success 200 {string} string "challenge"
// @Failure 403 {string} string "Forbidden"
// @Router /wa/webhook [get]
func (h *WebhookHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		return c.String(http.StatusOK, challenge)
	}

	return c.String(http.StatusForbidden, "Forbidden")
}

// Receive godoc
// @Summary Receive webhook delivery
// @Description Verifies X-Hub-Signature-256 over the raw body, persists messages and statuses, and enqueues inbound jobs
// @Tags webhook
// @Accept json
// @Produce plain
// @Param X-Hub-Signature-256 header string true "sha256=<hex hmac of body>"
// @Success 200 {string} string "OK"
// @Failure 403 {string} string "Invalid signature"
// @Failure 500 {string} string "Internal error"
// @Router /wa/webhook [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Warnf("Failed to read webhook body: %v", err)
		return c.String(http.StatusBadRequest, "Bad request")
	}

	outcome, err := h.ingestor.Ingest(c.Request().Context(), rawBody, c.Request().Header.Get(signature.Header))
	if err != nil {
		logger.Errorf("Webhook ingestion failed: %v", err)
		return c.String(http.StatusInternalServerError, "Internal error")
	}

	if outcome.Kind == service.OutcomeRejected {
		return c.String(http.StatusForbidden, "Invalid signature")
	}

	return c.String(http.StatusOK, "OK")
}
