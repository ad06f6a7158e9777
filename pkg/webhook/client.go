package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

const AlertJobFailed = "job_failed"

// Alert is the JSON body posted to the alert webhook.
type Alert struct {
	Alert     string `json:"alert"`
	Queue     string `json:"queue"`
	JobID     string `json:"jobId"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

type Client struct {
	httpClient *resty.Client
	webhookURL string
}

func NewWebhookClient(cfg environments.AlertConfig) *Client {
	client := resty.New().
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		webhookURL: cfg.WebhookURL,
	}
}

// Enabled reports whether an alert URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.webhookURL != ""
}

func (c *Client) SendAlert(ctx context.Context, alert Alert) error {
	if !c.Enabled() {
		return nil
	}

	if alert.Timestamp == "" {
		alert.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(c.webhookURL)

	duration := time.Since(startTime)

	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}

	logger.Debugf("Alert webhook request completed in %v (status: %d)", duration, resp.StatusCode())

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode())
	}
}

func (c *Client) GetURL() string {
	return c.webhookURL
}
