package graphapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

var (
	ErrMissingAccessToken = errors.New("WA_ACCESS_TOKEN is required")
	ErrMissingMessageID   = errors.New("graph api success but missing messages[0].id")
)

// APIError is a non-2xx answer from the Graph API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error (%d): %s", e.StatusCode, e.Message)
}

type TextBody struct {
	Body string `json:"body"`
}

type Language struct {
	Code string `json:"code"`
}

type Template struct {
	Name       string            `json:"name"`
	Language   Language          `json:"language"`
	Components []json.RawMessage `json:"components,omitempty"`
}

// Message is the request body of POST /{version}/{phone_number_id}/messages.
type Message struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             *TextBody `json:"text,omitempty"`
	Template         *Template `json:"template,omitempty"`
}

func NewTextMessage(to, text string) Message {
	return Message{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &TextBody{Body: text},
	}
}

func NewTemplateMessage(to, name, languageCode string, components []json.RawMessage) Message {
	return Message{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template: &Template{
			Name:       name,
			Language:   Language{Code: languageCode},
			Components: components,
		},
	}
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SendResult carries the provider message id and the raw response body.
type SendResult struct {
	MessageID string
	Response  json.RawMessage
}

type Client struct {
	httpClient     *resty.Client
	baseURL        string
	accessToken    string
	defaultVersion string
}

// NewClient builds a Graph API client. Sends are not retried: a timed-out POST may
// have been delivered, and a retry would message the user twice.
func NewClient(cfg environments.WhatsAppConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:     client,
		baseURL:        strings.TrimRight(cfg.GraphBaseURL, "/"),
		accessToken:    cfg.AccessToken,
		defaultVersion: cfg.GraphAPIVersion,
	}
}

// NormalizeVersion prefixes v when missing ("20.0" -> "v20.0").
func NormalizeVersion(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// ResolveVersion picks the account override, then the configured default.
func (c *Client) ResolveVersion(accountVersion *string) string {
	if accountVersion != nil && strings.TrimSpace(*accountVersion) != "" {
		return NormalizeVersion(strings.TrimSpace(*accountVersion))
	}
	if c.defaultVersion != "" {
		return NormalizeVersion(c.defaultVersion)
	}
	return "v20.0"
}

func (c *Client) Send(ctx context.Context, phoneNumberID, version string, msg Message) (*SendResult, error) {
	if c.accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, NormalizeVersion(version), phoneNumberID)

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.accessToken).
		SetBody(msg).
		Post(url)

	duration := time.Since(startTime)

	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	logger.Infof("Graph API send to %s completed in %v (status: %d)", phoneNumberID, duration, resp.StatusCode())

	body := resp.Body()

	if resp.IsError() {
		message := "Unknown Graph API error"
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: message}
	}

	var parsed sendResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Messages) == 0 || parsed.Messages[0].ID == "" {
		return nil, ErrMissingMessageID
	}

	raw := json.RawMessage(body)
	if !json.Valid(raw) {
		raw = json.RawMessage("{}")
	}

	return &SendResult{MessageID: parsed.Messages[0].ID, Response: raw}, nil
}
