package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/internal/service"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
	"github.com/onurcolak/wa-inbound-service/pkg/response"
	"github.com/onurcolak/wa-inbound-service/pkg/validator"
)

type messageSender interface {
	Send(ctx context.Context, in service.SendInput) (*service.SendResult, error)
}

type SendHandler struct {
	sender messageSender
}

func NewSendHandler(sender messageSender) *SendHandler {
	return &SendHandler{sender: sender}
}

type TemplateRequest struct {
	Name         string            `json:"name" validate:"required"`
	LanguageCode string            `json:"languageCode" validate:"required"`
	Components   []json.RawMessage `json:"components,omitempty"`
}

// SendMessageRequest addresses the account by waAccountId or phoneNumberId.
type SendMessageRequest struct {
	WaAccountID   string           `json:"waAccountId" validate:"required_without=PhoneNumberID"`
	PhoneNumberID string           `json:"phoneNumberId"`
	To            string           `json:"to" validate:"required,msisdn"`
	Type          string           `json:"type" validate:"required,oneof=text template"`
	Text          string           `json:"text" validate:"required_if=Type text,max=4096"`
	Template      *TemplateRequest `json:"template" validate:"required_if=Type template"`
}

// SendMessage godoc
// @Summary Send a WhatsApp message
// @Description Sends a text or template message through the Graph API and records the outbound message
// @Tags send
// @Accept json
// @Produce json
// @Param x-internal-key header string true "Internal API key"
// @Param request body SendMessageRequest true "Message to send"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} validator.ValidationErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /wa/send [post]
func (h *SendHandler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	in := service.SendInput{
		WaAccountID:   req.WaAccountID,
		PhoneNumberID: req.PhoneNumberID,
		To:            req.To,
		Type:          req.Type,
		Text:          req.Text,
	}
	if req.Template != nil {
		in.Template = &service.TemplateInput{
			Name:         req.Template.Name,
			LanguageCode: req.Template.LanguageCode,
			Components:   req.Template.Components,
		}
	}

	result, err := h.sender.Send(c.Request().Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedMessageType):
			return response.BadRequest(c, err)
		case errors.Is(err, domain.ErrAccountNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrUpstreamSend):
			logger.Warnf("Send to %s failed upstream: %v", req.To, err)
			return response.BadGateway(c, err)
		default:
			return response.InternalServerError(c, err)
		}
	}

	return response.Ok(c, result)
}
