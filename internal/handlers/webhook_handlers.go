package handlers

import (
	"errors"
	"io"

	"invoicehub/internal/common"
	"invoicehub/internal/logger"
	"invoicehub/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	razorpaySignatureHeader = "X-Razorpay-Signature"
	maxWebhookBodyBytes     = 1 << 20
)

// WebhookHandlers handles HTTP requests for webhooks
type WebhookHandlers struct {
	webhookService services.WebhookService
}

// NewWebhookHandlers creates a new webhook handlers instance
func NewWebhookHandlers(webhookService services.WebhookService) *WebhookHandlers {
	return &WebhookHandlers{webhookService: webhookService}
}

// RazorpayWebhook handles POST /webhooks/razorpay. The gateway always gets a
// 200 so it only retries on transport failures.
//
//	@Summary	Razorpay webhook receiver
//	@Tags		webhooks
//	@Accept		json
//	@Produce	json
//	@Param		X-Razorpay-Signature	header		string	true	"HMAC-SHA256 of the raw body"
//	@Success	200						{object}	common.APIResponse
//	@Router		/webhooks/razorpay [post]
func (h *WebhookHandlers) RazorpayWebhook(c echo.Context) error {
	log := logger.WithComponent("webhook")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		log.Warn().Err(err).Msg("failed to read webhook body")
		return common.SendSuccess(c, nil, "Webhook processing error")
	}

	result, err := h.webhookService.Handle(c.Request().Context(), body, c.Request().Header.Get(razorpaySignatureHeader))
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			log.Warn().Str("remote_ip", c.RealIP()).Msg("rejected webhook with invalid signature")
			return common.SendSuccess(c, nil, "Webhook rejected")
		}
		log.Error().Err(err).Msg("webhook processing failed")
		return common.SendSuccess(c, result, "Webhook processing error")
	}
	return common.SendSuccess(c, result, "Webhook processed")
}
