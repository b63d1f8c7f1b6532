package handlers

import (
	"context"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/services"

	"github.com/labstack/echo/v4"
)

// EmailQueue defers an invoice email to the worker.
type EmailQueue interface {
	Enqueue(ctx context.Context, req models.ShareInvoiceRequest) (*models.EmailResult, error)
}

type EmailHandlers struct {
	mailer services.Mailer
	queue  EmailQueue
}

// NewEmailHandlers wires the mailer. queue may be nil, in which case
// ?async=true falls back to synchronous delivery.
func NewEmailHandlers(mailer services.Mailer, queue EmailQueue) *EmailHandlers {
	return &EmailHandlers{mailer: mailer, queue: queue}
}

// ShareInvoice handles POST /emails/share-invoice
//
//	@Summary	Email an invoice document to the customer
//	@Tags		emails
//	@Accept		json
//	@Produce	json
//	@Param		async	query		bool						false	"Queue instead of sending inline"
//	@Param		body	body		models.ShareInvoiceRequest	true	"Invoice email"
//	@Success	200		{object}	common.APIResponse
//	@Success	202		{object}	common.APIResponse
//	@Security	BearerAuth
//	@Router		/emails/share-invoice [post]
func (h *EmailHandlers) ShareInvoice(c echo.Context) error {
	var req models.ShareInvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var async bool
	if err := echo.QueryParamsBinder(c).Bool("async", &async).BindError(); err != nil {
		return common.ValidationField("async", "async must be true or false")
	}

	if async && h.queue != nil {
		result, err := h.queue.Enqueue(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return common.SendAccepted(c, result, "Email queued")
	}

	result, err := h.mailer.SendInvoice(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, result, "Email sent successfully")
}
