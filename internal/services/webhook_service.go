package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"invoicehub/internal/common"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	EventPaymentLinkPaid    = "payment_link.paid"
	EventPaymentLinkExpired = "payment_link.expired"

	paymentCaptured = "captured"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookEvent is the subset of a gateway event this service reads.
type WebhookEvent struct {
	Event     string `json:"event"`
	AccountID string `json:"account_id"`
	Payload   struct {
		PaymentLink *struct {
			Entity PaymentLinkEntity `json:"entity"`
		} `json:"payment_link"`
		Payment *struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookResult describes what a delivery did.
type WebhookResult struct {
	Event     string `json:"event"`
	InvoiceID string `json:"invoice_id,omitempty"`
	Handled   bool   `json:"handled"`
	Changed   bool   `json:"changed"`
}

type WebhookService interface {
	// Handle verifies and applies one delivery. Errors are for logging only;
	// the gateway is always acknowledged.
	Handle(ctx context.Context, rawBody []byte, signature string) (*WebhookResult, error)
}

type webhookService struct {
	razorpay RazorpayService
	invoices InvoiceService
	log      zerolog.Logger
}

func NewWebhookService(razorpay RazorpayService, invoices InvoiceService) WebhookService {
	return &webhookService{
		razorpay: razorpay,
		invoices: invoices,
		log:      logger.WithComponent("webhook-service"),
	}
}

func invoiceIDFromLink(link PaymentLinkEntity) (uuid.UUID, error) {
	ref := link.Notes["invoice_id"]
	if ref == "" {
		ref = link.ReferenceID
	}
	if ref == "" {
		return uuid.Nil, common.Validation("invoice reference missing from payment link %s", link.ID)
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, common.Validation("invalid invoice reference %q", ref)
	}
	return id, nil
}

func (s *webhookService) Handle(ctx context.Context, rawBody []byte, signature string) (*WebhookResult, error) {
	if !s.razorpay.VerifyWebhookSignature(rawBody, signature) {
		return nil, ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	result := &WebhookResult{Event: event.Event}

	s.log.Info().Str("event", event.Event).Str("account_id", event.AccountID).Msg("webhook received")

	switch event.Event {
	case EventPaymentLinkPaid:
		return result, s.handlePaid(ctx, &event, result)
	case EventPaymentLinkExpired:
		return result, s.handleExpired(ctx, &event, result)
	default:
		s.log.Info().Str("event", event.Event).Msg("unhandled webhook event")
		return result, nil
	}
}

func (s *webhookService) handlePaid(ctx context.Context, event *WebhookEvent, result *WebhookResult) error {
	if event.Payload.PaymentLink == nil || event.Payload.Payment == nil {
		return common.Validation("payment_link.paid without payment link or payment entity")
	}
	link := event.Payload.PaymentLink.Entity

	id, err := invoiceIDFromLink(link)
	if err != nil {
		return err
	}
	result.InvoiceID = id.String()
	result.Handled = true

	payment := s.confirmPayment(ctx, event.Payload.Payment.Entity)
	if payment.Status != paymentCaptured {
		s.log.Warn().
			Str("invoice_id", id.String()).
			Str("payment_id", payment.ID).
			Str("status", payment.Status).
			Msg("payment not captured, invoice left unpaid")
		return nil
	}

	_, changed, err := s.invoices.MarkPaid(ctx, id, models.PaymentDetails{
		PaymentID:         payment.ID,
		RazorpayPaymentID: payment.ID,
		Method:            payment.Method,
		Metadata: map[string]any{
			"amount_paid":     float64(payment.Amount) / 100,
			"currency":        payment.Currency,
			"status":          payment.Status,
			"email":           payment.Email,
			"contact":         payment.Contact,
			"payment_link_id": link.ID,
		},
	})
	if err != nil {
		return fmt.Errorf("apply payment %s to invoice %s: %w", payment.ID, id, err)
	}
	result.Changed = changed

	s.log.Info().
		Str("invoice_id", id.String()).
		Str("payment_id", payment.ID).
		Int64("amount", payment.Amount).
		Bool("changed", changed).
		Msg("payment link paid")
	return nil
}

// confirmPayment reads the payment back from the gateway. The webhook payload
// is used when the gateway cannot be reached.
func (s *webhookService) confirmPayment(ctx context.Context, fromEvent PaymentEntity) PaymentEntity {
	if fromEvent.ID == "" {
		return fromEvent
	}
	fetched, err := s.razorpay.FetchPayment(ctx, fromEvent.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("payment_id", fromEvent.ID).Msg("payment lookup failed, using webhook payload")
		return fromEvent
	}
	return *fetched
}

func (s *webhookService) handleExpired(ctx context.Context, event *WebhookEvent, result *WebhookResult) error {
	if event.Payload.PaymentLink == nil {
		return common.Validation("payment_link.expired without payment link entity")
	}
	link := event.Payload.PaymentLink.Entity

	id, err := invoiceIDFromLink(link)
	if err != nil {
		return err
	}
	result.InvoiceID = id.String()
	result.Handled = true

	changed, err := s.invoices.MarkExpired(ctx, id, link.ID)
	if err != nil {
		return err
	}
	result.Changed = changed

	s.log.Info().
		Str("invoice_id", id.String()).
		Str("payment_link_id", link.ID).
		Bool("changed", changed).
		Msg("payment link expired")
	return nil
}
