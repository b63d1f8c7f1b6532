package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"

	"github.com/rs/zerolog"
)

const defaultRazorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayService is the payment gateway adapter for payment links and webhooks.
type RazorpayService interface {
	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*models.PaymentLink, error)
	CancelPaymentLink(ctx context.Context, paymentLinkID string) error
	FetchPayment(ctx context.Context, paymentID string) (*PaymentEntity, error)
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}

type RazorpayOptions struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
	HTTPClient    *http.Client
}

type razorpayService struct {
	apiKey        string
	apiSecret     string
	webhookSecret string
	baseURL       string
	http          *http.Client
	log           zerolog.Logger
}

// PaymentLinkRequest describes the link created for a proforma.
type PaymentLinkRequest struct {
	InvoiceID     string
	Amount        float64 // rupees
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ExpireBy      time.Time
	Notes         map[string]string
}

type paymentLinkCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type paymentLinkNotify struct {
	SMS   bool `json:"sms"`
	Email bool `json:"email"`
}

type createPaymentLinkBody struct {
	Amount         int64               `json:"amount"`
	Currency       string              `json:"currency"`
	AcceptPartial  bool                `json:"accept_partial"`
	Description    string              `json:"description"`
	ReferenceID    string              `json:"reference_id"`
	ExpireBy       int64               `json:"expire_by"`
	Customer       paymentLinkCustomer `json:"customer"`
	Notify         paymentLinkNotify   `json:"notify"`
	ReminderEnable bool                `json:"reminder_enable"`
	Notes          map[string]string   `json:"notes"`
}

// PaymentLinkEntity is the gateway's view of a payment link.
type PaymentLinkEntity struct {
	ID          string            `json:"id"`
	ShortURL    string            `json:"short_url"`
	LongURL     string            `json:"long_url"`
	ReferenceID string            `json:"reference_id"`
	Amount      int64             `json:"amount"`
	AmountPaid  int64             `json:"amount_paid"`
	Currency    string            `json:"currency"`
	Status      string            `json:"status"`
	ExpireBy    int64             `json:"expire_by"`
	Notes       map[string]string `json:"notes"`
}

// PaymentEntity is a captured or attempted payment.
type PaymentEntity struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}

type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// NewRazorpayService creates a new Razorpay service instance
func NewRazorpayService(opts RazorpayOptions) RazorpayService {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultRazorpayBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &razorpayService{
		apiKey:        opts.KeyID,
		apiSecret:     opts.KeySecret,
		webhookSecret: opts.WebhookSecret,
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          client,
		log:           logger.WithComponent("razorpay"),
	}
}

// ToPaise converts a rupee amount to the smallest currency unit.
func ToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (s *razorpayService) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*models.PaymentLink, error) {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	notes := map[string]string{"invoice_id": req.InvoiceID}
	for k, v := range req.Notes {
		notes[k] = v
	}

	body := createPaymentLinkBody{
		Amount:        ToPaise(req.Amount),
		Currency:      currency,
		AcceptPartial: false,
		Description:   "Payment for Invoice #" + req.InvoiceID,
		ReferenceID:   req.InvoiceID,
		ExpireBy:      req.ExpireBy.Unix(),
		Customer: paymentLinkCustomer{
			Name:    req.CustomerName,
			Email:   req.CustomerEmail,
			Contact: req.CustomerPhone,
		},
		Notify:         paymentLinkNotify{SMS: true, Email: true},
		ReminderEnable: true,
		Notes:          notes,
	}

	s.log.Info().
		Str("invoice_id", req.InvoiceID).
		Int64("amount_paise", body.Amount).
		Msg("creating payment link")

	var link PaymentLinkEntity
	if err := s.makeRequest(ctx, http.MethodPost, "/payment_links", body, &link); err != nil {
		return nil, err
	}
	if link.ID == "" || link.ShortURL == "" {
		return nil, common.Gateway("payment gateway returned an incomplete payment link", nil)
	}

	s.log.Info().Str("payment_link_id", link.ID).Msg("payment link created")

	return &models.PaymentLink{
		PaymentLinkID: link.ID,
		ShortURL:      link.ShortURL,
		LongURL:       link.LongURL,
		ReferenceID:   link.ReferenceID,
		Amount:        link.Amount,
		Status:        link.Status,
		ExpiresAt:     time.Unix(link.ExpireBy, 0).UTC(),
	}, nil
}

func (s *razorpayService) CancelPaymentLink(ctx context.Context, paymentLinkID string) error {
	if err := s.makeRequest(ctx, http.MethodPost, "/payment_links/"+paymentLinkID+"/cancel", nil, nil); err != nil {
		return err
	}
	s.log.Info().Str("payment_link_id", paymentLinkID).Msg("payment link cancelled")
	return nil
}

func (s *razorpayService) FetchPayment(ctx context.Context, paymentID string) (*PaymentEntity, error) {
	var payment PaymentEntity
	if err := s.makeRequest(ctx, http.MethodGet, "/payments/"+paymentID, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// VerifyWebhookSignature checks hex(HMAC-SHA256(secret, raw body)).
func (s *razorpayService) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return VerifyHMACSignature(s.webhookSecret, rawBody, signature)
}

// VerifyHMACSignature compares signature with the hex HMAC-SHA256 of body in constant time.
func VerifyHMACSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (s *razorpayService) makeRequest(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return common.Internal("encode gateway request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return common.Internal("build gateway request", err)
	}
	req.SetBasicAuth(s.apiKey, s.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		s.log.Error().Err(err).Str("method", method).Str("path", path).Msg("payment gateway unreachable")
		return common.Gateway("payment gateway is unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return common.Gateway("failed to read payment gateway response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr razorpayErrorBody
		msg := fmt.Sprintf("payment gateway returned status %d", resp.StatusCode)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Description != "" {
			msg = "payment gateway error: " + apiErr.Error.Description
		}
		s.log.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("code", apiErr.Error.Code).
			Msg("payment gateway request failed")
		return common.Gateway(msg, fmt.Errorf("razorpay %s %s: %d", method, path, resp.StatusCode))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return common.Gateway("payment gateway returned malformed JSON", err)
	}
	return nil
}
