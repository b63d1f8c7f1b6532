package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/config"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// MailSender delivers a composed message.
type MailSender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

type smtpSender struct {
	client *mail.Client
}

// NewSMTPSender builds an SMTP sender. Authentication is enabled only when a
// username is configured.
func NewSMTPSender(cfg config.SMTPConfig) (MailSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &smtpSender{client: client}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg *mail.Msg) error {
	return s.client.DialAndSendWithContext(ctx, msg)
}

// Mailer sends invoice documents to customers.
type Mailer interface {
	SendInvoice(ctx context.Context, req models.ShareInvoiceRequest) (*models.EmailResult, error)
}

type MailerOptions struct {
	FromName       string
	FromAddress    string
	MaxAttachBytes int64
	HTTPClient     *http.Client
}

type mailer struct {
	sender  MailSender
	company config.CompanyProfile
	opts    MailerOptions
	log     zerolog.Logger
}

func NewMailer(sender MailSender, company config.CompanyProfile, opts MailerOptions) Mailer {
	if opts.MaxAttachBytes <= 0 {
		opts.MaxAttachBytes = DefaultMaxUploadBytes
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.FromName == "" {
		opts.FromName = company.Name
	}
	if opts.FromAddress == "" {
		opts.FromAddress = company.Email
	}
	return &mailer{
		sender:  sender,
		company: company,
		opts:    opts,
		log:     logger.WithComponent("mailer"),
	}
}

var invoiceEmailTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Invoice</title>
<style>
body { font-family: Arial, sans-serif; background: #f4f4f4; margin: 0; padding: 10px; color: #333; }
.container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 8px; overflow: hidden; }
.header { background: #0d6efd; color: #fff; text-align: center; padding: 30px 20px; }
.header h1 { margin: 0 0 8px; font-size: 24px; }
.content { padding: 30px 20px; }
.button-container { text-align: center; margin: 30px 0; }
.button { background: #198754; color: #fff; padding: 14px 28px; border-radius: 6px; text-decoration: none; font-weight: bold; }
.footer { background: #f8f9fa; text-align: center; padding: 20px; font-size: 12px; color: #666; }
.footer-thank-you { margin-top: 12px; }
@media only screen and (max-width: 480px) { .button { display: block; max-width: 280px; margin: 0 auto; } }
</style>
</head>
<body>
<div class="container">
	<div class="header">
		{{- if .Company.LogoURL}}
		<img src="{{.Company.LogoURL}}" alt="{{.Company.Name}}" height="100" style="padding:1rem;" />
		{{- end}}
		<h1>{{.Company.LegalName}}</h1>
		<p>{{.InvoiceType}} #{{.InvoiceNumber}}</p>
	</div>
	<div class="content">
		<h2>Hello {{.CustomerName}},</h2>
		<p>Thank you for considering our services. We appreciate the opportunity to work with you and look forward to building a long-term partnership.</p>
		<p>Your {{.DocumentName}} is ready. Please find the details below.</p>
		<p><strong>Best regards,</strong><br>{{.Company.TeamName}}</p>
		{{- if .PaymentURL}}
		<div class="button-container">
			<a href="{{.PaymentURL}}" class="button">Click to pay</a>
		</div>
		{{- end}}
	</div>
	<div class="footer">
		<p><strong>{{.Company.LegalName}}</strong></p>
		<p>{{.Company.Address}}</p>
		<p>Email: {{.Company.Email}} | Phone: {{.Company.Phone}}</p>
		<p>Website: {{.Company.Website}}</p>
		<p class="footer-thank-you">Thank you for your business!</p>
	</div>
</div>
</body>
</html>
`))

type invoiceEmailData struct {
	Company       config.CompanyProfile
	CustomerName  string
	InvoiceType   string
	InvoiceNumber string
	DocumentName  string
	PaymentURL    string
}

// RenderInvoiceEmail returns the subject and HTML body of an invoice email.
// The pay button is only shown for proformas that carry a payment link.
func RenderInvoiceEmail(company config.CompanyProfile, req models.ShareInvoiceRequest) (string, string, error) {
	data := invoiceEmailData{
		Company:       company,
		CustomerName:  orDefault(req.CustomerName, "Valued Customer"),
		InvoiceType:   req.InvoiceType,
		InvoiceNumber: req.InvoiceNumber,
		DocumentName:  orDefault(strings.ToLower(req.InvoiceType), "document"),
	}
	if req.PaymentURL != "" && strings.EqualFold(req.InvoiceType, "Proforma") {
		data.PaymentURL = req.PaymentURL
	}

	var buf bytes.Buffer
	if err := invoiceEmailTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render invoice email: %w", err)
	}
	subject := fmt.Sprintf("%s #%s from %s", req.InvoiceType, req.InvoiceNumber, company.Name)
	return subject, buf.String(), nil
}

func validateShareRequest(req models.ShareInvoiceRequest) error {
	for _, f := range []struct{ name, value string }{
		{"customer_name", req.CustomerName},
		{"invoice_type", req.InvoiceType},
		{"invoice_number", req.InvoiceNumber},
		{"invoice_url", req.InvoiceURL},
		{"email", req.Email},
	} {
		if err := requireField(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func (m *mailer) fetchAttachment(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build attachment request: %w", err)
	}
	resp, err := m.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch attachment: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, m.opts.MaxAttachBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if int64(len(data)) > m.opts.MaxAttachBytes {
		return nil, fmt.Errorf("attachment exceeds %d bytes", m.opts.MaxAttachBytes)
	}
	return data, nil
}

func (m *mailer) SendInvoice(ctx context.Context, req models.ShareInvoiceRequest) (*models.EmailResult, error) {
	if err := validateShareRequest(req); err != nil {
		return nil, err
	}

	subject, body, err := RenderInvoiceEmail(m.company, req)
	if err != nil {
		return nil, common.Internal("Failed to send email", err)
	}
	attachment, err := m.fetchAttachment(ctx, req.InvoiceURL)
	if err != nil {
		m.log.Error().Err(err).Str("invoice_number", req.InvoiceNumber).Msg("failed to fetch invoice attachment")
		return nil, common.Internal("Failed to send email: "+err.Error(), err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.opts.FromName, m.opts.FromAddress); err != nil {
		return nil, common.Internal("Failed to send email: invalid sender", err)
	}
	if err := msg.To(req.Email); err != nil {
		return nil, common.ValidationField("email", "Invalid recipient email")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	if err := msg.AttachReader(fmt.Sprintf("%s_%s.pdf", req.InvoiceType, req.InvoiceNumber), bytes.NewReader(attachment),
		mail.WithFileContentType(mail.ContentType("application/pdf"))); err != nil {
		return nil, common.Internal("Failed to send email: attachment", err)
	}
	msg.SetMessageID()

	if err := m.sender.Send(ctx, msg); err != nil {
		m.log.Error().Err(err).
			Str("invoice_type", req.InvoiceType).
			Str("invoice_number", req.InvoiceNumber).
			Msg("failed to send invoice email")
		return nil, common.Internal("Failed to send email: "+err.Error(), err)
	}

	messageID := msg.GetMessageID()
	m.log.Info().Str("invoice_number", req.InvoiceNumber).Str("message_id", messageID).Msg("invoice email sent")
	return &models.EmailResult{Success: true, MessageID: messageID}, nil
}
