package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"invoicehub/internal/caching"
	"invoicehub/internal/calculator"
	"invoicehub/internal/common"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultSignature    = "Authorized Signatory"
	DefaultDesignation  = "Business Manager"
	DefaultLinkExpiry   = 7 * 24 * time.Hour
	quotationValidity   = 30 * 24 * time.Hour
	quotationPrefix     = "QI"
	proformaPrefix      = "PI"
	defaultInvoiceLimit = 10
	maxInvoiceLimit     = 100
	defaultCurrency     = "INR"
)

// InvoiceService owns the invoice lifecycle from quotation to payment.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req models.CreateInvoiceRequest, creator models.CreatedBy) (*models.Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, query models.InvoiceListQuery) (*models.InvoiceList, error)
	UpdateInvoice(ctx context.Context, id uuid.UUID, req models.UpdateInvoiceRequest) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	GenerateProforma(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	MarkPaid(ctx context.Context, id uuid.UUID, payment models.PaymentDetails) (*models.Invoice, bool, error)
	MarkExpired(ctx context.Context, id uuid.UUID, linkID string) (bool, error)
	ExpireOverdueLinks(ctx context.Context, now time.Time, batch int) (int, error)
}

// InvoiceOptions tunes payment links and number generation.
type InvoiceOptions struct {
	LinkExpiry  time.Duration
	Currency    string
	CountryCode string
	Now         func() time.Time
}

type invoiceService struct {
	repo     repositories.InvoiceRepository
	razorpay RazorpayService
	store    DocumentStore
	cache    caching.CacheService
	locks    *KeyedMutex
	opts     InvoiceOptions
	log      zerolog.Logger
}

func NewInvoiceService(repo repositories.InvoiceRepository, razorpay RazorpayService, store DocumentStore,
	cache caching.CacheService, locks *KeyedMutex, opts InvoiceOptions) InvoiceService {
	if opts.LinkExpiry <= 0 {
		opts.LinkExpiry = DefaultLinkExpiry
	}
	if opts.Currency == "" {
		opts.Currency = defaultCurrency
	}
	if opts.CountryCode == "" {
		opts.CountryCode = common.DefaultCountryCode
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if cache == nil {
		cache = caching.NewNoopCache()
	}
	return &invoiceService{
		repo:     repo,
		razorpay: razorpay,
		store:    store,
		cache:    cache,
		locks:    locks,
		opts:     opts,
		log:      logger.WithComponent("invoice-service"),
	}
}

// DocumentNumber builds a quotation or proforma number from the clock and a random suffix.
func DocumentNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%d%d", prefix, now.UnixMilli(), rand.IntN(1000))
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return common.ValidationField(field, field+" is required")
	}
	return nil
}

func toFees(fees []calculator.Fee) []calculator.Fee {
	if len(fees) == 0 {
		return nil
	}
	out := make([]calculator.Fee, 0, len(fees))
	for _, f := range fees {
		out = append(out, calculator.Fee{Description: strings.TrimSpace(f.Description), Amount: f.Amount})
	}
	return out
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req models.CreateInvoiceRequest, creator models.CreatedBy) (*models.Invoice, error) {
	for _, f := range []struct{ name, value string }{
		{"company_name", req.CompanyName},
		{"contact_person", req.ContactPerson},
		{"phone", req.Phone},
		{"email", req.Email},
		{"address", req.Address},
	} {
		if err := requireField(f.name, f.value); err != nil {
			return nil, err
		}
	}

	now := s.opts.Now()
	today := startOfDay(now)
	validUntil := today.Add(quotationValidity)
	if v := strings.TrimSpace(req.QuotationValidUntilDate); v != "" {
		parsed, err := common.ParseDate(v, "quotation_valid_until_date")
		if err != nil {
			return nil, err
		}
		validUntil = parsed
	}

	inv := &models.Invoice{
		ID:                      uuid.New(),
		CompanyName:             strings.TrimSpace(req.CompanyName),
		ContactPerson:           strings.TrimSpace(req.ContactPerson),
		Phone:                   strings.TrimSpace(req.Phone),
		Email:                   strings.ToLower(strings.TrimSpace(req.Email)),
		Address:                 strings.TrimSpace(req.Address),
		SelectedPlanID:          req.SelectedPlanID,
		PlatformChargeType:      req.PlatformChargeType,
		CreatedBy:               creator,
		Signature:               orDefault(req.Signature, DefaultSignature),
		Designation:             orDefault(req.Designation, DefaultDesignation),
		PlatformCharge:          req.PlatformCharge.Float(),
		WalletRecharge:          req.WalletRecharge.Float(),
		SetupFee:                req.SetupFee.Float(),
		CustomizationFee:        req.CustomizationFee.Float(),
		AdditionalFee:           toFees(req.AdditionalFee),
		Discount:                req.Discount.Float(),
		GST:                     req.GST.Float(),
		QuotationDate:           today,
		QuotationValidUntilDate: validUntil,
		Status:                  models.StatusQuotation,
		PaymentStatus:           models.PaymentUnpaid,
	}
	inv.ApplyTotals(calculator.Calculate(inv.CalculatorInput()))

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		inv.QuotationNumber = DocumentNumber(quotationPrefix, now)
		if err = s.repo.Create(ctx, inv); err == nil || !common.IsKind(err, common.KindConflict) {
			break
		}
		s.log.Warn().Str("quotation_number", inv.QuotationNumber).Msg("quotation number collision, retrying")
	}
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateAnalytics(ctx)
	s.log.Info().
		Str("invoice_id", inv.ID.String()).
		Str("quotation_number", inv.QuotationNumber).
		Float64("total", inv.Total).
		Msg("invoice created")
	return inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if inv, ok := s.cache.GetInvoice(ctx, id); ok {
		return inv, nil
	}
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetInvoice(ctx, inv)
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, q models.InvoiceListQuery) (*models.InvoiceList, error) {
	q.Page, q.Limit = common.ValidatePaginationParams(q.Page, q.Limit, defaultInvoiceLimit, maxInvoiceLimit)
	invoices, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if invoices == nil {
		invoices = []*models.Invoice{}
	}
	return &models.InvoiceList{
		Invoices:      invoices,
		TotalPages:    common.TotalPages(total, q.Limit),
		CurrentPage:   q.Page,
		TotalInvoices: total,
	}, nil
}

func applyText(dst *string, src *string, field string) error {
	if src == nil {
		return nil
	}
	v := strings.TrimSpace(*src)
	if v == "" {
		return common.ValidationField(field, field+" cannot be empty")
	}
	*dst = v
	return nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, req models.UpdateInvoiceRequest) (*models.Invoice, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.TouchesFinancials() && inv.PaymentStatus == models.PaymentPaid {
		return nil, common.Conflict("charges of a paid invoice cannot be modified")
	}

	for _, f := range []struct {
		dst   *string
		src   *string
		field string
	}{
		{&inv.CompanyName, req.CompanyName, "company_name"},
		{&inv.ContactPerson, req.ContactPerson, "contact_person"},
		{&inv.Phone, req.Phone, "phone"},
		{&inv.Email, req.Email, "email"},
		{&inv.Address, req.Address, "address"},
	} {
		if err := applyText(f.dst, f.src, f.field); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		inv.Email = strings.ToLower(inv.Email)
	}
	if req.SelectedPlanID != nil {
		inv.SelectedPlanID = req.SelectedPlanID
	}
	if req.PlatformChargeType != nil {
		inv.PlatformChargeType = common.StringPtr(*req.PlatformChargeType)
	}
	if req.Signature != nil {
		inv.Signature = orDefault(*req.Signature, DefaultSignature)
	}
	if req.Designation != nil {
		inv.Designation = orDefault(*req.Designation, DefaultDesignation)
	}

	if req.TouchesFinancials() {
		if req.PlatformCharge != nil {
			inv.PlatformCharge = req.PlatformCharge.Float()
		}
		if req.WalletRecharge != nil {
			inv.WalletRecharge = req.WalletRecharge.Float()
		}
		if req.SetupFee != nil {
			inv.SetupFee = req.SetupFee.Float()
		}
		if req.CustomizationFee != nil {
			inv.CustomizationFee = req.CustomizationFee.Float()
		}
		if req.AdditionalFee != nil {
			inv.AdditionalFee = toFees(*req.AdditionalFee)
		}
		if req.Discount != nil {
			inv.Discount = req.Discount.Float()
		}
		if req.GST != nil {
			inv.GST = req.GST.Float()
		}
		inv.ApplyTotals(calculator.Calculate(inv.CalculatorInput()))
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.cache.DeleteInvoice(ctx, id)
	s.cache.InvalidateAnalytics(ctx)
	s.log.Info().Str("invoice_id", id.String()).Bool("recalculated", req.TouchesFinancials()).Msg("invoice updated")
	return inv, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if inv.Status == models.StatusProformaIssued && inv.PaymentStatus == models.PaymentUnpaid &&
		inv.PaymentURL != nil && inv.PaymentURL.PaymentLinkID != "" {
		if err := s.razorpay.CancelPaymentLink(ctx, inv.PaymentURL.PaymentLinkID); err != nil {
			s.log.Warn().Err(err).
				Str("invoice_id", id.String()).
				Str("payment_link_id", inv.PaymentURL.PaymentLinkID).
				Msg("failed to cancel payment link")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	for _, url := range []*string{inv.QuotationInvoicePDFURL, inv.ProformaInvoicePDFURL, inv.PaymentInvoicePDFURL} {
		key, ok := s.store.KeyFromURL(common.SafeString(url))
		if !ok {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to remove invoice document")
		}
	}

	s.cache.DeleteInvoice(ctx, id)
	s.cache.InvalidateAnalytics(ctx)
	s.log.Info().Str("invoice_id", id.String()).Msg("invoice deleted")
	return nil
}

func (s *invoiceService) GenerateProforma(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(models.StatusProformaIssued) {
		return nil, common.Conflict("cannot generate a proforma for an invoice in status %s", inv.Status)
	}

	phone, err := common.SanitizePhoneNumber(inv.Phone, s.opts.CountryCode)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now()
	link, err := s.razorpay.CreatePaymentLink(ctx, PaymentLinkRequest{
		InvoiceID:     inv.ID.String(),
		Amount:        inv.Total,
		Currency:      s.opts.Currency,
		CustomerName:  inv.ContactPerson,
		CustomerEmail: inv.Email,
		CustomerPhone: phone,
		ExpireBy:      now.Add(s.opts.LinkExpiry),
		Notes:         map[string]string{"quotation_number": inv.QuotationNumber},
	})
	if err != nil {
		s.log.Error().Err(err).Str("invoice_id", id.String()).Msg("payment link creation failed")
		return nil, err
	}

	number := DocumentNumber(proformaPrefix, now)
	today := startOfDay(now)
	expiry := link.ExpiresAt
	inv.ProformaNumber = &number
	inv.ProformaDate = &today
	inv.ProformaValidUntilDate = &expiry
	inv.PaymentURL = link

	if err := s.repo.IssueProforma(ctx, inv); err != nil {
		if cancelErr := s.razorpay.CancelPaymentLink(context.WithoutCancel(ctx), link.PaymentLinkID); cancelErr != nil {
			s.log.Error().Err(cancelErr).Str("payment_link_id", link.PaymentLinkID).Msg("failed to cancel orphaned payment link")
		}
		return nil, err
	}

	s.cache.DeleteInvoice(ctx, id)
	s.cache.InvalidateAnalytics(ctx)
	s.log.Info().
		Str("invoice_id", id.String()).
		Str("proforma_number", number).
		Str("payment_link_id", link.PaymentLinkID).
		Msg("proforma issued")
	return inv, nil
}

// MarkPaid applies a confirmed payment. It reports whether the invoice changed.
func (s *invoiceService) MarkPaid(ctx context.Context, id uuid.UUID, payment models.PaymentDetails) (*models.Invoice, bool, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if inv.PaymentStatus == models.PaymentPaid {
		if common.SafeString(inv.PaymentID) != payment.PaymentID {
			s.log.Warn().
				Str("invoice_id", id.String()).
				Str("recorded_payment_id", common.SafeString(inv.PaymentID)).
				Str("incoming_payment_id", payment.PaymentID).
				Msg("invoice already paid with a different payment, ignoring")
		}
		return inv, false, nil
	}
	if !inv.Status.CanTransitionTo(models.StatusPaid) {
		return nil, false, common.Conflict("cannot mark an invoice in status %s as paid", inv.Status)
	}

	if payment.PaidAt.IsZero() {
		payment.PaidAt = s.opts.Now()
	}
	changed, err := s.repo.MarkPaid(ctx, id, payment)
	if err != nil {
		return nil, false, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, changed, err
	}
	s.cache.DeleteInvoice(ctx, id)
	if changed {
		s.cache.InvalidateAnalytics(ctx)
		s.log.Info().
			Str("invoice_id", id.String()).
			Str("payment_id", payment.PaymentID).
			Str("method", payment.Method).
			Msg("invoice paid")
	}
	return updated, changed, nil
}

// MarkExpired expires the proforma when linkID is its current payment link.
// Events for a superseded link change nothing.
func (s *invoiceService) MarkExpired(ctx context.Context, id uuid.UUID, linkID string) (bool, error) {
	if linkID == "" {
		return false, common.Validation("payment link id is required to expire invoice %s", id)
	}
	unlock := s.locks.Lock(id.String())
	defer unlock()

	changed, err := s.repo.MarkExpired(ctx, id, linkID)
	if err != nil {
		return false, fmt.Errorf("expire invoice %s: %w", id, err)
	}
	if changed {
		s.cache.DeleteInvoice(ctx, id)
		s.cache.InvalidateAnalytics(ctx)
		s.log.Info().Str("invoice_id", id.String()).Str("payment_link_id", linkID).Msg("payment link expired")
	}
	return changed, nil
}

// ExpireOverdueLinks expires up to batch invoices whose payment link lapsed before now.
func (s *invoiceService) ExpireOverdueLinks(ctx context.Context, now time.Time, batch int) (int, error) {
	lapsed, err := s.repo.ListExpiredPaymentLinks(ctx, now, batch)
	if err != nil {
		return 0, fmt.Errorf("list lapsed payment links: %w", err)
	}

	expired := 0
	for _, l := range lapsed {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		changed, err := s.MarkExpired(ctx, l.InvoiceID, l.PaymentLinkID)
		if err != nil {
			s.log.Error().Err(err).Str("invoice_id", l.InvoiceID.String()).Msg("expiry sweep failed for invoice")
			continue
		}
		if changed {
			expired++
		}
	}
	return expired, nil
}
