package models

import (
	"errors"
	"fmt"
	"time"

	"invoicehub/internal/calculator"

	"github.com/google/uuid"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusQuotation      InvoiceStatus = "quotation"
	StatusProformaIssued InvoiceStatus = "proforma_issued"
	StatusPaid           InvoiceStatus = "paid"
	StatusExpired        InvoiceStatus = "expired"
)

// PaymentStatus mirrors the payment side of the lifecycle.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPaid    PaymentStatus = "paid"
	PaymentExpired PaymentStatus = "expired"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentUnpaid || p == PaymentPaid || p == PaymentExpired
}

// ErrIllegalTransition is returned when a lifecycle change is not allowed.
var ErrIllegalTransition = errors.New("illegal invoice status transition")

var allowedTransitions = map[InvoiceStatus][]InvoiceStatus{
	StatusQuotation:      {StatusProformaIssued},
	StatusProformaIssued: {StatusPaid, StatusExpired},
	// an expired proforma can be re-issued, and a payment that lands after
	// the sweep expired the link still settles the invoice
	StatusExpired: {StatusProformaIssued, StatusPaid},
}

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusQuotation, StatusProformaIssued, StatusPaid, StatusExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition returns next when the move is allowed.
func (s InvoiceStatus) Transition(next InvoiceStatus) (InvoiceStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s, next)
	}
	return next, nil
}

// CreatedBy identifies the user that raised an invoice.
type CreatedBy struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// PaymentLink is the payment_url bundle stored once a proforma is issued.
type PaymentLink struct {
	PaymentLinkID string    `json:"payment_link_id"`
	ShortURL      string    `json:"short_url"`
	LongURL       string    `json:"long_url,omitempty"`
	ReferenceID   string    `json:"reference_id"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// LapsedPaymentLink is an outstanding proforma whose link is past its expiry.
type LapsedPaymentLink struct {
	InvoiceID     uuid.UUID
	PaymentLinkID string
}

type Invoice struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	CompanyName        string    `json:"company_name" db:"company_name"`
	ContactPerson      string    `json:"contact_person" db:"contact_person"`
	Phone              string    `json:"phone" db:"phone"`
	Email              string    `json:"email" db:"email"`
	Address            string    `json:"address" db:"address"`
	SelectedPlanID     *int64    `json:"selected_plan_id" db:"selected_plan_id"`
	PlatformChargeType *string   `json:"platform_charge_type" db:"platform_charge_type"`
	CreatedBy          CreatedBy `json:"created_by" db:"created_by"`
	Signature          string    `json:"signature" db:"signature"`
	Designation        string    `json:"designation" db:"designation"`

	PlatformCharge   float64          `json:"platform_charge" db:"platform_charge"`
	WalletRecharge   float64          `json:"wallet_recharge" db:"wallet_recharge"`
	SetupFee         float64          `json:"setup_fee" db:"setup_fee"`
	CustomizationFee float64          `json:"customization_fee" db:"customization_fee"`
	AdditionalFee    []calculator.Fee `json:"additional_fee" db:"additional_fee"`

	SubTotal            float64 `json:"sub_total" db:"sub_total"`
	Discount            float64 `json:"discount" db:"discount"`
	DiscountAmount      float64 `json:"discount_amount" db:"discount_amount"`
	AmountAfterDiscount float64 `json:"amount_after_discount" db:"amount_after_discount"`
	GST                 float64 `json:"GST" db:"gst"`
	GSTAmount           float64 `json:"GST_amount" db:"gst_amount"`
	Total               float64 `json:"total" db:"total"`

	QuotationNumber         string    `json:"quotation_number" db:"quotation_number"`
	QuotationDate           time.Time `json:"quotation_date" db:"quotation_date"`
	QuotationValidUntilDate time.Time `json:"quotation_valid_until_date" db:"quotation_valid_until_date"`
	QuotationInvoicePDFURL  *string   `json:"quotation_invoice_pdf_url" db:"quotation_invoice_pdf_url"`

	ProformaInvoice        bool         `json:"proforma_invoice" db:"proforma_invoice"`
	ProformaNumber         *string      `json:"proforma_number" db:"proforma_number"`
	ProformaDate           *time.Time   `json:"proforma_date" db:"proforma_date"`
	ProformaValidUntilDate *time.Time   `json:"proforma_valid_until_date" db:"proforma_valid_until_date"`
	PaymentURL             *PaymentLink `json:"payment_url" db:"payment_url"`
	ProformaInvoicePDFURL  *string      `json:"proforma_invoice_pdf_url" db:"proforma_invoice_pdf_url"`

	Status               InvoiceStatus  `json:"status" db:"status"`
	PaymentStatus        PaymentStatus  `json:"payment_status" db:"payment_status"`
	PaymentReceipt       bool           `json:"payment_receipt" db:"payment_receipt"`
	PaymentID            *string        `json:"payment_id" db:"payment_id"`
	RazorpayPaymentID    *string        `json:"razorpay_payment_id" db:"razorpay_payment_id"`
	PaymentMethod        *string        `json:"payment_method" db:"payment_method"`
	RazorpaySignature    *string        `json:"razorpay_signature" db:"razorpay_signature"`
	PaidAt               *time.Time     `json:"paid_at" db:"paid_at"`
	PaymentMetadata      map[string]any `json:"payment_metadata" db:"payment_metadata"`
	PaymentInvoicePDFURL *string        `json:"payment_invoice_pdf_url" db:"payment_invoice_pdf_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CalculatorInput returns the charge inputs of the invoice.
func (i *Invoice) CalculatorInput() calculator.Input {
	return calculator.Input{
		PlatformCharge:   i.PlatformCharge,
		WalletRecharge:   i.WalletRecharge,
		SetupFee:         i.SetupFee,
		CustomizationFee: i.CustomizationFee,
		AdditionalFees:   i.AdditionalFee,
		Discount:         i.Discount,
		TaxPercent:       i.GST,
	}
}

// ApplyTotals copies calculator output into the invoice.
func (i *Invoice) ApplyTotals(r calculator.Result) {
	i.SubTotal = r.SubTotal
	i.DiscountAmount = r.DiscountAmount
	i.AmountAfterDiscount = r.AmountAfterDiscount
	i.GSTAmount = r.TaxAmount
	i.Total = r.Total
}

// PaymentDetails is what a confirmed payment records on an invoice.
type PaymentDetails struct {
	PaymentID         string
	RazorpayPaymentID string
	Method            string
	Signature         *string
	Metadata          map[string]any
	PaidAt            time.Time
}

// CreateInvoiceRequest is the body of POST /invoices.
type CreateInvoiceRequest struct {
	CompanyName             string            `json:"company_name" validate:"required,max=200"`
	ContactPerson           string            `json:"contact_person" validate:"required,max=100"`
	Phone                   string            `json:"phone" validate:"required,max=20"`
	Email                   string            `json:"email" validate:"required,email,max=100"`
	Address                 string            `json:"address" validate:"required"`
	SelectedPlanID          *int64            `json:"selected_plan_id"`
	PlatformChargeType      *string           `json:"platform_charge_type" validate:"omitempty,max=50"`
	Signature               string            `json:"signature" validate:"max=100"`
	Designation             string            `json:"designation" validate:"max=100"`
	PlatformCharge          calculator.Number `json:"platform_charge"`
	WalletRecharge          calculator.Number `json:"wallet_recharge"`
	SetupFee                calculator.Number `json:"setup_fee"`
	CustomizationFee        calculator.Number `json:"customization_fee"`
	AdditionalFee           []calculator.Fee  `json:"additional_fee"`
	Discount                calculator.Number `json:"discount"`
	GST                     calculator.Number `json:"GST"`
	QuotationValidUntilDate string            `json:"quotation_valid_until_date"`
}

// UpdateInvoiceRequest is the body of PUT /invoices/:id. Nil fields are left unchanged.
type UpdateInvoiceRequest struct {
	CompanyName        *string            `json:"company_name" validate:"omitempty,min=1,max=200"`
	ContactPerson      *string            `json:"contact_person" validate:"omitempty,min=1,max=100"`
	Phone              *string            `json:"phone" validate:"omitempty,min=1,max=20"`
	Email              *string            `json:"email" validate:"omitempty,email,max=100"`
	Address            *string            `json:"address" validate:"omitempty,min=1"`
	SelectedPlanID     *int64             `json:"selected_plan_id"`
	PlatformChargeType *string            `json:"platform_charge_type" validate:"omitempty,max=50"`
	Signature          *string            `json:"signature" validate:"omitempty,max=100"`
	Designation        *string            `json:"designation" validate:"omitempty,max=100"`
	PlatformCharge     *calculator.Number `json:"platform_charge"`
	WalletRecharge     *calculator.Number `json:"wallet_recharge"`
	SetupFee           *calculator.Number `json:"setup_fee"`
	CustomizationFee   *calculator.Number `json:"customization_fee"`
	AdditionalFee      *[]calculator.Fee  `json:"additional_fee"`
	Discount           *calculator.Number `json:"discount"`
	GST                *calculator.Number `json:"GST"`
}

// TouchesFinancials reports whether the update changes any calculator input.
func (r *UpdateInvoiceRequest) TouchesFinancials() bool {
	return r.PlatformCharge != nil || r.WalletRecharge != nil || r.SetupFee != nil ||
		r.CustomizationFee != nil || r.AdditionalFee != nil || r.Discount != nil || r.GST != nil
}

// InvoiceListQuery holds the list filters for GET /invoices.
type InvoiceListQuery struct {
	Page               int    `query:"page"`
	Limit              int    `query:"limit"`
	Sort               string `query:"sort"`
	Order              string `query:"order"`
	Search             string `query:"search"`
	PaymentStatus      string `query:"payment_status"`
	PlatformChargeType string `query:"platform_charge_type"`
	CreatedBy          string `query:"created_by"`
	StartDate          *time.Time
	EndDate            *time.Time
}

// InvoiceList is a page of invoices.
type InvoiceList struct {
	Invoices      []*Invoice `json:"invoices"`
	TotalPages    int        `json:"totalPages"`
	CurrentPage   int        `json:"currentPage"`
	TotalInvoices int        `json:"totalInvoices"`
}
