package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/models"

	"github.com/google/uuid"
)

const invoiceColumns = `id, company_name, contact_person, phone, email, address, selected_plan_id, platform_charge_type,
		created_by, signature, designation,
		platform_charge, wallet_recharge, setup_fee, customization_fee, additional_fee,
		sub_total, discount, discount_amount, amount_after_discount, gst, gst_amount, total,
		quotation_number, quotation_date, quotation_valid_until_date, quotation_invoice_pdf_url,
		proforma_invoice, proforma_number, proforma_date, proforma_valid_until_date, payment_url, proforma_invoice_pdf_url,
		status, payment_status, payment_receipt, payment_id, razorpay_payment_id, payment_method, razorpay_signature,
		paid_at, payment_metadata, payment_invoice_pdf_url, created_at, updated_at`

var invoiceSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"total":            true,
	"company_name":     true,
	"quotation_number": true,
	"payment_status":   true,
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query models.InvoiceListQuery) ([]*models.Invoice, int, error)
	IssueProforma(ctx context.Context, invoice *models.Invoice) error
	MarkPaid(ctx context.Context, id uuid.UUID, payment models.PaymentDetails) (bool, error)
	// MarkExpired only applies while linkID is still the invoice's active link.
	MarkExpired(ctx context.Context, id uuid.UUID, linkID string) (bool, error)
	SetDocumentURL(ctx context.Context, id uuid.UUID, pdfType models.PDFType, url string) error
	ListExpiredPaymentLinks(ctx context.Context, before time.Time, limit int) ([]models.LapsedPaymentLink, error)
}

type invoiceRepo struct {
	db Database
}

func NewInvoiceRepo(db Database) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func scanInvoice(row scanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.CompanyName, &inv.ContactPerson, &inv.Phone, &inv.Email, &inv.Address, &inv.SelectedPlanID, &inv.PlatformChargeType,
		&inv.CreatedBy, &inv.Signature, &inv.Designation,
		&inv.PlatformCharge, &inv.WalletRecharge, &inv.SetupFee, &inv.CustomizationFee, &inv.AdditionalFee,
		&inv.SubTotal, &inv.Discount, &inv.DiscountAmount, &inv.AmountAfterDiscount, &inv.GST, &inv.GSTAmount, &inv.Total,
		&inv.QuotationNumber, &inv.QuotationDate, &inv.QuotationValidUntilDate, &inv.QuotationInvoicePDFURL,
		&inv.ProformaInvoice, &inv.ProformaNumber, &inv.ProformaDate, &inv.ProformaValidUntilDate, &inv.PaymentURL, &inv.ProformaInvoicePDFURL,
		&inv.Status, &inv.PaymentStatus, &inv.PaymentReceipt, &inv.PaymentID, &inv.RazorpayPaymentID, &inv.PaymentMethod, &inv.RazorpaySignature,
		&inv.PaidAt, &inv.PaymentMetadata, &inv.PaymentInvoicePDFURL, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, company_name, contact_person, phone, email, address, selected_plan_id, platform_charge_type,
			created_by, signature, designation,
			platform_charge, wallet_recharge, setup_fee, customization_fee, additional_fee,
			sub_total, discount, discount_amount, amount_after_discount, gst, gst_amount, total,
			quotation_number, quotation_date, quotation_valid_until_date, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		inv.ID, inv.CompanyName, inv.ContactPerson, inv.Phone, inv.Email, inv.Address, inv.SelectedPlanID, inv.PlatformChargeType,
		inv.CreatedBy, inv.Signature, inv.Designation,
		inv.PlatformCharge, inv.WalletRecharge, inv.SetupFee, inv.CustomizationFee, inv.AdditionalFee,
		inv.SubTotal, inv.Discount, inv.DiscountAmount, inv.AmountAfterDiscount, inv.GST, inv.GSTAmount, inv.Total,
		inv.QuotationNumber, inv.QuotationDate, inv.QuotationValidUntilDate, inv.Status, inv.PaymentStatus,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	return mapError(err, "Invoice")
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "Invoice")
	}
	return inv, nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *models.Invoice) error {
	query := `
		UPDATE invoices
		SET company_name = $2, contact_person = $3, phone = $4, email = $5, address = $6, selected_plan_id = $7,
			platform_charge_type = $8, signature = $9, designation = $10,
			platform_charge = $11, wallet_recharge = $12, setup_fee = $13, customization_fee = $14, additional_fee = $15,
			sub_total = $16, discount = $17, discount_amount = $18, amount_after_discount = $19, gst = $20, gst_amount = $21, total = $22,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		inv.ID, inv.CompanyName, inv.ContactPerson, inv.Phone, inv.Email, inv.Address, inv.SelectedPlanID,
		inv.PlatformChargeType, inv.Signature, inv.Designation,
		inv.PlatformCharge, inv.WalletRecharge, inv.SetupFee, inv.CustomizationFee, inv.AdditionalFee,
		inv.SubTotal, inv.Discount, inv.DiscountAmount, inv.AmountAfterDiscount, inv.GST, inv.GSTAmount, inv.Total,
	).Scan(&inv.UpdatedAt)
	return mapError(err, "Invoice")
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Invoice")
	}
	return nil
}

// buildInvoiceFilter renders the WHERE clause shared by the count and page queries.
func buildInvoiceFilter(q models.InvoiceListQuery) (string, []any) {
	var clauses []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if search := common.EscapeLike(q.Search); search != "" {
		p := next("%" + search + "%")
		clauses = append(clauses, fmt.Sprintf("(company_name ILIKE %[1]s OR contact_person ILIKE %[1]s OR email ILIKE %[1]s OR quotation_number ILIKE %[1]s)", p))
	}
	if q.PaymentStatus != "" {
		clauses = append(clauses, "payment_status = "+next(q.PaymentStatus))
	}
	if q.PlatformChargeType != "" {
		clauses = append(clauses, "platform_charge_type = "+next(q.PlatformChargeType))
	}
	if q.CreatedBy != "" {
		clauses = append(clauses, "created_by->>'id' = "+next(q.CreatedBy))
	}
	if q.StartDate != nil && q.EndDate != nil {
		clauses = append(clauses, fmt.Sprintf("created_at BETWEEN %s AND %s", next(*q.StartDate), next(*q.EndDate)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *invoiceRepo) List(ctx context.Context, q models.InvoiceListQuery) ([]*models.Invoice, int, error) {
	where, args := buildInvoiceFilter(q)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sort := common.ValidateSortField(q.Sort, invoiceSortFields, "created_at")
	order := common.ValidateSortOrder(q.Order)
	offset := (q.Page - 1) * q.Limit

	query := fmt.Sprintf(`SELECT %s FROM invoices%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		invoiceColumns, where, sort, order, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, q.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invoices := make([]*models.Invoice, 0, q.Limit)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// IssueProforma stores payment-link metadata. Only quotations and expired
// proformas qualify; anything else is reported as a conflict.
func (r *invoiceRepo) IssueProforma(ctx context.Context, inv *models.Invoice) error {
	query := `
		UPDATE invoices
		SET proforma_invoice = TRUE, proforma_number = $2, proforma_date = $3, proforma_valid_until_date = $4,
			payment_url = $5, status = $6, payment_status = $7, updated_at = NOW()
		WHERE id = $1 AND status IN ('quotation', 'expired')
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		inv.ID, inv.ProformaNumber, inv.ProformaDate, inv.ProformaValidUntilDate,
		inv.PaymentURL, models.StatusProformaIssued, models.PaymentUnpaid,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return mapError(err, "Proforma number")
		}
		appErr := mapError(err, "Invoice")
		if common.IsKind(appErr, common.KindNotFound) {
			return common.Conflict("invoice is not in a state that allows issuing a proforma")
		}
		return appErr
	}
	inv.ProformaInvoice = true
	inv.Status = models.StatusProformaIssued
	inv.PaymentStatus = models.PaymentUnpaid
	return nil
}

// MarkPaid records a payment unless the invoice is already paid. It reports
// whether a row changed.
func (r *invoiceRepo) MarkPaid(ctx context.Context, id uuid.UUID, p models.PaymentDetails) (bool, error) {
	query := `
		UPDATE invoices
		SET status = $2, payment_status = $3, payment_id = $4, razorpay_payment_id = $5, payment_method = $6,
			razorpay_signature = $7, payment_metadata = $8, paid_at = $9, payment_receipt = TRUE, updated_at = NOW()
		WHERE id = $1 AND payment_status <> 'paid'
	`
	tag, err := r.db.Exec(ctx, query, id, models.StatusPaid, models.PaymentPaid,
		p.PaymentID, p.RazorpayPaymentID, p.Method, p.Signature, p.Metadata, p.PaidAt)
	if err != nil {
		return false, mapError(err, "Payment")
	}
	return tag.RowsAffected() == 1, nil
}

// MarkExpired expires an outstanding proforma. Paid invoices are never
// touched, and neither is a proforma that was re-issued with a newer link.
func (r *invoiceRepo) MarkExpired(ctx context.Context, id uuid.UUID, linkID string) (bool, error) {
	query := `
		UPDATE invoices
		SET status = $2, payment_status = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'proforma_issued' AND payment_status = 'unpaid'
			AND payment_url->>'payment_link_id' = $4
	`
	tag, err := r.db.Exec(ctx, query, id, models.StatusExpired, models.PaymentExpired, linkID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *invoiceRepo) SetDocumentURL(ctx context.Context, id uuid.UUID, pdfType models.PDFType, url string) error {
	column := pdfType.Column()
	if column == "" {
		return common.Validation("invalid PDF type %q", pdfType)
	}
	query := fmt.Sprintf(`UPDATE invoices SET %s = $2, updated_at = NOW() WHERE id = $1`, column)
	tag, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Invoice")
	}
	return nil
}

func (r *invoiceRepo) ListExpiredPaymentLinks(ctx context.Context, before time.Time, limit int) ([]models.LapsedPaymentLink, error) {
	query := `
		SELECT id, COALESCE(payment_url->>'payment_link_id', '') FROM invoices
		WHERE status = 'proforma_issued' AND payment_status = 'unpaid'
			AND (payment_url->>'expires_at')::timestamptz < $1
		ORDER BY (payment_url->>'expires_at')::timestamptz
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lapsed []models.LapsedPaymentLink
	for rows.Next() {
		var l models.LapsedPaymentLink
		if err := rows.Scan(&l.InvoiceID, &l.PaymentLinkID); err != nil {
			return nil, err
		}
		lapsed = append(lapsed, l)
	}
	return lapsed, rows.Err()
}
