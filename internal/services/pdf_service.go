package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/config"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount renders a rupee amount with digit grouping. The core PDF fonts
// have no rupee glyph, so the prefix is spelled out.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("Rs. %.2f", v)
}

// PDFService renders invoice documents and stores them in the invoice's document slots.
type PDFService interface {
	Render(invoice *models.Invoice, pdfType models.PDFType, bank *models.BankInfo) ([]byte, error)
	Generate(ctx context.Context, invoiceID uuid.UUID, pdfType models.PDFType) (*models.UploadResult, error)
}

type pdfService struct {
	invoices InvoiceService
	banks    BankInfoService
	uploads  UploadService
	company  config.CompanyProfile
	log      zerolog.Logger
}

func NewPDFService(invoices InvoiceService, banks BankInfoService, uploads UploadService, company config.CompanyProfile) PDFService {
	return &pdfService{
		invoices: invoices,
		banks:    banks,
		uploads:  uploads,
		company:  company,
		log:      logger.WithComponent("pdf-service"),
	}
}

func documentTitle(pdfType models.PDFType) string {
	switch pdfType {
	case models.PDFProforma:
		return "PROFORMA INVOICE"
	case models.PDFPayment:
		return "PAYMENT RECEIPT"
	default:
		return "QUOTATION"
	}
}

func documentNumber(inv *models.Invoice, pdfType models.PDFType) string {
	if pdfType == models.PDFQuotation {
		return inv.QuotationNumber
	}
	return common.SafeString(inv.ProformaNumber)
}

func checkRenderable(inv *models.Invoice, pdfType models.PDFType) error {
	switch pdfType {
	case models.PDFQuotation:
		return nil
	case models.PDFProforma:
		if !inv.ProformaInvoice || inv.ProformaNumber == nil {
			return common.Conflict("proforma has not been issued for this invoice")
		}
		return nil
	case models.PDFPayment:
		if inv.PaymentStatus != models.PaymentPaid {
			return common.Conflict("invoice has not been paid")
		}
		return nil
	}
	return common.ValidationField("pdf_type", "Invalid PDF type. Must be quotation, proforma, or payment")
}

func (s *pdfService) Generate(ctx context.Context, invoiceID uuid.UUID, pdfType models.PDFType) (*models.UploadResult, error) {
	inv, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := checkRenderable(inv, pdfType); err != nil {
		return nil, err
	}

	var bank *models.BankInfo
	if pdfType == models.PDFProforma {
		bank, err = s.banks.GetPrimary(ctx)
		if err != nil && !common.IsKind(err, common.KindNotFound) {
			return nil, err
		}
	}

	data, err := s.Render(inv, pdfType, bank)
	if err != nil {
		return nil, common.Internal("Failed to render PDF", err)
	}

	filename := fmt.Sprintf("%s_%s.pdf", pdfType, documentNumber(inv, pdfType))
	result, err := s.uploads.Upload(ctx, UploadInput{
		InvoiceID: invoiceID,
		PDFType:   pdfType,
		Filename:  filename,
		Data:      data,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("invoice_id", invoiceID.String()).Str("pdf_type", string(pdfType)).Msg("document rendered")
	return result, nil
}

func (s *pdfService) Render(inv *models.Invoice, pdfType models.PDFType, bank *models.BankInfo) ([]byte, error) {
	const margin = 15.0

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(fmt.Sprintf("%s %s", documentTitle(pdfType), documentNumber(inv, pdfType)), false)
	pdf.SetAuthor(s.company.Name, false)
	pdf.AddPage()

	// seller block
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.Cell(110, 8, s.company.LegalName)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, documentTitle(pdfType), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{s.company.Address, s.company.Email + " | " + s.company.Phone, s.company.Website} {
		if strings.Trim(line, " |") != "" {
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
	}
	if s.company.GSTIN != "" {
		pdf.CellFormat(0, 5, "GSTIN: "+s.company.GSTIN, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// document metadata
	pdf.SetFont("Arial", "B", 10)
	meta := [][2]string{}
	switch pdfType {
	case models.PDFQuotation:
		meta = append(meta,
			[2]string{"Quotation No.", inv.QuotationNumber},
			[2]string{"Date", inv.QuotationDate.Format("02 Jan 2006")},
			[2]string{"Valid Until", inv.QuotationValidUntilDate.Format("02 Jan 2006")},
		)
	case models.PDFProforma:
		meta = append(meta,
			[2]string{"Proforma No.", common.SafeString(inv.ProformaNumber)},
			[2]string{"Quotation No.", inv.QuotationNumber},
			[2]string{"Date", formatDate(inv.ProformaDate)},
			[2]string{"Valid Until", formatDate(inv.ProformaValidUntilDate)},
		)
	case models.PDFPayment:
		meta = append(meta,
			[2]string{"Receipt For", common.SafeString(inv.ProformaNumber)},
			[2]string{"Payment ID", common.SafeString(inv.PaymentID)},
			[2]string{"Method", common.SafeString(inv.PaymentMethod)},
			[2]string{"Paid On", formatDate(inv.PaidAt)},
		)
	}
	for _, m := range meta {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(35, 6, m[0]+":")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, m[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// buyer block
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "BILL TO:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, inv.CompanyName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Attn: "+inv.ContactPerson, "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 5, inv.Address, "", "L", false)
	pdf.CellFormat(0, 6, inv.Email+" | "+inv.Phone, "", 1, "L", false, 0, "")
	pdf.Ln(5)

	// line items
	widths := []float64{15, 120, 45}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range []string{"#", "Description", "Amount"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	row := 0
	addLine := func(desc string, amount float64) {
		if amount <= 0 {
			return
		}
		row++
		pdf.CellFormat(widths[0], 7, fmt.Sprintf("%d", row), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 7, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, FormatAmount(amount), "1", 1, "R", false, 0, "")
	}
	platform := "Platform Charge"
	if t := common.SafeString(inv.PlatformChargeType); t != "" {
		platform += " (" + t + ")"
	}
	addLine(platform, inv.PlatformCharge)
	addLine("Wallet Recharge", inv.WalletRecharge)
	addLine("Setup Fee", inv.SetupFee)
	addLine("Customization Fee", inv.CustomizationFee)
	for _, fee := range inv.AdditionalFee {
		addLine(orDefault(fee.Description, "Additional Fee"), fee.Amount.Float())
	}
	pdf.Ln(3)

	// totals
	totals := [][2]string{
		{"Sub Total", FormatAmount(inv.SubTotal)},
	}
	if inv.DiscountAmount > 0 {
		totals = append(totals, [2]string{"Discount", "- " + FormatAmount(inv.DiscountAmount)})
		totals = append(totals, [2]string{"Amount After Discount", FormatAmount(inv.AmountAfterDiscount)})
	}
	totals = append(totals, [2]string{fmt.Sprintf("GST (%g%%)", inv.GST), FormatAmount(inv.GSTAmount)})
	for _, t := range totals {
		pdf.CellFormat(135, 6, t[0]+":", "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, t[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(220, 20, 60)
	label := "TOTAL"
	if pdfType == models.PDFPayment {
		label = "AMOUNT PAID"
	}
	pdf.CellFormat(135, 8, label+":", "", 0, "R", false, 0, "")
	pdf.CellFormat(45, 8, FormatAmount(inv.Total), "", 1, "R", false, 0, "")
	pdf.SetTextColor(33, 37, 41)
	pdf.Ln(6)

	if pdfType == models.PDFProforma {
		if inv.PaymentURL != nil && inv.PaymentURL.ShortURL != "" {
			pdf.SetFont("Arial", "B", 10)
			pdf.Cell(35, 6, "Pay online:")
			pdf.SetFont("Arial", "U", 10)
			pdf.SetTextColor(13, 110, 253)
			pdf.CellFormat(0, 6, inv.PaymentURL.ShortURL, "", 1, "L", false, 0, inv.PaymentURL.ShortURL)
			pdf.SetTextColor(33, 37, 41)
		}
		if bank != nil {
			pdf.Ln(3)
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(0, 6, "Bank Transfer Details", "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			for _, line := range []string{
				"Account Name: " + bank.AccountName,
				"Bank: " + bank.BankName + ", " + bank.Branch,
				"Account No.: " + bank.AccountNumber,
				"IFSC: " + bank.IFSCCode,
			} {
				pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
			}
		}
		pdf.Ln(4)
	}

	// signatory
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "For "+s.company.LegalName, "", 1, "R", false, 0, "")
	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, orDefault(inv.Signature, s.company.Signatory), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, orDefault(inv.Designation, s.company.Designation), "", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5, "This is a computer generated document.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02 Jan 2006")
}
