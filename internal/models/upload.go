package models

// PDFType selects which invoice document a PDF belongs to.
type PDFType string

const (
	PDFQuotation PDFType = "quotation"
	PDFProforma  PDFType = "proforma"
	PDFPayment   PDFType = "payment"
)

func (p PDFType) Valid() bool {
	return p == PDFQuotation || p == PDFProforma || p == PDFPayment
}

// Column returns the invoice column holding the document URL.
func (p PDFType) Column() string {
	switch p {
	case PDFQuotation:
		return "quotation_invoice_pdf_url"
	case PDFProforma:
		return "proforma_invoice_pdf_url"
	case PDFPayment:
		return "payment_invoice_pdf_url"
	}
	return ""
}

// CurrentURL returns the URL the invoice currently stores for p.
func (p PDFType) CurrentURL(inv *Invoice) *string {
	switch p {
	case PDFQuotation:
		return inv.QuotationInvoicePDFURL
	case PDFProforma:
		return inv.ProformaInvoicePDFURL
	case PDFPayment:
		return inv.PaymentInvoicePDFURL
	}
	return nil
}

// StoredFile describes an uploaded document.
type StoredFile struct {
	URL      string `json:"url"`
	Key      string `json:"-"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type UploadResult struct {
	Invoice *Invoice   `json:"invoice"`
	File    StoredFile `json:"file"`
}
