package models

import (
	"errors"
	"testing"

	"invoicehub/internal/calculator"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to InvoiceStatus
		allowed  bool
	}{
		{StatusQuotation, StatusProformaIssued, true},
		{StatusQuotation, StatusPaid, false},
		{StatusQuotation, StatusExpired, false},
		{StatusProformaIssued, StatusPaid, true},
		{StatusProformaIssued, StatusExpired, true},
		{StatusProformaIssued, StatusQuotation, false},
		{StatusExpired, StatusProformaIssued, true},
		{StatusExpired, StatusPaid, true},
		{StatusPaid, StatusExpired, false},
		{StatusPaid, StatusProformaIssued, false},
		{StatusPaid, StatusQuotation, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			next, err := tt.from.Transition(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, next)
				return
			}
			assert.True(t, errors.Is(err, ErrIllegalTransition))
			assert.Equal(t, tt.from, next)
		})
	}
}

func TestInvoiceStatusValid(t *testing.T) {
	assert.True(t, StatusPaid.Valid())
	assert.False(t, InvoiceStatus("overdue").Valid())
}

func TestInvoiceApplyTotals(t *testing.T) {
	inv := &Invoice{PlatformCharge: 100, GST: 18}
	inv.ApplyTotals(calculator.Calculate(inv.CalculatorInput()))

	assert.Equal(t, 100.0, inv.SubTotal)
	assert.Equal(t, 18.0, inv.GSTAmount)
	assert.Equal(t, 118.0, inv.Total)
	assert.Equal(t, inv.Total, inv.AmountAfterDiscount+inv.GSTAmount)
}

func TestPDFTypeColumn(t *testing.T) {
	assert.Equal(t, "quotation_invoice_pdf_url", PDFQuotation.Column())
	assert.Equal(t, "proforma_invoice_pdf_url", PDFProforma.Column())
	assert.Equal(t, "payment_invoice_pdf_url", PDFPayment.Column())
	assert.Equal(t, "", PDFType("receipt").Column())
	assert.False(t, PDFType("receipt").Valid())
}
