package models

// ShareInvoiceRequest is the body of POST /emails/share-invoice.
type ShareInvoiceRequest struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	InvoiceType   string `json:"invoice_type" validate:"required"`
	InvoiceNumber string `json:"invoice_number" validate:"required"`
	InvoiceURL    string `json:"invoice_url" validate:"required,url"`
	PaymentURL    string `json:"payment_url" validate:"omitempty,url"`
	Email         string `json:"email" validate:"required,email"`
}

// EmailResult reports a delivered or queued message.
type EmailResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
	Queued    bool   `json:"queued,omitempty"`
}
