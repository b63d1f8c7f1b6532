package handlers

import (
	"net/http"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/services"

	"github.com/labstack/echo/v4"
)

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
	pdfService     services.PDFService
}

// NewInvoiceHandlers creates a new invoice handlers instance
func NewInvoiceHandlers(invoiceService services.InvoiceService, pdfService services.PDFService) *InvoiceHandlers {
	return &InvoiceHandlers{
		invoiceService: invoiceService,
		pdfService:     pdfService,
	}
}

func creatorFromContext(c echo.Context) (models.CreatedBy, bool) {
	actor, ok := common.ActorFromContext(c.Request().Context())
	if !ok || actor.ID == "" {
		return models.CreatedBy{}, false
	}
	return models.CreatedBy{ID: actor.ID, Name: actor.Name, Email: actor.Email}, true
}

// CreateInvoice handles POST /invoices
//
//	@Summary	Create a quotation
//	@Tags		invoices
//	@Accept		json
//	@Produce	json
//	@Param		invoice	body		models.CreateInvoiceRequest	true	"Quotation"
//	@Success	201		{object}	common.APIResponse
//	@Failure	400		{object}	common.APIResponse
//	@Security	BearerAuth
//	@Router		/invoices [post]
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	creator, ok := creatorFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req models.CreateInvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request().Context(), req, creator)
	if err != nil {
		return err
	}
	return common.SendCreated(c, invoice, "Invoice created successfully")
}

// ListInvoices handles GET /invoices
//
//	@Summary	List invoices
//	@Tags		invoices
//	@Produce	json
//	@Param		page	query		int		false	"Page"
//	@Param		limit	query		int		false	"Page size"
//	@Param		sort	query		string	false	"Sort column"
//	@Param		order	query		string	false	"asc or desc"
//	@Param		search	query		string	false	"Company, contact, email or quotation number"
//	@Success	200		{object}	common.APIResponse
//	@Router		/invoices [get]
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	var q models.InvoiceListQuery
	if err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		String("sort", &q.Sort).
		String("order", &q.Order).
		String("search", &q.Search).
		String("payment_status", &q.PaymentStatus).
		String("platform_charge_type", &q.PlatformChargeType).
		BindError(); err != nil {
		return common.Validation("Invalid query parameters")
	}

	result, err := h.invoiceService.ListInvoices(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, result, "Invoices retrieved successfully")
}

// GetInvoice handles GET /invoices/:id
//
//	@Summary	Get an invoice
//	@Tags		invoices
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"
//	@Success	200	{object}	common.APIResponse
//	@Failure	404	{object}	common.APIResponse
//	@Router		/invoices/{id} [get]
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}
	invoice, err := h.invoiceService.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, invoice, "Invoice retrieved successfully")
}

// UpdateInvoice handles PUT /invoices/:id
func (h *InvoiceHandlers) UpdateInvoice(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}
	var req models.UpdateInvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, invoice, "Invoice updated successfully")
}

// DeleteInvoice handles DELETE /invoices/:id
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}
	if err := h.invoiceService.DeleteInvoice(c.Request().Context(), id); err != nil {
		return err
	}
	return common.SendSuccess(c, nil, "Invoice deleted successfully")
}

// GenerateProforma handles PUT /invoices/generate-proforma/:id
//
//	@Summary	Issue a proforma with a payment link
//	@Tags		invoices
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"
//	@Success	200	{object}	common.APIResponse
//	@Failure	409	{object}	common.APIResponse
//	@Failure	502	{object}	common.APIResponse
//	@Security	BearerAuth
//	@Router		/invoices/generate-proforma/{id} [put]
func (h *InvoiceHandlers) GenerateProforma(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}
	invoice, err := h.invoiceService.GenerateProforma(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, invoice, "Proforma invoice generated successfully")
}

// GeneratePDF handles POST /invoices/:id/pdf/:pdf_type
func (h *InvoiceHandlers) GeneratePDF(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}
	pdfType := models.PDFType(c.Param("pdf_type"))
	if !pdfType.Valid() {
		return common.ValidationField("pdf_type", "pdf_type must be one of quotation, proforma, payment")
	}

	result, err := h.pdfService.Generate(c.Request().Context(), id, pdfType)
	if err != nil {
		return err
	}
	return common.SendCreated(c, result, "PDF generated successfully")
}
