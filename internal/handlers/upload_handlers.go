package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/services"

	"github.com/labstack/echo/v4"
)

const multipartMemory = 16 << 20

type UploadHandlers struct {
	uploadService services.UploadService
	maxBytes      int64
}

func NewUploadHandlers(uploadService services.UploadService, maxBytes int64) *UploadHandlers {
	if maxBytes <= 0 {
		maxBytes = services.DefaultMaxUploadBytes
	}
	return &UploadHandlers{uploadService: uploadService, maxBytes: maxBytes}
}

// Upload handles POST /uploads (multipart: id, pdf_type, file)
//
//	@Summary	Attach a PDF to an invoice
//	@Tags		uploads
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id			formData	string	true	"Invoice ID"
//	@Param		pdf_type	formData	string	true	"quotation, proforma or payment"
//	@Param		file		formData	file	true	"PDF document"
//	@Success	201			{object}	common.APIResponse
//	@Failure	400			{object}	common.APIResponse
//	@Security	BearerAuth
//	@Router		/uploads [post]
func (h *UploadHandlers) Upload(c echo.Context) error {
	// the multipart envelope adds a little on top of the file itself
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxBytes+1<<20)
	if err := c.Request().ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.ValidationField("file", fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
		}
		return common.Validation("Invalid multipart form")
	}

	id, err := common.ValidateUUID(c.FormValue("id"), "id")
	if err != nil {
		return err
	}
	pdfType := models.PDFType(c.FormValue("pdf_type"))
	if !pdfType.Valid() {
		return common.ValidationField("pdf_type", "pdf_type must be one of quotation, proforma, payment")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return common.ValidationField("file", "file is required")
	}
	if header.Size > h.maxBytes {
		return common.ValidationField("file", fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
	}
	f, err := header.Open()
	if err != nil {
		return common.Internal("Failed to read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return common.Internal("Failed to read upload", err)
	}

	result, err := h.uploadService.Upload(c.Request().Context(), services.UploadInput{
		InvoiceID: id,
		PDFType:   pdfType,
		Filename:  header.Filename,
		Data:      data,
	})
	if err != nil {
		return err
	}
	return common.SendCreated(c, result, "File uploaded successfully")
}
