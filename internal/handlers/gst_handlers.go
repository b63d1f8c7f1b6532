package handlers

import (
	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/services"

	"github.com/labstack/echo/v4"
)

type GSTHandlers struct {
	gstService services.GSTService
}

func NewGSTHandlers(gstService services.GSTService) *GSTHandlers {
	return &GSTHandlers{gstService: gstService}
}

// Verify handles POST /gst/verify. It blocks until the verification record
// completes or the poll ceiling answers 429.
//
//	@Summary	Verify a GSTIN
//	@Tags		gst
//	@Accept		json
//	@Produce	json
//	@Param		body	body		models.GSTVerifyRequest	true	"GSTIN"
//	@Success	200		{object}	common.APIResponse
//	@Failure	429		{object}	common.APIResponse
//	@Router		/gst/verify [post]
func (h *GSTHandlers) Verify(c echo.Context) error {
	var req models.GSTVerifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	info, err := h.gstService.Verify(c.Request().Context(), req.GSTNumber)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, info, "GST details verified successfully")
}

// Exists handles POST /gst/is-exists
func (h *GSTHandlers) Exists(c echo.Context) error {
	var req models.GSTVerifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	info, err := h.gstService.Exists(c.Request().Context(), req.GSTNumber)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, info, "GST details found")
}
