package handlers

import (
	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/services"

	"github.com/labstack/echo/v4"
)

// BankInfoHandlers handles HTTP requests for the seller's bank accounts
type BankInfoHandlers struct {
	bankService services.BankInfoService
}

func NewBankInfoHandlers(bankService services.BankInfoService) *BankInfoHandlers {
	return &BankInfoHandlers{bankService: bankService}
}

// Create handles POST /bank-info
func (h *BankInfoHandlers) Create(c echo.Context) error {
	var req models.CreateBankInfoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	bank, err := h.bankService.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return common.SendCreated(c, bank, "Bank information created successfully")
}

// List handles GET /bank-info
func (h *BankInfoHandlers) List(c echo.Context) error {
	var q models.BankInfoListQuery
	var primary string
	if err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		String("status", &q.Status).
		String("is_primary", &primary).
		String("search", &q.Search).
		BindError(); err != nil {
		return common.Validation("Invalid query parameters")
	}
	switch primary {
	case "":
	case "true":
		v := true
		q.IsPrimary = &v
	case "false":
		v := false
		q.IsPrimary = &v
	default:
		return common.ValidationField("is_primary", "is_primary must be true or false")
	}

	list, err := h.bankService.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, list, "Bank information retrieved successfully")
}

// GetPrimary handles GET /bank-info/primary
func (h *BankInfoHandlers) GetPrimary(c echo.Context) error {
	bank, err := h.bankService.GetPrimary(c.Request().Context())
	if err != nil {
		return err
	}
	return common.SendSuccess(c, bank, "Primary bank information retrieved successfully")
}

// GetByID handles GET /bank-info/:id
func (h *BankInfoHandlers) GetByID(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}
	bank, err := h.bankService.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, bank, "Bank information retrieved successfully")
}

// Update handles PUT /bank-info/:id
func (h *BankInfoHandlers) Update(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}
	var req models.UpdateBankInfoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	bank, err := h.bankService.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, bank, "Bank information updated successfully")
}

// Delete handles DELETE /bank-info/:id
func (h *BankInfoHandlers) Delete(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}
	if err := h.bankService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return common.SendSuccess(c, nil, "Bank information deleted successfully")
}
