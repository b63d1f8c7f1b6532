package handlers

import (
	"invoicehub/internal/common"
	"invoicehub/internal/services"

	"github.com/labstack/echo/v4"
)

// SubscriptionPlanHandlers serves the read-only plan catalogue
type SubscriptionPlanHandlers struct {
	planService services.SubscriptionPlanService
}

func NewSubscriptionPlanHandlers(planService services.SubscriptionPlanService) *SubscriptionPlanHandlers {
	return &SubscriptionPlanHandlers{planService: planService}
}

// ListPlans handles GET /subscription-plans
func (h *SubscriptionPlanHandlers) ListPlans(c echo.Context) error {
	plans, err := h.planService.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return common.SendSuccess(c, plans, "Subscription plans retrieved successfully")
}

// GetPlan handles GET /subscription-plans/:uuid
func (h *SubscriptionPlanHandlers) GetPlan(c echo.Context) error {
	plan, err := h.planService.GetByUUID(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return err
	}
	return common.SendSuccess(c, plan, "Subscription plan retrieved successfully")
}
