package handlers

import (
	"invoicehub/internal/analytics"
	"invoicehub/internal/common"

	"github.com/labstack/echo/v4"
)

// AnalyticsHandlers exposes the revenue reports
type AnalyticsHandlers struct {
	service *analytics.Service
}

func NewAnalyticsHandlers(service *analytics.Service) *AnalyticsHandlers {
	return &AnalyticsHandlers{service: service}
}

func analyticsFilter(c echo.Context) (analytics.Filter, error) {
	return analytics.ParseFilter(
		c.QueryParam("startDate"),
		c.QueryParam("endDate"),
		c.QueryParam("createdBy"),
		c.QueryParam("paymentStatus"),
		c.QueryParam("platformChargeType"),
	)
}

// DashboardStats handles GET /analytics/dashboard/stats
//
//	@Summary	Revenue summary
//	@Tags		analytics
//	@Produce	json
//	@Param		startDate			query		string	false	"YYYY-MM-DD"
//	@Param		endDate				query		string	false	"YYYY-MM-DD"
//	@Param		createdBy			query		string	false	"Creator id"
//	@Param		paymentStatus		query		string	false	"unpaid, paid or expired"
//	@Param		platformChargeType	query		string	false	"Charge type"
//	@Success	200					{object}	common.APIResponse
//	@Router		/analytics/dashboard/stats [get]
func (h *AnalyticsHandlers) DashboardStats(c echo.Context) error {
	f, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	stats, err := h.service.DashboardStats(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, stats, "Dashboard stats retrieved successfully")
}

// RevenueTrend handles GET /analytics/revenue/trend
func (h *AnalyticsHandlers) RevenueTrend(c echo.Context) error {
	f, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	points, err := h.service.RevenueTrend(c.Request().Context(), f, analytics.ParseGroupBy(c.QueryParam("groupBy")))
	if err != nil {
		return err
	}
	return common.SendSuccess(c, points, "Revenue trend retrieved successfully")
}

// PaymentMethods handles GET /analytics/payment-methods
func (h *AnalyticsHandlers) PaymentMethods(c echo.Context) error {
	f, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	stats, err := h.service.PaymentMethods(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, stats, "Payment method analysis retrieved successfully")
}

// PlatformCharges handles GET /analytics/platform-charges
func (h *AnalyticsHandlers) PlatformCharges(c echo.Context) error {
	f, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	stats, err := h.service.PlatformCharges(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, stats, "Platform charge analysis retrieved successfully")
}

// TopCustomers handles GET /analytics/top-customers
func (h *AnalyticsHandlers) TopCustomers(c echo.Context) error {
	f, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return common.ValidationField("limit", "limit must be a number")
	}
	stats, err := h.service.TopCustomers(c.Request().Context(), f, limit)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, stats, "Top customers retrieved successfully")
}

// Discounts handles GET /analytics/discounts
func (h *AnalyticsHandlers) Discounts(c echo.Context) error {
	f, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	result, err := h.service.DiscountAnalysis(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, result, "Discount analysis retrieved successfully")
}

// FilteredInvoices handles GET /analytics/invoices
func (h *AnalyticsHandlers) FilteredInvoices(c echo.Context) error {
	f, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	q := analytics.FilteredQuery{Filter: f, Search: c.QueryParam("search")}
	if err := echo.QueryParamsBinder(c).Int("page", &q.Page).Int("limit", &q.Limit).BindError(); err != nil {
		return common.Validation("Invalid query parameters")
	}
	page, err := h.service.FilteredInvoices(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return common.SendSuccess(c, page, "Invoices retrieved successfully")
}
