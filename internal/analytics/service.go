package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"invoicehub/internal/caching"
	"invoicehub/internal/common"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCacheTTL      = 60 * time.Second
	defaultTopCustomers  = 10
	maxTopCustomers      = 100
	defaultFilteredLimit = 10
	maxFilteredLimit     = 100
	reportDashboard      = "dashboard"
	reportRevenueTrend   = "trend"
)

// DashboardStats is the headline revenue summary.
type DashboardStats struct {
	Totals
	PaidInvoices   StatusAmount `json:"paidInvoices"`
	UnpaidInvoices StatusAmount `json:"unpaidInvoices"`
}

type DiscountAnalysis struct {
	TotalDiscountedInvoices int     `json:"totalDiscountedInvoices"`
	TotalDiscountGiven      float64 `json:"totalDiscountGiven"`
	AvgDiscountPercent      float64 `json:"avgDiscountPercent"`
	DiscountRate            string  `json:"discountRate"`
}

type FilteredQuery struct {
	Filter
	Search string
	Page   int
	Limit  int
}

type InvoicePage struct {
	Invoices   []*models.Invoice `json:"invoices"`
	Pagination models.Pagination `json:"pagination"`
}

// ParseFilter builds a Filter from raw query values. A date-only end bound
// covers the whole day.
func ParseFilter(startDate, endDate, createdBy, paymentStatus, platformChargeType string) (Filter, error) {
	f := Filter{
		CreatedBy:          strings.TrimSpace(createdBy),
		PaymentStatus:      strings.ToLower(strings.TrimSpace(paymentStatus)),
		PlatformChargeType: strings.TrimSpace(platformChargeType),
	}
	if f.PaymentStatus != "" && !models.PaymentStatus(f.PaymentStatus).Valid() {
		return Filter{}, common.ValidationField("paymentStatus", "paymentStatus must be one of unpaid, paid, expired")
	}

	startDate, endDate = strings.TrimSpace(startDate), strings.TrimSpace(endDate)
	if startDate == "" || endDate == "" {
		return f, nil
	}
	start, err := common.ParseDate(startDate, "startDate")
	if err != nil {
		return Filter{}, err
	}
	end, err := common.ParseDate(endDate, "endDate")
	if err != nil {
		return Filter{}, err
	}
	if len(endDate) == len(time.DateOnly) {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if err := common.ValidateDateRange(start, end); err != nil {
		return Filter{}, err
	}
	f.StartDate, f.EndDate = &start, &end
	return f, nil
}

// Service answers the analytics reports, caching the dashboard and trend.
type Service struct {
	repo     Repository
	invoices repositories.InvoiceRepository
	cache    caching.CacheService
	ttl      time.Duration
	log      zerolog.Logger
}

func NewService(repo Repository, invoices repositories.InvoiceRepository, cache caching.CacheService, ttl time.Duration) *Service {
	if cache == nil {
		cache = caching.NewNoopCache()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		repo:     repo,
		invoices: invoices,
		cache:    cache,
		ttl:      ttl,
		log:      logger.WithComponent("analytics"),
	}
}

func (s *Service) DashboardStats(ctx context.Context, f Filter) (*DashboardStats, error) {
	key := caching.AnalyticsKey(reportDashboard, f.Key())
	var cached DashboardStats
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	var (
		totals    *Totals
		breakdown map[models.PaymentStatus]StatusAmount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.repo.Totals(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		breakdown, err = s.repo.StatusBreakdown(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Str("filter", f.Key()).Msg("dashboard stats failed")
		return nil, err
	}

	stats := &DashboardStats{
		Totals:         *totals,
		PaidInvoices:   breakdown[models.PaymentPaid],
		UnpaidInvoices: breakdown[models.PaymentUnpaid],
	}
	s.cache.SetJSON(ctx, key, stats, s.ttl)
	return stats, nil
}

func (s *Service) RevenueTrend(ctx context.Context, f Filter, groupBy GroupBy) ([]TrendPoint, error) {
	key := caching.AnalyticsKey(reportRevenueTrend, string(groupBy)+"|"+f.Key())
	var cached []TrendPoint
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	points, err := s.repo.RevenueTrend(ctx, f, groupBy)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, points, s.ttl)
	return points, nil
}

func (s *Service) PaymentMethods(ctx context.Context, f Filter) ([]PaymentMethodStat, error) {
	return s.repo.PaymentMethods(ctx, f)
}

func (s *Service) PlatformCharges(ctx context.Context, f Filter) ([]PlatformChargeStat, error) {
	return s.repo.PlatformCharges(ctx, f)
}

func (s *Service) TopCustomers(ctx context.Context, f Filter, limit int) ([]CustomerStat, error) {
	if limit <= 0 {
		limit = defaultTopCustomers
	}
	if limit > maxTopCustomers {
		limit = maxTopCustomers
	}
	return s.repo.TopCustomers(ctx, f, limit)
}

func (s *Service) DiscountAnalysis(ctx context.Context, f Filter) (*DiscountAnalysis, error) {
	var (
		discounts *DiscountTotals
		total     int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		discounts, err = s.repo.Discounts(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountInvoices(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DiscountAnalysis{
		TotalDiscountedInvoices: discounts.Count,
		TotalDiscountGiven:      discounts.TotalDiscountGiven,
		AvgDiscountPercent:      discounts.AvgDiscountPercent,
		DiscountRate:            discountRate(discounts.Count, total),
	}, nil
}

func discountRate(discounted, total int) string {
	if total == 0 {
		return "0.00"
	}
	return strconv.FormatFloat(float64(discounted)/float64(total)*100, 'f', 2, 64)
}

func (s *Service) FilteredInvoices(ctx context.Context, q FilteredQuery) (*InvoicePage, error) {
	page, limit := common.ValidatePaginationParams(q.Page, q.Limit, defaultFilteredLimit, maxFilteredLimit)
	invoices, total, err := s.invoices.List(ctx, models.InvoiceListQuery{
		Page:               page,
		Limit:              limit,
		Sort:               "created_at",
		Order:              "desc",
		Search:             strings.TrimSpace(q.Search),
		PaymentStatus:      q.PaymentStatus,
		PlatformChargeType: q.PlatformChargeType,
		CreatedBy:          q.CreatedBy,
		StartDate:          q.StartDate,
		EndDate:            q.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("filtered invoices: %w", err)
	}
	if invoices == nil {
		invoices = []*models.Invoice{}
	}
	return &InvoicePage{
		Invoices: invoices,
		Pagination: models.Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: common.TotalPages(total, limit),
		},
	}, nil
}
