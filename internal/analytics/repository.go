package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicehub/internal/models"
	"invoicehub/internal/repositories"
)

// GroupBy is the bucket size of a revenue trend.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

var periodFormats = map[GroupBy]string{
	GroupByDay:   "YYYY-MM-DD",
	GroupByWeek:  "IYYY-IW",
	GroupByMonth: "YYYY-MM",
}

// ParseGroupBy falls back to day for anything unrecognized.
func ParseGroupBy(v string) GroupBy {
	g := GroupBy(strings.ToLower(strings.TrimSpace(v)))
	if _, ok := periodFormats[g]; ok {
		return g
	}
	return GroupByDay
}

// Filter narrows every analytics query. The date range applies only when both
// bounds are set.
type Filter struct {
	StartDate          *time.Time `json:"startDate,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	CreatedBy          string     `json:"createdBy,omitempty"`
	PaymentStatus      string     `json:"paymentStatus,omitempty"`
	PlatformChargeType string     `json:"platformChargeType,omitempty"`
}

// Key is the normalized cache key form of the filter.
func (f Filter) Key() string {
	var start, end string
	if f.StartDate != nil && f.EndDate != nil {
		start = f.StartDate.UTC().Format(time.RFC3339)
		end = f.EndDate.UTC().Format(time.RFC3339)
	}
	return strings.Join([]string{start, end, f.CreatedBy, f.PaymentStatus, f.PlatformChargeType}, "|")
}

// where renders the filter as a WHERE clause plus positional arguments.
// Extra clauses are appended verbatim. withStatus controls whether the
// dashboard-only status and charge type filters participate.
func (f Filter) where(withStatus bool, extra ...string) (string, []any) {
	var clauses []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.StartDate != nil && f.EndDate != nil {
		clauses = append(clauses, fmt.Sprintf("created_at BETWEEN %s AND %s", next(*f.StartDate), next(*f.EndDate)))
	}
	if f.CreatedBy != "" {
		clauses = append(clauses, "created_by->>'id' = "+next(f.CreatedBy))
	}
	if withStatus {
		if f.PaymentStatus != "" {
			clauses = append(clauses, "payment_status = "+next(f.PaymentStatus))
		}
		if f.PlatformChargeType != "" {
			clauses = append(clauses, "platform_charge_type = "+next(f.PlatformChargeType))
		}
	}
	clauses = append(clauses, extra...)

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type Totals struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	WalletRevenue float64 `json:"walletRevenue"`
	TotalGST      float64 `json:"totalGST"`
	TotalDiscount float64 `json:"totalDiscount"`
	TotalInvoices int     `json:"totalInvoices"`
}

type StatusAmount struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type TrendPoint struct {
	Period         string  `json:"period"`
	Revenue        float64 `json:"revenue"`
	PlatformCharge float64 `json:"platformCharge"`
	WalletRecharge float64 `json:"walletRecharge"`
	InvoiceCount   int     `json:"invoiceCount"`
}

type PaymentMethodStat struct {
	Method      string  `json:"method"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

type PlatformChargeStat struct {
	Type        string  `json:"type"`
	Count       int     `json:"count"`
	TotalCharge float64 `json:"totalCharge"`
	AvgCharge   float64 `json:"avgCharge"`
}

type CustomerStat struct {
	CompanyName     string  `json:"companyName"`
	ContactPerson   string  `json:"contactPerson"`
	Email           string  `json:"email"`
	InvoiceCount    int     `json:"invoiceCount"`
	TotalRevenue    float64 `json:"totalRevenue"`
	AvgInvoiceValue float64 `json:"avgInvoiceValue"`
}

type DiscountTotals struct {
	Count              int
	TotalDiscountGiven float64
	AvgDiscountPercent float64
}

// Repository runs the aggregate queries behind the analytics reports.
type Repository interface {
	Totals(ctx context.Context, f Filter) (*Totals, error)
	StatusBreakdown(ctx context.Context, f Filter) (map[models.PaymentStatus]StatusAmount, error)
	RevenueTrend(ctx context.Context, f Filter, groupBy GroupBy) ([]TrendPoint, error)
	PaymentMethods(ctx context.Context, f Filter) ([]PaymentMethodStat, error)
	PlatformCharges(ctx context.Context, f Filter) ([]PlatformChargeStat, error)
	TopCustomers(ctx context.Context, f Filter, limit int) ([]CustomerStat, error)
	Discounts(ctx context.Context, f Filter) (*DiscountTotals, error)
	CountInvoices(ctx context.Context, f Filter) (int, error)
}

type repository struct {
	db repositories.Database
}

func NewRepository(db repositories.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Totals(ctx context.Context, f Filter) (*Totals, error) {
	where, args := f.where(true)
	query := `SELECT COALESCE(SUM(total), 0), COALESCE(SUM(wallet_recharge), 0), COALESCE(SUM(gst_amount), 0),
		COALESCE(SUM(discount_amount), 0), COUNT(*) FROM invoices` + where

	var t Totals
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&t.TotalRevenue, &t.WalletRevenue, &t.TotalGST, &t.TotalDiscount, &t.TotalInvoices,
	); err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}
	return &t, nil
}

func (r *repository) StatusBreakdown(ctx context.Context, f Filter) (map[models.PaymentStatus]StatusAmount, error) {
	where, args := f.where(true)
	query := `SELECT payment_status, COUNT(*), COALESCE(SUM(total), 0) FROM invoices` + where + ` GROUP BY payment_status`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("payment status breakdown: %w", err)
	}
	defer rows.Close()

	out := make(map[models.PaymentStatus]StatusAmount)
	for rows.Next() {
		var status models.PaymentStatus
		var s StatusAmount
		if err := rows.Scan(&status, &s.Count, &s.Amount); err != nil {
			return nil, err
		}
		out[status] = s
	}
	return out, rows.Err()
}

func (r *repository) RevenueTrend(ctx context.Context, f Filter, groupBy GroupBy) ([]TrendPoint, error) {
	format, ok := periodFormats[groupBy]
	if !ok {
		format = periodFormats[GroupByDay]
	}
	where, args := f.where(false)
	// The format is taken from a fixed table, never from input.
	period := fmt.Sprintf("to_char(created_at, '%s')", format)
	query := fmt.Sprintf(`SELECT %s AS period, COALESCE(SUM(total), 0), COALESCE(SUM(platform_charge), 0),
		COALESCE(SUM(wallet_recharge), 0), COUNT(*) FROM invoices%s GROUP BY period ORDER BY period ASC`, period, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("revenue trend: %w", err)
	}
	defer rows.Close()

	points := []TrendPoint{}
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Period, &p.Revenue, &p.PlatformCharge, &p.WalletRecharge, &p.InvoiceCount); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *repository) PaymentMethods(ctx context.Context, f Filter) ([]PaymentMethodStat, error) {
	where, args := f.where(false, "payment_status = 'paid'")
	query := `SELECT COALESCE(payment_method, 'Unknown') AS method, COUNT(*), COALESCE(SUM(total), 0)
		FROM invoices` + where + ` GROUP BY method ORDER BY COUNT(*) DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("payment methods: %w", err)
	}
	defer rows.Close()

	stats := []PaymentMethodStat{}
	for rows.Next() {
		var s PaymentMethodStat
		if err := rows.Scan(&s.Method, &s.Count, &s.TotalAmount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *repository) PlatformCharges(ctx context.Context, f Filter) ([]PlatformChargeStat, error) {
	where, args := f.where(false, "platform_charge_type IS NOT NULL", "platform_charge_type <> ''")
	query := `SELECT platform_charge_type, COUNT(*), COALESCE(SUM(platform_charge), 0), COALESCE(AVG(platform_charge), 0)
		FROM invoices` + where + ` GROUP BY platform_charge_type ORDER BY platform_charge_type ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("platform charges: %w", err)
	}
	defer rows.Close()

	stats := []PlatformChargeStat{}
	for rows.Next() {
		var s PlatformChargeStat
		if err := rows.Scan(&s.Type, &s.Count, &s.TotalCharge, &s.AvgCharge); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *repository) TopCustomers(ctx context.Context, f Filter, limit int) ([]CustomerStat, error) {
	where, args := f.where(false)
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT company_name, contact_person, email, COUNT(*), COALESCE(SUM(total), 0), COALESCE(AVG(total), 0)
		FROM invoices%s GROUP BY company_name, contact_person, email ORDER BY SUM(total) DESC LIMIT $%d`, where, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	defer rows.Close()

	stats := []CustomerStat{}
	for rows.Next() {
		var s CustomerStat
		if err := rows.Scan(&s.CompanyName, &s.ContactPerson, &s.Email, &s.InvoiceCount, &s.TotalRevenue, &s.AvgInvoiceValue); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *repository) Discounts(ctx context.Context, f Filter) (*DiscountTotals, error) {
	where, args := f.where(false, "discount > 0")
	query := `SELECT COUNT(*), COALESCE(SUM(discount_amount), 0), COALESCE(AVG(discount), 0) FROM invoices` + where

	var d DiscountTotals
	if err := r.db.QueryRow(ctx, query, args...).Scan(&d.Count, &d.TotalDiscountGiven, &d.AvgDiscountPercent); err != nil {
		return nil, fmt.Errorf("discount totals: %w", err)
	}
	return &d, nil
}

func (r *repository) CountInvoices(ctx context.Context, f Filter) (int, error) {
	where, args := f.where(false)
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}
