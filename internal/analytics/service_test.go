package analytics

import (
	"context"
	"testing"
	"time"

	"invoicehub/internal/caching"
	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AnalyticsServiceTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	service *Service
	ctx     context.Context
	filter  Filter
}

func (suite *AnalyticsServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	mock.MatchExpectationsInOrder(false)
	suite.mock = mock
	suite.service = NewService(NewRepository(mock), repositories.NewInvoiceRepo(mock), caching.NewNoopCache(), 0)
	suite.ctx = context.Background()

	f, err := ParseFilter("2024-03-01", "2024-03-31", "user-1", "", "")
	require.NoError(suite.T(), err)
	suite.filter = f
}

func (suite *AnalyticsServiceTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func (suite *AnalyticsServiceTestSuite) TestDashboardStats() {
	start, end := *suite.filter.StartDate, *suite.filter.EndDate
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(total\), 0\), COALESCE\(SUM\(wallet_recharge\), 0\).* FROM invoices WHERE created_at BETWEEN \$1 AND \$2 AND created_by->>'id' = \$3`).
		WithArgs(start, end, "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"revenue", "wallet", "gst", "discount", "count"}).
			AddRow(12000.0, 3000.0, 1800.0, 400.0, 5))
	suite.mock.ExpectQuery(`SELECT payment_status, COUNT\(\*\), COALESCE\(SUM\(total\), 0\) FROM invoices WHERE .* GROUP BY payment_status`).
		WithArgs(start, end, "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"payment_status", "count", "amount"}).
			AddRow(models.PaymentPaid, 3, 9000.0).
			AddRow(models.PaymentUnpaid, 2, 3000.0))

	stats, err := suite.service.DashboardStats(suite.ctx, suite.filter)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12000.0, stats.TotalRevenue)
	assert.Equal(suite.T(), 3000.0, stats.WalletRevenue)
	assert.Equal(suite.T(), 5, stats.TotalInvoices)
	assert.Equal(suite.T(), StatusAmount{Count: 3, Amount: 9000}, stats.PaidInvoices)
	assert.Equal(suite.T(), StatusAmount{Count: 2, Amount: 3000}, stats.UnpaidInvoices)
}

func (suite *AnalyticsServiceTestSuite) TestDashboardStatsAppliesStatusFilters() {
	f := Filter{PaymentStatus: "paid", PlatformChargeType: "monthly"}
	suite.mock.ExpectQuery(`FROM invoices WHERE payment_status = \$1 AND platform_charge_type = \$2$`).
		WithArgs("paid", "monthly").
		WillReturnRows(pgxmock.NewRows([]string{"revenue", "wallet", "gst", "discount", "count"}).
			AddRow(0.0, 0.0, 0.0, 0.0, 0))
	suite.mock.ExpectQuery(`GROUP BY payment_status`).
		WithArgs("paid", "monthly").
		WillReturnRows(pgxmock.NewRows([]string{"payment_status", "count", "amount"}))

	stats, err := suite.service.DashboardStats(suite.ctx, f)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), stats.PaidInvoices.Count)
}

func (suite *AnalyticsServiceTestSuite) TestRevenueTrendByWeek() {
	suite.mock.ExpectQuery(`SELECT to_char\(created_at, 'IYYY-IW'\) AS period.* GROUP BY period ORDER BY period ASC`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"period", "revenue", "platform", "wallet", "count"}).
			AddRow("2024-10", 5000.0, 3000.0, 1000.0, 2).
			AddRow("2024-11", 2124.0, 1000.0, 0.0, 1))

	points, err := suite.service.RevenueTrend(suite.ctx, suite.filter, ParseGroupBy("WEEK"))
	require.NoError(suite.T(), err)
	require.Len(suite.T(), points, 2)
	assert.Equal(suite.T(), TrendPoint{Period: "2024-10", Revenue: 5000, PlatformCharge: 3000, WalletRecharge: 1000, InvoiceCount: 2}, points[0])
}

func (suite *AnalyticsServiceTestSuite) TestPaymentMethodsOnlyPaid() {
	suite.mock.ExpectQuery(`SELECT COALESCE\(payment_method, 'Unknown'\) AS method.* WHERE payment_status = 'paid' GROUP BY method`).
		WillReturnRows(pgxmock.NewRows([]string{"method", "count", "total"}).
			AddRow("upi", 4, 8000.0).
			AddRow("Unknown", 1, 500.0))

	stats, err := suite.service.PaymentMethods(suite.ctx, Filter{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []PaymentMethodStat{{"upi", 4, 8000}, {"Unknown", 1, 500}}, stats)
}

func (suite *AnalyticsServiceTestSuite) TestPlatformChargesExcludesUntyped() {
	suite.mock.ExpectQuery(`WHERE platform_charge_type IS NOT NULL AND platform_charge_type <> '' GROUP BY platform_charge_type`).
		WillReturnRows(pgxmock.NewRows([]string{"type", "count", "total", "avg"}).
			AddRow("monthly", 2, 2000.0, 1000.0))

	stats, err := suite.service.PlatformCharges(suite.ctx, Filter{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []PlatformChargeStat{{Type: "monthly", Count: 2, TotalCharge: 2000, AvgCharge: 1000}}, stats)
}

func (suite *AnalyticsServiceTestSuite) TestTopCustomersDefaultLimit() {
	suite.mock.ExpectQuery(`GROUP BY company_name, contact_person, email ORDER BY SUM\(total\) DESC LIMIT \$1`).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"company", "contact", "email", "count", "revenue", "avg"}).
			AddRow("Acme Corp", "Jane", "jane@acme.test", 2, 4248.0, 2124.0))

	stats, err := suite.service.TopCustomers(suite.ctx, Filter{}, 0)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), stats, 1)
	assert.Equal(suite.T(), 2124.0, stats[0].AvgInvoiceValue)
}

func (suite *AnalyticsServiceTestSuite) TestDiscountAnalysis() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(discount_amount\), 0\), COALESCE\(AVG\(discount\), 0\) FROM invoices WHERE discount > 0`).
		WillReturnRows(pgxmock.NewRows([]string{"count", "sum", "avg"}).AddRow(1, 250.0, 12.5))
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM invoices$`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	result, err := suite.service.DiscountAnalysis(suite.ctx, Filter{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), &DiscountAnalysis{
		TotalDiscountedInvoices: 1,
		TotalDiscountGiven:      250,
		AvgDiscountPercent:      12.5,
		DiscountRate:            "33.33",
	}, result)
}

func (suite *AnalyticsServiceTestSuite) TestFilteredInvoicesEmptyPage() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM invoices WHERE .*payment_status = \$\d`).
		WithArgs("paid").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	suite.mock.ExpectQuery(`SELECT .* FROM invoices WHERE .* ORDER BY created_at DESC LIMIT`).
		WithArgs("paid", 10, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	page, err := suite.service.FilteredInvoices(suite.ctx, FilteredQuery{Filter: Filter{PaymentStatus: "paid"}, Page: 2})
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), page.Invoices)
	assert.Empty(suite.T(), page.Invoices)
	assert.Equal(suite.T(), models.Pagination{Total: 0, Page: 2, Limit: 10, TotalPages: 0}, page.Pagination)
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}

func TestDashboardStatsServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total\), 0\)`).
		WillReturnRows(pgxmock.NewRows([]string{"revenue", "wallet", "gst", "discount", "count"}).AddRow(100.0, 0.0, 18.0, 0.0, 1))
	mock.ExpectQuery(`GROUP BY payment_status`).
		WillReturnRows(pgxmock.NewRows([]string{"payment_status", "count", "amount"}).AddRow(models.PaymentUnpaid, 1, 100.0))

	cache := caching.NewRedisCacheService(client, time.Minute)
	service := NewService(NewRepository(mock), repositories.NewInvoiceRepo(mock), cache, time.Minute)

	first, err := service.DashboardStats(context.Background(), Filter{})
	require.NoError(t, err)
	second, err := service.DashboardStats(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(caching.AnalyticsKey(reportDashboard, Filter{}.Key())))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("2024-03-01", "2024-03-31", " user-1 ", "PAID", "")
	require.NoError(t, err)
	assert.Equal(t, "paid", f.PaymentStatus)
	assert.Equal(t, "user-1", f.CreatedBy)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), *f.EndDate)

	f, err = ParseFilter("2024-03-01", "", "", "", "")
	require.NoError(t, err)
	assert.Nil(t, f.StartDate, "a single bound does not apply")

	_, err = ParseFilter("2024-03-31", "2024-03-01", "", "", "")
	assert.True(t, common.IsKind(err, common.KindValidation))

	_, err = ParseFilter("", "", "", "overdue", "")
	assert.True(t, common.IsKind(err, common.KindValidation))
}

func TestDiscountRate(t *testing.T) {
	assert.Equal(t, "0.00", discountRate(0, 0))
	assert.Equal(t, "50.00", discountRate(1, 2))
}

func TestParseGroupBy(t *testing.T) {
	assert.Equal(t, GroupByMonth, ParseGroupBy("month"))
	assert.Equal(t, GroupByDay, ParseGroupBy("quarter"))
}
