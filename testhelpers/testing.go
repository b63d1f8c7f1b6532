package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"invoicehub/internal/config"
	"invoicehub/internal/models"
	"invoicehub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds a migrated database connection for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL and applies all migrations.
// The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, config.DatabaseConfig{URL: connString, MaxConns: 4})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool, database.Up); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db := &TestDB{Pool: pool}
	db.Cleanup = func() {
		_, _ = pool.Exec(context.Background(), `TRUNCATE invoices, gst_info, bank_info`)
		pool.Close()
	}
	return db
}

// SeedInvoice inserts a quotation with the given total and payment status.
func SeedInvoice(t *testing.T, db *TestDB, company string, total float64, status models.PaymentStatus) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now().UTC()
	invoiceStatus := models.StatusQuotation
	if status == models.PaymentPaid {
		invoiceStatus = models.StatusPaid
	}
	query := `
		INSERT INTO invoices (id, company_name, contact_person, phone, email, address, created_by,
			sub_total, amount_after_discount, gst_amount, total,
			quotation_number, quotation_date, quotation_valid_until_date, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, 0, $8, $9, $10, $11, $12, $13)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		id, company, "Test Contact", "+919876543210", "billing@example.test", "1 Test Street",
		models.CreatedBy{ID: "user-1", Name: "Tester", Email: "tester@example.test"},
		total, "QT-"+id.String()[:8], now, now.AddDate(0, 0, 15), invoiceStatus, status)
	if err != nil {
		t.Fatalf("Failed to seed invoice: %v", err)
	}
	return id
}

// SeedBankInfo inserts an active bank account.
func SeedBankInfo(t *testing.T, db *TestDB, primary bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	query := `
		INSERT INTO bank_info (id, account_name, bank_name, account_number, branch, ifsc_code, account_type, is_primary, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		id, "Complia Services", "Test Bank", id.String()[:12], "Main", "TEST0001234", "current", primary, models.BankStatusActive)
	if err != nil {
		t.Fatalf("Failed to seed bank info: %v", err)
	}
	return id
}
