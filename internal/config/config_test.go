package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "/api/v1", cfg.App.APIPrefix)
	assert.Equal(t, 2*time.Second, cfg.GST.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.GST.PollTimeout)
	assert.Equal(t, 600*time.Second, cfg.Redis.InvoiceTTL)
	assert.Equal(t, int64(10<<20), cfg.App.UploadMaxBytes)
	assert.Equal(t, 7, cfg.Razorpay.LinkExpiryDays)
	assert.Equal(t, "+91", cfg.App.DefaultCountryCode)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_RequiresJWTKeySource(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_JWKS_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresWebhookSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestPublicStorageURL(t *testing.T) {
	cfg := &Config{MinIO: MinIOConfig{Endpoint: "minio:9000", Bucket: "invoices"}}
	assert.Equal(t, "http://minio:9000/invoices", cfg.PublicStorageURL())

	cfg.MinIO.PublicBaseURL = "https://cdn.example.com/invoices"
	assert.Equal(t, "https://cdn.example.com/invoices", cfg.PublicStorageURL())
}

func TestLoadCompanyProfile(t *testing.T) {
	profile, err := LoadCompanyProfile("")
	require.NoError(t, err)
	assert.Equal(t, "Complia Services Ltd", profile.LegalName)

	path := filepath.Join(t.TempDir(), "company.toml")
	content := "[company]\nname = \"Acme Billing\"\ngstin = \"27AAPFU0939F1ZV\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	profile, err = LoadCompanyProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Billing", profile.Name)
	assert.Equal(t, "27AAPFU0939F1ZV", profile.GSTIN)
	assert.Equal(t, "info@nyife.chat", profile.Email)

	_, err = LoadCompanyProfile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
