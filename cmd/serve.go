package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "invoicehub/docs"
	"invoicehub/internal/analytics"
	"invoicehub/internal/config"
	"invoicehub/internal/handlers"
	"invoicehub/internal/jobs"
	"invoicehub/internal/jobs/background"
	"invoicehub/internal/logger"
	"invoicehub/internal/middleware"
	"invoicehub/internal/repositories"
	"invoicehub/internal/services"
	"invoicehub/pkg/database"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the payment-link expiry sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

type server struct {
	invoices      *handlers.InvoiceHandlers
	uploads       *handlers.UploadHandlers
	emails        *handlers.EmailHandlers
	gst           *handlers.GSTHandlers
	banks         *handlers.BankInfoHandlers
	plans         *handlers.SubscriptionPlanHandlers
	analytics     *handlers.AnalyticsHandlers
	webhooks      *handlers.WebhookHandlers
	jobs          *handlers.JobHandlers
	health        *handlers.HealthHandlers
	metrics       *middleware.Metrics
	authenticated echo.MiddlewareFunc
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.WithComponent("server")

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer database.ClosePool(pool)

	cache, redisClient := newCache(ctx, cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, err := services.NewMinioStore(services.MinioOptions{
		Endpoint:      cfg.MinIO.Endpoint,
		AccessKey:     cfg.MinIO.AccessKey,
		SecretKey:     cfg.MinIO.SecretKey,
		Bucket:        cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		PublicBaseURL: cfg.PublicStorageURL(),
	})
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	company, err := loadCompany(cfg)
	if err != nil {
		return err
	}
	mailer, err := newMailer(cfg, company)
	if err != nil {
		return err
	}

	invoiceRepo := repositories.NewInvoiceRepo(pool)
	gstRepo := repositories.NewGSTInfoRepo(pool)
	bankRepo := repositories.NewBankInfoRepo(pool)
	planRepo := repositories.NewSubscriptionPlanRepo(pool)

	locks := services.NewKeyedMutex()
	razorpay := services.NewRazorpayService(services.RazorpayOptions{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		BaseURL:       cfg.Razorpay.BaseURL,
	})
	invoiceSvc := services.NewInvoiceService(invoiceRepo, razorpay, store, cache, locks, services.InvoiceOptions{
		LinkExpiry:  time.Duration(cfg.Razorpay.LinkExpiryDays) * 24 * time.Hour,
		Currency:    cfg.Razorpay.Currency,
		CountryCode: cfg.App.DefaultCountryCode,
	})
	bankSvc := services.NewBankInfoService(bankRepo)
	uploadSvc := services.NewUploadService(invoiceRepo, store, cache, locks, cfg.App.UploadMaxBytes)
	pdfSvc := services.NewPDFService(invoiceSvc, bankSvc, uploadSvc, company)
	analyticsSvc := analytics.NewService(analytics.NewRepository(pool), invoiceRepo, cache, cfg.Redis.AnalyticsTTL)

	queueClient := asynq.NewClient(redisConnOpt(cfg.Redis))
	defer queueClient.Close()

	scheduler, err := background.NewJobScheduler(invoiceSvc, cfg.Jobs)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}()

	var jwks *keyfunc.JWKS
	if cfg.JWT.JWKSURL != "" {
		jwks, err = middleware.JWKS(cfg.JWT.JWKSURL)
		if err != nil {
			return fmt.Errorf("load jwks: %w", err)
		}
		defer jwks.EndBackground()
	}

	checks := map[string]handlers.HealthCheck{
		"database": pool.Ping,
		"storage":  store.EnsureBucket,
	}
	if redisClient != nil {
		checks["redis"] = cache.Ping
	}

	srv := &server{
		invoices:      handlers.NewInvoiceHandlers(invoiceSvc, pdfSvc),
		uploads:       handlers.NewUploadHandlers(uploadSvc, cfg.App.UploadMaxBytes),
		emails:        handlers.NewEmailHandlers(mailer, jobs.NewEmailQueue(queueClient)),
		gst:           handlers.NewGSTHandlers(services.NewGSTService(gstRepo, cfg.GST.PollInterval, cfg.GST.PollTimeout)),
		banks:         handlers.NewBankInfoHandlers(bankSvc),
		plans:         handlers.NewSubscriptionPlanHandlers(services.NewSubscriptionPlanService(planRepo)),
		analytics:     handlers.NewAnalyticsHandlers(analyticsSvc),
		webhooks:      handlers.NewWebhookHandlers(services.NewWebhookService(razorpay, invoiceSvc)),
		jobs:          handlers.NewJobHandlers(scheduler),
		health:        handlers.NewHealthHandlers(version, checks),
		metrics:       middleware.NewMetrics(),
		authenticated: middleware.JWTMiddleware(middleware.JWTOptions{Secret: cfg.JWT.Secret, JWKSURL: cfg.JWT.JWKSURL}, jwks),
	}
	e := srv.echo(cfg)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("version", version).Str("port", cfg.App.Port).Msg("InvoiceHub server starting")
		if err := e.Start(":" + cfg.App.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func (s *server) echo(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(cfg.IsProduction())
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.WriteTimeout = 60 * time.Second

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.SecureHeaders(cfg.IsProduction()))
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.App.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(s.metrics.Middleware())

	e.GET("/health", s.health.Liveness)
	e.GET("/health/ready", s.health.Readiness)
	e.GET("/metrics", s.metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	prefix := strings.TrimSuffix(cfg.App.APIPrefix, "/")
	vm := middleware.NewVersionMiddleware(version)
	api := e.Group(prefix, vm.VersionHeader("v1"), rateLimiter(cfg.RateLimit, prefix+"/webhooks"))
	s.routes(api)
	return e
}

func (s *server) routes(api *echo.Group) {
	auth := s.authenticated
	admin := middleware.RequireRole("admin")

	invoices := api.Group("/invoices")
	invoices.GET("", s.invoices.ListInvoices)
	invoices.POST("", s.invoices.CreateInvoice, auth)
	invoices.PUT("/generate-proforma/:id", s.invoices.GenerateProforma, auth)
	invoices.GET("/:id", s.invoices.GetInvoice)
	invoices.PUT("/:id", s.invoices.UpdateInvoice, auth)
	invoices.DELETE("/:id", s.invoices.DeleteInvoice, auth, admin)
	invoices.POST("/:id/pdf/:pdf_type", s.invoices.GeneratePDF, auth)

	api.POST("/uploads", s.uploads.Upload, auth)
	api.POST("/emails/share-invoice", s.emails.ShareInvoice, auth)

	gst := api.Group("/gst")
	gst.POST("/verify", s.gst.Verify)
	gst.POST("/is-exists", s.gst.Exists)

	banks := api.Group("/bank-info")
	banks.POST("", s.banks.Create, auth)
	banks.GET("", s.banks.List)
	banks.GET("/primary", s.banks.GetPrimary)
	banks.GET("/:id", s.banks.GetByID)
	banks.PUT("/:id", s.banks.Update, auth)
	banks.DELETE("/:id", s.banks.Delete, auth, admin)

	plans := api.Group("/subscription-plans")
	plans.GET("", s.plans.ListPlans)
	plans.GET("/:uuid", s.plans.GetPlan)

	stats := api.Group("/analytics")
	stats.GET("/dashboard/stats", s.analytics.DashboardStats)
	stats.GET("/revenue/trend", s.analytics.RevenueTrend)
	stats.GET("/payment-methods", s.analytics.PaymentMethods)
	stats.GET("/platform-charges", s.analytics.PlatformCharges)
	stats.GET("/top-customers", s.analytics.TopCustomers)
	stats.GET("/discounts", s.analytics.Discounts)
	stats.GET("/invoices", s.analytics.FilteredInvoices)

	api.POST("/jobs/expiry-sweep", s.jobs.RunExpirySweep, auth, admin)

	api.POST("/webhooks/razorpay", s.webhooks.RazorpayWebhook)
}

// rateLimiter limits requests per client IP. Webhook deliveries are exempt.
func rateLimiter(cfg config.RateLimitConfig, skipPrefix string) echo.MiddlewareFunc {
	if cfg.RPS <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echoMiddleware.RateLimiterWithConfig(echoMiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), skipPrefix)
		},
		Store: echoMiddleware.NewRateLimiterMemoryStoreWithConfig(echoMiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RPS),
			Burst:     cfg.Burst,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})
}
