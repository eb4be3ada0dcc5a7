package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/generative-ai-go/genai"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/api/option"

	"paperapi/internal/auth"
	"paperapi/internal/cache"
	"paperapi/internal/config"
	"paperapi/internal/database"
	"paperapi/internal/database/migration"
	handlers "paperapi/internal/http/handler"
	"paperapi/internal/http/middleware"
	"paperapi/internal/logging"
	"paperapi/internal/otel"
	"paperapi/internal/repository/postgres"
	"paperapi/internal/service"
	"paperapi/internal/storage"
	"paperapi/internal/summarizer"
)

// @title White Paper API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	logger := logging.Setup(cfg.LogLevel, loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	objStore, err := storage.NewMinIO(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	var catalogCache cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Str("component", "cache").Msg("redis unavailable, caching disabled")
		} else {
			defer rc.Close()
			catalogCache = rc
		}
	}

	var gen summarizer.Generator
	if cfg.AI.APIKey != "" {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.AI.APIKey))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create generative ai client")
		}
		defer client.Close()
		gen = summarizer.NewGemini(client, cfg.AI)
	} else {
		logger.Warn().Str("component", "summarizer").Msg("GEMINI_API_KEY not set, summaries use fallback text")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sumMetrics, err := summarizer.NewMetrics(registry)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register summarizer metrics")
	}
	sum := summarizer.New(gen, cfg.AI, nil, sumMetrics, logger)

	// Repositories
	paperRepo := postgres.NewPaperPostgres(db)
	submissionRepo := postgres.NewSubmissionPostgres(db)
	categoryRepo := postgres.NewCategoryPostgres(db)
	profileRepo := postgres.NewProfilePostgres(db)

	// Services
	catalogSvc := service.NewCatalogService(paperRepo, categoryRepo, catalogCache, logger)
	submissionSvc := service.NewSubmissionService(objStore, paperRepo, submissionRepo, sum, catalogCache,
		cfg.Storage, cfg.MaxUploadBytes(), logger)
	adminSvc := service.NewAdminService(paperRepo, submissionRepo, categoryRepo, profileRepo, objStore, sum,
		catalogCache, logger)
	accountSvc := service.NewAccountService(auth.NewClient(cfg.Auth, nil), profileRepo, cfg.Auth.AdminEmails, logger)

	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimit(),
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(loc))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:          db,
		Catalog:     catalogSvc,
		Submissions: submissionSvc,
		Admin:       adminSvc,
		Accounts:    accountSvc,
		Verifier:    auth.NewVerifier(cfg.Auth.JWTSecret),
		Gatherer:    registry,
		CORSOrigins: cfg.CORSOrigins,
	})

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("server_starting")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
