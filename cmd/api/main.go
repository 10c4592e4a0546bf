// Package main is the entrypoint for the VidTrack API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vidtrack/vidtrack/internal/cache"
	"github.com/vidtrack/vidtrack/internal/config"
	"github.com/vidtrack/vidtrack/internal/handler"
	"github.com/vidtrack/vidtrack/internal/integration"
	"github.com/vidtrack/vidtrack/internal/metrics"
	"github.com/vidtrack/vidtrack/internal/middleware"
	"github.com/vidtrack/vidtrack/internal/repository"
	"github.com/vidtrack/vidtrack/internal/server"
	"github.com/vidtrack/vidtrack/internal/service"
	"github.com/vidtrack/vidtrack/internal/stats"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()

	// Services
	linkService := service.NewLinkService(repo, cfg.BaseURL, recorder)
	ledgerService := service.NewLedgerService(repo, cacheClient, recorder)
	attributionService := service.NewAttributionService(repo, recorder)
	dashboardService := service.NewDashboardService(repo)
	seedService := service.NewSeedService(repo)

	// Provider clients. Unset keys leave the client nil and the
	// health endpoint reports not_configured.
	httpClient := integration.NewHTTPClient()
	var youtubeClient *integration.YouTubeClient
	var calendlyClient *integration.CalendlyClient
	var stripeClient *integration.StripeClient
	var youtubePinger, calendlyPinger, stripePinger integration.Pinger
	if cfg.YouTubeAPIKey != "" {
		youtubeClient = integration.NewYouTubeClient(cfg.YouTubeAPIKey, "", httpClient)
		// A stored OAuth token, when present, takes precedence over
		// the API key on every request.
		youtubeClient.SetTokenSource(repo)
		youtubePinger = youtubeClient
	}
	if cfg.CalendlyAPIKey != "" {
		calendlyClient = integration.NewCalendlyClient(cfg.CalendlyAPIKey, "", httpClient)
		calendlyPinger = calendlyClient
	}
	if cfg.StripeAPIKey != "" {
		stripeClient = integration.NewStripeClient(cfg.StripeAPIKey, "", httpClient)
		stripePinger = stripeClient
	}
	healthChecker := integration.NewHealthChecker(youtubePinger, calendlyPinger, stripePinger, cfg.ProviderTimeout)

	// Handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient, healthChecker, logger)
	linkHandler := handler.NewLinkHandler(linkService, logger)
	redirectHandler := handler.NewRedirectHandler(ledgerService, logger)
	webhookHandler := handler.NewWebhookHandler(attributionService, logger, cfg.CalendlyWebhookSecret, cfg.StripeWebhookSecret)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, seedService, logger)
	apiKeyHandler := handler.NewAPIKeyHandler(repo, logger)

	r := setupRouter(routerDeps{
		health:    healthHandler,
		link:      linkHandler,
		redirect:  redirectHandler,
		webhook:   webhookHandler,
		dashboard: dashboardHandler,
		apiKey:    apiKeyHandler,
		repo:      repo,
		cache:     cacheClient,
		cfg:       cfg,
		logger:    logger,
	})

	srv := server.New(r, cfg.AppPort, cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout, logger)

	// Background video statistics refresh
	if cfg.StatsRefreshEnabled && youtubeClient != nil {
		refresher := stats.NewRefresher(repo, youtubeClient, logger, cfg.StatsRefreshInterval, recorder)
		go func() {
			if err := refresher.Run(ctx); err != nil {
				logger.Error("stats refresher error", "error", err)
			}
		}()
		srv.OnShutdown("stats refresher", refresher.Shutdown)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health    *handler.HealthHandler
	link      *handler.LinkHandler
	redirect  *handler.RedirectHandler
	webhook   *handler.WebhookHandler
	dashboard *handler.DashboardHandler
	apiKey    *handler.APIKeyHandler
	repo      *repository.Repository
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: deps.cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Get("/", handler.Hello)

	// Operational status (no auth)
	r.Route("/status", func(r chi.Router) {
		r.Get("/health", deps.health.Health)
		r.Get("/database", deps.health.Database)
		r.Get("/api-status", deps.health.APIStatus)
	})

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Cache:   deps.cache,
		Enabled: deps.cfg.RateLimitRedirectEnabled,
		RPS:     deps.cfg.RateLimitRedirectRPS,
		Burst:   deps.cfg.RateLimitRedirectBurst,
	}

	// Tracked redirect path (no auth, IP rate limited)
	r.With(middleware.RateLimitIP(rateLimitCfg)).Get("/go/{slug}", deps.redirect.Redirect)

	// Provider webhooks authenticate by signature, not API key
	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/calendly", deps.webhook.Calendly)
		r.Post("/stripe", deps.webhook.Stripe)
		r.Get("/attribution/{saleID}", deps.webhook.Chain)
	})

	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Repository: deps.repo,
	}

	// Management API (API key auth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Route("/links", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", deps.link.List)
			r.With(middleware.RequireRead()).Get("/{slug}", deps.link.Get)
			r.With(middleware.RequireWrite()).Post("/", deps.link.Create)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", deps.dashboard.Summary)
			r.With(middleware.RequireAdmin()).Post("/mock-data", deps.dashboard.SeedMockData)
		})

		r.Route("/api-keys", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", deps.apiKey.List)
			r.With(middleware.RequireAdmin()).Post("/", deps.apiKey.Create)
			r.With(middleware.RequireAdmin()).Delete("/{keyID}", deps.apiKey.Revoke)
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
