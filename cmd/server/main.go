package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/cache"
	"eventhub/internal/adapters/email"
	httpDelivery "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
)

// @title EventHub API
// @version 1.0
// @description Event listing API: browse events, manage your own, and keep a saved list.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	eventCache, closeCache, err := newEventCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return err
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	tokens := auth.NewJWT(cfg.JWTSecret, cfg.JWTIssuer)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	authService := services.NewUserService(userRepo, auth.NewBcryptHasher(auth.DefaultBcryptCost), tokens, cfg.JWTExpiry, emailService, logger)
	eventService := services.NewEventService(eventRepo, userRepo, eventCache, cfg.RequestTimeout, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "eventhub"),
	)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	mux := httpDelivery.NewRouter(httpDelivery.Handlers{
		Auth:     controllers.NewAuthController(logger, authService),
		Events:   controllers.NewEventController(logger, eventService),
		Verifier: tokens,
		Logger:   logger,
		Health:   db,
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	handler := middleware.CORS(cfg.CORSAllowedOrigins, mux, httpMetrics.Middleware(middleware.LoggingMiddleware(logger, mux)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

// newEventCache returns a Redis-backed list cache when REDIS_URL is set and
// a no-op cache otherwise.
func newEventCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.EventListCache, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("event list cache disabled")
		return cache.NewNoopEventListCache(), func() {}, nil
	}
	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Info("event list cache enabled", "ttl", cfg.EventCacheTTL)
	return cache.NewRedisEventListCache(client, cfg.EventCacheTTL), func() { _ = client.Close() }, nil
}
