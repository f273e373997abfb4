package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"lumaevents/config"
	_ "lumaevents/docs"
	"lumaevents/internal/adapters/auth"
	"lumaevents/internal/adapters/email"
	"lumaevents/internal/adapters/storage"
	httpdelivery "lumaevents/internal/delivery/http"
	"lumaevents/internal/delivery/http/controllers"
	"lumaevents/internal/delivery/http/middleware"
	"lumaevents/internal/live"
	"lumaevents/internal/realtime"
	"lumaevents/internal/repository/postgres"
	"lumaevents/internal/services"
)

const shutdownTimeout = 15 * time.Second

// @title Luma Events API
// @version 1.0
// @description Events, registrations and live views for the Luma Events frontend.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	logger.Info("connected to postgres")
	applyMigration(ctx, db, cfg.MigrationPath, logger)

	// repositories
	eventRepo := postgres.NewEventRepository(db)
	agendaRepo := postgres.NewAgendaRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	profileRepo := postgres.NewProfileRepository(db)

	// adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	objects, err := storage.NewObjectStorage(storage.Config{
		Provider:   cfg.Storage.Provider,
		ProjectURL: cfg.Storage.ProjectURL,
		ServiceKey: cfg.Storage.ServiceKey,
		Bucket:     cfg.Storage.Bucket,
	}, logger)
	if err != nil {
		return err
	}
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// services
	aggregates := services.NewAggregateReader(registrationRepo)
	views := services.NewEventViewModel(eventRepo, agendaRepo, profileRepo, registrationRepo, aggregates, logger)
	confirmations := services.NewConfirmationSender(registrationRepo, eventRepo, profileRepo, mailer, email.NewTemplateRenderer(), logger)
	registrations := services.NewRegistrationService(registrationRepo, confirmations, cfg.EmailTimeout, logger)
	events := services.NewEventService(eventRepo, agendaRepo, registrationRepo, objects, logger, cfg.RequestTimeout)

	// realtime
	hub := realtime.NewHub(logger)
	listener := postgres.NewChangeListener(cfg.DBUrl, cfg.NotifyChannel, cfg.ListenerMinReconnect, cfg.ListenerMaxReconnect, logger)
	go func() {
		if err := hub.Run(ctx, listener); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("change feed stopped", "err", err)
		}
	}()
	pages := live.NewPages(realtime.NewManager(hub, logger), views, registrations, logger)

	// http
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)
	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Events:    controllers.NewEventController(logger, views, events),
		Attendees: controllers.NewAttendeeController(logger, registrations, views),
		Live:      controllers.NewLiveController(logger, pages),
		Functions: controllers.NewFunctionsController(logger, registrationRepo, confirmations),
	}, httpdelivery.Guards{
		RequireAuth:  middleware.RequireAuth(verifier, logger),
		OptionalAuth: middleware.OptionalAuth(verifier, logger),
		RateLimit:    middleware.RateLimit(limiter),
	})
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
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

	// graceful shutdown
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	if w, ok := registrations.(interface{ Wait() }); ok {
		w.Wait()
	}
	return nil
}

// applyMigration runs the schema file once. Failures are logged, not fatal.
func applyMigration(ctx context.Context, db *sql.DB, path string, logger *slog.Logger) {
	migration, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("migration file not found, skipping", "path", path, "err", err)
		return
	}
	if _, err := db.ExecContext(ctx, string(migration)); err != nil {
		logger.Warn("migration failed", "path", path, "err", err)
		return
	}
	logger.Info("migration applied", "path", path)
}
