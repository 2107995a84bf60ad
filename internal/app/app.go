package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/babble-backend/internal/auth"
	"github.com/heartmarshall/babble-backend/internal/config"
	"github.com/heartmarshall/babble-backend/internal/transport/middleware"
	"github.com/heartmarshall/babble-backend/internal/transport/rest"
)

// Run is the server entry point. It loads configuration, wires every
// component and serves HTTP until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	limiter := middleware.NewRateLimiter(5 * time.Minute)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      NewHandler(cfg, logger, c, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// NewHandler builds the HTTP handler tree. Identity is resolved for every
// request so access logs carry the user; rate limiting applies to the API
// routes only.
func NewHandler(cfg *config.Config, logger *slog.Logger, c *Components, limiter *middleware.RateLimiter) http.Handler {
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	health := rest.NewHealthHandler(c.Pool, Version)
	learner := rest.NewLearnerHandler(c.Services.Exercises, c.Services.Progress, logger)
	if c.Idempotency != nil {
		health.WithComponent("redis", c.Idempotency)
		learner.WithIdempotency(c.Idempotency)
	}
	handlers := rest.Handlers{
		Health:  health,
		Learner: learner,
		Courses: rest.NewCourseHandler(c.Courses, cfg.Languages.Codes(), logger),
		Admin:   rest.NewAdminHandler(c.Services.Corpus, logger),
		Metrics: c.Metrics.Handler(),
	}
	if c.Services.Dictionary != nil {
		handlers.Dictionary = rest.NewDictionaryHandler(c.Services.Dictionary, logger)
	}

	api := limiter.Limit(cfg.RateLimit.RequestsPerMinute)
	router := rest.NewRouter(handlers, api)

	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.CORS(cfg.CORS),
		middleware.Auth(tokens),
		middleware.Logger(logger),
		middleware.Metrics(c.Metrics),
	)(router)
}
