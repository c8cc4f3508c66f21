package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"signup-be/internal/cache"
	"signup-be/internal/config"
	"signup-be/internal/metrics"
	"signup-be/internal/middleware"
	"signup-be/internal/router"
	"signup-be/internal/static"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

// How often idle visitors are dropped from the in-process rate limiter
const visitorSweepInterval = 5 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting signup submissions.

Configuration comes from environment variables (and .env when present).
The server shuts down gracefully on SIGINT/SIGTERM.

Examples:
  # Start with default configuration
  signup-be serve

  # Start on a specific host and port
  signup-be serve --host 127.0.0.1 --port 9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: all interfaces)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load()

	if serverHost != "" {
		cfg.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Port = serverPort
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServer(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := config.NewLogger(cfg.Logging)
	gin.SetMode(cfg.GinMode)

	metrics.Init(Version, GitCommit)
	logger.Info().Str("version", Version).Msg("starting signup server")

	g, ctx := errgroup.WithContext(ctx)

	limiter, closeLimiter := newLimiter(ctx, g, cfg, logger)
	defer closeLimiter()

	opts := router.Options{
		Logger:         logger,
		Limiter:        limiter,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		MetricsEnabled: cfg.MetricsEnabled,
		TrustedProxies: cfg.TrustedProxies,
	}
	if site, err := static.NewSite(cfg.StaticDir); err == nil {
		opts.Site = site
		logger.Info().Str("dir", cfg.StaticDir).Msg("serving static site")
	} else {
		logger.Warn().Str("dir", cfg.StaticDir).Msg("static site directory not found, serving API only")
	}

	handler, err := router.New(opts)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newLimiter prefers the Redis-backed limiter and falls back to the in-process
// one when Redis is not configured or unreachable.
func newLimiter(ctx context.Context, g *errgroup.Group, cfg *config.Config, logger zerolog.Logger) (middleware.Limiter, func()) {
	if !cfg.RateLimitEnabled() {
		logger.Warn().Msg("rate limiting disabled")
		return nil, func() {}
	}

	if cfg.RedisURL != "" {
		counter, err := cache.NewRedisCache(cfg.RedisURL)
		if err == nil {
			logger.Info().Msg("connected to Redis, using shared rate limiter")
			return middleware.NewSharedRateLimiter(counter, cfg.RateLimitRPS, cfg.RateLimitBurst), func() {
				if err := counter.Close(); err != nil {
					logger.Warn().Err(err).Msg("failed to close Redis client")
				}
			}
		}
		logger.Warn().Err(err).Msg("failed to connect to Redis, continuing with in-process rate limiter")
	}

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	g.Go(func() error {
		return limiter.Run(ctx, visitorSweepInterval)
	})
	return limiter, func() {}
}
