package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signup-be/internal/controllers"
	"signup-be/internal/metrics"
	"signup-be/internal/middleware"
	"signup-be/internal/render"
	"signup-be/internal/service"
	"signup-be/internal/static"
)

// Signup routes. The second path is where the site's form posts when it was
// deployed as a serverless function, so existing pages keep working.
const (
	SignupPath       = "/api/signup"
	LegacySignupPath = "/.netlify/functions/signup"
)

// Options carries the optional collaborators of the router
type Options struct {
	Logger         zerolog.Logger
	Limiter        middleware.Limiter // nil disables rate limiting
	MaxBodyBytes   int64
	Site           *static.Site // nil disables static file serving
	MetricsEnabled bool
	TrustedProxies []string // nil makes ClientIP use the peer address only
}

// New builds the HTTP handler: health, metrics, signup and the static site
func New(opts Options) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(opts.Logger),
		middleware.RequestLogging(),
		metrics.HTTPMiddleware(),
	)

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	if opts.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	signupController := controllers.NewSignupController(service.NewSignupService(opts.Logger))

	signup := router.Group("")
	if opts.Limiter != nil {
		signup.Use(middleware.RateLimit(opts.Limiter))
	}
	if opts.MaxBodyBytes > 0 {
		signup.Use(middleware.RequestSize(opts.MaxBodyBytes))
	}
	{
		signup.Any(SignupPath, signupController.Signup)
		signup.Any(LegacySignupPath, signupController.Signup)
	}

	notFound := func(c *gin.Context) {
		render.Error(c, http.StatusNotFound, "Not found")
	}
	if opts.Site != nil {
		notFound = opts.Site.Handler()
	}

	// Methods outside gin's Any list never match the signup routes; they
	// still belong to the signup handler, which answers 405
	router.NoRoute(func(c *gin.Context) {
		switch c.Request.URL.Path {
		case SignupPath, LegacySignupPath:
			signupController.Signup(c)
		default:
			notFound(c)
		}
	})

	return router, nil
}
