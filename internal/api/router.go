package api

import (
	"net"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/eventboard/eventboard/docs"
	"github.com/eventboard/eventboard/internal/api/handler"
	"github.com/eventboard/eventboard/internal/api/middleware"
	"github.com/eventboard/eventboard/internal/core/policy"
	"github.com/eventboard/eventboard/internal/core/ports"
	"github.com/eventboard/eventboard/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth          ports.AuthService
	Events        ports.EventService
	Registrations ports.RegistrationService
	Limiter       middleware.RateLimiter
	Checks        map[string]handlers.Check
	Log           zerolog.Logger
	// TrustedProxies are the only peers whose X-Forwarded-For is read.
	TrustedProxies []*net.IPNet
	// Registry defaults to the global Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.IPExtractor = clientIPExtractor(d.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("1M"))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "eventboard",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Session(d.Auth))
	e.Use(middleware.RequestLogger(d.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	eventHandler := handler.NewEventHandler(d.Events)
	registrationHandler := handler.NewRegistrationHandler(d.Registrations)

	v1 := e.Group("/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	limited := middleware.RateLimit(d.Limiter, d.Log)
	auth.POST("/register", authHandler.Register, limited)
	auth.POST("/login", authHandler.Login, limited)
	auth.GET("/me", authHandler.Me, middleware.RequireAuth())

	// --- Event routes ---
	events := v1.Group("/events")
	events.GET("", eventHandler.List)
	events.GET("/:id", eventHandler.Get)
	events.POST("", eventHandler.Create, middleware.RBAC(policy.CreateEvent))
	events.PUT("/:id", eventHandler.Update, middleware.RBAC(policy.UpdateEvent))
	events.DELETE("/:id", eventHandler.Delete, middleware.RBAC(policy.DeleteEvent))
	events.GET("/:id/registrants", registrationHandler.Registrants, middleware.RBAC(policy.ListRegistrantsForEvent))

	// --- Registration routes ---
	events.GET("/:id/registration", registrationHandler.Status)
	events.POST("/:id/registration", registrationHandler.Register, middleware.RBAC(policy.RegisterForEvent))
	events.DELETE("/:id/registration", registrationHandler.Cancel, middleware.RBAC(policy.CancelRegistration))
	v1.GET("/me/events", registrationHandler.MyEvents, middleware.RBAC(policy.ViewOwnRegistrations))

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// clientIPExtractor decides what c.RealIP returns, and so what the rate
// limiter keys on. Without trusted proxies forwarding headers are ignored.
func clientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
