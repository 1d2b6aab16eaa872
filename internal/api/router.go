package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/biportal/portal-api/docs"
	"github.com/biportal/portal-api/internal/api/handler"
	"github.com/biportal/portal-api/internal/api/middleware"
	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
	"github.com/biportal/portal-api/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth     ports.AuthService
	Verifier ports.TokenVerifier
	Users    ports.UserService
	Clients  ports.ClientService
	Reports  ports.ReportService

	// Checks back the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Check

	AllowedOrigins []string

	// Registry receives the HTTP metrics and backs /metrics. Nil uses the
	// prometheus default registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: allowedOrigins(d.AllowedOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portal",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
		},
	}))

	authHandler := handler.NewAuthHandler(d.Auth, d.Log)
	userHandler := handler.NewUserHandler(d.Users)
	clientHandler := handler.NewClientHandler(d.Clients)
	reportHandler := handler.NewReportHandler(d.Reports)
	healthHandler := handlers.NewHealthHandler(d.Checks)

	authenticated := middleware.Auth(d.Verifier)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/token/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/user", userHandler.Me, authenticated)
	auth.GET("/users", userHandler.List, authenticated, adminOnly)
	auth.DELETE("/users/:id", userHandler.Delete, authenticated, adminOnly)

	e.GET("/user-counts", userHandler.Counts, authenticated, adminOnly)

	// --- Clients ---
	clients := e.Group("/clients", authenticated)
	clients.GET("", clientHandler.List)
	clients.POST("", clientHandler.Create)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Replace)
	clients.PATCH("/:id", clientHandler.Patch)
	clients.DELETE("/:id", clientHandler.Delete)
	clients.GET("/:id/report_count", clientHandler.ReportCount)

	// --- Reports ---
	reports := e.Group("/reports", authenticated)
	reports.GET("", reportHandler.List)
	reports.POST("", reportHandler.Create)
	reports.GET("/:id", reportHandler.Get)
	reports.PUT("/:id", reportHandler.Replace)
	reports.PATCH("/:id", reportHandler.Patch)
	reports.DELETE("/:id", reportHandler.Delete)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func allowedOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
