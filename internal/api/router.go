package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lumina-ai/studio/docs"
	"github.com/lumina-ai/studio/internal/api/handler"
	"github.com/lumina-ai/studio/internal/api/middleware"
	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth        ports.AuthService
	Ledger      ports.Ledger
	Studio      ports.StudioService
	Feed        ports.ReviewFeed
	Guard       ports.InFlightGuard
	JWTSecret   string
	DailyReward int64
	Payee       string
	PayeeName   string
	// Pingers are checked by the readiness probe, keyed by dependency name.
	Pingers map[string]handler.Pinger
	Store   handler.StoreStatus
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("studio"))

	authMiddleware := middleware.Auth(d.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	inFlight := middleware.InFlight(d.Guard, d.Log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Ledger, d.DailyReward, d.Log)
	billingHandler := handler.NewBillingHandler(d.Ledger, d.Payee, d.PayeeName)
	studioHandler := handler.NewStudioHandler(d.Studio, d.Ledger)
	adminHandler := handler.NewAdminHandler(d.Ledger, d.Feed, d.Log)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)
	e.GET("/auth/me", authHandler.Me, authMiddleware)
	e.POST("/rewards/daily", authHandler.ClaimDailyReward, authMiddleware)

	// --- Billing ---
	e.GET("/plans", billingHandler.Plans)
	e.GET("/plans/:id/payment", billingHandler.PaymentLink)
	billing := e.Group("/billing", authMiddleware)
	billing.POST("/transactions", billingHandler.Submit)
	billing.GET("/transactions", billingHandler.List)

	// --- Studio (paid) ---
	studio := e.Group("/studio", authMiddleware, inFlight)
	studio.POST("/generate", studioHandler.Generate)
	studio.POST("/edit", studioHandler.Edit)
	studio.POST("/analyze", studioHandler.Analyze)

	// --- Admin ---
	admin := e.Group("/admin", authMiddleware, adminOnly)
	admin.GET("/transactions", adminHandler.ListTransactions)
	admin.POST("/transactions/:id/approve", adminHandler.Approve)
	admin.POST("/transactions/:id/reject", adminHandler.Reject)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/feed", adminHandler.Feed)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Pingers, d.Store)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
