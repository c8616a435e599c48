package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/omnibus/ticket-checkout/docs"
	"github.com/omnibus/ticket-checkout/internal/api/handler"
	"github.com/omnibus/ticket-checkout/internal/api/middleware"
	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/presenter"
)

// Deps are the services the bridge API exposes.
type Deps struct {
	Auth       ports.AuthService
	Session    ports.SessionMonitor
	Checkouts  ports.CheckoutService
	Tickets    ports.TicketService
	Push       ports.PushTokenService
	Store      ports.KeyValueStore
	Inbox      *presenter.Inbox
	Dispatcher handler.EventDispatcher
	Health     map[string]handler.HealthCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("checkout_bridge"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	sessionHandler := handler.NewSessionHandler(d.Session)
	checkoutHandler := handler.NewCheckoutHandler(d.Checkouts, d.Inbox)
	eventHandler := handler.NewEventHandler(d.Dispatcher, d.Checkouts)
	promptHandler := handler.NewPromptHandler(d.Inbox, d.Session, d.Checkouts)
	ticketHandler := handler.NewTicketHandler(d.Tickets, d.Push)
	requireSession := middleware.Session(d.Store, d.Session)

	// --- Auth routes ---
	e.POST("/v1/auth/register", authHandler.Register)
	e.POST("/v1/auth/login", authHandler.Login)
	e.POST("/v1/auth/logout", authHandler.Logout)

	// --- Session and prompts (no credential required: they report expiry) ---
	e.GET("/v1/session", sessionHandler.Status)
	e.POST("/v1/session/acknowledge", sessionHandler.Acknowledge)
	e.GET("/v1/prompts", promptHandler.List)
	e.POST("/v1/prompts/:prompt_id/answer", promptHandler.Answer)

	// Push token registration is deferred until login, so it stays open too.
	e.PUT("/v1/push-token", ticketHandler.SyncPushToken)
	e.DELETE("/v1/push-token", ticketHandler.ClearPushToken)

	// --- Customer routes ---
	v1 := e.Group("/v1", requireSession)
	v1.GET("/profile", authHandler.Profile)
	v1.PUT("/profile", authHandler.UpdateProfile)
	v1.GET("/tickets", ticketHandler.History)

	checkouts := v1.Group("/checkouts", middleware.RBAC(domain.RoleCliente))
	checkouts.POST("", checkoutHandler.Start)
	checkouts.GET("/:order_id", checkoutHandler.Get)
	checkouts.DELETE("/:order_id", checkoutHandler.Cancel)
	checkouts.GET("/:order_id/surface", checkoutHandler.Surface)
	checkouts.POST("/:order_id/verify", checkoutHandler.Verify)
	checkouts.POST("/:order_id/retry-load", checkoutHandler.RetryLoad)
	checkouts.POST("/:order_id/leave", checkoutHandler.RequestLeave)
	checkouts.POST("/:order_id/leave/:choice", checkoutHandler.ResolveLeave)

	// Surface events keep flowing after expiry so a capture in flight can
	// resolve; the coordinator itself reports session errors.
	e.POST("/v1/checkouts/:order_id/navigation", eventHandler.Navigation)
	e.POST("/v1/checkouts/:order_id/load-error", eventHandler.LoadError)
	e.POST("/v1/checkouts/:order_id/message", eventHandler.Message)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
