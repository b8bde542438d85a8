package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clinicreserve/reservation-system/docs"
	"github.com/clinicreserve/reservation-system/internal/api/handler"
	"github.com/clinicreserve/reservation-system/internal/api/middleware"
	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
	"github.com/clinicreserve/reservation-system/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Identity      ports.IdentityService
	Clinics       ports.ClinicService
	Appointments  ports.AppointmentService
	Notifications ports.NotificationService
	Admin         ports.AdminService
	Feed          ports.FeedService
	Readiness     *handlers.HealthDependenciesHandler
	AuthLimiter   *middleware.RateLimiter
	Reporter      ErrorReporter
	JWTSecret     string
	Log           zerolog.Logger

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default registry, which also holds the domain counters.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Reporter)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "clinic",
		Registerer: registerer,
	}))

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(d.Identity)
	clinicHandler := handler.NewClinicHandler(d.Clinics)
	appointmentHandler := handler.NewAppointmentHandler(d.Appointments, d.Feed)
	notificationHandler := handler.NewNotificationHandler(d.Notifications)
	adminHandler := handler.NewAdminHandler(d.Admin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(d.AuthLimiter))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/otp", authHandler.RequestOTP)

	// --- Authenticated routes ---
	authed := e.Group("", middleware.Auth(d.JWTSecret))

	authed.GET("/me", authHandler.Profile)
	authed.PATCH("/me", authHandler.UpdateProfile)

	authed.GET("/clinics", clinicHandler.List)
	authed.GET("/clinics/:id", clinicHandler.Get)

	authed.GET("/appointments", appointmentHandler.List)
	authed.POST("/appointments", appointmentHandler.Book)
	authed.GET("/appointments/available", appointmentHandler.Available)
	authed.POST("/appointments/:id/cancel", appointmentHandler.Cancel)
	authed.POST("/appointments/:id/reschedule", appointmentHandler.Reschedule)

	authed.GET("/notifications", notificationHandler.List)

	// --- Staff routes ---
	admin := authed.Group("/admin", middleware.RBAC(domain.RoleStaff))
	admin.POST("/clinics", adminHandler.CreateClinic)
	admin.PATCH("/clinics/:id", adminHandler.UpdateClinic)
	admin.PUT("/clinics/:id/availability", adminHandler.SetAvailability)
	admin.POST("/slots", adminHandler.AddSlot)
	admin.DELETE("/appointments/:id", adminHandler.RemoveAppointment)
	admin.POST("/appointments/:id/confirm", adminHandler.ConfirmAppointment)
	admin.GET("/appointments/:id/history", adminHandler.History)
	admin.POST("/notifications", adminHandler.Broadcast)
	admin.POST("/staff", adminHandler.AssignStaff)
	admin.POST("/capacity", adminHandler.AdjustCapacity)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
