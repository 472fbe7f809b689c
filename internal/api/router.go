package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/99minutos/identity-store/docs"
	"github.com/99minutos/identity-store/internal/api/handler"
	"github.com/99minutos/identity-store/internal/api/middleware"
	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	DB         *mongo.Database
	Redis      *redis.Client // nil when Redis is disabled
	Users      handler.UserAdminStore
	Roles      ports.RoleRepository
	Auth       ports.AuthService
	Importer   handler.ImportDispatcher
	Normalizer ports.LookupNormalizer
	JWTSecret  string
	Log        zerolog.Logger
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
	e.Use(middleware.Metrics())
	e.Use(requestLogger(d.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users, d.Roles, d.Normalizer)
	roleHandler := handler.NewRoleHandler(d.Roles, d.Normalizer)
	importHandler := handler.NewImportHandler(d.Importer)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Admin routes ---
	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret), middleware.RBAC(domain.RoleAdmin))
	v1.GET("/users", userHandler.List)
	v1.POST("/users/import", importHandler.Import)
	v1.GET("/users/:id", userHandler.Get)
	v1.DELETE("/users/:id", userHandler.Delete)
	v1.POST("/users/:id/roles", userHandler.AddRole)
	v1.DELETE("/users/:id/roles/:role", userHandler.RemoveRole)
	v1.POST("/users/:id/claims", userHandler.AddClaim)
	v1.PUT("/users/:id/lockout", userHandler.Lock)
	v1.DELETE("/users/:id/lockout", userHandler.Unlock)
	v1.POST("/roles", roleHandler.Create)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.DB, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
