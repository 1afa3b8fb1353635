package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/config"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/http/handlers"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/http/middlewares"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/observability"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/session"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

const maxBodyBytes = 1 << 20 // user payloads are tiny

// Deps carries the explicitly constructed collaborators the routes need.
// Nothing here is ambient process state; tests wire in-memory versions.
type Deps struct {
	Cfg      config.Config
	Users    *users.Service
	Manager  *session.Manager
	Sessions session.Store
	Metrics  *observability.Prom
	Gatherer prometheus.Gatherer
	Ping     func() error
}

func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("users-api"))

	if d.Metrics != nil {
		r.Use(d.Metrics.GinHandleMiddleware())
	}

	// health and metrics

	health := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// handlers

	usersHandler := handlers.NewUsersHandler(d.Users)
	authHandler := handlers.NewAuthHandler(d.Users, d.Manager, d.Sessions, d.Cfg)
	auth := middlewares.NewAuthMiddleware(d.Manager, d.Sessions)

	// login is open but rate limited per client address
	loginLimiter := middlewares.NewRateLimiter(d.Cfg.LoginRateLimit, d.Cfg.LoginRateWindow)
	r.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)

	authed := r.Group("", auth.RequireAuth())

	authed.GET("/logout", auth.RequireScope(users.ScopeUser, users.ScopeAdmin), authHandler.Logout)

	api := authed.Group("/api")

	// reads are open to any authenticated scope, writes are admin only
	api.POST("/users", auth.RequireScope(users.ScopeAdmin), usersHandler.CreateUser)
	api.GET("/users", auth.RequireScope(users.ScopeUser, users.ScopeAdmin), usersHandler.ListUsers)
	api.GET("/users/:id", auth.RequireScope(users.ScopeUser, users.ScopeAdmin), usersHandler.ReadUser)
	api.PUT("/users/:id", auth.RequireScope(users.ScopeAdmin), usersHandler.UpdateUser)
	api.DELETE("/users/:id", auth.RequireScope(users.ScopeAdmin), usersHandler.DeleteUser)

	return r
}
