package app

import (
	"github.com/Sebastian-411/microservice-app-example/internal/audit"
	"github.com/Sebastian-411/microservice-app-example/internal/auth"
	"github.com/Sebastian-411/microservice-app-example/internal/config"
	"github.com/Sebastian-411/microservice-app-example/internal/handlers"
	"github.com/Sebastian-411/microservice-app-example/internal/service"
	"github.com/Sebastian-411/microservice-app-example/internal/store"
	"github.com/Sebastian-411/microservice-app-example/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, rdb *redis.Client, tracer *tracing.Tracer) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(tracer.Middleware())

	var todoStore store.TodoStore
	switch cfg.Store.Backend {
	case "redis":
		todoStore = store.NewRedisStore(rdb, cfg.Redis.DefaultTTL.Duration())
	default:
		todoStore = store.NewMemoryStore()
	}

	publisher := audit.NewRedisPublisher(rdb, cfg.Redis.Channel)
	todoSvc := service.NewTodoService(todoStore, publisher, tracer)
	todoHandler := handlers.NewTodoHandler(todoSvc)

	protected := api.Group("", auth.RequireJWT(cfg.Auth.JWTSecret))
	registerTodoRoutes(protected, todoHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Todos API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.GET("/todos", h.List)
	api.POST("/todos", h.Create)
	api.DELETE("/todos/:taskId", h.Delete)
}
