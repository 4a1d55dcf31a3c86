package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Sebastian-411/microservice-app-example/internal/config"
	"github.com/Sebastian-411/microservice-app-example/internal/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const serviceName = "todos-api"

type App struct {
	cfg    config.Config
	redis  *redis.Client
	tracer *tracing.Tracer
	router *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = rdb

	tracer, err := tracing.New(serviceName, cfg.Zipkin.URL)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	a.tracer = tracer

	a.router = newRouter(cfg, a.redis, a.tracer)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.tracer != nil {
		_ = a.tracer.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	return nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, rdb *redis.Client, tracer *tracing.Tracer) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, rdb, tracer)
	return r
}
