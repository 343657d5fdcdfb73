package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/pointledger/internal/config"
	"github.com/polkiloo/pointledger/internal/server/http/handlers"
	"github.com/polkiloo/pointledger/internal/server/http/middleware"
)

const maxRequestBytes = 64 << 10

type Params struct {
	fx.In

	Facade handlers.PointFacade
	Health handlers.HealthChecker
	Config *config.Config
	Logger *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.RateLimit(p.Config.RateLimitRPS, p.Config.RateLimitBurst))
	engine.Use(middleware.DecompressRequest(maxRequestBytes))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	pointHandler := handlers.NewPointHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Health)

	engine.GET("/health", healthHandler.Check)

	point := engine.Group("/point/:id")
	point.GET("", pointHandler.Balance)
	point.GET("/histories", pointHandler.History)
	point.PATCH("/charge", pointHandler.Charge)
	point.PATCH("/use", pointHandler.Use)

	return engine
}
