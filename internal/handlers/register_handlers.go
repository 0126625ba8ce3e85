package handlers

import (
	"net/http"
	"time"

	"github.com/exitdebt/exitdebt_backend/cmd/docs"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/exitdebt/exitdebt_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteOptions carries the optional pieces of route setup.
type RouteOptions struct {
	// IPLimiter throttles public routes per client IP; nil disables it.
	IPLimiter *limiter.Limiter
	// Now is the clock used when rendering day counts; nil means time.Now.
	Now func() time.Time
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupAPIV1Routes(r, cfg, services, opts)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the public /api/v1 group and the authenticated
// /api/v1/internal group.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	v1 := r.Group("/api/v1")
	if opts.IPLimiter != nil {
		v1.Use(middleware.RateLimit(opts.IPLimiter))
	}

	registerHealthCheckRoutes(v1, service.HealthCheck)
	registerAggregatorRoutes(v1, service.Aggregator)
	registerSettlementRoutes(v1, service.Settlement)
	registerSubscriptionRoutes(v1, service.Subscription, opts.Now)
	registerCallbackRoutes(v1, service.Callback)
	registerServiceRequestRoutes(v1, service.ServiceRequest)
	registerAdvisoryRoutes(v1, service.Advisory)

	internal := v1.Group("/internal",
		middleware.APIKeyAuth(cfg.InternalAPIKey),
		middleware.AuthMiddleware(cfg.JWTSecret),
	)
	registerInternalSettlementRoutes(internal, service.Settlement)
	registerInternalSubscriptionRoutes(internal, service.Subscription)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
