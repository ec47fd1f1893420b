package api

import (
	"context"
	"net/http"
	"time"

	"recipe-finder/internal/api/handlers/health"
	searchHandler "recipe-finder/internal/api/handlers/search"
	"recipe-finder/internal/api/middleware"
	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/infrastructure/data"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	timeoutDuration = 30 * time.Second
	// Request body size limit (1MB is plenty for a search payload)
	maxBodySize = 1 << 20
)

// SetupRouter wires middleware and routes.
func SetupRouter(cfg *config.Config, store *data.Store, cacheSvc *cache.Service) (*gin.Engine, error) {
	common.LogInfo("starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// Per-request timeout.
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
		}
	})

	handler := searchHandler.NewHandler(store, cacheSvc)

	// Landing route proving the server is up.
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":   true,
			"name": cfg.App.Name,
			"endpoints": []string{
				"GET  /health",
				"GET  /ready",
				"GET  /live",
				"POST /api/v1/search",
				"GET  /api/v1/suggest",
				"GET  /api/v1/typeahead",
				"GET  /api/v1/recipes",
				"GET  /api/v1/recipe/:index",
				"GET  /api/v1/validate",
				"POST /api/v1/reload",
			},
		})
	})

	router.GET("/health", health.HealthCheck(cfg.App.Version, store))
	router.GET("/ready", health.ReadinessCheck(store))
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	{
		api.POST("/search", handler.HandleSearch)
		api.GET("/suggest", handler.HandleSuggest)
		api.GET("/typeahead", handler.HandleTypeahead)
		api.GET("/recipes", handler.HandleRecipes)
		api.GET("/recipe/:index", handler.HandleRecipeDetail)
		api.GET("/validate", handler.HandleValidate)
		api.POST("/reload", handler.HandleReload)
	}

	common.LogInfo("router setup completed")

	return router, nil
}
