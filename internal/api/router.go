package api

import (
	"context"
	"net/http"
	"time"

	discoveryHandler "recipe-recommender/internal/api/handlers/discovery"
	"recipe-recommender/internal/api/handlers/health"
	pantryHandler "recipe-recommender/internal/api/handlers/pantry"
	"recipe-recommender/internal/api/middleware"
	"recipe-recommender/internal/core/discovery"
	"recipe-recommender/internal/core/ingredient"
	"recipe-recommender/internal/core/pantry"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小限制 (1MB)，庫存同步是最大的請求體
	maxBodySize = 1 << 20
)

// Services 路由依賴的核心服務，由 main 組裝後注入
type Services struct {
	Recipes       recipe.Repository
	Pantry        *pantry.Service
	Matching      *discovery.MatchingService
	Wheel         *discovery.WheelEngine
	Shopping      *discovery.ShoppingService
	Substitutions *ingredient.SubstitutionTable
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svcs *Services) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 全局限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 全局中間件：設置超時和配置
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeGatewayTimeout,
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	discoveryH := discoveryHandler.NewHandler(svcs.Matching, svcs.Wheel, svcs.Shopping, svcs.Substitutions)
	pantryH := pantryHandler.NewHandler(svcs.Pantry, svcs.Recipes)

	// API 路由組
	api := router.Group("/api/v1")
	{
		// 推薦相關路由，均需用戶標識
		recommendGroup := api.Group("/recommend", middleware.RequireUser())
		{
			recommendGroup.POST("/search", discoveryH.HandleRecommend)
		}

		wheelGroup := api.Group("/wheel", middleware.RequireUser())
		{
			wheelGroup.POST("/options", discoveryH.HandleWheel)
		}

		shoppingGroup := api.Group("/shopping-list", middleware.RequireUser())
		{
			shoppingGroup.POST("/generate", discoveryH.HandleShoppingList)
		}

		// 庫存路由：寫操作加請求去重
		pantryGroup := api.Group("/pantry", middleware.RequireUser(), middleware.Deduplication(cfg))
		{
			pantryGroup.POST("/sync", pantryH.HandleSync)
			pantryGroup.POST("/consume", pantryH.HandleConsume)
			pantryGroup.GET("/items", pantryH.HandleList)
		}

		// 替代建議與用戶無關
		api.GET("/ingredient/substitutes", discoveryH.HandleSubstitutes)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
