package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-recommender/internal/api"
	"recipe-recommender/internal/core/discovery"
	"recipe-recommender/internal/core/ingredient"
	"recipe-recommender/internal/core/pantry"
	"recipe-recommender/internal/core/preference"
	"recipe-recommender/internal/core/profile"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/infrastructure/database"
	"recipe-recommender/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("env", cfg.App.Env),
		zap.Bool("postgres", cfg.Database.DSN != ""),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("recipe_import", cfg.RecipeSource.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 食材標準化與替代表
	norm := ingredient.DefaultTable()
	subs := ingredient.DefaultSubstitutionTable(norm)

	// 庫存存儲：DSN 留空時使用記憶體實現
	var pantryStore pantry.Store
	if cfg.Database.DSN != "" {
		pool, err := database.Open(ctx, cfg.Database)
		if err != nil {
			common.LogFatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		pgStore := pantry.NewPostgresStore(pool)
		if err := pgStore.Migrate(ctx); err != nil {
			common.LogFatal("Failed to migrate pantry schema", zap.Error(err))
		}
		pantryStore = pgStore
	} else {
		pantryStore = pantry.NewMemoryStore()
	}

	// 菜譜目錄：啟動時可從遠端來源匯入
	catalog := recipe.NewMemoryRepository()
	if cfg.RecipeSource.Enabled {
		importer := recipe.NewImporter(cfg.RecipeSource, catalog, norm)
		count, err := importer.Run(ctx)
		if err != nil {
			// 匯入失敗不阻止啟動，目錄保持已匯入的部分
			common.LogError("菜譜匯入未完成",
				zap.Error(err),
				zap.Int("imported", count),
			)
		} else {
			common.LogInfo("菜譜匯入完成", zap.Int("imported", count))
		}
	}

	// 查詢緩存
	var recipes recipe.Repository = catalog
	if cfg.Redis.Enabled {
		cached, err := recipe.NewCachedRepository(catalog, cfg.Redis.Addr, cfg.Redis.TTL)
		if err != nil {
			common.LogFatal("Failed to initialize recipe cache", zap.Error(err))
		}
		defer cached.Close()
		recipes = cached
	}

	// 組裝核心服務
	pantrySvc := pantry.NewService(pantryStore, norm, cfg.Pantry.DeductUnit)
	selector := pantry.NewSelector(pantryStore, norm, cfg.Pantry.ExpiryWindowDays)
	prefs := preference.NewMemoryStore()
	profiles := profile.NewMemoryStore()

	svcs := &api.Services{
		Recipes:       recipes,
		Pantry:        pantrySvc,
		Matching:      discovery.NewMatchingService(recipes, selector),
		Wheel:         discovery.NewWheelEngine(recipes, prefs, profiles, norm, cfg.Wheel.PoolFetchLimit, cfg.Wheel.DefaultMealKcal, nil),
		Shopping:      discovery.NewShoppingService(recipes, selector),
		Substitutions: subs,
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, svcs)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	<-ctx.Done()

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
