package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	RecipeSource RecipeSourceConfig `mapstructure:"recipe_source"`
	Pantry       PantryConfig       `mapstructure:"pantry"`
	Wheel        WheelConfig        `mapstructure:"wheel"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	DedupWindow  time.Duration      `mapstructure:"dedup_window"`
	LogLevel     string             `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig 庫存資料庫配置（PostgreSQL），DSN 留空時使用記憶體存儲
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig 菜譜查詢緩存配置
type RedisConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RecipeSourceConfig 菜譜來源配置（啟動時匯入菜譜目錄）
type RecipeSourceConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url"`
	PageSize int           `mapstructure:"page_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PantryConfig 庫存行為配置
type PantryConfig struct {
	ExpiryWindowDays int     `mapstructure:"expiry_window_days"`
	DeductUnit       float64 `mapstructure:"deduct_unit"`
}

// WheelConfig 轉盤引擎配置
type WheelConfig struct {
	PoolFetchLimit  int `mapstructure:"pool_fetch_limit"`
	DefaultMealKcal int `mapstructure:"default_meal_kcal"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（缺失時以純環境變數運行）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("database.dsn", "DATABASE_DSN")
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("recipe_source.enabled", "RECIPE_SOURCE_ENABLED")
	viper.BindEnv("recipe_source.url", "RECIPE_SOURCE_URL")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "recipe-recommender")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 資料庫設定（DSN 留空＝記憶體庫存）
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.min_conns", 2)
	viper.SetDefault("database.conn_max_idle_time", "5m")
	viper.SetDefault("database.conn_max_lifetime", "1h")

	// Redis 設定
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.ttl", "10m")

	// 菜譜來源設定
	viper.SetDefault("recipe_source.enabled", false)
	viper.SetDefault("recipe_source.page_size", 100)
	viper.SetDefault("recipe_source.timeout", "30s")

	// 庫存設定
	viper.SetDefault("pantry.expiry_window_days", 3)
	viper.SetDefault("pantry.deduct_unit", 1.0)

	// 轉盤設定
	viper.SetDefault("wheel.pool_fetch_limit", 50)
	viper.SetDefault("wheel.default_meal_kcal", 600)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 去重窗口預設
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證 Redis 設定
	if config.Redis.Enabled {
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required when redis is enabled")
		}
		if config.Redis.TTL <= 0 {
			return fmt.Errorf("invalid redis ttl")
		}
	}

	// 驗證菜譜來源設定
	if config.RecipeSource.Enabled {
		if config.RecipeSource.URL == "" {
			return fmt.Errorf("recipe source url is required when import is enabled")
		}
		if config.RecipeSource.PageSize <= 0 {
			return fmt.Errorf("invalid recipe source page size")
		}
	}

	// 驗證庫存設定
	if config.Pantry.ExpiryWindowDays < 0 {
		return fmt.Errorf("invalid pantry expiry window")
	}
	if config.Pantry.DeductUnit <= 0 {
		return fmt.Errorf("invalid pantry deduct unit")
	}

	// 驗證轉盤設定
	if config.Wheel.PoolFetchLimit <= 0 {
		return fmt.Errorf("invalid wheel pool fetch limit")
	}

	return nil
}
