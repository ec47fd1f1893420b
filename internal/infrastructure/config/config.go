package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	LogLevel  string          `mapstructure:"log_level"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DataConfig locates the snapshot files. When BaseURL is set the loader
// fetches them over HTTP instead of reading Dir.
type DataConfig struct {
	Dir     string        `mapstructure:"dir"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds the search response cache settings.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ScoringConfig names every heuristic constant used by the substitution
// engine and the ranker, so tuning is a config change.
type ScoringConfig struct {
	FallbackBase       float64 `mapstructure:"fallback_base"`
	BonusRoleMatch     float64 `mapstructure:"bonus_role_match"`
	BonusSameParent    float64 `mapstructure:"bonus_same_parent"`
	BonusDietOK        float64 `mapstructure:"bonus_diet_ok"`
	PenaltyRoleUnknown float64 `mapstructure:"penalty_role_unknown"`
	SharedParentStep   float64 `mapstructure:"shared_parent_step"`
	DefaultRuleWeight  float64 `mapstructure:"default_rule_weight"`
	WeightHave         int     `mapstructure:"weight_have"`
	WeightAvoid        int     `mapstructure:"weight_avoid"`
	WeightMissing      int     `mapstructure:"weight_missing"`
}

// DefaultScoringConfig returns the stock heuristic constants, matching the
// configuration defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		FallbackBase:       0.55,
		BonusRoleMatch:     0.10,
		BonusSameParent:    0.05,
		BonusDietOK:        0.05,
		PenaltyRoleUnknown: 0.05,
		SharedParentStep:   0.01,
		DefaultRuleWeight:  0.6,
		WeightHave:         3,
		WeightAvoid:        2,
		WeightMissing:      1,
	}
}

// LoadConfig loads the configuration from .env and the environment.
func LoadConfig() (*Config, error) {
	// .env is optional outside development.
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("data.dir", "DATA_DIR")
	viper.BindEnv("data.base_url", "DATA_BASE_URL")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "recipe-finder")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("data.dir", "data")
	viper.SetDefault("data.base_url", "")
	viper.SetDefault("data.timeout", "30s")

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.ttl", "10m")

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// Substitution and ranking heuristics.
	viper.SetDefault("scoring.fallback_base", 0.55)
	viper.SetDefault("scoring.bonus_role_match", 0.10)
	viper.SetDefault("scoring.bonus_same_parent", 0.05)
	viper.SetDefault("scoring.bonus_diet_ok", 0.05)
	viper.SetDefault("scoring.penalty_role_unknown", 0.05)
	viper.SetDefault("scoring.shared_parent_step", 0.01)
	viper.SetDefault("scoring.default_rule_weight", 0.6)
	viper.SetDefault("scoring.weight_have", 3)
	viper.SetDefault("scoring.weight_avoid", 2)
	viper.SetDefault("scoring.weight_missing", 1)

	viper.SetDefault("log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Data.Dir == "" && config.Data.BaseURL == "" {
		return fmt.Errorf("either data dir or data base_url is required")
	}

	if config.Cache.Enabled {
		if config.Cache.RedisAddr == "" {
			return fmt.Errorf("cache redis_addr is required when cache is enabled")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.Scoring.FallbackBase < 0 || config.Scoring.FallbackBase > 1 {
		return fmt.Errorf("scoring fallback_base must be within [0,1]")
	}
	if config.Scoring.DefaultRuleWeight < 0 || config.Scoring.DefaultRuleWeight > 1 {
		return fmt.Errorf("scoring default_rule_weight must be within [0,1]")
	}

	return nil
}
