package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: reports are persisted only when URL is set)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External providers
	CoinGecko     ProviderConfig
	DexScreener   ProviderConfig
	CoinMarketCap ProviderConfig
	GoPlus        ProviderConfig

	// Scanner alert bridge
	AlertBridge AlertBridgeConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Pipeline defaults file (YAML). Empty means built-in defaults.
	PipelineConfigPath string

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string // rolling file sink, empty disables

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database connection was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ProviderConfig holds settings shared by every market-data provider
type ProviderConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
}

// AlertBridgeConfig holds the scanner websocket bridge settings
type AlertBridgeConfig struct {
	URL            string
	ReconnectDelay time.Duration
	MaxReconnects  int
}

// SchedulerConfig holds the periodic sweep settings
type SchedulerConfig struct {
	SweepSpec    string // cron spec with seconds
	EvaluateTopN int
	SweepTimeout time.Duration
	ScreenDelay  time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "tokenscout"),
			User:            getEnv("DB_USER", "tokenscout"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External providers
		CoinGecko: ProviderConfig{
			BaseURL:   getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
			APIKey:    getEnv("COINGECKO_API_KEY", ""),
			Timeout:   getEnvAsDuration("COINGECKO_TIMEOUT", "15s"),
			RateLimit: getEnvAsFloat("COINGECKO_RATE_LIMIT", 0.5),
		},
		DexScreener: ProviderConfig{
			BaseURL:   getEnv("DEXSCREENER_BASE_URL", "https://api.dexscreener.com"),
			Timeout:   getEnvAsDuration("DEXSCREENER_TIMEOUT", "15s"),
			RateLimit: getEnvAsFloat("DEXSCREENER_RATE_LIMIT", 4),
		},
		CoinMarketCap: ProviderConfig{
			BaseURL:   getEnv("COINMARKETCAP_BASE_URL", "https://coinmarketcap.com"),
			Timeout:   getEnvAsDuration("COINMARKETCAP_TIMEOUT", "20s"),
			RateLimit: getEnvAsFloat("COINMARKETCAP_RATE_LIMIT", 0.2),
		},
		GoPlus: ProviderConfig{
			BaseURL:   getEnv("GOPLUS_BASE_URL", "https://api.gopluslabs.io/api/v1"),
			APIKey:    getEnv("GOPLUS_API_KEY", ""),
			Timeout:   getEnvAsDuration("GOPLUS_TIMEOUT", "10s"),
			RateLimit: getEnvAsFloat("GOPLUS_RATE_LIMIT", 1),
		},

		AlertBridge: AlertBridgeConfig{
			URL:            getEnv("ALERT_BRIDGE_URL", "ws://localhost:8766"),
			ReconnectDelay: getEnvAsDuration("ALERT_BRIDGE_RECONNECT_DELAY", "5s"),
			MaxReconnects:  getEnvAsInt("ALERT_BRIDGE_MAX_RECONNECTS", 10),
		},

		Scheduler: SchedulerConfig{
			SweepSpec:    getEnv("SCHEDULER_SWEEP_SPEC", "0 */15 * * * *"),
			EvaluateTopN: getEnvAsInt("SCHEDULER_EVALUATE_TOP_N", 5),
			SweepTimeout: getEnvAsDuration("SCHEDULER_SWEEP_TIMEOUT", "10m"),
			ScreenDelay:  getEnvAsDuration("SCREEN_DELAY", "500ms"),
		},

		PipelineConfigPath: getEnv("PIPELINE_CONFIG", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scheduler.EvaluateTopN < 0 {
		return fmt.Errorf("SCHEDULER_EVALUATE_TOP_N must not be negative")
	}

	if c.Scheduler.ScreenDelay < 0 {
		return fmt.Errorf("SCREEN_DELAY must not be negative")
	}

	providers := map[string]ProviderConfig{
		"COINGECKO":     c.CoinGecko,
		"DEXSCREENER":   c.DexScreener,
		"COINMARKETCAP": c.CoinMarketCap,
		"GOPLUS":        c.GoPlus,
	}
	for name, p := range providers {
		u, err := url.Parse(p.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s_BASE_URL must be an http(s) URL, got %q", name, p.BaseURL)
		}
		if p.RateLimit < 0 {
			return fmt.Errorf("%s_RATE_LIMIT must not be negative", name)
		}
	}

	// 스캐너 브리지는 웹소켓만 지원
	if u, err := url.Parse(c.AlertBridge.URL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("ALERT_BRIDGE_URL must be a ws:// or wss:// URL, got %q", c.AlertBridge.URL)
	}
	if c.AlertBridge.MaxReconnects < 0 {
		return fmt.Errorf("ALERT_BRIDGE_MAX_RECONNECTS must not be negative (0 retries forever)")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
