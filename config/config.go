package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// HTTP server configuration
	ServerPort int

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// LLM configuration
	LLM LLMConfig

	// Analytics configuration
	Analytics AnalyticsConfig
}

// LLMConfig holds LLM service configuration
type LLMConfig struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Model    string
}

// AnalyticsConfig holds pattern analysis parameters and thresholds
type AnalyticsConfig struct {
	// Pairing
	LookbackWindowHours int // max gap between an emotion check and a trade entry

	// Sample size floors
	MinTradesCorrelation int // below this, correlation reports return "insufficient data"
	MinTradesOptimal     int // below this, optimal-conditions reports return "insufficient data"
	MinWeeksTrend        int // below this, weekly trend reports return "insufficient data"
	MinSignificantSample int // significance additionally requires at least this many pairs

	// Significance
	SignificanceLevel float64 // two-tailed p-value cutoff

	// Report cache TTLs (minutes)
	CorrelationCacheTTLMin int
	TrendCacheTTLMin       int
	InsightsCacheTTLMin    int
	OptimalCacheTTLMin     int

	// Concurrency
	MaxConcurrentReports int // semaphore slots for heavy report computations

	// Background refresher
	RefreshIntervalMinutes int
	RefreshLookbackDays    int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		ServerPort: getEnvInt("SERVER_PORT", 8090),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "trademendor_journal"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "trademendor"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "trademendor123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// LLM configuration
		LLM: LLMConfig{
			Enabled:  getEnvOrDefault("LLM_ENABLED", "false") == "true",
			Endpoint: getEnvOrDefault("LLM_ENDPOINT", "https://api.openai.com/v1"),
			APIKey:   getEnvOrDefault("LLM_API_KEY", ""),
			Model:    getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		},

		// Analytics configuration
		Analytics: AnalyticsConfig{
			LookbackWindowHours: getEnvInt("ANALYTICS_LOOKBACK_WINDOW_HOURS", 6),

			MinTradesCorrelation: getEnvInt("ANALYTICS_MIN_TRADES_CORRELATION", 10),
			MinTradesOptimal:     getEnvInt("ANALYTICS_MIN_TRADES_OPTIMAL", 20),
			MinWeeksTrend:        getEnvInt("ANALYTICS_MIN_WEEKS_TREND", 3),
			MinSignificantSample: getEnvInt("ANALYTICS_MIN_SIGNIFICANT_SAMPLE", 30),

			SignificanceLevel: getEnvFloat("ANALYTICS_SIGNIFICANCE_LEVEL", 0.05),

			CorrelationCacheTTLMin: getEnvInt("ANALYTICS_CORRELATION_CACHE_TTL_MIN", 30),
			TrendCacheTTLMin:       getEnvInt("ANALYTICS_TREND_CACHE_TTL_MIN", 60),
			InsightsCacheTTLMin:    getEnvInt("ANALYTICS_INSIGHTS_CACHE_TTL_MIN", 120),
			OptimalCacheTTLMin:     getEnvInt("ANALYTICS_OPTIMAL_CACHE_TTL_MIN", 120),

			MaxConcurrentReports: getEnvInt("ANALYTICS_MAX_CONCURRENT_REPORTS", 2),

			RefreshIntervalMinutes: getEnvInt("ANALYTICS_REFRESH_INTERVAL_MIN", 60),
			RefreshLookbackDays:    getEnvInt("ANALYTICS_REFRESH_LOOKBACK_DAYS", 30),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
