package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sadanews/sada/internal/models"
)

// Config holds all process-level configuration for the application.
// Runtime sync settings live in models.SyncConfig and are persisted in the
// store; this struct only covers what is fixed at startup.
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Redis configuration
	RedisURL    string `json:"redis_url"`
	RedisPrefix string `json:"redis_prefix"`

	// AI Configuration
	AIApiKey  string        `json:"ai_api_key"`
	AIModel   string        `json:"ai_model"`
	AIBaseURL string        `json:"ai_base_url"`
	AITimeout time.Duration `json:"ai_timeout"`

	// Sources
	RSSFeedURLs     []string `json:"rss_feed_urls"`
	SocialPageURLs  []string `json:"social_page_urls"`
	SheetsImportDir string   `json:"sheets_import_dir"`

	// Image probing
	ProbeTimeout time.Duration `json:"probe_timeout"`

	// CloudFlare R2 archive of trimmed articles
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix: getEnv("REDIS_PREFIX", "sada:"),

		AIApiKey:  getEnv("AI_API_KEY", ""),
		AIModel:   getEnv("AI_MODEL", "gemini-pro"),
		AIBaseURL: getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		AITimeout: getEnvAsDuration("AI_TIMEOUT", 60*time.Second),

		RSSFeedURLs:     getEnvAsList("RSS_FEED_URLS"),
		SocialPageURLs:  getEnvAsList("SOCIAL_PAGE_URLS"),
		SheetsImportDir: getEnv("SHEETS_IMPORT_DIR", "./data/imports"),

		ProbeTimeout: getEnvAsDuration("PROBE_TIMEOUT", 5*time.Second),

		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "sada-archive"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	return cfg
}

// Validate rejects configurations the process cannot run with. Without an
// admin API key every admin endpoint would reject every request, so a
// missing key is a startup error, not a runtime surprise.
func (c *Config) Validate() error {
	if c.AdminAPIKey == "" {
		return errors.New("ADMIN_API_KEY must be set, the admin API is unusable without it")
	}
	return nil
}

// DefaultSyncConfig returns the sync configuration used until an admin
// saves one.
func DefaultSyncConfig() models.SyncConfig {
	return models.SyncConfig{
		Enabled:         true,
		IntervalMinutes: getEnvAsInt("SYNC_INTERVAL_MINUTES", 30),
		MaxArticles:     getEnvAsInt("MAX_ARTICLES", 100),
		Sources: models.SourceFlags{
			RSS:     true,
			Social:  true,
			Webhook: true,
			Sheets:  true,
		},
	}
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsList(name string) []string {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return nil
	}
	var out []string
	for _, part := range splitAndTrim(valueStr, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}
