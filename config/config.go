package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Store configuration
	StoreDriver string
	DatabaseURL string

	// Telegram configuration
	BotToken string
	ChatID   int64

	// Redis fan-out configuration (disabled when RedisAddr is empty)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache fetch-block cache (disabled when MemcacheAddr is empty)
	MemcacheAddr   string
	FetchBlockTime time.Duration

	// Source configuration
	BaseURL       string
	DetailBaseURL string
	Currency      string
	PriceFrom     int
	PriceTo       int
	AreaFrom      int
	ImageSize     string

	// Crawl configuration
	MaxPages           int
	FetchStrategy      string
	ChromeRecyclePages int
	PageDelay          time.Duration

	// Backfill policy
	DistrictAllow    []string
	TitleDeny        []string
	UploadWindow     time.Duration
	PublishedWindow  time.Duration
	MaxImages        int
	DescriptionLimit int

	// Process configuration
	LockFile    string
	TZLocation  string
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	chatID, _ := strconv.ParseInt(getEnv("CHAT_ID", "0"), 10, 64)
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	uploadWindow, _ := strconv.Atoi(getEnv("UPLOAD_WINDOW_MINUTES", "1440"))
	publishedWindow, _ := strconv.Atoi(getEnv("PUBLISHED_WINDOW_HOURS", "48"))
	pageDelay, _ := strconv.Atoi(getEnv("PAGE_DELAY_SECONDS", "2"))
	blockTime, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "300"))

	return Config{
		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		BotToken: getEnv("BOT_TOKEN", ""),
		ChatID:   chatID,

		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 500),

		MemcacheAddr:   getEnv("MEMCACHE_ADDR", ""),
		FetchBlockTime: time.Duration(blockTime) * time.Second,

		BaseURL:       getEnv("BASE_URL", "https://www.olx.ua/uk/nedvizhimost/kvartiry/dolgosrochnaya-arenda-kvartir/kiev/"),
		DetailBaseURL: getEnv("DETAIL_BASE_URL", "https://www.olx.ua"),
		Currency:      getEnv("CURRENCY", "UAH"),
		PriceFrom:     getEnvInt("PRICE_FROM", 12000),
		PriceTo:       getEnvInt("PRICE_TO", 25000),
		AreaFrom:      getEnvInt("AREA_FROM", 30),
		ImageSize:     getEnv("IMAGE_SIZE", "600x300"),

		MaxPages:           getEnvInt("MAX_PAGES", 3),
		FetchStrategy:      getEnv("FETCH_STRATEGY", "http"),
		ChromeRecyclePages: getEnvInt("CHROME_RECYCLE_PAGES", 5),
		PageDelay:          time.Duration(pageDelay) * time.Second,

		DistrictAllow:    getEnvList("DISTRICT_ALLOW"),
		TitleDeny:        getEnvList("TITLE_DENY"),
		UploadWindow:     time.Duration(uploadWindow) * time.Minute,
		PublishedWindow:  time.Duration(publishedWindow) * time.Hour,
		MaxImages:        getEnvInt("MAX_IMAGES", 6),
		DescriptionLimit: getEnvInt("DESCRIPTION_LIMIT", 500),

		LockFile:    getEnv("LOCK_FILE", "/tmp/rentworker.lock"),
		TZLocation:  getEnv("TZ_LOCATION", "Europe/Kyiv"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.StoreDriver != "postgres" && c.StoreDriver != "memory" {
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required with the postgres store")
	}
	if c.FetchStrategy != "http" && c.FetchStrategy != "chrome" {
		return fmt.Errorf("unknown FETCH_STRATEGY %q", c.FetchStrategy)
	}
	if c.BotToken != "" && c.ChatID == 0 {
		return fmt.Errorf("CHAT_ID is required when BOT_TOKEN is set")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("MAX_PAGES must be at least 1")
	}
	if c.MaxImages < 1 {
		return fmt.Errorf("MAX_IMAGES must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TZ_LOCATION %q: %w", c.TZLocation, err)
	}
	return nil
}

// Location resolves the timezone the source renders clock times in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TZLocation)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvList retrieves a comma-separated environment variable as a slice
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
