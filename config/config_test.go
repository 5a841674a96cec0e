package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"STORE_DRIVER", "DATABASE_URL", "BOT_TOKEN", "CHAT_ID",
		"REDIS_ADDR", "MEMCACHE_ADDR", "BASE_URL", "CURRENCY",
		"MAX_PAGES", "FETCH_STRATEGY", "DISTRICT_ALLOW", "TITLE_DENY",
		"UPLOAD_WINDOW_MINUTES", "PUBLISHED_WINDOW_HOURS", "TZ_LOCATION",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "https://www.olx.ua", cfg.DetailBaseURL)
	assert.Equal(t, "UAH", cfg.Currency)
	assert.Equal(t, 12000, cfg.PriceFrom)
	assert.Equal(t, 25000, cfg.PriceTo)
	assert.Equal(t, 30, cfg.AreaFrom)
	assert.Equal(t, "600x300", cfg.ImageSize)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, "http", cfg.FetchStrategy)
	assert.Equal(t, 2*time.Second, cfg.PageDelay)
	assert.Equal(t, 24*time.Hour, cfg.UploadWindow)
	assert.Equal(t, 48*time.Hour, cfg.PublishedWindow)
	assert.Equal(t, 6, cfg.MaxImages)
	assert.Equal(t, 500, cfg.DescriptionLimit)
	assert.Equal(t, "Europe/Kyiv", cfg.TZLocation)
	assert.Empty(t, cfg.DistrictAllow)
	assert.Empty(t, cfg.TitleDeny)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CHAT_ID", "-1001234567890")
	t.Setenv("MAX_PAGES", "7")
	t.Setenv("PAGE_DELAY_SECONDS", "5")
	t.Setenv("UPLOAD_WINDOW_MINUTES", "60")
	t.Setenv("DISTRICT_ALLOW", "Печерський, Оболонський ,")
	t.Setenv("TITLE_DENY", "світлопарк")

	cfg := LoadConfig()

	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, int64(-1001234567890), cfg.ChatID)
	assert.Equal(t, 7, cfg.MaxPages)
	assert.Equal(t, 5*time.Second, cfg.PageDelay)
	assert.Equal(t, time.Hour, cfg.UploadWindow)
	assert.Equal(t, []string{"Печерський", "Оболонський"}, cfg.DistrictAllow)
	assert.Equal(t, []string{"світлопарк"}, cfg.TitleDeny)
}

func TestLoadConfigInvalidIntFallsBack(t *testing.T) {
	t.Setenv("MAX_PAGES", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 3, cfg.MaxPages)
}

func validConfig() Config {
	return Config{
		StoreDriver:   "memory",
		FetchStrategy: "http",
		MaxPages:      3,
		MaxImages:     6,
		TZLocation:    "Europe/Kyiv",
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.StoreDriver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "STORE_DRIVER")

	cfg = validConfig()
	cfg.StoreDriver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg = validConfig()
	cfg.FetchStrategy = "curl"
	assert.ErrorContains(t, cfg.Validate(), "FETCH_STRATEGY")

	cfg = validConfig()
	cfg.BotToken = "token"
	assert.ErrorContains(t, cfg.Validate(), "CHAT_ID")

	cfg = validConfig()
	cfg.MaxPages = 0
	assert.ErrorContains(t, cfg.Validate(), "MAX_PAGES")

	cfg = validConfig()
	cfg.MaxImages = 0
	assert.ErrorContains(t, cfg.Validate(), "MAX_IMAGES")

	cfg = validConfig()
	cfg.TZLocation = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "TZ_LOCATION")
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	loc, err := cfg.Location()
	assert.NoError(t, err)
	assert.Equal(t, "Europe/Kyiv", loc.String())
}
