package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"anbondar/rentworker/config"
	"anbondar/rentworker/internal/collage"
	"anbondar/rentworker/internal/crawler"
	"anbondar/rentworker/internal/dateparse"
	"anbondar/rentworker/internal/lockfile"
	"anbondar/rentworker/logger"
	"anbondar/rentworker/services/cache"
	"anbondar/rentworker/services/notifier"
	"anbondar/rentworker/services/store"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	os.Exit(run())
}

// run executes one scheduled invocation. Only unrecoverable startup failures
// produce a non-zero exit; failed rows and aborted passes within a run do
// not, since the next scheduled run retries them.
func run() int {
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return 1
	}

	command, pages, err := parseCommand(os.Args[1:], cfg.MaxPages)
	if err != nil {
		log.Error().Err(err).Msg("Invalid command")
		return 1
	}

	// Refuse to run alongside another instance
	lock, err := lockfile.Acquire(cfg.LockFile)
	if err != nil {
		log.Error().Err(err).Msg("Could not acquire singleton lock")
		return 1
	}
	defer lock.Release()

	log.Info().
		Str("environment", cfg.Environment).
		Str("command", command).
		Str("fetch_strategy", cfg.FetchStrategy).
		Msg("Starting run")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// Initialize services
	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize services")
		return 1
	}
	defer services.Cleanup()

	loc, err := cfg.Location()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load timezone")
		return 1
	}
	extractor := crawler.NewExtractor(crawler.DefaultSelectors(), dateparse.New(loc), cfg.ImageSize)

	if command == "crawl" || command == "run" {
		search := crawler.NewSearchCrawler(
			services.Fetcher,
			extractor,
			services.Store,
			cfg.BaseURL,
			crawler.SearchQuery{
				Currency:  cfg.Currency,
				PriceFrom: cfg.PriceFrom,
				PriceTo:   cfg.PriceTo,
				AreaFrom:  cfg.AreaFrom,
			},
			crawler.DefaultSelectors(),
			cfg.PageDelay,
		)
		if err := search.Crawl(ctx, pages); err != nil {
			log.Error().Err(err).Msg("Search pass aborted")
		} else {
			log.Info().Msg("Search pass finished")
		}
	}

	if command == "backfill" || command == "run" {
		backfiller := crawler.NewDetailBackfiller(
			services.Fetcher,
			extractor,
			services.Store,
			services.Notifier,
			collage.NewDownloader(logger.ForBackfill()),
			store.Filter{
				UploadWindow:    cfg.UploadWindow,
				PublishedWindow: cfg.PublishedWindow,
				DistrictAllow:   cfg.DistrictAllow,
				TitleDeny:       cfg.TitleDeny,
			},
			cfg.DetailBaseURL,
			cfg.MaxImages,
			cfg.DescriptionLimit,
		)
		if err := backfiller.Backfill(ctx); err != nil {
			log.Error().Err(err).Msg("Backfill pass aborted")
		} else {
			log.Info().Msg("Backfill pass finished")
		}
	}

	return 0
}

// parseCommand interprets the CLI arguments: "crawl [pages]", "backfill" or
// "run" (the default, both passes sequentially).
func parseCommand(args []string, defaultPages int) (string, int, error) {
	if len(args) == 0 {
		return "run", defaultPages, nil
	}

	switch args[0] {
	case "run":
		return "run", defaultPages, nil
	case "backfill":
		return "backfill", 0, nil
	case "crawl":
		pages := defaultPages
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return "", 0, fmt.Errorf("invalid page count %q", args[1])
			}
			pages = n
		}
		return "crawl", pages, nil
	default:
		return "", 0, fmt.Errorf("unknown command %q (expected crawl, backfill or run)", args[0])
	}
}

// Services holds all the initialized services
type Services struct {
	Store    store.ListingStore
	Notifier notifier.Notifier
	Fetcher  crawler.PageFetcher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Fetcher != nil {
		s.Fetcher.Close()
	}
	if s.Notifier != nil {
		s.Notifier.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes the store, fetcher and notification channels
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Store: unreachable persistence at startup is fatal
	switch cfg.StoreDriver {
	case "postgres":
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		services.Store = pg
		logger.Info("Connected to PostgreSQL")
	case "memory":
		services.Store = store.NewMemory()
		logger.Warn("Using in-memory store, nothing will be persisted")
	}

	// Fetch strategy
	var blockCache cache.Cache
	if cfg.MemcacheAddr != "" {
		blockCache = cache.NewMemcache(cfg.MemcacheAddr)
		logger.Info("Using Memcache fetch block at %s", cfg.MemcacheAddr)
	}
	if cfg.FetchStrategy == "chrome" {
		services.Fetcher = crawler.NewChromeFetcher(cfg.ChromeRecyclePages)
	} else {
		services.Fetcher = crawler.NewHTTPFetcher(blockCache, cfg.FetchBlockTime)
	}

	// Notification channels
	var channels []notifier.Notifier
	if cfg.BotToken != "" {
		tg, err := notifier.NewTelegram(cfg.BotToken, cfg.ChatID)
		if err != nil {
			services.Cleanup()
			return nil, err
		}
		channels = append(channels, tg)
		logger.Info("Telegram notifier enabled for chat %d", cfg.ChatID)
	}
	if cfg.RedisAddr != "" {
		channels = append(channels,
			notifier.NewRedisStream(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength))
		logger.Info("Redis stream notifier enabled at %s (stream: %s)", cfg.RedisAddr, cfg.RedisStream)
	}
	if len(channels) == 0 {
		logger.Warn("No notification channels configured")
	}
	services.Notifier = notifier.NewMulti(channels...)

	return services, nil
}
