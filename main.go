package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"litoralnorte/imovelworker/config"
	"litoralnorte/imovelworker/helpers"
	"litoralnorte/imovelworker/internal/pipeline"
	"litoralnorte/imovelworker/internal/scraper"
	"litoralnorte/imovelworker/internal/server"
	"litoralnorte/imovelworker/logger"
	"litoralnorte/imovelworker/services/cache"
	"litoralnorte/imovelworker/services/lock"
	"litoralnorte/imovelworker/services/store"
	"litoralnorte/imovelworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("scrape_interval", cfg.ScrapeInterval).
		Strs("cities", cfg.Scrape.Cities).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Create scrapers
	fetcher := helpers.NewFetcher(cfg.Scrape.Timeout)
	scrapers := scraper.CreateScrapers(cfg, fetcher.FetchPage, services.Blocks)
	if len(scrapers) == 0 {
		log.Fatal().Msg("No scrapers were created")
	}

	log.Info().
		Int("scraper_count", len(scrapers)).
		Msg("Created scrapers")

	sources := make([]pipeline.SourceScraper, len(scrapers))
	for i, s := range scrapers {
		sources[i] = s
	}
	p := pipeline.New(sources, services.Store, services.Locker)

	// Start the scheduler
	w := worker.New(p, cfg.ScrapeInterval)
	go w.Start(ctx)

	// Start the HTTP trigger surface
	srv := server.New(cfg.HTTPAddr, p)
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or server failure
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-serverDone:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
		cancel()
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

// Services holds all the initialized services
type Services struct {
	Store  store.Store
	Blocks cache.CacheService
	Locker lock.Locker
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Store != nil {
		s.Store.Close()
	}
	if closer, ok := s.Locker.(interface{ Close() error }); ok && closer != nil {
		closer.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(cfg config.Config) (*Services, error) {
	services := &Services{}

	// Initialize the property store
	pg, err := store.NewPostgresStore(cfg.DatabaseURL, cfg.Scrape.MaxRetries)
	if err != nil {
		return nil, err
	}
	services.Store = pg

	logger.Info("Connected to Postgres")

	// Initialize the portal block cache
	services.Blocks = cache.NewMemcacheService(cfg.MemcacheAddr)

	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize the run lock. Optional: the pipeline runs unguarded
	// when redis is unreachable.
	if cfg.RedisAddr != "" {
		services.Locker = lock.NewRedisLocker(cfg.RedisAddr, cfg.RedisDB)
		logger.Info("Connected to Redis at %s (DB: %d)", cfg.RedisAddr, cfg.RedisDB)
	}

	return services, nil
}
