package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/photo-watermark/internal/config"
	"github.com/photo-watermark/internal/infrastructure/exif"
	"github.com/photo-watermark/internal/infrastructure/fonts"
	"github.com/photo-watermark/internal/infrastructure/geocoder"
	"github.com/photo-watermark/internal/infrastructure/render"
	"github.com/photo-watermark/internal/pkg/logger"
	"github.com/photo-watermark/internal/repository/cache"
	redisRepo "github.com/photo-watermark/internal/repository/redis"
	"github.com/photo-watermark/internal/usecase"
	"github.com/photo-watermark/internal/worker"
	"github.com/photo-watermark/internal/worker/watermark"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Watermark Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Int("concurrency", cfg.Output.Concurrency),
		zap.String("output_dir", cfg.Output.Dir))

	// 3. Connect to Redis: the worker has no use without the job stream
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Initialize repositories and infrastructure
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	cacheRepo := cache.NewCacheRepository(redisClient)

	extractor := exif.NewExtractor(log)
	catalog := fonts.NewCatalog(
		fonts.NewExecRunner(cfg.Fonts.CommandTimeout),
		fonts.NewCache(),
		fonts.Options{ExtraDirs: cfg.Fonts.ExtraDirs},
		log,
	)
	resolver := geocoder.NewResolver(geocoder.Config{
		Timeout:  cfg.Geocoder.RequestTimeout,
		BaseURLs: cfg.Geocoder.BaseURLs,
	}, log)

	// 5. Initialize use cases
	geocodeUC := usecase.NewGeocodeUseCase(resolver, cacheRepo, cfg, cfg.Cache.GeocodeCacheTTL, log)
	lineAssembler := usecase.NewLineAssembler(extractor, geocodeUC, log)
	compositor := usecase.NewCompositor(catalog, render.NewRasterizer(log), log)
	photoUC := usecase.NewPhotoUseCase(extractor, lineAssembler, compositor, cfg.Output.Concurrency, log)

	// 6. Initialize workers
	jobWorker := watermark.NewJobWorker(
		streamRepo,
		photoUC,
		cfg,
		cfg.Watermark,
		cfg.Output.Dir,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	)

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log, worker.WithShutdownTimeout(cfg.Worker.ShutdownTimeout))
	workerManager.Register(jobWorker)

	// 8. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Stop first: a job in progress is finished, not interrupted
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancel()

	log.Info("Worker shutdown complete")
}
