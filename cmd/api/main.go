package main

// @title Photo Watermark API
// @version 1.0.0
// @description Водяные знаки для фотографий: время съёмки, место, возраст ребёнка и свой текст.
// @description
// @description Основные возможности:
// @description - Чтение EXIF: время съёмки, GPS, камера
// @description - Каталог системных шрифтов
// @description - Обратное геокодирование через семь сервисов с кешем в Redis
// @description - Предпросмотр и пакетная обработка, синхронно или через очередь воркера

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/photo-watermark/docs"
	"github.com/photo-watermark/internal/config"
	httpDelivery "github.com/photo-watermark/internal/delivery/http"
	"github.com/photo-watermark/internal/delivery/http/handler"
	"github.com/photo-watermark/internal/domain/repository"
	"github.com/photo-watermark/internal/infrastructure/exif"
	"github.com/photo-watermark/internal/infrastructure/fonts"
	"github.com/photo-watermark/internal/infrastructure/geocoder"
	"github.com/photo-watermark/internal/infrastructure/render"
	"github.com/photo-watermark/internal/pkg/logger"
	"github.com/photo-watermark/internal/repository/cache"
	redisRepo "github.com/photo-watermark/internal/repository/redis"
	"github.com/photo-watermark/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Photo Watermark API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Int("geocoder_keys", len(cfg.Geocoder.APIKeys)),
	)

	// 3. Redis (optional): geocode cache and job queue
	var (
		redisClient *cache.Redis
		cacheRepo   repository.CacheRepository
		jobs        handler.JobPublisher
	)
	healthChecks := make(map[string]handler.HealthCheck)

	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()

		cacheRepo = cache.NewCacheRepository(redisClient)
		jobs = redisRepo.NewStreamRepository(redisClient.Client(), log)
		healthChecks["redis"] = redisClient.Health
	} else {
		log.Info("Redis disabled: geocode cache and async jobs are off")
	}

	// 4. Infrastructure
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
	rasterizer := render.NewRasterizer(log)

	log.Info("Infrastructure initialized")

	// 5. Initialize Use Cases
	geocodeUC := usecase.NewGeocodeUseCase(resolver, cacheRepo, cfg, cfg.Cache.GeocodeCacheTTL, log)
	lineAssembler := usecase.NewLineAssembler(extractor, geocodeUC, log)
	compositor := usecase.NewCompositor(catalog, rasterizer, log)
	photoUC := usecase.NewPhotoUseCase(extractor, lineAssembler, compositor, cfg.Output.Concurrency, log)

	log.Info("Use cases initialized")

	// 6. Initialize HTTP Handlers
	fontHandler := handler.NewFontHandler(catalog, log)
	photoHandler := handler.NewPhotoHandler(photoUC, lineAssembler, cfg, jobs, log)
	geocodeHandler := handler.NewGeocodeHandler(geocodeUC, log)
	healthHandler := handler.NewHealthHandler(healthChecks)

	// 7. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		fontHandler,
		photoHandler,
		geocodeHandler,
		healthHandler,
	)

	// шрифты ищем в фоне, первый запрос /fonts не должен ждать fc-list
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		log.Info("Font catalog warmed up", zap.Int("fonts", len(catalog.ListFonts(ctx))))
	}()

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
