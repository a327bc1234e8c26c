package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"reportpress/internal/api"
	"reportpress/internal/assets"
	"reportpress/internal/config"
	"reportpress/internal/extract"
	"reportpress/internal/jobs"
	"reportpress/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	jobStore := jobs.NewStore(redisClient)
	hydrator := assets.NewHydrator(cfg.Assets.Root, cfg.Assets.FetchTimeout(), logger)

	var extractor *extract.FieldExtractor
	if cfg.Extract.GeminiAPIKey != "" {
		extractor, err = extract.NewFieldExtractor(context.Background(), cfg.Extract)
		if err != nil {
			log.Fatalf("init field extractor: %v", err)
		}
		logger.Info("field extractor ready", slog.String("model", cfg.Extract.Model))
	} else {
		logger.Warn("field extraction disabled, GEMINI_API_KEY not set")
	}

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, hydrator, asynqClient, jobStore, storageClient, extractor, cfg.Clamd.Addr, cfg.API.MaxBodyBytes)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
