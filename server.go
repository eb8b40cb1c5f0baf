package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"restblog/config"
	"restblog/handlers"
	"restblog/logger"
	"restblog/sanitize"
	"restblog/storage"
	"restblog/storage/in_memory"
	"restblog/storage/models"
	"restblog/storage/persistent"
	"restblog/storage/persistent_cached"
	"restblog/storage/postgres"
	"restblog/views"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const samplePostImage = "https://upload.wikimedia.org/wikipedia/commons/thumb/1/11/Test-Logo.svg/1175px-Test-Logo.svg.png"

func createCachedStorage(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*persistent_cached.PersistentStorageWithCache, error) {
	mongoStorage, err := persistent.CreateMongoStorage(ctx, cfg.MongoUrl, cfg.MongoDbName)
	if err != nil {
		return nil, err
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisUrl,
	})
	return persistent_cached.CreatePersistentStorageCachedWithRedis(mongoStorage, redisClient, log), nil
}

func CreateStorage(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (storage.Storage, error) {
	switch cfg.StorageMode {
	case config.InMemory:
		return in_memory.CreateInMemoryStorage(), nil
	case config.Mongo:
		return persistent.CreateMongoStorage(ctx, cfg.MongoUrl, cfg.MongoDbName)
	case config.MongoWithCache:
		cached, err := createCachedStorage(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if cfg.BrokerUrl != "" {
			broker, err := persistent_cached.CreateBroker(cfg.BrokerUrl)
			if err != nil {
				return nil, err
			}
			cached.WithWarmer(broker)
		}
		return cached, nil
	case config.Postgres:
		return postgres.CreatePostgresStorage(ctx, cfg.PostgresUrl)
	}
	return nil, fmt.Errorf("invalid 'STORAGE_MODE' %q", cfg.StorageMode)
}

func CreateHandler(st storage.Storage, cfg *config.Config, log *zap.SugaredLogger) (*handlers.HTTPHandler, error) {
	policy, err := sanitize.NewPolicy(cfg.SanitizeFields)
	if err != nil {
		return nil, err
	}
	renderer, err := views.NewRenderer(policy.Sanitizes(sanitize.FieldBody))
	if err != nil {
		return nil, err
	}
	return &handlers.HTTPHandler{
		Storage:       st,
		Sanitizer:     policy,
		Views:         renderer,
		Log:           log,
		DeleteFailure: handlers.DeleteFailureRedirect(cfg.DeleteFailureRedirect),
	}, nil
}

func CreateServer(h *handlers.HTTPHandler, port string) *http.Server {
	return &http.Server{
		Handler:      handlers.NewRouter(h),
		Addr:         "0.0.0.0:" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
}

func seed(ctx context.Context, st storage.Storage, policy *sanitize.Policy) (models.Post, error) {
	return st.AddPost(ctx, policy.Apply(models.PostFields{
		Title: "Test Blog",
		Image: samplePostImage,
		Body:  "This is a test of a blog post. Delete after use.",
	}))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Invalid configuration: %s", err)
	}
	zapLogger := logger.New(cfg.LogLevel)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	ctx := context.Background()

	switch cfg.AppMode {
	case config.ServerMode:
		st, err := CreateStorage(ctx, cfg, log)
		if err != nil {
			log.Fatalf("Failed to create storage: %s", err)
		}
		h, err := CreateHandler(st, cfg, log)
		if err != nil {
			log.Fatalf("Failed to create handler: %s", err)
		}
		srv := CreateServer(h, cfg.Port)
		log.Infof("Start serving on %s", srv.Addr)
		log.Fatal(srv.ListenAndServe())
	case config.WorkerMode:
		cached, err := createCachedStorage(ctx, cfg, log)
		if err != nil {
			log.Fatalf("Failed to create storage: %s", err)
		}
		log.Infof("Starting cache worker on %s", cfg.BrokerUrl)
		if err = persistent_cached.CreateWorker(cfg.BrokerUrl, cached, log); err != nil {
			log.Fatalf("Worker stopped: %s", err)
		}
	case config.SeedMode:
		st, err := CreateStorage(ctx, cfg, log)
		if err != nil {
			log.Fatalf("Failed to create storage: %s", err)
		}
		policy, err := sanitize.NewPolicy(cfg.SanitizeFields)
		if err != nil {
			log.Fatalf("Invalid sanitize policy: %s", err)
		}
		post, err := seed(ctx, st, policy)
		if err != nil {
			log.Fatalf("Failed to seed: %s", err)
		}
		log.Infof("Seeded post %s", post.Id)
	}
}
