package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gw2vault-api/internal/cache"
	"gw2vault-api/internal/collector"
	"gw2vault-api/internal/config"
	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/handler"
	"gw2vault-api/internal/repository"
	"gw2vault-api/internal/router"
	"gw2vault-api/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting gw2vault API...")

	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	repo, err := openSnapshotRepository(&cfg.SnapshotDB)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot store: %v", err)
	}
	defer repo.Close()

	var snapshotCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.RedisPrefix,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, using memory cache: %v", err)
			snapshotCache = cache.NewMemoryCache(0)
		} else {
			snapshotCache = redisCache
		}
	default:
		snapshotCache = cache.NewMemoryCache(0)
	}
	defer snapshotCache.Close()

	clientOpts := []gw2.Option{
		gw2.WithBaseURL(cfg.GW2.BaseURL),
		gw2.WithTimeout(cfg.GW2.Timeout),
	}
	collectorCfg := collector.Config{
		Concurrency: cfg.GW2.Concurrency,
		ChunkSize:   cfg.GW2.ChunkSize,
	}

	snapshotService := service.NewSnapshotService(repo, snapshotCache, cfg.Cache.TTL,
		func(apiKey string) service.Collector {
			return collector.New(gw2.NewClient(apiKey, clientOpts...), collectorCfg)
		})

	validationService := service.NewValidationService(
		func(apiKey string) service.Verifier {
			return gw2.NewClient(apiKey, clientOpts...)
		},
		snapshotCache, cfg.Validation.CacheTTL)

	var cleanup *service.CleanupScheduler
	if cfg.Cleanup.Enabled {
		cleanup = service.NewCleanupScheduler(repo, service.CleanupConfig{
			StaleThreshold: cfg.Cleanup.Threshold,
			Interval:       cfg.Cleanup.Interval,
		})
		cleanup.Start()
		defer cleanup.Stop()
	}

	healthHandler := handler.New(cfg.App.Name, cfg.App.Version, handler.ReadinessCheck{
		Name: "snapshot_store",
		Check: func(ctx context.Context) error {
			_, err := repo.GetStats(ctx)
			return err
		},
	})

	r := router.New(router.Config{
		Handler:         healthHandler,
		SnapshotHandler: handler.NewSnapshotHandler(snapshotService),
		ValidateHandler: handler.NewValidateHandler(validationService),
		AdminHandler:    handler.NewAdminHandler(snapshotService, cleanup, cfg.SnapshotDB.Type, cfg.Cache.Type),
		LoginKey:        cfg.App.LoginKey,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}

func openSnapshotRepository(cfg *config.SnapshotDBConfig) (repository.SnapshotRepository, error) {
	switch cfg.Type {
	case "mongodb", "mongo":
		repo, err := repository.NewMongoDBSnapshotRepository(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		log.Println("MongoDB snapshot repository initialized")
		return repo, nil
	case "postgres", "postgresql":
		repo, err := repository.NewPostgresSnapshotRepository(cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		log.Println("PostgreSQL snapshot repository initialized")
		return repo, nil
	case "mysql":
		repo, err := repository.NewMySQLSnapshotRepository(cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		log.Println("MySQL snapshot repository initialized")
		return repo, nil
	default:
		repo, err := repository.NewSQLiteSnapshotRepository(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Println("SQLite snapshot repository initialized")
		return repo, nil
	}
}
