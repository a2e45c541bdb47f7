package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BowmanStephen/dadpack-backend/internal/api"
	"github.com/BowmanStephen/dadpack-backend/internal/api/handlers"
	"github.com/BowmanStephen/dadpack-backend/internal/catalog"
	"github.com/BowmanStephen/dadpack-backend/internal/collection"
	"github.com/BowmanStephen/dadpack-backend/internal/config"
	"github.com/BowmanStephen/dadpack-backend/internal/database"
	"github.com/BowmanStephen/dadpack-backend/internal/events"
	"github.com/BowmanStephen/dadpack-backend/internal/packgen"
	"github.com/BowmanStephen/dadpack-backend/internal/rng"
	"github.com/BowmanStephen/dadpack-backend/internal/storage"
	"github.com/BowmanStephen/dadpack-backend/internal/workers"
)

func main() {
	cfg := config.Load()

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("Catalog loaded: %d cards", cat.Size())

	packCfg := packgen.Default()
	if cfg.PackConfigPath != "" {
		packCfg, err = packgen.LoadFile(cfg.PackConfigPath)
		if err != nil {
			log.Fatalf("Failed to load pack config: %v", err)
		}
	}
	if err := packCfg.Validate(); err != nil {
		log.Fatalf("Invalid pack config: %v", err)
	}

	driver, err := buildDriver(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage driver: %v", err)
	}
	persist := storage.NewStore(driver)

	store := collection.NewStore()
	ctx := context.Background()
	col, pity, ok, err := persist.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load persisted collection: %v", err)
	}
	if ok {
		store.Hydrate(col, pity)
		log.Printf("Collection loaded: %d packs, %d unique cards",
			store.Stats().LivePacks, store.Stats().UniqueCards)
	} else {
		log.Println("No persisted collection found, starting fresh")
	}

	engine := rng.NewRandom()
	if cfg.RNGSeedSet {
		engine = rng.New(cfg.RNGSeed)
	}

	bonuses := events.NewStaticProvider()
	gen := packgen.New(packCfg, cat, bonuses, engine)

	h := api.Handlers{
		Packs:      handlers.NewPackHandler(gen, store, persist),
		Collection: handlers.NewCollectionHandler(store, persist),
		Admin:      handlers.NewAdminHandler(store, persist, bonuses),
	}
	router := api.NewRouter(cfg, h)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	go workers.NewMetricsWorker(store, persist, cfg.MetricsInterval).Start(workerCtx)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	stopWorkers()
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// buildDriver selects the storage backend from config.
func buildDriver(cfg *config.Config) (storage.Driver, error) {
	switch cfg.StorageDriver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, err
		}
		log.Printf("Using Redis storage driver at %s", cfg.RedisAddr)
		return storage.NewRedisDriver(client, "dadpack", cfg.StorageCapacity), nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, err
		}
		if err := database.Initialize(cfg.DBPath); err != nil {
			return nil, err
		}
		log.Printf("Using SQLite storage driver at %s", cfg.DBPath)
		return storage.NewSQLiteDriver(database.GetDB(), cfg.StorageCapacity), nil
	}
}
