package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/pinball/internal/api"
	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/database"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/journal"
	"github.com/playmatatu/pinball/internal/migrations"
	"github.com/playmatatu/pinball/internal/redis"
	"github.com/playmatatu/pinball/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layout, err := game.LoadLayout(cfg.TableLayout)
	if err != nil {
		log.Fatalf("Failed to load table layout: %v", err)
	}
	log.Printf("[TABLE] Using layout %q", layout.Name)

	opts := game.ManagerOptions{
		Layout:          layout,
		Tick:            time.Duration(cfg.TickMillis) * time.Millisecond,
		SnapshotEvery:   cfg.SnapshotEveryFrames,
		CheckpointEvery: time.Duration(cfg.CheckpointSeconds) * time.Second,
		MaxTables:       cfg.MaxTables,
		Events:          ws.GameHub,
		OnSnapshot:      ws.GameHub.BroadcastSnapshot,
	}

	store, closeDB := openJournal(cfg)
	defer closeDB()
	if store != nil {
		opts.Journal = store
	}

	tables, closeRedis := openRedis(ctx, cfg)
	defer closeRedis()
	if tables != nil {
		opts.Checkpoints = tables
		opts.Events = tables
	}

	m := game.NewTableManager(opts)
	defer m.CloseAll()

	game.StartIdleWorker(ctx, m, cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, m, tables, store, cfg)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Printf("Starting pinball server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// openJournal connects the Postgres input journal. Any failure is logged and
// the server runs without a journal.
func openJournal(cfg *config.Config) (*journal.Store, func()) {
	if cfg.DatabaseURL == "" {
		log.Println("[DB] DATABASE_URL not set; input journal disabled")
		return nil, func() {}
	}
	if cfg.MigrateOnStart {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Printf("[DB] Migrations failed, input journal disabled: %v", err)
			return nil, func() {}
		}
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Printf("[DB] Failed to connect to database, input journal disabled: %v", err)
		return nil, func() {}
	}
	return journal.New(db), func() { db.Close() }
}

// openRedis connects the Redis checkpoint store and starts relaying table
// events from other instances. Any failure is logged and the server keeps
// checkpoints off and events in-process.
func openRedis(ctx context.Context, cfg *config.Config) (*redis.TableStore, func()) {
	if cfg.RedisURL == "" {
		log.Println("[REDIS] REDIS_URL not set; checkpoints disabled, events stay in-process")
		return nil, func() {}
	}
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Printf("[REDIS] Failed to connect to Redis, checkpoints disabled: %v", err)
		return nil, func() {}
	}
	ws.StartTableEventSubscriber(ctx, rdb)
	return redis.NewTableStore(rdb, time.Hour), func() { rdb.Close() }
}
