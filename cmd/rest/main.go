package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"ai-recommendation-be/internal/bootstrap"
	"ai-recommendation-be/internal/config"
	"ai-recommendation-be/internal/metrics"
	"ai-recommendation-be/internal/server"
	"ai-recommendation-be/internal/tracer"
	"ai-recommendation-be/pkg/database"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	shutdownTracer := tracer.InitTracer(cfg.App.ServiceName)
	defer func() { _ = shutdownTracer(context.Background()) }()

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(cfg.Database.Connection, database.PoolConfig{
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: time.Hour,
		Verbose:         cfg.Database.Verbose,
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start embedding consumer: %v", err)
	}
	if err := container.SubscribeCatalogEvents(ctx); err != nil {
		log.Printf("[WARN] Catalog events disabled: %v", err)
	}

	srv := server.New(cfg, container)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		reportPoolStats(gctx, gormDB)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server stopped with error: %v", err)
	}

	container.Close()
	log.Println("Bye")
}

func reportPoolStats(ctx context.Context, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolStats(sqlDB.Stats())
		}
	}
}
