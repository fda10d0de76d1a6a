package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/config"
	"auction-engine/internal/hub"
	"auction-engine/internal/identity"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"
	"auction-engine/internal/scheduler"
	"auction-engine/internal/server"
	"auction-engine/utils"
)

func main() {
	cfg := config.Load()
	utils.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"error": err.Error()})
	}
	defer cleanup()

	gateway := identity.NewClient(cfg.HubAPIURL)

	reg := registry.New(store)
	svc := auction.NewAuctionService(store, reg)

	h := hub.New(svc, store, gateway, cfg.ResyncInterval)
	svc.SetBroadcaster(h)
	h.Start(ctx)

	sched := scheduler.New(scheduler.Config{Interval: cfg.SweepInterval}, svc)
	sched.Start(ctx)

	router := server.SetupRouter(svc, h, gateway, store)

	fmt.Printf("Starting auction server on %s...\n", cfg.Addr)
	go func() {
		if err := router.Run(cfg.Addr); err != nil {
			utils.Error("server stopped", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		utils.Warn("scheduler shutdown timed out", map[string]any{"error": err.Error()})
	}
	if err := h.Stop(shutdownCtx); err != nil {
		utils.Warn("hub shutdown timed out", map[string]any{"error": err.Error()})
	}
}

// openStore selects the Postgres store when DATABASE_URL is set and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg config.Config) (repository.AuctionStore, func(), error) {
	if cfg.DatabaseURL == "" {
		utils.Info("using in-memory store", nil)
		return repository.NewMemoryStore(), func() {}, nil
	}

	pg, err := repository.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	utils.Info("connected to postgres store", nil)
	return pg, pg.Close, nil
}
