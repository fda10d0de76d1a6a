package scheduler

import (
	"context"
	"testing"
	"time"

	auction "auction-engine/internal/auctionService"
	model "auction-engine/internal/models"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"

	"github.com/stretchr/testify/require"
)

func newService() (*repository.MemoryStore, *auction.AuctionService) {
	store := repository.NewMemoryStore()
	svc := auction.NewAuctionService(store, registry.New(store))
	return store, svc
}

func TestSweep_ActivatesScheduledLots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, svc := newService()
	sched := New(DefaultConfig(), svc)

	due := now.Add(-time.Minute)
	later := now.Add(time.Hour)

	scheduled, err := svc.Registry().Create(ctx, model.Lot{
		Title: "scheduled", StartingPrice: 100, MinStep: 10, DurationMinutes: 60,
		ScheduledStart: &due,
	})
	require.NoError(t, err)
	future, err := svc.Registry().Create(ctx, model.Lot{
		Title: "future", StartingPrice: 100, MinStep: 10, DurationMinutes: 60,
		ScheduledStart: &later,
	})
	require.NoError(t, err)
	manual, err := svc.Registry().Create(ctx, model.Lot{
		Title: "manual", StartingPrice: 100, MinStep: 10, DurationMinutes: 60,
	})
	require.NoError(t, err)

	sched.Sweep(ctx, now)

	lot, err := store.GetLot(ctx, scheduled.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotActive, lot.Status)
	require.NotNil(t, lot.StartedAt)
	require.Equal(t, now, *lot.StartedAt)
	require.Equal(t, now.Add(60*time.Minute), *lot.EndsAt)

	// not yet due and unscheduled lots stay pending
	lot, err = store.GetLot(ctx, future.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotPending, lot.Status)
	lot, err = store.GetLot(ctx, manual.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotPending, lot.Status)

	// a second sweep at the same instant changes nothing
	sched.Sweep(ctx, now)
	lot, err = store.GetLot(ctx, scheduled.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotActive, lot.Status)
	require.Equal(t, now, *lot.StartedAt)
}

func TestSweep_ExpiresDueLots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, svc := newService()
	sched := New(DefaultConfig(), svc)

	lot, err := svc.Registry().Create(ctx, model.Lot{
		Title: "short", StartingPrice: 100, MinStep: 10, DurationMinutes: 1,
	})
	require.NoError(t, err)
	activated, err := svc.Registry().Activate(ctx, lot.ID, now)
	require.NoError(t, err)

	_, err = store.UpsertUser(ctx, model.User{ID: 1, Username: "alice", Balance: 10000})
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, lot.ID, 1, 110, now)
	require.NoError(t, err)

	// before ends_at nothing expires
	sched.Sweep(ctx, activated.EndsAt.Add(-time.Second))
	got, err := store.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotActive, got.Status)

	sched.Sweep(ctx, *activated.EndsAt)
	got, err = store.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotEnded, got.Status)
	require.NotNil(t, got.WinnerID)
	require.Equal(t, int64(1), *got.WinnerID)
}

func TestSweep_ExtensionDefeatsStaleExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, svc := newService()
	sched := New(DefaultConfig(), svc)

	lot, err := svc.Registry().Create(ctx, model.Lot{
		Title: "sniped", StartingPrice: 100, MinStep: 10, DurationMinutes: 1,
	})
	require.NoError(t, err)
	activated, err := svc.Registry().Activate(ctx, lot.ID, now)
	require.NoError(t, err)
	_, err = store.UpsertUser(ctx, model.User{ID: 1, Username: "alice", Balance: 10000})
	require.NoError(t, err)

	// a snipe bid pushes ends_at past the old deadline
	_, err = svc.PlaceBid(ctx, lot.ID, 1, 110, activated.EndsAt.Add(-2*time.Second))
	require.NoError(t, err)

	// a sweep still running against the old deadline must not end the lot
	sched.Sweep(ctx, *activated.EndsAt)
	got, err := store.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotActive, got.Status)

	sched.Sweep(ctx, activated.EndsAt.Add(auction.SnipeExtension))
	got, err = store.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotEnded, got.Status)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	_, svc := newService()
	sched := New(Config{Interval: 10 * time.Millisecond}, svc)

	sched.Start(context.Background())

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sched.Stop(stopCtx))
}

func TestNew_DefaultsInterval(t *testing.T) {
	t.Parallel()

	_, svc := newService()
	sched := New(Config{}, svc)
	require.Equal(t, time.Second, sched.cfg.Interval)
}
