package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/stretchr/testify/require"
)

func pendingLot() model.Lot {
	return model.Lot{
		Title:           "vintage lens",
		StartingPrice:   100,
		MinStep:         10,
		DurationMinutes: 60,
		CreatorID:       1,
	}
}

func TestRegistry_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*model.Lot)
		wantErr error
	}{
		{name: "valid", mutate: func(l *model.Lot) {}},
		{name: "missing_title", mutate: func(l *model.Lot) { l.Title = "" }, wantErr: auctionerrors.ErrInvalidLot},
		{name: "zero_starting_price", mutate: func(l *model.Lot) { l.StartingPrice = 0 }, wantErr: auctionerrors.ErrInvalidLot},
		{name: "negative_min_step", mutate: func(l *model.Lot) { l.MinStep = -1 }, wantErr: auctionerrors.ErrInvalidLot},
		{name: "zero_duration", mutate: func(l *model.Lot) { l.DurationMinutes = 0 }, wantErr: auctionerrors.ErrInvalidLot},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			reg := New(repository.NewMemoryStore())
			lot := pendingLot()
			tc.mutate(&lot)

			created, err := reg.Create(ctx, lot)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, model.LotPending, created.Status)
			require.Nil(t, created.CurrentPrice)
			require.Nil(t, created.StartedAt)
			require.Nil(t, created.EndsAt)
		})
	}
}

func TestRegistry_Create_ForcesCleanState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := New(repository.NewMemoryStore())

	// runtime fields smuggled into the input must be discarded
	price := 999.0
	now := time.Now()
	winner := int64(5)
	lot := pendingLot()
	lot.Status = model.LotActive
	lot.CurrentPrice = &price
	lot.StartedAt = &now
	lot.EndsAt = &now
	lot.WinnerID = &winner

	created, err := reg.Create(ctx, lot)
	require.NoError(t, err)
	require.Equal(t, model.LotPending, created.Status)
	require.Nil(t, created.CurrentPrice)
	require.Nil(t, created.WinnerID)
}

func TestRegistry_Activate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	reg := New(repository.NewMemoryStore())
	created, err := reg.Create(ctx, pendingLot())
	require.NoError(t, err)

	activated, err := reg.Activate(ctx, created.ID, now)
	require.NoError(t, err)
	require.Equal(t, model.LotActive, activated.Status)
	require.NotNil(t, activated.StartedAt)
	require.Equal(t, now, *activated.StartedAt)
	require.NotNil(t, activated.EndsAt)
	require.Equal(t, now.Add(60*time.Minute), *activated.EndsAt)

	// double activation is an invalid transition
	_, err = reg.Activate(ctx, created.ID, now)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)

	_, err = reg.Activate(ctx, 99, now)
	require.ErrorIs(t, err, auctionerrors.ErrLotNotFound)
}

func TestRegistry_ActivateIfScheduled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		scheduled *time.Time
		status    model.LotStatus
		wantDone  bool
	}{
		{name: "due", scheduled: timePtr(now.Add(-time.Minute)), status: model.LotPending, wantDone: true},
		{name: "due_exactly_now", scheduled: timePtr(now), status: model.LotPending, wantDone: true},
		{name: "not_yet_due", scheduled: timePtr(now.Add(time.Minute)), status: model.LotPending, wantDone: false},
		{name: "no_schedule", scheduled: nil, status: model.LotPending, wantDone: false},
		{name: "already_active", scheduled: timePtr(now.Add(-time.Minute)), status: model.LotActive, wantDone: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := repository.NewMemoryStore()
			reg := New(store)

			created, err := reg.Create(ctx, pendingLot())
			require.NoError(t, err)
			created.ScheduledStart = tc.scheduled
			created.Status = tc.status
			_, err = store.UpdateLot(ctx, created)
			require.NoError(t, err)

			lot, done, err := reg.ActivateIfScheduled(ctx, created.ID, now)
			require.NoError(t, err)
			require.Equal(t, tc.wantDone, done)
			if tc.wantDone {
				require.Equal(t, model.LotActive, lot.Status)
			}
		})
	}
}

func TestRegistry_End(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()
	store := repository.NewMemoryStore()
	reg := New(store)

	created, err := reg.Create(ctx, pendingLot())
	require.NoError(t, err)

	// ending a pending lot is illegal
	_, err = reg.End(ctx, created.ID)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)

	_, err = reg.Activate(ctx, created.ID, now)
	require.NoError(t, err)

	_, err = store.UpsertUser(ctx, model.User{ID: 1, Username: "alice", Balance: 10000})
	require.NoError(t, err)
	_, err = store.UpsertUser(ctx, model.User{ID: 2, Username: "bob", Balance: 10000})
	require.NoError(t, err)
	_, err = store.AdmitBid(ctx, model.Bid{LotID: created.ID, UserID: 1, Amount: 120, CreatedAt: now})
	require.NoError(t, err)
	_, err = store.AdmitBid(ctx, model.Bid{LotID: created.ID, UserID: 2, Amount: 150, CreatedAt: now.Add(time.Second)})
	require.NoError(t, err)

	ended, err := reg.End(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotEnded, ended.Status)
	require.NotNil(t, ended.WinnerID)
	require.Equal(t, int64(2), *ended.WinnerID)

	// ending twice is illegal
	_, err = reg.End(ctx, created.ID)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)
}

func TestRegistry_End_NoBidsNoWinner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := New(repository.NewMemoryStore())

	created, err := reg.Create(ctx, pendingLot())
	require.NoError(t, err)
	_, err = reg.Activate(ctx, created.ID, time.Now())
	require.NoError(t, err)

	ended, err := reg.End(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotEnded, ended.Status)
	require.Nil(t, ended.WinnerID)
}

func TestRegistry_ExpireIfDue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := repository.NewMemoryStore()
	reg := New(store)

	created, err := reg.Create(ctx, pendingLot())
	require.NoError(t, err)
	activated, err := reg.Activate(ctx, created.ID, now)
	require.NoError(t, err)

	// before ends_at: no-op
	_, done, err := reg.ExpireIfDue(ctx, created.ID, activated.EndsAt.Add(-time.Second))
	require.NoError(t, err)
	require.False(t, done)

	lot, err := store.GetLot(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, model.LotActive, lot.Status)

	// at ends_at: expires
	ended, done, err := reg.ExpireIfDue(ctx, created.ID, *activated.EndsAt)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, model.LotEnded, ended.Status)

	// idempotent on re-entry
	_, done, err = reg.ExpireIfDue(ctx, created.ID, activated.EndsAt.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, done)
}

func TestRegistry_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := New(repository.NewMemoryStore())

	created, err := reg.Create(ctx, pendingLot())
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, created.ID))
	require.ErrorIs(t, reg.Delete(ctx, created.ID), auctionerrors.ErrLotNotFound)
}

func TestLotTx_Extend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := repository.NewMemoryStore()
	reg := New(store)

	created, err := reg.Create(ctx, pendingLot())
	require.NoError(t, err)

	// extending a pending lot is illegal
	err = reg.WithLot(ctx, created.ID, func(tx *LotTx) error {
		_, err := tx.Extend(10 * time.Second)
		return err
	})
	require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)

	activated, err := reg.Activate(ctx, created.ID, now)
	require.NoError(t, err)
	wantEnds := activated.EndsAt.Add(10 * time.Second)

	err = reg.WithLot(ctx, created.ID, func(tx *LotTx) error {
		extended, err := tx.Extend(10 * time.Second)
		if err != nil {
			return err
		}
		require.Equal(t, wantEnds, *extended.EndsAt)
		return nil
	})
	require.NoError(t, err)
}

func TestLotTx_RemoveBid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()
	store := repository.NewMemoryStore()
	reg := New(store)

	created, err := reg.Create(ctx, pendingLot())
	require.NoError(t, err)
	_, err = reg.Activate(ctx, created.ID, now)
	require.NoError(t, err)

	_, err = store.UpsertUser(ctx, model.User{ID: 1, Username: "alice", Balance: 10000})
	require.NoError(t, err)
	first, err := store.AdmitBid(ctx, model.Bid{LotID: created.ID, UserID: 1, Amount: 120, CreatedAt: now})
	require.NoError(t, err)
	second, err := store.AdmitBid(ctx, model.Bid{LotID: created.ID, UserID: 1, Amount: 150, CreatedAt: now.Add(time.Second)})
	require.NoError(t, err)

	// removing the leading bid falls back to the previous one
	err = reg.WithLot(ctx, created.ID, func(tx *LotTx) error {
		lot, err := tx.RemoveBid(second.ID)
		if err != nil {
			return err
		}
		require.NotNil(t, lot.CurrentPrice)
		require.Equal(t, 120.0, *lot.CurrentPrice)
		return nil
	})
	require.NoError(t, err)

	// removing the sole remaining bid clears the price entirely
	err = reg.WithLot(ctx, created.ID, func(tx *LotTx) error {
		lot, err := tx.RemoveBid(first.ID)
		if err != nil {
			return err
		}
		require.Nil(t, lot.CurrentPrice)
		return nil
	})
	require.NoError(t, err)
}

func TestRegistry_WithLotSerializes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := New(repository.NewMemoryStore())

	created, err := reg.Create(ctx, pendingLot())
	require.NoError(t, err)

	var inSection int32
	var wg sync.WaitGroup
	const n = 20
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = reg.WithLot(ctx, created.ID, func(tx *LotTx) error {
				inSection++
				require.Equal(t, int32(1), inSection)
				time.Sleep(time.Millisecond)
				inSection--
				return nil
			})
		}()
	}
	wg.Wait()
}

func timePtr(t time.Time) *time.Time { return &t }
