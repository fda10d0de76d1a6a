package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
)

// Registry is the authoritative mutation surface for lot lifecycle state.
// Every mutating operation on a lot id runs inside that lot's exclusive
// section, so bid admission, activation, expiry, extension and deletion
// never interleave for the same lot.
type Registry struct {
	store repository.AuctionStore

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a registry over the given store.
func New(store repository.AuctionStore) *Registry {
	return &Registry{
		store: store,
		locks: make(map[int64]*sync.Mutex),
	}
}

func (r *Registry) lockFor(lotID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[lotID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[lotID] = lock
	}
	return lock
}

// WithLot runs fn inside the lot's exclusive section. The LotTx handed to
// fn is only valid for the duration of the call.
func (r *Registry) WithLot(ctx context.Context, lotID int64, fn func(tx *LotTx) error) error {
	lock := r.lockFor(lotID)
	lock.Lock()
	defer lock.Unlock()

	return fn(&LotTx{ctx: ctx, lotID: lotID, store: r.store})
}

// Create stores a new lot in pending state.
func (r *Registry) Create(ctx context.Context, lot model.Lot) (model.Lot, error) {
	if lot.Title == "" || lot.StartingPrice <= 0 || lot.MinStep <= 0 || lot.DurationMinutes <= 0 {
		return model.Lot{}, fmt.Errorf("registry: %w - title, starting price, min step and duration are required", auctionerrors.ErrInvalidLot)
	}

	lot.Status = model.LotPending
	lot.CurrentPrice = nil
	lot.StartedAt = nil
	lot.EndsAt = nil
	lot.WinnerID = nil
	return r.store.CreateLot(ctx, lot)
}

// Get returns a single lot.
func (r *Registry) Get(ctx context.Context, lotID int64) (model.Lot, error) {
	return r.store.GetLot(ctx, lotID)
}

// ListAll returns every lot.
func (r *Registry) ListAll(ctx context.Context) ([]model.Lot, error) {
	return r.store.ListLots(ctx)
}

// ListByStatus returns every lot in the given lifecycle state.
func (r *Registry) ListByStatus(ctx context.Context, status model.LotStatus) ([]model.Lot, error) {
	return r.store.ListLotsByStatus(ctx, status)
}

// Activate moves a pending lot to active, stamping started_at and ends_at.
func (r *Registry) Activate(ctx context.Context, lotID int64, now time.Time) (model.Lot, error) {
	var activated model.Lot
	err := r.WithLot(ctx, lotID, func(tx *LotTx) error {
		lot, err := tx.Lot()
		if err != nil {
			return err
		}
		if lot.Status != model.LotPending {
			return fmt.Errorf("registry: activate lot %d in state %s: %w", lotID, lot.Status, auctionerrors.ErrInvalidTransition)
		}
		activated, err = tx.activate(lot, now)
		return err
	})
	return activated, err
}

// ActivateIfScheduled activates a pending lot whose scheduled start has
// been reached. Reports false without error when the lot is not due, has
// no schedule, or has already left pending (idempotent under re-entry).
func (r *Registry) ActivateIfScheduled(ctx context.Context, lotID int64, now time.Time) (model.Lot, bool, error) {
	var activated model.Lot
	var done bool
	err := r.WithLot(ctx, lotID, func(tx *LotTx) error {
		lot, err := tx.Lot()
		if err != nil {
			return err
		}
		if lot.Status != model.LotPending || lot.ScheduledStart == nil || now.Before(*lot.ScheduledStart) {
			return nil
		}
		activated, err = tx.activate(lot, now)
		done = err == nil
		return err
	})
	return activated, done, err
}

// End moves an active lot to ended, resolving the winner as the highest
// admitted bid (earliest on tie) or no winner when no bids exist.
func (r *Registry) End(ctx context.Context, lotID int64) (model.Lot, error) {
	var ended model.Lot
	err := r.WithLot(ctx, lotID, func(tx *LotTx) error {
		lot, err := tx.Lot()
		if err != nil {
			return err
		}
		if lot.Status != model.LotActive {
			return fmt.Errorf("registry: end lot %d in state %s: %w", lotID, lot.Status, auctionerrors.ErrInvalidTransition)
		}
		ended, err = tx.end(lot)
		return err
	})
	return ended, err
}

// ExpireIfDue ends an active lot whose ends_at has been reached. The due
// check runs inside the lot's exclusive section, so an anti-snipe
// extension admitted just before cannot be overridden by a stale sweep.
// Reports false without error when the lot is not due or no longer active.
func (r *Registry) ExpireIfDue(ctx context.Context, lotID int64, now time.Time) (model.Lot, bool, error) {
	var ended model.Lot
	var done bool
	err := r.WithLot(ctx, lotID, func(tx *LotTx) error {
		lot, err := tx.Lot()
		if err != nil {
			return err
		}
		if lot.Status != model.LotActive || lot.EndsAt == nil || now.Before(*lot.EndsAt) {
			return nil
		}
		ended, err = tx.end(lot)
		done = err == nil
		return err
	})
	return ended, done, err
}

// Delete hard-removes a lot in any state, cascading its bids.
func (r *Registry) Delete(ctx context.Context, lotID int64) error {
	err := r.WithLot(ctx, lotID, func(tx *LotTx) error {
		return r.store.DeleteLot(ctx, lotID)
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.locks, lotID)
	r.mu.Unlock()
	return nil
}

// LotTx exposes mutations that must run inside a lot's exclusive section.
type LotTx struct {
	ctx   context.Context
	lotID int64
	store repository.AuctionStore
}

// Lot re-reads the lot under the held lock.
func (tx *LotTx) Lot() (model.Lot, error) {
	return tx.store.GetLot(tx.ctx, tx.lotID)
}

// Save replaces the lot row.
func (tx *LotTx) Save(lot model.Lot) (model.Lot, error) {
	return tx.store.UpdateLot(tx.ctx, lot)
}

// Extend pushes ends_at forward by delta. Only legal while active.
func (tx *LotTx) Extend(delta time.Duration) (model.Lot, error) {
	lot, err := tx.Lot()
	if err != nil {
		return model.Lot{}, err
	}
	if lot.Status != model.LotActive || lot.EndsAt == nil {
		return model.Lot{}, fmt.Errorf("registry: extend lot %d in state %s: %w", tx.lotID, lot.Status, auctionerrors.ErrInvalidTransition)
	}
	extended := lot.EndsAt.Add(delta)
	lot.EndsAt = &extended
	return tx.Save(lot)
}

// Admit commits an admitted bid: bid row, price raise and balance debit
// as one store-level atomic step.
func (tx *LotTx) Admit(bid model.Bid) (model.Bid, error) {
	return tx.store.AdmitBid(tx.ctx, bid)
}

// RemoveBid deletes a bid and recomputes the lot's current price as the
// highest remaining amount, or clears it when no bids remain.
func (tx *LotTx) RemoveBid(bidID int64) (model.Lot, error) {
	if err := tx.store.DeleteBid(tx.ctx, bidID); err != nil {
		return model.Lot{}, err
	}

	lot, err := tx.Lot()
	if err != nil {
		return model.Lot{}, err
	}

	highest, err := tx.store.HighestBid(tx.ctx, tx.lotID)
	switch {
	case err == nil:
		amount := highest.Amount
		lot.CurrentPrice = &amount
	case errors.Is(err, auctionerrors.ErrNoBids):
		lot.CurrentPrice = nil
	default:
		return model.Lot{}, err
	}
	return tx.Save(lot)
}

func (tx *LotTx) activate(lot model.Lot, now time.Time) (model.Lot, error) {
	started := now.UTC()
	ends := started.Add(lot.Duration())
	lot.Status = model.LotActive
	lot.StartedAt = &started
	lot.EndsAt = &ends
	return tx.Save(lot)
}

func (tx *LotTx) end(lot model.Lot) (model.Lot, error) {
	highest, err := tx.store.HighestBid(tx.ctx, lot.ID)
	switch {
	case err == nil:
		winnerID := highest.UserID
		lot.WinnerID = &winnerID
	case errors.Is(err, auctionerrors.ErrNoBids):
		lot.WinnerID = nil
	default:
		return model.Lot{}, err
	}
	lot.Status = model.LotEnded
	return tx.Save(lot)
}
