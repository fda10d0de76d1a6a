package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

// AuctionStore defines the durable storage interface for users, lots and
// bids. Mutators are atomic with respect to a single row; cross-entity
// atomicity is provided only by AdmitBid.
type AuctionStore interface {
	// Users. UpsertUser replaces every field with the hub's view; the
	// engine itself only ever mutates balance, through AdmitBid.
	UpsertUser(ctx context.Context, user model.User) (model.User, error)
	GetUser(ctx context.Context, userID int64) (model.User, error)

	// Lots.
	CreateLot(ctx context.Context, lot model.Lot) (model.Lot, error)
	GetLot(ctx context.Context, lotID int64) (model.Lot, error)
	ListLots(ctx context.Context) ([]model.Lot, error)
	ListLotsByStatus(ctx context.Context, status model.LotStatus) ([]model.Lot, error)
	UpdateLot(ctx context.Context, lot model.Lot) (model.Lot, error)
	DeleteLot(ctx context.Context, lotID int64) error

	// Bids. AdmitBid appends the bid, raises the lot's current price to
	// the bid amount and debits the bidder's balance in one atomic step:
	// either all three happen or none do.
	AdmitBid(ctx context.Context, bid model.Bid) (model.Bid, error)
	GetBid(ctx context.Context, bidID int64) (model.Bid, error)
	ListBidsByLot(ctx context.Context, lotID int64) ([]model.Bid, error)
	HighestBid(ctx context.Context, lotID int64) (model.Bid, error)
	DeleteBid(ctx context.Context, bidID int64) error
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[int64]model.User
	lots      map[int64]model.Lot
	bids      map[int64][]model.Bid // key: lotID -> value: bids in admission order
	nextLotID int64
	nextBidID int64
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]model.User),
		lots:  make(map[int64]model.Lot),
		bids:  make(map[int64][]model.Bid),
	}
}

// UpsertUser creates or replaces the stored record for a hub user.
func (s *MemoryStore) UpsertUser(ctx context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = user
	return user, nil
}

// GetUser returns the stored record for a user.
func (s *MemoryStore) GetUser(ctx context.Context, userID int64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %d: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// CreateLot stores a new lot and assigns its id.
func (s *MemoryStore) CreateLot(ctx context.Context, lot model.Lot) (model.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLotID++
	lot.ID = s.nextLotID
	s.lots[lot.ID] = lot
	return lot, nil
}

// GetLot returns a single lot by id.
func (s *MemoryStore) GetLot(ctx context.Context, lotID int64) (model.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lot, ok := s.lots[lotID]
	if !ok {
		return model.Lot{}, fmt.Errorf("get lot %d: %w", lotID, auctionerrors.ErrLotNotFound)
	}
	return lot, nil
}

// ListLots returns all lots, newest first.
func (s *MemoryStore) ListLots(ctx context.Context) ([]model.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lots := make([]model.Lot, 0, len(s.lots))
	for _, lot := range s.lots {
		lots = append(lots, lot)
	}
	sortLots(lots)
	return lots, nil
}

// ListLotsByStatus returns all lots in the given lifecycle state, newest first.
func (s *MemoryStore) ListLotsByStatus(ctx context.Context, status model.LotStatus) ([]model.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lots := make([]model.Lot, 0)
	for _, lot := range s.lots {
		if lot.Status == status {
			lots = append(lots, lot)
		}
	}
	sortLots(lots)
	return lots, nil
}

// UpdateLot replaces the stored row for an existing lot.
func (s *MemoryStore) UpdateLot(ctx context.Context, lot model.Lot) (model.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lots[lot.ID]; !ok {
		return model.Lot{}, fmt.Errorf("update lot %d: %w", lot.ID, auctionerrors.ErrLotNotFound)
	}
	s.lots[lot.ID] = lot
	return lot, nil
}

// DeleteLot removes a lot and cascades its bids.
func (s *MemoryStore) DeleteLot(ctx context.Context, lotID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lots[lotID]; !ok {
		return fmt.Errorf("delete lot %d: %w", lotID, auctionerrors.ErrLotNotFound)
	}
	delete(s.lots, lotID)
	delete(s.bids, lotID)
	return nil
}

// AdmitBid records a bid, raises the lot price and debits the bidder.
func (s *MemoryStore) AdmitBid(ctx context.Context, bid model.Bid) (model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[bid.LotID]
	if !ok {
		return model.Bid{}, fmt.Errorf("admit bid for lot %d: %w", bid.LotID, auctionerrors.ErrLotNotFound)
	}
	user, ok := s.users[bid.UserID]
	if !ok {
		return model.Bid{}, fmt.Errorf("admit bid by user %d: %w", bid.UserID, auctionerrors.ErrUserNotFound)
	}
	if user.Balance < bid.Amount {
		return model.Bid{}, fmt.Errorf("admit bid of %.2f by user %d: %w", bid.Amount, bid.UserID, auctionerrors.ErrInsufficientFunds)
	}

	s.nextBidID++
	bid.ID = s.nextBidID
	s.bids[bid.LotID] = append(s.bids[bid.LotID], bid)

	amount := bid.Amount
	lot.CurrentPrice = &amount
	s.lots[lot.ID] = lot

	user.Balance -= bid.Amount
	s.users[user.ID] = user

	return bid, nil
}

// GetBid returns a single bid by id.
func (s *MemoryStore) GetBid(ctx context.Context, bidID int64) (model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, bids := range s.bids {
		for _, b := range bids {
			if b.ID == bidID {
				return b, nil
			}
		}
	}
	return model.Bid{}, fmt.Errorf("get bid %d: %w", bidID, auctionerrors.ErrBidNotFound)
}

// ListBidsByLot returns all bids for a lot, newest first.
func (s *MemoryStore) ListBidsByLot(ctx context.Context, lotID int64) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids := append([]model.Bid(nil), s.bids[lotID]...)
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
	return bids, nil
}

// HighestBid returns the leading bid for a lot: highest amount, ties
// broken by earliest admission time.
func (s *MemoryStore) HighestBid(ctx context.Context, lotID int64) (model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids := s.bids[lotID]
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("highest bid for lot %d: %w", lotID, auctionerrors.ErrNoBids)
	}

	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning, nil
}

// DeleteBid removes a single bid. Price recomputation on the owning lot
// is the caller's responsibility.
func (s *MemoryStore) DeleteBid(ctx context.Context, bidID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for lotID, bids := range s.bids {
		for i, b := range bids {
			if b.ID == bidID {
				s.bids[lotID] = append(bids[:i:i], bids[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("delete bid %d: %w", bidID, auctionerrors.ErrBidNotFound)
}

func sortLots(lots []model.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if lots[i].CreatedAt.Equal(lots[j].CreatedAt) {
			return lots[i].ID > lots[j].ID
		}
		return lots[i].CreatedAt.After(lots[j].CreatedAt)
	})
}
