package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// Anti-snipe window and extension. A bid landing while less than
// SnipeWindow remains pushes ends_at forward by SnipeExtension; there is
// no cap on how often this re-triggers.
const (
	SnipeWindow    = 10 * time.Second
	SnipeExtension = 10 * time.Second
)

// Broadcaster delivers events to connected parties. Publish scopes
// delivery by the lot's VIP eligibility rule; PublishGlobal delivers to
// every connected party.
type Broadcaster interface {
	Publish(event string, lot model.Lot, data any)
	PublishGlobal(event string, data any)
}

// AuctionService implements bid arbitration and the administrative
// operations on lots and bids.
type AuctionService struct {
	store       repository.AuctionStore
	registry    *registry.Registry
	broadcaster Broadcaster
}

// NewAuctionService creates a new AuctionService instance. The
// broadcaster is attached separately since the hub needs the service too.
func NewAuctionService(store repository.AuctionStore, reg *registry.Registry) *AuctionService {
	return &AuctionService{
		store:    store,
		registry: reg,
	}
}

// SetBroadcaster attaches the event fan-out. Must be called before the
// service starts receiving traffic.
func (s *AuctionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Registry exposes the lot registry for the scheduler.
func (s *AuctionService) Registry() *registry.Registry {
	return s.registry
}

// PlaceBid validates and admits a single bid against a single lot. The
// whole validate-then-commit pass runs inside the lot's exclusive
// section; on any failure no state is mutated.
func (s *AuctionService) PlaceBid(ctx context.Context, lotID, userID int64, amount float64, now time.Time) (model.Bid, error) {
	var admitted model.Bid

	err := s.registry.WithLot(ctx, lotID, func(tx *registry.LotTx) error {
		lot, err := tx.Lot()
		if err != nil {
			if errors.Is(err, auctionerrors.ErrLotNotFound) {
				return auctionerrors.Reject(auctionerrors.ErrLotUnavailable, "lot not found")
			}
			return fmt.Errorf("service: failed to load lot %d: %w", lotID, err)
		}
		if lot.Status != model.LotActive {
			return auctionerrors.Reject(auctionerrors.ErrLotUnavailable, "lot is not active")
		}

		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("service: failed to load user %d: %w", userID, err)
		}

		if lot.VIPOnly && !user.IsVIP() {
			return auctionerrors.Reject(auctionerrors.ErrNotEligible, "this lot is restricted to VIP users")
		}

		minBid := lot.EffectivePrice() + lot.MinStep
		if amount < minBid {
			return auctionerrors.Reject(auctionerrors.ErrBidTooLow,
				fmt.Sprintf("minimum bid is %.2f", minBid))
		}

		// An all-in bid equal to the remaining balance is always legal
		// as long as it still meets the minimum.
		admittedAmount := amount
		if user.Balance < amount {
			if user.Balance < minBid {
				return auctionerrors.Reject(auctionerrors.ErrInsufficientFunds,
					fmt.Sprintf("you have %.2f, minimum bid is %.2f", user.Balance, minBid))
			}
			admittedAmount = user.Balance
			utils.Info("bid auto-adjusted to full balance", map[string]any{
				"lot_id":    lotID,
				"user_id":   userID,
				"requested": amount,
				"admitted":  admittedAmount,
			})
		}

		if lot.EndsAt != nil {
			remaining := lot.EndsAt.Sub(now)
			if remaining > 0 && remaining <= SnipeWindow {
				extended, err := tx.Extend(SnipeExtension)
				if err != nil {
					return fmt.Errorf("service: failed to extend lot %d: %w", lotID, err)
				}
				lot = extended
				s.emit(EventLotExtended, lot, LotExtendedPayload{
					LotID:     lot.ID,
					NewEndsAt: formatTime(*lot.EndsAt),
				})
			}
		}

		admitted, err = tx.Admit(model.Bid{
			LotID:     lotID,
			UserID:    userID,
			Amount:    admittedAmount,
			CreatedAt: now.UTC(),
		})
		if err != nil {
			return fmt.Errorf("service: failed to admit bid for lot %d by user %d: %w", lotID, userID, err)
		}

		amountCopy := admitted.Amount
		lot.CurrentPrice = &amountCopy

		bidView := s.projectBid(admitted, user)
		s.emit(EventBidPlaced, lot, BidPlacedPayload{LotID: lot.ID, Bid: bidView})
		s.publishLot(ctx, EventLotUpdated, lot)
		return nil
	})
	if err != nil {
		return model.Bid{}, err
	}
	return admitted, nil
}

// DeleteBid removes a bid by id and recomputes the owning lot's current
// price as the highest remaining amount. Requires administrator privilege.
func (s *AuctionService) DeleteBid(ctx context.Context, actor model.User, bidID, lotID int64) error {
	if !actor.IsAdmin {
		return fmt.Errorf("service: user %d deleting bid %d: %w", actor.ID, bidID, auctionerrors.ErrForbidden)
	}

	return s.registry.WithLot(ctx, lotID, func(tx *registry.LotTx) error {
		bid, err := s.store.GetBid(ctx, bidID)
		if err != nil {
			return fmt.Errorf("service: failed to load bid %d: %w", bidID, err)
		}
		if bid.LotID != lotID {
			return fmt.Errorf("service: bid %d does not belong to lot %d: %w", bidID, lotID, auctionerrors.ErrBidNotFound)
		}

		lot, err := tx.RemoveBid(bidID)
		if err != nil {
			return fmt.Errorf("service: failed to delete bid %d: %w", bidID, err)
		}

		utils.Info("bid deleted by admin", map[string]any{
			"bid_id":   bidID,
			"lot_id":   lotID,
			"admin_id": actor.ID,
		})
		s.publishLot(ctx, EventLotUpdated, lot)
		return nil
	})
}

// LotInput carries the admin-supplied fields for creating a lot.
type LotInput struct {
	Title           string
	Description     string
	ImageURL        string
	StartingPrice   float64
	MinStep         float64
	DurationMinutes int
	VIPOnly         bool
	ScheduledStart  *time.Time
}

// CreateLot stores a new pending lot and announces it to eligible viewers.
func (s *AuctionService) CreateLot(ctx context.Context, creator model.User, in LotInput) (LotView, error) {
	lot, err := s.registry.Create(ctx, model.Lot{
		Title:           in.Title,
		Description:     in.Description,
		ImageURL:        in.ImageURL,
		StartingPrice:   in.StartingPrice,
		MinStep:         in.MinStep,
		DurationMinutes: in.DurationMinutes,
		VIPOnly:         in.VIPOnly,
		ScheduledStart:  in.ScheduledStart,
		CreatedAt:       time.Now().UTC(),
		CreatorID:       creator.ID,
	})
	if err != nil {
		return LotView{}, err
	}

	view, err := s.ProjectLot(ctx, lot)
	if err != nil {
		return LotView{}, err
	}
	s.emit(EventLotCreated, lot, view)
	return view, nil
}

// LotUpdate carries optional replacement fields for editing a pending lot.
type LotUpdate struct {
	Title          *string
	Description    *string
	ImageURL       *string
	StartingPrice  *float64
	MinStep        *float64
	VIPOnly        *bool
	ScheduledStart *time.Time
	ClearSchedule  bool
}

// UpdateLot edits a lot's listing fields. Only legal while pending.
func (s *AuctionService) UpdateLot(ctx context.Context, lotID int64, in LotUpdate) (LotView, error) {
	var updated model.Lot
	err := s.registry.WithLot(ctx, lotID, func(tx *registry.LotTx) error {
		lot, err := tx.Lot()
		if err != nil {
			return err
		}
		if lot.Status != model.LotPending {
			return fmt.Errorf("service: edit lot %d in state %s: %w", lotID, lot.Status, auctionerrors.ErrInvalidTransition)
		}

		if in.Title != nil {
			lot.Title = *in.Title
		}
		if in.Description != nil {
			lot.Description = *in.Description
		}
		if in.ImageURL != nil {
			lot.ImageURL = *in.ImageURL
		}
		if in.StartingPrice != nil {
			lot.StartingPrice = *in.StartingPrice
		}
		if in.MinStep != nil {
			lot.MinStep = *in.MinStep
		}
		if in.VIPOnly != nil {
			lot.VIPOnly = *in.VIPOnly
		}
		if in.ClearSchedule {
			lot.ScheduledStart = nil
		} else if in.ScheduledStart != nil {
			lot.ScheduledStart = in.ScheduledStart
		}

		if lot.Title == "" || lot.StartingPrice <= 0 || lot.MinStep <= 0 {
			return fmt.Errorf("service: %w - title, starting price and min step are required", auctionerrors.ErrInvalidLot)
		}

		updated, err = tx.Save(lot)
		return err
	})
	if err != nil {
		return LotView{}, err
	}

	view, err := s.ProjectLot(ctx, updated)
	if err != nil {
		return LotView{}, err
	}
	s.emit(EventLotUpdated, updated, view)
	return view, nil
}

// StartLot activates a pending lot by explicit administrator command.
func (s *AuctionService) StartLot(ctx context.Context, lotID int64, now time.Time) (LotView, error) {
	lot, err := s.registry.Activate(ctx, lotID, now)
	if err != nil {
		return LotView{}, err
	}
	utils.Info("lot started", map[string]any{
		"lot_id":  lot.ID,
		"ends_at": lot.EndsAt,
	})
	return s.publishLot(ctx, EventLotUpdated, lot)
}

// EndLot ends an active lot by explicit administrator command, resolving
// the winner from the standing bids.
func (s *AuctionService) EndLot(ctx context.Context, lotID int64) (LotView, error) {
	lot, err := s.registry.End(ctx, lotID)
	if err != nil {
		return LotView{}, err
	}
	utils.Info("lot ended", map[string]any{
		"lot_id":    lot.ID,
		"winner_id": lot.WinnerID,
	})
	return s.publishLot(ctx, EventLotUpdated, lot)
}

// DeleteLot hard-removes a lot and its bids and announces the removal to
// every connected party.
func (s *AuctionService) DeleteLot(ctx context.Context, lotID int64) error {
	if err := s.registry.Delete(ctx, lotID); err != nil {
		return err
	}
	s.emitGlobal(EventLotDeleted, LotDeletedPayload{LotID: lotID})
	return nil
}

// ListLots returns the lots a viewer is eligible to see, optionally
// filtered by lifecycle state. A nil viewer is an anonymous party.
func (s *AuctionService) ListLots(ctx context.Context, viewer *model.User, status model.LotStatus) ([]LotView, error) {
	var lots []model.Lot
	var err error
	if status != "" {
		lots, err = s.registry.ListByStatus(ctx, status)
	} else {
		lots, err = s.registry.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("service: failed to list lots: %w", err)
	}

	views := make([]LotView, 0, len(lots))
	for _, lot := range lots {
		if !lot.VisibleTo(viewer) {
			continue
		}
		view, err := s.ProjectLot(ctx, lot)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetLot returns one lot projection. A VIP-only lot is reported as not
// found to ineligible viewers, so its existence never leaks.
func (s *AuctionService) GetLot(ctx context.Context, viewer *model.User, lotID int64) (LotView, error) {
	lot, err := s.registry.Get(ctx, lotID)
	if err != nil {
		return LotView{}, err
	}
	if !lot.VisibleTo(viewer) {
		return LotView{}, fmt.Errorf("service: lot %d hidden from viewer: %w", lotID, auctionerrors.ErrLotNotFound)
	}
	return s.ProjectLot(ctx, lot)
}

// LotBids returns the bid history for a lot, subject to the same
// eligibility rule as GetLot.
func (s *AuctionService) LotBids(ctx context.Context, viewer *model.User, lotID int64) ([]BidView, error) {
	lot, err := s.registry.Get(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if !lot.VisibleTo(viewer) {
		return nil, fmt.Errorf("service: lot %d hidden from viewer: %w", lotID, auctionerrors.ErrLotNotFound)
	}

	bids, err := s.store.ListBidsByLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids for lot %d: %w", lotID, err)
	}
	return s.projectBids(ctx, bids), nil
}

// PublishLotUpdate projects and broadcasts a lot mutation performed
// outside the service, such as a scheduler sweep.
func (s *AuctionService) PublishLotUpdate(ctx context.Context, lot model.Lot) {
	s.publishLot(ctx, EventLotUpdated, lot)
}

func (s *AuctionService) publishLot(ctx context.Context, event string, lot model.Lot) (LotView, error) {
	view, err := s.ProjectLot(ctx, lot)
	if err != nil {
		utils.Error("failed to project lot for broadcast", map[string]any{
			"lot_id": lot.ID,
			"event":  event,
			"error":  err.Error(),
		})
		return LotView{}, err
	}
	s.emit(event, lot, view)
	return view, nil
}

func (s *AuctionService) emit(event string, lot model.Lot, data any) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(event, lot, data)
	}
}

func (s *AuctionService) emitGlobal(event string, data any) {
	if s.broadcaster != nil {
		s.broadcaster.PublishGlobal(event, data)
	}
}
