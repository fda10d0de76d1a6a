package auction

import (
	"context"
	"fmt"
	"time"

	model "auction-engine/internal/models"
)

// LotView is the lot as every connected party sees it: effective price,
// leader identity and the full bid history.
type LotView struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	ImageURL            string    `json:"imageUrl"`
	StartingPrice       float64   `json:"startingPrice"`
	CurrentPrice        float64   `json:"currentPrice"`
	MinStep             float64   `json:"minStep"`
	DurationMinutes     int       `json:"durationMinutes"`
	VIPOnly             bool      `json:"vipOnly"`
	CreatedAt           string    `json:"createdAt"`
	ScheduledStart      *string   `json:"scheduledStart"`
	StartedAt           *string   `json:"startedAt"`
	EndsAt              *string   `json:"endsAt"`
	Status              string    `json:"status"`
	WinnerID            *int64    `json:"winnerId"`
	CurrentBidder       *string   `json:"currentBidder"`
	CurrentBidderAvatar *string   `json:"currentBidderAvatar"`
	BidsCount           int       `json:"bidsCount"`
	Bids                []BidView `json:"bids"`
}

// BidView is one admitted bid with its bidder's public identity.
type BidView struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"userId"`
	Amount    float64 `json:"amount"`
	Username  string  `json:"username"`
	Avatar    string  `json:"avatar"`
	CreatedAt string  `json:"createdAt"`
}

// UserView is the public projection of a user record.
type UserView struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Avatar   string  `json:"avatar"`
	IsAdmin  bool    `json:"isAdmin"`
	Premium  int     `json:"premium"`
	Balance  float64 `json:"balance"`
}

// ProjectLot builds the public view of a lot, joining in bidder
// identities from the store.
func (s *AuctionService) ProjectLot(ctx context.Context, lot model.Lot) (LotView, error) {
	bids, err := s.store.ListBidsByLot(ctx, lot.ID)
	if err != nil {
		return LotView{}, fmt.Errorf("service: failed to list bids for lot %d: %w", lot.ID, err)
	}
	bidViews := s.projectBids(ctx, bids)

	view := LotView{
		ID:              lot.ID,
		Title:           lot.Title,
		Description:     lot.Description,
		ImageURL:        lot.ImageURL,
		StartingPrice:   lot.StartingPrice,
		CurrentPrice:    lot.EffectivePrice(),
		MinStep:         lot.MinStep,
		DurationMinutes: lot.DurationMinutes,
		VIPOnly:         lot.VIPOnly,
		CreatedAt:       formatTime(lot.CreatedAt),
		ScheduledStart:  optTime(lot.ScheduledStart),
		StartedAt:       optTime(lot.StartedAt),
		EndsAt:          optTime(lot.EndsAt),
		Status:          string(lot.Status),
		WinnerID:        lot.WinnerID,
		BidsCount:       len(bidViews),
		Bids:            bidViews,
	}

	if leader, ok := leadingBid(bids); ok {
		if user, err := s.store.GetUser(ctx, leader.UserID); err == nil {
			view.CurrentBidder = &user.Username
			avatar := user.Avatar
			view.CurrentBidderAvatar = &avatar
		}
	}
	return view, nil
}

// ProjectUser builds the public view of a user record.
func (s *AuctionService) ProjectUser(user model.User) UserView {
	return UserView{
		ID:       user.ID,
		Username: user.Username,
		Avatar:   user.Avatar,
		IsAdmin:  user.IsAdmin,
		Premium:  user.Premium,
		Balance:  user.Balance,
	}
}

func (s *AuctionService) projectBids(ctx context.Context, bids []model.Bid) []BidView {
	users := make(map[int64]model.User)
	views := make([]BidView, 0, len(bids))
	for _, bid := range bids {
		user, ok := users[bid.UserID]
		if !ok {
			user, _ = s.store.GetUser(ctx, bid.UserID)
			users[bid.UserID] = user
		}
		views = append(views, s.projectBid(bid, user))
	}
	return views
}

func (s *AuctionService) projectBid(bid model.Bid, user model.User) BidView {
	return BidView{
		ID:        bid.ID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		Username:  user.Username,
		Avatar:    user.Avatar,
		CreatedAt: formatTime(bid.CreatedAt),
	}
}

// leadingBid finds the highest bid, earliest on tie, from an unsorted
// slice.
func leadingBid(bids []model.Bid) (model.Bid, bool) {
	if len(bids) == 0 {
		return model.Bid{}, false
	}
	leader := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > leader.Amount || (b.Amount == leader.Amount && b.CreatedAt.Before(leader.CreatedAt)) {
			leader = b
		}
	}
	return leader, true
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func optTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
