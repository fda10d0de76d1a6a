package models

import "time"

// LotStatus is the lifecycle state of a lot.
type LotStatus string

const (
	LotPending   LotStatus = "pending"
	LotActive    LotStatus = "active"
	LotEnded     LotStatus = "ended"
	LotCancelled LotStatus = "cancelled"
)

// User represents a participant synced from the identity hub.
// Users are never created by the engine itself.
type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Avatar   string  `json:"avatar"`
	IsAdmin  bool    `json:"is_admin"`
	Premium  int     `json:"premium"`
	Balance  float64 `json:"balance"`
}

// IsVIP reports whether the user may view and bid on VIP-only lots.
func (u User) IsVIP() bool {
	return u.Premium >= 1
}

// Lot represents one auctionable item with its own lifecycle.
type Lot struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	ImageURL        string     `json:"image_url"`
	StartingPrice   float64    `json:"starting_price"`
	CurrentPrice    *float64   `json:"current_price"`
	MinStep         float64    `json:"min_step"`
	DurationMinutes int        `json:"duration_minutes"`
	VIPOnly         bool       `json:"vip_only"`
	CreatedAt       time.Time  `json:"created_at"`
	ScheduledStart  *time.Time `json:"scheduled_start"`
	StartedAt       *time.Time `json:"started_at"`
	EndsAt          *time.Time `json:"ends_at"`
	Status          LotStatus  `json:"status"`
	WinnerID        *int64     `json:"winner_id"`
	CreatorID       int64      `json:"creator_id"`
}

// EffectivePrice is the current price if any bid was admitted, otherwise
// the starting price. It is the basis for the next minimum bid.
func (l Lot) EffectivePrice() float64 {
	if l.CurrentPrice != nil {
		return *l.CurrentPrice
	}
	return l.StartingPrice
}

// Duration returns the configured auction runtime.
func (l Lot) Duration() time.Duration {
	return time.Duration(l.DurationMinutes) * time.Minute
}

// VisibleTo reports whether a viewer is eligible to observe the lot.
// A nil viewer is an anonymous party.
func (l Lot) VisibleTo(viewer *User) bool {
	if !l.VIPOnly {
		return true
	}
	return viewer != nil && viewer.IsVIP()
}

// Bid represents an admitted offer against a lot. Immutable once created
// except for explicit administrative deletion.
type Bid struct {
	ID        int64     `json:"id"`
	LotID     int64     `json:"lot_id"`
	UserID    int64     `json:"user_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
