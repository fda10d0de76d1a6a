package helpers

import "time"

// Request/Response DTOs
type CreateLotRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	ImageURL        string     `json:"imageUrl"`
	StartingPrice   float64    `json:"startingPrice" binding:"required,gt=0"`
	MinStep         float64    `json:"minStep" binding:"required,gt=0"`
	DurationMinutes int        `json:"durationMinutes" binding:"omitempty,gt=0"`
	VIPOnly         bool       `json:"vipOnly"`
	ScheduledStart  *time.Time `json:"scheduledStart"`
}

type UpdateLotRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	ImageURL       *string    `json:"imageUrl"`
	StartingPrice  *float64   `json:"startingPrice" binding:"omitempty,gt=0"`
	MinStep        *float64   `json:"minStep" binding:"omitempty,gt=0"`
	VIPOnly        *bool      `json:"vipOnly"`
	ScheduledStart *time.Time `json:"scheduledStart"`
	ClearSchedule  bool       `json:"clearSchedule"`
}
