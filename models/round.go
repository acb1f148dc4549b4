package models

import (
	"time"

	"gorm.io/datatypes"
)

// Round is the archived record of one play-through, written when the round
// ends. Live round state stays in memory (and redis) only.
type Round struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RoundID      string         `gorm:"uniqueIndex" json:"round_id"`
	Stake        int            `json:"stake"`
	RoundNumber  int            `json:"round_number"`
	Status       string         `json:"status"` // won | drawn_out | cancelled
	NumbersJSON  datatypes.JSON `json:"numbers_drawn"`
	WinnerID     *int64         `json:"winner_id"`
	WinnerCardID *int           `json:"winner_card_id"`
	Pattern      string         `json:"pattern"`
	Prize        float64        `json:"prize"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
