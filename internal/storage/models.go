package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no link with the requested code exists.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by Insert when the code is already taken.
	ErrConflict = errors.New("data conflict")
)

// LinkRecord is a persisted short link.
type LinkRecord struct {
	Code          string     `json:"code"`
	TargetURL     string     `json:"target_url"`
	TotalClicks   int64      `json:"total_clicks"`
	LastClickedAt *time.Time `json:"last_clicked_at"`
	CreatedAt     time.Time  `json:"created_at"`
}
