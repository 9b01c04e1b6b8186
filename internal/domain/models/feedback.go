package models

import (
	"time"

	"github.com/dailytarot/tarotpipe/internal/domain"
)

// Thumb values
const (
	ThumbUp   = 1
	ThumbDown = -1
)

// Feedback is a user's thumbs-up/down plus optional rationale on a reading.
// Multiple rows may exist per reading (edits); only the most recent by
// CreatedAt is authoritative.
type Feedback struct {
	ReadingID string    `json:"reading_id"`
	UserID    string    `json:"user_id"`
	Thumb     int       `json:"thumb"`
	Rationale *string   `json:"rationale,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the feedback payload against the schema invariants.
func (f *Feedback) Validate() error {
	if f.ReadingID == "" {
		return domain.NewDomainError(domain.ErrInvalidID, "feedback reading id is empty")
	}
	if f.Thumb != ThumbUp && f.Thumb != ThumbDown {
		return domain.NewDomainError(domain.ErrInvalidThumbValue, "feedback for reading "+f.ReadingID)
	}
	return nil
}
