package model

import (
	"strings"
	"time"
)

// HistoryItem is one listening event.
type HistoryItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TrackID   string    `json:"trackId"`
	Duration  int       `json:"duration"` // seconds listened
	Timestamp time.Time `json:"timestamp"`
}

func (h HistoryItem) RecordID() string { return h.ID }

func (h HistoryItem) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return NewValidationError("id", "is required")
	}
	if strings.TrimSpace(h.UserID) == "" {
		return NewValidationError("userId", "is required")
	}
	if strings.TrimSpace(h.TrackID) == "" {
		return NewValidationError("trackId", "is required")
	}
	if h.Duration < 0 {
		return NewValidationError("duration", "must not be negative")
	}
	return nil
}
