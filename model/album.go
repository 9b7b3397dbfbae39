package model

import "strings"

// Album is a read-only catalogue entry. Its tracks are the tracks whose
// Album field equals Title.
type Album struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Year       int     `json:"year"`
	Genre      string  `json:"genre"`
	TrackCount int     `json:"trackCount"`
	Duration   string  `json:"duration"`
	Rating     float64 `json:"rating"`
	Liked      bool    `json:"liked"`
	Cover      string  `json:"cover,omitempty"`
}

func (a Album) RecordID() string { return a.ID }

func (a Album) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return NewValidationError("id", "is required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return NewValidationError("title", "is required")
	}
	return nil
}
