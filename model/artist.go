package model

import "strings"

// Artist is a read-only catalogue entry. Its tracks are the tracks whose
// Artist field equals Name.
type Artist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Genre         string `json:"genre"`
	Followers     int    `json:"followers"`
	TrackCount    int    `json:"trackCount"`
	AlbumCount    int    `json:"albumCount"`
	TotalDuration string `json:"totalDuration"`
	Trending      bool   `json:"trending"`
}

func (a Artist) RecordID() string { return a.ID }

func (a Artist) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return NewValidationError("id", "is required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "is required")
	}
	return nil
}
