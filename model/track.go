package model

import "strings"

// Track represents a single audio track in the library.
// Artist and Album are plain names, matched by string equality.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Genre    string `json:"genre"`
	Year     int    `json:"year"`
	Duration string `json:"duration"` // mm:ss
	Bitrate  string `json:"bitrate"`
	Liked    bool   `json:"liked"`
}

func (t Track) RecordID() string { return t.ID }

// Validate checks the fields every persisted track must carry.
func (t Track) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return NewValidationError("id", "is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "is required")
	}
	if strings.TrimSpace(t.Artist) == "" {
		return NewValidationError("artist", "is required")
	}
	if t.Year < 0 {
		return NewValidationError("year", "must not be negative")
	}
	if t.Duration != "" {
		if _, err := ParseDuration(t.Duration); err != nil {
			return NewValidationError("duration", err.Error())
		}
	}
	return nil
}

// Seconds returns the track length in seconds, or 0 when the duration is malformed.
func (t Track) Seconds() int {
	s, err := ParseDuration(t.Duration)
	if err != nil {
		return 0
	}
	return s
}
