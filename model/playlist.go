package model

import (
	"strings"
	"time"
)

// PlaylistDateLayout is the day.month.year layout used for Playlist.Created.
const PlaylistDateLayout = "02.01.2006"

// Playlist is a user-curated list of tracks. TrackCount and Duration are
// derived from TrackIDs whenever membership changes.
type Playlist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TrackCount  int      `json:"trackCount"`
	Duration    string   `json:"duration"`
	Created     string   `json:"created"`
	IsPublic    bool     `json:"isPublic"`
	TrackIDs    []string `json:"trackIds"`
}

// NewPlaylist returns a playlist with the server-side defaults applied.
func NewPlaylist(id, name, description string, now time.Time) Playlist {
	return Playlist{
		ID:          id,
		Name:        name,
		Description: description,
		TrackCount:  0,
		Duration:    "0m",
		Created:     now.Format(PlaylistDateLayout),
		IsPublic:    false,
		TrackIDs:    []string{},
	}
}

func (p Playlist) RecordID() string { return p.ID }

func (p Playlist) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return NewValidationError("id", "is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if p.TrackCount < 0 {
		return NewValidationError("trackCount", "must not be negative")
	}
	return nil
}

// HasTrack reports whether trackID is a member of the playlist.
func (p Playlist) HasTrack(trackID string) bool {
	for _, id := range p.TrackIDs {
		if id == trackID {
			return true
		}
	}
	return false
}

// Recount refreshes TrackCount and Duration from the given member tracks.
func (p *Playlist) Recount(members []Track) {
	total := 0
	for _, t := range members {
		total += t.Seconds()
	}
	p.TrackCount = len(p.TrackIDs)
	p.Duration = FormatLongDuration(total)
}
