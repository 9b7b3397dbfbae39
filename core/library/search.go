package library

import (
	"context"
	"strings"

	"MusicFlow/model"
)

// SearchResult holds every match from each collection.
type SearchResult struct {
	Tracks  []model.Track  `json:"tracks"`
	Artists []model.Artist `json:"artists"`
	Albums  []model.Album  `json:"albums"`
}

// Search matches the trimmed query case-insensitively as a substring of
// track title/artist/album, artist name/genre and album title/artist.
// An empty query matches nothing.
func (l *Library) Search(ctx context.Context, query string) SearchResult {
	result := SearchResult{Tracks: []model.Track{}, Artists: []model.Artist{}, Albums: []model.Album{}}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return result
	}

	for _, t := range l.tracks.GetAllTracks(ctx) {
		if matches(q, t.Title, t.Artist, t.Album) {
			result.Tracks = append(result.Tracks, t)
		}
	}
	for _, a := range l.artists.GetAllArtists(ctx) {
		if matches(q, a.Name, a.Genre) {
			result.Artists = append(result.Artists, a)
		}
	}
	for _, a := range l.albums.GetAllAlbums(ctx) {
		if matches(q, a.Title, a.Artist) {
			result.Albums = append(result.Albums, a)
		}
	}
	return result
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Stats aggregates the library.
type Stats struct {
	TotalTracks    int `json:"totalTracks"`
	TotalArtists   int `json:"totalArtists"`
	TotalAlbums    int `json:"totalAlbums"`
	TotalPlaylists int `json:"totalPlaylists"`
	TotalDuration  int `json:"totalDuration"` // seconds
	LikedTracks    int `json:"likedTracks"`
}

func (l *Library) Stats(ctx context.Context) Stats {
	tracks := l.tracks.GetAllTracks(ctx)
	stats := Stats{
		TotalTracks:    len(tracks),
		TotalArtists:   len(l.artists.GetAllArtists(ctx)),
		TotalAlbums:    len(l.albums.GetAllAlbums(ctx)),
		TotalPlaylists: len(l.playlists.GetAllPlaylists(ctx)),
	}
	for _, t := range tracks {
		stats.TotalDuration += t.Seconds()
		if t.Liked {
			stats.LikedTracks++
		}
	}
	return stats
}
