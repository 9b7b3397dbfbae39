package library

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"MusicFlow/model"
	"MusicFlow/repository"

	"github.com/google/uuid"
)

// Recommendation types.
const (
	RecommendPopular     = "popular"
	RecommendFromHistory = "based_on_history"
)

// Library answers the read-side queries that span several collections.
type Library struct {
	tracks    repository.TrackRepository
	artists   repository.ArtistRepository
	albums    repository.AlbumRepository
	playlists repository.PlaylistRepository
	history   repository.HistoryRepository

	historyLimit int
	sampleSize   int

	mu  sync.Mutex // guards rng
	rng *rand.Rand
	now func() time.Time
}

// Options tune history retention and recommendation size.
type Options struct {
	HistoryLimit int
	SampleSize   int
}

func New(
	tracks repository.TrackRepository,
	artists repository.ArtistRepository,
	albums repository.AlbumRepository,
	playlists repository.PlaylistRepository,
	history repository.HistoryRepository,
	opts Options,
) *Library {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 1000
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = 10
	}
	return &Library{
		tracks:       tracks,
		artists:      artists,
		albums:       albums,
		playlists:    playlists,
		history:      history,
		historyLimit: opts.HistoryLimit,
		sampleSize:   opts.SampleSize,
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		now:          time.Now,
	}
}

// ArtistTracks returns the tracks whose artist name equals the artist's name.
func (l *Library) ArtistTracks(ctx context.Context, artistID string) ([]model.Track, error) {
	artist, err := l.artists.GetArtistByID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return filterTracks(l.tracks.GetAllTracks(ctx), func(t model.Track) bool {
		return t.Artist == artist.Name
	}), nil
}

// AlbumTracks returns the tracks whose album name equals the album's title.
func (l *Library) AlbumTracks(ctx context.Context, albumID string) ([]model.Track, error) {
	album, err := l.albums.GetAlbumByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return filterTracks(l.tracks.GetAllTracks(ctx), func(t model.Track) bool {
		return t.Album == album.Title
	}), nil
}

// HistoryEntry is a history item joined with its track.
type HistoryEntry struct {
	model.HistoryItem
	Track model.Track `json:"track"`
}

// RecordPlay appends a listening event for the user and applies retention.
func (l *Library) RecordPlay(ctx context.Context, userID, trackID string, duration int) (*model.HistoryItem, error) {
	item := model.HistoryItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		TrackID:   strings.TrimSpace(trackID),
		Duration:  duration,
		Timestamp: l.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := l.history.AddHistoryItem(ctx, item, l.historyLimit); err != nil {
		return nil, err
	}
	return &item, nil
}

// History returns the user's listening events, newest first. Events whose
// track has since been removed are left out; they stay in the collection.
func (l *Library) History(ctx context.Context, userID string) []HistoryEntry {
	byID := tracksByID(l.tracks.GetAllTracks(ctx))
	items := l.history.GetUserHistory(ctx, userID)
	entries := make([]HistoryEntry, 0, len(items))
	for _, h := range items {
		t, ok := byID[h.TrackID]
		if !ok {
			continue
		}
		entries = append(entries, HistoryEntry{HistoryItem: h, Track: t})
	}
	return entries
}

func filterTracks(tracks []model.Track, keep func(model.Track) bool) []model.Track {
	out := []model.Track{}
	for _, t := range tracks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func tracksByID(tracks []model.Track) map[string]model.Track {
	byID := make(map[string]model.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}
	return byID
}
