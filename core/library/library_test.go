package library

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"MusicFlow/model"
	"MusicFlow/repository"
	"MusicFlow/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *storage.Store
	lib     *Library
	history repository.HistoryRepository
}

func newFixture(t *testing.T, tracks []model.Track) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := storage.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, storage.NewCollection[model.Track](store, storage.Tracks).Save(ctx, tracks))
	require.NoError(t, storage.NewCollection[model.Artist](store, storage.Artists).Save(ctx, []model.Artist{
		{ID: "a1", Name: "Queen", Genre: "Rock"},
		{ID: "a2", Name: "Daft Punk", Genre: "Electronic"},
	}))
	require.NoError(t, storage.NewCollection[model.Album](store, storage.Albums).Save(ctx, []model.Album{
		{ID: "b1", Title: "A Night at the Opera", Artist: "Queen"},
		{ID: "b2", Title: "Discovery", Artist: "Daft Punk"},
	}))

	history := repository.NewJSONHistoryRepository(store)
	lib := New(
		repository.NewJSONTrackRepository(store),
		repository.NewJSONArtistRepository(store),
		repository.NewJSONAlbumRepository(store),
		repository.NewJSONPlaylistRepository(store),
		history,
		Options{SampleSize: 3},
	)
	lib.rng = rand.New(rand.NewPCG(1, 2))
	clock := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	lib.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return &fixture{store: store, lib: lib, history: history}
}

func libraryTracks() []model.Track {
	return []model.Track{
		{ID: "1", Title: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera", Genre: "Rock", Duration: "5:55", Liked: true},
		{ID: "2", Title: "One More Time", Artist: "Daft Punk", Album: "Discovery", Genre: "Electronic", Duration: "5:20"},
		{ID: "3", Title: "Digital Love", Artist: "Daft Punk", Album: "Discovery", Genre: "Electronic", Duration: "4:58", Liked: true},
		{ID: "4", Title: "Love of My Life", Artist: "Queen", Album: "A Night at the Opera", Genre: "Rock", Duration: "3:39"},
		{ID: "5", Title: "Aerodynamic", Artist: "Daft Punk", Album: "Discovery", Genre: "Electronic", Duration: "3:27"},
		{ID: "6", Title: "Broken", Artist: "Unknown", Genre: "Jazz"},
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	f := newFixture(t, libraryTracks())
	ctx := context.Background()

	res := f.lib.Search(ctx, "  quee ")
	ids := make([]string, 0, len(res.Tracks))
	for _, tr := range res.Tracks {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{"1", "4"}, ids)
	require.Len(t, res.Artists, 1)
	assert.Equal(t, "Queen", res.Artists[0].Name)
	require.Len(t, res.Albums, 1)

	res = f.lib.Search(ctx, "ELECTRONIC")
	assert.Empty(t, res.Tracks)
	assert.Len(t, res.Artists, 1)

	res = f.lib.Search(ctx, "   ")
	assert.NotNil(t, res.Tracks)
	assert.Empty(t, res.Tracks)
	assert.Empty(t, res.Artists)
	assert.Empty(t, res.Albums)
}

func TestStats(t *testing.T) {
	f := newFixture(t, libraryTracks())
	stats := f.lib.Stats(context.Background())

	assert.Equal(t, Stats{
		TotalTracks:    6,
		TotalArtists:   2,
		TotalAlbums:    2,
		TotalPlaylists: 0,
		TotalDuration:  355 + 320 + 298 + 219 + 207,
		LikedTracks:    2,
	}, stats)
}

func TestArtistAndAlbumTracks(t *testing.T) {
	f := newFixture(t, libraryTracks())
	ctx := context.Background()

	tracks, err := f.lib.ArtistTracks(ctx, "a2")
	require.NoError(t, err)
	assert.Len(t, tracks, 3)

	tracks, err = f.lib.AlbumTracks(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, tracks, 2)

	_, err = f.lib.ArtistTracks(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.lib.AlbumTracks(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecommendPopularFallback(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, libraryTracks())
	rec := f.lib.Recommend(ctx, "u1")
	assert.Equal(t, RecommendPopular, rec.Type)
	assert.Len(t, rec.Tracks, 3)

	empty := newFixture(t, nil)
	rec = empty.lib.Recommend(ctx, "u1")
	assert.Equal(t, RecommendPopular, rec.Type)
	assert.NotNil(t, rec.Tracks)
	assert.Empty(t, rec.Tracks)
}

func TestRecommendFromHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, libraryTracks())

	_, err := f.lib.RecordPlay(ctx, "u1", "1", 120)
	require.NoError(t, err)
	_, err = f.lib.RecordPlay(ctx, "u1", "2", 90)
	require.NoError(t, err)

	// Rock and Electronic tie; Rock was heard first.
	rec := f.lib.Recommend(ctx, "u1")
	assert.Equal(t, RecommendFromHistory, rec.Type)
	assert.Equal(t, "Rock", rec.Genre)
	require.Len(t, rec.Tracks, 1)
	assert.Equal(t, "4", rec.Tracks[0].ID)

	_, err = f.lib.RecordPlay(ctx, "u1", "3", 60)
	require.NoError(t, err)
	rec = f.lib.Recommend(ctx, "u1")
	assert.Equal(t, "Electronic", rec.Genre)
	require.Len(t, rec.Tracks, 1)
	assert.Equal(t, "5", rec.Tracks[0].ID)
}

func TestHistoryJoinsTracks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, libraryTracks())
	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	for i, trackID := range []string{"1", "gone"} {
		require.NoError(t, f.history.AddHistoryItem(ctx, model.HistoryItem{
			ID: fmt.Sprintf("h%d", i), UserID: "u1", TrackID: trackID, Timestamp: base.Add(time.Duration(i) * time.Hour),
		}, 1000))
	}

	entries := f.lib.History(ctx, "u1")
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].TrackID)
	assert.Equal(t, "Bohemian Rhapsody", entries[0].Track.Title)
	assert.Len(t, f.history.GetUserHistory(ctx, "u1"), 2)

	_, err := f.lib.RecordPlay(ctx, "u1", " ", 10)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSeedFillsOnlyEmptyCollections(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, storage.NewCollection[model.Track](store, storage.Tracks).Save(ctx, []model.Track{
		{ID: "x", Title: "Mine", Artist: "Me"},
	}))

	written, err := Seed(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{storage.Artists, storage.Albums, storage.Playlists}, written)

	tracks := storage.NewCollection[model.Track](store, storage.Tracks).All(ctx)
	require.Len(t, tracks, 1)

	playlists := storage.NewCollection[model.Playlist](store, storage.Playlists).All(ctx)
	require.Len(t, playlists, 6)
	for _, p := range playlists {
		assert.Equal(t, len(p.TrackIDs), p.TrackCount, p.Name)
	}

	written, err = Seed(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestLoadSeedData(t *testing.T) {
	data, err := LoadSeedData()
	require.NoError(t, err)
	assert.Len(t, data.Tracks, 20)
	assert.Len(t, data.Artists, 12)
	assert.Len(t, data.Albums, 12)
	for _, tr := range data.Tracks {
		assert.NoError(t, tr.Validate(), tr.ID)
	}
}
