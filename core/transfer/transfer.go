package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"MusicFlow/logger"
	"MusicFlow/model"
	"MusicFlow/repository"

	"github.com/google/uuid"
)

// Result summarizes an import. Duplicates counts the records that were
// rejected, whatever the reason.
type Result struct {
	Imported   int `json:"imported"`
	Total      int `json:"total"`
	Duplicates int `json:"duplicates"`
}

func newResult(imported, total int) Result {
	return Result{Imported: imported, Total: total, Duplicates: total - imported}
}

// Progress is called once per record examined.
type Progress func()

// Service imports and exports library collections.
type Service struct {
	tracks    repository.TrackRepository
	playlists repository.PlaylistRepository
	now       func() time.Time
}

func NewService(tracks repository.TrackRepository, playlists repository.PlaylistRepository) *Service {
	return &Service{tracks: tracks, playlists: playlists, now: time.Now}
}

// ImportTracks appends every track in r that has a title and an artist.
// Accepted tracks get a fresh id. Other fields are coerced rather than
// checked: an unreadable year becomes 0 and an unreadable duration is dropped.
func (s *Service) ImportTracks(ctx context.Context, format string, r io.Reader, progress Progress) (Result, error) {
	candidates, err := decodeTracks(format, r)
	if err != nil {
		return Result{}, err
	}

	accepted := make([]model.Track, 0, len(candidates))
	for _, t := range candidates {
		if progress != nil {
			progress()
		}
		if t == nil {
			continue
		}
		t.Title = strings.TrimSpace(t.Title)
		t.Artist = strings.TrimSpace(t.Artist)
		if t.Title == "" || t.Artist == "" {
			logger.Debug("skipping track without title or artist on import")
			continue
		}
		t.ID = uuid.New().String()
		if t.Year < 0 {
			t.Year = 0
		}
		t.Duration = importedDuration(t.Duration)
		accepted = append(accepted, *t)
	}

	if len(accepted) > 0 {
		if err := s.tracks.AppendTracks(ctx, accepted); err != nil {
			return Result{}, fmt.Errorf("failed to save imported tracks: %w", err)
		}
	}
	res := newResult(len(accepted), len(candidates))
	logger.Info("tracks imported", logger.Int("imported", res.Imported), logger.Int("total", res.Total))
	return res, nil
}

// ImportPlaylists appends every playlist in r that has a name. Member ids
// that do not resolve to a track are dropped.
func (s *Service) ImportPlaylists(ctx context.Context, format string, r io.Reader, progress Progress) (Result, error) {
	candidates, err := decodePlaylists(format, r)
	if err != nil {
		return Result{}, err
	}

	now := s.now()
	accepted := make([]model.Playlist, 0, len(candidates))
	for _, p := range candidates {
		if progress != nil {
			progress()
		}
		if p == nil || strings.TrimSpace(p.Name) == "" {
			continue
		}
		imported := model.NewPlaylist(uuid.New().String(), strings.TrimSpace(p.Name), p.Description, now)
		imported.IsPublic = p.IsPublic
		if p.Created != "" {
			imported.Created = p.Created
		}
		if p.Duration != "" {
			imported.Duration = p.Duration
		}
		if p.TrackCount > 0 {
			imported.TrackCount = p.TrackCount
		}
		if p.TrackIDs != nil {
			imported.TrackIDs = p.TrackIDs
		}
		accepted = append(accepted, imported)
	}

	if len(accepted) > 0 {
		if err := s.playlists.AppendPlaylists(ctx, accepted); err != nil {
			return Result{}, fmt.Errorf("failed to save imported playlists: %w", err)
		}
	}
	res := newResult(len(accepted), len(candidates))
	logger.Info("playlists imported", logger.Int("imported", res.Imported), logger.Int("total", res.Total))
	return res, nil
}

// decodeRows returns one row per input record, keyed by lower-cased field
// name. JSON records that are not objects come back as nil rows.
func decodeRows(format string, r io.Reader) ([]map[string]string, error) {
	switch format {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read import: %w", err)
		}
		raws, err := decodeObjects(data)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]string, len(raws))
		for i, raw := range raws {
			rows[i] = flattenObject(raw)
		}
		return rows, nil
	case FormatCSV:
		return decodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: cannot import from %s", ErrUnsupportedFormat, format)
	}
}

func decodeTracks(format string, r io.Reader) ([]*model.Track, error) {
	rows, err := decodeRows(format, r)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Track, len(rows))
	for i, row := range rows {
		if row != nil {
			t := trackFromRow(row)
			out[i] = &t
		}
	}
	return out, nil
}

func decodePlaylists(format string, r io.Reader) ([]*model.Playlist, error) {
	rows, err := decodeRows(format, r)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Playlist, len(rows))
	for i, row := range rows {
		if row != nil {
			p := playlistFromRow(row)
			out[i] = &p
		}
	}
	return out, nil
}

// CountRecords reports how many records an import document holds, for
// progress reporting before the import runs.
func CountRecords(format string, data []byte) (int, error) {
	switch format {
	case FormatJSON:
		raws, err := decodeObjects(data)
		return len(raws), err
	case FormatCSV:
		rows, err := decodeCSV(bytes.NewReader(data))
		return len(rows), err
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// importedDuration keeps "m:ss" and "h:mm:ss" values and turns a bare number
// of seconds into "m:ss". Anything else is dropped.
func importedDuration(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := model.ParseDuration(s); err == nil {
		return s
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || !(secs >= 0 && secs <= math.MaxInt32) {
		return ""
	}
	return model.FormatDuration(int(math.Round(secs)))
}
