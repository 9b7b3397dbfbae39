package library

import (
	"context"

	"MusicFlow/model"
)

// Recommendations is a sample of tracks and how it was chosen.
type Recommendations struct {
	Tracks []model.Track `json:"tracks"`
	Type   string        `json:"type"`
	Genre  string        `json:"genre,omitempty"`
}

// Recommend samples tracks for the user. Without history the sample is
// drawn from the whole library. Otherwise it is drawn from unheard tracks in
// the user's most played genre; ties go to the genre heard first.
func (l *Library) Recommend(ctx context.Context, userID string) Recommendations {
	tracks := l.tracks.GetAllTracks(ctx)
	history := l.history.GetUserHistory(ctx, userID)
	if len(history) == 0 {
		return Recommendations{Tracks: l.sample(tracks), Type: RecommendPopular}
	}

	byID := tracksByID(tracks)
	heard := make(map[string]bool, len(history))
	counts := map[string]int{}
	var order []string
	// history is newest first; tally oldest first so ties favour the earliest genre
	for i := len(history) - 1; i >= 0; i-- {
		id := history[i].TrackID
		heard[id] = true
		t, ok := byID[id]
		if !ok || t.Genre == "" {
			continue
		}
		if _, seen := counts[t.Genre]; !seen {
			order = append(order, t.Genre)
		}
		counts[t.Genre]++
	}

	top := ""
	for _, g := range order {
		if counts[g] > counts[top] {
			top = g
		}
	}

	candidates := filterTracks(tracks, func(t model.Track) bool {
		return top != "" && t.Genre == top && !heard[t.ID]
	})
	return Recommendations{Tracks: l.sample(candidates), Type: RecommendFromHistory, Genre: top}
}

// sample returns up to sampleSize tracks in random order.
func (l *Library) sample(tracks []model.Track) []model.Track {
	shuffled := make([]model.Track, len(tracks))
	copy(shuffled, tracks)
	l.mu.Lock()
	l.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	l.mu.Unlock()
	if len(shuffled) > l.sampleSize {
		shuffled = shuffled[:l.sampleSize]
	}
	return shuffled
}
