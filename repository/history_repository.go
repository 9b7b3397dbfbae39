package repository

import (
	"context"
	"sort"

	"MusicFlow/model"
	"MusicFlow/storage"
)

// HistoryRepository stores listening events.
type HistoryRepository interface {
	// AddHistoryItem appends item and trims the user's history to the
	// limit most recent entries by timestamp.
	AddHistoryItem(ctx context.Context, item model.HistoryItem, limit int) error
	// GetUserHistory returns the user's items, newest first.
	GetUserHistory(ctx context.Context, userID string) []model.HistoryItem
}

type jsonHistoryRepository struct {
	history *storage.Collection[model.HistoryItem]
}

func NewJSONHistoryRepository(store *storage.Store) HistoryRepository {
	return &jsonHistoryRepository{history: storage.NewCollection[model.HistoryItem](store, storage.History)}
}

func (r *jsonHistoryRepository) AddHistoryItem(ctx context.Context, item model.HistoryItem, limit int) error {
	return r.history.Update(ctx, func(items []model.HistoryItem) ([]model.HistoryItem, error) {
		items = append(items, item)
		return trimUserHistory(items, item.UserID, limit), nil
	})
}

func (r *jsonHistoryRepository) GetUserHistory(ctx context.Context, userID string) []model.HistoryItem {
	var mine []model.HistoryItem
	for _, h := range r.history.All(ctx) {
		if h.UserID == userID {
			mine = append(mine, h)
		}
	}
	sortNewestFirst(mine)
	if mine == nil {
		return []model.HistoryItem{}
	}
	return mine
}

// trimUserHistory keeps only the limit newest items of userID; other users'
// items and document order are untouched.
func trimUserHistory(items []model.HistoryItem, userID string, limit int) []model.HistoryItem {
	var mine []model.HistoryItem
	for _, h := range items {
		if h.UserID == userID {
			mine = append(mine, h)
		}
	}
	if len(mine) <= limit {
		return items
	}

	sortNewestFirst(mine)
	keep := make(map[string]bool, limit)
	for _, h := range mine[:limit] {
		keep[h.ID] = true
	}

	kept := items[:0]
	for _, h := range items {
		if h.UserID != userID || keep[h.ID] {
			kept = append(kept, h)
		}
	}
	return kept
}

func sortNewestFirst(items []model.HistoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
}
