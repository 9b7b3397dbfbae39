package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"MusicFlow/logger"
	"MusicFlow/model"
)

// Collection is a typed view of one document in a Store.
type Collection[T model.Record] struct {
	store *Store
	name  string
}

// NewCollection binds a record type to a document name.
func NewCollection[T model.Record](s *Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the document name.
func (c *Collection[T]) Name() string {
	return c.name
}

// All returns every record, in document order. It never returns nil.
func (c *Collection[T]) All(ctx context.Context) []T {
	records := c.load(ctx)
	if records == nil {
		return []T{}
	}
	return records
}

func (c *Collection[T]) load(ctx context.Context) []T {
	return c.decode(c.store.Read(ctx, c.name))
}

func (c *Collection[T]) decode(data []byte) []T {
	if len(data) == 0 {
		return nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("collection is not a valid document, treating as empty",
			logger.String("collection", c.name), logger.ErrorField(err))
		return nil
	}
	return records
}

// Find returns the record with the given id.
func (c *Collection[T]) Find(ctx context.Context, id string) (T, bool) {
	for _, r := range c.All(ctx) {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Save validates every record and replaces the whole collection.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	unlock := c.store.Lock(c.name)
	defer unlock()

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s record %d: %w", c.name, i, err)
		}
	}
	return c.write(ctx, records)
}

// Update runs a read-modify-write cycle under the collection lock. If fn
// returns an error nothing is written.
//
// Only records that fn adds or changes are validated. A stored record that
// is already invalid, e.g. one edited by hand, is kept as it is and logged.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) error {
	unlock := c.store.Lock(c.name)
	defer unlock()

	current := c.decode(c.store.readLocked(ctx, c.name))
	before := make(map[string]T, len(current))
	for _, r := range current {
		before[r.RecordID()] = r
	}
	if current == nil {
		current = []T{}
	}

	records, err := fn(current)
	if err != nil {
		return err
	}
	for i, r := range records {
		err := r.Validate()
		if err == nil {
			continue
		}
		if old, ok := before[r.RecordID()]; ok && reflect.DeepEqual(old, r) {
			logger.Warn("keeping invalid record",
				logger.String("collection", c.name), logger.String("id", r.RecordID()), logger.ErrorField(err))
			continue
		}
		return fmt.Errorf("%s record %d: %w", c.name, i, err)
	}
	return c.write(ctx, records)
}

func (c *Collection[T]) write(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	return c.store.Write(ctx, c.name, records)
}
