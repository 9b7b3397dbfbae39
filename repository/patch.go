package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"MusicFlow/model"
)

// Patch is a partial update: only the keys present are changed.
type Patch map[string]json.RawMessage

// applyPatch merges patch into current. Keys that current does not have and
// keys listed in immutable are ignored.
func applyPatch[T any](current T, patch Patch, immutable ...string) (T, error) {
	var zero T

	raw, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("failed to encode record: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, fmt.Errorf("failed to decode record: %w", err)
	}

	skip := make(map[string]bool, len(immutable))
	for _, k := range immutable {
		skip[k] = true
	}
	for k, v := range patch {
		if _, known := fields[k]; !known || skip[k] {
			continue
		}
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("failed to encode patched record: %w", err)
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return zero, model.NewValidationError(typeErr.Field, "has the wrong type")
		}
		return zero, model.NewValidationError("", "invalid update body")
	}
	return out, nil
}
