package server

import (
	"encoding/json"
	"math"
	"net/http"

	"MusicFlow/model"
	"MusicFlow/repository"
)

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	Username    *string                `json:"username"`
	Preferences map[string]interface{} `json:"preferences"`
}

// GetProfileHandler returns the authenticated user without credentials.
func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// UpdateProfileHandler changes the username and merges preferences key by key.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err, "Failed to update profile")
		return
	}
	if req.Username != nil && *req.Username == "" {
		writeErr(w, r, model.NewValidationError("username", "must not be empty"), "")
		return
	}

	updated, err := h.userRepo.UpdateProfile(r.Context(), user.ID, repository.ProfileUpdate{
		Username:    req.Username,
		Preferences: req.Preferences,
	})
	if err != nil {
		writeErr(w, r, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, updated.Public())
}

type historyRequest struct {
	TrackID  string          `json:"trackId"`
	Duration json.RawMessage `json:"duration"`
}

// maxListenSeconds caps the duration of one listening event at a day.
const maxListenSeconds = 24 * 60 * 60

// AddHistoryHandler records a listening event for the authenticated user.
func (h *APIHandler) AddHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req historyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err, "Failed to add to history")
		return
	}
	var seconds float64
	if len(req.Duration) > 0 && string(req.Duration) != "null" {
		if err := json.Unmarshal(req.Duration, &seconds); err != nil {
			writeErr(w, r, model.NewValidationError("duration", "must be a number of seconds"), "")
			return
		}
	}
	if seconds < 0 || seconds > maxListenSeconds {
		writeErr(w, r, model.NewValidationError("duration", "must be between 0 and 86400 seconds"), "")
		return
	}

	item, err := h.library.RecordPlay(r.Context(), user.ID, req.TrackID, int(math.Round(seconds)))
	if err != nil {
		writeErr(w, r, err, "Failed to add to history")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetHistoryHandler returns the user's history, newest first, joined with tracks.
func (h *APIHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.library.History(r.Context(), user.ID))
}

// RecommendationsHandler returns a track sample for the user.
func (h *APIHandler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.library.Recommend(r.Context(), user.ID))
}
