package server

import (
	"encoding/json"
	"net/http"

	"MusicFlow/repository"

	"github.com/gorilla/mux"
)

// GetTracksHandler returns every track.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.trackRepo.GetAllTracks(r.Context()))
}

// GetTrackHandler returns one track.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, err := h.trackRepo.GetTrackByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to fetch track")
		return
	}
	writeJSON(w, http.StatusOK, track)
}

// UpdateTrackHandler merges the request body into the track.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := decodeJSON(r, &patch); err != nil {
		writeErr(w, r, err, "Failed to update track")
		return
	}
	track, err := h.trackRepo.UpdateTrack(r.Context(), mux.Vars(r)["id"], repository.Patch(patch))
	if err != nil {
		writeErr(w, r, err, "Failed to update track")
		return
	}
	writeJSON(w, http.StatusOK, track)
}

// ToggleLikeHandler flips the liked flag and returns {liked}.
func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	liked, err := h.trackRepo.ToggleLike(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to toggle like")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
