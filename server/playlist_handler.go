package server

import (
	"encoding/json"
	"net/http"

	"MusicFlow/repository"

	"github.com/gorilla/mux"
)

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type playlistTrackRequest struct {
	TrackID string `json:"trackId"`
}

// GetPlaylistsHandler returns every playlist.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.playlistRepo.GetAllPlaylists(r.Context()))
}

func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlistRepo.GetPlaylistByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to fetch playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// CreatePlaylistHandler creates an empty playlist.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err, "Failed to create playlist")
		return
	}
	playlist, err := h.playlistRepo.CreatePlaylist(r.Context(), req.Name, req.Description)
	if err != nil {
		writeErr(w, r, err, "Failed to create playlist")
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

// UpdatePlaylistHandler merges the request body into the playlist.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := decodeJSON(r, &patch); err != nil {
		writeErr(w, r, err, "Failed to update playlist")
		return
	}
	playlist, err := h.playlistRepo.UpdatePlaylist(r.Context(), mux.Vars(r)["id"], repository.Patch(patch))
	if err != nil {
		writeErr(w, r, err, "Failed to update playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// DeletePlaylistHandler always succeeds for a well-formed request, whether or
// not the playlist existed.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.playlistRepo.DeletePlaylist(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeErr(w, r, err, "Failed to delete playlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Playlist deleted"})
}

func (h *APIHandler) GetPlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.playlistRepo.GetPlaylistTracks(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to fetch playlist tracks")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// AddToPlaylistHandler adds {trackId} to the playlist.
func (h *APIHandler) AddToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req playlistTrackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err, "Failed to add track to playlist")
		return
	}
	if req.TrackID == "" {
		writeError(w, http.StatusBadRequest, "trackId is required")
		return
	}
	playlist, err := h.playlistRepo.AddTrack(r.Context(), mux.Vars(r)["id"], req.TrackID)
	if err != nil {
		writeErr(w, r, err, "Failed to add track to playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *APIHandler) RemoveFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playlist, err := h.playlistRepo.RemoveTrack(r.Context(), vars["id"], vars["trackId"])
	if err != nil {
		writeErr(w, r, err, "Failed to remove track from playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}
