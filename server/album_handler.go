package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// GetArtistsHandler returns every artist.
func (h *APIHandler) GetArtistsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.artistRepo.GetAllArtists(r.Context()))
}

func (h *APIHandler) GetArtistHandler(w http.ResponseWriter, r *http.Request) {
	artist, err := h.artistRepo.GetArtistByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to fetch artist")
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

// GetArtistTracksHandler returns the tracks credited to the artist by name.
func (h *APIHandler) GetArtistTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.library.ArtistTracks(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to fetch artist tracks")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// GetAlbumsHandler returns every album.
func (h *APIHandler) GetAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.albumRepo.GetAllAlbums(r.Context()))
}

func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	album, err := h.albumRepo.GetAlbumByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to fetch album")
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// GetAlbumTracksHandler returns the tracks whose album name matches the album title.
func (h *APIHandler) GetAlbumTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.library.AlbumTracks(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to fetch album tracks")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}
