package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"MusicFlow/config"
	"MusicFlow/core/auth"
	"MusicFlow/core/library"
	"MusicFlow/core/transfer"
	"MusicFlow/logger"
	"MusicFlow/model"
	"MusicFlow/repository"
	"MusicFlow/storage"
)

// APIHandler serves every API route.
type APIHandler struct {
	store        *storage.Store
	trackRepo    repository.TrackRepository
	artistRepo   repository.ArtistRepository
	albumRepo    repository.AlbumRepository
	playlistRepo repository.PlaylistRepository
	userRepo     repository.UserRepository
	auth         *auth.Service
	library      *library.Library
	transfer     *transfer.Service
	audioStore   storage.AudioStore
	cfg          *config.Config
	now          func() time.Time
}

// NewAPIHandler wires the repositories and services over one store.
func NewAPIHandler(store *storage.Store, audioStore storage.AudioStore, cfg *config.Config) *APIHandler {
	tracks := repository.NewJSONTrackRepository(store)
	artists := repository.NewJSONArtistRepository(store)
	albums := repository.NewJSONAlbumRepository(store)
	playlists := repository.NewJSONPlaylistRepository(store)
	users := repository.NewJSONUserRepository(store)
	history := repository.NewJSONHistoryRepository(store)

	return &APIHandler{
		store:        store,
		trackRepo:    tracks,
		artistRepo:   artists,
		albumRepo:    albums,
		playlistRepo: playlists,
		userRepo:     users,
		auth:         auth.NewService(users, cfg.JWTSecret),
		library: library.New(tracks, artists, albums, playlists, history, library.Options{
			HistoryLimit: cfg.HistoryLimit,
			SampleSize:   cfg.RecommendationSize,
		}),
		transfer:   transfer.NewService(tracks, playlists),
		audioStore: audioStore,
		cfg:        cfg,
		now:        time.Now,
	}
}

// HealthHandler reports that the server is up.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatsHandler returns library-wide aggregates.
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.Stats(r.Context()))
}

// SearchHandler matches ?q= against tracks, artists and albums.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.Search(r.Context(), r.URL.Query().Get("q")))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeErr maps a domain error onto a status code. Unrecognized errors are
// logged and reported as a generic 500 with the given fallback message.
func writeErr(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *model.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, storage.ErrAudioNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, transfer.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusBadRequest, "upload exceeds the maximum size")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		logger.Error(fallback,
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewValidationError("", "request body is required")
		}
		return model.NewValidationError("", "invalid request body")
	}
	return nil
}
