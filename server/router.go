package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every API route on a gorilla/mux router.
func NewRouter(h *APIHandler, authLimiter *clientLimiter) *mux.Router {
	router := mux.NewRouter()
	router.Use(recoverMiddleware, loggingMiddleware, corsMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	// tracks
	api.HandleFunc("/tracks", h.GetTracksHandler).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{id}", h.GetTrackHandler).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{id}", h.UpdateTrackHandler).Methods(http.MethodPut)
	api.HandleFunc("/tracks/{id}/like", h.ToggleLikeHandler).Methods(http.MethodPost)
	api.HandleFunc("/tracks/{id}/audio", h.AudioHandler).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/tracks/{id}/audio", h.UploadAudioHandler).Methods(http.MethodPost)

	// artists and albums, read-only
	api.HandleFunc("/artists", h.GetArtistsHandler).Methods(http.MethodGet)
	api.HandleFunc("/artists/{id}", h.GetArtistHandler).Methods(http.MethodGet)
	api.HandleFunc("/artists/{id}/tracks", h.GetArtistTracksHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums", h.GetAlbumsHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums/{id}", h.GetAlbumHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums/{id}/tracks", h.GetAlbumTracksHandler).Methods(http.MethodGet)

	// playlists
	api.HandleFunc("/playlists", h.GetPlaylistsHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlists", h.CreatePlaylistHandler).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id}", h.GetPlaylistHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}", h.UpdatePlaylistHandler).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id}", h.DeletePlaylistHandler).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id}/tracks", h.GetPlaylistTracksHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}/tracks", h.AddToPlaylistHandler).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id}/tracks/{trackId}", h.RemoveFromPlaylistHandler).Methods(http.MethodDelete)

	api.HandleFunc("/stats", h.StatsHandler).Methods(http.MethodGet)
	api.HandleFunc("/search", h.SearchHandler).Methods(http.MethodGet)

	// accounts
	api.HandleFunc("/auth/register", authLimiter.middleware(h.RegisterHandler)).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authLimiter.middleware(h.LoginHandler)).Methods(http.MethodPost)
	api.HandleFunc("/auth/profile", h.AuthMiddleware(h.GetProfileHandler)).Methods(http.MethodGet)
	api.HandleFunc("/auth/profile", h.AuthMiddleware(h.UpdateProfileHandler)).Methods(http.MethodPut)

	// history and recommendations
	api.HandleFunc("/history", h.AuthMiddleware(h.AddHistoryHandler)).Methods(http.MethodPost)
	api.HandleFunc("/history", h.AuthMiddleware(h.GetHistoryHandler)).Methods(http.MethodGet)
	api.HandleFunc("/recommendations", h.AuthMiddleware(h.RecommendationsHandler)).Methods(http.MethodGet)

	// import and export
	api.HandleFunc("/import/tracks", h.ImportTracksHandler).Methods(http.MethodPost)
	api.HandleFunc("/import/playlists", h.ImportPlaylistsHandler).Methods(http.MethodPost)
	api.HandleFunc("/export/tracks", h.ExportTracksHandler).Methods(http.MethodGet)
	api.HandleFunc("/backup", h.BackupHandler).Methods(http.MethodGet)
	api.HandleFunc("/restore", h.RestoreHandler).Methods(http.MethodPost)

	// Preflight requests are answered by corsMiddleware, but mux only runs
	// middleware on a matched route.
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.PathPrefix("/").Handler(NewStaticHandler(h.cfg.WebAppDir))
	return router
}
