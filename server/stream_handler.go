package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"MusicFlow/core/transfer"
	"MusicFlow/logger"
	"MusicFlow/model"
	"MusicFlow/storage"

	"github.com/gorilla/mux"
)

// AudioHandler serves the audio file of a track. The first stored file among
// the configured formats wins, in configuration order.
func (h *APIHandler) AudioHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	track, err := h.trackRepo.GetTrackByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to fetch track")
		return
	}

	for _, ext := range h.cfg.AudioFormats {
		name := storage.AudioFileName(track.ID, ext)
		file, err := h.audioStore.Open(ctx, name)
		if errors.Is(err, storage.ErrAudioNotFound) {
			continue
		}
		if err != nil {
			writeErr(w, r, err, "Failed to open audio file")
			return
		}
		defer file.Close()

		w.Header().Set("Content-Type", storage.ContentTypeFor(name))
		w.Header().Set("Accept-Ranges", "bytes")
		http.ServeContent(w, r, name, file.ModTime, file)
		return
	}
	writeError(w, http.StatusNotFound, "Audio file not found")
}

// UploadAudioHandler stores the multipart "file" field as the track's audio.
func (h *APIHandler) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	track, err := h.trackRepo.GetTrackByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err, "Failed to fetch track")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErr(w, r, uploadError(err), "Failed to read upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'file' in form")
		return
	}
	defer file.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if !h.supportedFormat(ext) {
		writeErr(w, r, model.NewValidationError("file",
			"unsupported audio format, expected one of "+strings.Join(h.cfg.AudioFormats, ", ")), "")
		return
	}
	if header.Size > h.cfg.MaxUploadSize {
		writeErr(w, r, model.NewValidationError("file", "exceeds the maximum upload size"), "")
		return
	}

	name := storage.AudioFileName(track.ID, ext)
	if err := h.audioStore.Save(ctx, name, file, header.Size, storage.ContentTypeFor(name)); err != nil {
		writeErr(w, r, err, "Failed to save audio file")
		return
	}

	logger.Info("audio uploaded",
		logger.String("trackId", track.ID),
		logger.String("file", name),
		logger.Int64("size", header.Size))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"trackId": track.ID,
		"file":    name,
		"size":    header.Size,
		"url":     transfer.AudioURL(track.ID),
	})
}

func (h *APIHandler) supportedFormat(ext string) bool {
	for _, f := range h.cfg.AudioFormats {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}

// uploadError reports an oversized or unreadable multipart body as a
// validation failure.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return model.NewValidationError("file", "exceeds the maximum upload size")
	}
	return model.NewValidationError("file", "invalid multipart form")
}
