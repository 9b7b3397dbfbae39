package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"MusicFlow/core/transfer"
)

// upload is the document carried by an import or restore request.
type upload struct {
	data        []byte
	contentType string
	filename    string
}

// readUpload accepts either a multipart form with a "file" field or a raw body.
func (h *APIHandler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, uploadError(err)
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, uploadError(err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, uploadError(err)
		}
		return &upload{data: data, contentType: header.Header.Get("Content-Type"), filename: header.Filename}, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, uploadError(err)
	}
	return &upload{data: data, contentType: r.Header.Get("Content-Type")}, nil
}

// ImportTracksHandler appends the tracks of an uploaded JSON or CSV document.
func (h *APIHandler) ImportTracksHandler(w http.ResponseWriter, r *http.Request) {
	h.importDocument(w, r, h.transfer.ImportTracks)
}

// ImportPlaylistsHandler appends the playlists of an uploaded JSON or CSV document.
func (h *APIHandler) ImportPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	h.importDocument(w, r, h.transfer.ImportPlaylists)
}

type importFunc func(ctx context.Context, format string, r io.Reader, progress transfer.Progress) (transfer.Result, error)

func (h *APIHandler) importDocument(w http.ResponseWriter, r *http.Request, run importFunc) {
	up, err := h.readUpload(w, r)
	if err != nil {
		writeErr(w, r, err, "Import failed")
		return
	}
	format, err := transfer.DetectFormat(r.URL.Query().Get("format"), up.contentType, up.filename)
	if err != nil {
		writeErr(w, r, err, "Import failed")
		return
	}

	result, err := run(r.Context(), format, bytes.NewReader(up.data), nil)
	if err != nil {
		writeErr(w, r, err, "Import failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExportTracksHandler downloads every track as json, csv or m3u.
func (h *APIHandler) ExportTracksHandler(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = transfer.FormatJSON
	}
	switch format {
	case transfer.FormatJSON, transfer.FormatCSV, transfer.FormatM3U:
	default:
		writeErr(w, r, fmt.Errorf("%w: %s", transfer.ErrUnsupportedFormat, format), "Export failed")
		return
	}

	var buf bytes.Buffer
	if err := transfer.ExportTracks(&buf, format, h.trackRepo.GetAllTracks(r.Context())); err != nil {
		writeErr(w, r, err, "Export failed")
		return
	}
	w.Header().Set("Content-Type", transfer.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tracks.%s"`, format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// BackupHandler downloads a snapshot of the library collections.
func (h *APIHandler) BackupHandler(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	backup := transfer.CreateBackup(r.Context(), h.store, now)

	var buf bytes.Buffer
	if err := backup.Encode(&buf); err != nil {
		writeErr(w, r, err, "Backup failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="musicflow-backup-%s.json"`, now.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// RestoreHandler overwrites each collection present in the uploaded backup.
func (h *APIHandler) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	up, err := h.readUpload(w, r)
	if err != nil {
		writeErr(w, r, err, "Restore failed")
		return
	}
	restored, err := transfer.Restore(r.Context(), h.store, up.data)
	if err != nil {
		writeErr(w, r, err, "Restore failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Backup restored",
		"restored": restored,
	})
}
