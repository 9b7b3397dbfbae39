package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// StaticHandler serves the built web UI. Paths that do not name a file fall
// back to index.html so client-side routes resolve.
type StaticHandler struct {
	dir        string
	fileServer http.Handler
}

// NewStaticHandler serves the built UI from dir.
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir, fileServer: http.FileServer(http.Dir(dir))}
}

// ServeHTTP implements http.Handler.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	clean := filepath.Clean("/" + r.URL.Path)
	if info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
		h.fileServer.ServeHTTP(w, r)
		return
	}

	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	http.ServeFile(w, r, index)
}
