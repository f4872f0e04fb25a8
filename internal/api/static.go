package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ihcair/fleetdash/pkg/logger"
)

// StaticFileHandler serves the built frontend. Unknown paths fall back to
// index.html so client-side routing works.
type StaticFileHandler struct {
	root   string
	fs     http.Handler
	logger *logger.Logger
}

// NewStaticFileHandler creates a static file handler rooted at dir
func NewStaticFileHandler(dir string, log *logger.Logger) *StaticFileHandler {
	return &StaticFileHandler{
		root:   dir,
		fs:     http.FileServer(http.Dir(dir)),
		logger: log.Named("static"),
	}
}

func (s *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.root, filepath.Clean("/"+r.URL.Path))

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if !strings.HasPrefix(filepath.Base(r.URL.Path), ".") {
			http.ServeFile(w, r, filepath.Join(s.root, "index.html"))
			return
		}
		http.NotFound(w, r)
		return
	}

	s.fs.ServeHTTP(w, r)
}
