package server

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const indexPage = "/index.html"

// fileHandler serves the root with the standard file server, except that an
// explicit request for an index.html file is answered with the file itself.
// http.FileServer would redirect it to the parent directory instead.
type fileHandler struct {
	fs   http.FileSystem
	next http.Handler
}

func newFileHandler(root string) http.Handler {
	dir := http.Dir(root)
	return &fileHandler{fs: dir, next: http.FileServer(dir)}
}

func (h *fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}
	if !strings.HasSuffix(upath, indexPage) {
		h.next.ServeHTTP(w, r)
		return
	}

	f, err := h.fs.Open(path.Clean(upath))
	if err != nil {
		msg, code := toHTTPError(err)
		http.Error(w, msg, code)
		return
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		msg, code := toHTTPError(err)
		http.Error(w, msg, code)
		return
	}
	if info.IsDir() {
		h.next.ServeHTTP(w, r)
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// toHTTPError maps filesystem errors the same way the standard file server does.
func toHTTPError(err error) (string, int) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "404 page not found", http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return "403 Forbidden", http.StatusForbidden
	default:
		return "500 Internal Server Error", http.StatusInternalServerError
	}
}
