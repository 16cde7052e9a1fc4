package server

import "net/http"

// Cache-defeating header values written on every response.
const (
	CacheControlValue = "no-store, no-cache, must-revalidate, max-age=0"
	PragmaValue       = "no-cache"
	ExpiresValue      = "0"
)

// noCache stamps the no-cache headers onto every response. The headers are
// set when the status line is committed, after the wrapped handler is done
// editing the header map, because the file server drops Cache-Control on its
// error path.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nw := &noCacheWriter{ResponseWriter: w}
		next.ServeHTTP(nw, r)
		if !nw.wroteHeader {
			nw.WriteHeader(http.StatusOK)
		}
	})
}

type noCacheWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *noCacheWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		setNoCacheHeaders(w.Header())
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *noCacheWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// FlushError commits the headers before flushing so an early flush still
// carries them.
func (w *noCacheWriter) FlushError() error {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return http.NewResponseController(w.ResponseWriter).Flush()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *noCacheWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func setNoCacheHeaders(h http.Header) {
	h.Set("Cache-Control", CacheControlValue)
	h.Set("Pragma", PragmaValue)
	h.Set("Expires", ExpiresValue)
}
