package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// AccessLogTimeLayout is the local-time prefix of every access-log line.
const AccessLogTimeLayout = "2006-01-02 15:04:05"

var accessLogMu sync.Mutex

// RequestIDHeader carries the ID that ties a response to its debug log entry.
const RequestIDHeader = "X-Request-ID"

// logRequests writes one access-log line to stdout per request, after the
// response has been handed off. Every response gets a request ID header; at
// debug level the same ID appears in a structured trace.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := ulid.Make().String()
		w.Header().Set(RequestIDHeader, requestID)
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		s.writeAccessLine(r, status)

		if s.logger.Enabled(r.Context(), slog.LevelDebug) {
			s.logger.Debug("request served",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", rec.written,
				"duration", time.Since(start))
		}
	})
}

// writeAccessLine formats
//
//	[2006-01-02 15:04:05] 127.0.0.1 - "GET /index.html HTTP/1.1" 200 -
//
// with the timestamp read when the line is written.
func (s *Server) writeAccessLine(r *http.Request, status int) {
	accessLogMu.Lock()
	defer accessLogMu.Unlock()

	ts := s.now().Local().Format(AccessLogTimeLayout)
	fmt.Fprintf(s.stdout, "[%s] %s - \"%s %s %s\" %d -\n",
		ts, clientHost(r.RemoteAddr), r.Method, requestTarget(r), r.Proto, status)
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func requestTarget(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

func (r *statusRecorder) FlushError() error {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return http.NewResponseController(r.ResponseWriter).Flush()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
