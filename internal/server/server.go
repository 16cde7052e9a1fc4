// Package server provides the no-cache static file server.
// It serves files from a root directory with the standard library file server,
// stamps every response with headers that defeat client and proxy caches,
// and writes a timestamped access-log line for every request.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultPort is the fixed port the server listens on.
	DefaultPort = 5000
	// DefaultBindAddress binds the listener on all interfaces.
	DefaultBindAddress = "0.0.0.0"
)

// Server serves a directory tree with caching disabled.
type Server struct {
	root   string
	stdout io.Writer
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Server rooted at root. The startup banner and access-log
// lines go to stdout; diagnostics go to logger.
func New(root string, stdout io.Writer, logger *slog.Logger) *Server {
	if root == "" {
		root = "."
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		root:   root,
		stdout: stdout,
		logger: logger,
		now:    time.Now,
	}
}

// Handler returns the request handler: GET and HEAD are served from the root,
// other methods get 405, and every response carries the no-cache headers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /", newFileHandler(s.root))

	return s.logRequests(noCache(rejectAsteriskTarget(mux)))
}

// rejectAsteriskTarget answers "OPTIONS *" with 405 like any other unsupported
// method. ServeMux would reply 400 to an asterisk target.
func rejectAsteriskTarget(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.RequestURI == "*" {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Listen opens the TCP listener. Any failure is returned as a *BindError.
func Listen(port int, bindAddress string) (net.Listener, error) {
	if bindAddress == "" {
		bindAddress = DefaultBindAddress
	}
	addr := net.JoinHostPort(bindAddress, strconv.Itoa(port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	return ln, nil
}

// Start binds bindAddress:port, prints the startup banner and serves until
// ctx is cancelled. The listener is closed before Start returns.
func (s *Server) Start(ctx context.Context, port int, bindAddress string) error {
	if bindAddress == "" {
		bindAddress = DefaultBindAddress
	}

	ln, err := Listen(port, bindAddress)
	if err != nil {
		return err
	}
	defer func() {
		_ = ln.Close()
	}()

	s.printBanner(bindAddress, port)
	s.logger.Info("server listening", "addr", ln.Addr().String(), "root", s.root)

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or the listener
// fails. Cancellation is a clean stop and returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Requests net/http rejects before routing (unparseable request line,
	// missing Host, oversized headers) get its bare 400/431 and no access line.
	httpServer := &http.Server{
		Handler:                      s.Handler(),
		DisableGeneralOptionsHandler: true,
		ErrorLog:                     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("stopping server", "reason", context.Cause(ctx))
		if err := httpServer.Close(); err != nil {
			s.logger.Warn("failed to close server", "error", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", ln.Addr(), err)
	}
}

func (s *Server) printBanner(bindAddress string, port int) {
	url := "http://" + net.JoinHostPort(bindAddress, strconv.Itoa(port)) + "/"

	fmt.Fprintf(s.stdout, "\n--- No-cache server starting ---\n")
	fmt.Fprintf(s.stdout, "Server running at %s\n", url)
	fmt.Fprintf(s.stdout, "Local files will not be cached by the browser\n")
	fmt.Fprintf(s.stdout, "Press Ctrl+C to stop the server\n\n")
}
