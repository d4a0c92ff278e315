// Package server exposes translations over HTTP: uploaded catalogs are
// converted into narrative documents or a spreadsheet test suite, and the
// built-in templates can be downloaded.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/papapumpkin/usecase/internal/history"
	"github.com/papapumpkin/usecase/internal/narrative"
)

// Default configuration values.
const (
	DefaultAddr          = ":8080"
	DefaultMaxUploadMB   = 32
	DefaultTemplateCache = 64
)

// Config holds the server settings. Zero values select the defaults.
type Config struct {
	Addr          string
	MaxUploadMB   int64
	TemplateCache int
	Version       string
	// Log receives one line per request failure. Nil means os.Stderr.
	Log io.Writer
	// History, when set, records every translation.
	History *history.Store
}

// Server serves the translation API.
type Server struct {
	cfg       Config
	renderers *narrative.Cache
	srv       *http.Server
	ln        net.Listener
}

// New creates a server. It does not listen until Start is called.
func New(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = DefaultMaxUploadMB
	}
	if cfg.TemplateCache <= 0 {
		cfg.TemplateCache = DefaultTemplateCache
	}
	if cfg.Log == nil {
		cfg.Log = os.Stderr
	}
	cache, err := narrative.NewCache(cfg.TemplateCache)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, renderers: cache}, nil
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/1.0/translations/use-case", s.translateUseCase)
	mux.HandleFunc("POST /api/1.0/translations/test-suite", s.translateTestSuite)
	mux.HandleFunc("GET /api/1.0/templates/use-case/catalog", s.catalogTemplate)
	mux.HandleFunc("GET /api/1.0/templates/use-case/scenario-set", s.scenarioSetTemplate)
	mux.HandleFunc("GET /api/1.0/templates/test-suite/excel", s.excelTemplate)
	mux.HandleFunc("GET /api/1.0/version", s.version)
	return mux
}

// Start listens on the configured address and serves HTTP/1.1 and cleartext
// HTTP/2 in the background. It returns once the listener is open.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(s.cfg.Log, "server: serve error: %v\n", err)
		}
	}()
	return nil
}

// Addr returns the listener address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	if s.ln != nil {
		return s.ln.Addr()
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(struct {
		Version string `json:"version"`
	}{Version: s.cfg.Version})
}

// fail reports a client error with its message as the body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	fmt.Fprintf(s.cfg.Log, "server: %s %s: %d %s\n", r.Method, r.URL.Path, status, msg)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	fmt.Fprintln(w, msg)
}
