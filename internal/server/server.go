// Package server exposes the bridge over HTTP for front-ends that cannot
// spawn processes themselves.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/positivepasswordbook/ppbbridge/internal/bridge"
)

// MaxFileBytes caps the body accepted by the file endpoint.
const MaxFileBytes = 32 << 20

// Bridge is the part of *bridge.Bridge the server needs.
type Bridge interface {
	TextIO(ctx context.Context, actions []string, baseDir string) (string, error)
	WriteFile(path string, data []byte) error
}

// TextIORequest is the body of POST /api/v1/text-io.
type TextIORequest struct {
	Actions []string `json:"actions"`
	BaseDir string   `json:"base_dir,omitempty"`
}

// TextIOResponse carries the backend's stdout.
type TextIOResponse struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

const (
	ErrTypeBadRequest  = "bad_request"
	ErrTypeForbidden   = "forbidden"
	ErrTypeSpawnFailed = "spawn_failed"
	ErrTypeIO          = "io_failed"
	ErrTypeInternal    = "internal"
)

// Server handles HTTP requests
type Server struct {
	bridge         Bridge
	defaultBaseDir string
	logger         *log.Logger
	startTime      time.Time

	allowBaseDirOverride bool
}

// New creates a server. defaultBaseDir is used when a request names none.
func New(b Bridge, defaultBaseDir string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		bridge:         b,
		defaultBaseDir: defaultBaseDir,
		logger:         logger,
		startTime:      time.Now(),
	}
}

// SetAllowBaseDirOverride lets requests name a base_dir other than the
// server's default. It is off by default, so a request can only spawn the
// backend under the configured directory.
func (s *Server) SetAllowBaseDirOverride(allow bool) {
	s.allowBaseDirOverride = allow
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.AllowContentType("application/json")).Post("/text-io", s.handleTextIO)
		r.Put("/files", s.handleWriteFile)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleTextIO(w http.ResponseWriter, r *http.Request) {
	var req TextIORequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	baseDir := s.defaultBaseDir
	if req.BaseDir != "" && filepath.Clean(req.BaseDir) != filepath.Clean(s.defaultBaseDir) {
		if !s.allowBaseDirOverride {
			s.writeError(w, r, http.StatusForbidden, ErrTypeForbidden, "base_dir override is disabled")
			return
		}
		baseDir = req.BaseDir
	}

	output, err := s.bridge.TextIO(r.Context(), req.Actions, baseDir)
	if err != nil {
		var exitErr *bridge.ExitError
		switch {
		case errors.As(err, &exitErr):
			s.writeJSON(w, http.StatusOK, TextIOResponse{
				Output:   output,
				ExitCode: exitErr.Code,
				Error:    err.Error(),
			})
		case errors.Is(err, bridge.ErrSpawnFailed):
			s.writeError(w, r, http.StatusBadGateway, ErrTypeSpawnFailed, err.Error())
		default:
			s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, TextIOResponse{Output: output})
}

func (s *Server) handleWriteFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeBadRequest, "missing path query parameter")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxFileBytes))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeBadRequest, "failed to read body: "+err.Error())
		return
	}

	if err := s.bridge.WriteFile(path, data); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeIO, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("failed to encode response: %v", err)
	}
}

// writeError writes a structured error response
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	requestID := middleware.GetReqID(r.Context())
	s.logger.Printf("%s %s -> %d %s: %s [%s]", r.Method, r.URL.Path, status, errType, message, requestID)
	s.writeJSON(w, status, ErrorResponse{
		Type:      errType,
		Message:   message,
		RequestID: requestID,
	})
}
