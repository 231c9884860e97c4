// Package api exposes resolution over a small local HTTP surface, the
// hand-off point for existence-check/upload pipelines that prefer a
// service to a subprocess.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/depscout/depscout/pkg/config"
	"github.com/depscout/depscout/pkg/errors"
	"github.com/depscout/depscout/pkg/export"
	"github.com/depscout/depscout/pkg/repo"
	"github.com/depscout/depscout/pkg/resolve"
	"github.com/depscout/depscout/pkg/scan"
)

// Server wires resolution behind an HTTP router.
type Server struct {
	cfg    *config.Config
	read   resolve.ReadFunc
	logger *log.Logger
}

// NewServer creates a Server. read may be nil to parse descriptors
// without a cache.
func NewServer(cfg *config.Config, read resolve.ReadFunc, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, read: read, logger: logger}
}

// Router builds the HTTP routes:
//
//	GET  /healthz  - liveness probe
//	POST /resolve  - resolve root descriptor paths into a coordinate report
//	POST /scan     - scan directories, resolve findings, expand versions
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/resolve", s.handleResolve)
	r.Post("/scan", s.handleScan)
	return r
}

type resolveRequest struct {
	// Roots are descriptor file paths to resolve.
	Roots []string `json:"roots"`
	// Edges includes the provenance edges in the response.
	Edges bool `json:"edges"`
}

type scanRequest struct {
	// Dirs are directory trees to scan for descriptors.
	Dirs []string `json:"dirs"`
	// Edges includes the provenance edges in the response.
	Edges bool `json:"edges"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Roots) == 0 {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "roots required"))
		return
	}

	layout, err := repo.NewLayout(s.cfg.RepoRoot)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rc := resolve.NewContext(layout)
	resolver := resolve.NewResolver(layout, s.read, resolve.Options{
		Logger: s.logger.Debugf,
	})
	if err := resolver.ResolveAll(r.Context(), req.Roots, rc); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	s.logger.Info("resolved", "run", rc.RunID, "roots", len(req.Roots), "coordinates", rc.Collector.Len())
	writeJSON(w, http.StatusOK, export.BuildReport(rc, req.Edges))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Dirs) == 0 {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "dirs required"))
		return
	}

	layout, err := repo.NewLayout(s.cfg.RepoRoot)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	scanner := scan.NewScanner(s.cfg.SkipDirs, s.logger.Debugf)
	descriptors, err := scanner.Scan(req.Dirs)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidPath, err, "scan"))
		return
	}

	rc := resolve.NewContext(layout)
	resolver := resolve.NewResolver(layout, s.read, resolve.Options{
		Logger: s.logger.Debugf,
	})
	if err := resolver.ResolveAll(r.Context(), descriptors, rc); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	// Completeness pass over every locally cached version.
	extra := scan.ExpandVersions(layout, rc.Collector.List())
	if err := resolver.ResolveAll(r.Context(), extra, rc); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	s.logger.Info("scanned", "run", rc.RunID, "descriptors", len(descriptors), "coordinates", rc.Collector.Len())
	writeJSON(w, http.StatusOK, export.BuildReport(rc, req.Edges))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.UserMessage(err),
	})
}
