// Package server exposes a compiled batch of pipelines over HTTP. It is read-only: the
// snapshot it serves is fixed when the server is created.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/askiada/cicd-assembler/internal/ctxlog"
	"github.com/askiada/cicd-assembler/internal/output"
	"github.com/askiada/cicd-assembler/pkg/pipeline"
	"github.com/askiada/cicd-assembler/pkg/pipeline/drawer"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

const shutdownTimeout = 5 * time.Second

// Server serves a compiled report.
type Server struct {
	report output.Report
	byName map[string]*model.PipelineGraph
	drawer drawer.Drawer
}

// PipelineSummary is the list view of a pipeline.
type PipelineSummary struct {
	Name         string                `json:"name"`
	Repository   string                `json:"repository"`
	Branch       string                `json:"branch"`
	Environments []model.EnvironmentID `json:"environments"`
}

// New creates a server over report. d renders the /dot endpoint.
func New(report output.Report, d drawer.Drawer) *Server {
	byName := make(map[string]*model.PipelineGraph, len(report.Pipelines))
	for _, pg := range report.Pipelines {
		byName[pg.Name] = pg
	}

	return &Server{report: report, byName: byName, drawer: d}
}

// Routes returns the HTTP handler of the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/pipelines", s.handleListPipelines)
	r.Route("/pipelines/{name}", func(r chi.Router) {
		r.Get("/", s.handleGetPipeline)
		r.Get("/dot", s.handleGetDOT)
		r.Get("/path/{env}", s.handleGetPath)
	})
	r.Get("/errors", s.handleListErrors)

	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := ctxlog.FromContext(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("serving compiled pipelines", "addr", addr, "pipelines", len(s.report.Pipelines))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return errors.Wrapf(err, "unable to serve on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx) //nolint:contextcheck // ctx is already done
	if err != nil {
		return errors.Wrap(err, "unable to shut down server")
	}

	return nil
}

func (s *Server) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	summaries := make([]PipelineSummary, 0, len(s.report.Pipelines))
	for _, pg := range s.report.Pipelines {
		summary := PipelineSummary{
			Name:         pg.Name,
			Repository:   pg.Repository,
			Branch:       pg.Branch,
			Environments: []model.EnvironmentID{},
		}
		for _, stage := range pg.Stages {
			if stage.Kind == model.DeployKind {
				summary.Environments = append(summary.Environments, stage.Environment)
			}
		}
		summaries = append(summaries, summary)
	}

	writeJSON(r.Context(), w, http.StatusOK, summaries)
}

func (s *Server) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.lookup(w, r)
	if !ok {
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, pg)
}

func (s *Server) handleGetDOT(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := s.drawer.Draw(&buf, pg)
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("unable to draw pipeline", "pipeline", pg.Name, "error", err)
		http.Error(w, "unable to draw pipeline", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleGetPath(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.lookup(w, r)
	if !ok {
		return
	}

	env := model.EnvironmentID(chi.URLParam(r, "env"))
	actions, err := pipeline.PromotionPath(pg, env)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, output.PathReport{Pipeline: pg.Name, Environment: env, Actions: actions})
}

func (s *Server) handleListErrors(w http.ResponseWriter, r *http.Request) {
	rejections := s.report.Errors
	if rejections == nil {
		rejections = []output.Rejection{}
	}

	writeJSON(r.Context(), w, http.StatusOK, rejections)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*model.PipelineGraph, bool) {
	name := chi.URLParam(r, "name")
	pg, ok := s.byName[name]
	if !ok {
		http.Error(w, "pipeline not found", http.StatusNotFound)
	}

	return pg, ok
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		ctxlog.FromContext(ctx).Error("unable to encode response", "error", err)
	}
}
