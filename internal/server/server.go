// Package server exposes the search engine over HTTP: a REST surface and a
// JSON-RPC 2.0 endpoint that start, inspect and cancel asynchronous search
// jobs described by plans.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/copyleftdev/heuristics/internal/config"
	apperrors "github.com/copyleftdev/heuristics/internal/errors"
	"github.com/copyleftdev/heuristics/internal/experiment"
	"github.com/copyleftdev/heuristics/internal/logging"
	"github.com/copyleftdev/heuristics/internal/metrics"
	"github.com/copyleftdev/heuristics/internal/plan"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Server implements the HTTP and JSON-RPC server for the search service.
type Server struct {
	cfg      *config.Config
	logger   Logger
	engine   *zap.Logger
	recorder *metrics.Recorder

	jobs  *jobStore
	slots chan struct{}
	wg    sync.WaitGroup
}

// NewServer creates a new server instance. recorder may be nil.
func NewServer(cfg *config.Config, logger Logger, recorder *metrics.Recorder) *Server {
	workers := cfg.Search.Workers
	if workers < 1 {
		workers = 1
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		engine:   logging.NewZapLogger(logger.WithFields(map[string]interface{}{"component": "engine"})),
		recorder: recorder,
		jobs:     newJobStore(),
		slots:    make(chan struct{}, workers),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/search/{id}", s.handleCancel)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// start validates p against the service limits and schedules it.
func (s *Server) start(p plan.Plan) (Status, error) {
	if err := p.Validate(); err != nil {
		return Status{}, apperrors.Wrap(err, "invalid plan")
	}
	if err := s.checkLimits(p); err != nil {
		return Status{}, err
	}
	// Surface constructor errors synchronously.
	if _, _, err := plan.Build(p, p.Seed, nil); err != nil {
		return Status{}, apperrors.Wrap(err, "invalid plan")
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := s.jobs.create(p, cancel)

	s.wg.Add(1)
	go s.run(ctx, j.id, p)

	s.logger.Info("Search submitted", map[string]interface{}{
		"search_id": j.id,
		"plan":      p.Label(),
		"trials":    p.Trials,
	})
	st, _ := s.jobs.status(j.id, s.cfg.Search.TraceLimit)
	return st, nil
}

// checkLimits rejects plans whose size parameters exceed the service limits.
// It runs before Build so that oversized objectives are never allocated.
func (s *Server) checkLimits(p plan.Plan) error {
	lim := s.cfg.Search
	h := p.Heuristic
	if h.MaxEval > lim.MaxEval {
		return apperrors.Errorf(apperrors.KindInvalid,
			"maxeval %d exceeds the service limit %d", h.MaxEval, lim.MaxEval)
	}
	if p.Trials > lim.MaxTrials {
		return apperrors.Errorf(apperrors.KindInvalid,
			"trials %d exceeds the service limit %d", p.Trials, lim.MaxTrials)
	}
	switch p.Objective.Kind {
	case plan.ObjectiveTSPGrid:
		a, b := p.Objective.A, p.Objective.B
		if a > 0 && b > 0 && a > lim.MaxCities/b {
			return apperrors.Errorf(apperrors.KindInvalid,
				"grid %dx%d exceeds the service limit of %d cities", a, b, lim.MaxCities)
		}
	case plan.ObjectiveDeJong1:
		if p.Objective.N > lim.MaxDimension {
			return apperrors.Errorf(apperrors.KindInvalid,
				"dimension %d exceeds the service limit %d", p.Objective.N, lim.MaxDimension)
		}
	}
	for _, size := range []struct {
		name  string
		value int
	}{{"n", h.N}, {"m", h.M}, {"population", h.Population}} {
		if size.value > lim.MaxEval {
			return apperrors.Errorf(apperrors.KindInvalid,
				"%s %d exceeds the service limit %d", size.name, size.value, lim.MaxEval)
		}
	}
	return nil
}

// run executes a job once a worker slot is free. A job cancelled while it
// runs keeps its cancelled state and its result is discarded.
func (s *Server) run(ctx context.Context, id string, p plan.Plan) {
	defer s.wg.Done()

	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-s.slots }()

	if !s.jobs.transition(id, StateRunning, nil) {
		return
	}
	if s.recorder != nil {
		s.recorder.JobStarted()
		defer s.recorder.JobFinished()
	}

	opts := []experiment.Option{experiment.WithResults(true)}
	if s.recorder != nil {
		opts = append(opts, experiment.WithObserver(s.recorder))
	}
	runner := experiment.NewRunner(s.cfg.Search.Workers, s.engine.With(zap.String("search_id", id)), opts...)
	summary, err := runner.Run(ctx, p)

	if err != nil {
		if s.jobs.transition(id, StateFailed, func(j *job) { j.err = err.Error() }) {
			s.logger.Error("Search failed", map[string]interface{}{
				"search_id": id,
				"error":     err.Error(),
			})
		}
		return
	}
	if s.jobs.transition(id, StateCompleted, func(j *job) { j.summary = summary }) {
		s.logger.Info("Search completed", map[string]interface{}{
			"search_id": id,
			"rel":       float64(summary.Reliability),
		})
	}
}

func (s *Server) status(id string) (Status, error) {
	st, ok := s.jobs.status(id, s.cfg.Search.TraceLimit)
	if !ok {
		return Status{}, apperrors.Errorf(apperrors.KindNotFound, "search %s not found", id)
	}
	return st, nil
}

func (s *Server) cancel(id string) (Status, error) {
	st, err := s.status(id)
	if err != nil {
		return Status{}, err
	}
	var cancel context.CancelFunc
	if !s.jobs.transition(id, StateCancelled, func(j *job) { cancel = j.cancel }) {
		return Status{}, apperrors.Errorf(apperrors.KindConflict, "cannot cancel search with status %s", st.State)
	}
	if cancel != nil {
		cancel()
	}
	s.logger.Info("Search cancelled", map[string]interface{}{"search_id": id})
	return s.status(id)
}

// Close cancels every job and waits for their goroutines.
func (s *Server) Close() error {
	s.jobs.cancelAll()
	s.wg.Wait()
	return nil
}

// handleSearch handles POST /api/v1/search. The body is a plan.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		apperrors.WriteJSON(w, apperrors.Wrap(err, "cannot read request body").WithKind(apperrors.KindInvalid))
		return
	}
	p, err := plan.Parse(body)
	if err != nil {
		apperrors.WriteJSON(w, apperrors.Wrap(err, "invalid plan"))
		return
	}
	st, err := s.start(p)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

// handleStatus handles GET /api/v1/status/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.status(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleCancel handles DELETE /api/v1/search/{id}.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	st, err := s.cancel(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// searchID reads the job id of RPC params: {"search_id": "..."}.
func searchID(params gjson.Result) (string, error) {
	id := params.Get("search_id").String()
	if id == "" {
		return "", apperrors.New(apperrors.KindInvalid, "search_id is required")
	}
	return id, nil
}
