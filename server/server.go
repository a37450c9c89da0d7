// Package server exposes an Engine over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /metrics
//	GET    /runs
//	POST   /runs?filename=...
//	GET    /runs/{id}?format=turtle
//	GET    /runs/{id}/outputs
//	DELETE /runs/{id}
//
// Run ids are runstore.Key of the graph IRI.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/geoknoesis/rdf-tabular/dataset"
	"github.com/geoknoesis/rdf-tabular/engine"
	"github.com/geoknoesis/rdf-tabular/rdf"
	"github.com/geoknoesis/rdf-tabular/runstore"
	"github.com/geoknoesis/rdf-tabular/schema"
	"github.com/geoknoesis/rdf-tabular/serialize"
	"github.com/geoknoesis/rdf-tabular/tabular"
)

// DefaultMaxBodyBytes bounds uploaded files.
const DefaultMaxBodyBytes = 64 << 20

type Server struct {
	router   chi.Router
	engine   *engine.Engine
	defaults dataset.FileOptions
	logger   *slog.Logger
	metrics  http.Handler
	maxBody  int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithDefaults sets the file options query parameters are applied to.
func WithDefaults(opts dataset.FileOptions) Option {
	return func(s *Server) { s.defaults = opts }
}

// WithMaxBodyBytes bounds the size of uploaded files.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New builds the router for e.
func New(e *engine.Engine, opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		engine:   e,
		defaults: dataset.DefaultFileOptions(),
		logger:   slog.Default(),
		maxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics)
	}

	s.router.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/outputs", s.handleOutputs)
		r.Delete("/{id}", s.handleDelete)
	})
}

type runView struct {
	ID        string    `json:"id"`
	Graph     string    `json:"graph"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewOf(summary dataset.RunSummary) runView {
	return runView{
		ID:        runstore.Key(summary.GraphIRI),
		Graph:     summary.GraphIRI,
		Filename:  summary.Filename,
		CreatedAt: summary.CreatedAt,
	}
}

type runResponse struct {
	runView
	Quads    int                `json:"quads"`
	Stats    dataset.Stats      `json:"stats"`
	Replaced bool               `json:"replaced"`
	Outputs  *serialize.Outputs `json:"outputs"`
	// Error is set when the run was stored but could not be serialized.
	Error     string `json:"error,omitempty"`
	CodecCode string `json:"codecCode,omitempty"`
}

func responseOf(res *engine.Result, err error) runResponse {
	out := runResponse{
		runView:  viewOf(res.Run.Summary()),
		Quads:    len(res.Run.Quads),
		Stats:    res.Stats,
		Replaced: res.Replaced,
		Outputs:  res.Outputs,
	}
	if err != nil {
		out.Error = err.Error()
		out.CodecCode = string(engine.CodecCode(err))
	}
	return out
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.List(r.Context())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	views := make([]runView, 0, len(list))
	for _, summary := range list {
		views = append(views, viewOf(summary))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filename := query.Get("filename")
	if filename == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("filename query parameter is required"))
		return
	}
	opts, err := optionsFromQuery(query, s.defaults)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()
	res, err := s.engine.Run(r.Context(), engine.Input{Filename: filename, Data: body, Options: &opts})
	if err != nil && res == nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeEngineError(w, err)
		return
	}
	if err != nil {
		s.logger.Error("run stored without outputs", "graph", res.Run.GraphIRI, "codecCode", engine.CodecCode(err), "error", err)
	}
	w.Header().Set("Location", "/runs/"+runstore.Key(res.Run.GraphIRI))
	writeJSON(w, http.StatusCreated, responseOf(res, err))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	graph, ok := s.graphParam(w, r)
	if !ok {
		return
	}
	format := rdf.FormatTurtle
	if v := r.URL.Query().Get("format"); v != "" {
		parsed, ok := rdf.ParseFormat(v)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", rdf.ErrUnsupportedFormat, v))
			return
		}
		format = parsed
	}
	text, err := s.engine.Render(r.Context(), graph, format)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if info, ok := rdf.GetFormatInfo(format); ok {
		w.Header().Set("Content-Type", info.MIMEType+"; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleOutputs(w http.ResponseWriter, r *http.Request) {
	graph, ok := s.graphParam(w, r)
	if !ok {
		return
	}
	res, err := s.engine.Reload(r.Context(), graph)
	if err != nil && res == nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, responseOf(res, err))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	graph, ok := s.graphParam(w, r)
	if !ok {
		return
	}
	if err := s.engine.Delete(r.Context(), graph); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) graphParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	graph, err := runstore.ParseKey(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return "", false
	}
	return graph, true
}

// optionsFromQuery applies query parameters on top of defaults.
func optionsFromQuery(q url.Values, defaults dataset.FileOptions) (dataset.FileOptions, error) {
	opts := defaults
	var err error
	if v := q.Get("header"); v != "" {
		if opts.TreatFirstRowAsHeader, err = strconv.ParseBool(v); err != nil {
			return opts, fmt.Errorf("header: %w", err)
		}
	}
	if v := q.Get("prefixHas"); v != "" {
		if opts.Predicate.PrefixHas, err = strconv.ParseBool(v); err != nil {
			return opts, fmt.Errorf("prefixHas: %w", err)
		}
	}
	if v := q.Get("delimiter"); v != "" {
		if opts.Delimiter, err = tabular.ParseDelimiter(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("casing"); v != "" {
		if opts.Predicate.Casing, err = schema.ParseCasing(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("whenNoHeader"); v != "" {
		if opts.Predicate.WhenNoHeader, err = schema.ParseHeaderMode(v); err != nil {
			return opts, err
		}
	}
	if assignments := q["datatype"]; len(assignments) > 0 {
		datatypes := make(map[string]string, len(defaults.Datatypes)+len(assignments))
		for k, v := range defaults.Datatypes {
			datatypes[k] = v
		}
		for _, a := range assignments {
			key, dt, err := dataset.ParseDatatypeAssignment(a)
			if err != nil {
				return opts, err
			}
			datatypes[key] = dt
		}
		opts.Datatypes = datatypes
	}
	return opts, nil
}

func statusFor(err error) int {
	switch engine.Code(err) {
	case engine.CodeBusy:
		return http.StatusConflict
	case engine.CodeInput:
		return http.StatusBadRequest
	case engine.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	s.logFailure(status, err)
	body := map[string]string{"error": err.Error(), "code": string(engine.Code(err))}
	if codec := engine.CodecCode(err); codec != "" {
		body["codecCode"] = string(codec)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logFailure(status, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) logFailure(status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Warn("request failed", "status", status, "error", err)
	}
}
