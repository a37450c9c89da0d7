// Package engine runs the conversion pipeline: read a grid, derive column
// keys and predicates, mint identifiers, assemble quads, persist the run and
// render it in every syntax.
//
// At most one run is in flight per Engine. Run fails fast with ErrBusy while
// another run holds the engine; Queue waits its turn instead.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/geoknoesis/rdf-tabular/coerce"
	"github.com/geoknoesis/rdf-tabular/dataset"
	"github.com/geoknoesis/rdf-tabular/ident"
	"github.com/geoknoesis/rdf-tabular/rdf"
	"github.com/geoknoesis/rdf-tabular/runstore"
	"github.com/geoknoesis/rdf-tabular/schema"
	"github.com/geoknoesis/rdf-tabular/serialize"
	"github.com/geoknoesis/rdf-tabular/tabular"
)

// Config is the static configuration of an Engine.
type Config struct {
	Namespaces ident.Namespaces
	// Prefixes expand datatype CURIEs; the serializer carries its own copy
	// for Turtle and TriG.
	Prefixes map[string]string
	// Defaults apply to inputs that carry no options.
	Defaults dataset.FileOptions
}

// Validate checks the namespaces.
func (c Config) Validate() error {
	if err := c.Namespaces.Validate(); err != nil {
		return fmt.Errorf("namespaces: %w", err)
	}
	return nil
}

// Input is one file to convert.
type Input struct {
	Filename string
	Data     io.Reader
	// Options overrides Config.Defaults when set.
	Options *dataset.FileOptions
}

// Result is the outcome of a run or a reload.
type Result struct {
	Run     *dataset.StoredRun
	Graph   *dataset.Graph
	Outputs *serialize.Outputs
	Stats   dataset.Stats
	// Replaced is set when the run overwrote an earlier run of the same
	// graph.
	Replaced bool
}

// Engine orchestrates runs against a store.
type Engine struct {
	cfg     Config
	store   runstore.Store
	ser     *serialize.Serializer
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
	tokens  ident.TokenSource
	ids     *ident.Builder

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records runs in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock replaces time.Now for graph dating and createdAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSubjectMinter replaces the random row subject tokens.
func WithSubjectMinter(tokens ident.TokenSource) Option {
	return func(e *Engine) {
		if tokens != nil {
			e.tokens = tokens
		}
	}
}

// New returns an Engine. A nil serializer renders with cfg.Prefixes and the
// default JSON-LD processor.
func New(cfg Config, store runstore.Store, ser *serialize.Serializer, opts ...Option) *Engine {
	if ser == nil {
		ser = serialize.New(cfg.Prefixes, nil)
	}
	e := &Engine{
		cfg:    cfg,
		store:  store,
		ser:    ser,
		logger: slog.Default(),
		now:    time.Now,
		tokens: ident.UUIDTokens{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ids = ident.NewBuilder(cfg.Namespaces, ident.WithTokens(e.tokens), ident.WithClock(e.now))
	return e
}

// Store returns the backing run store.
func (e *Engine) Store() runstore.Store { return e.store }

// Run converts one input. It returns ErrBusy when another run is active.
//
// When serialization fails after the run was stored, Run returns the
// Result without Outputs together with a serialize RunError; the stored run
// is kept.
func (e *Engine) Run(ctx context.Context, in Input) (*Result, error) {
	if !e.mu.TryLock() {
		e.metrics.observeRun(OutcomeBusy, 0)
		e.logger.Warn("Run rejected, engine busy", "filename", in.Filename)
		return nil, &RunError{Op: OpRun, Target: in.Filename, Err: ErrBusy}
	}
	defer e.mu.Unlock()
	return e.run(ctx, in)
}

// runWait is Run without the fail-fast check.
func (e *Engine) runWait(ctx context.Context, in Input) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run(ctx, in)
}

func (e *Engine) run(ctx context.Context, in Input) (*Result, error) {
	start := e.now()
	res, err := e.pipeline(ctx, in)
	elapsed := e.now().Sub(start)
	if err != nil && (res == nil || Code(err) != CodeCodec) {
		e.metrics.observeRun(OutcomeFailure, elapsed)
		e.logger.Error("Run failed", "filename", in.Filename, "code", Code(err), "error", err)
		return nil, err
	}

	e.metrics.observeRun(OutcomeSuccess, elapsed)
	e.metrics.observeGraph(res.Stats.Quads, res.Stats.DegradedByDatatype)
	if res.Stats.Degraded > 0 {
		e.logger.Info("Coerced malformed cells to defaults",
			"graph", res.Run.GraphIRI, "degraded", res.Stats.Degraded)
	}
	e.logger.Info("Run complete",
		"graph", res.Run.GraphIRI,
		"filename", in.Filename,
		"rows", res.Stats.Rows,
		"quads", res.Stats.Quads,
		"duration", elapsed)
	if err != nil {
		e.logger.Error("Serialization failed after store", "graph", res.Run.GraphIRI, "error", err)
	}
	return res, err
}

func (e *Engine) pipeline(ctx context.Context, in Input) (*Result, error) {
	opts := e.cfg.Defaults
	if in.Options != nil {
		opts = *in.Options
	}
	if in.Data == nil {
		return nil, &RunError{Op: OpRead, Target: in.Filename, Err: errors.New("no input data")}
	}

	grid, err := tabular.Read(ctx, in.Filename, in.Data, opts.Delimiter)
	if err != nil {
		return nil, &RunError{Op: OpRead, Target: in.Filename, Err: err}
	}

	datatypes, err := e.expandDatatypes(opts.Datatypes)
	if err != nil {
		return nil, &RunError{Op: OpAssemble, Target: in.Filename, Err: err}
	}
	opts.Datatypes = datatypes

	keys := schema.BuildColumnKeys(grid.Header, grid.Rows, opts.TreatFirstRowAsHeader, opts.Predicate.WhenNoHeader)
	predicates := make(map[string]rdf.IRI, len(keys))
	for _, key := range keys {
		predicates[key] = e.ids.Predicate(schema.BuildPredicateLocalName(key, opts.Predicate))
	}
	graph := e.ids.GraphIRI(in.Filename)

	g, err := dataset.Assemble(grid, opts, keys, predicates, graph, e.ids)
	if err != nil {
		return nil, &RunError{Op: OpAssemble, Target: in.Filename, Err: err}
	}
	records, err := g.Records()
	if err != nil {
		return nil, &RunError{Op: OpAssemble, Target: in.Filename, Err: err}
	}

	replaced, err := e.checkExisting(ctx, graph.Value)
	if err != nil {
		return nil, err
	}
	run := &dataset.StoredRun{
		GraphIRI:  graph.Value,
		Filename:  in.Filename,
		CreatedAt: e.now().UTC(),
		Quads:     records,
	}
	if err := e.store.Put(ctx, run); err != nil {
		return nil, &RunError{Op: OpStore, Target: graph.Value, Err: err}
	}

	res := &Result{Run: run, Graph: g, Stats: g.Stats, Replaced: replaced}
	outputs, err := e.ser.Serialize(ctx, g, graph)
	if err != nil {
		return res, &RunError{Op: OpSerialize, Target: graph.Value, Err: err}
	}
	res.Outputs = outputs
	return res, nil
}

// checkExisting reports whether graph already has a stored run.
func (e *Engine) checkExisting(ctx context.Context, graph string) (bool, error) {
	prev, err := e.store.Get(ctx, graph)
	if errors.Is(err, runstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &RunError{Op: OpStore, Target: graph, Err: err}
	}
	e.logger.Info("Replacing existing run",
		"graph", graph,
		"previous_filename", prev.Filename,
		"previous_created_at", prev.CreatedAt)
	return true, nil
}

// expandDatatypes resolves datatype identifiers against the configured
// prefixes so assembly sees absolute IRIs.
func (e *Engine) expandDatatypes(byKey map[string]string) (map[string]string, error) {
	resolved, err := coerce.ResolveDatatypes(byKey, e.cfg.Prefixes)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, nil
	}
	out := make(map[string]string, len(resolved))
	for key, dt := range resolved {
		out[key] = dt.Value
	}
	return out, nil
}

// Reload rebuilds and re-renders a stored run without minting identifiers.
func (e *Engine) Reload(ctx context.Context, graphIRI string) (*Result, error) {
	run, err := e.store.Get(ctx, graphIRI)
	if err != nil {
		return nil, &RunError{Op: OpReload, Target: graphIRI, Err: err}
	}
	g, err := dataset.FromStoredRun(run)
	if err != nil {
		return nil, &RunError{Op: OpReload, Target: graphIRI, Err: err}
	}
	res := &Result{Run: run, Graph: g, Stats: g.Stats}
	outputs, err := e.ser.Serialize(ctx, g, g.IRI)
	if err != nil {
		return res, &RunError{Op: OpSerialize, Target: graphIRI, Err: err}
	}
	res.Outputs = outputs
	return res, nil
}

// Render renders a stored run in a single format.
func (e *Engine) Render(ctx context.Context, graphIRI string, format rdf.Format) (string, error) {
	run, err := e.store.Get(ctx, graphIRI)
	if err != nil {
		return "", &RunError{Op: OpReload, Target: graphIRI, Err: err}
	}
	g, err := dataset.FromStoredRun(run)
	if err != nil {
		return "", &RunError{Op: OpReload, Target: graphIRI, Err: err}
	}
	text, err := e.ser.Format(ctx, g, g.IRI, format)
	if err != nil {
		return "", &RunError{Op: OpSerialize, Target: graphIRI, Err: err}
	}
	return text, nil
}

// List returns stored run summaries, newest first.
func (e *Engine) List(ctx context.Context) ([]dataset.RunSummary, error) {
	list, err := e.store.List(ctx)
	if err != nil {
		return nil, &RunError{Op: OpList, Err: err}
	}
	return list, nil
}

// Delete removes a stored run.
func (e *Engine) Delete(ctx context.Context, graphIRI string) error {
	if err := e.store.Delete(ctx, graphIRI); err != nil {
		return &RunError{Op: OpDelete, Target: graphIRI, Err: err}
	}
	e.logger.Info("Deleted run", "graph", graphIRI)
	return nil
}
