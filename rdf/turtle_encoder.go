package rdf

import (
	"bufio"
	"io"
	"sort"
	"strings"
)

// turtleEncoder writes Turtle, or TriG when quads is set. Consecutive
// statements sharing a subject are grouped with ';' and those sharing a
// predicate with ','. In TriG mode every run of statements in the same named
// graph is wrapped in a graph block.
type turtleEncoder struct {
	writer *bufio.Writer
	format Format
	quads  bool
	opts   Options
	err    error

	started bool
	closed  bool

	open      bool // a statement is waiting for its terminating '.'
	subject   string
	predicate string

	inGraph bool
	graph   string
}

func newTurtleEncoder(w io.Writer, opts Options) Writer {
	return &turtleEncoder{writer: bufio.NewWriter(w), format: FormatTurtle, opts: opts}
}

func newTriGEncoder(w io.Writer, opts Options) Writer {
	return &turtleEncoder{writer: bufio.NewWriter(w), format: FormatTriG, quads: true, opts: opts}
}

func (e *turtleEncoder) Write(q Quad) error {
	if e.err != nil {
		return e.err
	}
	if e.closed {
		return wrapEncodeError(e.format, q, ErrWriterClosed)
	}
	if e.opts.Context != nil {
		if err := e.opts.Context.Err(); err != nil {
			e.err = err
			return err
		}
	}
	if q.S == nil || q.P.Value == "" || q.O == nil {
		return wrapEncodeError(e.format, q, ErrMissingField)
	}
	if !e.started {
		e.writeHeader()
	}

	prefixes := e.opts.Prefixes
	subject := renderTermWithPrefixes(q.S, prefixes)
	predicate := renderIRIWithPrefixes(q.P, prefixes)
	object := renderTermWithPrefixes(q.O, prefixes)

	if e.quads {
		graph := ""
		if q.G != nil {
			graph = renderTermWithPrefixes(q.G, prefixes)
		}
		if graph != e.graph {
			e.endStatement()
			e.endGraph()
			if graph != "" {
				e.writeString(graph + " {\n")
				e.inGraph = true
			}
			e.graph = graph
		}
	}

	indent := ""
	if e.inGraph {
		indent = e.opts.Indent
	}

	switch {
	case e.open && subject == e.subject && predicate == e.predicate:
		e.writeString(", " + object)
	case e.open && subject == e.subject:
		e.writeString(" ;\n" + indent + e.opts.Indent + predicate + " " + object)
	default:
		e.endStatement()
		e.writeString(indent + subject + " " + predicate + " " + object)
	}
	e.open = true
	e.subject = subject
	e.predicate = predicate

	if e.err != nil {
		e.err = wrapEncodeError(e.format, q, e.err)
	}
	return e.err
}

func (e *turtleEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.writer.Flush(); err != nil {
		e.err = &EncodeError{Format: e.format, Err: err}
	}
	return e.err
}

func (e *turtleEncoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	if e.err != nil {
		return e.err
	}
	e.endStatement()
	e.endGraph()
	return e.Flush()
}

func (e *turtleEncoder) endStatement() {
	if !e.open {
		return
	}
	e.writeString(" .\n")
	e.open = false
	e.subject = ""
	e.predicate = ""
}

func (e *turtleEncoder) endGraph() {
	if !e.inGraph {
		return
	}
	e.writeString("}\n")
	e.inGraph = false
}

func (e *turtleEncoder) writeHeader() {
	e.started = true
	if len(e.opts.Prefixes) == 0 {
		return
	}
	for _, prefix := range sortedPrefixKeys(e.opts.Prefixes) {
		e.writeString("@prefix " + prefix + ": <" + escapeIRI(e.opts.Prefixes[prefix]) + "> .\n")
	}
	e.writeString("\n")
}

func (e *turtleEncoder) writeString(s string) {
	if e.err != nil {
		return
	}
	if _, err := e.writer.WriteString(s); err != nil {
		e.err = err
	}
}

func sortedPrefixKeys(prefixes map[string]string) []string {
	keys := make([]string, 0, len(prefixes))
	for key := range prefixes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// abbreviateQName returns the prefixed name for iri using the longest
// matching namespace whose remainder is a valid local name.
func abbreviateQName(iri string, prefixes map[string]string) (string, bool) {
	if len(prefixes) == 0 {
		return "", false
	}
	bestNS := ""
	bestPrefix := ""
	found := false
	for prefix, ns := range prefixes {
		if ns == "" || !strings.HasPrefix(iri, ns) {
			continue
		}
		if !isQNameLocal(iri[len(ns):]) {
			continue
		}
		if !found || len(ns) > len(bestNS) || (len(ns) == len(bestNS) && prefix < bestPrefix) {
			bestNS = ns
			bestPrefix = prefix
			found = true
		}
	}
	if !found {
		return "", false
	}
	return bestPrefix + ":" + iri[len(bestNS):], true
}
