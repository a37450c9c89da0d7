// Package serialize renders a dataset graph in every supported syntax.
//
// Turtle and N-Triples are the triples view of the graph, TriG and N-Quads
// the named-graph view. Prefixes are applied to Turtle and TriG only. The two
// JSON-LD documents are produced by handing the same quads to the injected
// JSON-LD processor, once with graph names dropped and once with them kept.
package serialize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/geoknoesis/rdf-tabular/dataset"
	"github.com/geoknoesis/rdf-tabular/rdf"
)

// Outputs holds one serialization per format.
type Outputs struct {
	Turtle        string `json:"turtle"`
	TriG          string `json:"trig"`
	NTriples      string `json:"ntriples"`
	NQuads        string `json:"nquads"`
	JSONLDTriples string `json:"jsonldTriples"`
	JSONLDGraph   string `json:"jsonldGraph"`
}

// Get returns the output for format.
func (o *Outputs) Get(format rdf.Format) (string, bool) {
	switch format {
	case rdf.FormatTurtle:
		return o.Turtle, true
	case rdf.FormatTriG:
		return o.TriG, true
	case rdf.FormatNTriples:
		return o.NTriples, true
	case rdf.FormatNQuads:
		return o.NQuads, true
	case rdf.FormatJSONLD:
		return o.JSONLDTriples, true
	case rdf.FormatJSONLDGraph:
		return o.JSONLDGraph, true
	default:
		return "", false
	}
}

// Error reports the format a serialization failed in.
type Error struct {
	Format rdf.Format
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("serialize %s: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Serializer renders graphs with a fixed prefix map and JSON-LD processor.
type Serializer struct {
	prefixes map[string]string
	jsonld   rdf.JSONLDProcessor
	options  rdf.JSONLDOptions
}

// New returns a Serializer. A nil processor selects rdf.NewJSONLDProcessor.
func New(prefixes map[string]string, proc rdf.JSONLDProcessor) *Serializer {
	if proc == nil {
		proc = rdf.NewJSONLDProcessor()
	}
	copied := make(map[string]string, len(prefixes))
	for k, v := range prefixes {
		copied[k] = v
	}
	return &Serializer{prefixes: copied, jsonld: proc}
}

// Prefixes returns a copy of the prefix map.
func (s *Serializer) Prefixes() map[string]string {
	out := make(map[string]string, len(s.prefixes))
	for k, v := range s.prefixes {
		out[k] = v
	}
	return out
}

// Serialize renders g in all six formats. graph names the run; it is the
// @id of the graph-wrapped JSON-LD document.
func (s *Serializer) Serialize(ctx context.Context, g *dataset.Graph, graph rdf.IRI) (*Outputs, error) {
	quads := g.Quads()
	out := &Outputs{}
	var err error

	if out.Turtle, err = s.encode(ctx, rdf.FormatTurtle, quads, true); err != nil {
		return nil, err
	}
	if out.TriG, err = s.encode(ctx, rdf.FormatTriG, quads, true); err != nil {
		return nil, err
	}
	if out.NTriples, err = s.encode(ctx, rdf.FormatNTriples, quads, false); err != nil {
		return nil, err
	}
	if out.NQuads, err = s.encode(ctx, rdf.FormatNQuads, quads, false); err != nil {
		return nil, err
	}
	if out.JSONLDTriples, err = s.jsonldTriples(ctx, quads); err != nil {
		return nil, err
	}
	if out.JSONLDGraph, err = s.jsonldGraph(ctx, quads, graph); err != nil {
		return nil, err
	}
	return out, nil
}

// Format renders g in a single format.
func (s *Serializer) Format(ctx context.Context, g *dataset.Graph, graph rdf.IRI, format rdf.Format) (string, error) {
	quads := g.Quads()
	switch format {
	case rdf.FormatTurtle, rdf.FormatTriG:
		return s.encode(ctx, format, quads, true)
	case rdf.FormatNTriples, rdf.FormatNQuads:
		return s.encode(ctx, format, quads, false)
	case rdf.FormatJSONLD:
		return s.jsonldTriples(ctx, quads)
	case rdf.FormatJSONLDGraph:
		return s.jsonldGraph(ctx, quads, graph)
	default:
		return "", &Error{Format: format, Err: rdf.ErrUnsupportedFormat}
	}
}

func (s *Serializer) encode(ctx context.Context, format rdf.Format, quads []rdf.Quad, withPrefixes bool) (string, error) {
	opts := []rdf.Option{rdf.OptContext(ctx)}
	if withPrefixes {
		opts = append(opts, rdf.OptPrefixes(s.prefixes))
	}
	text, err := rdf.EncodeQuads(format, quads, opts...)
	if err != nil {
		return "", &Error{Format: format, Err: err}
	}
	return text, nil
}

// jsonldTriples converts the quads with their graph dropped, so every node
// lands at the top level of the document.
func (s *Serializer) jsonldTriples(ctx context.Context, quads []rdf.Quad) (string, error) {
	triples := make([]rdf.Quad, len(quads))
	for i, q := range quads {
		triples[i] = q.ToTriple().ToQuad()
	}
	doc, err := s.jsonld.FromQuads(ctx, triples, s.options)
	if err != nil {
		return "", &Error{Format: rdf.FormatJSONLD, Err: processorError(err)}
	}
	return marshal(rdf.FormatJSONLD, doc)
}

// graphDocument keeps @context, @id, @graph in that order.
type graphDocument struct {
	Context map[string]interface{} `json:"@context"`
	ID      string                 `json:"@id"`
	Graph   interface{}            `json:"@graph"`
}

func (s *Serializer) jsonldGraph(ctx context.Context, quads []rdf.Quad, graph rdf.IRI) (string, error) {
	doc, err := s.jsonld.FromQuads(ctx, quads, s.options)
	if err != nil {
		return "", &Error{Format: rdf.FormatJSONLDGraph, Err: processorError(err)}
	}
	return marshal(rdf.FormatJSONLDGraph, graphDocument{
		Context: map[string]interface{}{},
		ID:      graph.Value,
		Graph:   doc,
	})
}

// processorError tags failures from custom processors as JSON-LD errors.
func processorError(err error) error {
	var jerr *rdf.JSONLDError
	if errors.As(err, &jerr) {
		return err
	}
	return &rdf.JSONLDError{Op: "fromRDF", Err: err}
}

func marshal(format rdf.Format, v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", &Error{Format: format, Err: err}
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
