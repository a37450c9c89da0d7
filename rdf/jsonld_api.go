package rdf

import (
	"context"
	"fmt"

	ld "github.com/piprate/json-gold/ld"
)

const defaultGraphName = "@default"

// JSONLDOptions configures JSON-LD processing.
type JSONLDOptions struct {
	// BaseIRI resolves relative IRIs.
	BaseIRI string
	// ProcessingMode controls JSON-LD version semantics: "json-ld-1.0" or "json-ld-1.1".
	ProcessingMode string

	// RDF conversion flags.
	UseNativeTypes bool
	UseRdfType     bool
}

// JSONLDProcessor converts RDF into JSON-LD documents.
type JSONLDProcessor interface {
	// FromQuads converts quads into an expanded JSON-LD document. Quads
	// with a zero graph land in the default graph.
	FromQuads(ctx context.Context, quads []Quad, opts JSONLDOptions) (interface{}, error)
}

type defaultJSONLDProcessor struct {
	api *ld.JsonLdApi
}

// NewJSONLDProcessor returns the json-gold backed JSON-LD processor.
func NewJSONLDProcessor() JSONLDProcessor {
	return &defaultJSONLDProcessor{api: ld.NewJsonLdApi()}
}

func (p *defaultJSONLDProcessor) FromQuads(ctx context.Context, quads []Quad, opts JSONLDOptions) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	ds, err := toGoldDataset(quads)
	if err != nil {
		return nil, &JSONLDError{Op: "fromRDF", Err: err}
	}
	output, err := p.api.FromRDF(ds, newJSONGoldOptions(opts))
	if err != nil {
		return nil, &JSONLDError{Op: "fromRDF", Err: err}
	}
	if output == nil {
		return []interface{}{}, nil
	}
	return output, nil
}

// toGoldDataset hands terms to json-gold as values, so lexical forms and
// IRIs reach the document without an N-Quads escape round trip.
func toGoldDataset(quads []Quad) (*ld.RDFDataset, error) {
	ds := ld.NewRDFDataset()
	for _, q := range quads {
		if q.S == nil || q.O == nil || q.P.Value == "" {
			return nil, ErrMissingField
		}
		s, err := goldNode(q.S)
		if err != nil {
			return nil, err
		}
		o, err := goldNode(q.O)
		if err != nil {
			return nil, err
		}
		name := defaultGraphName
		if q.G != nil {
			if g := q.G.String(); g != "" {
				name = g
			}
		}
		ds.Graphs[name] = append(ds.Graphs[name], ld.NewQuad(s, ld.NewIRI(q.P.Value), o, name))
	}
	return ds, nil
}

func goldNode(t Term) (ld.Node, error) {
	switch v := t.(type) {
	case IRI:
		return ld.NewIRI(v.Value), nil
	case BlankNode:
		return ld.NewBlankNode(v.String()), nil
	case Literal:
		switch {
		case v.Lang != "":
			return ld.NewLiteral(v.Lexical, ld.RDFLangString, v.Lang), nil
		case v.Datatype.Value == "":
			return ld.NewLiteral(v.Lexical, ld.XSDString, ""), nil
		default:
			return ld.NewLiteral(v.Lexical, v.Datatype.Value, ""), nil
		}
	default:
		return nil, fmt.Errorf("jsonld: unsupported term %T", t)
	}
}

func newJSONGoldOptions(opts JSONLDOptions) *ld.JsonLdOptions {
	goldOpts := ld.NewJsonLdOptions(opts.BaseIRI)
	if opts.ProcessingMode != "" {
		goldOpts.ProcessingMode = opts.ProcessingMode
	}
	if opts.UseNativeTypes {
		goldOpts.UseNativeTypes = opts.UseNativeTypes
	}
	if opts.UseRdfType {
		goldOpts.UseRdfType = opts.UseRdfType
	}
	return goldOpts
}
