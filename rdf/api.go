package rdf

import (
	"bytes"
	"context"
	"io"
)

// Writer streams RDF statements to an output.
// For triple-only formats, the graph (G) field is ignored.
type Writer interface {
	Write(Quad) error
	Flush() error
	Close() error
}

// Option configures writer behavior.
type Option func(*Options)

// Options configures encoder behavior.
type Options struct {
	// Context for cancellation
	Context context.Context

	// Prefixes maps prefix labels to namespace IRIs. Only the Turtle and
	// TriG encoders abbreviate; line-based formats always write full IRIs.
	Prefixes map[string]string

	// Indent is the continuation indent for grouped predicates.
	Indent string
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...Option) (Writer, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return newEncoder(w, format, options)
}

// OptContext sets the context checked between statements.
func OptContext(ctx context.Context) Option {
	return func(opts *Options) {
		opts.Context = ctx
	}
}

// OptPrefixes sets the prefix map used for Turtle and TriG abbreviation.
func OptPrefixes(prefixes map[string]string) Option {
	return func(opts *Options) {
		if len(prefixes) == 0 {
			opts.Prefixes = nil
			return
		}
		copied := make(map[string]string, len(prefixes))
		for k, v := range prefixes {
			copied[k] = v
		}
		opts.Prefixes = copied
	}
}

// EncodeQuads serializes quads to a string in the given format.
func EncodeQuads(format Format, quads []Quad, opts ...Option) (string, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, format, opts...)
	if err != nil {
		return "", err
	}
	for _, q := range quads {
		if err := w.Write(q); err != nil {
			_ = w.Close()
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func defaultOptions() Options {
	return Options{
		Context: context.Background(),
		Indent:  "    ",
	}
}

// newEncoder creates a writer for the specified format.
func newEncoder(w io.Writer, format Format, opts Options) (Writer, error) {
	switch format {
	case FormatNTriples:
		return newNTriplesEncoder(w, opts), nil
	case FormatNQuads:
		return newNQuadsEncoder(w, opts), nil
	case FormatTurtle:
		return newTurtleEncoder(w, opts), nil
	case FormatTriG:
		return newTriGEncoder(w, opts), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
