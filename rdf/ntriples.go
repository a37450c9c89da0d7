package rdf

import (
	"bufio"
	"io"
)

// ntEncoder writes the line-based N-Triples and N-Quads syntaxes.
type ntEncoder struct {
	writer *bufio.Writer
	format Format
	opts   Options
	err    error
	closed bool
}

func newNTriplesEncoder(w io.Writer, opts Options) Writer {
	return &ntEncoder{writer: bufio.NewWriter(w), format: FormatNTriples, opts: opts}
}

func newNQuadsEncoder(w io.Writer, opts Options) Writer {
	return &ntEncoder{writer: bufio.NewWriter(w), format: FormatNQuads, opts: opts}
}

func (e *ntEncoder) Write(q Quad) error {
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
	line := renderTerm(q.S) + " " + renderIRI(q.P) + " " + renderTerm(q.O)
	if e.format == FormatNQuads && q.G != nil {
		line += " " + renderTerm(q.G)
	}
	line += " .\n"
	if _, err := e.writer.WriteString(line); err != nil {
		e.err = wrapEncodeError(e.format, q, err)
		return e.err
	}
	return nil
}

func (e *ntEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.writer.Flush(); err != nil {
		e.err = &EncodeError{Format: e.format, Err: err}
		return e.err
	}
	return nil
}

func (e *ntEncoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	return e.Flush()
}
