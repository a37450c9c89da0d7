package rdf

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeUnsupportedFormat indicates an unsupported format.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeEncode indicates a statement could not be encoded.
	ErrCodeEncode ErrorCode = "ENCODE_ERROR"
	// ErrCodeJSONLD indicates the JSON-LD processor rejected its input.
	ErrCodeJSONLD ErrorCode = "JSONLD_ERROR"
	// ErrCodeIOError indicates an I/O error.
	ErrCodeIOError ErrorCode = "IO_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInvalidIRI indicates an invalid IRI was encountered.
	ErrCodeInvalidIRI ErrorCode = "INVALID_IRI"
)

var (
	// ErrUnsupportedFormat indicates an unsupported format.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")
	// ErrMissingField indicates a statement without subject, predicate or object.
	ErrMissingField = errors.New("rdf: missing statement fields")
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("rdf: writer closed")
	// ErrInvalidIRI indicates an IRI failed validation.
	ErrInvalidIRI = errors.New("rdf: invalid IRI")
)

// Code returns the error code for an error, or ErrCodeEncode if unknown.
// Returns empty string for nil errors.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeUnsupportedFormat
	case errors.Is(err, ErrInvalidIRI):
		return ErrCodeInvalidIRI
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeContextCanceled
	}

	var jsonldErr *JSONLDError
	if errors.As(err, &jsonldErr) {
		return ErrCodeJSONLD
	}

	var encErr *EncodeError
	if errors.As(err, &encErr) {
		if errors.Is(encErr.Err, ErrMissingField) || errors.Is(encErr.Err, ErrWriterClosed) {
			return ErrCodeEncode
		}
		return ErrCodeIOError
	}

	return ErrCodeEncode
}

// EncodeError provides structured context for encoding failures.
type EncodeError struct {
	Format    Format // Target format
	Statement string // Offending statement, rendered as N-Quads when available
	Err       error  // Underlying error
}

func (e *EncodeError) Error() string {
	var msg strings.Builder
	msg.WriteString(string(e.Format))
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if e.Statement != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt(e.Statement, 80))
	}
	return msg.String()
}

func (e *EncodeError) Unwrap() error { return e.Err }

// JSONLDError wraps a failure reported by the JSON-LD processor.
type JSONLDError struct {
	Op  string // Processor operation, e.g. "fromRDF"
	Err error
}

func (e *JSONLDError) Error() string {
	return fmt.Sprintf("jsonld %s: %v", e.Op, e.Err)
}

func (e *JSONLDError) Unwrap() error { return e.Err }

func wrapEncodeError(format Format, q Quad, err error) error {
	if err == nil {
		return nil
	}
	var encErr *EncodeError
	if errors.As(err, &encErr) {
		return err
	}
	statement := ""
	if q.S != nil && q.O != nil && q.P.Value != "" {
		statement = renderTerm(q.S) + " " + renderIRI(q.P) + " " + renderTerm(q.O)
	}
	return &EncodeError{Format: format, Statement: statement, Err: err}
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
