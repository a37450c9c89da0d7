package engine

import (
	"errors"
	"fmt"

	"github.com/geoknoesis/rdf-tabular/dataset"
	"github.com/geoknoesis/rdf-tabular/rdf"
	"github.com/geoknoesis/rdf-tabular/runstore"
	"github.com/geoknoesis/rdf-tabular/serialize"
	"github.com/geoknoesis/rdf-tabular/tabular"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("another run is in progress")

// Op names the pipeline stage an error came from.
type Op string

const (
	OpRun       Op = "run"
	OpRead      Op = "read"
	OpAssemble  Op = "assemble"
	OpStore     Op = "store"
	OpSerialize Op = "serialize"
	OpReload    Op = "reload"
	OpDelete    Op = "delete"
	OpList      Op = "list"
)

// RunError carries the stage and target (filename or graph IRI) of a failure.
type RunError struct {
	Op     Op
	Target string
	Err    error
}

func (e *RunError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// ErrorCode is a programmatic classification of engine errors.
type ErrorCode string

const (
	CodeInput    ErrorCode = "INPUT_ERROR"
	CodeCodec    ErrorCode = "CODEC_ERROR"
	CodeStore    ErrorCode = "STORE_ERROR"
	CodeBusy     ErrorCode = "BUSY"
	CodeNotFound ErrorCode = "NOT_FOUND"
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Code classifies err. Returns empty string for nil errors.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrBusy):
		return CodeBusy
	case errors.Is(err, runstore.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, tabular.ErrInvalidEncoding):
		return CodeInput
	case errors.Is(err, dataset.ErrInvalidRecord):
		return CodeCodec
	}

	var serErr *serialize.Error
	if errors.As(err, &serErr) {
		return CodeCodec
	}

	var runErr *RunError
	if errors.As(err, &runErr) {
		switch runErr.Op {
		case OpRun, OpRead, OpAssemble:
			return CodeInput
		case OpSerialize:
			return CodeCodec
		case OpStore, OpReload, OpDelete, OpList:
			return CodeStore
		}
	}
	return CodeInternal
}

// CodecCode narrows a serialization failure to the rdf error code raised by
// the encoder or the JSON-LD processor. It is empty for any other error.
func CodecCode(err error) rdf.ErrorCode {
	var serErr *serialize.Error
	if !errors.As(err, &serErr) {
		return ""
	}
	return rdf.Code(serErr.Err)
}
