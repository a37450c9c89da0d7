package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geoknoesis/rdf-tabular/rdf"
)

// ObjectKind tells whether a record's object is an IRI or a literal.
type ObjectKind string

const (
	ObjectIRI     ObjectKind = "IRI"
	ObjectLiteral ObjectKind = "Literal"
)

// ErrInvalidRecord is returned for records that cannot be turned into quads.
var ErrInvalidRecord = errors.New("dataset: invalid quad record")

// QuadRecord is the persisted form of one quad.
type QuadRecord struct {
	Subject     string     `json:"subject" db:"subject"`
	Predicate   string     `json:"predicate" db:"predicate"`
	Graph       string     `json:"graph" db:"graph"`
	ObjectKind  ObjectKind `json:"objectKind" db:"object_kind"`
	ObjectValue string     `json:"objectValue" db:"object_value"`
	Datatype    string     `json:"datatype,omitempty" db:"datatype"`
	Language    string     `json:"language,omitempty" db:"language"`
}

// RecordFromQuad converts a quad with an IRI subject and an IRI or literal
// object into a record.
func RecordFromQuad(q rdf.Quad) (QuadRecord, error) {
	subject, ok := q.S.(rdf.IRI)
	if !ok {
		return QuadRecord{}, fmt.Errorf("%w: subject %v is not an IRI", ErrInvalidRecord, q.S)
	}
	rec := QuadRecord{Subject: subject.Value, Predicate: q.P.Value}
	if g, ok := q.G.(rdf.IRI); ok {
		rec.Graph = g.Value
	}
	switch o := q.O.(type) {
	case rdf.IRI:
		rec.ObjectKind = ObjectIRI
		rec.ObjectValue = o.Value
	case rdf.Literal:
		rec.ObjectKind = ObjectLiteral
		rec.ObjectValue = o.Lexical
		rec.Datatype = o.Datatype.Value
		rec.Language = o.Lang
	default:
		return QuadRecord{}, fmt.Errorf("%w: unsupported object %v", ErrInvalidRecord, q.O)
	}
	return rec, nil
}

// Quad rebuilds the quad the record was made from.
func (r QuadRecord) Quad() (rdf.Quad, error) {
	if strings.TrimSpace(r.Subject) == "" || strings.TrimSpace(r.Predicate) == "" {
		return rdf.Quad{}, fmt.Errorf("%w: missing subject or predicate", ErrInvalidRecord)
	}
	q := rdf.Quad{S: rdf.IRI{Value: r.Subject}, P: rdf.IRI{Value: r.Predicate}}
	if r.Graph != "" {
		q.G = rdf.IRI{Value: r.Graph}
	}
	switch r.ObjectKind {
	case ObjectIRI:
		q.O = rdf.IRI{Value: r.ObjectValue}
	case ObjectLiteral:
		lit := rdf.Literal{Lexical: r.ObjectValue, Lang: r.Language}
		if r.Datatype != "" {
			lit.Datatype = rdf.IRI{Value: r.Datatype}
		}
		q.O = lit
	default:
		return rdf.Quad{}, fmt.Errorf("%w: unknown object kind %q", ErrInvalidRecord, r.ObjectKind)
	}
	return q, nil
}

// StoredRun is what a run store persists per graph.
type StoredRun struct {
	GraphIRI  string       `json:"graphIdentifier"`
	Filename  string       `json:"filename"`
	CreatedAt time.Time    `json:"createdAt"`
	Quads     []QuadRecord `json:"quads"`
}

// RunSummary is the listing projection of a StoredRun.
type RunSummary struct {
	GraphIRI  string    `json:"graphIdentifier" db:"graph_iri"`
	Filename  string    `json:"filename" db:"filename"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Summary drops the quads.
func (r StoredRun) Summary() RunSummary {
	return RunSummary{GraphIRI: r.GraphIRI, Filename: r.Filename, CreatedAt: r.CreatedAt}
}
