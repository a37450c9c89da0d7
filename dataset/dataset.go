// Package dataset assembles quads from a tabular grid and converts them to
// and from their persisted record form.
package dataset

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/rdf-tabular/coerce"
	"github.com/geoknoesis/rdf-tabular/rdf"
	"github.com/geoknoesis/rdf-tabular/schema"
	"github.com/geoknoesis/rdf-tabular/tabular"
)

// FileOptions configures the conversion of one input.
type FileOptions struct {
	TreatFirstRowAsHeader bool                    `json:"treatFirstRowAsHeader" yaml:"header"`
	Delimiter             tabular.Delimiter       `json:"delimiter" yaml:"delimiter"`
	Predicate             schema.PredicateOptions `json:"predicateOptions" yaml:"predicate"`
	// Datatypes maps column keys to datatype identifiers. Missing keys are
	// xsd:string.
	Datatypes map[string]string `json:"datatypes,omitempty" yaml:"datatypes,omitempty"`
}

// DefaultFileOptions returns header-on, auto-delimited, hasCamelCase options.
func DefaultFileOptions() FileOptions {
	return FileOptions{
		TreatFirstRowAsHeader: true,
		Delimiter:             tabular.DelimiterNone,
		Predicate:             schema.DefaultPredicateOptions(),
	}
}

// ParseDatatypeAssignment splits "key=datatype" as given on the command line
// or in a query string. The key is trimmed and must not be empty.
func ParseDatatypeAssignment(s string) (key, datatype string, err error) {
	key, datatype, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" || strings.TrimSpace(datatype) == "" {
		return "", "", fmt.Errorf("datatype assignment %q: want key=datatype", s)
	}
	return key, strings.TrimSpace(datatype), nil
}

// SubjectMinter mints one subject per data row.
type SubjectMinter interface {
	RowSubject(rowIndex int) rdf.IRI
}

// Stats counts what an assembly did.
type Stats struct {
	Rows     int `json:"rows"`
	Quads    int `json:"quads"`
	Skipped  int `json:"skipped"`
	Degraded int `json:"degraded"`
	// DegradedByDatatype counts degraded cells per datatype IRI.
	DegradedByDatatype map[string]int `json:"degradedByDatatype,omitempty"`
}

// Graph is the in-memory result of one run: quads in row-major order, all in
// the same named graph.
type Graph struct {
	IRI   rdf.IRI
	Stats Stats
	quads []rdf.Quad
}

// NewGraph wraps quads that already belong to graph.
func NewGraph(graph rdf.IRI, quads []rdf.Quad) *Graph {
	return &Graph{IRI: graph, quads: quads, Stats: Stats{Quads: len(quads)}}
}

// Quads returns the quads in assembly order. The slice must not be modified.
func (g *Graph) Quads() []rdf.Quad { return g.quads }

// Len returns the quad count.
func (g *Graph) Len() int { return len(g.quads) }

// Records converts every quad to its persisted form.
func (g *Graph) Records() ([]QuadRecord, error) {
	records := make([]QuadRecord, 0, len(g.quads))
	for _, q := range g.quads {
		rec, err := RecordFromQuad(q)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// DataRows returns the rows that carry data: the grid rows when the first
// row is a header, otherwise the header row followed by the rows.
func DataRows(grid tabular.Grid, treatFirstRowAsHeader bool) [][]string {
	if treatFirstRowAsHeader || grid.Header == nil {
		return grid.Rows
	}
	rows := make([][]string, 0, len(grid.Rows)+1)
	rows = append(rows, grid.Header)
	return append(rows, grid.Rows...)
}

// Assemble turns grid into quads. Every data row gets a fresh subject from
// minter; every non-blank cell whose column has a key yields exactly one quad
// with the column predicate and the coerced value.
func Assemble(grid tabular.Grid, opts FileOptions, keys []string, predicates map[string]rdf.IRI, graph rdf.IRI, minter SubjectMinter) (*Graph, error) {
	if minter == nil {
		return nil, fmt.Errorf("assemble: nil subject minter")
	}
	datatypes, err := coerce.ResolveDatatypes(opts.Datatypes, nil)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	for _, key := range keys {
		if _, ok := predicates[key]; !ok {
			return nil, fmt.Errorf("assemble: no predicate for column %q", key)
		}
	}

	rows := DataRows(grid, opts.TreatFirstRowAsHeader)
	g := &Graph{IRI: graph}
	g.Stats.Rows = len(rows)
	for rowIndex, row := range rows {
		subject := minter.RowSubject(rowIndex)
		for col, key := range keys {
			if col >= len(row) || isBlank(row[col]) {
				g.Stats.Skipped++
				continue
			}
			datatype, ok := datatypes[key]
			if !ok {
				datatype = rdf.XSDString
			}
			object, exact := coerce.Coerce(row[col], datatype)
			if !exact {
				g.Stats.Degraded++
				if g.Stats.DegradedByDatatype == nil {
					g.Stats.DegradedByDatatype = make(map[string]int)
				}
				g.Stats.DegradedByDatatype[datatype.Value]++
			}
			g.quads = append(g.quads, rdf.Quad{S: subject, P: predicates[key], O: object, G: graph})
		}
	}
	g.Stats.Quads = len(g.quads)
	return g, nil
}

// FromRecords rebuilds a graph from persisted records without minting any
// new identifier. The graph IRI is taken from the first record.
func FromRecords(records []QuadRecord) (*Graph, error) {
	quads := make([]rdf.Quad, 0, len(records))
	var graph rdf.IRI
	for i, rec := range records {
		q, err := rec.Quad()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if i == 0 {
			graph = rdf.IRI{Value: rec.Graph}
		}
		quads = append(quads, q)
	}
	return NewGraph(graph, quads), nil
}

// FromStoredRun rebuilds the graph of a stored run.
func FromStoredRun(run *StoredRun) (*Graph, error) {
	g, err := FromRecords(run.Quads)
	if err != nil {
		return nil, err
	}
	g.IRI = rdf.IRI{Value: run.GraphIRI}
	return g, nil
}

func isBlank(cell string) bool {
	return strings.TrimSpace(cell) == ""
}
