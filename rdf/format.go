package rdf

import (
	"sort"
	"strings"
)

// Format identifies RDF serialization formats.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatTriG     Format = "trig"
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
	// FormatJSONLD is a JSON-LD document without a named-graph wrapper.
	FormatJSONLD Format = "jsonld"
	// FormatJSONLDGraph is a JSON-LD document wrapped in its named graph.
	FormatJSONLDGraph Format = "jsonld-graph"
)

// ParseFormat normalizes a format string.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "turtle", "ttl":
		return FormatTurtle, true
	case "trig":
		return FormatTriG, true
	case "ntriples", "nt", "n-triples":
		return FormatNTriples, true
	case "nquads", "nq", "n-quads":
		return FormatNQuads, true
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, true
	case "jsonld-graph", "json-ld-graph", "jsonldgraph":
		return FormatJSONLDGraph, true
	default:
		return "", false
	}
}

// IsQuadFormat reports whether the format carries the graph component.
func (f Format) IsQuadFormat() bool {
	return f == FormatTriG || f == FormatNQuads || f == FormatJSONLDGraph
}

// FormatInfo provides metadata about a serialization format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format
	// MIMEType is the standard MIME type.
	MIMEType string
	// Extension is the file extension (with dot).
	Extension string
	// Description describes the format.
	Description string
}

var formatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatTriG: {
		Name:        FormatTriG,
		MIMEType:    "application/trig",
		Extension:   ".trig",
		Description: "TriG - Turtle with named graphs",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatNQuads: {
		Name:        FormatNQuads,
		MIMEType:    "application/n-quads",
		Extension:   ".nq",
		Description: "N-Quads - Line-based RDF dataset format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
	FormatJSONLDGraph: {
		Name:        FormatJSONLDGraph,
		MIMEType:    "application/ld+json",
		Extension:   ".graph.jsonld",
		Description: "JSON-LD - named graph document",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := formatRegistry[format]
	return info, ok
}

// Formats returns every supported format in a stable order.
func Formats() []Format {
	out := make([]Format, 0, len(formatRegistry))
	for format := range formatRegistry {
		out = append(out, format)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
