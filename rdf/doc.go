// Package rdf provides the compact RDF term model and the text encoders used
// to publish tabular datasets.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// It focuses on small, deterministic output with a streaming surface:
//   - Encode: NewWriter() returns a push-style writer for Turtle, TriG,
//     N-Triples and N-Quads.
//   - EncodeQuads() renders a full quad slice in one call.
//   - NewJSONLDProcessor() converts quads to expanded JSON-LD through
//     json-gold.
//
// Output is byte-stable: the same quads in the same order always produce
// the same text. Prefix declarations are sorted, literal escaping follows the
// canonical N-Triples rules, and simple literals are written without the
// implicit xsd:string datatype.
//
// Example (writing Turtle):
//
//	w, err := rdf.NewWriter(&buf, rdf.FormatTurtle, rdf.OptPrefixes(map[string]string{
//	    "ex": "http://example.org/",
//	}))
//	if err != nil {
//	    // handle error
//	}
//	for _, q := range quads {
//	    if err := w.Write(q); err != nil {
//	        // handle error
//	    }
//	}
//	if err := w.Close(); err != nil {
//	    // handle error
//	}
//
// Triple formats (Turtle, N-Triples) ignore the graph component of a quad.
// Unsupported formats return ErrUnsupportedFormat.
package rdf
