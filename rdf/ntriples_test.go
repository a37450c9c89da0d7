package rdf

import (
	"testing"
)

func TestNTriplesEncodeLine(t *testing.T) {
	quads := []Quad{
		{
			S: IRI{Value: "http://example.org/s"},
			P: IRI{Value: "http://example.org/p"},
			O: Literal{Lexical: "42", Datatype: XSDInteger},
			G: IRI{Value: "http://example.org/g"},
		},
		{
			S: BlankNode{ID: "b0"},
			P: IRI{Value: "http://example.org/name"},
			O: Literal{Lexical: "Ada \"Countess\"", Datatype: XSDString},
		},
	}
	out, err := EncodeQuads(FormatNTriples, quads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<http://example.org/s> <http://example.org/p> \"42\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n" +
		"_:b0 <http://example.org/name> \"Ada \\\"Countess\\\"\" .\n"
	if out != want {
		t.Fatalf("unexpected N-Triples:\n%s", out)
	}
}

func TestNQuadsEncodeGraph(t *testing.T) {
	quads := []Quad{
		{
			S: IRI{Value: "http://example.org/s"},
			P: IRI{Value: "http://example.org/p"},
			O: Literal{Lexical: "v"},
			G: IRI{Value: "http://example.org/g"},
		},
		{
			S: IRI{Value: "http://example.org/s"},
			P: IRI{Value: "http://example.org/p"},
			O: IRI{Value: "http://example.org/o"},
		},
	}
	out, err := EncodeQuads(FormatNQuads, quads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<http://example.org/s> <http://example.org/p> \"v\" <http://example.org/g> .\n" +
		"<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"
	if out != want {
		t.Fatalf("unexpected N-Quads:\n%s", out)
	}
}

func TestNTriplesEncodeIgnoresPrefixes(t *testing.T) {
	q := Quad{
		S: IRI{Value: "http://example.org/s"},
		P: IRI{Value: "http://example.org/p"},
		O: Literal{Lexical: "v"},
	}
	out, err := EncodeQuads(FormatNTriples, []Quad{q}, OptPrefixes(map[string]string{"ex": "http://example.org/"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<http://example.org/s> <http://example.org/p> \"v\" .\n" {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestNTriplesEncodeEmpty(t *testing.T) {
	out, err := EncodeQuads(FormatNTriples, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
