package rdf

import (
	"strings"
	"testing"
)

var turtleFixture = []Quad{
	{S: IRI{Value: "https://example.org/row/0"}, P: IRI{Value: "https://example.org/hasFirst"}, O: Literal{Lexical: "Ada"}, G: IRI{Value: "https://example.org/g"}},
	{S: IRI{Value: "https://example.org/row/0"}, P: IRI{Value: "https://example.org/hasLast"}, O: Literal{Lexical: "Lovelace"}, G: IRI{Value: "https://example.org/g"}},
	{S: IRI{Value: "https://example.org/row/0"}, P: IRI{Value: "https://example.org/hasLast"}, O: Literal{Lexical: "Byron"}, G: IRI{Value: "https://example.org/g"}},
	{S: IRI{Value: "https://example.org/row/1"}, P: IRI{Value: "https://example.org/hasFirst"}, O: Literal{Lexical: "Alan"}, G: IRI{Value: "https://example.org/g"}},
}

func TestTurtleGrouping(t *testing.T) {
	out, err := EncodeQuads(FormatTurtle, turtleFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<https://example.org/row/0> <https://example.org/hasFirst> \"Ada\" ;\n" +
		"    <https://example.org/hasLast> \"Lovelace\", \"Byron\" .\n" +
		"<https://example.org/row/1> <https://example.org/hasFirst> \"Alan\" .\n"
	if out != want {
		t.Fatalf("unexpected Turtle:\n%s", out)
	}
}

func TestTurtlePrefixAbbreviation(t *testing.T) {
	prefixes := map[string]string{
		"ex":  "https://example.org/",
		"row": "https://example.org/row/",
		"xsd": XSDNamespace,
	}
	quads := []Quad{
		{S: IRI{Value: "https://example.org/row/r1"}, P: IRI{Value: "https://example.org/hasAge"}, O: Literal{Lexical: "36", Datatype: XSDInteger}},
		{S: IRI{Value: "https://example.org/row/0"}, P: IRI{Value: "https://example.org/hasAge"}, O: Literal{Lexical: "1"}},
	}
	out, err := EncodeQuads(FormatTurtle, quads, OptPrefixes(prefixes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "@prefix ex: <https://example.org/> .\n" +
		"@prefix row: <https://example.org/row/> .\n" +
		"@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .\n" +
		"\n" +
		"row:r1 ex:hasAge \"36\"^^xsd:integer .\n" +
		"<https://example.org/row/0> ex:hasAge \"1\" .\n"
	if out != want {
		t.Fatalf("unexpected Turtle:\n%s", out)
	}
}

func TestTriGGraphBlock(t *testing.T) {
	out, err := EncodeQuads(FormatTriG, turtleFixture[:2])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<https://example.org/g> {\n" +
		"    <https://example.org/row/0> <https://example.org/hasFirst> \"Ada\" ;\n" +
		"        <https://example.org/hasLast> \"Lovelace\" .\n" +
		"}\n"
	if out != want {
		t.Fatalf("unexpected TriG:\n%s", out)
	}
}

func TestTriGGraphSwitch(t *testing.T) {
	quads := []Quad{
		{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: Literal{Lexical: "a"}, G: IRI{Value: "http://example.org/g1"}},
		{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: Literal{Lexical: "b"}, G: IRI{Value: "http://example.org/g2"}},
		{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: Literal{Lexical: "c"}},
	}
	out, err := EncodeQuads(FormatTriG, quads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "{\n") != 2 || strings.Count(out, "}\n") != 2 {
		t.Fatalf("expected two graph blocks:\n%s", out)
	}
	if !strings.HasSuffix(out, "}\n<http://example.org/s> <http://example.org/p> \"c\" .\n") {
		t.Fatalf("default graph statement should follow the last block:\n%s", out)
	}
}

func TestTurtleDeterministic(t *testing.T) {
	prefixes := map[string]string{"ex": "https://example.org/", "b": "https://example.org/row/"}
	first, err := EncodeQuads(FormatTriG, turtleFixture, OptPrefixes(prefixes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := EncodeQuads(FormatTriG, turtleFixture, OptPrefixes(prefixes))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("output changed between runs:\n%s\n---\n%s", first, again)
		}
	}
}

func TestAbbreviateQName(t *testing.T) {
	prefixes := map[string]string{"ex": "http://example.org/", "exv": "http://example.org/v/"}
	cases := []struct {
		iri  string
		want string
		ok   bool
	}{
		{"http://example.org/thing", "ex:thing", true},
		{"http://example.org/v/term", "exv:term", true},
		{"http://example.org/row?id=1", "", false},
		{"http://example.org/trailing.", "", false},
		{"http://other.org/x", "", false},
		{"http://example.org/1st", "", false},
		{"http://example.org/first-name.v2", "ex:first-name.v2", true},
	}
	for _, c := range cases {
		got, ok := abbreviateQName(c.iri, prefixes)
		if ok != c.ok || got != c.want {
			t.Fatalf("abbreviateQName(%q) = %q, %v", c.iri, got, ok)
		}
	}
}
