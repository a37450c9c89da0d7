package rdf

import "testing"

func TestParseFormat(t *testing.T) {
	cases := []struct {
		input  string
		want   Format
		expect bool
	}{
		{"turtle", FormatTurtle, true},
		{"ttl", FormatTurtle, true},
		{"trig", FormatTriG, true},
		{"ntriples", FormatNTriples, true},
		{"nt", FormatNTriples, true},
		{"nquads", FormatNQuads, true},
		{"nq", FormatNQuads, true},
		{"jsonld", FormatJSONLD, true},
		{"json-ld", FormatJSONLD, true},
		{"json", FormatJSONLD, true},
		{"jsonld-graph", FormatJSONLDGraph, true},
		{" TTL ", FormatTurtle, true},
		{"rdfxml", "", false},
		{"unknown", "", false},
	}
	for _, c := range cases {
		got, ok := ParseFormat(c.input)
		if ok != c.expect {
			t.Fatalf("input %q ok=%v want %v", c.input, ok, c.expect)
		}
		if got != c.want {
			t.Fatalf("input %q got %v want %v", c.input, got, c.want)
		}
	}
}

func TestFormatRegistry(t *testing.T) {
	formats := Formats()
	if len(formats) != 6 {
		t.Fatalf("expected 6 formats, got %d", len(formats))
	}
	for _, f := range formats {
		info, ok := GetFormatInfo(f)
		if !ok || info.MIMEType == "" || info.Extension == "" {
			t.Fatalf("incomplete info for %s: %#v", f, info)
		}
	}
	if !FormatNQuads.IsQuadFormat() || !FormatTriG.IsQuadFormat() || FormatTurtle.IsQuadFormat() {
		t.Fatal("unexpected quad format classification")
	}
}
