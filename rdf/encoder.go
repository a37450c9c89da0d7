package rdf

import (
	"fmt"
	"strings"
)

// renderIRI writes an IRIREF, escaping characters the grammar forbids.
func renderIRI(iri IRI) string {
	return "<" + escapeIRI(iri.Value) + ">"
}

// renderTerm renders a term without prefix abbreviation.
func renderTerm(term Term) string {
	return renderTermWithPrefixes(term, nil)
}

func renderTermWithPrefixes(term Term, prefixes map[string]string) string {
	switch value := term.(type) {
	case IRI:
		return renderIRIWithPrefixes(value, prefixes)
	case BlankNode:
		return value.String()
	case Literal:
		return renderLiteral(value, prefixes)
	default:
		return ""
	}
}

func renderIRIWithPrefixes(iri IRI, prefixes map[string]string) string {
	if qname, ok := abbreviateQName(iri.Value, prefixes); ok {
		return qname
	}
	return renderIRI(iri)
}

// renderLiteral renders a literal. xsd:string is the implicit datatype of a
// simple literal and is never written out.
func renderLiteral(lit Literal, prefixes map[string]string) string {
	quoted := `"` + escapeLiteral(lit.Lexical) + `"`
	if lit.Lang != "" {
		return quoted + "@" + lit.Lang
	}
	if lit.Datatype.Value != "" && lit.Datatype != XSDString {
		return quoted + "^^" + renderIRIWithPrefixes(lit.Datatype, prefixes)
	}
	return quoted
}

// escapeLiteral applies canonical N-Triples string escaping.
func escapeLiteral(s string) string {
	if !needsLiteralEscape(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04X`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func needsLiteralEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' || c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}

// escapeIRI replaces characters not allowed in IRIREF with UCHAR escapes.
func escapeIRI(s string) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if isForbiddenIRIByte(s[i]) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		if r < 0x80 && isForbiddenIRIByte(byte(r)) {
			fmt.Fprintf(&sb, `\u%04X`, r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isForbiddenIRIByte(c byte) bool {
	if c <= 0x20 {
		return true
	}
	switch c {
	case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
		return true
	}
	return false
}
