package coerce

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/geoknoesis/rdf-tabular/rdf"
)

var knownXSD = map[string]rdf.IRI{
	"string":   rdf.XSDString,
	"boolean":  rdf.XSDBoolean,
	"integer":  rdf.XSDInteger,
	"decimal":  rdf.XSDDecimal,
	"double":   rdf.XSDDouble,
	"float":    rdf.XSDFloat,
	"date":     rdf.XSDDate,
	"dateTime": rdf.XSDDateTime,
	"anyURI":   rdf.XSDAnyURI,
}

// ResolveDatatype expands a datatype identifier. It accepts full IRIs,
// CURIEs against prefixes (xsd is always known) and bare XSD local names
// such as "integer". Empty means xsd:string.
func ResolveDatatype(id string, prefixes map[string]string) (rdf.IRI, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return rdf.XSDString, nil
	}
	if dt, ok := knownXSD[id]; ok {
		return dt, nil
	}
	expanded := rdf.ExpandCURIE(id, prefixes)
	if err := rdf.ValidateIRI(expanded); err != nil {
		return rdf.IRI{}, fmt.Errorf("datatype %q: %w", id, err)
	}
	if u, err := url.Parse(expanded); err != nil || !u.IsAbs() || (u.Opaque == "" && u.Host == "" && u.Path == "") {
		return rdf.IRI{}, fmt.Errorf("datatype %q: %w: not an absolute IRI", id, rdf.ErrInvalidIRI)
	}
	return rdf.IRI{Value: expanded}, nil
}

// ResolveDatatypes resolves every value of a column key to datatype map.
func ResolveDatatypes(byKey map[string]string, prefixes map[string]string) (map[string]rdf.IRI, error) {
	if len(byKey) == 0 {
		return nil, nil
	}
	out := make(map[string]rdf.IRI, len(byKey))
	for key, id := range byKey {
		dt, err := ResolveDatatype(id, prefixes)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", key, err)
		}
		out[key] = dt
	}
	return out, nil
}
