package rdf

import "strings"

// Namespaces used by the tabular datatype coercion.
const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// XSD datatypes understood by the coercer.
var (
	XSDString   = IRI{Value: XSDNamespace + "string"}
	XSDBoolean  = IRI{Value: XSDNamespace + "boolean"}
	XSDInteger  = IRI{Value: XSDNamespace + "integer"}
	XSDDecimal  = IRI{Value: XSDNamespace + "decimal"}
	XSDDouble   = IRI{Value: XSDNamespace + "double"}
	XSDFloat    = IRI{Value: XSDNamespace + "float"}
	XSDDate     = IRI{Value: XSDNamespace + "date"}
	XSDDateTime = IRI{Value: XSDNamespace + "dateTime"}
	XSDAnyURI   = IRI{Value: XSDNamespace + "anyURI"}
)

// ExpandCURIE expands a compact "prefix:local" identifier against the given
// prefix map. Values that are already absolute or use an unknown prefix are
// returned unchanged.
func ExpandCURIE(value string, prefixes map[string]string) string {
	value = strings.TrimSpace(value)
	idx := strings.Index(value, ":")
	if idx < 0 {
		return value
	}
	prefix, local := value[:idx], value[idx+1:]
	if strings.HasPrefix(local, "//") {
		return value
	}
	if ns, ok := prefixes[prefix]; ok {
		return ns + local
	}
	if prefix == "xsd" {
		return XSDNamespace + local
	}
	return value
}
