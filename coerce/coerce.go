// Package coerce maps raw cell strings to RDF terms for a declared datatype.
//
// Coercion never fails. A value that does not fit its datatype degrades to
// a fixed default and Coerce reports exact=false so callers can count it.
package coerce

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/geoknoesis/rdf-tabular/rdf"
)

// DateTimeLayout is the lexical form of coerced xsd:dateTime values.
const DateTimeLayout = "2006-01-02T15:04:05.000Z"

var (
	integerPrefix = regexp.MustCompile(`^[+-]?[0-9]+`)
	numberPrefix  = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?`)
)

// Coerce converts value into a term of the given datatype. A zero datatype
// means xsd:string.
func Coerce(value string, datatype rdf.IRI) (term rdf.Term, exact bool) {
	value = strings.TrimSpace(value)
	if datatype.Value == "" {
		datatype = rdf.XSDString
	}

	switch datatype {
	case rdf.XSDAnyURI:
		if isAbsoluteHTTP(value) {
			return rdf.IRI{Value: value}, true
		}
		return rdf.Literal{Lexical: value, Datatype: datatype}, true
	case rdf.XSDBoolean:
		lexical, ok := coerceBoolean(value)
		return rdf.Literal{Lexical: lexical, Datatype: datatype}, ok
	case rdf.XSDInteger:
		lexical, ok := coerceInteger(value)
		return rdf.Literal{Lexical: lexical, Datatype: datatype}, ok
	case rdf.XSDDecimal:
		lexical, ok := coerceDecimal(value)
		return rdf.Literal{Lexical: lexical, Datatype: datatype}, ok
	case rdf.XSDDouble, rdf.XSDFloat:
		lexical, ok := coerceDouble(value)
		return rdf.Literal{Lexical: lexical, Datatype: datatype}, ok
	case rdf.XSDDateTime:
		lexical, ok := coerceDateTime(value)
		return rdf.Literal{Lexical: lexical, Datatype: datatype}, ok
	default:
		return rdf.Literal{Lexical: value, Datatype: datatype}, true
	}
}

func isAbsoluteHTTP(value string) bool {
	lower := strings.ToLower(value)
	return (strings.HasPrefix(lower, "http://") && len(value) > len("http://")) ||
		(strings.HasPrefix(lower, "https://") && len(value) > len("https://"))
}

func coerceBoolean(value string) (string, bool) {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y":
		return "true", true
	case "0", "false", "no", "n":
		return "false", true
	case "":
		return "false", false
	default:
		return "true", false
	}
}

// coerceInteger reads the leading base-10 integer of value.
func coerceInteger(value string) (string, bool) {
	prefix := integerPrefix.FindString(value)
	if prefix == "" {
		return "0", false
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(prefix, "+"), 10)
	if !ok {
		return "0", false
	}
	return n.String(), prefix == value
}

func coerceDecimal(value string) (string, bool) {
	prefix := numberPrefix.FindString(value)
	if prefix == "" {
		return "0", false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(prefix, "+"))
	if err != nil {
		return "0", false
	}
	return d.String(), prefix == value
}

func coerceDouble(value string) (string, bool) {
	switch strings.ToUpper(value) {
	case "INF", "+INF", "INFINITY", "+INFINITY":
		return "INF", true
	case "-INF", "-INFINITY":
		return "-INF", true
	case "NAN":
		return "NaN", true
	}
	prefix := numberPrefix.FindString(value)
	if prefix == "" {
		return "0", false
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !math.IsInf(f, 0) {
		return "0", false
	}
	return formatDouble(f), prefix == value
}

// formatDouble renders f in the shortest round-trip form, switching to
// exponent notation outside [1e-6, 1e21).
func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// coerceDateTime falls back to the epoch when value has no calendar date.
// dateparse builds year-0 instants from bare time fragments and punctuation.
func coerceDateTime(value string) (string, bool) {
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil || t.Year() == 0 {
		return time.Unix(0, 0).UTC().Format(DateTimeLayout), false
	}
	return t.UTC().Format(DateTimeLayout), true
}
