package rdf

import "strings"

const (
	localStart = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_"
	localRest  = localStart + "0123456789-."
)

// isQNameLocal reports whether value can follow "prefix:" in Turtle
// without escaping. Only an ASCII subset of PN_LOCAL is accepted.
func isQNameLocal(value string) bool {
	switch {
	case value == "":
		return false
	case !strings.ContainsRune(localStart, rune(value[0])):
		return false
	case strings.HasSuffix(value, "."):
		return false
	}
	for i := 1; i < len(value); i++ {
		if !strings.ContainsRune(localRest, rune(value[i])) {
			return false
		}
	}
	return true
}
