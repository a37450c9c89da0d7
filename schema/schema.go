// Package schema derives column keys and predicate local names from a grid.
//
// Local names are a pure function of the column key and PredicateOptions, so
// the same header always maps to the same predicate regardless of row data.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Casing selects how predicate tokens are joined.
type Casing string

const (
	CamelCase  Casing = "camelCase"
	PascalCase Casing = "PascalCase"
	SnakeCase  Casing = "snake_case"
	ShoutCase  Casing = "SHOUT_CASE"
)

// ParseCasing accepts the canonical casing names and their common spellings.
func ParseCasing(value string) (Casing, error) {
	normalized := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(value))
	switch normalized {
	case "", "camel", "camelcase":
		return CamelCase, nil
	case "pascal", "pascalcase":
		return PascalCase, nil
	case "snake", "snakecase":
		return SnakeCase, nil
	case "shout", "shoutcase", "screamingsnakecase", "upper", "uppercase":
		return ShoutCase, nil
	default:
		return "", fmt.Errorf("unknown casing %q", value)
	}
}

// HeaderMode selects how columns are named when the grid has no header.
type HeaderMode string

const (
	// Ordinal names columns ColumnA, ColumnB, ... ColumnAA.
	Ordinal HeaderMode = "ordinal"
	// Index names columns Column0, Column1, ...
	Index HeaderMode = "index"
)

// ParseHeaderMode normalizes a header mode name. Empty means Ordinal.
func ParseHeaderMode(value string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "ordinal", "letters":
		return Ordinal, nil
	case "index", "numeric":
		return Index, nil
	default:
		return "", fmt.Errorf("unknown header mode %q", value)
	}
}

// PredicateOptions controls predicate naming.
type PredicateOptions struct {
	PrefixHas    bool       `json:"prefixHas" yaml:"prefix_has"`
	Casing       Casing     `json:"casing" yaml:"casing"`
	WhenNoHeader HeaderMode `json:"whenNoHeader" yaml:"when_no_header"`
}

// DefaultPredicateOptions returns hasCamelCase naming with lettered columns.
func DefaultPredicateOptions() PredicateOptions {
	return PredicateOptions{PrefixHas: true, Casing: CamelCase, WhenNoHeader: Ordinal}
}

const syntheticKeyPrefix = "Column"

// ToColumnLetters renders a zero-based column index in spreadsheet letters:
// 0 is A, 25 is Z, 26 is AA. Negative indexes yield "".
func ToColumnLetters(n int) string {
	if n < 0 {
		return ""
	}
	var buf []byte
	for n++; n > 0; n /= 26 {
		n--
		buf = append(buf, byte('A'+n%26))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// BuildColumnKeys derives one unique key per column.
//
// With treatFirstRowAsHeader and a non-empty header, each header cell is a
// key; empty cells become "Column" and repeats are suffixed _2, _3, ... in
// order. Otherwise keys are synthesized for the widest row of the grid using
// mode.
func BuildColumnKeys(header []string, rows [][]string, treatFirstRowAsHeader bool, mode HeaderMode) []string {
	if treatFirstRowAsHeader && len(header) > 0 {
		return dedupe(header)
	}

	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	keys := make([]string, width)
	for i := range keys {
		if mode == Index {
			keys[i] = syntheticKeyPrefix + strconv.Itoa(i)
		} else {
			keys[i] = syntheticKeyPrefix + ToColumnLetters(i)
		}
	}
	return keys
}

func dedupe(header []string) []string {
	keys := make([]string, len(header))
	used := make(map[string]bool, len(header))
	repeats := make(map[string]int, len(header))
	for i, cell := range header {
		base := strings.TrimSpace(cell)
		if base == "" {
			base = syntheticKeyPrefix
		}
		key := base
		for used[key] {
			repeats[base]++
			key = base + "_" + strconv.Itoa(repeats[base]+1)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}
