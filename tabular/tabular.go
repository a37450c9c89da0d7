// Package tabular reads delimited text and spreadsheets into a trimmed
// header + rows grid.
package tabular

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Delimiter is the field separator hint for delimited text.
type Delimiter string

const (
	// DelimiterNone asks the parser to detect the delimiter from the first line.
	DelimiterNone  Delimiter = ""
	DelimiterComma Delimiter = "comma"
	DelimiterTab   Delimiter = "tab"
)

// ParseDelimiter normalizes a user-supplied delimiter name.
func ParseDelimiter(value string) (Delimiter, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "auto":
		return DelimiterNone, nil
	case "comma", ",", "csv":
		return DelimiterComma, nil
	case "tab", "\t", "tsv":
		return DelimiterTab, nil
	default:
		return DelimiterNone, fmt.Errorf("unknown delimiter %q", value)
	}
}

func (d Delimiter) char() rune {
	if d == DelimiterTab {
		return '\t'
	}
	return ','
}

// Grid is a parsed table. Header is nil when the input had no lines.
// Rows may be ragged.
type Grid struct {
	Header []string
	Rows   [][]string
}

// Width returns the largest cell count across the header and all rows.
func (g Grid) Width() int {
	width := len(g.Header)
	for _, row := range g.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Empty reports whether the grid has neither header nor rows.
func (g Grid) Empty() bool {
	return g.Header == nil && len(g.Rows) == 0
}

var (
	// ErrInvalidEncoding is returned for delimited input that is not UTF-8.
	ErrInvalidEncoding = errors.New("tabular: input is not valid UTF-8")
)

var spreadsheetExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// IsSpreadsheet reports whether filename names a workbook format read by
// ReadSpreadsheet.
func IsSpreadsheet(filename string) bool {
	return spreadsheetExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Read loads r according to the extension of filename: workbooks go through
// ReadSpreadsheet, everything else is treated as delimited UTF-8 text.
func Read(ctx context.Context, filename string, r io.Reader, hint Delimiter) (Grid, error) {
	if err := ctx.Err(); err != nil {
		return Grid{}, err
	}
	if IsSpreadsheet(filename) {
		return ReadSpreadsheet(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Grid{}, fmt.Errorf("read %s: %w", filename, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return Grid{}, fmt.Errorf("%s: %w", filename, ErrInvalidEncoding)
	}
	return Parse(string(data), hint), nil
}
