package tabular

import "strings"

// Parse splits delimited text into a grid. Line endings are normalized,
// zero-length lines are dropped, and the first remaining line becomes the
// header. With DelimiterNone the delimiter is detected from the first
// non-blank line.
func Parse(text string, hint Delimiter) Grid {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for _, line := range strings.Split(text, "\n") {
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return Grid{}
	}

	delim := hint
	if delim == DelimiterNone {
		delim = DelimiterComma
		for _, line := range lines {
			if strings.TrimSpace(line) != "" {
				delim = DetectDelimiter(line)
				break
			}
		}
	}

	sep := delim.char()
	grid := Grid{Header: splitLine(lines[0], sep)}
	if len(lines) > 1 {
		grid.Rows = make([][]string, 0, len(lines)-1)
		for _, line := range lines[1:] {
			grid.Rows = append(grid.Rows, splitLine(line, sep))
		}
	}
	return grid
}

// DetectDelimiter picks tab when line has more tabs than commas.
func DetectDelimiter(line string) Delimiter {
	if strings.Count(line, "\t") > strings.Count(line, ",") {
		return DelimiterTab
	}
	return DelimiterComma
}

// splitLine scans one line with a quote-aware state machine. Inside quotes a
// doubled quote is a literal quote and any other quote closes the span.
func splitLine(line string, sep rune) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inQuotes {
			if c == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
				continue
			}
			field.WriteRune(c)
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case sep:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(c)
		}
	}
	return append(fields, strings.TrimSpace(field.String()))
}
