package schema

import "strings"

const (
	hasPrefix      = "has"
	emptyKeyPhrase = "value"
)

// Tokenize splits a phrase into word tokens. Underscores and hyphens separate
// words; any other character outside [A-Za-z0-9] and whitespace is dropped.
func Tokenize(phrase string) []string {
	var sb strings.Builder
	sb.Grow(len(phrase))
	for _, r := range phrase {
		switch {
		case r == '_' || r == '-':
			sb.WriteByte(' ')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			sb.WriteByte(' ')
		case isASCIIAlnum(r):
			sb.WriteRune(r)
		}
	}
	return strings.Fields(sb.String())
}

// BuildPredicateLocalName turns a column key into a predicate local name.
// A key without any word token is named "value" before the has prefix and
// casing are applied.
func BuildPredicateLocalName(key string, opts PredicateOptions) string {
	tokens := Tokenize(key)
	if len(tokens) == 0 {
		tokens = []string{emptyKeyPhrase}
	}
	if opts.PrefixHas {
		tokens = append([]string{hasPrefix}, tokens...)
	}
	return joinTokens(tokens, opts.Casing)
}

func joinTokens(tokens []string, casing Casing) string {
	out := make([]string, len(tokens))
	switch casing {
	case PascalCase:
		for i, tok := range tokens {
			out[i] = capitalize(tok)
		}
		return strings.Join(out, "")
	case SnakeCase:
		for i, tok := range tokens {
			out[i] = strings.ToLower(tok)
		}
		return strings.Join(out, "_")
	case ShoutCase:
		for i, tok := range tokens {
			out[i] = strings.ToUpper(tok)
		}
		return strings.Join(out, "_")
	default:
		for i, tok := range tokens {
			if i == 0 {
				out[i] = strings.ToLower(tok)
				continue
			}
			out[i] = capitalize(tok)
		}
		return strings.Join(out, "")
	}
}

func capitalize(tok string) string {
	if tok == "" {
		return tok
	}
	return strings.ToUpper(tok[:1]) + strings.ToLower(tok[1:])
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
