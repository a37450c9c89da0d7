// Package ident mints the graph, row subject and predicate IRIs of a run.
package ident

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geoknoesis/rdf-tabular/rdf"
)

// Namespaces are the base IRIs identifiers are minted under. Each must end
// in '/' or '#'.
type Namespaces struct {
	Instance  string `yaml:"instance" json:"instance"`
	Predicate string `yaml:"predicate" json:"predicate"`
	Run       string `yaml:"run" json:"run"`
}

// Validate checks every namespace with rdf.ValidateNamespace.
func (n Namespaces) Validate() error {
	for _, ns := range []string{n.Instance, n.Predicate, n.Run} {
		if err := rdf.ValidateNamespace(ns); err != nil {
			return err
		}
	}
	return nil
}

// TokenSource produces the unique part of row subject IRIs.
type TokenSource interface {
	Token() string
}

// UUIDTokens returns a random version 4 UUID per call.
type UUIDTokens struct{}

// Token implements TokenSource.
func (UUIDTokens) Token() string { return uuid.NewString() }

// Builder mints identifiers for one configuration.
type Builder struct {
	ns     Namespaces
	tokens TokenSource
	now    func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithTokens replaces the random token source.
func WithTokens(tokens TokenSource) Option {
	return func(b *Builder) {
		if tokens != nil {
			b.tokens = tokens
		}
	}
}

// WithClock replaces time.Now for graph dating.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder returns a Builder using UUID tokens and the wall clock.
func NewBuilder(ns Namespaces, opts ...Option) *Builder {
	b := &Builder{ns: ns, tokens: UUIDTokens{}, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Namespaces returns the configured base IRIs.
func (b *Builder) Namespaces() Namespaces { return b.ns }

// GraphIRI returns the run graph for filename on the current UTC day.
func (b *Builder) GraphIRI(filename string) rdf.IRI {
	return b.GraphIRIAt(filename, b.now())
}

// GraphIRIAt returns run namespace + YYYY-MM-DD + "/" + slug, where the slug
// is taken from the base name of filename without its extension.
func (b *Builder) GraphIRIAt(filename string, at time.Time) rdf.IRI {
	base := filepath.Base(filepath.ToSlash(filename))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return rdf.IRI{Value: b.ns.Run + at.UTC().Format("2006-01-02") + "/" + Slugify(base)}
}

// RowSubject mints a fresh subject for the data row at rowIndex. Two calls
// never return the same IRI; the index is only an ordering hint.
func (b *Builder) RowSubject(rowIndex int) rdf.IRI {
	return rdf.IRI{Value: b.ns.Instance + b.tokens.Token() + "?row=" + url.QueryEscape(strconv.Itoa(rowIndex))}
}

// Predicate returns predicate namespace + localName.
func (b *Builder) Predicate(localName string) rdf.IRI {
	return rdf.IRI{Value: b.ns.Predicate + localName}
}

// Slugify lowercases s and replaces every run of characters outside
// [a-z0-9_-] with a single hyphen. Existing hyphens are kept as they are;
// hyphens at either end are trimmed. An empty result becomes "file".
func Slugify(s string) string {
	var sb strings.Builder
	inRun := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			sb.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			sb.WriteByte('-')
			inRun = true
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		return "file"
	}
	return slug
}
