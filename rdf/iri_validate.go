package rdf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateIRI validates an IRI string.
// Returns an error wrapping ErrInvalidIRI if the IRI is malformed.
//
// The check is intentionally basic: the IRI must parse with url.Parse, must
// not contain characters that IRIREF forbids, and, if it has a scheme, the
// scheme must start with a letter.
func ValidateIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("%w: empty IRI", ErrInvalidIRI)
	}

	parsed, err := url.Parse(iri)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIRI, err)
	}
	if parsed.Scheme != "" {
		first := parsed.Scheme[0]
		if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
			return fmt.Errorf("%w: scheme must start with a letter: %s", ErrInvalidIRI, iri)
		}
	} else if strings.HasPrefix(iri, "//") {
		return fmt.Errorf("%w: relative IRI without scheme: %s", ErrInvalidIRI, iri)
	}

	for i := 0; i < len(iri); i++ {
		if isForbiddenIRIByte(iri[i]) {
			return fmt.Errorf("%w: invalid character %q at position %d: %s", ErrInvalidIRI, iri[i], i, iri)
		}
	}
	return nil
}

// ValidateNamespace checks that ns is an absolute IRI usable as the base of
// minted identifiers: it needs a scheme and must end in '/' or '#'.
func ValidateNamespace(ns string) error {
	if err := ValidateIRI(ns); err != nil {
		return err
	}
	parsed, _ := url.Parse(ns)
	if !parsed.IsAbs() {
		return fmt.Errorf("%w: namespace must be absolute: %s", ErrInvalidIRI, ns)
	}
	if !strings.HasSuffix(ns, "/") && !strings.HasSuffix(ns, "#") {
		return fmt.Errorf("%w: namespace must end with '/' or '#': %s", ErrInvalidIRI, ns)
	}
	return nil
}
