package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding whitespace and composes the name to NFC so
// visually identical names compare equal under the UNIQUE constraints.
// "  Café " (with a combining acute) -> "Café" (precomposed).
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// FieldError reports a single field that failed a domain rule.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}
