// Package id generates prefixed NanoID identifiers for requests and seed runs.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes in use.
const (
	PrefixRequest = "req"
	PrefixSeed    = "seed"
)

const nanoidLength = 21

// Generate creates a prefixed unique ID, e.g. "req-V1StGXR8_Z5jdHi6B-myT".
// It fails only if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Valid reports whether s looks like an ID produced by Generate(prefix).
// Incoming X-Request-ID headers that fail this check are replaced.
func Valid(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"-")
	if !ok || len(rest) != nanoidLength {
		return false
	}
	for _, c := range rest {
		if !urlSafe(c) {
			return false
		}
	}
	return true
}

func urlSafe(c rune) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '-'
}
