// Package normalize converts raw source values into canonical form:
// whitespace cleanup, multi-value splitting and deduplication, controlled
// vocabulary translation, relator construction, title assembly, and
// extended date/time (EDTF) normalization.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var multiSpace = regexp.MustCompile(`\s+`)

// CollapseWhitespace removes newlines and squeezes runs of whitespace into
// single spaces.
func CollapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SplitValues splits a raw cell on unescaped commas, removes the escape
// characters, and drops empty parts. A literal comma is written "\,".
func SplitValues(s string) []string {
	s = CollapseWhitespace(s)
	if s == "" {
		return nil
	}

	var parts []string
	var b strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			parts = append(parts, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteRune('\\')
	}
	parts = append(parts, b.String())

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// foldKey normalizes a value for case-insensitive comparison.
func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// Dedup removes duplicates under case-insensitive comparison, preserving
// first-seen order and the casing of the first occurrence.
func Dedup(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		k := foldKey(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
