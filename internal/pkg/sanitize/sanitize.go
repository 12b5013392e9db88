// Package sanitize cleans user supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

const maxPasses = 4

// Text strips NUL bytes and every HTML tag, then trims surrounding
// whitespace. Entities are decoded so plain text such as "Tea & cake"
// survives, and the result is sanitized again until decoding can no longer
// produce markup.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	stable := true
	for i := 0; strings.ContainsAny(s, "<>&"); i++ {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			break
		}
		s = next
		if i == maxPasses {
			stable = false
			break
		}
	}
	if !stable {
		s = strings.NewReplacer("<", "", ">", "").Replace(s)
	}
	return strings.TrimSpace(s)
}

// Ptr sanitizes *p in place. A nil pointer is left alone.
func Ptr(p *string) {
	if p != nil {
		*p = Text(*p)
	}
}

// Slice sanitizes every element and drops the empty ones.
func Slice(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = Text(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
