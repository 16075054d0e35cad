// Package textnorm canonicalizes transcript and quote text so matching is
// not defeated by cosmetic differences (smart quotes, dash variants,
// whitespace runs). Two forms exist: Fold for matching, Display for output.
package textnorm

import (
	"strings"
	"unicode"
)

// Fold returns the matching form: lowercase, unified punctuation, single
// spaces. Idempotent, pure, never fails on any input.
func Fold(s string) string {
	return collapseSpaces(unifyRunes(strings.ToLower(s)))
}

// Display returns the display form: whitespace-only normalization with the
// original casing and punctuation kept, so matched text reads as spoken.
func Display(s string) string {
	return collapseSpaces(s)
}

func unifyRunes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '‘', '’', '‚', '′':
			b.WriteByte('\'')
		case '“', '”', '„', '″':
			b.WriteByte('"')
		case '–', '—', '―':
			b.WriteByte('-')
		case '…':
			b.WriteString("...")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			prevSpace = true
			continue
		}
		if prevSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Words splits a folded string into tokens. Callers fold first; Words itself
// only splits on spaces.
func Words(s string) []string {
	return strings.Fields(s)
}
