// Package export renders resolved spans as subtitle artifacts so players
// and timeline UIs can show highlight regions without parsing the report.
package export

import (
	"fmt"
	"strings"

	"github.com/forPelevin/reanchor/internal/types"
)

// RenderSRT writes one SRT cue per resolved span, in timeline order. Spans
// are expected to be merged already; empty-text spans still emit a cue with
// the confidence line so the region stays visible.
func RenderSRT(spans []types.ResolvedSpan) string {
	var b strings.Builder
	for i, s := range spans {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", srtTime(s.Start), srtTime(s.End))
		text := strings.TrimSpace(s.Text)
		if text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[confidence %.2f]\n", s.Confidence)
	}
	return b.String()
}

// srtTime formats seconds as HH:MM:SS,mmm.
func srtTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int(sec*1000 + 0.5)
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
