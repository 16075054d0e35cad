// Package spans converts match results into displayable time intervals and
// merges near-adjacent intervals so a timeline UI does not flicker with
// micro-highlights.
package spans

import (
	"sort"
	"strings"

	"github.com/forPelevin/reanchor/internal/domain/match"
	"github.com/forPelevin/reanchor/internal/domain/transcript"
	"github.com/forPelevin/reanchor/internal/types"
)

const (
	// MinSpanSeconds is the minimum viewable duration of a resolved span.
	MinSpanSeconds = 15.0
	// MergeGapSeconds is the largest temporal gap between two spans that
	// still combines them into one.
	MergeGapSeconds = 5.0
	// ContextSegments is how far a span widens on each side when the caller
	// asks for viewing context instead of a minimal citation.
	ContextSegments = 2

	mergeSeparator = " ... "
)

type ResolveOptions struct {
	// Context widens the span by ContextSegments on each side.
	Context bool
	// Quote is the source text attributed to the span, carried through
	// merging for the UI.
	Quote string
}

// Resolve turns a segment range into seconds. The minimum-duration floor is
// enforced by extending end forward only, never start backward, so the
// anchor point the viewer lands on stays put; both edges are clamped to the
// transcript's total duration.
func Resolve(ix *transcript.Index, r match.Result, opts ResolveOptions) types.ResolvedSpan {
	s0, s1 := r.StartSeg, r.EndSeg
	if opts.Context {
		s0 -= ContextSegments
		s1 += ContextSegments
	}
	if s0 < 0 {
		s0 = 0
	}
	if s1 > ix.Len()-1 {
		s1 = ix.Len() - 1
	}

	start := ix.Segment(s0).Start
	end := ix.Segment(s1).End()
	if end < start+MinSpanSeconds {
		end = start + MinSpanSeconds
	}
	if total := ix.TotalDuration(); end > total {
		end = total
	}
	if end < start {
		end = start
	}

	span := types.ResolvedSpan{
		Start:      start,
		End:        end,
		Text:       ix.ShownWindow(s0, s1),
		Confidence: r.Confidence,
	}
	if opts.Quote != "" {
		span.Quotes = []string{opts.Quote}
	}
	return span
}

// Merge combines spans whose gap is at most MergeGapSeconds. Texts join with
// a visible separator, quote attributions union, and the merged confidence
// is the max of the parts: the strongest evidence still anchors the region.
func Merge(in []types.ResolvedSpan) []types.ResolvedSpan {
	if len(in) <= 1 {
		return in
	}

	sorted := make([]types.ResolvedSpan, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := []types.ResolvedSpan{sorted[0]}
	for _, next := range sorted[1:] {
		prev := &out[len(out)-1]
		if next.Start-prev.End > MergeGapSeconds {
			out = append(out, next)
			continue
		}
		if next.End > prev.End {
			prev.End = next.End
		}
		if next.Text != "" && next.Text != prev.Text {
			if prev.Text == "" {
				prev.Text = next.Text
			} else {
				prev.Text = prev.Text + mergeSeparator + next.Text
			}
		}
		if next.Confidence > prev.Confidence {
			prev.Confidence = next.Confidence
		}
		prev.Quotes = unionQuotes(prev.Quotes, next.Quotes)
	}
	return out
}

func unionQuotes(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a))
	for _, q := range a {
		seen[strings.TrimSpace(q)] = struct{}{}
	}
	for _, q := range b {
		key := strings.TrimSpace(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		a = append(a, q)
	}
	return a
}
