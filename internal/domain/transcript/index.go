// Package transcript builds a read-only search index over a transcript.
// The index is constructed once per transcript and shared across all quote
// lookups; it is never mutated after Build, so concurrent readers need no
// synchronization.
package transcript

import (
	"strings"

	"github.com/forPelevin/reanchor/internal/domain/textnorm"
	"github.com/forPelevin/reanchor/internal/types"
)

// Boundary maps a half-open range [Start, End) of the normalized joined
// text back to the segment it came from. Boundaries are contiguous and
// cover the whole joined text.
type Boundary struct {
	Seg   int
	Start int
	End   int
}

type Index struct {
	segs   []types.Segment
	folded []string // per-segment matching form
	shown  []string // per-segment display form

	joined     string
	foldJoined string
	bounds     []Boundary
}

// Build creates the index in one O(total text) pass. An empty transcript
// yields an empty index on which every lookup misses.
func Build(tr types.Transcript) *Index {
	ix := &Index{
		segs:   tr.Segments,
		folded: make([]string, len(tr.Segments)),
		shown:  make([]string, len(tr.Segments)),
		bounds: make([]Boundary, 0, len(tr.Segments)),
	}

	var raw, fold strings.Builder
	for i, s := range tr.Segments {
		f := textnorm.Fold(s.Text)
		ix.folded[i] = f
		ix.shown[i] = textnorm.Display(s.Text)

		if raw.Len() > 0 {
			raw.WriteByte(' ')
			fold.WriteByte(' ')
		}
		start := fold.Len()
		raw.WriteString(s.Text)
		fold.WriteString(f)
		ix.bounds = append(ix.bounds, Boundary{Seg: i, Start: start, End: fold.Len()})
	}
	ix.joined = raw.String()
	ix.foldJoined = fold.String()
	return ix
}

func (ix *Index) Len() int { return len(ix.segs) }

func (ix *Index) Segment(i int) types.Segment { return ix.segs[i] }

func (ix *Index) Folded(i int) string { return ix.folded[i] }

func (ix *Index) Shown(i int) string { return ix.shown[i] }

func (ix *Index) Joined() string { return ix.joined }

func (ix *Index) FoldedJoined() string { return ix.foldJoined }

func (ix *Index) Boundaries() []Boundary { return ix.bounds }

func (ix *Index) TotalDuration() float64 {
	if len(ix.segs) == 0 {
		return 0
	}
	return ix.segs[len(ix.segs)-1].End()
}

// SegmentAt resolves an offset into the folded joined text to a segment
// index, -1 when out of range. Linear scan: transcripts are bounded in
// practice (hours of speech, not gigabytes), so this stays cheap relative
// to the fuzzy matching it supports.
func (ix *Index) SegmentAt(off int) int {
	for _, b := range ix.bounds {
		if off >= b.Start && off < b.End {
			return b.Seg
		}
	}
	// Joining spaces belong to the preceding segment.
	for i := len(ix.bounds) - 1; i >= 0; i-- {
		if off >= ix.bounds[i].End {
			if off < len(ix.foldJoined) {
				return ix.bounds[i].Seg
			}
			return -1
		}
	}
	return -1
}

// SegmentAtTime resolves a timestamp to the segment containing it. Ranges
// are half-open so a shared boundary belongs to the later segment; the final
// segment keeps its end inclusive. Returns -1 when t falls outside.
func (ix *Index) SegmentAtTime(t float64) int {
	for i, s := range ix.segs {
		if t < s.Start {
			continue
		}
		if t < s.End() || (i == len(ix.segs)-1 && t <= s.End()) {
			return i
		}
	}
	return -1
}

// FoldedWindow joins the folded text of segments [from, to] with single
// spaces, matching how FoldedJoined was built.
func (ix *Index) FoldedWindow(from, to int) string {
	if from < 0 || to >= len(ix.folded) || from > to {
		return ""
	}
	return strings.Join(ix.folded[from:to+1], " ")
}

// ShownWindow joins the display text of segments [from, to].
func (ix *Index) ShownWindow(from, to int) string {
	if from < 0 || to >= len(ix.shown) || from > to {
		return ""
	}
	return strings.Join(ix.shown[from:to+1], " ")
}
