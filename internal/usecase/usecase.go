package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/forPelevin/reanchor/internal/domain/citations"
	"github.com/forPelevin/reanchor/internal/domain/match"
	"github.com/forPelevin/reanchor/internal/domain/spans"
	"github.com/forPelevin/reanchor/internal/domain/transcript"
	"github.com/forPelevin/reanchor/internal/types"
)

// timestampOnlyConfidence marks spans rescued purely from a quote's
// timestamp hint after every matching strategy missed. Below every matcher
// bar so UIs can rank them as unverified.
const timestampOnlyConfidence = 0.4

type AlignInput struct {
	Transcript types.Transcript
	Quotes     []types.Quote
	// Context widens resolved spans for viewing rather than citation.
	Context bool
	// MinSimilarity/MaxWindow tune the matcher; zero values mean defaults.
	MinSimilarity float64
	MaxWindow     int
	Logf          func(format string, args ...any)
}

type AlignResult struct {
	Spans []types.ResolvedSpan
	Stats types.AlignReportStats
}

// Align anchors a batch of quotes onto one transcript. The index is built
// once; per-quote matches run concurrently over it (the index is immutable
// after Build, so no synchronization is needed beyond collecting results).
// A quote that fails every strategy falls back to a timestamp-only span when
// it carries a parseable hint, and is dropped otherwise; one bad quote never
// affects the rest of the batch.
func Align(ctx context.Context, in AlignInput) (AlignResult, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	ix := transcript.Build(in.Transcript)
	logf("index built: %d segments, %d chars", ix.Len(), len(ix.FoldedJoined()))

	outcomes := make([]alignOutcome, len(in.Quotes))

	var wg sync.WaitGroup
	for i, q := range in.Quotes {
		if err := ctx.Err(); err != nil {
			return AlignResult{}, err
		}
		wg.Add(1)
		go func(i int, q types.Quote) {
			defer wg.Done()
			outcomes[i] = alignOne(ix, q, in)
		}(i, q)
	}
	wg.Wait()

	res := AlignResult{Stats: types.AlignReportStats{Quotes: len(in.Quotes)}}
	var resolved []types.ResolvedSpan
	for i, o := range outcomes {
		switch {
		case o.resolved && o.fallback:
			res.Stats.Fallback++
			resolved = append(resolved, o.span)
		case o.resolved:
			res.Stats.Matched++
			resolved = append(resolved, o.span)
		default:
			res.Stats.Dropped++
			logf("quote %d dropped: no strategy matched", i+1)
		}
	}

	res.Spans = spans.Merge(resolved)
	res.Stats.Spans = len(res.Spans)
	logf("aligned %d/%d quotes into %d spans (%d fallback, %d dropped)",
		res.Stats.Matched+res.Stats.Fallback, res.Stats.Quotes,
		res.Stats.Spans, res.Stats.Fallback, res.Stats.Dropped)
	return res, nil
}

type alignOutcome struct {
	span     types.ResolvedSpan
	resolved bool
	fallback bool
}

func alignOne(ix *transcript.Index, q types.Quote, in AlignInput) (o alignOutcome) {
	opts := match.Options{
		MinSimilarity: in.MinSimilarity,
		MaxWindow:     in.MaxWindow,
	}
	hintStart, hintEnd, hasHint := citations.ParseRange(q.Timestamp)
	if hasHint {
		opts.Hint = hintStart
		opts.HasHint = true
	}

	if r, ok := match.Find(ix, q.Text, opts); ok {
		o.span = spans.Resolve(ix, r, spans.ResolveOptions{
			Context: in.Context,
			Quote:   strings.TrimSpace(q.Text),
		})
		o.resolved = true
		return o
	}

	if hasHint {
		o.span = fallbackSpan(ix, q, hintStart, hintEnd)
		o.resolved = true
		o.fallback = true
	}
	return o
}

// fallbackSpan trusts the producer's stated time when its wording cannot be
// found. The hinted segment's bounds drive the span so it still lands on a
// real utterance.
func fallbackSpan(ix *transcript.Index, q types.Quote, start, end float64) types.ResolvedSpan {
	seg := ix.SegmentAtTime(start)
	r := match.Result{Confidence: timestampOnlyConfidence, Strategy: match.StrategyNone}
	if seg >= 0 {
		r.StartSeg, r.EndSeg = seg, seg
		if end > start {
			if endSeg := ix.SegmentAtTime(end); endSeg > seg {
				r.EndSeg = endSeg
			}
		}
		return spans.Resolve(ix, r, spans.ResolveOptions{Quote: strings.TrimSpace(q.Text)})
	}

	// Hint outside the transcript entirely: clamp a bare interval.
	span := types.ResolvedSpan{
		Start:      start,
		End:        start + spans.MinSpanSeconds,
		Confidence: timestampOnlyConfidence,
		Quotes:     []string{strings.TrimSpace(q.Text)},
	}
	if total := ix.TotalDuration(); span.Start > total {
		span.Start = total
	}
	if total := ix.TotalDuration(); span.End > total {
		span.End = total
	}
	return span
}

// Cite resolves inline [MM:SS] tokens in a free-form answer against the
// transcript and rewrites them into numbered citation markers.
func Cite(ctx context.Context, tr types.Transcript, answer string) (types.CiteReport, error) {
	if err := ctx.Err(); err != nil {
		return types.CiteReport{}, err
	}
	ix := transcript.Build(tr)
	content, cits := citations.Extract(answer, ix)
	return types.CiteReport{Content: content, Citations: cits}, nil
}
