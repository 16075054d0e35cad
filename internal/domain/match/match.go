// Package match locates a free-text quote inside a transcript index. The
// quote comes from an LLM and may be paraphrased, truncated or merged across
// sentences, so matching runs an ordered cascade of strategies from exact to
// increasingly relaxed; the first strategy that clears its own bar wins.
// Preferring exactness over a global best keeps runtime predictable and
// avoids a fuzzy hit shadowing a verbatim one.
package match

import (
	"strings"

	"github.com/forPelevin/reanchor/internal/domain/textnorm"
	"github.com/forPelevin/reanchor/internal/domain/transcript"
)

type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyExact
	StrategyMultiExact
	StrategyFuzzy
	StrategyTimeGuided
)

func (s Strategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyMultiExact:
		return "multi_exact"
	case StrategyFuzzy:
		return "fuzzy"
	case StrategyTimeGuided:
		return "time_guided"
	default:
		return "none"
	}
}

// Empirically chosen upstream; kept as named tunables rather than derived.
const (
	DefaultMinSimilarity = 0.8
	HintedMinSimilarity  = 0.75
	RelaxedSimilarity    = 0.6
	DefaultHintRadius    = 30.0
	DefaultMaxWindow     = 5

	multiExactConfidence = 0.95

	// Quotes below this many folded words are too ambiguous to anchor.
	minQuoteWords = 3
)

// Result describes where a quote landed. Offsets index the folded joined
// text; segment indices are what the span resolver consumes.
type Result struct {
	StartSeg   int
	EndSeg     int
	StartOff   int
	EndOff     int
	Confidence float64
	Strategy   Strategy
}

type Options struct {
	// MinSimilarity overrides the fuzzy acceptance bar; 0 means the default
	// (lowered automatically when a time hint is present).
	MinSimilarity float64
	// MaxWindow caps how many consecutive segments a match may span; 0
	// means DefaultMaxWindow.
	MaxWindow int
	// Hint is an approximate timestamp from the quote producer, used only
	// by the time-guided strategy. Valid when HasHint is set.
	Hint       float64
	HasHint    bool
	HintRadius float64
}

func (o Options) maxWindow() int {
	if o.MaxWindow > 0 {
		return o.MaxWindow
	}
	return DefaultMaxWindow
}

func (o Options) minSimilarity() float64 {
	if o.MinSimilarity > 0 {
		return o.MinSimilarity
	}
	if o.HasHint {
		return HintedMinSimilarity
	}
	return DefaultMinSimilarity
}

func (o Options) hintRadius() float64 {
	if o.HintRadius > 0 {
		return o.HintRadius
	}
	return DefaultHintRadius
}

// Find runs the strategy cascade. A false return is the expected outcome for
// hallucinated quotes; callers fall back or drop, they never get an error.
func Find(ix *transcript.Index, quote string, opts Options) (Result, bool) {
	q := textnorm.Fold(quote)
	qw := textnorm.Words(q)
	if len(qw) < minQuoteWords || ix.Len() == 0 {
		return Result{}, false
	}

	if r, ok := exact(ix, q); ok {
		return r, true
	}
	if r, ok := multiExact(ix, q, opts.maxWindow()); ok {
		return r, true
	}
	if r, ok := fuzzyRange(ix, qw, 0, ix.Len(), opts.minSimilarity(), opts.maxWindow()); ok {
		return r, true
	}
	if opts.HasHint {
		if r, ok := timeGuided(ix, qw, opts.Hint, opts.hintRadius(), opts.maxWindow()); ok {
			return r, true
		}
	}
	return Result{}, false
}

// exact: the folded quote appears verbatim inside a single segment.
func exact(ix *transcript.Index, q string) (Result, bool) {
	for i := 0; i < ix.Len(); i++ {
		pos := strings.Index(ix.Folded(i), q)
		if pos < 0 {
			continue
		}
		start := ix.Boundaries()[i].Start + pos
		return Result{
			StartSeg:   i,
			EndSeg:     i,
			StartOff:   start,
			EndOff:     start + len(q),
			Confidence: 1.0,
			Strategy:   StrategyExact,
		}, true
	}
	return Result{}, false
}

// multiExact: the folded quote appears verbatim in the joined text,
// straddling up to maxWin consecutive segments. The joined text is built
// with single joining spaces, so a substring hit here is identical to
// checking every bounded segment join.
func multiExact(ix *transcript.Index, q string, maxWin int) (Result, bool) {
	joined := ix.FoldedJoined()
	from := 0
	for {
		pos := strings.Index(joined[from:], q)
		if pos < 0 {
			return Result{}, false
		}
		pos += from
		s0 := ix.SegmentAt(pos)
		s1 := ix.SegmentAt(pos + len(q) - 1)
		if s0 >= 0 && s1 >= 0 && s1-s0+1 <= maxWin {
			return Result{
				StartSeg:   s0,
				EndSeg:     s1,
				StartOff:   pos,
				EndOff:     pos + len(q),
				Confidence: multiExactConfidence,
				Strategy:   StrategyMultiExact,
			}, true
		}
		from = pos + 1
	}
}

type rangedWord struct {
	text string
	seg  int
}

// fuzzyRange slides a quote-length word subsequence over segments [lo, hi)
// and scores it by normalized edit distance. Candidates spanning more than
// maxWin segments are skipped, which bounds the worst case on multi-hour
// transcripts together with the length pre-filter below.
func fuzzyRange(ix *transcript.Index, qw []string, lo, hi int, minSim float64, maxWin int) (Result, bool) {
	q := strings.Join(qw, " ")
	need := len(qw)

	var words []rangedWord
	for i := lo; i < hi && i < ix.Len(); i++ {
		for _, w := range strings.Fields(ix.Folded(i)) {
			words = append(words, rangedWord{text: w, seg: i})
		}
	}
	if len(words) < need {
		return Result{}, false
	}

	var (
		best    Result
		bestSim float64
	)
	var b strings.Builder
	for k := 0; k+need <= len(words); k++ {
		if words[k+need-1].seg-words[k].seg+1 > maxWin {
			continue
		}
		b.Reset()
		for j := k; j < k+need; j++ {
			if j > k {
				b.WriteByte(' ')
			}
			b.WriteString(words[j].text)
		}
		cand := b.String()

		// A length gap alone can prove the candidate cannot clear the bar;
		// skipping it never hides a candidate that could.
		if !lengthsCompatible(len(q), len(cand), minSim) {
			continue
		}
		sim := similarity(q, cand)
		if sim > bestSim {
			bestSim = sim
			best = Result{
				StartSeg:   words[k].seg,
				EndSeg:     words[k+need-1].seg,
				StartOff:   ix.Boundaries()[words[k].seg].Start,
				EndOff:     ix.Boundaries()[words[k+need-1].seg].End,
				Confidence: sim,
				Strategy:   StrategyFuzzy,
			}
		}
	}
	if bestSim < minSim {
		return Result{}, false
	}
	return best, true
}

// timeGuided rescues quotes whose wording drifted too far for the fuzzy
// strategy but whose producer-stated timestamp is roughly trustworthy:
// within ±radius of the hint, a three-word head or tail phrase hit, or a
// relaxed-threshold fuzzy pass, is accepted.
func timeGuided(ix *transcript.Index, qw []string, hint, radius float64, maxWin int) (Result, bool) {
	lo, hi := segmentRangeAround(ix, hint, radius)
	if lo >= hi {
		return Result{}, false
	}

	head := strings.Join(qw[:3], " ")
	tail := strings.Join(qw[len(qw)-3:], " ")
	for _, phrase := range []string{head, tail} {
		if r, ok := phraseInRange(ix, phrase, lo, hi); ok {
			return r, true
		}
	}

	if r, ok := fuzzyRange(ix, qw, lo, hi, RelaxedSimilarity, maxWin); ok {
		r.Strategy = StrategyTimeGuided
		return r, true
	}
	return Result{}, false
}

func segmentRangeAround(ix *transcript.Index, hint, radius float64) (int, int) {
	lo, hi := -1, -1
	for i := 0; i < ix.Len(); i++ {
		s := ix.Segment(i)
		if s.End() < hint-radius || s.Start > hint+radius {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i + 1
	}
	if lo < 0 {
		return 0, 0
	}
	return lo, hi
}

func phraseInRange(ix *transcript.Index, phrase string, lo, hi int) (Result, bool) {
	win := ix.FoldedWindow(lo, hi-1)
	pos := strings.Index(win, phrase)
	if pos < 0 {
		return Result{}, false
	}
	start := ix.Boundaries()[lo].Start + pos
	s0 := ix.SegmentAt(start)
	s1 := ix.SegmentAt(start + len(phrase) - 1)
	if s0 < 0 || s1 < 0 {
		return Result{}, false
	}
	return Result{
		StartSeg:   s0,
		EndSeg:     s1,
		StartOff:   start,
		EndOff:     start + len(phrase),
		Confidence: RelaxedSimilarity,
		Strategy:   StrategyTimeGuided,
	}, true
}

func lengthsCompatible(a, b int, minSim float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	maxLen := a
	if b > a {
		maxLen = b
	}
	if maxLen == 0 {
		return false
	}
	// dist >= |len(a)-len(b)|, so similarity <= (maxLen-diff)/maxLen.
	return float64(maxLen-diff)/float64(maxLen) >= minSim
}
