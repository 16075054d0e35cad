// Package citations rewrites inline [MM:SS] timestamp tokens in an LLM
// answer into numbered citation markers backed by transcript segments.
// Tokens that resolve to no segment are removed rather than guessed at:
// a dangling citation is worse than a missing one.
package citations

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/reanchor/internal/domain/transcript"
	"github.com/forPelevin/reanchor/internal/types"
)

const (
	// contextRadius is how many characters around a token feed its preview.
	contextRadius = 150
	// contextMaxWords caps the preview after token stripping.
	contextMaxWords = 40
)

var stampRE = regexp.MustCompile(`\[(\d{1,3}):(\d{2})(?:\s*-\s*(\d{1,3}):(\d{2}))?\]`)

// ParseStamp converts "MM:SS" to seconds. Minutes may exceed 59 for long
// videos; seconds must stay below 60.
func ParseStamp(s string) (float64, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 0 {
		return 0, false
	}
	sec, err := strconv.Atoi(parts[1])
	if err != nil || sec < 0 || sec > 59 {
		return 0, false
	}
	return float64(m*60 + sec), true
}

// ParseRange parses a quote timestamp hint like "[MM:SS]" or
// "[MM:SS-MM:SS]". The end is negative when absent.
func ParseRange(s string) (start, end float64, ok bool) {
	m := stampRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	start, ok = ParseStamp(m[1] + ":" + m[2])
	if !ok {
		return 0, 0, false
	}
	if m[3] == "" {
		return start, -1, true
	}
	end, ok = ParseStamp(m[3] + ":" + m[4])
	if !ok || end < start {
		return start, -1, true
	}
	return start, end, true
}

// Extract scans the answer left to right, resolves each timestamp token to
// a containing segment, numbers first occurrences sequentially, and rewrites
// the text to use [n] markers. Unresolvable tokens are dropped from both the
// text and the citation list.
func Extract(answer string, ix *transcript.Index) (string, []types.Citation) {
	var citations []types.Citation
	numbers := make(map[string]int)

	// ReplaceAllStringFunc visits matches left to right; the cursor keeps
	// repeated identical tokens pointing at their own occurrence.
	cursor := 0
	content := stampRE.ReplaceAllStringFunc(answer, func(tok string) string {
		loc := strings.Index(answer[cursor:], tok) + cursor
		cursor = loc + len(tok)
		start, end, ok := ParseRange(tok)
		if !ok {
			return ""
		}
		seg := ix.SegmentAtTime(start)
		if seg < 0 {
			return ""
		}

		key := dedupKey(start, end)
		n, seen := numbers[key]
		if !seen {
			n = len(numbers) + 1
			numbers[key] = n
			c := types.Citation{
				Number:    n,
				Timestamp: start,
				Text:      ix.Shown(seg),
				Context:   contextAround(answer, loc, len(tok)),
			}
			if end >= 0 {
				e := end
				c.EndTime = &e
			}
			citations = append(citations, c)
		}
		return fmt.Sprintf("[%d]", n)
	})

	return cleanWhitespace(content), citations
}

func dedupKey(start, end float64) string {
	if end < 0 {
		return fmt.Sprintf("%.3f|", start)
	}
	return fmt.Sprintf("%.3f|%.3f", start, end)
}

// contextAround grabs the original text surrounding a token, strips other
// timestamp tokens, and caps the word count. Preview only, never matched on.
func contextAround(answer string, loc, tokLen int) string {
	lo := loc - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := loc + tokLen + contextRadius
	if hi > len(answer) {
		hi = len(answer)
	}
	ctx := stampRE.ReplaceAllString(answer[lo:hi], "")
	words := strings.Fields(ctx)
	if len(words) > contextMaxWords {
		words = words[:contextMaxWords]
	}
	return strings.Join(words, " ")
}

// cleanWhitespace collapses space/tab runs but keeps newlines so paragraph
// structure survives the rewrite.
func cleanWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.Join(strings.Fields(ln), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
