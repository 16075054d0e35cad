package types

type Transcript struct {
	Segments []Segment `json:"segments"`
}

// Segment is one timed unit of transcript text. Segments are ordered by
// Start; consecutive segments may overlap slightly at the edges.
type Segment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

func (s Segment) End() float64 { return s.Start + s.Duration }

// TotalDuration is the end of the last segment, 0 for an empty transcript.
func (t Transcript) TotalDuration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End()
}

// Quote is untrusted LLM output: the text may be paraphrased, truncated or
// invented, and the timestamp hint may be absent or wrong.
type Quote struct {
	Timestamp string `json:"timestamp,omitempty"`
	Text      string `json:"text"`
}

// ResolvedSpan is a quote anchored onto the transcript timeline.
type ResolvedSpan struct {
	Start      float64  `json:"start_sec"`
	End        float64  `json:"end_sec"`
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Quotes     []string `json:"quotes,omitempty"`
}

// Citation is a numbered, deduplicated reference from answer text back to a
// transcript timestamp. Numbers follow first appearance order and repeated
// timestamps keep their original number.
type Citation struct {
	Number    int      `json:"number"`
	Timestamp float64  `json:"timestamp"`
	EndTime   *float64 `json:"end_time,omitempty"`
	Text      string   `json:"text"`
	Context   string   `json:"context"`
}

type AlignReport struct {
	Source string           `json:"source"`
	Spans  []ResolvedSpan   `json:"spans"`
	Stats  AlignReportStats `json:"stats"`
}

type AlignReportStats struct {
	Quotes   int `json:"quotes"`
	Matched  int `json:"matched"`
	Fallback int `json:"fallback"`
	Dropped  int `json:"dropped"`
	Spans    int `json:"spans"`
}

type CiteReport struct {
	Source    string     `json:"source"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations"`
}
