// Package whisperjson loads transcripts produced by whisper.cpp-style
// tools: a JSON file with segments carrying start/end seconds and text.
package whisperjson

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/forPelevin/reanchor/internal/types"
)

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

type fileSegment struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

type fileTranscript struct {
	Segments []fileSegment `json:"segments"`
}

// Load reads the file and converts end times to durations. Either "end" or
// "duration" is accepted per segment; end wins when both are present.
func (a *Adapter) Load(ctx context.Context, path string) (types.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return types.Transcript{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read transcript: %w", err)
	}

	var ft fileTranscript
	if err := json.Unmarshal(b, &ft); err != nil {
		return types.Transcript{}, fmt.Errorf("parse transcript %s: %w", path, err)
	}

	tr := types.Transcript{Segments: make([]types.Segment, 0, len(ft.Segments))}
	for _, s := range ft.Segments {
		dur := s.Duration
		if s.End > s.Start {
			dur = s.End - s.Start
		}
		if dur < 0 {
			dur = 0
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start:    s.Start,
			Duration: dur,
			Text:     strings.TrimSpace(s.Text),
		})
	}
	return tr, nil
}
