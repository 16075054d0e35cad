package export

import (
	"strings"
	"testing"

	"github.com/forPelevin/reanchor/internal/types"
)

func TestSRTTime_Format(t *testing.T) {
	tests := map[float64]string{
		0:        "00:00:00,000",
		61.234:   "00:01:01,234",
		3661.5:   "01:01:01,500",
		-2:       "00:00:00,000",
	}
	for in, want := range tests {
		if got := srtTime(in); got != want {
			t.Fatalf("srtTime(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderSRT(t *testing.T) {
	out := RenderSRT([]types.ResolvedSpan{
		{Start: 0, End: 15, Text: "first highlight", Confidence: 1},
		{Start: 30, End: 45, Text: "second highlight", Confidence: 0.8},
	})

	if !strings.Contains(out, "1\n00:00:00,000 --> 00:00:15,000\nfirst highlight") {
		t.Fatalf("missing first cue:\n%s", out)
	}
	if !strings.Contains(out, "2\n00:00:30,000 --> 00:00:45,000\nsecond highlight") {
		t.Fatalf("missing second cue:\n%s", out)
	}
	if !strings.Contains(out, "[confidence 0.80]") {
		t.Fatalf("missing confidence line:\n%s", out)
	}
}

func TestRenderSRT_Empty(t *testing.T) {
	if got := RenderSRT(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
