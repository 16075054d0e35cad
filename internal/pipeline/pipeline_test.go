package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/reanchor/internal/types"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Transcript.json", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "my-cool-transcript-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("my-cool-transcript-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func writeTestInputs(t *testing.T) (transcriptPath, quotesPath, answerPath string) {
	t.Helper()
	dir := t.TempDir()

	transcriptPath = filepath.Join(dir, "transcript.json")
	require.NoError(t, os.WriteFile(transcriptPath, []byte(`{"segments":[
		{"start": 0, "end": 3, "text": "the quick brown fox jumps"},
		{"start": 3, "end": 5, "text": "over the lazy dog"}
	]}`), 0o644))

	quotesPath = filepath.Join(dir, "quotes.json")
	require.NoError(t, os.WriteFile(quotesPath, []byte(`[
		{"text": "brown fox jumps over the lazy"}
	]`), 0o644))

	answerPath = filepath.Join(dir, "answer.txt")
	require.NoError(t, os.WriteFile(answerPath, []byte("The fox appears at [00:01]."), 0o644))
	return transcriptPath, quotesPath, answerPath
}

func TestConfigValidate(t *testing.T) {
	transcriptPath, quotesPath, answerPath := writeTestInputs(t)

	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "align config ok",
			cfg:  Config{TranscriptPath: transcriptPath, QuotesPath: quotesPath},
		},
		{
			name: "cite config ok",
			cfg:  Config{TranscriptPath: transcriptPath, AnswerPath: answerPath},
		},
		{
			name:    "no transcript source",
			cfg:     Config{QuotesPath: quotesPath},
			wantErr: true,
		},
		{
			name:    "both transcript sources",
			cfg:     Config{TranscriptPath: transcriptPath, VideoID: "abc", QuotesPath: quotesPath},
			wantErr: true,
		},
		{
			name:    "both work items",
			cfg:     Config{TranscriptPath: transcriptPath, QuotesPath: quotesPath, AnswerPath: answerPath},
			wantErr: true,
		},
		{
			name:    "missing quotes file",
			cfg:     Config{TranscriptPath: transcriptPath, QuotesPath: filepath.Join(t.TempDir(), "nope.json")},
			wantErr: true,
		},
		{
			name:    "bad similarity",
			cfg:     Config{TranscriptPath: transcriptPath, QuotesPath: quotesPath, MinSimilarity: 1.5},
			wantErr: true,
		},
		{
			name:    "video id with bad base url",
			cfg:     Config{VideoID: "abc", QuotesPath: quotesPath, TimedtextBaseURL: "http://evil.example"},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRun_AlignWritesReportAndSRT(t *testing.T) {
	transcriptPath, quotesPath, _ := writeTestInputs(t)
	outDir := filepath.Join(t.TempDir(), "out")

	err := Run(context.Background(), Config{
		TranscriptPath: transcriptPath,
		QuotesPath:     quotesPath,
		OutDir:         outDir,
	})
	require.NoError(t, err)

	runDirs, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, runDirs, 1)
	runDir := filepath.Join(outDir, runDirs[0].Name())

	b, err := os.ReadFile(filepath.Join(runDir, "report.json"))
	require.NoError(t, err)
	var report types.AlignReport
	require.NoError(t, json.Unmarshal(b, &report))
	require.Len(t, report.Spans, 1)
	assert.Equal(t, 0.0, report.Spans[0].Start)
	assert.Equal(t, 1, report.Stats.Matched)

	srt, err := os.ReadFile(filepath.Join(runDir, "spans.srt"))
	require.NoError(t, err)
	assert.Contains(t, string(srt), "-->")
}

func TestRun_CiteWritesReport(t *testing.T) {
	transcriptPath, _, answerPath := writeTestInputs(t)
	outDir := filepath.Join(t.TempDir(), "out")

	err := Run(context.Background(), Config{
		TranscriptPath: transcriptPath,
		AnswerPath:     answerPath,
		OutDir:         outDir,
	})
	require.NoError(t, err)

	runDirs, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, runDirs, 1)

	b, err := os.ReadFile(filepath.Join(outDir, runDirs[0].Name(), "report.json"))
	require.NoError(t, err)
	var report types.CiteReport
	require.NoError(t, json.Unmarshal(b, &report))
	require.Len(t, report.Citations, 1)
	assert.Equal(t, "The fox appears at [1].", report.Content)
}
