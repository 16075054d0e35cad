package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/reanchor/internal/domain/export"
	"github.com/forPelevin/reanchor/internal/ports"
	"github.com/forPelevin/reanchor/internal/ports/adapters/quotesfile"
	"github.com/forPelevin/reanchor/internal/ports/adapters/whisperjson"
	"github.com/forPelevin/reanchor/internal/ports/adapters/youtube"
	"github.com/forPelevin/reanchor/internal/types"
	"github.com/forPelevin/reanchor/internal/usecase"
)

type Config struct {
	// Transcript source: exactly one of TranscriptPath (local whisper-style
	// JSON) or VideoID (remote timedtext track).
	TranscriptPath string
	VideoID        string

	// Work item: exactly one of QuotesPath (align pipeline) or AnswerPath
	// (citation pipeline).
	QuotesPath string
	AnswerPath string

	OutDir string
	Logf   func(format string, args ...any)

	// Context widens aligned spans for viewing rather than citation.
	Context bool
	// MinSimilarity overrides the fuzzy matcher bar; 0 keeps the default.
	MinSimilarity float64

	TimedtextBaseURL      string
	TimedtextAllowedHosts []string
	TimedtextLang         string
}

func (c Config) Validate() error {
	if (c.TranscriptPath == "") == (c.VideoID == "") {
		return errors.New("exactly one of transcript path or video id is required")
	}
	if (c.QuotesPath == "") == (c.AnswerPath == "") {
		return errors.New("exactly one of quotes path or answer path is required")
	}
	if c.TranscriptPath != "" {
		if _, err := os.Stat(c.TranscriptPath); err != nil {
			return fmt.Errorf("stat transcript: %w", err)
		}
	}
	if c.QuotesPath != "" {
		if _, err := os.Stat(c.QuotesPath); err != nil {
			return fmt.Errorf("stat quotes: %w", err)
		}
	}
	if c.AnswerPath != "" {
		if _, err := os.Stat(c.AnswerPath); err != nil {
			return fmt.Errorf("stat answer: %w", err)
		}
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("min similarity must be within [0,1]")
	}
	if c.VideoID != "" {
		return youtube.ValidateBaseURL(c.TimedtextBaseURL, c.TimedtextAllowedHosts)
	}
	return nil
}

func Run(ctx context.Context, cfg Config) error {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	src, ref := transcriptSource(cfg)
	logf("loading transcript: %s", ref)
	tr, err := src.Load(ctx, ref)
	if err != nil {
		return err
	}
	logf("transcript: %d segments, %.0fs", len(tr.Segments), tr.TotalDuration())

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, ref, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return err
	}
	logf("output run dir: %s", runOutDir)

	if cfg.QuotesPath != "" {
		return runAlign(ctx, cfg, tr, ref, runOutDir, logf)
	}
	return runCite(ctx, cfg, tr, ref, runOutDir, logf)
}

func runAlign(
	ctx context.Context,
	cfg Config,
	tr types.Transcript,
	ref, runOutDir string,
	logf func(string, ...any),
) error {
	quotes, err := quotesfile.New().Load(ctx, cfg.QuotesPath)
	if err != nil {
		return err
	}
	logf("quotes loaded: %d", len(quotes))

	res, err := usecase.Align(ctx, usecase.AlignInput{
		Transcript:    tr,
		Quotes:        quotes,
		Context:       cfg.Context,
		MinSimilarity: cfg.MinSimilarity,
		Logf:          logf,
	})
	if err != nil {
		return err
	}

	report := types.AlignReport{Source: ref, Spans: res.Spans, Stats: res.Stats}
	if err := writeJSON(filepath.Join(runOutDir, "report.json"), report); err != nil {
		return err
	}
	srtPath := filepath.Join(runOutDir, "spans.srt")
	if err := os.WriteFile(srtPath, []byte(export.RenderSRT(res.Spans)), 0o644); err != nil {
		return err
	}
	logf("report written (%d spans): %s", len(res.Spans), runOutDir)
	return nil
}

func runCite(
	ctx context.Context,
	cfg Config,
	tr types.Transcript,
	ref, runOutDir string,
	logf func(string, ...any),
) error {
	b, err := os.ReadFile(cfg.AnswerPath)
	if err != nil {
		return fmt.Errorf("read answer: %w", err)
	}

	rep, err := usecase.Cite(ctx, tr, string(b))
	if err != nil {
		return err
	}
	rep.Source = ref

	if err := writeJSON(filepath.Join(runOutDir, "report.json"), rep); err != nil {
		return err
	}
	logf("report written (%d citations): %s", len(rep.Citations), runOutDir)
	return nil
}

func transcriptSource(cfg Config) (ports.TranscriptSource, string) {
	if cfg.VideoID != "" {
		return youtube.New(cfg.TimedtextBaseURL, cfg.TimedtextLang), cfg.VideoID
	}
	return whisperjson.New(), cfg.TranscriptPath
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

func buildRunOutDir(outRoot, ref string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", ref, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.TranscriptSource = (*whisperjson.Adapter)(nil)
var _ ports.TranscriptSource = (*youtube.Adapter)(nil)
var _ ports.QuoteSource = (*quotesfile.Adapter)(nil)
