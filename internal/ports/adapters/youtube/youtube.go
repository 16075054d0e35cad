// Package youtube fetches a video's timedtext track and converts it into a
// transcript. Only the caption endpoint is touched; no player or auth
// surface exists here.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/forPelevin/reanchor/internal/types"
)

const requestTimeout = 30 * time.Second

type Adapter struct {
	baseURL string
	lang    string
	client  *http.Client
}

func New(baseURL, lang string) *Adapter {
	if lang == "" {
		lang = "en"
	}
	return &Adapter{
		baseURL: normalizeBaseURL(baseURL),
		lang:    lang,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// json3 timedtext shape: events carry start/duration in ms and utf8 runs.
type timedTextEvent struct {
	TStartMs    int64 `json:"tStartMs"`
	DDurationMs int64 `json:"dDurationMs"`
	Segs        []struct {
		UTF8 string `json:"utf8"`
	} `json:"segs"`
}

type timedText struct {
	Events []timedTextEvent `json:"events"`
}

// Load fetches the timedtext track for a video ID.
func (a *Adapter) Load(ctx context.Context, videoID string) (types.Transcript, error) {
	if strings.TrimSpace(videoID) == "" {
		return types.Transcript{}, fmt.Errorf("video id is empty")
	}

	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", a.lang)
	q.Set("fmt", "json3")
	reqURL := a.baseURL + "/api/timedtext?" + q.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "GET", reqURL, nil)
	if err != nil {
		return types.Transcript{}, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("timedtext fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return types.Transcript{}, fmt.Errorf("timedtext status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return types.Transcript{}, fmt.Errorf("timedtext status %d: %s", resp.StatusCode, truncate(string(rb), 400))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Transcript{}, err
	}
	return parseTimedText(b)
}

func parseTimedText(b []byte) (types.Transcript, error) {
	var tt timedText
	if err := json.Unmarshal(b, &tt); err != nil {
		return types.Transcript{}, fmt.Errorf("parse timedtext: %w", err)
	}

	tr := types.Transcript{Segments: make([]types.Segment, 0, len(tt.Events))}
	for _, ev := range tt.Events {
		var parts []string
		for _, s := range ev.Segs {
			if t := strings.TrimSpace(s.UTF8); t != "" {
				parts = append(parts, t)
			}
		}
		text := strings.Join(parts, " ")
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start:    float64(ev.TStartMs) / 1000,
			Duration: float64(ev.DDurationMs) / 1000,
			Text:     text,
		})
	}
	return tr, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
