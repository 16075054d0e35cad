package ports

import (
	"context"

	"github.com/forPelevin/reanchor/internal/types"
)

// TranscriptSource produces the transcript to align against. The ref is
// adapter-specific: a file path for local artifacts, a video ID for remote
// tracks.
type TranscriptSource interface {
	Load(ctx context.Context, ref string) (types.Transcript, error)
}

// QuoteSource produces the untrusted quote batch from the LLM stage.
type QuoteSource interface {
	Load(ctx context.Context, ref string) ([]types.Quote, error)
}
