package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/reanchor/internal/types"
)

func testTranscript() types.Transcript {
	return types.Transcript{Segments: []types.Segment{
		{Start: 0, Duration: 3, Text: "the quick brown fox jumps"},
		{Start: 3, Duration: 2, Text: "over the lazy dog"},
	}}
}

func TestAlign_ScenarioQuickBrownFox(t *testing.T) {
	t.Parallel()

	res, err := Align(context.Background(), AlignInput{
		Transcript: testTranscript(),
		Quotes:     []types.Quote{{Text: "brown fox jumps over the lazy"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Spans, 1)

	span := res.Spans[0]
	assert.Equal(t, 0.0, span.Start)
	assert.GreaterOrEqual(t, span.End, 5.0)
	assert.GreaterOrEqual(t, span.Confidence, 0.8)
	assert.Equal(t, 1, res.Stats.Matched)
}

func TestAlign_BadQuoteDoesNotBlockBatch(t *testing.T) {
	t.Parallel()

	res, err := Align(context.Background(), AlignInput{
		Transcript: testTranscript(),
		Quotes: []types.Quote{
			{Text: "totally invented nonsense about spaceships and bananas"},
			{Text: "over the lazy dogs"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Spans, 1)
	assert.Equal(t, 1, res.Stats.Dropped)
	assert.Equal(t, 1, res.Stats.Matched)
}

func TestAlign_TimestampOnlyFallback(t *testing.T) {
	t.Parallel()

	res, err := Align(context.Background(), AlignInput{
		Transcript: testTranscript(),
		Quotes: []types.Quote{
			{Timestamp: "[00:04]", Text: "wording that matches nothing in the transcript at all"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Spans, 1)
	assert.Equal(t, 1, res.Stats.Fallback)

	span := res.Spans[0]
	assert.Equal(t, 3.0, span.Start)
	assert.InDelta(t, timestampOnlyConfidence, span.Confidence, 1e-9)
}

func TestAlign_MergesAdjacentQuotes(t *testing.T) {
	t.Parallel()

	tr := types.Transcript{Segments: []types.Segment{
		{Start: 0, Duration: 20, Text: "alpha beta gamma delta epsilon"},
		{Start: 22, Duration: 20, Text: "zeta eta theta iota kappa"},
		{Start: 300, Duration: 20, Text: "far away closing remarks entirely"},
	}}
	res, err := Align(context.Background(), AlignInput{
		Transcript: tr,
		Quotes: []types.Quote{
			{Text: "alpha beta gamma delta epsilon"},
			{Text: "zeta eta theta iota kappa"},
			{Text: "far away closing remarks entirely"},
		},
	})
	require.NoError(t, err)
	// First two spans sit 2s apart and merge; the third stays separate.
	require.Len(t, res.Spans, 2)
	assert.Equal(t, 0.0, res.Spans[0].Start)
	assert.Equal(t, 42.0, res.Spans[0].End)
	assert.Len(t, res.Spans[0].Quotes, 2)
	assert.Equal(t, 300.0, res.Spans[1].Start)
}

func TestAlign_EmptyTranscript(t *testing.T) {
	t.Parallel()

	res, err := Align(context.Background(), AlignInput{
		Transcript: types.Transcript{},
		Quotes:     []types.Quote{{Text: "anything at all here"}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Spans)
	assert.Equal(t, 1, res.Stats.Dropped)
}

func TestAlign_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Align(ctx, AlignInput{
		Transcript: testTranscript(),
		Quotes:     []types.Quote{{Text: "over the lazy dog now"}},
	})
	assert.Error(t, err)
}

func TestCite(t *testing.T) {
	t.Parallel()

	tr := types.Transcript{Segments: []types.Segment{
		{Start: 0, Duration: 60, Text: "opening segment"},
		{Start: 60, Duration: 60, Text: "second segment"},
	}}
	rep, err := Cite(context.Background(), tr, "See [01:00] and again [01:00].")
	require.NoError(t, err)
	require.Len(t, rep.Citations, 1)
	assert.Equal(t, "See [1] and again [1].", rep.Content)
	assert.Equal(t, 60.0, rep.Citations[0].Timestamp)
}
