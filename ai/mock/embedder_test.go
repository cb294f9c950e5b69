package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedText_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	first, err := m.EmbedText(ctx, "quarterly budget review")
	require.NoError(t, err)
	second, err := m.EmbedText(ctx, "quarterly budget review")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 384)
	assert.Equal(t, 2, m.CallCount())
}

func TestEmbedText_UnitLength(t *testing.T) {
	m := NewMockEmbedder()

	for _, text := range []string{"meeting notes", "x", "a much longer passage of document text"} {
		vector, err := m.EmbedText(context.Background(), text)
		require.NoError(t, err)

		var sumSquares float64
		for _, v := range vector {
			sumSquares += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, sumSquares, 1e-4, "vector for %q should be unit length", text)
	}
}

func TestEmbedTexts_MatchesEmbedText(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	single, err := m.EmbedText(ctx, "project kickoff")
	require.NoError(t, err)

	batch, err := m.EmbedTexts(ctx, []string{"project kickoff", "status update"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, single, batch[0])
	assert.NotEqual(t, batch[0], batch[1])
}
