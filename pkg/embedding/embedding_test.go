package embedding_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldmatch/pkg/embedding"
	pkgerrors "github.com/agentstation/fieldmatch/pkg/errors"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, embedding.Cosine([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, -1.0, embedding.Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 0.0, embedding.Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, embedding.Cosine([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, embedding.Cosine([]float32{0, 0}, []float32{1, 2}))
	assert.Equal(t, 0.0, embedding.Cosine(nil, nil))
}

func TestNGram(t *testing.T) {
	ctx := context.Background()
	ng := embedding.NewNGram()

	a, err := ng.Embed(ctx, "Gold Member")
	require.NoError(t, err)
	assert.Len(t, a, 512)

	b, _ := ng.Embed(ctx, "gold member")
	assert.InDelta(t, 1.0, embedding.Cosine(a, b), 1e-9)

	c, _ := ng.Embed(ctx, "Gold")
	d, _ := ng.Embed(ctx, "+19998887777")
	assert.Greater(t, embedding.Cosine(a, c), embedding.Cosine(a, d))

	empty, _ := ng.Embed(ctx, "")
	assert.Equal(t, 0.0, embedding.Cosine(a, empty))

	short, err := (&embedding.NGram{Size: 5, Dimensions: 16}).Embed(ctx, "x")
	require.NoError(t, err)
	assert.Len(t, short, 16)
	assert.InDelta(t, 1.0, embedding.Cosine(short, short), 1e-9)
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	fail := false
	next := embedding.Func(func(_ context.Context, text string) ([]float32, error) {
		calls.Add(1)
		if fail {
			return nil, errors.New("quota")
		}
		return []float32{float32(len(text))}, nil
	})

	c := embedding.NewCached(next, time.Minute)
	v1, err := c.Embed(ctx, "abc")
	require.NoError(t, err)
	v2, err := c.Embed(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())

	fail = true
	_, err = c.Embed(ctx, "other")
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
}

func TestNewGeminiRequiresCredentials(t *testing.T) {
	_, err := embedding.NewGemini(embedding.GeminiConfig{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsAPIKeyError(err))

	g, err := embedding.NewGemini(embedding.GeminiConfig{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-004", g.Model())
}
