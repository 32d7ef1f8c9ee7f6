package similarity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldmatch/pkg/embedding"
	pkgerrors "github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/lexicon"
	"github.com/agentstation/fieldmatch/pkg/similarity"
	"github.com/agentstation/fieldmatch/pkg/typeclass"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abcd", "bcde", 0.75},
		{"kitten", "sitting", 8.0 / 13.0},
		{"customer id", "cust id", 14.0 / 18.0},
		{"subscription tier", "phone", 8.0 / 22.0},
		{"signup date", "sign up date", 22.0 / 23.0},
		{"email", "e mail address", 10.0 / 19.0},
		{"", "abc", 0},
		{"abc", "xyz", 0},
		{"", "", 1},
		{"same", "same", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, similarity.Ratio(tt.a, tt.b), 1e-12)
			assert.InDelta(t, tt.want, similarity.Ratio(tt.b, tt.a), 1e-12)
		})
	}
}

func TestFieldName(t *testing.T) {
	lex := lexicon.Default()

	assert.Equal(t, 1.0, similarity.FieldName(lex, "customer_id", "cust_id"))
	assert.Equal(t, 1.0, similarity.FieldName(lex, "Order-Total", "order_total"))
	assert.InDelta(t, 14.0/18.0, similarity.FieldName(nil, "customer_id", "cust_id"), 1e-12)
	assert.Less(t, similarity.FieldName(lex, "subscription_tier", "phone"), 0.5)
}

func TestFieldNameIsReflexive(t *testing.T) {
	lex := lexicon.Default()
	for _, name := range []string{"a", "customer_id", "Ship-To", "zip code", "数量"} {
		assert.Equal(t, 1.0, similarity.FieldName(lex, name, name), name)
	}
}

func TestType(t *testing.T) {
	assert.Equal(t, 1.0, similarity.Type(typeclass.Date, typeclass.Date))
	assert.Equal(t, 0.8, similarity.Type(typeclass.ID, typeclass.Number))
	assert.Equal(t, 0.8, similarity.Type(typeclass.Text, typeclass.Phone))
	assert.Equal(t, 0.0, similarity.Type(typeclass.Text, typeclass.Amount))
	assert.Equal(t, 0.0, similarity.Type(typeclass.Date, typeclass.Phone))
}

func TestSampler(t *testing.T) {
	ctx := context.Background()

	t.Run("strict pair is not applicable", func(t *testing.T) {
		s := similarity.NewSampler(embedding.NewNGram())
		_, ok, err := s.Sample(ctx, "12/01/2023", "12/01/2023", typeclass.Date, typeclass.Date)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("no embedder is not applicable", func(t *testing.T) {
		var s *similarity.Sampler
		_, ok, err := s.Sample(ctx, "Gold", "Gold", typeclass.Text, typeclass.Text)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("text pair uses cosine", func(t *testing.T) {
		vectors := map[string][]float32{"Gold": {1, 0}, "Silver": {-1, 0}}
		s := similarity.NewSampler(embedding.Func(func(_ context.Context, text string) ([]float32, error) {
			return vectors[text], nil
		}))
		score, ok, err := s.Sample(ctx, "Gold", "Silver", typeclass.Text, typeclass.Text)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.InDelta(t, -1.0, score, 1e-9)
	})

	t.Run("embedder failure", func(t *testing.T) {
		s := similarity.NewSampler(embedding.Func(func(context.Context, string) ([]float32, error) {
			return nil, errors.New("quota exhausted")
		}))
		_, _, err := s.Sample(ctx, "Gold", "12345", typeclass.Text, typeclass.ID)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCollaboratorFailure(err))
	})
}
