// Package embedding turns sample values into vectors for semantic comparison.
//
// The engine only depends on the Embedder interface. NGram is a local,
// deterministic embedder that never fails and doubles as the fallback when a
// remote embedder errors. Gemini calls Google's embedding models, and Cached
// memoizes any embedder.
package embedding

import (
	"context"
	"math"
)

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Func adapts a function to the Embedder interface.
type Func func(ctx context.Context, text string) ([]float32, error)

// Embed implements Embedder.
func (f Func) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. Vectors of
// different length, or with zero magnitude, score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
