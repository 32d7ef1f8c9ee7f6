package embedding

import (
	"context"
	"hash/fnv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/fieldmatch/pkg/constants"
)

// NGram hashes character n-grams of the lower-cased text into a fixed number
// of buckets. Equal strings always embed identically.
type NGram struct {
	Size       int
	Dimensions int
}

// NewNGram returns an NGram embedder with the default size and dimensions.
func NewNGram() *NGram {
	return &NGram{Size: constants.DefaultNGramSize, Dimensions: constants.DefaultNGramDimensions}
}

// Embed implements Embedder. It never returns an error.
func (n *NGram) Embed(_ context.Context, text string) ([]float32, error) {
	size, dims := n.Size, n.Dimensions
	if size <= 0 {
		size = constants.DefaultNGramSize
	}
	if dims <= 0 {
		dims = constants.DefaultNGramDimensions
	}

	vec := make([]float32, dims)
	if text == "" {
		return vec, nil
	}

	// Pad so that short values and word boundaries still produce grams.
	runes := []rune(" " + cases.Lower(language.Und).String(text) + " ")
	if len(runes) < size {
		size = len(runes)
	}

	h := fnv.New32a()
	for i := 0; i+size <= len(runes); i++ {
		h.Reset()
		_, _ = h.Write([]byte(string(runes[i : i+size])))
		vec[h.Sum32()%uint32(dims)]++
	}
	return vec, nil
}
