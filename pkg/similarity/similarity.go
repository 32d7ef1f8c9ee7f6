// Package similarity scores how alike two fields are by name, by inferred
// type, and by sample value.
package similarity

import (
	"context"

	"github.com/agentstation/fieldmatch/pkg/constants"
	"github.com/agentstation/fieldmatch/pkg/embedding"
	"github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/lexicon"
	"github.com/agentstation/fieldmatch/pkg/typeclass"
)

// FieldName scores two field names in [0, 1]. Synonyms and names that
// normalize identically score 1.0.
func FieldName(lex *lexicon.Lexicon, a, b string) float64 {
	if lex.AreSynonyms(a, b) {
		return 1.0
	}
	na, nb := lexicon.Normalize(a), lexicon.Normalize(b)
	if na == nb {
		return 1.0
	}
	return Ratio(na, nb)
}

// Type scores two type classes: identical, same bucket, or unrelated.
func Type(t1, t2 typeclass.TypeClass) float64 {
	switch {
	case t1 == t2:
		return constants.TypeIdentical
	case typeclass.SameBucket(t1, t2):
		return constants.TypeSameBucket
	default:
		return constants.TypeUnrelated
	}
}

// Sampler compares sample values through an embedder.
type Sampler struct {
	Embedder embedding.Embedder
}

// NewSampler returns a Sampler backed by e.
func NewSampler(e embedding.Embedder) *Sampler {
	return &Sampler{Embedder: e}
}

// Sample returns the cosine similarity of the embedded samples. It is not
// applicable when both types are strict, or when the sampler has no
// embedder. Embedder failures are returned as collaborator errors.
func (s *Sampler) Sample(ctx context.Context, v1, v2 string, t1, t2 typeclass.TypeClass) (float64, bool, error) {
	if s == nil || s.Embedder == nil {
		return 0, false, nil
	}
	if typeclass.IsStrict(t1) && typeclass.IsStrict(t2) {
		return 0, false, nil
	}

	a, err := s.Embedder.Embed(ctx, v1)
	if err != nil {
		return 0, true, errors.WrapCollaborator("embedder", "embed", err)
	}
	b, err := s.Embedder.Embed(ctx, v2)
	if err != nil {
		return 0, true, errors.WrapCollaborator("embedder", "embed", err)
	}
	return embedding.Cosine(a, b), true, nil
}
