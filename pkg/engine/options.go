package engine

import (
	"time"

	"github.com/agentstation/fieldmatch/pkg/embedding"
	"github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/lexicon"
	"github.com/agentstation/fieldmatch/pkg/retrieval"
)

// Option configures an Engine.
type Option func(*config) error

type config struct {
	lexicon   *lexicon.Lexicon
	overrides lexicon.Overrides
	embedder  embedding.Embedder
	fallback  embedding.Embedder
	retriever retrieval.Retriever
	clock     func() time.Time
}

func defaultConfig() *config {
	return &config{
		lexicon:   lexicon.Default(),
		overrides: lexicon.DefaultOverrides(),
		embedder:  embedding.NewNGram(),
		fallback:  embedding.NewNGram(),
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithLexicon sets the synonym lexicon.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(c *config) error {
		if lex == nil {
			return errors.NewValidationError("lexicon", nil, "must not be nil")
		}
		c.lexicon = lex
		return nil
	}
}

// WithOverrides sets the manual override table.
func WithOverrides(o lexicon.Overrides) Option {
	return func(c *config) error {
		c.overrides = o
		return nil
	}
}

// WithEmbedder sets the embedder used for sample similarity. Nil disables
// sample similarity. When the embedder fails for a pair, the sample score is
// taken from the fallback embedder (the local n-gram embedder unless
// WithFallbackEmbedder says otherwise) and the result carries a warning.
// The run is never aborted and the pair is not reduced to synonym-only
// scoring.
func WithEmbedder(e embedding.Embedder) Option {
	return func(c *config) error {
		c.embedder = e
		return nil
	}
}

// WithFallbackEmbedder sets the embedder used when the primary one fails.
func WithFallbackEmbedder(e embedding.Embedder) Option {
	return func(c *config) error {
		if e == nil {
			return errors.NewValidationError("fallback_embedder", nil, "must not be nil")
		}
		c.fallback = e
		return nil
	}
}

// WithRetriever restricts each target field's candidates to those returned
// by r.
func WithRetriever(r retrieval.Retriever) Option {
	return func(c *config) error {
		c.retriever = r
		return nil
	}
}

// WithClock sets the time source for metadata and audit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *config) error {
		if clock == nil {
			return errors.NewValidationError("clock", nil, "must not be nil")
		}
		c.clock = clock
		return nil
	}
}
