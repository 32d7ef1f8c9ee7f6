package fieldmatch

import (
	"time"

	"github.com/agentstation/fieldmatch/pkg/embedding"
	"github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/lexicon"
)

// Option is a function that configures a Client
type Option func(*config) error

type config struct {
	lexicon     *lexicon.Lexicon
	overrides   lexicon.Overrides
	lexiconFile string

	embedder embedding.Embedder
	cacheTTL time.Duration
	topK     int

	include []string
	exclude []string
	joinKey string

	clock func() time.Time
}

func defaultConfig() *config {
	return &config{
		lexicon:   lexicon.Default(),
		overrides: lexicon.DefaultOverrides(),
		embedder:  embedding.NewNGram(),
	}
}

// WithLexicon replaces the synonym lexicon.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(c *config) error {
		if lex == nil {
			return errors.NewValidationError("lexicon", nil, "lexicon cannot be nil")
		}
		c.lexicon = lex
		return nil
	}
}

// WithOverrides replaces the manual override table. An empty table disables
// overrides.
func WithOverrides(o lexicon.Overrides) Option {
	return func(c *config) error {
		c.overrides = o
		return nil
	}
}

// WithLexiconFile loads the lexicon and overrides from a YAML file when the
// Client is created. It takes precedence over WithLexicon and WithOverrides.
func WithLexiconFile(path string) Option {
	return func(c *config) error {
		if path == "" {
			return errors.NewValidationError("lexicon_file", path, "path cannot be empty")
		}
		c.lexiconFile = path
		return nil
	}
}

// WithEmbedder sets the embedder used for sample similarity and retrieval.
// A nil embedder disables both.
func WithEmbedder(e embedding.Embedder) Option {
	return func(c *config) error {
		c.embedder = e
		return nil
	}
}

// WithGemini embeds with a Gemini model instead of the local n-gram embedder.
func WithGemini(cfg embedding.GeminiConfig) Option {
	return func(c *config) error {
		g, err := embedding.NewGemini(cfg)
		if err != nil {
			return err
		}
		c.embedder = g
		return nil
	}
}

// WithCache memoizes embeddings for ttl. A zero ttl disables caching.
func WithCache(ttl time.Duration) Option {
	return func(c *config) error {
		if ttl < 0 {
			return errors.NewValidationError("cache_ttl", ttl, "must not be negative")
		}
		c.cacheTTL = ttl
		return nil
	}
}

// WithRetrieval restricts each target to the k source fields nearest to it
// in embedding space. Zero disables retrieval.
func WithRetrieval(k int) Option {
	return func(c *config) error {
		if k < 0 {
			return errors.NewValidationError("top_k", k, "must not be negative")
		}
		c.topK = k
		return nil
	}
}

// WithFilter limits the fields taken from records by include and exclude
// patterns. Patterns are globs unless they look like regular expressions.
func WithFilter(include, exclude []string) Option {
	return func(c *config) error {
		c.include = include
		c.exclude = exclude
		return nil
	}
}

// WithJoinKey sets the source field used to join records in Merge.
func WithJoinKey(key string) Option {
	return func(c *config) error {
		if key == "" {
			return errors.NewValidationError("join_key", key, "cannot be empty")
		}
		c.joinKey = key
		return nil
	}
}

// WithClock sets the clock used for audit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *config) error {
		if clock == nil {
			return errors.NewValidationError("clock", nil, "clock cannot be nil")
		}
		c.clock = clock
		return nil
	}
}
