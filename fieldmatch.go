// Package fieldmatch matches the fields of a target schema to the fields of
// a source system and merges their records once the matches are reviewed.
//
// Example usage:
//
//	fm, err := fieldmatch.New(fieldmatch.WithRetrieval(3))
//	if err != nil {
//		return err
//	}
//	res, err := fm.MatchRecords(ctx, sourceRecords, targetRecords)
//	if err != nil {
//		return err
//	}
//	for _, m := range res.Matches {
//		fmt.Println(m.TargetField, "<-", m.SourceField, m.Status)
//	}
package fieldmatch

import (
	"context"
	"fmt"

	"github.com/agentstation/fieldmatch/internal/matcher"
	"github.com/agentstation/fieldmatch/pkg/embedding"
	"github.com/agentstation/fieldmatch/pkg/engine"
	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/lexicon"
	"github.com/agentstation/fieldmatch/pkg/merge"
	"github.com/agentstation/fieldmatch/pkg/quality"
	"github.com/agentstation/fieldmatch/pkg/retrieval"
)

// Client runs field matching with a fixed configuration. It is safe for
// concurrent use.
type Client interface {
	// Match pairs target fields with source fields.
	Match(ctx context.Context, source, target *fields.FieldSet) (*engine.Result, error)

	// MatchRecords builds field sets from the first record of each dataset,
	// applying the configured filter, and matches them.
	MatchRecords(ctx context.Context, source, target []fields.Record) (*engine.Result, error)

	// FieldSet builds a filtered field set from a dataset.
	FieldSet(system string, records []fields.Record) (*fields.FieldSet, error)

	// Validate reports missing values and type mismatches in a dataset.
	Validate(system string, records []fields.Record) ([]quality.Issue, error)

	// Merge applies the decisions recorded on res to both datasets.
	Merge(source, target merge.Dataset, res *engine.Result, opts ...merge.Option) (*merge.Output, error)

	// Lexicon returns the synonym lexicon in use.
	Lexicon() *lexicon.Lexicon

	// Overrides returns the manual override table in use.
	Overrides() lexicon.Overrides

	// OnMatch registers a callback for every emitted match.
	OnMatch(MatchHook)

	// OnWarning registers a callback for every run warning.
	OnWarning(WarningHook)
}

type client struct {
	config *config
	filter *matcher.Filter
	hooks  *hooks

	// base serves runs without retrieval; retrieval builds an engine per run
	// because the index depends on the source fields.
	base *engine.Engine
}

// New creates a Client.
func New(opts ...Option) (Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	if cfg.lexiconFile != "" {
		lex, overrides, err := lexicon.LoadFile(cfg.lexiconFile)
		if err != nil {
			return nil, fmt.Errorf("loading lexicon: %w", err)
		}
		cfg.lexicon, cfg.overrides = lex, overrides
	}

	if cfg.embedder != nil && cfg.cacheTTL > 0 {
		cfg.embedder = embedding.NewCached(cfg.embedder, cfg.cacheTTL)
	}

	filter, err := matcher.NewFilter(cfg.include, cfg.exclude)
	if err != nil {
		return nil, fmt.Errorf("compiling field filter: %w", err)
	}

	c := &client{config: cfg, filter: filter, hooks: newHooks()}
	if c.base, err = engine.New(c.engineOptions()...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *client) engineOptions(extra ...engine.Option) []engine.Option {
	opts := []engine.Option{
		engine.WithLexicon(c.config.lexicon),
		engine.WithOverrides(c.config.overrides),
		engine.WithEmbedder(c.config.embedder),
	}
	if c.config.clock != nil {
		opts = append(opts, engine.WithClock(c.config.clock))
	}
	return append(opts, extra...)
}

func (c *client) Match(ctx context.Context, source, target *fields.FieldSet) (*engine.Result, error) {
	e, err := c.engineFor(ctx, source)
	if err != nil {
		return nil, err
	}

	res, err := e.Match(ctx, source, target)
	if err != nil {
		return nil, err
	}
	c.hooks.trigger(res)
	return res, nil
}

// engineFor returns the engine for a run over source. With retrieval enabled
// the source fields are indexed first.
func (c *client) engineFor(ctx context.Context, source *fields.FieldSet) (*engine.Engine, error) {
	if c.config.topK <= 0 || c.config.embedder == nil || source == nil || source.Len() == 0 {
		return c.base, nil
	}

	var r retrieval.Retriever
	idx, err := retrieval.NewIndex(ctx, c.config.embedder, source, retrieval.WithTopK(c.config.topK))
	if err != nil {
		// Every target then falls back to synonym matching with a warning.
		r = failedRetriever{err: err}
	} else {
		r = idx
	}
	return engine.New(c.engineOptions(engine.WithRetriever(r))...)
}

func (c *client) MatchRecords(ctx context.Context, source, target []fields.Record) (*engine.Result, error) {
	src, err := c.FieldSet("source", source)
	if err != nil {
		return nil, err
	}
	tgt, err := c.FieldSet("target", target)
	if err != nil {
		return nil, err
	}
	return c.Match(ctx, src, tgt)
}

func (c *client) FieldSet(system string, records []fields.Record) (*fields.FieldSet, error) {
	return fields.FromRecords(system, records, c.filter)
}

func (c *client) Validate(system string, records []fields.Record) ([]quality.Issue, error) {
	set, err := c.FieldSet(system, records)
	if err != nil {
		return nil, err
	}
	return quality.Validate(system, records, set), nil
}

func (c *client) Merge(source, target merge.Dataset, res *engine.Result, opts ...merge.Option) (*merge.Output, error) {
	if c.config.joinKey != "" {
		opts = append([]merge.Option{merge.WithJoinKey(c.config.joinKey)}, opts...)
	}
	return merge.Merge(source, target, merge.PlanFrom(res), opts...)
}

func (c *client) Lexicon() *lexicon.Lexicon {
	return c.config.lexicon
}

func (c *client) Overrides() lexicon.Overrides {
	return c.config.overrides
}

func (c *client) OnMatch(fn MatchHook) {
	c.hooks.OnMatch(fn)
}

func (c *client) OnWarning(fn WarningHook) {
	c.hooks.OnWarning(fn)
}

// failedRetriever reports an indexing failure for every target field.
type failedRetriever struct {
	err error
}

func (f failedRetriever) Nearest(context.Context, fields.Field) ([]retrieval.Candidate, error) {
	return nil, f.err
}
