// Package engine matches the fields of a target schema to the fields of a
// source system.
//
// For each target field, in order, the engine applies a manual override if
// one exists, otherwise scores every type-compatible source field and keeps
// the best:
//
//	synonyms:  0.9*1.0 + 0.1*type
//	otherwise: 0.5*name + 0.3*type + 0.2*sample (+0.1 when name >= 0.85 and type == 1.0)
//
// Scores are not clamped. A score below 0.7 is no match: the result has no
// source field and no score, and the near miss is kept in BestSource and
// BestScore. Source fields that no target won are reported last.
//
// An override only applies when its source field exists in the source set.
// Otherwise the result carries a warning and the target is scored normally.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agentstation/fieldmatch/pkg/audit"
	"github.com/agentstation/fieldmatch/pkg/constants"
	"github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/logging"
	"github.com/agentstation/fieldmatch/pkg/similarity"
	"github.com/agentstation/fieldmatch/pkg/typeclass"
)

// Engine is immutable after New and safe for concurrent Match calls.
type Engine struct {
	cfg      *config
	sampler  *similarity.Sampler
	fallback *similarity.Sampler
}

// New creates an engine with the built-in lexicon and overrides and the local
// n-gram embedder unless options say otherwise.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	return &Engine{
		cfg:      cfg,
		sampler:  similarity.NewSampler(cfg.embedder),
		fallback: similarity.NewSampler(cfg.fallback),
	}, nil
}

// run holds the mutable state of one Match call.
type run struct {
	source   *fields.FieldSet
	consumed map[string]bool
	stats    Stats
	warnings []string
}

// Match pairs target fields with source fields. Empty or nil field sets are
// a MalformedInputError; collaborator failures only produce warnings.
func (e *Engine) Match(ctx context.Context, source, target *fields.FieldSet) (*Result, error) {
	if source == nil || source.Len() == 0 {
		return nil, errors.NewMalformedInputError("source", "", "no fields")
	}
	if target == nil || target.Len() == 0 {
		return nil, errors.NewMalformedInputError("target", "", "no fields")
	}

	runID := uuid.NewString()
	ctx = logging.WithRun(ctx, runID)
	logger := logging.FromContext(ctx)

	start := e.cfg.clock()
	trail := audit.NewTrail(e.cfg.clock)
	r := &run{
		source:   source,
		consumed: make(map[string]bool, source.Len()),
		stats:    Stats{Targets: target.Len(), Sources: source.Len()},
	}

	matches := make([]MatchResult, 0, target.Len()+source.Len())
	for _, t := range target.Fields() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m := e.matchTarget(logging.WithTargetField(ctx, t.Name), r, t)
		matches = append(matches, m)
		trail.Record(entryFor(m))
	}

	for _, s := range source.Fields() {
		if r.consumed[s.Name] {
			continue
		}
		m := MatchResult{
			TargetField:  constants.NoMatch,
			SourceField:  s.Name,
			SourceSample: s.Sample,
			Status:       NoMatch,
			Method:       audit.None,
		}
		r.stats.UnmatchedSources++
		matches = append(matches, m)
		trail.Record(entryFor(m))
	}

	end := e.cfg.clock()
	res := &Result{
		Matches:  matches,
		Audit:    trail.Entries(),
		Warnings: r.warnings,
		Metadata: Metadata{
			RunID:     runID,
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
			Stats:     r.stats,
		},
		trail: trail,
	}

	logger.Info().
		Int("targets", r.stats.Targets).
		Int("sources", r.stats.Sources).
		Int("strong", r.stats.Strong+r.stats.Manual).
		Int("moderate", r.stats.Moderate).
		Int("no_match", r.stats.NoMatch).
		Int("unmatched_sources", r.stats.UnmatchedSources).
		Int("warnings", len(r.warnings)).
		Msg("Field matching complete")

	return res, nil
}

func entryFor(m MatchResult) audit.Entry {
	return audit.Entry{
		TargetField: m.TargetField,
		SourceField: m.SourceField,
		Method:      m.Method,
		Score:       m.Score,
		Status:      string(m.Status),
	}
}

func (e *Engine) matchTarget(ctx context.Context, r *run, t fields.Field) MatchResult {
	logger := logging.FromContext(ctx)
	res := MatchResult{
		TargetField:  t.Name,
		TargetSample: t.Sample,
		SourceField:  constants.NoMatch,
		Status:       NoMatch,
		Method:       audit.Heuristic,
	}
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		res.Warnings = append(res.Warnings, msg)
		r.warnings = append(r.warnings, t.Name+": "+msg)
		logger.Warn().Msg(msg)
	}

	if name, ok := e.cfg.overrides.Lookup(t.Name); ok {
		if s, found := r.source.Get(name); found {
			one := 1.0
			res.SourceField = s.Name
			res.SourceSample = s.Sample
			res.Score = &one
			res.Status = StrongManual
			res.Method = audit.Manual
			r.consumed[s.Name] = true
			r.stats.Manual++
			logger.Debug().Str("source_field", s.Name).Msg("Manual override applied")
			return res
		}
		warn("manual override to %q ignored: no such source field", name)
	}

	pool := r.source.Fields()
	var external map[string]float64
	synonymOnly := false
	if e.cfg.retriever != nil {
		res.Method = audit.AI
		retrieved, err := e.cfg.retriever.Nearest(ctx, t)
		if err != nil {
			warn("retrieval failed, using synonyms only: %v", errors.WrapCollaborator("retriever", "nearest", err))
			synonymOnly = true
		} else {
			external = make(map[string]float64, len(retrieved))
			for _, c := range retrieved {
				if !r.source.Has(c.Field) {
					warn("retriever returned unknown source field %q", c.Field)
					continue
				}
				if _, dup := external[c.Field]; !dup {
					external[c.Field] = c.Score
				}
			}
			pool = pool[:0:0]
			for _, s := range r.source.Fields() {
				if _, ok := external[s.Name]; ok {
					pool = append(pool, s)
				}
			}
		}
	}

	var best *Candidate
	var bestSample string
	tt := t.Type()
	for _, s := range pool {
		st := s.Type()
		if typeclass.IsStrict(tt) && typeclass.IsStrict(st) && tt != st {
			r.stats.Skipped++
			continue
		}
		r.stats.Comparisons++

		c, ok := e.score(ctx, t, s, tt, st, synonymOnly, warn)
		if !ok {
			continue
		}
		if ext, ok := external[s.Name]; ok {
			c.ExternalScore = &ext
		}
		logging.FromContext(ctx).Debug().
			Str("source_field", s.Name).
			Float64("score", c.Score).
			Bool("synonym", c.Synonym).
			Bool("boosted", c.Boosted).
			Msg("Candidate scored")

		// Strictly greater: ties keep the earlier source field.
		if best == nil || c.Score > best.Score {
			best = &c
			bestSample = s.Sample
		}
	}

	if best == nil {
		r.stats.NoMatch++
		logger.Debug().Msg("No candidate")
		return res
	}

	score := best.Score
	status := Classify(score)
	if !status.Matched() {
		r.stats.NoMatch++
		res.BestSource = best.Source
		res.BestScore = &score
		logger.Debug().Str("best_source", best.Source).Float64("score", score).Msg("Best candidate below threshold")
		return res
	}
	if status == Strong {
		r.stats.Strong++
	} else {
		r.stats.Moderate++
	}

	res.Status = status
	res.Score = &score
	res.FieldSimilarity = best.FieldSimilarity
	res.TypeSimilarity = best.TypeSimilarity
	res.SampleSimilarity = best.SampleSimilarity
	res.ExternalScore = best.ExternalScore
	res.Synonym = best.Synonym
	res.Boosted = best.Boosted

	res.SourceField = best.Source
	res.SourceSample = bestSample
	r.consumed[best.Source] = true
	logger.Debug().Str("source_field", best.Source).Float64("score", score).Str("status", string(res.Status)).Msg("Matched")
	return res
}

// score compares one pair. It reports false when the pair produced no
// candidate, which only happens in synonym-only mode.
func (e *Engine) score(ctx context.Context, t, s fields.Field, tt, st typeclass.TypeClass, synonymOnly bool, warn func(string, ...any)) (Candidate, bool) {
	c := Candidate{Source: s.Name, Target: t.Name}
	typeSim := similarity.Type(tt, st)
	c.TypeSimilarity = &typeSim

	if e.cfg.lexicon.AreSynonyms(s.Name, t.Name) {
		fieldSim := 1.0
		c.FieldSimilarity = &fieldSim
		c.Synonym = true
		c.Score = constants.SynonymFieldWeight*fieldSim + constants.SynonymTypeWeight*typeSim
		return c, true
	}
	if synonymOnly {
		return c, false
	}

	fieldSim := similarity.FieldName(e.cfg.lexicon, s.Name, t.Name)
	c.FieldSimilarity = &fieldSim

	sampleSim, applicable, err := e.sampler.Sample(ctx, s.Sample, t.Sample, st, tt)
	if err != nil {
		warn("sample similarity against %q used the local embedder: %v", s.Name, err)
		sampleSim, applicable, _ = e.fallback.Sample(ctx, s.Sample, t.Sample, st, tt)
	}
	if applicable {
		c.SampleSimilarity = &sampleSim
	} else {
		sampleSim = 0
	}

	c.Score = constants.FieldNameWeight*fieldSim + constants.TypeWeight*typeSim + constants.SampleWeight*sampleSim
	if fieldSim >= constants.BoostFieldThreshold && typeSim == constants.TypeIdentical {
		c.Score += constants.BoostAmount
		c.Boosted = true
	}
	return c, true
}
