package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldmatch/pkg/audit"
	"github.com/agentstation/fieldmatch/pkg/embedding"
	pkgerrors "github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/engine"
	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/lexicon"
	"github.com/agentstation/fieldmatch/pkg/logging"
	"github.com/agentstation/fieldmatch/pkg/retrieval"
)

func set(t *testing.T, system string, pairs ...string) *fields.FieldSet {
	t.Helper()
	fs, err := fields.FromPairs(system, pairs...)
	require.NoError(t, err)
	return fs
}

func newEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()
	e, err := engine.New(opts...)
	require.NoError(t, err)
	return e
}

func match(t *testing.T, e *engine.Engine, source, target *fields.FieldSet) *engine.Result {
	t.Helper()
	res, err := e.Match(context.Background(), source, target)
	require.NoError(t, err)
	require.Len(t, res.Audit, len(res.Matches))
	return res
}

func TestClassifyBoundaries(t *testing.T) {
	assert.Equal(t, engine.NoMatch, engine.Classify(0.699999))
	assert.Equal(t, engine.Moderate, engine.Classify(0.70))
	assert.Equal(t, engine.Moderate, engine.Classify(0.849999))
	assert.Equal(t, engine.Strong, engine.Classify(0.85))
	assert.Equal(t, engine.Strong, engine.Classify(1.1))
	assert.Equal(t, engine.NoMatch, engine.Classify(-0.2))

	assert.False(t, engine.NoMatch.Matched())
	assert.True(t, engine.Moderate.Matched())
	assert.True(t, engine.StrongManual.Matched())
}

func TestSynonymScenario(t *testing.T) {
	e := newEngine(t)
	source := set(t, "source", "cust_id", "B001", "email", "x@y.com")
	target := set(t, "target", "customer_id", "A001")

	res := match(t, e, source, target)
	require.Len(t, res.Matches, 2)

	m := res.Matches[0]
	assert.Equal(t, "customer_id", m.TargetField)
	assert.Equal(t, "cust_id", m.SourceField)
	assert.Equal(t, "B001", m.SourceSample)
	assert.Equal(t, engine.Strong, m.Status)
	assert.Equal(t, audit.Heuristic, m.Method)
	assert.True(t, m.Synonym)
	assert.Nil(t, m.SampleSimilarity)
	require.NotNil(t, m.Score)
	assert.InDelta(t, 1.0, *m.Score, 1e-9)

	left := res.Matches[1]
	assert.Equal(t, "No Match", left.TargetField)
	assert.Equal(t, "email", left.SourceField)
	assert.Equal(t, engine.NoMatch, left.Status)
	assert.Equal(t, audit.None, left.Method)
	assert.Nil(t, left.Score)

	stats := res.Metadata.Stats
	assert.Equal(t, 1, stats.Strong)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Comparisons)
	assert.Equal(t, 1, stats.UnmatchedSources)
}

func TestNoOverlapScenario(t *testing.T) {
	e := newEngine(t)
	source := set(t, "source", "phone", "+19998887777")
	target := set(t, "target", "subscription_tier", "Gold")

	res := match(t, e, source, target)
	require.Len(t, res.Matches, 2)

	m := res.Matches[0]
	assert.Equal(t, "No Match", m.SourceField)
	assert.Equal(t, engine.NoMatch, m.Status)
	assert.Nil(t, m.Score)
	assert.Equal(t, "phone", m.BestSource)
	require.NotNil(t, m.BestScore)
	assert.Less(t, *m.BestScore, 0.7)

	assert.Equal(t, "phone", res.Matches[1].SourceField)
	assert.Equal(t, 1, res.Metadata.Stats.NoMatch)
}

func TestBelowThresholdHasNoScore(t *testing.T) {
	e := newEngine(t)
	source := set(t, "source", "phone", "+19998887777", "tier_name", "Gold")
	target := set(t, "target", "subscription_tier", "Gold")

	res := match(t, e, source, target)

	m := res.Matches[0]
	assert.Equal(t, "subscription_tier", m.TargetField)
	assert.Equal(t, "No Match", m.SourceField)
	assert.Equal(t, engine.NoMatch, m.Status)
	assert.Nil(t, m.Score)
	assert.Nil(t, m.FieldSimilarity)
	assert.Nil(t, m.TypeSimilarity)
	assert.Nil(t, m.SampleSimilarity)
	assert.Empty(t, m.SourceSample)

	assert.Equal(t, "tier_name", m.BestSource)
	require.NotNil(t, m.BestScore)
	assert.InDelta(t, 0.6538, *m.BestScore, 1e-3)

	assert.Nil(t, res.Audit[0].Score)
	assert.Equal(t, "No Match", res.Audit[0].SourceField)
	assert.Equal(t, []string{"phone", "tier_name"}, []string{res.Matches[1].SourceField, res.Matches[2].SourceField})
}

func TestManualOverrideWins(t *testing.T) {
	e := newEngine(t, engine.WithOverrides(lexicon.NewOverrides(map[string]string{"email": "contact"})))
	source := set(t, "source", "email", "a@b.co", "contact", "someone")
	target := set(t, "target", "email", "c@d.co")

	res := match(t, e, source, target)

	m := res.Matches[0]
	assert.Equal(t, "contact", m.SourceField)
	assert.Equal(t, engine.StrongManual, m.Status)
	assert.Equal(t, audit.Manual, m.Method)
	require.NotNil(t, m.Score)
	assert.Equal(t, 1.0, *m.Score)
	assert.Equal(t, 1, res.Metadata.Stats.Manual)

	require.Len(t, res.Matches, 2)
	assert.Equal(t, "email", res.Matches[1].SourceField)
	assert.Equal(t, audit.Manual, res.Audit[0].Method)
}

func TestManualOverrideToMissingSource(t *testing.T) {
	e := newEngine(t, engine.WithOverrides(lexicon.NewOverrides(map[string]string{"email": "missing"})))
	res := match(t, e, set(t, "source", "email", "a@b.co"), set(t, "target", "email", "c@d.co"))

	m := res.Matches[0]
	assert.Equal(t, "email", m.SourceField)
	assert.Equal(t, engine.Strong, m.Status)
	assert.Equal(t, audit.Heuristic, m.Method)
	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0], `"missing"`)
	assert.Equal(t, []string{"email: " + m.Warnings[0]}, res.Warnings)
}

func TestStrictTypesNeverCompared(t *testing.T) {
	e := newEngine(t)
	res := match(t, e,
		set(t, "source", "date", "+15551234567"),
		set(t, "target", "date", "12/01/2023"),
	)

	m := res.Matches[0]
	assert.Equal(t, "No Match", m.SourceField)
	assert.Nil(t, m.Score)
	assert.Equal(t, 1, res.Metadata.Stats.Skipped)
	assert.Equal(t, 0, res.Metadata.Stats.Comparisons)
}

func TestTiesKeepSourceOrder(t *testing.T) {
	e := newEngine(t, engine.WithEmbedder(nil))
	target := set(t, "target", "zip", "abc")

	res := match(t, e, set(t, "source", "zipa", "abc", "zipb", "abc"), target)
	assert.Equal(t, "zipa", res.Matches[0].SourceField)
	assert.Equal(t, engine.Moderate, res.Matches[0].Status)
	assert.True(t, res.Matches[0].Boosted)

	res = match(t, e, set(t, "source", "zipb", "abc", "zipa", "abc"), target)
	assert.Equal(t, "zipb", res.Matches[0].SourceField)
}

func TestBoostIsNotClamped(t *testing.T) {
	e := newEngine(t)
	res := match(t, e, set(t, "source", "note", "hello world"), set(t, "target", "note", "hello world"))

	m := res.Matches[0]
	require.NotNil(t, m.Score)
	assert.InDelta(t, 1.1, *m.Score, 1e-9)
	assert.True(t, m.Boosted)
	assert.Equal(t, engine.Strong, m.Status)
}

func TestNegativeSampleSimilarityIsKept(t *testing.T) {
	opposite := embedding.Func(func(_ context.Context, text string) ([]float32, error) {
		if text == "up" {
			return []float32{1, 0}, nil
		}
		return []float32{-1, 1}, nil
	})
	e := newEngine(t, engine.WithEmbedder(opposite))
	res := match(t, e, set(t, "source", "note", "down"), set(t, "target", "note", "up"))

	m := res.Matches[0]
	require.NotNil(t, m.SampleSimilarity)
	assert.InDelta(t, -0.70710678, *m.SampleSimilarity, 1e-6)
	require.NotNil(t, m.Score)
	assert.InDelta(t, 0.5+0.3-0.2*0.70710678+0.1, *m.Score, 1e-6)
	assert.Equal(t, engine.Moderate, m.Status)
}

func TestEmbedderFailureFallsBack(t *testing.T) {
	failing := embedding.Func(func(context.Context, string) ([]float32, error) {
		return nil, errors.New("quota exhausted")
	})
	e := newEngine(t, engine.WithEmbedder(failing))
	res := match(t, e, set(t, "source", "note", "hello world"), set(t, "target", "note", "hello world"))

	m := res.Matches[0]
	require.NotNil(t, m.Score)
	assert.InDelta(t, 1.1, *m.Score, 1e-9)
	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0], "quota exhausted")
	assert.Len(t, res.Warnings, 1)
}

func TestFallbackEmbedderScoresFailedPairs(t *testing.T) {
	failing := embedding.Func(func(context.Context, string) ([]float32, error) {
		return nil, errors.New("quota exhausted")
	})
	constant := embedding.Func(func(context.Context, string) ([]float32, error) {
		return []float32{1, 0}, nil
	})
	e := newEngine(t, engine.WithEmbedder(failing), engine.WithFallbackEmbedder(constant))
	res := match(t, e, set(t, "source", "note", "alpha"), set(t, "target", "note", "omega"))

	m := res.Matches[0]
	require.NotNil(t, m.SampleSimilarity)
	assert.InDelta(t, 1.0, *m.SampleSimilarity, 1e-9)
	require.NotNil(t, m.Score)
	assert.InDelta(t, 1.1, *m.Score, 1e-9)
	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0], "quota exhausted")

	_, err := engine.New(engine.WithFallbackEmbedder(nil))
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestRetrieverRestrictsCandidates(t *testing.T) {
	source := set(t, "source", "cust_id", "B001", "email", "x@y.com", "phone", "+15551234567")
	target := set(t, "target", "customer_id", "A001")

	r := retrieval.Func(func(_ context.Context, f fields.Field) ([]retrieval.Candidate, error) {
		assert.Equal(t, "customer_id", f.Name)
		return []retrieval.Candidate{{Field: "email", Score: 0.9}, {Field: "cust_id", Score: 0.8}}, nil
	})
	res := match(t, newEngine(t, engine.WithRetriever(r)), source, target)

	m := res.Matches[0]
	assert.Equal(t, "cust_id", m.SourceField)
	assert.Equal(t, audit.AI, m.Method)
	require.NotNil(t, m.ExternalScore)
	assert.Equal(t, 0.8, *m.ExternalScore)
	assert.Equal(t, 1, res.Metadata.Stats.Comparisons)
	assert.Equal(t, 1, res.Metadata.Stats.Skipped)
	assert.Equal(t, []string{"email", "phone"}, []string{res.Matches[1].SourceField, res.Matches[2].SourceField})
}

func TestRetrieverUnknownField(t *testing.T) {
	r := retrieval.Func(func(context.Context, fields.Field) ([]retrieval.Candidate, error) {
		return []retrieval.Candidate{{Field: "ghost", Score: 0.5}, {Field: "cust_id", Score: 0.4}}, nil
	})
	res := match(t, newEngine(t, engine.WithRetriever(r)),
		set(t, "source", "cust_id", "B001"),
		set(t, "target", "customer_id", "A001"),
	)

	assert.Equal(t, "cust_id", res.Matches[0].SourceField)
	require.Len(t, res.Matches[0].Warnings, 1)
	assert.Contains(t, res.Matches[0].Warnings[0], "ghost")
}

func TestRetrieverFailureUsesSynonymsOnly(t *testing.T) {
	r := retrieval.Func(func(context.Context, fields.Field) ([]retrieval.Candidate, error) {
		return nil, errors.New("index offline")
	})
	res := match(t, newEngine(t, engine.WithRetriever(r)),
		set(t, "source", "cust_id", "B001", "foo", "bar"),
		set(t, "target", "customer_id", "A001", "foo", "bar"),
	)

	assert.Equal(t, "cust_id", res.Matches[0].SourceField)
	assert.Equal(t, engine.Strong, res.Matches[0].Status)
	assert.Equal(t, audit.AI, res.Matches[0].Method)

	assert.Equal(t, "No Match", res.Matches[1].SourceField)
	assert.Nil(t, res.Matches[1].Score)
	assert.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "index offline")
}

func TestMatchIsIdempotent(t *testing.T) {
	e := newEngine(t)
	source := set(t, "source",
		"customer_id", "A001", "name", "Jane Doe", "email", "jane@example.com",
		"registration_date", "01/15/2023", "phone", "+15551234567", "loyalty_points", "120",
		"subscription_type", "Gold", "notes", "prefers email",
	)
	target := set(t, "target",
		"cust_id", "B001", "full_name", "John Roe", "contact_email", "john@example.com",
		"signup_date", "02/20/2023", "mobile_number", "+15559876543", "rewards_earned", "80",
		"membership_status", "Silver", "comments", "call after 5pm", "fax", "5550001111",
	)

	first := match(t, e, source, target)
	second := match(t, e, source, target)

	if diff := cmp.Diff(first.Matches, second.Matches); diff != "" {
		t.Errorf("matches differ between runs (-first +second):\n%s", diff)
	}
	ignore := cmpopts.IgnoreFields(audit.Entry{}, "ID", "Timestamp")
	if diff := cmp.Diff(first.Audit, second.Audit, ignore); diff != "" {
		t.Errorf("audit differs between runs (-first +second):\n%s", diff)
	}
}

func TestAuditMirrorsMatches(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	e := newEngine(t, engine.WithClock(clock))
	res := match(t, e,
		set(t, "source", "cust_id", "B001", "email", "x@y.com"),
		set(t, "target", "customer_id", "A001", "fax", "5550001111"),
	)

	for i, m := range res.Matches {
		entry := res.Audit[i]
		assert.Equal(t, m.TargetField, entry.TargetField)
		assert.Equal(t, m.SourceField, entry.SourceField)
		assert.Equal(t, m.Method, entry.Method)
		assert.Equal(t, string(m.Status), entry.Status)
		assert.Equal(t, audit.Undecided, entry.Decision)
		assert.Equal(t, clock(), entry.Timestamp)
	}
	assert.Equal(t, time.Duration(0), res.Metadata.Duration)
	assert.NotEmpty(t, res.Metadata.RunID)
}

func TestDecisions(t *testing.T) {
	e := newEngine(t, engine.WithEmbedder(nil))
	res := match(t, e,
		set(t, "source", "cust_id", "B001", "zipa", "abc", "extra", "x"),
		set(t, "target", "customer_id", "A001", "zip", "abc"),
	)
	require.Equal(t, engine.Strong, res.Matches[0].Status)
	require.Equal(t, engine.Moderate, res.Matches[1].Status)

	require.NoError(t, res.ApplyDefaultDecisions(false))
	assert.Equal(t, audit.Approve, res.Decision(0))
	assert.Equal(t, audit.Reject, res.Decision(1))
	assert.Equal(t, audit.Reject, res.Decision(2))

	require.NoError(t, res.ApplyDefaultDecisions(true))
	assert.Equal(t, audit.Approve, res.Decision(1))

	require.NoError(t, res.Decide(res.Audit[0].ID, audit.Reject))
	assert.Equal(t, audit.Reject, res.Decision(0))

	assert.True(t, pkgerrors.IsNotFound(res.DecideAt(99, audit.Approve)))
}

func TestMalformedInput(t *testing.T) {
	e := newEngine(t)
	target := set(t, "target", "a", "1")

	_, err := e.Match(context.Background(), nil, target)
	assert.True(t, pkgerrors.IsMalformedInput(err))

	_, err = e.Match(context.Background(), target, nil)
	assert.True(t, pkgerrors.IsMalformedInput(err))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(t).Match(ctx, set(t, "source", "a", "1"), set(t, "target", "a", "1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidOptions(t *testing.T) {
	_, err := engine.New(engine.WithLexicon(nil))
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = engine.New(engine.WithClock(nil))
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestConcurrentMatch(t *testing.T) {
	e := newEngine(t)
	source := set(t, "source", "cust_id", "B001", "email", "x@y.com")
	target := set(t, "target", "customer_id", "A001", "contact_email", "y@z.com")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.Match(context.Background(), source, target)
			if assert.NoError(t, err) {
				assert.Equal(t, "cust_id", res.Matches[0].SourceField)
				assert.Equal(t, "email", res.Matches[1].SourceField)
			}
		}()
	}
	wg.Wait()
}

func TestMatchLogsSummary(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	_, err := newEngine(t).Match(ctx, set(t, "source", "cust_id", "B001"), set(t, "target", "customer_id", "A001"))
	require.NoError(t, err)

	tl.AssertContains(t, "Field matching complete")
	tl.AssertContains(t, `"target_field":"customer_id"`)
	tl.AssertContains(t, `"run_id"`)
}
