package fieldmatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldmatch"
	"github.com/agentstation/fieldmatch/pkg/audit"
	"github.com/agentstation/fieldmatch/pkg/embedding"
	"github.com/agentstation/fieldmatch/pkg/engine"
	pkgerrors "github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/lexicon"
	"github.com/agentstation/fieldmatch/pkg/merge"
	"github.com/agentstation/fieldmatch/pkg/quality"
)

const sourceDoc = `[
  {"email": "jane@example.com", "customer_id": "A001", "name": "Jane", "tier": "Gold"},
  {"email": "bob@example.com", "customer_id": "A002", "name": "", "tier": "Silver"}
]`

const targetDoc = `[
  {"contact_email": "jane@example.com", "cust_id": "B001", "full_name": "Jane Doe", "fax": "5550001111"}
]`

func records(t *testing.T, name, doc string) []fields.Record {
	t.Helper()
	recs, err := fields.ParseRecords(name, []byte(doc))
	require.NoError(t, err)
	return recs
}

func newClient(t *testing.T, opts ...fieldmatch.Option) fieldmatch.Client {
	t.Helper()
	fm, err := fieldmatch.New(opts...)
	require.NoError(t, err)
	return fm
}

func TestMatchRecordsDefaults(t *testing.T) {
	fm := newClient(t)
	res, err := fm.MatchRecords(context.Background(), records(t, "source.json", sourceDoc), records(t, "target.json", targetDoc))
	require.NoError(t, err)

	got := map[string]string{}
	for _, m := range res.Matches[:4] {
		got[m.TargetField] = m.SourceField
	}
	assert.Equal(t, map[string]string{
		"contact_email": "email",
		"cust_id":       "customer_id",
		"full_name":     "name",
		"fax":           "No Match",
	}, got)
	assert.Equal(t, engine.StrongManual, res.Matches[0].Status)
	require.Len(t, res.Matches, 5)
	assert.Equal(t, "tier", res.Matches[4].SourceField)
}

func TestHooks(t *testing.T) {
	fm := newClient(t, fieldmatch.WithOverrides(lexicon.NewOverrides(map[string]string{"fax": "missing"})))

	var mu sync.Mutex
	var matched []string
	var warnings []string
	fm.OnMatch(func(m engine.MatchResult) {
		mu.Lock()
		defer mu.Unlock()
		matched = append(matched, m.TargetField)
	})
	fm.OnWarning(func(w string) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, w)
	})

	_, err := fm.MatchRecords(context.Background(), records(t, "source.json", sourceDoc), records(t, "target.json", targetDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"contact_email", "cust_id", "full_name", "fax"}, matched[:4])
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "fax: ")
}

func TestRetrievalMarksMethod(t *testing.T) {
	fm := newClient(t, fieldmatch.WithRetrieval(2), fieldmatch.WithOverrides(lexicon.Overrides{}))
	res, err := fm.MatchRecords(context.Background(), records(t, "source.json", sourceDoc), records(t, "target.json", targetDoc))
	require.NoError(t, err)

	for _, m := range res.Matches {
		if m.TargetField == "No Match" {
			continue
		}
		assert.Equal(t, audit.AI, m.Method, m.TargetField)
	}
}

func TestRetrievalIndexFailureFallsBackToSynonyms(t *testing.T) {
	failing := embedding.Func(func(context.Context, string) ([]float32, error) {
		return nil, errors.New("offline")
	})
	fm := newClient(t,
		fieldmatch.WithEmbedder(failing),
		fieldmatch.WithRetrieval(3),
		fieldmatch.WithOverrides(lexicon.Overrides{}),
	)

	source, err := fields.FromPairs("source", "cust_id", "B001", "notes", "hello")
	require.NoError(t, err)
	target, err := fields.FromPairs("target", "customer_id", "A001", "comment", "hello")
	require.NoError(t, err)

	res, err := fm.Match(context.Background(), source, target)
	require.NoError(t, err)

	assert.Equal(t, "cust_id", res.Matches[0].SourceField)
	assert.True(t, res.Matches[0].Synonym)
	assert.Equal(t, "No Match", res.Matches[1].SourceField)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "retrieval failed")
}

func TestFilter(t *testing.T) {
	fm := newClient(t, fieldmatch.WithFilter(nil, []string{"tier", "fax"}))
	set, err := fm.FieldSet("source", records(t, "source.json", sourceDoc))
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "customer_id", "name"}, set.Names())
}

func TestWithLexiconFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	doc := "synonyms:\n  - [sku, product_code]\noverrides:\n  item: code\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	fm := newClient(t, fieldmatch.WithLexiconFile(path))
	assert.True(t, fm.Lexicon().AreSynonyms("SKU", "product-code"))
	assert.False(t, fm.Lexicon().AreSynonyms("email", "contact_email"))
	target, ok := fm.Overrides().Lookup("item")
	assert.True(t, ok)
	assert.Equal(t, "code", target)

	_, err := fieldmatch.New(fieldmatch.WithLexiconFile(filepath.Join(t.TempDir(), "absent.yaml")))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	fm := newClient(t)
	issues, err := fm.Validate("source", records(t, "source.json", sourceDoc))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, quality.Missing, issues[0].Kind)
	assert.Equal(t, "name", issues[0].Field)
	assert.Equal(t, 2, issues[0].Row)
}

func TestMerge(t *testing.T) {
	fm := newClient(t)
	srcRecs := records(t, "source.json", sourceDoc)
	tgtRecs := records(t, "target.json", targetDoc)

	srcSet, err := fm.FieldSet("source", srcRecs)
	require.NoError(t, err)
	tgtSet, err := fm.FieldSet("target", tgtRecs)
	require.NoError(t, err)

	res, err := fm.Match(context.Background(), srcSet, tgtSet)
	require.NoError(t, err)
	require.NoError(t, res.ApplyDefaultDecisions(false))

	out, err := fm.Merge(
		merge.Dataset{Fields: srcSet, Records: srcRecs},
		merge.Dataset{Fields: tgtSet, Records: tgtRecs},
		res,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "customer_id", "name", "tier", "fax"}, out.Fields)
	assert.Equal(t, "Jane", fields.StringValue(out.Records[0], "name"))
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  fieldmatch.Option
	}{
		{"nil lexicon", fieldmatch.WithLexicon(nil)},
		{"empty lexicon file", fieldmatch.WithLexiconFile("")},
		{"negative cache", fieldmatch.WithCache(-time.Second)},
		{"negative top k", fieldmatch.WithRetrieval(-1)},
		{"empty join key", fieldmatch.WithJoinKey("")},
		{"nil clock", fieldmatch.WithClock(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fieldmatch.New(tt.opt)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidationError(err))
		})
	}
}

func TestWithClockStampsAudit(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fm := newClient(t, fieldmatch.WithClock(func() time.Time { return fixed }), fieldmatch.WithCache(time.Minute))
	res, err := fm.MatchRecords(context.Background(), records(t, "source.json", sourceDoc), records(t, "target.json", targetDoc))
	require.NoError(t, err)
	for _, e := range res.Audit {
		assert.Equal(t, fixed, e.Timestamp)
	}
	assert.Equal(t, time.Duration(0), res.Metadata.Duration)
}
