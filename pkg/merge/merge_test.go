package merge_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldmatch/pkg/engine"
	"github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/merge"
	"github.com/agentstation/fieldmatch/pkg/quality"
)

func dataset(t *testing.T, system, doc string) merge.Dataset {
	t.Helper()
	records, err := fields.ParseRecords(system+".json", []byte(doc))
	require.NoError(t, err)
	set, err := fields.FromRecords(system, records, nil)
	require.NoError(t, err)
	return merge.Dataset{Fields: set, Records: records}
}

func fixtures(t *testing.T) (merge.Dataset, merge.Dataset, *engine.Result) {
	t.Helper()
	source := dataset(t, "source", `[
  {"email": "Jane@Example.com", "customer_id": "A001", "name": "", "tier": "Gold"},
  {"email": "bob@example.com", "customer_id": "A002", "name": "Bob", "tier": "Silver"}
]`)
	target := dataset(t, "target", `[
  {"contact_email": "jane@example.com", "cust_id": "B001", "full_name": "Jane Doe", "fax": "5550001111"}
]`)

	e, err := engine.New()
	require.NoError(t, err)
	res, err := e.Match(context.Background(), source.Fields, target.Fields)
	require.NoError(t, err)
	return source, target, res
}

func TestMerge(t *testing.T) {
	source, target, res := fixtures(t)
	require.NoError(t, res.ApplyDefaultDecisions(false))

	plan := merge.PlanFrom(res)
	assert.Equal(t, []merge.Mapping{
		{Target: "contact_email", Source: "email"},
		{Target: "cust_id", Source: "customer_id"},
		{Target: "full_name", Source: "name"},
	}, plan.Approved)

	out, err := merge.Merge(source, target, plan)
	require.NoError(t, err)

	assert.Equal(t, []string{"email", "customer_id", "name", "tier", "fax"}, out.Fields)
	require.Len(t, out.Records, 2)
	assert.Equal(t, 1, out.Unpaired)

	first := out.Records[0]
	assert.Equal(t, "Jane@Example.com", fields.StringValue(first, "email"))
	assert.Equal(t, "A001", fields.StringValue(first, "customer_id"))
	assert.Equal(t, "Jane Doe", fields.StringValue(first, "name"))
	assert.Equal(t, "Gold", fields.StringValue(first, "tier"))
	assert.Equal(t, "5550001111", fields.StringValue(first, "fax"))

	second := out.Records[1]
	assert.Equal(t, "Bob", fields.StringValue(second, "name"))
	fax, ok := fields.Value(second, "fax")
	assert.True(t, ok)
	assert.Nil(t, fax)

	require.Len(t, out.Issues, 1)
	assert.Equal(t, merge.MergedSystem, out.Issues[0].System)
	assert.Equal(t, 2, out.Issues[0].Row)
	assert.Equal(t, "fax", out.Issues[0].Field)
	assert.Equal(t, quality.Missing, out.Issues[0].Kind)
}

func TestMergeUndecidedCarriesBothSides(t *testing.T) {
	source, target, res := fixtures(t)

	plan := merge.PlanFrom(res)
	assert.Empty(t, plan.Approved)

	_, err := merge.Merge(source, target, plan)
	assert.True(t, errors.IsValidationError(err), "no target field named email to join on")

	out, err := merge.Merge(source, target, plan, merge.WithTargetJoinKey("contact_email"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"email", "customer_id", "name", "tier",
		"contact_email", "cust_id", "full_name", "fax",
	}, out.Fields)
	assert.Equal(t, "", fields.StringValue(out.Records[0], "name"))
	assert.Equal(t, "Jane Doe", fields.StringValue(out.Records[0], "full_name"))
}

func TestMergeOptions(t *testing.T) {
	source, target, res := fixtures(t)
	plan := merge.PlanFrom(res)

	_, err := merge.Merge(source, target, plan, merge.WithJoinKey(""))
	assert.True(t, errors.IsValidationError(err))

	_, err = merge.Merge(source, target, plan, merge.WithJoinKey("nope"))
	assert.True(t, errors.IsValidationError(err))

	_, err = merge.Merge(merge.Dataset{}, target, plan)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestOutputJSONKeepsColumnOrder(t *testing.T) {
	source, target, res := fixtures(t)
	require.NoError(t, res.ApplyDefaultDecisions(false))

	out, err := merge.Merge(source, target, merge.PlanFrom(res))
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `{"email":"Jane@Example.com","customer_id":"A001","name":"Jane Doe","tier":"Gold","fax":"5550001111"}`)
	assert.Contains(t, string(raw), `"unpaired":1`)
}
