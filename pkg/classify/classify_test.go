package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sprintstat/pkg/classify"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

func field(value string) *workitem.Field {
	return &workitem.Field{Value: value}
}

func TestClassify_PresentFields(t *testing.T) {
	t.Parallel()

	item := workitem.Item{
		Iteration: field("Sprint 1"),
		Team:      field("Core"),
		Status:    field("Done"),
		QA:        field("Passed"),
		Assignees: []workitem.Field{{Value: "alice"}, {Value: "bob"}},
	}

	assert.Equal(t, "Sprint 1", classify.Classify(item, classify.AxisIteration))
	assert.Equal(t, "Core", classify.Classify(item, classify.AxisTeam))
	assert.Equal(t, "Done", classify.Classify(item, classify.AxisStatus))
	assert.Equal(t, "Passed", classify.Classify(item, classify.AxisQA))
	assert.Equal(t, "alice", classify.Classify(item, classify.AxisAssignee))
}

func TestClassify_MissingFieldIsUnknown(t *testing.T) {
	t.Parallel()

	item := workitem.Item{}

	for _, axis := range []classify.Axis{
		classify.AxisIteration, classify.AxisTeam, classify.AxisStatus,
		classify.AxisQA, classify.AxisAssignee, classify.AxisNone,
	} {
		assert.Equal(t, classify.Unknown, classify.Classify(item, axis), axis.String())
	}
}

func TestMatches_AxisNoneAlwaysMatches(t *testing.T) {
	t.Parallel()

	item := workitem.Item{Team: field("Core")}

	assert.True(t, classify.Matches(item, classify.AxisNone, "anything"))
	assert.True(t, classify.Matches(item, classify.AxisTeam, "Core"))
	assert.False(t, classify.Matches(item, classify.AxisTeam, "Web"))
}

func TestStatic_KeepsOrderAndDropsDuplicates(t *testing.T) {
	t.Parallel()

	source := classify.Static("Todo", "In Progress", "Todo", "Done")

	assert.Equal(t, []string{"Todo", "In Progress", "Done"}, source.Labels(nil))
}

func TestStatic_IgnoresItems(t *testing.T) {
	t.Parallel()

	source := classify.FromFields([]workitem.Field{{Value: "Todo"}, {Value: "Done", Color: "GREEN"}})
	items := []workitem.Item{{Status: field("Blocked")}}

	assert.Equal(t, []string{"Todo", "Done"}, source.Labels(items))
}

func TestDerived_SortedDistinctWithUnknown(t *testing.T) {
	t.Parallel()

	items := []workitem.Item{
		{Team: field("Web")},
		{Team: field("Core")},
		{},
		{Team: field("Web")},
	}

	labels := classify.Derived(classify.AxisTeam).Labels(items)

	assert.Equal(t, []string{"Core", "Web", "unknown"}, labels)
}

func TestDerived_EmptyItems(t *testing.T) {
	t.Parallel()

	labels := classify.Derived(classify.AxisStatus).Labels(nil)

	require.NotNil(t, labels)
	assert.Empty(t, labels)
}

func TestGroupBy_PartitionsByAxis(t *testing.T) {
	t.Parallel()

	items := []workitem.Item{
		{Team: field("Core"), Complexity: field("1")},
		{Team: field("Web")},
		{Team: field("Core"), Complexity: field("2")},
		{},
	}

	groups := classify.GroupBy(items, classify.AxisTeam)

	require.Len(t, groups, 3)
	assert.Len(t, groups["Core"], 2)
	assert.Equal(t, "2", groups["Core"][1].Complexity.Value)
	assert.Len(t, groups["Web"], 1)
	assert.Len(t, groups[classify.Unknown], 1)
}
