// Package classify maps work items to classification values along a named axis
// and resolves the ordered label sets used as matrix axes.
package classify

import (
	"strconv"

	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

// Unknown is the classification value of an item that lacks the axis field.
const Unknown = "unknown"

// Axis names a classification dimension of a work item.
type Axis int

// Supported axes. AxisNone means "no axis": filters on it always match.
const (
	AxisNone Axis = iota
	AxisIteration
	AxisTeam
	AxisStatus
	AxisQA
	AxisAssignee
)

var axisNames = map[Axis]string{
	AxisNone:      "none",
	AxisIteration: "iteration",
	AxisTeam:      "team",
	AxisStatus:    "status",
	AxisQA:        "qa",
	AxisAssignee:  "assignee",
}

// String returns the axis name.
func (a Axis) String() string {
	name, ok := axisNames[a]
	if !ok {
		return "axis(" + strconv.Itoa(int(a)) + ")"
	}

	return name
}

// Field returns the item's field for the axis, or nil when it is absent.
func (a Axis) Field(item workitem.Item) *workitem.Field {
	switch a {
	case AxisIteration:
		return item.Iteration
	case AxisTeam:
		return item.Team
	case AxisStatus:
		return item.Status
	case AxisQA:
		return item.QA
	case AxisAssignee:
		return item.PrimaryAssignee()
	case AxisNone:
		return nil
	}

	return nil
}

// Classify returns the item's value on the axis, or Unknown when the field is absent.
func Classify(item workitem.Item, axis Axis) string {
	field := axis.Field(item)
	if field == nil || field.Value == "" {
		return Unknown
	}

	return field.Value
}

// Matches reports whether the item classifies as value on the axis.
// AxisNone matches every item.
func Matches(item workitem.Item, axis Axis, value string) bool {
	if axis == AxisNone {
		return true
	}

	return Classify(item, axis) == value
}

// GroupBy partitions items by their classification on the axis, preserving item order.
func GroupBy(items []workitem.Item, axis Axis) map[string][]workitem.Item {
	groups := make(map[string][]workitem.Item)

	for _, item := range items {
		key := Classify(item, axis)
		groups[key] = append(groups[key], item)
	}

	return groups
}
