package aggregate

import (
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/sprintstat/pkg/classify"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

// ValueFunc computes the value of one (label, group) cell from the full item collection.
type ValueFunc func(label, group string, items []workitem.Item) int

// Aggregate resolves both axes and evaluates value for every (group, label) pair.
// The result is always a full cross product; empty items yield an all-zero matrix.
func Aggregate(items []workitem.Item, labels, groups classify.LabelSource, value ValueFunc) *Matrix {
	m := NewMatrix(labels.Labels(items), groups.Labels(items))

	for _, group := range m.groups {
		for _, label := range m.labels {
			m.Set(group, label, value(label, group, items))
		}
	}

	return m
}

// ComplexitySum sums the parsed integer complexity of items that classify as label
// on labelAxis and as group on groupAxis. AxisNone skips that axis filter. Items
// without a complexity, or with a non-integer one, are not counted.
func ComplexitySum(labelAxis, groupAxis classify.Axis) ValueFunc {
	return func(label, group string, items []workitem.Item) int {
		sum := 0

		for _, item := range items {
			if !classify.Matches(item, labelAxis, label) || !classify.Matches(item, groupAxis, group) {
				continue
			}

			complexity, ok := Complexity(item)
			if !ok {
				continue
			}

			sum += complexity
		}

		return sum
	}
}

// Count counts the items that classify as label on labelAxis and as group on groupAxis.
func Count(labelAxis, groupAxis classify.Axis) ValueFunc {
	return func(label, group string, items []workitem.Item) int {
		count := 0

		for _, item := range items {
			if classify.Matches(item, labelAxis, label) && classify.Matches(item, groupAxis, group) {
				count++
			}
		}

		return count
	}
}

// Complexity returns the item's complexity as an integer. It reports false when the
// field is missing or not an integer.
func Complexity(item workitem.Item) (int, bool) {
	if item.Complexity == nil {
		return 0, false
	}

	value, err := strconv.Atoi(strings.TrimSpace(item.Complexity.Value))
	if err != nil {
		return 0, false
	}

	return value, true
}
