package classify

import (
	"slices"

	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

// LabelSource resolves the ordered axis labels of a matrix for an item collection.
type LabelSource interface {
	Labels(items []workitem.Item) []string
}

// StaticList is a fixed, caller-ordered label source. It ignores the items so that
// every value appears even with zero matching items, keeping axis order stable
// across runs.
type StaticList []string

// Static builds a StaticList from values, dropping duplicates but keeping first order.
func Static(values ...string) StaticList {
	out := make(StaticList, 0, len(values))

	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}

	return out
}

// FromFields builds a StaticList from enumeration options, in definition order.
func FromFields(fields []workitem.Field) StaticList {
	values := make([]string, 0, len(fields))

	for _, f := range fields {
		values = append(values, f.Value)
	}

	return Static(values...)
}

// Labels implements LabelSource.
func (s StaticList) Labels(_ []workitem.Item) []string {
	return slices.Clone([]string(s))
}

// DerivedSorted is a label source computing the sorted distinct classification
// values present in the items, including Unknown when any item lacks the field.
type DerivedSorted struct {
	Axis Axis
}

// Derived returns a DerivedSorted label source for the axis.
func Derived(axis Axis) DerivedSorted {
	return DerivedSorted{Axis: axis}
}

// Labels implements LabelSource.
func (d DerivedSorted) Labels(items []workitem.Item) []string {
	seen := make(map[string]struct{}, len(items))
	labels := make([]string, 0)

	for _, item := range items {
		value := Classify(item, d.Axis)
		if _, ok := seen[value]; ok {
			continue
		}

		seen[value] = struct{}{}
		labels = append(labels, value)
	}

	slices.Sort(labels)

	return labels
}
