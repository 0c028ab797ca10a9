// Package aggregate builds dense group-by-label numeric matrices from work items.
package aggregate

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrMatrixShape is returned when serialized matrix data is not a full cross product.
var ErrMatrixShape = errors.New("matrix shape mismatch")

// Dataset is one matrix row: a group label and its values in label order.
type Dataset struct {
	Label string `json:"label"`
	Data  []int  `json:"data"`
}

// Matrix maps every group to a value for every label. Both axes are ordered
// and every cell exists; unset cells hold zero.
type Matrix struct {
	labels   []string
	groups   []string
	labelIdx map[string]int
	groupIdx map[string]int
	values   [][]int
}

// NewMatrix allocates a zero-filled matrix over the given axes. Duplicate axis
// values are collapsed, keeping the first occurrence.
func NewMatrix(labels, groups []string) *Matrix {
	m := &Matrix{
		labels:   make([]string, 0, len(labels)),
		groups:   make([]string, 0, len(groups)),
		labelIdx: make(map[string]int, len(labels)),
		groupIdx: make(map[string]int, len(groups)),
	}

	for _, label := range labels {
		if _, ok := m.labelIdx[label]; ok {
			continue
		}

		m.labelIdx[label] = len(m.labels)
		m.labels = append(m.labels, label)
	}

	for _, group := range groups {
		if _, ok := m.groupIdx[group]; ok {
			continue
		}

		m.groupIdx[group] = len(m.groups)
		m.groups = append(m.groups, group)
	}

	m.values = make([][]int, len(m.groups))
	for i := range m.values {
		m.values[i] = make([]int, len(m.labels))
	}

	return m
}

// Labels returns the label axis in order.
func (m *Matrix) Labels() []string {
	return slices.Clone(m.labels)
}

// Groups returns the group axis in order.
func (m *Matrix) Groups() []string {
	return slices.Clone(m.groups)
}

// Get returns the cell value and whether both axis values exist in the matrix.
func (m *Matrix) Get(group, label string) (int, bool) {
	gi, gok := m.groupIdx[group]
	li, lok := m.labelIdx[label]

	if !gok || !lok {
		return 0, false
	}

	return m.values[gi][li], true
}

// Value returns the cell value, or zero when the cell is outside the matrix.
func (m *Matrix) Value(group, label string) int {
	v, _ := m.Get(group, label)

	return v
}

// Set stores a cell value. It reports false when the cell is outside the matrix.
func (m *Matrix) Set(group, label string, value int) bool {
	gi, gok := m.groupIdx[group]
	li, lok := m.labelIdx[label]

	if !gok || !lok {
		return false
	}

	m.values[gi][li] = value

	return true
}

// Add increments a cell value. It reports false when the cell is outside the matrix.
func (m *Matrix) Add(group, label string, delta int) bool {
	return m.Set(group, label, m.Value(group, label)+delta)
}

// Row returns a copy of a group's values in label order, or nil for an unknown group.
func (m *Matrix) Row(group string) []int {
	gi, ok := m.groupIdx[group]
	if !ok {
		return nil
	}

	return slices.Clone(m.values[gi])
}

// Column returns every group's value for a label, keyed by group.
func (m *Matrix) Column(label string) map[string]int {
	li, ok := m.labelIdx[label]
	if !ok {
		return nil
	}

	column := make(map[string]int, len(m.groups))

	for gi, group := range m.groups {
		column[group] = m.values[gi][li]
	}

	return column
}

// Total sums every cell.
func (m *Matrix) Total() int {
	total := 0

	for _, row := range m.values {
		for _, v := range row {
			total += v
		}
	}

	return total
}

// Datasets returns one dataset per group, in group order.
func (m *Matrix) Datasets() []Dataset {
	datasets := make([]Dataset, 0, len(m.groups))

	for gi, group := range m.groups {
		datasets = append(datasets, Dataset{Label: group, Data: slices.Clone(m.values[gi])})
	}

	return datasets
}

// matrixJSON is the persisted representation of a Matrix.
type matrixJSON struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// MarshalJSON implements json.Marshaler.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(matrixJSON{Labels: m.Labels(), Datasets: m.Datasets()})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix: %w", err)
	}

	return data, nil
}

// UnmarshalJSON implements json.Unmarshaler. Rows must cover every label exactly
// and axis values must be unique.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var wire matrixJSON

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return fmt.Errorf("unmarshal matrix: %w", err)
	}

	groups := make([]string, 0, len(wire.Datasets))
	for _, ds := range wire.Datasets {
		groups = append(groups, ds.Label)
	}

	decoded := NewMatrix(wire.Labels, groups)

	if len(decoded.labels) != len(wire.Labels) || len(decoded.groups) != len(groups) {
		return fmt.Errorf("%w: duplicate axis values", ErrMatrixShape)
	}

	for gi, ds := range wire.Datasets {
		if len(ds.Data) != len(decoded.labels) {
			return fmt.Errorf("%w: group %q has %d values for %d labels",
				ErrMatrixShape, ds.Label, len(ds.Data), len(decoded.labels))
		}

		copy(decoded.values[gi], ds.Data)
	}

	*m = *decoded

	return nil
}
