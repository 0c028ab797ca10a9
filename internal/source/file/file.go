// Package file reads work items, iterations, and field options from a YAML
// (or JSON) export, for offline runs and replays.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

// ErrFieldNotFound is returned when the export has no options for a field.
var ErrFieldNotFound = errors.New("field not found in export")

// Export is the on-disk document.
type Export struct {
	Iterations []Iteration                 `yaml:"iterations"`
	Fields     map[string][]workitem.Field `yaml:"fields"`
	Items      []workitem.Item             `yaml:"items"`
}

// Iteration is the exported form of an iteration.
type Iteration struct {
	Title     string `yaml:"title"`
	StartDate string `yaml:"start_date"`
	Duration  int    `yaml:"duration"`
	Completed bool   `yaml:"completed,omitempty"`
}

// Source serves an export file. The file is re-read on every call.
type Source struct {
	path string
}

// New creates a source over the export at path.
func New(path string) *Source {
	return &Source{path: path}
}

// Load reads and decodes the export.
func (s *Source) Load() (*Export, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	var export Export

	unmarshalErr := yaml.Unmarshal(data, &export)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("decode export %s: %w", s.path, unmarshalErr)
	}

	return &export, nil
}

// FetchItems implements workitem.Source.
func (s *Source) FetchItems(ctx context.Context) ([]workitem.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	export, err := s.Load()
	if err != nil {
		return nil, err
	}

	if export.Items == nil {
		return []workitem.Item{}, nil
	}

	return export.Items, nil
}

// FetchIterations implements workitem.Source.
func (s *Source) FetchIterations(ctx context.Context, openOnly bool) ([]workitem.Iteration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	export, err := s.Load()
	if err != nil {
		return nil, err
	}

	iterations := make([]workitem.Iteration, 0, len(export.Iterations))

	for _, exported := range export.Iterations {
		if openOnly && exported.Completed {
			continue
		}

		start, parseErr := workitem.ParseDate(exported.StartDate)
		if parseErr != nil {
			return nil, fmt.Errorf("iteration %s: %w", exported.Title, parseErr)
		}

		it := workitem.Iteration{Title: exported.Title, StartDate: start, Duration: exported.Duration}

		validateErr := it.Validate()
		if validateErr != nil {
			return nil, validateErr
		}

		iterations = append(iterations, it)
	}

	return iterations, nil
}

// FetchEnumeration implements workitem.Source.
func (s *Source) FetchEnumeration(ctx context.Context, fieldName string) ([]workitem.Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	export, err := s.Load()
	if err != nil {
		return nil, err
	}

	options, ok := export.Fields[fieldName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, fieldName)
	}

	return options, nil
}
