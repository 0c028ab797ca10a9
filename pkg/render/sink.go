// Package render turns labels and datasets into chart artifacts.
package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/sprintstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/sprintstat/pkg/burndown"
)

// ErrNoName is returned when a chart is rendered without an output name.
var ErrNoName = errors.New("chart output name is required")

// Extension is the file extension of rendered chart artifacts.
const Extension = ".html"

// Kind selects the chart type.
type Kind int

// Chart kinds.
const (
	KindBar Kind = iota
	KindLine
)

// Dataset is one chart series.
type Dataset struct {
	Label  string
	Values []int
	// Color is a hex value or a board option color name; empty uses the palette.
	Color string
}

// Options controls how and where a chart is rendered.
type Options struct {
	Kind     Kind
	Stacked  bool
	Path     string
	Name     string
	Title    string
	Subtitle string
	XAxis    string
	YAxis    string
}

// File returns the artifact path the options resolve to.
func (o Options) File() string {
	return filepath.Join(o.Path, o.Name+Extension)
}

// Sink renders a chart artifact and returns its path.
type Sink interface {
	Render(labels []string, datasets []Dataset, o Options) (string, error)
}

// HTMLSink writes self-contained go-echarts HTML pages.
type HTMLSink struct {
	opts *ChartOpts
}

// NewHTMLSink creates an HTML sink for the given theme.
func NewHTMLSink(theme Theme) *HTMLSink {
	return &HTMLSink{opts: NewChartOpts(theme)}
}

// Render implements Sink. It writes {o.Path}/{o.Name}.html, creating o.Path as needed.
func (s *HTMLSink) Render(labels []string, datasets []Dataset, o Options) (string, error) {
	if o.Name == "" {
		return "", ErrNoName
	}

	err := os.MkdirAll(o.Path, 0o755)
	if err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}

	path := o.File()

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	defer file.Close()

	err = s.Write(file, labels, datasets, o)
	if err != nil {
		return "", err
	}

	return path, nil
}

// Write renders the chart page to w.
func (s *HTMLSink) Write(w io.Writer, labels []string, datasets []Dataset, o Options) error {
	var err error

	switch o.Kind {
	case KindLine:
		err = BuildLineChart(s.opts, labels, datasets, o).Render(w)
	case KindBar:
		err = BuildBarChart(s.opts, labels, datasets, o).Render(w)
	default:
		err = fmt.Errorf("unknown chart kind %d", o.Kind) //nolint:err113 // dynamic error
	}

	if err != nil {
		return fmt.Errorf("render chart %s: %w", o.Name, err)
	}

	return nil
}

// FromMatrix converts a matrix into chart labels and datasets, one dataset per group.
// colors optionally maps group names to colors.
func FromMatrix(m *aggregate.Matrix, colors map[string]string) ([]string, []Dataset) {
	rows := m.Datasets()
	datasets := make([]Dataset, 0, len(rows))

	for _, row := range rows {
		datasets = append(datasets, Dataset{Label: row.Label, Values: row.Data, Color: colors[row.Label]})
	}

	return m.Labels(), datasets
}

// FromSeries converts a burn-down series into chart labels and datasets.
// colors optionally maps status names to colors.
func FromSeries(series burndown.Series, colors map[string]string) ([]string, []Dataset) {
	datasets := make([]Dataset, 0, len(series.Datasets))

	for _, ds := range series.Datasets {
		datasets = append(datasets, Dataset{Label: ds.Label, Values: ds.Values, Color: colors[ds.Label]})
	}

	return series.Days, datasets
}
