package render

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// stackName groups every series of a stacked chart.
const stackName = "total"

// areaOpacity is the fill opacity of stacked line charts.
const areaOpacity = 0.5

// BuildBarChart constructs a themed go-echarts bar chart.
// If cOpts is nil, DefaultChartOpts() is used.
func BuildBarChart(cOpts *ChartOpts, labels []string, datasets []Dataset, o Options) *charts.Bar {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init(o.Title)),
		charts.WithTitleOpts(cOpts.Title(o.Title, o.Subtitle)),
		charts.WithTooltipOpts(cOpts.Tooltip("axis")),
		charts.WithDataZoomOpts(cOpts.DataZoom()...),
		charts.WithXAxisOpts(cOpts.XAxis(o.XAxis)),
		charts.WithYAxisOpts(cOpts.YAxis(o.YAxis)),
		charts.WithLegendOpts(cOpts.Legend()),
		charts.WithGridOpts(cOpts.Grid()),
	)

	bar.SetXAxis(labels)

	theme := cOpts.Theme()

	for i, ds := range datasets {
		data := make([]opts.BarData, len(ds.Values))
		for j, v := range ds.Values {
			data[j] = opts.BarData{Value: v}
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: theme.Color(ds.Color, i)}),
		}

		if o.Stacked {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: stackName}))
		}

		bar.AddSeries(ds.Label, data, seriesOpts...)
	}

	return bar
}

// BuildLineChart constructs a themed go-echarts line chart. Stacked line charts
// are drawn as filled areas.
// If cOpts is nil, DefaultChartOpts() is used.
func BuildLineChart(cOpts *ChartOpts, labels []string, datasets []Dataset, o Options) *charts.Line {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init(o.Title)),
		charts.WithTitleOpts(cOpts.Title(o.Title, o.Subtitle)),
		charts.WithTooltipOpts(cOpts.Tooltip("axis")),
		charts.WithDataZoomOpts(cOpts.DataZoom()...),
		charts.WithXAxisOpts(cOpts.XAxis(o.XAxis)),
		charts.WithYAxisOpts(cOpts.YAxis(o.YAxis)),
		charts.WithLegendOpts(cOpts.Legend()),
		charts.WithGridOpts(cOpts.Grid()),
	)

	line.SetXAxis(labels)

	theme := cOpts.Theme()

	for i, ds := range datasets {
		data := make([]opts.LineData, len(ds.Values))
		for j, v := range ds.Values {
			data[j] = opts.LineData{Value: v}
		}

		color := theme.Color(ds.Color, i)
		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color}),
		}

		if o.Stacked {
			seriesOpts = append(seriesOpts,
				charts.WithLineChartOpts(opts.LineChart{Stack: stackName}),
				charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(areaOpacity)}),
			)
		}

		line.AddSeries(ds.Label, data, seriesOpts...)
	}

	return line
}
