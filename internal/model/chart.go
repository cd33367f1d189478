package model

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

func newChart(modelName string, t table) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    t.title,
			Subtitle: modelName,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: t.xLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  t.yLabel,
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)
	line.SetXAxis(t.args)
	for i, name := range t.seriesNames() {
		items := make([]opts.LineData, len(t.args))
		for x := range t.args {
			items[x].Value = t.values[x][i]
		}
		line.AddSeries(name, items)
	}
	return line
}
