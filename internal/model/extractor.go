package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/wildstyl3r/miecoat/internal/config"
	"github.com/wildstyl3r/miecoat/internal/mie"
	"github.com/wildstyl3r/miecoat/internal/utils"
)

type DataExtractor struct {
	model *Model
}

func NewDataExtractor(model *Model) *DataExtractor {
	return &DataExtractor{model: model}
}

// table is one output converted to output units.
type table struct {
	name    string
	title   string
	columns []string
	xLabel  string
	yLabel  string
	args    []float64
	values  [][]float64
}

func (t table) seriesNames() []string {
	return t.columns[1:]
}

func axisLabel(name string, classes []config.UnitElement, units []string) string {
	if unit := config.UnitLabel(classes, units); unit != "" {
		return name + " (" + unit + ")"
	}
	return name
}

func (de *DataExtractor) table(name string, output SequentialDataItem) table {
	units := de.model.Parameters.OutputUnits()
	args, values, labels := output.values(de)
	t := table{
		name:    name,
		title:   output.title,
		columns: append(append([]string{}, output.columnNames...), labels...),
		xLabel:  axisLabel(output.columnNames[0], output.xUnit, units),
		yLabel:  axisLabel(output.title, output.yUnit, units),
		args:    make([]float64, len(args)),
		values:  make([][]float64, len(values)),
	}
	for x := range args {
		t.args[x] = config.SI(args[x], output.xUnit, units, false)
		t.values[x] = make([]float64, len(values[x]))
		for i := range values[x] {
			t.values[x][i] = config.SI(values[x][i], output.yUnit, units, false)
		}
	}
	return t
}

// Save writes the selected outputs as CSV and, on request, as PNG plots and one HTML page.
// Angular outputs are skipped when the main configuration failed.
func (de *DataExtractor) Save(df DataFlags) error {
	var errs []error
	var tables []table
	for _, name := range df.selected() {
		output := df.sequentials[name]
		if de.model.Err != nil && name != "Sweep" {
			continue
		}
		if name == "Sweep" && len(de.model.Sweep) == 0 {
			continue
		}
		t := de.table(name, output)
		tables = append(tables, t)
		if err := de.saveCSV(df, output.fileSuffix, t); err != nil {
			errs = append(errs, fmt.Errorf("unable to save %s: %w", name, err))
			continue
		}
		if *df.png {
			if err := de.savePNG(df, output.fileSuffix, t); err != nil {
				errs = append(errs, fmt.Errorf("unable to plot %s: %w", name, err))
			}
		}
		if de.model.Parameters.Verbose() {
			fmt.Println(name + " saved")
		}
	}
	if *df.html && len(tables) > 0 {
		if err := de.saveHTML(df, tables); err != nil {
			errs = append(errs, fmt.Errorf("unable to render charts: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (de *DataExtractor) saveCSV(df DataFlags, suffix string, t table) (err error) {
	file, err := utils.OpenFile(de.model.Parameters.MakeDir, df.outputPath, suffix, de.model.Name, "csv")
	if err != nil {
		return err
	}
	defer utils.CloseFile(file, &err)

	rows := [][]string{t.columns}
	for x := range t.args {
		row := []string{strconv.FormatFloat(t.args[x], 'f', -1, 64)}
		for i := range t.values[x] {
			row = append(row, strconv.FormatFloat(t.values[x][i], 'f', -1, 64))
		}
		rows = append(rows, row)
	}
	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("error writing csv: %w", err)
	}
	return nil
}

func (de *DataExtractor) savePNG(df DataFlags, suffix string, t table) (err error) {
	p, err := newPlot(t)
	if err != nil {
		return err
	}
	file, err := utils.OpenFile(de.model.Parameters.MakeDir, df.outputPath, suffix, de.model.Name, "png")
	if err != nil {
		return err
	}
	defer utils.CloseFile(file, &err)
	return writePlot(p, file)
}

func (de *DataExtractor) saveHTML(df DataFlags, tables []table) (err error) {
	page := components.NewPage()
	page.PageTitle = de.model.Name
	for _, t := range tables {
		page.AddCharts(newChart(de.model.Name, t))
	}
	file, err := utils.OpenFile(de.model.Parameters.MakeDir, df.outputPath, "charts", de.model.Name, "html")
	if err != nil {
		return err
	}
	defer utils.CloseFile(file, &err)
	return page.Render(file)
}

// SummaryColumns head the efficiencies table written by SummaryRow rows. Search radii
// are in output length units and stay empty when the search was not requested or failed.
var SummaryColumns = []string{"model", "x", "Qext", "Qsca", "Qabs", "Qback", "g", "orders", "status",
	"peak radius", "peak Qext", "target radius"}

func (de *DataExtractor) SummaryRow() []string {
	m := de.model
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	radius := func(r float64) string {
		return format(config.SI(r, lengthUnit, m.Parameters.OutputUnits(), false))
	}
	row := []string{m.Name, format(m.Particle.SizeParameter())}
	if m.Err != nil {
		row = append(row, "", "", "", "", "", "", mie.StatusOf(m.Err).String())
	} else {
		r := m.Result
		row = append(row,
			format(r.Extinction),
			format(r.Scattering),
			format(r.Absorption()),
			format(r.Backscatter),
			format(r.AsymmetryParameter()),
			strconv.Itoa(r.Orders),
			mie.StatusOK.String(),
		)
	}

	peakRadius, peakQext, targetRadius := "", "", ""
	if m.Peak != nil && m.Peak.Err == nil {
		peakRadius, peakQext = radius(m.Peak.OuterRadius), format(m.Peak.Result.Extinction)
	}
	if m.Target != nil && m.Target.Err == nil {
		targetRadius = radius(m.Target.OuterRadius)
	}
	return append(row, peakRadius, peakQext, targetRadius)
}
