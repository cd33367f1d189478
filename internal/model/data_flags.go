package model

import (
	"flag"
	"sort"

	"github.com/wildstyl3r/miecoat/internal/config"
	"github.com/wildstyl3r/miecoat/internal/mie"
)

type DataItem struct {
	saveFlag   *bool
	fileSuffix string
}

type SequentialDataItem struct {
	DataItem
	title       string
	columnNames []string
	values      func(*DataExtractor) (args []float64, values [][]float64, labels []string)
	xUnit       []config.UnitElement
	yUnit       []config.UnitElement
}

type DataFlags struct {
	all         *bool
	png         *bool
	html        *bool
	sequentials map[string]SequentialDataItem
	outputPath  string
}

var angleUnit = []config.UnitElement{{Class: config.Angle, Power: 1}}
var lengthUnit = []config.UnitElement{{Class: config.Length, Power: 1}}

// elementSeries lists an element over the whole 0..180 range: the forward values at
// theta and the backward ones at 180-theta.
func elementSeries(element func(mie.Elements) float64) func(*DataExtractor) ([]float64, [][]float64, []string) {
	return func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
		var forward, backward []AngularValue
		for _, a := range de.model.Result.Angles {
			forward = append(forward, AngularValue{Theta: a.Theta, Forward: element(a.Forward)})
			backward = append(backward, AngularValue{Theta: a.Theta, Backward: element(a.Backward)})
		}
		return mergeHalves(forward, backward)
	}
}

func angularSeries(series func(*DataExtractor) []AngularValue) func(*DataExtractor) ([]float64, [][]float64, []string) {
	return func(de *DataExtractor) ([]float64, [][]float64, []string) {
		v := series(de)
		return mergeHalves(v, v)
	}
}

// mergeHalves sorts forward values at theta and backward values at 180-theta by angle.
// The backward value at exactly 90 degrees duplicates the forward one and is dropped.
func mergeHalves(forward, backward []AngularValue) (args []float64, values [][]float64, labels []string) {
	type point struct{ theta, value float64 }
	var points []point
	for _, v := range forward {
		points = append(points, point{v.Theta, v.Forward})
	}
	for _, v := range backward {
		if v.Theta != 90 {
			points = append(points, point{180 - v.Theta, v.Backward})
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].theta < points[j].theta })
	for _, p := range points {
		args = append(args, p.theta)
		values = append(values, []float64{p.value})
	}
	return args, values, nil
}

func NewDataFlags(fs *flag.FlagSet) DataFlags {
	return DataFlags{
		all:  fs.Bool("all", false, "save every available output"),
		png:  fs.Bool("png", false, "also render selected outputs to PNG"),
		html: fs.Bool("html", false, "also render selected outputs to one HTML page per model"),
		sequentials: map[string]SequentialDataItem{
			"M1": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("m1", false, "save M1 = |S1|^2"),
					fileSuffix: "m1",
				},
				title:       "Perpendicular intensity",
				columnNames: []string{"theta", "M1"},
				values:      elementSeries(func(e mie.Elements) float64 { return e.M1 }),
				xUnit:       angleUnit,
			},
			"M2": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("m2", false, "save M2 = |S2|^2"),
					fileSuffix: "m2",
				},
				title:       "Parallel intensity",
				columnNames: []string{"theta", "M2"},
				values:      elementSeries(func(e mie.Elements) float64 { return e.M2 }),
				xUnit:       angleUnit,
			},
			"S21": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("s21", false, "save S21 = Re(S1 S2*)"),
					fileSuffix: "s21",
				},
				title:       "S21",
				columnNames: []string{"theta", "S21"},
				values:      elementSeries(func(e mie.Elements) float64 { return e.S21 }),
				xUnit:       angleUnit,
			},
			"D21": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("d21", false, "save D21 = Im(S1 S2*)"),
					fileSuffix: "d21",
				},
				title:       "D21",
				columnNames: []string{"theta", "D21"},
				values:      elementSeries(func(e mie.Elements) float64 { return e.D21 }),
				xUnit:       angleUnit,
			},
			"Phase function": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("pf", true, "save phase function"),
					fileSuffix: "pf",
				},
				title:       "Phase function",
				columnNames: []string{"theta", "p"},
				values: angularSeries(func(de *DataExtractor) []AngularValue {
					return PhaseFunction(de.model.Result, de.model.Particle.SizeParameter())
				}),
				xUnit: angleUnit,
			},
			"Polarization": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("pol", false, "save degree of linear polarization"),
					fileSuffix: "pol",
				},
				title:       "Degree of linear polarization",
				columnNames: []string{"theta", "P"},
				values: angularSeries(func(de *DataExtractor) []AngularValue {
					return Polarization(de.model.Result)
				}),
				xUnit: angleUnit,
			},
			"Sweep": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("sweep", true, "save efficiencies of the radius sweep"),
					fileSuffix: "sweep",
				},
				title:       "Efficiencies over outer radius",
				columnNames: []string{"outer radius"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					labels = []string{"Qext", "Qsca", "Qabs", "Qback", "g"}
					for _, point := range de.model.Sweep {
						if point.Status != mie.StatusOK {
							continue
						}
						r := point.Result
						args = append(args, point.OuterRadius)
						values = append(values, []float64{r.Extinction, r.Scattering, r.Absorption(), r.Backscatter, r.AsymmetryParameter()})
					}
					return args, values, labels
				},
				xUnit: lengthUnit,
			},
		},
	}
}

func (df *DataFlags) SetOutputPath(path string) {
	df.outputPath = path
}

func (df *DataFlags) GetOutputPath() string {
	return df.outputPath
}

// selected lists the outputs to save in a stable order.
func (df *DataFlags) selected() []string {
	var names []string
	for name, output := range df.sequentials {
		if *output.saveFlag || *df.all {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
