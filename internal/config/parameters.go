package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/miecoat/internal/constants"
	"github.com/wildstyl3r/miecoat/internal/utils"
)

var (
	ErrNoModels       = errors.New("config: no models provided")
	ErrUnitConflict   = errors.New("config: unit conflict")
	ErrAmbiguous      = errors.New("config: ambiguous parameters")
	ErrMissingField   = errors.New("config: required field not found")
	ErrSizeTableMixed = errors.New("config: SizeTable and [Models] tables are exclusive")
)

type Config struct {
	OutputDir string
	Models    map[string]ModelParameters
	ModelParameters
	SizeTable     string // file of "outer core" radius pairs, one model per line
	AngleCapacity int
	OrderCapacity int
	Threads       int
	isDefinedMap  map[string]struct{}

	InputUnits  []string
	OutputUnits []string
}

func (c *Config) isDefined(path []string, meta *toml.MetaData) bool {
	if _, sureDefined := c.isDefinedMap[strings.Join(path, "#")]; sureDefined {
		return true
	}
	return meta.IsDefined(path...)
}

func LoadConfig(configFileName string) (Config, toml.MetaData, error) {
	var config Config
	config.isDefinedMap = map[string]struct{}{}
	meta, err := toml.DecodeFile(strings.TrimSuffix(configFileName, ".toml")+".toml", &config)
	if err != nil {
		return config, meta, err
	}

	var unitsConflict []string
	config.InputUnits, unitsConflict = checkUnits(config.InputUnits)
	if len(unitsConflict) > 0 {
		return config, meta, fmt.Errorf("input units %v: %w", unitsConflict, ErrUnitConflict)
	}
	if len(config.OutputUnits) == 0 {
		config.OutputUnits = config.InputUnits
	}
	config.OutputUnits, unitsConflict = checkUnits(config.OutputUnits)
	if len(unitsConflict) > 0 {
		return config, meta, fmt.Errorf("output units %v: %w", unitsConflict, ErrUnitConflict)
	}

	if len(config.SizeTable) > 0 {
		if len(config.Models) > 0 {
			return config, meta, ErrSizeTableMixed
		}
		sizes, err := utils.ReadFloatPairs(config.SizeTable)
		if err != nil {
			return config, meta, fmt.Errorf("size table: %w", err)
		}
		filename := utils.GetFilename(config.SizeTable)
		config.Models = make(map[string]ModelParameters, len(sizes))
		for line := range sizes {
			modelName := filename + "_l" + strconv.Itoa(line+1)
			config.Models[modelName] = ModelParameters{
				OuterRadius: sizes[line][0],
				CoreRadius:  sizes[line][1],
			}
			config.isDefinedMap[strings.Join([]string{"Models", modelName, "OuterRadius"}, "#")] = struct{}{}
			config.isDefinedMap[strings.Join([]string{"Models", modelName, "CoreRadius"}, "#")] = struct{}{}
		}
	} else if len(config.Models) == 0 {
		return config, meta, ErrNoModels
	}

	if config.AngleCapacity <= 0 {
		config.AngleCapacity = constants.DefaultAngleCapacity
	}
	if config.OrderCapacity <= 0 {
		config.OrderCapacity = constants.DefaultOrderCapacity
	}
	return config, meta, nil
}

type ModelParameters struct {
	OuterRadius    float64 // [length]
	CoreRadius     float64 // [length]
	CoreRatio      float64 // core / outer radius
	ShellThickness float64 // [length]

	ShellIndexReal float64
	ShellIndexImag float64 // absorption, non-negative
	CoreIndexReal  float64
	CoreIndexImag  float64

	Wavelength float64 // [length], vacuum
	Wavenumber float64 // [length^-1], vacuum

	Angles     []float64 // [angle]
	AngleCount int       // evenly spaced over 0..90 deg

	SweepOuterRadius float64 // [length]
	SweepSteps       int

	FindPeak         bool    // refine the extinction maximum of the sweep
	TargetScattering float64 // smallest sweep radius reaching this Qsca

	MakeDir bool

	_outputUnits []string
	_verbose     bool
	_threads     int
}

func (p *ModelParameters) OutputUnits() []string {
	return p._outputUnits
}

func (p *ModelParameters) SetOutputUnits(u []string) {
	p._outputUnits = u
}

func (p *ModelParameters) Verbose() bool {
	return p._verbose
}

func (p *ModelParameters) SetVerbosity(verbose bool) {
	p._verbose = verbose
}

func (p *ModelParameters) Threads() int {
	return p._threads
}

func (p *ModelParameters) SetThreads(threads int) {
	p._threads = threads
}

var defaultValues = map[string]any{ // in SI
	"CoreRadius":     0.,
	"ShellIndexImag": 0.,
	"CoreIndexReal":  1.,
	"CoreIndexImag":  0.,
	"AngleCount":     constants.DefaultAngleCount,
	"SweepSteps":     constants.DefaultSweepSteps,
	"MakeDir":        true,
}

var defaultUnits = []string{"um", "deg"}

var requiredFields = []string{"OuterRadius", "ShellIndexReal", "Wavenumber"}

var fieldsXor = map[string][]string{
	"Wavelength":     {"Wavenumber"},
	"Wavenumber":     {"Wavelength"},
	"CoreRadius":     {"CoreRatio", "ShellThickness"},
	"CoreRatio":      {"CoreRadius", "ShellThickness"},
	"ShellThickness": {"CoreRadius", "CoreRatio"},
	"Angles":         {"AngleCount"},
	"AngleCount":     {"Angles"},
}

var fieldsAnd = map[string][]string{
	"CoreRatio":        {"OuterRadius"},
	"ShellThickness":   {"OuterRadius"},
	"SweepOuterRadius": {"OuterRadius"},
	"FindPeak":         {"SweepOuterRadius"},
	"TargetScattering": {"SweepOuterRadius"},
}

var fieldsDerivable = map[string][]string{
	"Wavelength":     {"Wavenumber"},
	"CoreRatio":      {"CoreRadius"},
	"ShellThickness": {"CoreRadius"},
	"AngleCount":     {"Angles"},
}

var valueUnits = map[string][]UnitElement{
	"OuterRadius": {
		{Class: Length, Power: 1},
	},
	"CoreRadius": {
		{Class: Length, Power: 1},
	},
	"ShellThickness": {
		{Class: Length, Power: 1},
	},
	"Wavelength": {
		{Class: Length, Power: 1},
	},
	"Wavenumber": {
		{Class: Length, Power: -1},
	},
	"SweepOuterRadius": {
		{Class: Length, Power: 1},
	},
	"Angles": {
		{Class: Angle, Power: 1},
	},
}

var calculableFields = map[string]func(
	*ModelParameters,
	[]string,
) []string{
	"Wavelength": func(mp *ModelParameters, definedFields []string) []string {
		if mp.Wavelength <= 0 {
			fmt.Printf("wavelength %g is not positive\n", mp.Wavelength)
			return nil
		}
		mp.Wavenumber = 2 * math.Pi / mp.Wavelength
		return []string{"Wavenumber"}
	},
	"CoreRatio": func(mp *ModelParameters, definedFields []string) []string {
		if slices.Contains(definedFields, "OuterRadius") {
			mp.CoreRadius = mp.CoreRatio * mp.OuterRadius
			return []string{"CoreRadius"}
		}
		fmt.Printf("field 'OuterRadius' not found: required by CoreRadius calculation from CoreRatio\n")
		return nil
	},
	"ShellThickness": func(mp *ModelParameters, definedFields []string) []string {
		if slices.Contains(definedFields, "OuterRadius") {
			mp.CoreRadius = max(mp.OuterRadius-mp.ShellThickness, 0)
			return []string{"CoreRadius"}
		}
		fmt.Printf("field 'OuterRadius' not found: required by CoreRadius calculation from ShellThickness\n")
		return nil
	},
	"AngleCount": func(mp *ModelParameters, definedFields []string) []string {
		switch {
		case mp.AngleCount < 1:
			fmt.Printf("angle count %d is not positive\n", mp.AngleCount)
			return nil
		case mp.AngleCount == 1:
			mp.Angles = []float64{0}
		default:
			mp.Angles = floats.Span(make([]float64, mp.AngleCount), 0, 90)
		}
		return []string{"Angles"}
	},
}

func (modelConfig *ModelParameters) toSI(parameterNames, units []string) {
	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	for _, name := range parameterNames {
		classes, dimensional := valueUnits[name]
		field := modelConfigReflect.FieldByName(name)
		if !dimensional || !field.IsValid() {
			continue
		}
		switch {
		case field.CanFloat():
			field.SetFloat(SI(field.Float(), classes, units, true))
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Float64:
			// fresh slice: the global value may be shared between models
			converted := make([]float64, field.Len())
			for i := range converted {
				converted[i] = SI(field.Index(i).Float(), classes, units, true)
			}
			field.Set(reflect.ValueOf(converted))
		}
	}
}

func (modelConfig *ModelParameters) checkFieldProblems(path []string, meta *toml.MetaData, globalConfig *Config) (ambiguities [][]string, missingDeps []string) {
	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	for field := range fieldsXor {
		if globalConfig.isDefined(slices.Concat(path, []string{field}), meta) {
			if modelConfigReflect.FieldByName(field).Kind() == reflect.Bool && !modelConfigReflect.FieldByName(field).Bool() {
				continue
			}
			var foundAlternatives []string
			for _, alternative := range fieldsXor[field] {
				if globalConfig.isDefined(slices.Concat(path, []string{alternative}), meta) {
					foundAlternatives = append(foundAlternatives, alternative)
				}
			}

			if len(foundAlternatives) > 0 {
				slices.Sort(foundAlternatives)
				ambiguities = append(ambiguities, append([]string{field}, foundAlternatives...))
			}
		}
	}

	for field := range fieldsAnd {
		if globalConfig.isDefined(slices.Concat(path, []string{field}), meta) {
			if modelConfigReflect.FieldByName(field).Kind() == reflect.Bool && !modelConfigReflect.FieldByName(field).Bool() {
				continue
			}
			for _, requirement := range fieldsAnd[field] {
				if !globalConfig.isDefined(slices.Concat(path, []string{requirement}), meta) {
					missingDeps = append(missingDeps, requirement)
				}
			}
		}
	}
	return
}

/*
the algorithm:
0. preload into global and local
1. check problems in global
2. check problems in local
3. check combined
4. for local make list of exclusions from possible global & default
5. load missing from global
6. convert to SI
7. load missing from defaults
8. calculate calculables
9. check final missing and conflicts

field value priority:
1. local
2. local-calculable
3. global
4. global-calculable
5. default
*/

// CheckAndUnify fills modelConfig, the [Models.modelName] table, from the global
// values and the defaults, converts it to SI and degrees, and derives calculable fields.
func (modelConfig *ModelParameters) CheckAndUnify(modelName string, config *Config, meta *toml.MetaData) error {
	globalAmbiguities, globalMissingDeps := config.ModelParameters.checkFieldProblems(nil, meta, config)
	localAmbiguities, localMissingDeps := modelConfig.checkFieldProblems([]string{"Models", modelName}, meta, config)
	if len(globalAmbiguities) > 0 {
		return fmt.Errorf("global %v: %w", globalAmbiguities, ErrAmbiguous)
	}
	if len(localAmbiguities) > 0 {
		return fmt.Errorf("model %s %v: %w", modelName, localAmbiguities, ErrAmbiguous)
	}
	var missingIntersection []string
	for i := range globalMissingDeps {
		if slices.Contains(localMissingDeps, globalMissingDeps[i]) {
			missingIntersection = append(missingIntersection, globalMissingDeps[i])
		}
	}
	if len(missingIntersection) > 0 {
		return fmt.Errorf("dependent fields %v: %w", missingIntersection, ErrMissingField)
	}

	var discoveredParameters []string

	excludeFromLoadingDefaultOrOuter := make(map[string]struct{})
	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	modelConfigType := modelConfigReflect.Type()
	for i := range modelConfigReflect.NumField() {
		fieldName := modelConfigType.Field(i).Name
		if config.isDefined([]string{"Models", modelName, fieldName}, meta) {
			discoveredParameters = append(discoveredParameters, fieldName)
			excludeFromLoadingDefaultOrOuter[fieldName] = struct{}{}
			for _, x := range fieldsXor[fieldName] {
				excludeFromLoadingDefaultOrOuter[x] = struct{}{}
			}
			for _, x := range fieldsDerivable[fieldName] {
				excludeFromLoadingDefaultOrOuter[x] = struct{}{}
			}
		}
	}

	globalConfigReflect := reflect.ValueOf(&config.ModelParameters).Elem()
	globalConfigType := globalConfigReflect.Type()
	for i := range globalConfigReflect.NumField() {
		fieldName := globalConfigType.Field(i).Name
		if !globalConfigType.Field(i).IsExported() {
			continue
		}
		if _, some := excludeFromLoadingDefaultOrOuter[fieldName]; !some && meta.IsDefined(fieldName) {
			modelConfigReflect.FieldByName(fieldName).Set(globalConfigReflect.Field(i))
			discoveredParameters = append(discoveredParameters, fieldName)
			excludeFromLoadingDefaultOrOuter[fieldName] = struct{}{}
			for _, x := range fieldsXor[fieldName] {
				excludeFromLoadingDefaultOrOuter[x] = struct{}{}
			}
			for _, x := range fieldsDerivable[fieldName] {
				excludeFromLoadingDefaultOrOuter[x] = struct{}{}
			}
		}
	}

	modelConfig.toSI(discoveredParameters, config.InputUnits)

	for fieldName := range defaultValues {
		if _, x := excludeFromLoadingDefaultOrOuter[fieldName]; !x && !slices.Contains(discoveredParameters, fieldName) {
			modelConfigReflect.FieldByName(fieldName).Set(reflect.ValueOf(defaultValues[fieldName]))
			discoveredParameters = append(discoveredParameters, fieldName)
		}
	}

	var enabledParameters []string
	for _, fieldName := range discoveredParameters {
		field := modelConfigReflect.FieldByName(fieldName)
		if field.Kind() != reflect.Bool || field.Bool() {
			enabledParameters = append(enabledParameters, fieldName)
		}
	}

	calculatedAnything := true
	for calculatedAnything {
		calculatedAnything = false
		for initialFieldName := range calculableFields {
			if slices.Contains(enabledParameters, initialFieldName) {
				calculated := calculableFields[initialFieldName](modelConfig, enabledParameters)
				if len(calculated) != 0 {
					calculatedAnything = true
					enabledParameters = append(enabledParameters, calculated...)
					enabledParameters = slices.DeleteFunc(enabledParameters, func(elem string) bool {
						return elem == initialFieldName
					})
				}
			}
		}
	}

	var problems []error
	for initialFieldName := range calculableFields {
		if slices.Contains(enabledParameters, initialFieldName) {
			problems = append(problems, fmt.Errorf("unable to derive %v from %s", fieldsDerivable[initialFieldName], initialFieldName))
		}
	}
	for _, field := range requiredFields {
		if !slices.Contains(enabledParameters, field) {
			problems = append(problems, fmt.Errorf("%s: %w", field, ErrMissingField))
		}
	}
	for _, parameter := range enabledParameters {
		for _, requirement := range fieldsAnd[parameter] {
			if !slices.Contains(enabledParameters, requirement) {
				problems = append(problems, fmt.Errorf("%s required by %s: %w", requirement, parameter, ErrMissingField))
			}
		}
		for _, conflict := range fieldsXor[parameter] {
			if slices.Contains(enabledParameters, conflict) {
				problems = append(problems, fmt.Errorf("%s conflicts with %s: %w", parameter, conflict, ErrAmbiguous))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("model %s: %w", modelName, errors.Join(problems...))
	}

	units, conflict := checkUnits(config.OutputUnits)
	if len(conflict) > 0 {
		fmt.Printf("found output unit conflict: %v\n Data will be saved in input units\n", conflict)
		modelConfig._outputUnits = config.InputUnits
	} else {
		modelConfig._outputUnits = units
	}
	return nil
}
