package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func unified(t *testing.T, content, model string) (ModelParameters, error) {
	t.Helper()
	config, meta, err := LoadConfig(writeConfig(t, "particles.toml", content))
	if err != nil {
		t.Fatal(err)
	}
	parameters, ok := config.Models[model]
	if !ok {
		t.Fatalf("model %s not loaded", model)
	}
	err = parameters.CheckAndUnify(model, &config, &meta)
	return parameters, err
}

const layered = `
InputUnits = ["um"]
OutputUnits = ["nm"]
Wavelength = 0.5
ShellIndexReal = 1.5

[Models.coated]
OuterRadius = 1.0
CoreRatio = 0.5
ShellIndexReal = 1.33
CoreIndexReal = 1.5
CoreIndexImag = 0.1

[Models.bare]
OuterRadius = 0.2
Wavenumber = 10.0
Angles = [0.0, 30.0]
`

func TestCheckAndUnifyLayers(t *testing.T) {
	coated, err := unified(t, layered, "coated")
	if err != nil {
		t.Fatal(err)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"OuterRadius", coated.OuterRadius, 1e-6},
		{"CoreRadius", coated.CoreRadius, 0.5e-6},
		{"ShellIndexReal", coated.ShellIndexReal, 1.33},
		{"ShellIndexImag", coated.ShellIndexImag, 0},
		{"CoreIndexImag", coated.CoreIndexImag, 0.1},
		{"Wavenumber", coated.Wavenumber, 2 * math.Pi / 0.5e-6},
	}
	for _, c := range checks {
		if !scalar.EqualWithinAbsOrRel(c.got, c.want, 1e-20, 1e-12) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
	if len(coated.Angles) != 19 || coated.Angles[1] != 5 || coated.Angles[18] != 90 {
		t.Errorf("Expected the default 19 angles 0, 5, ..., 90, got %v", coated.Angles)
	}
	if coated.SweepSteps != 50 || !coated.MakeDir {
		t.Errorf("Expected defaults SweepSteps 50 and MakeDir, got %d %v", coated.SweepSteps, coated.MakeDir)
	}
	if got := coated.OutputUnits(); len(got) != 2 || got[0] != "nm" || got[1] != "deg" {
		t.Errorf("Expected output units [nm deg], got %v", got)
	}

	bare, err := unified(t, layered, "bare")
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbsOrRel(bare.Wavenumber, 1e7, 0, 1e-12) {
		t.Errorf("Expected the local wavenumber to win over the global wavelength, got %v", bare.Wavenumber)
	}
	if bare.ShellIndexReal != 1.5 {
		t.Errorf("Expected the global shell index, got %v", bare.ShellIndexReal)
	}
	if bare.CoreRadius != 0 || bare.CoreIndexReal != 1 {
		t.Errorf("Expected a homogeneous particle, got core %v index %v", bare.CoreRadius, bare.CoreIndexReal)
	}
	if !floats.Equal(bare.Angles, []float64{0, 30}) {
		t.Errorf("Expected angles [0 30], got %v", bare.Angles)
	}
}

func TestCheckAndUnifyDerivations(t *testing.T) {
	parameters, err := unified(t, `
InputUnits = ["nm", "rad"]
ShellIndexReal = 1.4

[Models.thin]
OuterRadius = 100.0
ShellThickness = 10.0
Wavelength = 628.3185307179586
AngleCount = 3
`, "thin")
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbsOrRel(parameters.CoreRadius, 90e-9, 0, 1e-12) {
		t.Errorf("Expected core radius 90 nm, got %v", parameters.CoreRadius)
	}
	if !scalar.EqualWithinAbsOrRel(parameters.Wavenumber, 1e7, 0, 1e-12) {
		t.Errorf("Expected wavenumber 1e7, got %v", parameters.Wavenumber)
	}
	if !floats.Equal(parameters.Angles, []float64{0, 45, 90}) {
		t.Errorf("Expected angles [0 45 90], got %v", parameters.Angles)
	}
}

func TestAnglesInRadians(t *testing.T) {
	parameters, err := unified(t, `
InputUnits = ["rad"]
ShellIndexReal = 1.4
OuterRadius = 1.0
Wavenumber = 1.0

[Models.tilted]
Angles = [0.0, 1.5707963267948966]
`, "tilted")
	if err != nil {
		t.Fatal(err)
	}
	if len(parameters.Angles) != 2 || math.Abs(parameters.Angles[1]-90) > 1e-12 {
		t.Errorf("Expected angles [0 90] degrees, got %v", parameters.Angles)
	}
	if parameters.OuterRadius != 1e-6 {
		t.Errorf("Expected the default length unit um, got %v", parameters.OuterRadius)
	}
}

func TestCheckAndUnifyProblems(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name: "ambiguous core",
			content: `
Wavenumber = 1.0
ShellIndexReal = 1.5
[Models.m]
OuterRadius = 1.0
CoreRadius = 0.5
CoreRatio = 0.5
`,
			want: ErrAmbiguous,
		},
		{
			name: "missing shell index",
			content: `
Wavenumber = 1.0
[Models.m]
OuterRadius = 1.0
`,
			want: ErrMissingField,
		},
		{
			name: "missing wavelength",
			content: `
ShellIndexReal = 1.5
[Models.m]
OuterRadius = 1.0
`,
			want: ErrMissingField,
		},
		{
			name: "sweep without outer radius",
			content: `
Wavenumber = 1.0
ShellIndexReal = 1.5
[Models.m]
SweepOuterRadius = 2.0
`,
			want: ErrMissingField,
		},
		{
			name: "peak search without sweep",
			content: `
Wavenumber = 1.0
ShellIndexReal = 1.5
FindPeak = true
[Models.m]
OuterRadius = 1.0
`,
			want: ErrMissingField,
		},
		{
			name: "target without sweep",
			content: `
Wavenumber = 1.0
ShellIndexReal = 1.5
[Models.m]
OuterRadius = 1.0
TargetScattering = 0.5
`,
			want: ErrMissingField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := unified(t, tt.content, "m")
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigSizeTable(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "sizes.txt")
	if err := os.WriteFile(table, []byte("# outer core\n1 0.5\n\n2 1.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "batch.toml")
	content := "SizeTable = \"" + filepath.ToSlash(table) + "\"\nShellIndexReal = 1.33\nCoreIndexReal = 1.5\nWavenumber = 3.0\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	config, meta, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(config.Models) != 2 {
		t.Fatalf("Expected 2 models, got %v", config.Models)
	}
	second := config.Models["sizes_l2"]
	if err := second.CheckAndUnify("sizes_l2", &config, &meta); err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbsOrRel(second.OuterRadius, 2e-6, 0, 1e-12) || !scalar.EqualWithinAbsOrRel(second.CoreRadius, 1.5e-6, 0, 1e-12) {
		t.Errorf("Expected radii 2 um and 1.5 um, got %v %v", second.OuterRadius, second.CoreRadius)
	}
	if config.AngleCapacity != 100 || config.OrderCapacity != 1000000 {
		t.Errorf("Expected default capacities, got %d %d", config.AngleCapacity, config.OrderCapacity)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"no models", "Wavenumber = 1.0\n", ErrNoModels},
		{"unit conflict", "InputUnits = [\"um\", \"nm\"]\n[Models.m]\nOuterRadius = 1.0\n", ErrUnitConflict},
		{"unknown unit", "InputUnits = [\"furlong\"]\n[Models.m]\nOuterRadius = 1.0\n", ErrUnitConflict},
		{"mixed", "SizeTable = \"sizes.txt\"\n[Models.m]\nOuterRadius = 1.0\n", ErrSizeTableMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadConfig(writeConfig(t, "bad.toml", tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUnits(t *testing.T) {
	inverseLength := []UnitElement{{Class: Length, Power: -1}}
	if got := SI(2, inverseLength, []string{"nm"}, true); !scalar.EqualWithinAbsOrRel(got, 2e9, 0, 1e-12) {
		t.Errorf("Expected 2e9, got %v", got)
	}
	if got := SI(2e9, inverseLength, []string{"nm"}, false); !scalar.EqualWithinAbsOrRel(got, 2, 0, 1e-12) {
		t.Errorf("Expected 2, got %v", got)
	}
	if got := UnitLabel(inverseLength, []string{"nm"}); got != "nm^-1" {
		t.Errorf("Expected nm^-1, got %q", got)
	}
	if got := UnitLabel(nil, []string{"nm"}); got != "" {
		t.Errorf("Expected an empty label, got %q", got)
	}
}

func TestCheckAndUnifySearches(t *testing.T) {
	content := `
Wavenumber = 1.0
ShellIndexReal = 1.5
FindPeak = true

[Models.m]
OuterRadius = 1.0
SweepOuterRadius = 2.0
TargetScattering = 0.5

[Models.off]
OuterRadius = 1.0
FindPeak = false
`
	parameters, err := unified(t, content, "m")
	if err != nil {
		t.Fatal(err)
	}
	if !parameters.FindPeak || parameters.TargetScattering != 0.5 {
		t.Errorf("Expected the global peak search and the local target, got %v %v", parameters.FindPeak, parameters.TargetScattering)
	}
	if !scalar.EqualWithinAbsOrRel(parameters.SweepOuterRadius, 2e-6, 0, 1e-12) {
		t.Errorf("Expected the sweep to end at 2 um, got %v", parameters.SweepOuterRadius)
	}

	off, err := unified(t, content, "off")
	if err != nil {
		t.Fatalf("a disabled peak search needs no sweep, got %v", err)
	}
	if off.FindPeak {
		t.Error("Expected the local FindPeak = false to win")
	}
}
