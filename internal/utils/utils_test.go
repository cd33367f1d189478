package utils

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTernarySearchMax(t *testing.T) {
	x := TernarySearchMax(func(x float64) float64 { return -(x - 1.3) * (x - 1.3) }, 0, 4, 1e-9)
	if math.Abs(x-1.3) > 1e-8 {
		t.Errorf("Expected 1.3, got %v", x)
	}
}

func TestBinarySearch(t *testing.T) {
	lo, hi := BinarySearch(func(x float64) bool { return x*x > 2 }, 0, 2, 1e-10)
	if math.Abs(hi-math.Sqrt2) > 1e-9 || hi < lo {
		t.Errorf("Expected boundary sqrt(2), got [%v, %v]", lo, hi)
	}
}

func TestGenericHelpers(t *testing.T) {
	if Argmax([]float64{1, 5, 3, 5}) != 1 {
		t.Errorf("Expected first maximum at 1, got %d", Argmax([]float64{1, 5, 3, 5}))
	}
	if SumSlice([]int{1, 2, 3}) != 6 {
		t.Errorf("Expected sum 6, got %d", SumSlice([]int{1, 2, 3}))
	}
	if Average([]float64{1, 2, 3, 6}) != 3 {
		t.Errorf("Expected average 3, got %v", Average([]float64{1, 2, 3, 6}))
	}
	if Average([]float64{}) != 0 {
		t.Errorf("Expected average of nothing to be 0")
	}
	if IntAbs(-4) != 4 || IntAbs(int8(3)) != 3 {
		t.Errorf("IntAbs failed")
	}
	if u := Intersect([]string{"nm", "um", "m"}, []string{"deg", "m", "um"}); u == nil || *u != "um" {
		t.Errorf("Expected um, got %v", u)
	}
	if Intersect([]string{"nm"}, []string{"deg"}) != nil {
		t.Errorf("Expected no intersection")
	}
}

func TestWriteSortedNaturalOrder(t *testing.T) {
	var buf bytes.Buffer
	data := CSV{{"particle_10", "b"}, {"particle_2", "a"}, {"particle_1", "c"}}
	if err := WriteSorted(&buf, data, []string{"model", "value"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "model,value\nparticle_1,c\nparticle_2,a\nparticle_10,b\n"
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}
}

func TestReadFloatPairs(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "sizes.txt")
	content := "# outer core\n1.0 0.5\n\n2e-1   0\n"
	if err := os.WriteFile(name, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	pairs, err := ReadFloatPairs(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 2 || pairs[0] != [2]float64{1, 0.5} || pairs[1] != [2]float64{0.2, 0} {
		t.Errorf("Unexpected pairs %v", pairs)
	}

	if err := os.WriteFile(name, []byte("1 2 3\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFloatPairs(name); err == nil || !strings.Contains(err.Error(), "expected 2 numbers") {
		t.Errorf("Expected format error, got %v", err)
	}
}

func TestOpenFileLayout(t *testing.T) {
	dir := t.TempDir()
	for _, c := range []struct {
		makeDir        bool
		suffix, expect string
	}{
		{true, "m1", filepath.Join(dir, "m1", "drop.csv")},
		{false, "m1", filepath.Join(dir, "drop_m1.csv")},
		{true, "", filepath.Join(dir, "drop.csv")},
	} {
		f, err := OpenFile(c.makeDir, dir, c.suffix, "drop", "csv")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Name() != c.expect {
			t.Errorf("Expected %s, got %s", c.expect, f.Name())
		}
		f.Close()
	}
	if GetFilename("/tmp/sizes.table.txt") != "sizes.table" {
		t.Errorf("Expected sizes.table, got %s", GetFilename("/tmp/sizes.table.txt"))
	}
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestCloseFile(t *testing.T) {
	errClose := errors.New("disk full")
	errWrite := errors.New("write failed")

	var err error
	CloseFile(closer{errClose}, &err)
	if !errors.Is(err, errClose) {
		t.Errorf("Expected the close error, got %v", err)
	}

	err = errWrite
	CloseFile(closer{errClose}, &err)
	if !errors.Is(err, errWrite) {
		t.Errorf("Expected the earlier error to be kept, got %v", err)
	}

	err = nil
	CloseFile(closer{}, &err)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
