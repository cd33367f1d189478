package config

import (
	"math"
	"strconv"
	"strings"

	"github.com/wildstyl3r/miecoat/internal/utils"
)

var unitToSI = map[string]float64{
	"m":   1,    // [m]
	"cm":  1e-2, // [m]
	"mm":  1e-3, // [m]
	"um":  1e-6, // [m]
	"nm":  1e-9, // [m]
	"deg": 1,    // [deg], the solver works in degrees
	"rad": 180. / math.Pi,
}

type UnitClass int

const (
	Length UnitClass = iota
	Angle
)

var unitsInClass = map[UnitClass][]string{
	Length: {"nm", "um", "mm", "cm", "m"},
	Angle:  {"deg", "rad"},
}

var classesOfUnits = map[string]UnitClass{
	"m":   Length,
	"cm":  Length,
	"mm":  Length,
	"um":  Length,
	"nm":  Length,
	"deg": Angle,
	"rad": Angle,
}

type UnitElement = struct {
	Class UnitClass
	Power int
}

// checkUnits reports unknown units and second units of an already chosen class,
// and completes the list with defaultUnits.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if !known {
			conflicts = append(conflicts, unit)
			continue
		}
		if _, some := classes[class]; some {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string{}, units...)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

// SI converts v measured in units to SI (direct) or back from SI.
func SI(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for i := range classes {
		uc := classes[i]
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		factor := unitToSI[*unit]
		absPower := utils.IntAbs(uc.Power)
		if direct == (uc.Power > 0) {
			for range absPower {
				v *= factor
			}
		} else {
			for range absPower {
				v /= factor
			}
		}
	}
	return v
}

// UnitLabel renders classes in the chosen units, e.g. "um" or "um^-1". Dimensionless is "".
func UnitLabel(classes []UnitElement, units []string) string {
	var parts []string
	for _, uc := range classes {
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil || uc.Power == 0 {
			continue
		}
		if uc.Power == 1 {
			parts = append(parts, *unit)
		} else {
			parts = append(parts, *unit+"^"+strconv.Itoa(uc.Power))
		}
	}
	return strings.Join(parts, " ")
}
