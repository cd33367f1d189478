package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/wildstyl3r/miecoat/internal/constants"
	"github.com/wildstyl3r/miecoat/internal/mie"
	"github.com/wildstyl3r/miecoat/internal/utils"
)

var (
	ErrTargetUnreachable = errors.New("model: target efficiency not reached in the radius bracket")
	ErrNoBracket         = errors.New("model: no converged sweep point to bracket the search")
)

// Search is a radius found after the sweep, with the particle solved there.
type Search struct {
	OuterRadius float64 // [m]
	Result      mie.Result
	Err         error
}

// runSearches refines the sweep by the searches the parameters ask for.
func (m *Model) runSearches(solver *mie.Solver) {
	eps := constants.SearchTolerance * m.Parameters.SweepOuterRadius
	if m.Parameters.FindPeak {
		m.Peak = &Search{Err: ErrNoBracket}
		if lo, hi, ok := PeakBracket(m.Sweep, Extinction); ok {
			m.Peak.OuterRadius, m.Peak.Result, m.Peak.Err = FindExtinctionPeak(m, solver, lo, hi, eps)
		}
		m.report("extinction peak", m.Peak)
	}
	if target := m.Parameters.TargetScattering; target > 0 {
		m.Target = &Search{}
		if lo, hi, ok := ScatteringBracket(m.Sweep, target); !ok {
			m.Target.Err = fmt.Errorf("scattering efficiency %g: %w", target, ErrTargetUnreachable)
		} else {
			m.Target.OuterRadius, m.Target.Err = RadiusForScattering(m, solver, target, lo, hi, eps)
			if m.Target.Err == nil {
				m.Target.Result, m.Target.Err = solver.Solve(m.scaled(m.Target.OuterRadius), m.Angles)
			}
		}
		m.report("target scattering", m.Target)
	}
}

func (m *Model) report(name string, s *Search) {
	if s.Err != nil {
		fmt.Printf("%s: %s: %v\n", m.Name, name, s.Err)
	} else if m.Parameters.Verbose() {
		fmt.Printf("%s: %s at outer radius %g, Qext %g Qsca %g\n", m.Name, name, s.OuterRadius, s.Result.Extinction, s.Result.Scattering)
	}
}

func (m *Model) efficiencyAt(solver *mie.Solver, outerRadius float64, efficiency Efficiency) (float64, error) {
	result, err := solver.Solve(m.scaled(outerRadius), nil)
	if err != nil {
		return 0, fmt.Errorf("outer radius %g: %w", outerRadius, err)
	}
	return efficiency(result), nil
}

// FindExtinctionPeak searches [lo, hi] for the outer radius of maximum extinction.
// The bracket must hold a single peak. Failed evaluations count as -Inf and the first
// failure is returned.
func FindExtinctionPeak(m *Model, solver *mie.Solver, lo, hi, eps float64) (radius float64, result mie.Result, err error) {
	var firstErr error
	radius = utils.TernarySearchMax(func(r float64) float64 {
		qext, err := m.efficiencyAt(solver, r, Extinction)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return math.Inf(-1)
		}
		return qext
	}, lo, hi, eps)
	if firstErr != nil {
		return radius, mie.Result{}, firstErr
	}
	result, err = solver.Solve(m.scaled(radius), m.Angles)
	return radius, result, err
}

// PeakBracket narrows a radius search to the neighbours of the highest converged sweep point.
func PeakBracket(sweep []SweepPoint, efficiency Efficiency) (lo, hi float64, ok bool) {
	values := make([]float64, len(sweep))
	for i := range sweep {
		values[i] = math.Inf(-1)
		if sweep[i].Status == mie.StatusOK {
			values[i] = efficiency(sweep[i].Result)
		}
	}
	if len(values) == 0 {
		return 0, 0, false
	}
	peak := utils.Argmax(values)
	if math.IsInf(values[peak], -1) {
		return 0, 0, false
	}
	lo = sweep[max(peak-1, 0)].OuterRadius
	hi = sweep[min(peak+1, len(sweep)-1)].OuterRadius
	return lo, hi, true
}

// ScatteringBracket returns the first converged sweep point whose scattering efficiency
// reaches target together with the point before it.
func ScatteringBracket(sweep []SweepPoint, target float64) (lo, hi float64, ok bool) {
	for i := range sweep {
		if sweep[i].Status == mie.StatusOK && sweep[i].Result.Scattering >= target {
			return sweep[max(i-1, 0)].OuterRadius, sweep[i].OuterRadius, true
		}
	}
	return 0, 0, false
}

// RadiusForScattering returns the smallest outer radius in [lo, hi], within eps, whose
// scattering efficiency reaches target. Scattering must grow monotonically over the bracket.
func RadiusForScattering(m *Model, solver *mie.Solver, target, lo, hi, eps float64) (float64, error) {
	qsca, err := m.efficiencyAt(solver, hi, Scattering)
	if err != nil {
		return 0, err
	}
	if qsca < target {
		return 0, fmt.Errorf("scattering efficiency %g at radius %g below %g: %w", qsca, hi, target, ErrTargetUnreachable)
	}

	var firstErr error
	_, radius := utils.BinarySearch(func(r float64) bool {
		qsca, err := m.efficiencyAt(solver, r, Scattering)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return false
		}
		return qsca >= target
	}, lo, hi, eps)
	return radius, firstErr
}
