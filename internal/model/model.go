package model

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/miecoat/internal/config"
	"github.com/wildstyl3r/miecoat/internal/mie"
	"github.com/wildstyl3r/miecoat/internal/utils"
)

type SweepPoint struct {
	OuterRadius float64 // [m]
	Result      mie.Result
	Status      mie.Status
}

type Model struct {
	Name       string
	Parameters config.ModelParameters
	Particle   mie.Particle
	Angles     []float64 // [deg]

	Result mie.Result
	Err    error

	Sweep []SweepPoint // by increasing outer radius

	Peak   *Search // FindPeak
	Target *Search // TargetScattering
}

func NewModel(name string, parameters config.ModelParameters) (Model, error) {
	m := Model{
		Name:       name,
		Parameters: parameters,
		Particle:   ParticleOf(&parameters),
		Angles:     parameters.Angles,
	}
	if err := m.Particle.Validate(); err != nil {
		return Model{}, fmt.Errorf("model %s: %w", name, err)
	}
	if m.Parameters.SweepOuterRadius > 0 && m.Parameters.SweepSteps < 2 {
		return Model{}, fmt.Errorf("model %s: radius sweep needs at least 2 steps, got %d", name, m.Parameters.SweepSteps)
	}
	if m.Parameters.TargetScattering < 0 {
		return Model{}, fmt.Errorf("model %s: target scattering efficiency %g is negative", name, m.Parameters.TargetScattering)
	}
	if m.Parameters.Verbose() {
		fmt.Printf("%s: size parameter %f, core ratio %f, %d angles\n", name, m.Particle.SizeParameter(), m.coreRatio(), len(m.Angles))
	}
	return m, nil
}

// Run solves the configured particle and, when SweepOuterRadius is set, the radius sweep
// followed by the requested radius searches.
// The returned error is the one of the main configuration, sweep failures are kept per point.
func (m *Model) Run(solver *mie.Solver) error {
	m.Result, m.Err = solver.Solve(m.Particle, m.Angles)
	if m.Err != nil {
		fmt.Printf("%s: %v\n", m.Name, m.Err)
	} else if m.Parameters.Verbose() {
		fmt.Printf("%s: Qext %g Qsca %g Qback %g g %g after %d orders\n",
			m.Name, m.Result.Extinction, m.Result.Scattering, m.Result.Backscatter,
			m.Result.AsymmetryParameter(), m.Result.Orders)
	}
	if m.Parameters.SweepOuterRadius > 0 {
		m.runSweep(solver)
		m.runSearches(solver)
	}
	return m.Err
}

func (m *Model) runSweep(solver *mie.Solver) {
	radii := floats.Span(make([]float64, m.Parameters.SweepSteps), m.Parameters.OuterRadius, m.Parameters.SweepOuterRadius)
	m.Sweep = make([]SweepPoint, len(radii))

	computeflow := make(chan int, len(radii))
	for i := range radii {
		computeflow <- i
	}
	close(computeflow)

	var computeWg sync.WaitGroup
	for range max(m.Parameters.Threads(), 1) {
		computeWg.Add(1)
		go func() {
			defer computeWg.Done()
			for i := range computeflow {
				result, err := solver.Solve(m.scaled(radii[i]), nil)
				m.Sweep[i] = SweepPoint{OuterRadius: radii[i], Result: result, Status: mie.StatusOf(err)}
			}
		}()
	}
	computeWg.Wait()

	if m.Parameters.Verbose() {
		failed := 0
		for i := range m.Sweep {
			if m.Sweep[i].Status != mie.StatusOK {
				failed++
			}
		}
		fmt.Printf("%s: sweep of %d radii, %d failed, mean Qext %g\n", m.Name, len(m.Sweep), failed, SweepAverage(m.Sweep, Extinction))
	}
}

// Efficiency selects one efficiency of a result.
type Efficiency func(mie.Result) float64

func Extinction(r mie.Result) float64 { return r.Extinction }
func Scattering(r mie.Result) float64 { return r.Scattering }
func Absorption(r mie.Result) float64 { return r.Absorption() }

// SweepAverage averages an efficiency over the converged sweep points.
func SweepAverage(sweep []SweepPoint, efficiency Efficiency) float64 {
	var values []float64
	for i := range sweep {
		if sweep[i].Status == mie.StatusOK {
			values = append(values, efficiency(sweep[i].Result))
		}
	}
	return utils.Average(values)
}
