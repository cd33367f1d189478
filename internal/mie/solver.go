// Package mie computes scattering by a coated sphere (core and shell of different
// refractive indices) illuminated by a plane wave.
package mie

import (
	"io"
	"log"

	"github.com/wildstyl3r/miecoat/internal/constants"
)

type Solver struct {
	angleCapacity int
	orderCapacity int
	logger        *log.Logger
}

type Option func(*Solver)

func WithAngleCapacity(n int) Option {
	return func(s *Solver) { s.angleCapacity = n }
}

// WithOrderCapacity bounds the logarithmic-derivative buffers. Particles whose recursion
// bound does not fit fail with ErrOrderOverflow.
func WithOrderCapacity(n int) Option {
	return func(s *Solver) { s.orderCapacity = n }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		angleCapacity: constants.DefaultAngleCapacity,
		orderCapacity: constants.DefaultOrderCapacity,
		logger:        log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func Solve(p Particle, angles []float64, opts ...Option) (Result, error) {
	return NewSolver(opts...).Solve(p, angles)
}

// Solve evaluates one particle at the given scattering angles (degrees, 0..90).
// On error the returned Result is zero.
func (s *Solver) Solve(p Particle, angles []float64) (Result, error) {
	if len(angles) > s.angleCapacity {
		s.logger.Printf("%d scattering angles requested, capacity is %d", len(angles), s.angleCapacity)
		return Result{}, &SolveError{Value: len(angles), Limit: s.angleCapacity, Wrapped: ErrAngleCapacity}
	}
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	o, err := newOptics(p, s.orderCapacity)
	if err != nil {
		return Result{}, err
	}
	table := newLogDerivativeTable(&o)

	prepared, outside := prepareAngles(angles)
	for _, i := range outside {
		s.logger.Printf("scattering angle %g exceeds 90 degrees, result is not validated", angles[i])
	}

	var (
		rb      = newRiccatiBessel(o.x)
		windows = make([]angularWindow, len(prepared))
		sums    = make([][2]amplitudes, len(prepared))
		series  = newCoefficientSeries(&o, &table)

		aPrev, bPrev     complex128
		qext, qsca, asym float64
		back             complex128

		order int
		done  bool
	)

	for n := 1; n <= o.maxOrder; n++ {
		order = n
		fn := float64(n)
		rb.advance(n, o.x)
		for j := range windows {
			windows[j].advance(n, prepared[j])
		}

		a, b, _ := series.next(n, rb)

		if n > 1 {
			asym += (fn-1)*(fn+1)/fn*(real(aPrev)*real(a)+imag(aPrev)*imag(a)+real(bPrev)*real(b)+imag(bPrev)*imag(b)) +
				(2*fn-1)/((fn-1)*fn)*(real(aPrev)*real(bPrev)+imag(aPrev)*imag(bPrev))
		}
		weight := 2*fn + 1
		power := real(a)*real(a) + imag(a)*imag(a) + real(b)*real(b) + imag(b)*imag(b)
		qext += weight * (real(a) + real(b))
		qsca += weight * power

		// (-1)^n; pi_n(-mu) = (-1)^(n-1) pi_n(mu), tau_n(-mu) = (-1)^n tau_n(mu)
		parity := 1.
		if n%2 == 1 {
			parity = -1.
		}
		back += complex(weight*parity, 0) * (b - a)

		f := weight / (fn * (fn + 1))
		for j := range sums {
			pi, tau := windows[j].pi[2], windows[j].tau[2]
			sums[j][0].add(f, a, b, pi, tau)
			sums[j][1].add(f, a, b, -parity*pi, parity*tau)
		}

		if n > 1 && power < constants.EpsilonMie {
			done = true
			break
		}
		for j := range windows {
			windows[j].shift()
		}
		aPrev, bPrev = a, b
	}
	if !done {
		return Result{}, &SolveError{Value: order, Limit: o.maxOrder, Wrapped: ErrNotConverged}
	}

	homogeneousFrom := series.homogeneousFrom
	if homogeneousFrom > order {
		homogeneousFrom = 0
	}
	norm := 2 / (o.x * o.x)
	r := Result{
		Extinction:      qext * norm,
		Scattering:      qsca * norm,
		Asymmetry:       2 * asym * norm,
		Backscatter:     (real(back)*real(back) + imag(back)*imag(back)) / (o.x * o.x),
		Orders:          order,
		HomogeneousFrom: homogeneousFrom,
		Angles:          make([]AngleElements, len(prepared)),
		OutOfConvention: outside,
	}
	for j := range prepared {
		r.Angles[j] = AngleElements{
			Theta:    prepared[j].theta,
			Forward:  sums[j][0].elements(),
			Backward: sums[j][1].elements(),
		}
	}
	return r, nil
}
