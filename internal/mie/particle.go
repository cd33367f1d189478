package mie

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/wildstyl3r/miecoat/internal/constants"
)

// Particle is a coated sphere in vacuum. The imaginary parts of Shell and Core are
// absorption indices and are given non-negative (m = n + ik on input, n - ik inside).
type Particle struct {
	OuterRadius float64
	CoreRadius  float64
	Shell       complex128
	Core        complex128
	Wavenumber  float64 // vacuum, 2*pi/lambda
}

func Homogeneous(radius float64, index complex128, wavenumber float64) Particle {
	return Particle{
		OuterRadius: radius,
		Shell:       index,
		Core:        index,
		Wavenumber:  wavenumber,
	}
}

func (p Particle) SizeParameter() float64 {
	return p.Wavenumber * p.OuterRadius
}

func (p Particle) Validate() error {
	if !(p.OuterRadius > 0) || math.IsInf(p.OuterRadius, 0) {
		return fmt.Errorf("outer radius %g: %w", p.OuterRadius, ErrInvalidParticle)
	}
	if !(p.CoreRadius >= 0) || p.CoreRadius > p.OuterRadius {
		return fmt.Errorf("core radius %g outside [0, %g]: %w", p.CoreRadius, p.OuterRadius, ErrInvalidParticle)
	}
	if !(p.Wavenumber > 0) || math.IsInf(p.Wavenumber, 0) {
		return fmt.Errorf("wavenumber %g: %w", p.Wavenumber, ErrInvalidParticle)
	}
	for _, index := range []struct {
		name  string
		value complex128
	}{{"shell", p.Shell}, {"core", p.Core}} {
		if cmplx.IsNaN(index.value) || cmplx.IsInf(index.value) || index.value == 0 {
			return fmt.Errorf("%s refractive index %v: %w", index.name, index.value, ErrInvalidParticle)
		}
		if imag(index.value) < 0 {
			return fmt.Errorf("%s absorption index %g is negative: %w", index.name, imag(index.value), ErrInvalidParticle)
		}
	}
	return nil
}

// optics holds the parameters derived from a Particle. Nothing here changes after newOptics.
type optics struct {
	x     float64    // exterior size parameter
	shell complex128 // n - ik
	core  complex128

	kShell, kCore, kVacuum complex128

	// z[0] shell index at the outer radius, z[1] vacuum at the outer radius,
	// z[2] core index at the core radius, z[3] shell index at the core radius.
	z [4]complex128

	orderBound  int // downward recursion start
	maxOrder    int // last order the forward loop may reach
	switchOrder int // first order tested for the homogeneous limit

	coreNegligible bool
}

func newOptics(p Particle, orderCapacity int) (optics, error) {
	k := complex(p.Wavenumber, 0)
	o := optics{
		x:       p.SizeParameter(),
		shell:   cmplx.Conj(p.Shell),
		core:    cmplx.Conj(p.Core),
		kVacuum: k,
	}
	o.kShell = o.shell * k
	o.kCore = o.core * k
	o.z = [4]complex128{
		o.kShell * complex(p.OuterRadius, 0),
		o.kVacuum * complex(p.OuterRadius, 0),
		o.kCore * complex(p.CoreRadius, 0),
		o.kShell * complex(p.CoreRadius, 0),
	}

	magnitude := o.x * cmplx.Abs(p.Shell)
	// the recursion bound is the truncated 1.10*|m|x; the capacity test applies to that integer
	o.orderBound = math.MaxInt
	if bound := constants.OrderBoundFactor * magnitude; bound < float64(math.MaxInt) {
		o.orderBound = int(bound)
	}
	if o.orderBound > orderCapacity-1 {
		return o, &SolveError{Value: o.orderBound, Limit: orderCapacity - 1, Wrapped: ErrOrderOverflow}
	}
	o.maxOrder = int(magnitude)
	if o.orderBound <= constants.MinOrderBound {
		o.orderBound = constants.MinOrderBound
		o.maxOrder = constants.MinPhysicalOrder
	}
	o.switchOrder = int(p.Wavenumber * p.CoreRadius)
	o.coreNegligible = p.CoreRadius/p.OuterRadius < constants.HomogeneousRatio
	return o, nil
}
