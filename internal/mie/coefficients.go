package mie

import (
	"math"

	"github.com/wildstyl3r/miecoat/internal/constants"
)

type mode int

const (
	modeCoated mode = iota
	modeHomogeneous
)

func (m mode) String() string {
	if m == modeCoated {
		return "coated"
	}
	return "homogeneous"
}

// riccatiBessel holds xi_{n-1} and xi_n of the exterior argument, xi = psi + i*chi.
type riccatiBessel struct {
	prev, cur complex128
}

func newRiccatiBessel(x float64) riccatiBessel {
	sin, cos := math.Sincos(x)
	return riccatiBessel{
		prev: complex(cos, -sin), // order -1
		cur:  complex(sin, cos),  // order 0
	}
}

func (r *riccatiBessel) advance(n int, x float64) {
	next := complex(float64(2*n-1)/x, 0)*r.cur - r.prev
	r.prev, r.cur = r.cur, next
}

func homogeneousCoefficients(n int, d complex128, o *optics, rb riccatiBessel) (a, b complex128) {
	nx := complex(float64(n)/o.x, 0)
	psi, psiPrev := complex(real(rb.cur), 0), complex(real(rb.prev), 0)
	tc1 := d/o.shell + nx
	tc2 := d*o.shell + nx
	a = (tc1*psi - psiPrev) / (tc1*rb.cur - rb.prev)
	b = (tc2*psi - psiPrev) / (tc2*rb.cur - rb.prev)
	return
}

// coatedState carries the quantities of the layered-sphere coefficients that recurse
// from one order to the next.
type coatedState struct {
	dh1, dh2, dh4  complex128 // Hankel-type logarithmic derivatives of z[0], z[1], z[3]
	p24h24, p24h21 complex128 // products of shell-medium functions at the core and outer radii
	dummy          complex128
}

// newCoatedState returns the order-1 values, written out in closed form from z[0] and z[3].
func newCoatedState(z [4]complex128) coatedState {
	x1, y1 := real(z[0]), imag(z[0])
	x4, y4 := real(z[3]), imag(z[3])
	sinX1, cosX1 := math.Sincos(x1)
	sinX4, cosX4 := math.Sincos(x4)

	ey1 := math.Exp(y1)
	e2y1 := ey1 * ey1
	ey4 := math.Exp(y4)
	ey1my4 := math.Exp(y1 - y4)
	ey1py4 := ey1 * ey4

	aa := sinX4 * (ey1py4 + ey1my4)
	bb := cosX4 * (ey1py4 - ey1my4)
	cc := sinX1 * (e2y1 + 1)
	dd := cosX1 * (e2y1 - 1)
	denominator := 1 + e2y1*(4*sinX1*sinX1-2+e2y1)

	var c coatedState
	c.dummy = complex((aa*cc+bb*dd)/denominator, (bb*cc-aa*dd)/denominator)
	c.p24h24 = 0.5 + complex(sinX4*sinX4-0.5, cosX4*sinX4)*complex(ey4*ey4, 0)
	c.p24h21 = 0.5*complex(sinX1*sinX4-cosX1*cosX4, sinX1*cosX4+cosX1*sinX4)*complex(ey1*ey4, 0) +
		0.5*complex(sinX1*sinX4+cosX1*cosX4, -sinX1*cosX4+cosX1*sinX4)*complex(ey1my4, 0)
	c.dh1 = z[0]/(1+1i*z[0]) - 1/z[0]
	c.dh2 = z[1]/(1+1i*z[1]) - 1/z[1]
	c.dh4 = z[3]/(1+1i*z[3]) - 1/z[3]
	return c
}

func (c *coatedState) coefficients(n int, o *optics, t *logDerivativeTable, rb riccatiBessel) (a, b complex128) {
	z := &o.z
	nc := complex(float64(n), 0)
	if n > 1 {
		c.dh2 = -nc/z[1] + 1/(nc/z[1]-c.dh2)
		c.dh4 = -nc/z[3] + 1/(nc/z[3]-c.dh4)
		c.dh1 = -nc/z[0] + 1/(nc/z[0]-c.dh1)
	}

	acap := t.shell[n]
	w0, w1, w2 := t.vacuum[n], t.core[n], t.coreShell[n]
	w2n := w2 + nc/z[3]
	c.p24h24 /= (c.dh4 + nc/z[3]) * w2n
	c.p24h21 /= (c.dh1 + nc/z[0]) * w2n
	c.dummy *= (acap + nc/z[0]) / w2n
	dumsq := c.dummy * c.dummy

	u0 := o.kVacuum*acap - o.kShell*w0
	u1 := o.kVacuum*acap - o.kShell*c.dh2
	u2 := o.kShell*acap - o.kVacuum*w0
	u3 := o.kShell*acap - o.kVacuum*c.dh2
	u4 := o.kCore*w2 - o.kShell*w1
	u5 := o.kShell*w2 - o.kCore*w1
	u6 := -1i * (c.dummy*c.p24h21 - c.p24h24)
	u7 := complex(real(rb.cur), 0) / rb.cur

	a = u7 * (u0*u4*u6 + o.kCore*u0 - dumsq*o.kVacuum*u4) / (u1*u4*u6 + o.kCore*u1 - dumsq*o.kVacuum*u4)
	b = u7 * (u2*u5*u6 + o.kShell*u2 - dumsq*o.kShell*u5) / (u3*u5*u6 + o.kShell*u3 - dumsq*o.kShell*u5)
	return
}

// converged reports whether a coated coefficient is within epsilon (relative) of its homogeneous value.
func converged(coated, homogeneous complex128, epsilon float64) bool {
	d := (homogeneous - coated) / homogeneous
	return math.Hypot(real(d), imag(d)) < epsilon
}

// coefficientSeries yields a_n and b_n order by order. It starts with the layered-sphere
// formula and moves to the homogeneous one, for good, at the first order from
// optics.switchOrder on where both agree within EpsilonMie. That order itself keeps
// its layered value.
type coefficientSeries struct {
	o               *optics
	table           *logDerivativeTable
	current         mode
	coated          coatedState
	homogeneousFrom int // first order of the homogeneous formula, 0 while layered
}

func newCoefficientSeries(o *optics, table *logDerivativeTable) coefficientSeries {
	s := coefficientSeries{o: o, table: table}
	if o.coreNegligible {
		s.current = modeHomogeneous
		s.homogeneousFrom = 1
	} else {
		s.coated = newCoatedState(o.z)
	}
	return s
}

// next must be called for n = 1, 2, ... in turn. It reports the mode that produced a and b.
func (s *coefficientSeries) next(n int, rb riccatiBessel) (a, b complex128, used mode) {
	used = s.current
	if used == modeHomogeneous {
		a, b = homogeneousCoefficients(n, s.table.shell[n], s.o, rb)
		return
	}
	a, b = s.coated.coefficients(n, s.o, s.table, rb)
	if n >= s.o.switchOrder {
		ha, hb := homogeneousCoefficients(n, s.table.shell[n], s.o, rb)
		if converged(a, ha, constants.EpsilonMie) && converged(b, hb, constants.EpsilonMie) {
			s.current = modeHomogeneous
			s.homogeneousFrom = n + 1
		}
	}
	return
}
