package mie

// Elements are the four real scattering-matrix elements at one angle.
type Elements struct {
	M2  float64 // |S2|^2, parallel
	M1  float64 // |S1|^2, perpendicular
	S21 float64 // Re(S1 S2*)
	D21 float64 // Im(S1) Re(S2) - Re(S1) Im(S2)
}

// AngleElements holds the elements at Theta and at 180-Theta.
type AngleElements struct {
	Theta    float64 // degrees, after folding
	Forward  Elements
	Backward Elements
}

type Result struct {
	Extinction  float64 // Qext
	Scattering  float64 // Qsca
	Asymmetry   float64 // g*Qsca
	Backscatter float64 // Qback
	Orders      int

	// HomogeneousFrom is the first order computed without the core, 1 for a negligible
	// core and 0 when every order used the layered formula.
	HomogeneousFrom int

	Angles          []AngleElements // input order
	OutOfConvention []int           // indices of angles above 90 degrees
}

func (r Result) Absorption() float64 {
	return r.Extinction - r.Scattering
}

// AsymmetryParameter is the mean cosine of the scattering angle.
func (r Result) AsymmetryParameter() float64 {
	if r.Scattering == 0 {
		return 0
	}
	return r.Asymmetry / r.Scattering
}

// amplitudes accumulates the complex amplitude functions S1 and S2 order by order.
type amplitudes struct {
	s1, s2 complex128
}

func (s *amplitudes) add(weight float64, a, b complex128, pi, tau float64) {
	w := complex(weight, 0)
	p, t := complex(pi, 0), complex(tau, 0)
	s.s1 += w * (a*p + b*t)
	s.s2 += w * (b*p + a*t)
}

func (s amplitudes) elements() Elements {
	r1, i1 := real(s.s1), imag(s.s1)
	r2, i2 := real(s.s2), imag(s.s2)
	return Elements{
		M2:  r2*r2 + i2*i2,
		M1:  r1*r1 + i1*i1,
		S21: r1*r2 + i1*i2,
		D21: i1*r2 - i2*r1,
	}
}
