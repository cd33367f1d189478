package model

import "github.com/wildstyl3r/miecoat/internal/mie"

// AngularValue is a derived quantity at Theta and at 180-Theta.
type AngularValue struct {
	Theta    float64 // [deg]
	Forward  float64
	Backward float64
}

// PhaseFunction is normalised so that its integral over the full sphere is 4 pi.
func PhaseFunction(r mie.Result, sizeParameter float64) []AngularValue {
	norm := 0.
	if r.Scattering > 0 {
		norm = 2 / (sizeParameter * sizeParameter * r.Scattering)
	}
	return angular(r, func(e mie.Elements) float64 {
		return norm * (e.M1 + e.M2)
	})
}

// Polarization is the degree of linear polarisation (M1-M2)/(M1+M2) of unpolarised incident light.
func Polarization(r mie.Result) []AngularValue {
	return angular(r, polarization)
}

func polarization(e mie.Elements) float64 {
	if e.M1+e.M2 == 0 {
		return 0
	}
	return (e.M1 - e.M2) / (e.M1 + e.M2)
}

func angular(r mie.Result, f func(mie.Elements) float64) []AngularValue {
	values := make([]AngularValue, len(r.Angles))
	for i, a := range r.Angles {
		values[i] = AngularValue{Theta: a.Theta, Forward: f(a.Forward), Backward: f(a.Backward)}
	}
	return values
}
