package mie

import "math"

type angle struct {
	theta float64 // degrees, folded to non-negative
	cos   float64
	sin2  float64
}

// prepareAngles folds negative angles and returns the indices of angles above 90 degrees.
// Those are still evaluated; the solver only vouches for [0, 90].
func prepareAngles(degrees []float64) (prepared []angle, outOfConvention []int) {
	prepared = make([]angle, len(degrees))
	for i, theta := range degrees {
		theta = math.Abs(theta)
		a := angle{theta: theta}
		if theta == 90 {
			a.cos, a.sin2 = 0, 1
		} else {
			a.cos = math.Cos(theta * math.Pi / 180)
			a.sin2 = 1 - a.cos*a.cos
		}
		if theta > 90 {
			outOfConvention = append(outOfConvention, i)
		}
		prepared[i] = a
	}
	return
}

// angularWindow keeps pi and tau for orders n-2, n-1 and n in slots 0, 1 and 2.
type angularWindow struct {
	pi, tau [3]float64
}

func (w *angularWindow) advance(n int, a angle) {
	if n == 1 {
		w.pi[2] = 1
		w.tau[2] = a.cos
		return
	}
	fn := float64(n)
	w.pi[2] = ((2*fn-1)*w.pi[1]*a.cos - fn*w.pi[0]) / (fn - 1)
	w.tau[2] = a.cos*(w.pi[2]-w.pi[0]) - (2*fn-1)*a.sin2*w.pi[1] + w.tau[0]
}

func (w *angularWindow) shift() {
	w.pi[0], w.pi[1] = w.pi[1], w.pi[2]
	w.tau[0], w.tau[1] = w.tau[1], w.tau[2]
}
