package utils

import "math"

// TernarySearchMax returns the argument of the maximum of f on [left, right], within eps.
// f must be unimodal there.
func TernarySearchMax(f func(float64) float64, left, right, eps float64) float64 {
	for right-left > eps {
		a := math.FMA(left, 2., right) / 3.
		b := math.FMA(right, 2., left) / 3.
		if f(a) > f(b) {
			right = b
		} else {
			left = a
		}
	}
	return (left + right) * 0.5
}

// BinarySearch halves [falseAt, trueAt] until it is narrower than eps and returns the
// final bracket. condition must hold at trueAt and change value once in between.
func BinarySearch(condition func(float64) bool, falseAt, trueAt, eps float64) (float64, float64) {
	for math.Abs(trueAt-falseAt) > eps {
		c := (falseAt + trueAt) * 0.5
		if condition(c) {
			trueAt = c
		} else {
			falseAt = c
		}
	}
	return falseAt, trueAt
}
