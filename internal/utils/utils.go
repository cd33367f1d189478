package utils

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
)

func Argmax[T cmp.Ordered](arr []T) (argmax int) {
	for i := range arr {
		if cmp.Compare(arr[i], arr[argmax]) == 1 {
			argmax = i
		}
	}
	return
}

type Number interface {
	constraints.Float | constraints.Integer
}

func SumSlice[T Number](arr []T) (r T) {
	for i := range arr {
		r += arr[i]
	}
	return
}

func Average[T Number](s []T) (mean float64) {
	if len(s) == 0 {
		return 0
	}
	return float64(SumSlice(s)) / float64(len(s))
}

func IntAbs[T constraints.Signed](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// Intersect returns the first element of a that is also in b.
func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}
