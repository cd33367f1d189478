package mie

import (
	"errors"
	"fmt"
)

var (
	ErrAngleCapacity   = errors.New("mie: angle count exceeds capacity")
	ErrOrderOverflow   = errors.New("mie: recursion order bound exceeds buffer capacity")
	ErrNotConverged    = errors.New("mie: series did not converge within the maximum order")
	ErrInvalidParticle = errors.New("mie: invalid particle")
)

type Status int

const (
	StatusOK Status = iota
	StatusAngleCapacity
	StatusOrderOverflow
	StatusNotConverged
	StatusInvalidParticle
	StatusUnknown
)

var statusNames = map[Status]string{
	StatusOK:              "ok",
	StatusAngleCapacity:   "angle capacity exceeded",
	StatusOrderOverflow:   "order overflow",
	StatusNotConverged:    "not converged",
	StatusInvalidParticle: "invalid particle",
	StatusUnknown:         "unknown",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// StatusOf maps a Solve error to its status. nil is StatusOK.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrAngleCapacity):
		return StatusAngleCapacity
	case errors.Is(err, ErrOrderOverflow):
		return StatusOrderOverflow
	case errors.Is(err, ErrNotConverged):
		return StatusNotConverged
	case errors.Is(err, ErrInvalidParticle):
		return StatusInvalidParticle
	}
	return StatusUnknown
}

// SolveError tells where a failed solve stopped: the angle count, order bound or order
// reached, and the limit it was checked against.
type SolveError struct {
	Value   int
	Limit   int
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%v (value %d, limit %d)", e.Wrapped, e.Value, e.Limit)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
