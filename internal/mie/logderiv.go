package mie

// logDerivatives returns D[n] = psi_n'(z)/psi_n(z) for n = 1..bound+1, computed downward
// from D[bound+1] = 0. Slot 0 is unused.
func logDerivatives(z complex128, bound int) []complex128 {
	d := make([]complex128, bound+2)
	for n := bound; n >= 1; n-- {
		t := complex(float64(n+1), 0) / z
		d[n] = t - 1/(t+d[n+1])
	}
	return d
}

type logDerivativeTable struct {
	shell []complex128 // z[0]

	// nil when the core is negligible
	vacuum    []complex128 // z[1]
	core      []complex128 // z[2]
	coreShell []complex128 // z[3]
}

func newLogDerivativeTable(o *optics) logDerivativeTable {
	t := logDerivativeTable{shell: logDerivatives(o.z[0], o.orderBound)}
	if !o.coreNegligible {
		t.vacuum = logDerivatives(o.z[1], o.orderBound)
		t.core = logDerivatives(o.z[2], o.orderBound)
		t.coreShell = logDerivatives(o.z[3], o.orderBound)
	}
	return t
}
