package model

import (
	"github.com/wildstyl3r/miecoat/internal/config"
	"github.com/wildstyl3r/miecoat/internal/mie"
)

// ParticleOf builds the solver input from unified (SI) parameters.
func ParticleOf(p *config.ModelParameters) mie.Particle {
	return mie.Particle{
		OuterRadius: p.OuterRadius,
		CoreRadius:  p.CoreRadius,
		Shell:       complex(p.ShellIndexReal, p.ShellIndexImag),
		Core:        complex(p.CoreIndexReal, p.CoreIndexImag),
		Wavenumber:  p.Wavenumber,
	}
}

// coreRatio is zero for a homogeneous particle.
func (m *Model) coreRatio() float64 {
	if m.Particle.OuterRadius == 0 {
		return 0
	}
	return m.Particle.CoreRadius / m.Particle.OuterRadius
}

// scaled keeps the materials, the wavenumber and the core ratio, and changes the outer radius.
func (m *Model) scaled(outerRadius float64) mie.Particle {
	p := m.Particle
	p.CoreRadius = m.coreRatio() * outerRadius
	p.OuterRadius = outerRadius
	return p
}
