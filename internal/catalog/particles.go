package catalog

import "quarkgrid/internal/domain"

// Particle is an entry of the particle deck
type Particle struct {
	ID     string
	Name   string
	Kind   string // quark, lepton, gauge boson, scalar boson
	Charge string
	Spin   string
	// Hypothetical particles are listed but can't be opened
	Hypothetical bool
}

// Particles is the Standard Model plus the graviton
var Particles = []Particle{
	{ID: "u", Name: "Up quark", Kind: "quark", Charge: "+2/3", Spin: "1/2"},
	{ID: "d", Name: "Down quark", Kind: "quark", Charge: "-1/3", Spin: "1/2"},
	{ID: "c", Name: "Charm quark", Kind: "quark", Charge: "+2/3", Spin: "1/2"},
	{ID: "s", Name: "Strange quark", Kind: "quark", Charge: "-1/3", Spin: "1/2"},
	{ID: "t", Name: "Top quark", Kind: "quark", Charge: "+2/3", Spin: "1/2"},
	{ID: "b", Name: "Bottom quark", Kind: "quark", Charge: "-1/3", Spin: "1/2"},
	{ID: "e", Name: "Electron", Kind: "lepton", Charge: "-1", Spin: "1/2"},
	{ID: "mu", Name: "Muon", Kind: "lepton", Charge: "-1", Spin: "1/2"},
	{ID: "tau", Name: "Tau", Kind: "lepton", Charge: "-1", Spin: "1/2"},
	{ID: "nu_e", Name: "Electron neutrino", Kind: "lepton", Charge: "0", Spin: "1/2"},
	{ID: "nu_mu", Name: "Muon neutrino", Kind: "lepton", Charge: "0", Spin: "1/2"},
	{ID: "nu_tau", Name: "Tau neutrino", Kind: "lepton", Charge: "0", Spin: "1/2"},
	{ID: "g", Name: "Gluon", Kind: "gauge boson", Charge: "0", Spin: "1"},
	{ID: "gamma", Name: "Photon", Kind: "gauge boson", Charge: "0", Spin: "1"},
	{ID: "Z", Name: "Z boson", Kind: "gauge boson", Charge: "0", Spin: "1"},
	{ID: "W", Name: "W boson", Kind: "gauge boson", Charge: "±1", Spin: "1"},
	{ID: "H", Name: "Higgs boson", Kind: "scalar boson", Charge: "0", Spin: "0"},
	{ID: "G", Name: "Graviton", Kind: "gauge boson", Charge: "0", Spin: "2", Hypothetical: true},
}

// ParticlePages converts Particles into linear page inputs
func ParticlePages() []domain.PageInput {
	pages := make([]domain.PageInput, len(Particles))
	for i, p := range Particles {
		state := domain.StateActive
		if p.Hypothetical {
			state = domain.StateUnavailable
		}
		pages[i] = domain.PageInput{ID: p.ID, Title: p.Name, State: state}
	}
	return pages
}

// ParticleByID looks up a particle
func ParticleByID(id string) (Particle, bool) {
	for _, p := range Particles {
		if p.ID == id {
			return p, true
		}
	}
	return Particle{}, false
}
