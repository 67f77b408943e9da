package session

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-circuit/pkg/analysis"
	"github.com/edp1096/toy-circuit/pkg/netlist"
)

// CheckReport compares the closed-form solution with a nodal solve of the
// same circuit.
type CheckReport struct {
	TotalCurrent    float64            `json:"totalCurrent"`
	NodalCurrent    float64            `json:"nodalCurrent"`
	ComponentPower  map[string]float64 `json:"componentPower"`
	NodalPower      map[string]float64 `json:"nodalPower"`
	MaxCurrentError float64            `json:"maxCurrentError"`
}

func (s *Session) netlistLocked() *netlist.NetlistData {
	return netlist.FromStages(s.circuit.Name(), s.circuit.Topology(), s.circuit.Voltage())
}

// Netlist renders the current circuit as a SPICE deck.
func (s *Session) Netlist() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.netlistLocked().Format()
}

// Sweep runs a DC sweep of the supply over [start, stop] without changing
// the circuit's own voltage.
func (s *Session) Sweep(start, stop, step float64) (map[string][]float64, error) {
	s.mu.Lock()
	data := s.netlistLocked()
	s.mu.Unlock()

	sweep, err := analysis.NewDCSweep(netlist.SourceName, start, stop, step)
	if err != nil {
		return nil, err
	}
	if err := run(sweep, data); err != nil {
		return nil, err
	}
	return sweep.GetResults(), nil
}

// Check solves the circuit nodally and reports the largest current deviation
// from the closed-form values.
func (s *Session) Check() (CheckReport, error) {
	s.mu.Lock()
	data := s.netlistLocked()
	stats := s.circuit.Stats()
	report := CheckReport{
		TotalCurrent:   stats.TotalCurrent,
		ComponentPower: make(map[string]float64),
		NodalPower:     make(map[string]float64),
	}
	currents := make(map[string]float64)
	for _, comp := range s.circuit.Components() {
		name := netlist.ComponentName(comp.ID)
		currents[name] = comp.Current
		report.ComponentPower[name] = comp.Power
	}
	s.mu.Unlock()

	op := analysis.NewOP()
	if err := run(op, data); err != nil {
		return CheckReport{}, err
	}
	results := op.GetResults()

	report.NodalCurrent = results[fmt.Sprintf("I(%s)", netlist.SourceName)][0]
	report.MaxCurrentError = math.Abs(report.NodalCurrent - report.TotalCurrent)
	for name, current := range currents {
		nodal := results[fmt.Sprintf("I(%s)", name)][0]
		report.NodalPower[name] = results[fmt.Sprintf("P(%s)", name)][0]
		report.MaxCurrentError = math.Max(report.MaxCurrentError, math.Abs(nodal-current))
	}
	return report, nil
}

func run(a analysis.Analysis, data *netlist.NetlistData) error {
	net, err := analysis.NewNetwork(data)
	if err != nil {
		return fmt.Errorf("building network: %w", err)
	}
	defer net.Destroy()

	if err := a.Setup(net); err != nil {
		return fmt.Errorf("analysis setup: %w", err)
	}
	if err := a.Execute(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}
