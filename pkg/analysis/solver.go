package analysis

import (
	"github.com/edp1096/toy-circuit/pkg/device"
)

type ComponentResult struct {
	ID      int
	Voltage float64 // V
	Current float64 // A
	Power   float64 // W
}

type StageResult struct {
	Resistance float64 // equivalent Ohm
	Voltage    float64 // drop across the stage
	Current    float64 // total current through the stage
}

// Solution is the closed-form state of a series chain of parallel stages.
// Stages and Components are indexed like the input.
type Solution struct {
	TotalResistance float64
	TotalCurrent    float64
	TotalPower      float64
	Stages          []StageResult
	Components      [][]ComponentResult
}

// StageResistance is the parallel equivalent of the stage: 1/R = 1/R1 + 1/R2 + ...
func StageResistance(stage []*device.Component) float64 {
	switch len(stage) {
	case 0:
		return 0
	case 1:
		return stage[0].Resistance
	}

	reciprocalSum := 0.0
	for _, comp := range stage {
		reciprocalSum += 1 / comp.Resistance
	}
	return 1 / reciprocalSum
}

// Solve computes the circuit state without touching the components.
// Resistances must be positive; nothing here guards against zero or negative values.
func Solve(stages [][]*device.Component, voltage float64) Solution {
	sol := Solution{
		Stages:     make([]StageResult, len(stages)),
		Components: make([][]ComponentResult, len(stages)),
	}

	count := 0
	for s, stage := range stages {
		sol.Components[s] = make([]ComponentResult, len(stage))
		for p, comp := range stage {
			sol.Components[s][p].ID = comp.ID
		}
		count += len(stage)
	}
	if count == 0 {
		return sol
	}

	for s, stage := range stages {
		sol.Stages[s].Resistance = StageResistance(stage)
		sol.TotalResistance += sol.Stages[s].Resistance
	}

	// Ohm's law on the whole chain
	sol.TotalCurrent = voltage / sol.TotalResistance
	sol.TotalPower = voltage * sol.TotalCurrent

	for s, stage := range stages {
		drop := sol.TotalCurrent * sol.Stages[s].Resistance
		sol.Stages[s].Voltage = drop
		sol.Stages[s].Current = sol.TotalCurrent

		// Parallel members share the drop, not the current
		for p, comp := range stage {
			current := drop / comp.Resistance
			sol.Components[s][p] = ComponentResult{
				ID:      comp.ID,
				Voltage: drop,
				Current: current,
				Power:   current * current * comp.Resistance,
			}
		}
	}

	return sol
}
