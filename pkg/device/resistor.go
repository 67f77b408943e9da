package device

import (
	"fmt"

	"github.com/edp1096/toy-circuit/pkg/matrix"
)

type ResistorDevice struct {
	BaseDevice
}

func NewResistor(name string, nodeNames []string, value float64) *ResistorDevice {
	return &ResistorDevice{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     value,
		},
	}
}

func (r *ResistorDevice) GetType() string { return "R" }

func (r *ResistorDevice) Stamp(matrix matrix.DeviceMatrix) error {
	if len(r.Nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}
	if r.Value <= 0 {
		return fmt.Errorf("resistor %s: non-positive resistance %g", r.Name, r.Value)
	}

	n1, n2 := r.Nodes[0], r.Nodes[1]
	g := 1.0 / r.Value // Conductance. G = 1/R

	if n1 != 0 {
		matrix.AddElement(n1, n1, g)
		if n2 != 0 {
			matrix.AddElement(n1, n2, -g)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			matrix.AddElement(n2, n1, -g)
		}
		matrix.AddElement(n2, n2, g)
	}

	return nil
}

// Current returns the current from the first node to the second for a solution vector.
func (r *ResistorDevice) Current(solution []float64) float64 {
	v1, v2 := nodeVoltage(solution, r.Nodes[0]), nodeVoltage(solution, r.Nodes[1])
	return (v1 - v2) / r.Value
}

func nodeVoltage(solution []float64, node int) float64 {
	if node <= 0 || node >= len(solution) {
		return 0
	}
	return solution[node]
}
