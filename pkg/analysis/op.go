package analysis

import (
	"fmt"
)

type OperatingPoint struct{ BaseAnalysis }

func NewOP() *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

func (op *OperatingPoint) Setup(net *Network) error {
	if net == nil {
		return fmt.Errorf("network not set")
	}
	op.Network = net
	return nil
}

// Execute solves the linear network once. Every device here is linear, so
// there is no Newton iteration.
func (op *OperatingPoint) Execute() error {
	if op.Network == nil {
		return fmt.Errorf("network not set")
	}

	if err := op.Network.Solve(); err != nil {
		return fmt.Errorf("operating point: %v", err)
	}

	op.results = make(map[string][]float64)
	op.StoreResult(op.Network.Solution())
	return nil
}
