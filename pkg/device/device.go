package device

import (
	"github.com/edp1096/toy-circuit/pkg/matrix"
)

// Device is a stampable element of a nodal network.
type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	Stamp(matrix matrix.DeviceMatrix) error
	GetValue() float64
	SetValue(value float64)
	SetNodes(nodes []int)
}

type BaseDevice struct {
	Name      string
	Nodes     []int
	Value     float64
	NodeNames []string
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetNodeNames() []string {
	return d.NodeNames
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) SetValue(value float64) {
	d.Value = value
}

func (d *BaseDevice) SetNodes(nodes []int) {
	d.Nodes = nodes
}
