package analysis

import (
	"fmt"

	"github.com/edp1096/toy-circuit/pkg/device"
	"github.com/edp1096/toy-circuit/pkg/matrix"
	"github.com/edp1096/toy-circuit/pkg/netlist"
)

// Network is the nodal form of a netlist: node and branch numbering, the
// stamped devices and the MNA matrix.
type Network struct {
	title     string
	nodeMap   map[string]int
	branchMap map[string]int
	devices   []device.Device
	numNodes  int
	matrix    *matrix.CircuitMatrix
}

func NewNetwork(data *netlist.NetlistData) (*Network, error) {
	n := &Network{
		title:     data.Title,
		nodeMap:   make(map[string]int),
		branchMap: make(map[string]int),
		devices:   make([]device.Device, 0, len(data.Elements)),
	}

	n.assignNodeBranchMaps(data.Elements)
	if len(n.nodeMap)+len(n.branchMap) == 0 {
		return nil, fmt.Errorf("netlist %q has no unknowns", data.Title)
	}

	mat, err := matrix.NewMatrix(len(n.nodeMap) + len(n.branchMap))
	if err != nil {
		return nil, err
	}
	n.matrix = mat

	if err := n.setupDevices(data.Elements); err != nil {
		n.Destroy()
		return nil, err
	}
	return n, nil
}

func isGround(node string) bool {
	return node == "0" || node == "gnd"
}

func (n *Network) assignNodeBranchMaps(elements []netlist.Element) {
	for _, elem := range elements {
		for _, nodeName := range elem.Nodes {
			if isGround(nodeName) {
				continue
			}
			if _, exists := n.nodeMap[nodeName]; !exists {
				n.nodeMap[nodeName] = len(n.nodeMap) + 1
			}
		}
	}

	branchStart := len(n.nodeMap) + 1
	for _, elem := range elements {
		if elem.Type == "V" {
			n.branchMap[elem.Name] = branchStart
			branchStart++
		}
	}

	n.numNodes = len(n.nodeMap)
}

func (n *Network) setupDevices(elements []netlist.Element) error {
	for _, elem := range elements {
		dev, err := netlist.CreateDevice(elem)
		if err != nil {
			return fmt.Errorf("creating device %s: %v", elem.Name, err)
		}

		nodeIndices := make([]int, len(elem.Nodes))
		for i, nodeName := range elem.Nodes {
			if isGround(nodeName) {
				continue
			}
			nodeIndices[i] = n.nodeMap[nodeName]
		}
		dev.SetNodes(nodeIndices)

		if v, ok := dev.(*device.VoltageSource); ok {
			v.SetBranchIndex(n.branchMap[elem.Name])
		}

		n.devices = append(n.devices, dev)
	}

	if err := n.Stamp(); err != nil {
		return fmt.Errorf("initial stamping failed: %v", err)
	}
	n.matrix.SetupElements()
	return nil
}

func (n *Network) Stamp() error {
	for _, dev := range n.devices {
		if err := dev.Stamp(n.matrix); err != nil {
			return fmt.Errorf("stamping device %s: %v", dev.GetName(), err)
		}
	}
	return nil
}

// Solve restamps every device and solves the system.
func (n *Network) Solve() error {
	n.matrix.Clear()
	if err := n.Stamp(); err != nil {
		return err
	}
	return n.matrix.Solve()
}

func (n *Network) Title() string {
	return n.title
}

func (n *Network) NumNodes() int {
	return n.numNodes
}

func (n *Network) NodeMap() map[string]int {
	return n.nodeMap
}

func (n *Network) BranchMap() map[string]int {
	return n.branchMap
}

func (n *Network) Devices() []device.Device {
	return n.devices
}

func (n *Network) Device(name string) (device.Device, bool) {
	for _, dev := range n.devices {
		if dev.GetName() == name {
			return dev, true
		}
	}
	return nil, false
}

// Solution maps V(node), I(dev) and P(dev) to the last solved values.
// Source currents are reported as delivered current.
func (n *Network) Solution() map[string]float64 {
	solution := make(map[string]float64)
	x := n.matrix.Solution()

	for name, idx := range n.nodeMap {
		solution[fmt.Sprintf("V(%s)", name)] = x[idx]
	}

	for _, dev := range n.devices {
		switch d := dev.(type) {
		case *device.VoltageSource:
			i := d.SupplyCurrent(x)
			solution[fmt.Sprintf("I(%s)", d.GetName())] = i
			solution[fmt.Sprintf("P(%s)", d.GetName())] = i * d.GetValue()
		case *device.ResistorDevice:
			i := d.Current(x)
			solution[fmt.Sprintf("I(%s)", d.GetName())] = i
			solution[fmt.Sprintf("P(%s)", d.GetName())] = i * i * d.GetValue()
		}
	}

	return solution
}

func (n *Network) Destroy() {
	if n.matrix != nil {
		n.matrix.Destroy()
	}
}
