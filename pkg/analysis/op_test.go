package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-circuit/pkg/device"
	"github.com/edp1096/toy-circuit/pkg/netlist"
)

const dividerDeck = `* RR voltage divider circuit
V1 1 0 DC 10
R1 1 2 1k
R2 2 0 1k
.op
.end
`

func newNetwork(t *testing.T, data *netlist.NetlistData) *Network {
	t.Helper()
	net, err := NewNetwork(data)
	require.NoError(t, err)
	t.Cleanup(net.Destroy)
	return net
}

func TestOperatingPointDivider(t *testing.T) {
	data, err := netlist.Parse(dividerDeck)
	require.NoError(t, err)
	net := newNetwork(t, data)

	assert.Equal(t, 2, net.NumNodes())
	assert.Equal(t, map[string]int{"V1": 3}, net.BranchMap())

	op := NewOP()
	require.NoError(t, op.Setup(net))
	require.NoError(t, op.Execute())

	results := op.GetResults()
	assert.InDelta(t, 10, results["V(1)"][0], tol)
	assert.InDelta(t, 5, results["V(2)"][0], tol)
	assert.InDelta(t, 5e-3, results["I(V1)"][0], tol)
	assert.InDelta(t, 5e-3, results["I(R1)"][0], tol)
	assert.InDelta(t, 25e-3, results["P(R2)"][0], tol)
	assert.InDelta(t, 50e-3, results["P(V1)"][0], tol)
}

func TestOperatingPointMatchesClosedForm(t *testing.T) {
	stages := [][]*device.Component{
		resistors(1, 10),
		{device.NewComponent(2, device.BulbLow, 10), device.NewComponent(3, device.BulbMid, 15), device.NewComponent(4, device.BulbHigh, 20)},
		resistors(5, 4.7, 33),
	}
	sol := Solve(stages, 12)

	net := newNetwork(t, netlist.FromStages("mixed", stages, 12))
	op := NewOP()
	require.NoError(t, op.Setup(net))
	require.NoError(t, op.Execute())
	results := op.GetResults()

	assert.InDelta(t, sol.TotalCurrent, results["I(V1)"][0], tol)
	assert.InDelta(t, sol.TotalPower, results["P(V1)"][0], tol)
	for s, stage := range stages {
		for p, comp := range stage {
			name := netlist.ComponentName(comp.ID)
			assert.InDelta(t, sol.Components[s][p].Current, results["I("+name+")"][0], tol, name)
			assert.InDelta(t, sol.Components[s][p].Power, results["P("+name+")"][0], tol, name)
		}
	}
}

func TestOperatingPointWithoutNetwork(t *testing.T) {
	op := NewOP()
	assert.Error(t, op.Setup(nil))
	assert.Error(t, op.Execute())
}

func TestDCSweep(t *testing.T) {
	net := newNetwork(t, netlist.FromStages("series", [][]*device.Component{resistors(1, 10), resistors(2, 10)}, 12))

	sweep, err := NewDCSweep(netlist.SourceName, 0, 12, 2)
	require.NoError(t, err)
	require.NoError(t, sweep.Setup(net))
	require.NoError(t, sweep.Execute())

	results := sweep.GetResults()
	require.Len(t, results["SWEEP1"], 7)
	assert.Equal(t, []float64{0, 2, 4, 6, 8, 10, 12}, sweep.Points())

	for i, v := range results["SWEEP1"] {
		assert.InDelta(t, v/20, results["I(V1)"][i], tol)
		assert.InDelta(t, v/2, results["V(2)"][i], tol)
	}

	// The swept source is restored afterwards
	dev, ok := net.Device(netlist.SourceName)
	require.True(t, ok)
	assert.Equal(t, 12.0, dev.GetValue())
}

func TestDCSweepFractionalStep(t *testing.T) {
	sweep, err := NewDCSweep("V1", 0, 1, 0.1)
	require.NoError(t, err)

	points := sweep.Points()
	require.Len(t, points, 11)
	assert.InDelta(t, 1.0, points[10], tol)
}

func TestDCSweepErrors(t *testing.T) {
	_, err := NewDCSweep("V1", 0, 10, 0)
	assert.Error(t, err)

	_, err = NewDCSweep("V1", 10, 0, 1)
	assert.Error(t, err)

	for _, p := range [][3]float64{
		{0, 12, math.NaN()},
		{math.NaN(), 12, 1},
		{0, math.Inf(1), 1},
		{math.Inf(-1), 0, 1},
		{0, 12, math.Inf(1)},
		{0, 1e6, 1e-6},
		{0, 10000, 1},
	} {
		_, err = NewDCSweep("V1", p[0], p[1], p[2])
		assert.Error(t, err, "start=%g stop=%g step=%g", p[0], p[1], p[2])
	}

	sweep, err := NewDCSweep("V1", 0, 9999, 1)
	require.NoError(t, err)
	assert.Len(t, sweep.Points(), 10000)

	net := newNetwork(t, netlist.FromStages("one", [][]*device.Component{resistors(1, 10)}, 12))

	sweep, err = NewDCSweep("V9", 0, 1, 1)
	require.NoError(t, err)
	assert.Error(t, sweep.Setup(net))

	sweep, err = NewDCSweep("R1", 0, 1, 1)
	require.NoError(t, err)
	assert.Error(t, sweep.Setup(net), "a resistor cannot be swept")
}

func TestResultKeys(t *testing.T) {
	keys := ResultKeys(map[string][]float64{"V(2)": nil, "I(V1)": nil, "V(1)": nil})
	assert.Equal(t, []string{"I(V1)", "V(1)", "V(2)"}, keys)
}
