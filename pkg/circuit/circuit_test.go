package circuit

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-circuit/pkg/device"
)

const tol = 1e-9

// ids flattens the topology into component ids per stage.
func ids(c *Circuit) [][]int {
	var out [][]int
	for _, stage := range c.Topology() {
		row := make([]int, len(stage))
		for i, comp := range stage {
			row[i] = comp.ID
		}
		out = append(out, row)
	}
	return out
}

// chain builds the default circuit plus n-1 more 10 Ohm resistors in series.
func chain(t *testing.T, n int) *Circuit {
	t.Helper()
	c := New("test")
	for i := 1; i < n; i++ {
		c.AddComponent(device.Resistor, 10, Series, nil)
	}
	require.NoError(t, c.CheckIntegrity())
	return c
}

func TestNewCircuitDefaults(t *testing.T) {
	c := New("test")

	assert.Equal(t, [][]int{{1}}, ids(c))
	stats := c.Stats()
	assert.Equal(t, 12.0, stats.Voltage)
	assert.InDelta(t, 10, stats.TotalResistance, tol)
	assert.InDelta(t, 1.2, stats.TotalCurrent, tol)
	assert.InDelta(t, 14.4, stats.TotalPower, tol)

	comp, ok := c.Component(1)
	require.True(t, ok)
	assert.Equal(t, device.Resistor, comp.Kind)
	assert.InDelta(t, 1.2, comp.Current, tol)
	assert.InDelta(t, 14.4, comp.Power, tol)
	assert.Equal(t, device.Position{}, comp.Position)
}

func TestTwoResistorsInParallel(t *testing.T) {
	c := New("test")
	c.AddComponent(device.Resistor, 10, Parallel, nil)

	assert.Equal(t, [][]int{{1, 2}}, ids(c))
	assert.InDelta(t, 5, c.Stats().TotalResistance, tol)
	assert.InDelta(t, 2.4, c.Stats().TotalCurrent, tol)

	sum := 0.0
	for _, comp := range c.Components() {
		assert.InDelta(t, 12, comp.Voltage, tol)
		assert.InDelta(t, 1.2, comp.Current, tol)
		assert.InDelta(t, 14.4, comp.Power, tol)
		sum += comp.Power
	}
	assert.InDelta(t, 28.8, sum, tol)
	assert.InDelta(t, c.Stats().TotalPower, sum, tol)
}

func TestTwoResistorsInSeries(t *testing.T) {
	c := chain(t, 2)

	assert.Equal(t, [][]int{{1}, {2}}, ids(c))
	assert.InDelta(t, 20, c.Stats().TotalResistance, tol)
	assert.InDelta(t, 0.6, c.Stats().TotalCurrent, tol)

	sum := 0.0
	for _, comp := range c.Components() {
		assert.InDelta(t, 6, comp.Voltage, tol)
		assert.InDelta(t, 0.6, comp.Current, tol)
		assert.InDelta(t, 3.6, comp.Power, tol)
		sum += comp.Power
	}
	assert.InDelta(t, 7.2, sum, tol)
}

func TestRemoveOnlyComponent(t *testing.T) {
	c := New("test")

	assert.True(t, c.RemoveComponent(1))
	assert.Empty(t, c.Topology())
	assert.Zero(t, c.Len())
	assert.Equal(t, Stats{Voltage: 12}, c.Stats())
	require.NoError(t, c.CheckIntegrity())

	assert.False(t, c.RemoveComponent(1))
}

func TestRemoveComponent(t *testing.T) {
	c := New("test")
	c.AddComponent(device.Resistor, 10, Parallel, nil)
	c.AddComponent(device.BulbMid, 15, Series, nil)

	assert.False(t, c.RemoveComponent(42))
	assert.Equal(t, [][]int{{1, 2}, {3}}, ids(c))

	// Emptied stage is spliced out
	assert.True(t, c.RemoveComponent(3))
	assert.Equal(t, [][]int{{1, 2}}, ids(c))
	assert.InDelta(t, 5, c.Stats().TotalResistance, tol)

	assert.True(t, c.RemoveComponent(1))
	assert.Equal(t, [][]int{{2}}, ids(c))
	comp, _ := c.Component(2)
	assert.Equal(t, device.Position{Series: 0, Parallel: 0}, comp.Position)
	assert.InDelta(t, 1.2, comp.Current, tol)
	require.NoError(t, c.CheckIntegrity())
}

func TestIDsAreNotReused(t *testing.T) {
	c := New("test")
	second := c.AddComponent(device.Resistor, 10, Series, nil)
	require.True(t, c.RemoveComponent(second.ID))

	third := c.AddComponent(device.Resistor, 10, Series, nil)
	assert.Equal(t, 3, third.ID)
}

func TestAddSeriesPlacement(t *testing.T) {
	tests := []struct {
		name   string
		target *Target
		want   [][]int
	}{
		{"append without target", nil, [][]int{{1}, {2}, {3}, {4}}},
		{"after first stage", AfterStage(0), [][]int{{1}, {4}, {2}, {3}}},
		{"after last stage", AfterStage(2), [][]int{{1}, {2}, {3}, {4}}},
		{"beyond the end", AfterStage(10), [][]int{{1}, {2}, {3}, {4}}},
		{"before the first stage", AfterStage(-1), [][]int{{4}, {1}, {2}, {3}}},
		{"target parallel index ignored", After(device.Position{Series: 1, Parallel: 5}), [][]int{{1}, {2}, {4}, {3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := chain(t, 3)
			comp := c.AddComponent(device.BulbLow, 10, Series, tt.target)

			assert.Equal(t, 4, comp.ID)
			assert.Equal(t, tt.want, ids(c))
			require.NoError(t, c.CheckIntegrity())
		})
	}
}

func TestAddParallelPlacement(t *testing.T) {
	tests := []struct {
		name   string
		target *Target
		want   [][]int
	}{
		{"last stage without target", nil, [][]int{{1, 2}, {3, 4}}},
		{"append to stage", AfterStage(0), [][]int{{1, 2, 4}, {3}}},
		{"after first member", After(device.Position{Series: 0, Parallel: 0}), [][]int{{1, 4, 2}, {3}}},
		{"stage index clamped high", AfterStage(9), [][]int{{1, 2}, {3, 4}}},
		{"stage index clamped low", AfterStage(-3), [][]int{{1, 2, 4}, {3}}},
		{"slot clamped high", After(device.Position{Series: 1, Parallel: 7}), [][]int{{1, 2}, {3, 4}}},
		{"slot clamped low", After(device.Position{Series: 0, Parallel: -5}), [][]int{{4, 1, 2}, {3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("test")
			c.AddComponent(device.Resistor, 10, Parallel, nil)
			c.AddComponent(device.Resistor, 10, Series, nil)
			require.Equal(t, [][]int{{1, 2}, {3}}, ids(c))

			c.AddComponent(device.BulbHigh, 20, Parallel, tt.target)
			assert.Equal(t, tt.want, ids(c))
			require.NoError(t, c.CheckIntegrity())
		})
	}
}

func TestAddParallelToEmptyTopology(t *testing.T) {
	c := New("test")
	require.True(t, c.RemoveComponent(1))

	comp := c.AddComponent(device.BulbMid, 15, Parallel, AfterStage(3))
	assert.Equal(t, [][]int{{comp.ID}}, ids(c))
	assert.InDelta(t, 0.8, comp.Current, tol)
}

func TestAddComponentToSelection(t *testing.T) {
	t.Run("empty selection appends", func(t *testing.T) {
		c := chain(t, 2)
		c.AddComponentToSelection(device.Resistor, 10, Series, nil)
		assert.Equal(t, [][]int{{1}, {2}, {3}}, ids(c))
	})

	t.Run("series after anchor stage", func(t *testing.T) {
		c := chain(t, 3)
		c.AddComponentToSelection(device.Resistor, 10, Series, []int{2})
		assert.Equal(t, [][]int{{1}, {2}, {4}, {3}}, ids(c))
	})

	t.Run("parallel right after anchor", func(t *testing.T) {
		c := New("test")
		c.AddComponent(device.Resistor, 10, Parallel, nil)
		c.AddComponentToSelection(device.BulbLow, 10, Parallel, []int{1})
		assert.Equal(t, [][]int{{1, 3, 2}}, ids(c))
	})

	t.Run("first selected id anchors", func(t *testing.T) {
		c := chain(t, 3)
		c.AddComponentToSelection(device.Resistor, 10, Parallel, []int{3, 1})
		assert.Equal(t, [][]int{{1}, {2}, {3, 4}}, ids(c))
	})

	t.Run("stale anchor appends a trailing stage", func(t *testing.T) {
		c := New("test")
		c.AddComponent(device.Resistor, 10, Parallel, nil)
		comp := c.AddComponentToSelection(device.Resistor, 10, Parallel, []int{99})
		assert.Equal(t, [][]int{{1, 2}, {comp.ID}}, ids(c))
		require.NoError(t, c.CheckIntegrity())
	})
}

func TestMoveComponent(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		extra    int
		id       int
		series   int
		parallel int
		want     [][]int
	}{
		{name: "lone component moves past a later stage", mode: Series, extra: 2, id: 1, series: 2, want: [][]int{{2}, {1, 3}}},
		{name: "lone component moves to an earlier stage", mode: Series, extra: 2, id: 3, series: 0, want: [][]int{{3, 1}, {2}}},
		{name: "reorder within a stage", mode: Parallel, extra: 2, id: 1, series: 0, parallel: 1, want: [][]int{{2, 1, 3}}},
		{name: "beyond the end grows a new trailing stage", mode: Series, extra: 1, id: 1, series: 5, want: [][]int{{2}, {1}}},
		{name: "negative indices clamp to the front", mode: Series, extra: 1, id: 2, series: -4, parallel: -1, want: [][]int{{2, 1}}},
		{name: "only component stays in place", id: 1, series: 0, want: [][]int{{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("test")
			for i := 0; i < tt.extra; i++ {
				c.AddComponent(device.Resistor, 10, tt.mode, nil)
			}

			assert.True(t, c.MoveComponent(tt.id, tt.series, tt.parallel))
			assert.Equal(t, tt.want, ids(c))
			require.NoError(t, c.CheckIntegrity())

			sum := 0.0
			for _, comp := range c.Components() {
				sum += comp.Power
			}
			assert.InDelta(t, c.Stats().TotalPower, sum, tol)
		})
	}
}

func TestMoveOutOfParallelGroup(t *testing.T) {
	c := New("test")
	c.AddComponent(device.Resistor, 10, Parallel, nil)
	c.AddComponent(device.Resistor, 10, Series, nil)
	require.Equal(t, [][]int{{1, 2}, {3}}, ids(c))

	// The source stage survives, so the target index is not shifted
	assert.True(t, c.MoveComponent(1, 1, 5))
	assert.Equal(t, [][]int{{2}, {3, 1}}, ids(c))
	assert.InDelta(t, 15, c.Stats().TotalResistance, tol)
	require.NoError(t, c.CheckIntegrity())
}

func TestMoveToHugeIndex(t *testing.T) {
	c := chain(t, 2)

	assert.True(t, c.MoveComponent(1, math.MaxInt, math.MaxInt))
	assert.Equal(t, [][]int{{2}, {1}}, ids(c))
	require.NoError(t, c.CheckIntegrity())

	assert.True(t, c.MoveComponent(1, 1_000_000_000, 0))
	assert.Equal(t, [][]int{{2}, {1}}, ids(c))
	// No placeholder stages are allocated on the way
	assert.LessOrEqual(t, cap(c.topology.stages), 8)
}

func TestAddWithExtremeTargets(t *testing.T) {
	c := chain(t, 2)

	far := c.AddComponent(device.Resistor, 10, Series, AfterStage(math.MaxInt))
	assert.Equal(t, [][]int{{1}, {2}, {far.ID}}, ids(c))

	front := c.AddComponent(device.Resistor, 10, Series, AfterStage(math.MinInt))
	assert.Equal(t, [][]int{{front.ID}, {1}, {2}, {far.ID}}, ids(c))

	last := c.AddComponent(device.Resistor, 10, Parallel, After(device.Position{Series: 1, Parallel: math.MaxInt}))
	assert.Equal(t, [][]int{{front.ID}, {1, last.ID}, {2}, {far.ID}}, ids(c))

	first := c.AddComponent(device.Resistor, 10, Parallel, After(device.Position{Series: 1, Parallel: math.MinInt}))
	assert.Equal(t, [][]int{{front.ID}, {first.ID, 1, last.ID}, {2}, {far.ID}}, ids(c))
	require.NoError(t, c.CheckIntegrity())
}

func TestMoveUnknownComponent(t *testing.T) {
	c := New("test")
	assert.False(t, c.MoveComponent(7, 0, 0))
	assert.Equal(t, [][]int{{1}}, ids(c))
}

func TestSetVoltage(t *testing.T) {
	c := chain(t, 2)
	c.SetVoltage(6)

	assert.Equal(t, 6.0, c.Voltage())
	assert.InDelta(t, 0.3, c.Stats().TotalCurrent, tol)
	assert.InDelta(t, 1.8, c.Stats().TotalPower, tol)

	c.SetVoltage(0)
	assert.Zero(t, c.Stats().TotalCurrent)
	assert.InDelta(t, 20, c.Stats().TotalResistance, tol)
}

func TestReset(t *testing.T) {
	c := chain(t, 4)
	c.AddComponent(device.BulbHigh, 20, Parallel, AfterStage(1))
	c.SetVoltage(3)

	c.Reset()

	assert.Equal(t, [][]int{{1}}, ids(c))
	assert.Equal(t, 12.0, c.Voltage())
	assert.InDelta(t, 1.2, c.Stats().TotalCurrent, tol)
	assert.InDelta(t, 14.4, c.Stats().TotalPower, tol)
	require.NoError(t, c.CheckIntegrity())

	// Reset is idempotent
	before := c.Stats()
	c.Reset()
	assert.Equal(t, before, c.Stats())
	assert.Equal(t, [][]int{{1}}, ids(c))
}

func TestCustomDefaults(t *testing.T) {
	c := NewWithDefaults("custom", Defaults{Voltage: 9, Resistance: 30})

	assert.Equal(t, "custom", c.Name())
	assert.InDelta(t, 0.3, c.Stats().TotalCurrent, tol)
	comp, _ := c.Component(1)
	assert.Equal(t, 30.0, comp.Resistance)
}

func TestComponentStats(t *testing.T) {
	c := New("test")
	bulb := c.AddComponent(device.BulbMid, 15, Parallel, nil)

	stats, ok := c.ComponentStats(bulb.ID)
	require.True(t, ok)
	assert.Equal(t, "Light Bulb (15Ω)", stats.Name)
	assert.Equal(t, device.BulbMid, stats.Kind)
	assert.Equal(t, device.Position{Series: 0, Parallel: 1}, stats.Position)
	assert.InDelta(t, 12, stats.Voltage, tol)
	assert.InDelta(t, 0.8, stats.Current, tol)
	assert.InDelta(t, 9.6, stats.Power, tol)

	_, ok = c.ComponentStats(99)
	assert.False(t, ok)
}

func TestMaxPower(t *testing.T) {
	c := New("test")
	assert.Zero(t, c.MaxLightSourcePower())
	assert.InDelta(t, 14.4, c.MaxPower(nil), tol)

	c.AddComponent(device.BulbLow, 10, Parallel, nil)
	c.AddComponent(device.BulbHigh, 20, Parallel, nil)

	// 12 V across each: 14.4 W and 7.2 W
	assert.InDelta(t, 14.4, c.MaxLightSourcePower(), tol)
	onlyHigh := func(comp *device.Component) bool { return comp.Kind == device.BulbHigh }
	assert.InDelta(t, 7.2, c.MaxPower(onlyHigh), tol)
}

func TestTopologyIsACopy(t *testing.T) {
	c := chain(t, 2)
	top := c.Topology()
	top[0] = nil

	assert.Equal(t, [][]int{{1}, {2}}, ids(c))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("parallel")
	require.NoError(t, err)
	assert.Equal(t, Parallel, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Series, m)

	_, err = ParseMode("diagonal")
	assert.Error(t, err)
	assert.Equal(t, "series", Series.String())
}

// Random edit sequences keep positions truthful, stages non-empty and the
// Ohm's law totals closed.
func TestRandomEditsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := New("fuzz")
	kinds := device.Kinds()

	for step := 0; step < 2000; step++ {
		all := c.Components()
		pickID := func() int {
			if len(all) == 0 || rng.Intn(10) == 0 {
				return 1000 + rng.Intn(10)
			}
			return all[rng.Intn(len(all))].ID
		}
		kind := kinds[rng.Intn(len(kinds))]
		r := 1 + rng.Float64()*999
		mode := Mode(rng.Intn(2))
		n := c.Topology()

		switch rng.Intn(7) {
		case 0:
			c.AddComponent(kind, r, mode, nil)
		case 1:
			c.AddComponent(kind, r, mode, After(device.Position{Series: rng.Intn(len(n)+2) - 1, Parallel: rng.Intn(4) - 1}))
		case 2:
			c.AddComponentToSelection(kind, r, mode, []int{pickID(), pickID()})
		case 3:
			c.RemoveComponent(pickID())
		case 4, 5:
			c.MoveComponent(pickID(), rng.Intn(len(n)+3)-1, rng.Intn(4)-1)
		case 6:
			c.SetVoltage(rng.Float64() * 24)
		}
		if c.Len() > 40 {
			c.Reset()
		}

		require.NoError(t, c.CheckIntegrity(), "step %d", step)

		stats := c.Stats()
		if c.Len() == 0 {
			assert.Zero(t, stats.TotalResistance)
			assert.Zero(t, stats.TotalCurrent)
			continue
		}
		assert.InDelta(t, stats.Voltage/stats.TotalResistance, stats.TotalCurrent, tol, "step %d", step)
		assert.InDelta(t, stats.Voltage*stats.TotalCurrent, stats.TotalPower, tol, "step %d", step)

		sum := 0.0
		for _, comp := range c.Components() {
			sum += comp.Power
		}
		assert.InDelta(t, stats.TotalPower, sum, 1e-9*(1+stats.TotalPower), "step %d", step)
	}
}
