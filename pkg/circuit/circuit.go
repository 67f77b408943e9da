package circuit

import (
	"fmt"
	"slices"

	"github.com/edp1096/toy-circuit/internal/consts"
	"github.com/edp1096/toy-circuit/pkg/analysis"
	"github.com/edp1096/toy-circuit/pkg/device"
)

// Mode selects how a new component joins the topology.
type Mode int

const (
	Series Mode = iota
	Parallel
)

func (m Mode) String() string {
	switch m {
	case Series:
		return "series"
	case Parallel:
		return "parallel"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "series", "":
		return Series, nil
	case "parallel":
		return Parallel, nil
	}
	return 0, fmt.Errorf("unknown placement mode %q", s)
}

// Target anchors an insertion. Without a parallel index a parallel insert
// appends to the stage.
type Target struct {
	Series      int
	Parallel    int
	HasParallel bool
}

func AfterStage(series int) *Target {
	return &Target{Series: series}
}

func After(pos device.Position) *Target {
	return &Target{Series: pos.Series, Parallel: pos.Parallel, HasParallel: true}
}

type Defaults struct {
	Voltage    float64
	Resistance float64
}

// Circuit is the aggregate root: a single DC source driving a series chain of
// parallel stages. It is not safe for concurrent use.
type Circuit struct {
	name       string
	defaults   Defaults
	voltage    float64
	components []*device.Component
	topology   Topology
	nextID     int

	totalResistance float64
	totalCurrent    float64
	totalPower      float64
}

func New(name string) *Circuit {
	return NewWithDefaults(name, Defaults{
		Voltage:    consts.DefaultVoltage,
		Resistance: consts.DefaultResistance,
	})
}

func NewWithDefaults(name string, defaults Defaults) *Circuit {
	c := &Circuit{
		name:     name,
		defaults: defaults,
	}
	c.Reset()
	return c
}

// mutate runs one structural edit followed by reindex and solve.
func (c *Circuit) mutate(fn func() bool) bool {
	changed := fn()
	c.topology.reindexAll()
	c.recompute()
	return changed
}

func (c *Circuit) recompute() {
	if len(c.components) == 0 {
		c.resetValues()
		return
	}

	sol := analysis.Solve(c.topology.Stages(), c.voltage)
	c.totalResistance = sol.TotalResistance
	c.totalCurrent = sol.TotalCurrent
	c.totalPower = sol.TotalPower

	for s, stage := range c.topology.Stages() {
		for p, comp := range stage {
			r := sol.Components[s][p]
			comp.Voltage = r.Voltage
			comp.Current = r.Current
			comp.Power = r.Power
		}
	}
}

func (c *Circuit) resetValues() {
	c.totalResistance = 0
	c.totalCurrent = 0
	c.totalPower = 0
	for _, comp := range c.components {
		comp.ClearState()
	}
}

func (c *Circuit) newComponent(kind device.Kind, resistance float64) *device.Component {
	comp := device.NewComponent(c.nextID, kind, resistance)
	c.nextID++
	c.components = append(c.components, comp)
	return comp
}

func (c *Circuit) find(id int) *device.Component {
	for _, comp := range c.components {
		if comp.ID == id {
			return comp
		}
	}
	return nil
}

func (c *Circuit) place(comp *device.Component, mode Mode, target *Target) {
	if mode == Parallel {
		n := c.topology.Len()
		if n == 0 {
			c.topology.insertStage(0, comp)
			return
		}

		series := n - 1
		if target != nil {
			series = clamp(target.Series, 0, n-1)
		}
		stage := c.topology.stages[series]
		slot := len(stage)
		if target != nil && target.HasParallel {
			slot = clamp(target.Parallel, -1, len(stage)) + 1
		}
		c.topology.insertParallel(series, slot, comp)
		return
	}

	index := c.topology.Len()
	if target != nil {
		index = clamp(target.Series, -1, index) + 1
	}
	c.topology.insertStage(index, comp)
}

// SetVoltage replaces the source voltage and re-solves.
func (c *Circuit) SetVoltage(voltage float64) {
	c.voltage = voltage
	c.recompute()
}

// AddComponent creates a component and places it relative to target. A nil
// target appends: a new trailing stage in series mode, the last stage in
// parallel mode.
func (c *Circuit) AddComponent(kind device.Kind, resistance float64, mode Mode, target *Target) *device.Component {
	var comp *device.Component
	c.mutate(func() bool {
		comp = c.newComponent(kind, resistance)
		c.place(comp, mode, target)
		return true
	})
	return comp
}

// AddComponentToSelection anchors the new component on the first selected id.
// An empty selection appends; a stale anchor id appends a trailing stage.
func (c *Circuit) AddComponentToSelection(kind device.Kind, resistance float64, mode Mode, selected []int) *device.Component {
	if len(selected) == 0 {
		return c.AddComponent(kind, resistance, mode, nil)
	}

	var comp *device.Component
	c.mutate(func() bool {
		comp = c.newComponent(kind, resistance)
		anchor := c.find(selected[0])
		if anchor == nil {
			c.topology.insertStage(c.topology.Len(), comp)
			return true
		}
		c.place(comp, mode, After(anchor.Position))
		return true
	})
	return comp
}

// RemoveComponent reports false for an unknown id.
func (c *Circuit) RemoveComponent(id int) bool {
	return c.mutate(func() bool {
		comp := c.find(id)
		if comp == nil {
			return false
		}
		c.topology.detach(comp)
		c.components = slices.DeleteFunc(c.components, func(x *device.Component) bool { return x == comp })
		comp.ClearState()
		return true
	})
}

// MoveComponent detaches id and inserts it into stage series at slot parallel.
// series addresses the topology as it was before the detach.
func (c *Circuit) MoveComponent(id, series, parallel int) bool {
	return c.mutate(func() bool {
		comp := c.find(id)
		if comp == nil {
			return false
		}

		oldSeries, stageRemoved, ok := c.topology.detach(comp)
		if !ok {
			return false
		}
		if stageRemoved && series > oldSeries {
			series--
		}
		// One slot past the end is a new trailing stage
		series = clamp(series, 0, c.topology.Len())

		c.topology.grow(series)
		c.topology.insertParallel(series, parallel, comp)
		return true
	})
}

// Reset discards every component and restores the single default resistor.
func (c *Circuit) Reset() {
	c.mutate(func() bool {
		c.components = nil
		c.topology.clear()
		c.nextID = 1
		c.voltage = c.defaults.Voltage
		c.topology.insertStage(0, c.newComponent(device.Resistor, c.defaults.Resistance))
		return true
	})
}
