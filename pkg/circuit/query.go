package circuit

import (
	"fmt"
	"slices"

	"github.com/edp1096/toy-circuit/pkg/device"
)

type Stats struct {
	Voltage         float64 `json:"voltage"`
	TotalCurrent    float64 `json:"totalCurrent"`
	TotalResistance float64 `json:"totalResistance"`
	TotalPower      float64 `json:"totalPower"`
}

type ComponentStats struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Kind       device.Kind     `json:"kind"`
	Resistance float64         `json:"resistance"`
	Voltage    float64         `json:"voltage"`
	Current    float64         `json:"current"`
	Power      float64         `json:"power"`
	Position   device.Position `json:"position"`
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) Voltage() float64 {
	return c.voltage
}

func (c *Circuit) Stats() Stats {
	return Stats{
		Voltage:         c.voltage,
		TotalCurrent:    c.totalCurrent,
		TotalResistance: c.totalResistance,
		TotalPower:      c.totalPower,
	}
}

// Topology returns a copy of the stage sequence. The component pointers are shared.
func (c *Circuit) Topology() []Stage {
	return c.topology.snapshot()
}

// Components returns the master list in creation order.
func (c *Circuit) Components() []*device.Component {
	return slices.Clone(c.components)
}

func (c *Circuit) Len() int {
	return len(c.components)
}

func (c *Circuit) Component(id int) (*device.Component, bool) {
	comp := c.find(id)
	return comp, comp != nil
}

func (c *Circuit) ComponentStats(id int) (ComponentStats, bool) {
	comp := c.find(id)
	if comp == nil {
		return ComponentStats{}, false
	}

	return ComponentStats{
		ID:         comp.ID,
		Name:       comp.DisplayName(),
		Kind:       comp.Kind,
		Resistance: comp.Resistance,
		Voltage:    comp.Voltage,
		Current:    comp.Current,
		Power:      comp.Power,
		Position:   comp.Position,
	}, true
}

// MaxPower returns the largest power among components matching filter, or 0.
func (c *Circuit) MaxPower(filter func(*device.Component) bool) float64 {
	maxPower := 0.0
	for _, comp := range c.components {
		if filter != nil && !filter(comp) {
			continue
		}
		maxPower = max(maxPower, comp.Power)
	}
	return maxPower
}

func (c *Circuit) MaxLightSourcePower() float64 {
	return c.MaxPower((*device.Component).IsLightSource)
}

// CheckIntegrity verifies that positions match placement, that no stage is
// empty and that the master list and the topology hold the same components.
func (c *Circuit) CheckIntegrity() error {
	seen := make(map[*device.Component]bool, len(c.components))
	for s, stage := range c.topology.Stages() {
		if len(stage) == 0 {
			return fmt.Errorf("stage %d is empty", s)
		}
		for p, comp := range stage {
			if seen[comp] {
				return fmt.Errorf("component %d appears twice in topology", comp.ID)
			}
			seen[comp] = true
			if comp.Position != (device.Position{Series: s, Parallel: p}) {
				return fmt.Errorf("component %d: stored position %+v, actual {Series:%d Parallel:%d}", comp.ID, comp.Position, s, p)
			}
		}
	}

	if len(seen) != len(c.components) {
		return fmt.Errorf("topology holds %d components, master list %d", len(seen), len(c.components))
	}
	ids := make(map[int]bool, len(c.components))
	for _, comp := range c.components {
		if !seen[comp] {
			return fmt.Errorf("component %d is not in topology", comp.ID)
		}
		if ids[comp.ID] {
			return fmt.Errorf("duplicate component id %d", comp.ID)
		}
		ids[comp.ID] = true
	}
	return nil
}
