package device

import (
	"fmt"
	"strconv"
)

// Position locates a component: Series is the stage index, Parallel the
// index inside that stage. Both are 0-based.
type Position struct {
	Series   int `json:"series"`
	Parallel int `json:"parallel"`
}

// Component is a single resistive element. Current, Voltage and Power are
// written by the solver only; Position is written by the topology reindex only.
type Component struct {
	ID         int
	Kind       Kind
	Resistance float64 // Ohm
	Current    float64 // A
	Voltage    float64 // V
	Power      float64 // W
	Position   Position
}

func NewComponent(id int, kind Kind, resistance float64) *Component {
	return &Component{
		ID:         id,
		Kind:       kind,
		Resistance: resistance,
	}
}

func (c *Component) IsLightSource() bool {
	return c.Kind.IsLightSource()
}

func (c *Component) DisplayName() string {
	if !c.Kind.Valid() {
		return "Component"
	}
	return fmt.Sprintf("%s (%sΩ)", kinds[c.Kind].label, strconv.FormatFloat(c.Resistance, 'f', -1, 64))
}

func (c *Component) ClearState() {
	c.Current = 0
	c.Voltage = 0
	c.Power = 0
}
