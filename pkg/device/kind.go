package device

import (
	"fmt"

	"github.com/edp1096/toy-circuit/internal/consts"
)

type Kind int

const (
	Resistor Kind = iota
	BulbLow
	BulbMid
	BulbHigh
)

type kindInfo struct {
	name              string
	label             string
	defaultResistance float64
	lightSource       bool
}

var kinds = [...]kindInfo{
	Resistor: {"resistor", "Resistor", consts.DefaultResistance, false},
	BulbLow:  {"bulb-low", "Light Bulb", consts.BulbLowResistance, true},
	BulbMid:  {"bulb-mid", "Light Bulb", consts.BulbMidResistance, true},
	BulbHigh: {"bulb-high", "Light Bulb", consts.BulbHighResistance, true},
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{Resistor, BulbLow, BulbMid, BulbHigh}
}

func (k Kind) Valid() bool {
	return k >= Resistor && int(k) < len(kinds)
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

func (k Kind) IsLightSource() bool {
	return k.Valid() && kinds[k].lightSource
}

func (k Kind) DefaultResistance() float64 {
	if !k.Valid() {
		return 0
	}
	return kinds[k].defaultResistance
}

func ParseKind(s string) (Kind, error) {
	for i, info := range kinds {
		if info.name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown component kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid component kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
