// Package session is the boundary between a user interface and the circuit
// engine. It validates input, keeps the selection and serializes access.
package session

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/edp1096/toy-circuit/internal/config"
	"github.com/edp1096/toy-circuit/internal/consts"
	"github.com/edp1096/toy-circuit/pkg/circuit"
	"github.com/edp1096/toy-circuit/pkg/device"
)

var (
	ErrInvalidResistance = errors.New("invalid resistance")
	ErrInvalidVoltage    = errors.New("invalid voltage")
	ErrComponentNotFound = errors.New("component not found")
	ErrUnknownKind       = errors.New("unknown component kind")
	ErrUnknownMode       = errors.New("unknown placement mode")
)

type Limits struct {
	MaxResistance float64
	MaxVoltage    float64
}

type Session struct {
	mu       sync.Mutex
	circuit  *circuit.Circuit
	limits   Limits
	selected []int // first entry anchors additions
}

func New(c *circuit.Circuit, limits Limits) *Session {
	if limits.MaxResistance <= 0 {
		limits.MaxResistance = consts.MaxResistance
	}
	if limits.MaxVoltage <= 0 {
		limits.MaxVoltage = consts.MaxVoltage
	}
	return &Session{circuit: c, limits: limits}
}

func NewFromConfig(cfg *config.Config) *Session {
	c := circuit.NewWithDefaults(cfg.Circuit.Name, circuit.Defaults{
		Voltage:    cfg.Circuit.Voltage,
		Resistance: cfg.Circuit.Resistance,
	})
	return New(c, Limits{
		MaxResistance: cfg.Limits.MaxResistance,
		MaxVoltage:    cfg.Limits.MaxVoltage,
	})
}

type AddRequest struct {
	Kind       device.Kind
	Resistance float64 // 0 takes the kind default
	Mode       circuit.Mode
	Target     *circuit.Target // nil places relative to the selection
}

type ComponentView struct {
	circuit.ComponentStats
	LightSource bool    `json:"lightSource"`
	Brightness  float64 `json:"brightness"`
	Selected    bool    `json:"selected"`
}

type View struct {
	Name          string            `json:"name"`
	Stats         circuit.Stats     `json:"stats"`
	Stages        [][]ComponentView `json:"stages"`
	Selected      []int             `json:"selected"`
	MaxLightPower float64           `json:"maxLightPower"`
}

// Brightness normalizes a light source's power against the brightest one.
// The 0.1 W floor keeps dim circuits from rendering at full glow.
func Brightness(comp *device.Component, maxPower float64) float64 {
	if !comp.IsLightSource() {
		return 0
	}
	return math.Min(comp.Power/math.Max(maxPower, consts.MinBrightnessPower), 1)
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxPower := s.circuit.MaxLightSourcePower()
	topology := s.circuit.Topology()
	stages := make([][]ComponentView, len(topology))
	for i, stage := range topology {
		stages[i] = make([]ComponentView, len(stage))
		for j, comp := range stage {
			stages[i][j] = s.viewLocked(comp, maxPower)
		}
	}

	return View{
		Name:          s.circuit.Name(),
		Stats:         s.circuit.Stats(),
		Stages:        stages,
		Selected:      slices.Clone(s.selected),
		MaxLightPower: maxPower,
	}
}

func (s *Session) viewLocked(comp *device.Component, maxPower float64) ComponentView {
	stats, _ := s.circuit.ComponentStats(comp.ID)
	return ComponentView{
		ComponentStats: stats,
		LightSource:    comp.IsLightSource(),
		Brightness:     Brightness(comp, maxPower),
		Selected:       slices.Contains(s.selected, comp.ID),
	}
}

func (s *Session) Component(id int) (ComponentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comp, ok := s.circuit.Component(id)
	if !ok {
		return ComponentView{}, fmt.Errorf("component %d: %w", id, ErrComponentNotFound)
	}
	return s.viewLocked(comp, s.circuit.MaxLightSourcePower()), nil
}

func (s *Session) SetVoltage(v float64) error {
	if math.IsNaN(v) || v < 0 || v > s.limits.MaxVoltage {
		return fmt.Errorf("%g V outside [0, %g]: %w", v, s.limits.MaxVoltage, ErrInvalidVoltage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.circuit.SetVoltage(v)
	return nil
}

func (s *Session) resolveResistance(kind device.Kind, r float64) (float64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("kind %d: %w", int(kind), ErrUnknownKind)
	}
	if r == 0 {
		r = kind.DefaultResistance()
	}
	if math.IsNaN(r) || r <= 0 || r > s.limits.MaxResistance {
		return 0, fmt.Errorf("%g Ohm outside (0, %g]: %w", r, s.limits.MaxResistance, ErrInvalidResistance)
	}
	return r, nil
}

// Add places a new component. Without an explicit target it anchors on the
// selection, or on the first component when nothing is selected, and then
// clears the selection.
func (s *Session) Add(req AddRequest) (ComponentView, error) {
	if req.Mode != circuit.Series && req.Mode != circuit.Parallel {
		return ComponentView{}, fmt.Errorf("mode %d: %w", int(req.Mode), ErrUnknownMode)
	}
	r, err := s.resolveResistance(req.Kind, req.Resistance)
	if err != nil {
		return ComponentView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var comp *device.Component
	if req.Target != nil {
		comp = s.circuit.AddComponent(req.Kind, r, req.Mode, req.Target)
	} else {
		anchors := slices.Clone(s.selected)
		if len(anchors) == 0 {
			if all := s.circuit.Components(); len(all) > 0 {
				anchors = []int{all[0].ID}
			}
		}
		comp = s.circuit.AddComponentToSelection(req.Kind, r, req.Mode, anchors)
		s.selected = nil
	}

	return s.viewLocked(comp, s.circuit.MaxLightSourcePower()), nil
}

func (s *Session) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.circuit.RemoveComponent(id) {
		return fmt.Errorf("component %d: %w", id, ErrComponentNotFound)
	}
	s.selected = slices.DeleteFunc(s.selected, func(x int) bool { return x == id })
	return nil
}

func (s *Session) Move(id, series, parallel int) (ComponentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.circuit.MoveComponent(id, series, parallel) {
		return ComponentView{}, fmt.Errorf("component %d: %w", id, ErrComponentNotFound)
	}
	comp, _ := s.circuit.Component(id)
	return s.viewLocked(comp, s.circuit.MaxLightSourcePower()), nil
}

// Select toggles id. Without multi the previous selection is dropped first.
func (s *Session) Select(id int, multi bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.circuit.Component(id); !ok {
		return fmt.Errorf("component %d: %w", id, ErrComponentNotFound)
	}
	if !multi {
		s.selected = nil
	}
	if i := slices.Index(s.selected, id); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return nil
	}
	s.selected = append(s.selected, id)
	return nil
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

func (s *Session) Selection() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected)
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.circuit.Reset()
	s.selected = nil
}

func (s *Session) Limits() Limits {
	return s.limits
}
