// Package script replays a YAML list of edits against a session. It lets the
// CLI drive the same mutation surface the HTTP API uses.
//
//	voltage: 9
//	steps:
//	  - op: add
//	    kind: bulb-mid
//	    mode: parallel
//	    target: {series: 0}
//	  - op: select
//	    id: 1
//	  - op: add
//	    kind: resistor
//	    resistance: 47
//	  - op: move
//	    id: 2
//	    series: 1
//	    parallel: 0
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-circuit/internal/session"
	"github.com/edp1096/toy-circuit/pkg/circuit"
	"github.com/edp1096/toy-circuit/pkg/device"
)

type Script struct {
	Voltage *float64 `yaml:"voltage,omitempty"`
	Steps   []Step   `yaml:"steps"`
}

type Target struct {
	Series   int  `yaml:"series"`
	Parallel *int `yaml:"parallel,omitempty"`
}

type Step struct {
	Op         string  `yaml:"op"`
	Kind       string  `yaml:"kind,omitempty"`
	Resistance float64 `yaml:"resistance,omitempty"`
	Mode       string  `yaml:"mode,omitempty"`
	Target     *Target `yaml:"target,omitempty"`
	ID         int     `yaml:"id,omitempty"`
	Series     int     `yaml:"series,omitempty"`
	Parallel   int     `yaml:"parallel,omitempty"`
	Multi      bool    `yaml:"multi,omitempty"`
	Voltage    float64 `yaml:"voltage,omitempty"`
}

func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &s, nil
}

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Apply resets the session and runs every step in order. It stops at the
// first failing step.
func (s *Script) Apply(sess *session.Session) error {
	sess.Reset()

	if s.Voltage != nil {
		if err := sess.SetVoltage(*s.Voltage); err != nil {
			return fmt.Errorf("script voltage: %w", err)
		}
	}

	for i, step := range s.Steps {
		if err := step.apply(sess); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}
	return nil
}

func (st Step) apply(sess *session.Session) error {
	switch st.Op {
	case "add":
		kind := device.Resistor
		if st.Kind != "" {
			k, err := device.ParseKind(st.Kind)
			if err != nil {
				return fmt.Errorf("%v: %w", err, session.ErrUnknownKind)
			}
			kind = k
		}
		mode, err := circuit.ParseMode(st.Mode)
		if err != nil {
			return fmt.Errorf("%v: %w", err, session.ErrUnknownMode)
		}

		req := session.AddRequest{Kind: kind, Resistance: st.Resistance, Mode: mode}
		if st.Target != nil {
			req.Target = circuit.AfterStage(st.Target.Series)
			if st.Target.Parallel != nil {
				req.Target.Parallel = *st.Target.Parallel
				req.Target.HasParallel = true
			}
		}
		_, err = sess.Add(req)
		return err

	case "remove":
		return sess.Remove(st.ID)

	case "move":
		_, err := sess.Move(st.ID, st.Series, st.Parallel)
		return err

	case "voltage":
		return sess.SetVoltage(st.Voltage)

	case "select":
		return sess.Select(st.ID, st.Multi)

	case "clear":
		sess.ClearSelection()
		return nil

	case "reset":
		sess.Reset()
		return nil
	}
	return fmt.Errorf("unknown op %q", st.Op)
}
