package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-circuit/internal/consts"
	"github.com/edp1096/toy-circuit/pkg/device"
)

// DCSweep steps one voltage source through a range and records an operating
// point per step. The sweep value is stored under SWEEP1.
type DCSweep struct {
	BaseAnalysis
	sourceName string
	start      float64
	stop       float64
	increment  float64
	sweepVals  []float64
	source     *device.VoltageSource
}

func NewDCSweep(source string, start, stop, increment float64) (*DCSweep, error) {
	for _, v := range []float64{start, stop, increment} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("sweep parameters must be finite, got start=%g stop=%g step=%g", start, stop, increment)
		}
	}
	if increment <= 0 {
		return nil, fmt.Errorf("sweep increment must be positive, got %g", increment)
	}
	if stop < start {
		return nil, fmt.Errorf("sweep stop %g is below start %g", stop, start)
	}

	// Count steps instead of accumulating to keep the last point exact.
	span := math.Floor((stop-start)/increment + 1e-9)
	if span >= consts.MaxSweepPoints {
		return nil, fmt.Errorf("sweep needs %g points, limit is %d", span+1, consts.MaxSweepPoints)
	}
	steps := int(span) + 1
	sweepVals := make([]float64, steps)
	for i := range sweepVals {
		sweepVals[i] = start + float64(i)*increment
	}

	return &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(),
		sourceName:   source,
		start:        start,
		stop:         stop,
		increment:    increment,
		sweepVals:    sweepVals,
	}, nil
}

func (dc *DCSweep) Setup(net *Network) error {
	if net == nil {
		return fmt.Errorf("network not set")
	}
	dc.Network = net

	dev, ok := net.Device(dc.sourceName)
	if !ok {
		return fmt.Errorf("source %s not found", dc.sourceName)
	}
	source, ok := dev.(*device.VoltageSource)
	if !ok {
		return fmt.Errorf("device %s is not a voltage source", dc.sourceName)
	}
	dc.source = source
	return nil
}

func (dc *DCSweep) Execute() error {
	if dc.Network == nil || dc.source == nil {
		return fmt.Errorf("circuit not set")
	}

	origVal := dc.source.GetValue()
	defer dc.source.SetValue(origVal)

	dc.results = make(map[string][]float64)
	for _, val := range dc.sweepVals {
		dc.source.SetValue(val)

		if err := dc.Network.Solve(); err != nil {
			return fmt.Errorf("sweep point %g: %v", val, err)
		}

		solution := dc.Network.Solution()
		solution["SWEEP1"] = val
		dc.StoreResult(solution)
	}

	return nil
}

func (dc *DCSweep) Points() []float64 {
	return dc.sweepVals
}
