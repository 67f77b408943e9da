package circuit

import (
	"slices"

	"github.com/edp1096/toy-circuit/pkg/device"
)

// Stage is a group of components connected in parallel.
type Stage = []*device.Component

// Topology is an ordered sequence of stages connected in series.
//
//	[ [c1], [c2, c3], [c4] ]  ->  c1 --- (c2 || c3) --- c4
type Topology struct {
	stages []Stage
}

// Len is the number of series stages.
func (t *Topology) Len() int {
	return len(t.stages)
}

// Stages exposes the live stage slices; callers outside the package use
// Circuit.Topology for a copy.
func (t *Topology) Stages() []Stage {
	return t.stages
}

// reindexAll drops empty stages and rewrites every component position from
// its actual placement. No other code path writes Position.
func (t *Topology) reindexAll() {
	t.stages = slices.DeleteFunc(t.stages, func(s Stage) bool { return len(s) == 0 })
	for s, stage := range t.stages {
		for p, comp := range stage {
			comp.Position = device.Position{Series: s, Parallel: p}
		}
	}
}

// insertStage puts a new single-component stage at index, clamped into [0, Len()].
func (t *Topology) insertStage(index int, comp *device.Component) {
	index = clamp(index, 0, len(t.stages))
	t.stages = slices.Insert(t.stages, index, Stage{comp})
}

// insertParallel puts comp into the stage at series, at slot clamped into [0, len(stage)].
func (t *Topology) insertParallel(series, slot int, comp *device.Component) {
	stage := t.stages[series]
	slot = clamp(slot, 0, len(stage))
	t.stages[series] = slices.Insert(stage, slot, comp)
}

// locate finds comp by identity. Positions are trusted only after a reindex,
// so this scans instead.
func (t *Topology) locate(comp *device.Component) (series, parallel int, ok bool) {
	for s, stage := range t.stages {
		if p := slices.Index(stage, comp); p >= 0 {
			return s, p, true
		}
	}
	return 0, 0, false
}

// detach removes comp from its stage. stageRemoved reports whether the stage
// became empty and was spliced out.
func (t *Topology) detach(comp *device.Component) (series int, stageRemoved, ok bool) {
	series, parallel, ok := t.locate(comp)
	if !ok {
		return 0, false, false
	}

	t.stages[series] = slices.Delete(t.stages[series], parallel, parallel+1)
	if len(t.stages[series]) == 0 {
		t.stages = slices.Delete(t.stages, series, series+1)
		stageRemoved = true
	}
	return series, stageRemoved, true
}

// grow appends empty placeholder stages until index is addressable.
func (t *Topology) grow(index int) {
	for len(t.stages) <= index {
		t.stages = append(t.stages, Stage{})
	}
}

func (t *Topology) clear() {
	t.stages = nil
}

func (t *Topology) snapshot() []Stage {
	out := make([]Stage, len(t.stages))
	for i, stage := range t.stages {
		out[i] = slices.Clone(stage)
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
