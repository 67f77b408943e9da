package analysis

import (
	"sort"
)

// Analysis runs against a nodal network and collects named result columns.
type Analysis interface {
	Setup(net *Network) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Network *Network
	results map[string][]float64 // key: variable name, value: one entry per point
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

func (a *BaseAnalysis) StoreResult(solution map[string]float64) {
	for name, value := range solution {
		a.results[name] = append(a.results[name], value)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

// ResultKeys returns the result names in sorted order.
func ResultKeys(results map[string][]float64) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
