package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edp1096/toy-circuit/internal/chart"
	"github.com/edp1096/toy-circuit/internal/session"
	"github.com/edp1096/toy-circuit/pkg/analysis"
	"github.com/edp1096/toy-circuit/pkg/util"
)

func printView(view session.View) {
	fmt.Printf("\n%s\n", view.Name)
	fmt.Println(strings.Repeat("=", len(view.Name)))

	for s, stage := range view.Stages {
		fmt.Printf("Series %d:\n", s+1)
		for _, comp := range stage {
			fmt.Printf("  #%-3d %-22s V=%-12s I=%-12s P=%-12s",
				comp.ID, comp.Name,
				util.FormatValueFactor(comp.Voltage, "V"),
				util.FormatValueFactor(comp.Current, "A"),
				util.FormatValueFactor(comp.Power, "W"))
			if comp.LightSource {
				fmt.Printf(" brightness=%.0f%%", comp.Brightness*100)
			}
			fmt.Println()
		}
	}

	fmt.Println()
	fmt.Printf("Voltage:          %s\n", util.FormatFixed(view.Stats.Voltage, 1, "V"))
	fmt.Printf("Total current:    %s\n", util.FormatFixed(view.Stats.TotalCurrent, 3, "A"))
	fmt.Printf("Total resistance: %s\n", util.FormatFixed(view.Stats.TotalResistance, 2, "Ω"))
	fmt.Printf("Total power:      %s\n", util.FormatFixed(view.Stats.TotalPower, 2, "W"))
}

func printCheck(report session.CheckReport) {
	fmt.Println("\nClosed-form vs nodal:")
	fmt.Printf("  supply current  %s  %s\n",
		util.FormatValueFactor(report.TotalCurrent, "A"),
		util.FormatValueFactor(report.NodalCurrent, "A"))

	names := make([]string, 0, len(report.ComponentPower))
	for name := range report.ComponentPower {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  P(%s)  %s  %s\n", name,
			util.FormatValueFactor(report.ComponentPower[name], "W"),
			util.FormatValueFactor(report.NodalPower[name], "W"))
	}
	fmt.Printf("Largest current deviation: %.3e A\n", report.MaxCurrentError)
}

func unitOf(name string) string {
	switch {
	case strings.HasPrefix(name, "V("):
		return "V"
	case strings.HasPrefix(name, "I("):
		return "A"
	case strings.HasPrefix(name, "P("):
		return "W"
	}
	return ""
}

func printResults(results map[string][]float64) {
	fmt.Println("\nAnalysis Results:")
	fmt.Println("================")

	var names []string
	for _, name := range analysis.ResultKeys(results) {
		if name != chart.SweepKey {
			names = append(names, name)
		}
	}

	// Operating point
	sweep, isSweep := results[chart.SweepKey]
	if !isSweep {
		for _, name := range names {
			fmt.Printf("%s = %s\n", name, util.FormatValueFactor(results[name][0], unitOf(name)))
		}
		return
	}

	fmt.Printf("\nDC Sweep Analysis Results (%d points):\n", len(sweep))
	fmt.Println("------------------------------------------------")
	for i := range sweep {
		fmt.Printf("V=%-11s  ", util.FormatValueFactor(sweep[i], "V"))
		for _, name := range names {
			fmt.Printf("%s=%s  ", name, util.FormatValueFactor(results[name][i], unitOf(name)))
		}
		fmt.Println()
	}
}
