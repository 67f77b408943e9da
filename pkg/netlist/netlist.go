package netlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/edp1096/toy-circuit/pkg/device"
)

// SourceName is the name given to the single supply in exported decks.
const SourceName = "V1"

// ComponentName is the deck name of a component.
func ComponentName(id int) string {
	return fmt.Sprintf("R%d", id)
}

// FromStages lays a series chain of parallel stages out as nodes: the source
// drives node 1, stage s spans node s+1 to node s+2, and the last stage
// returns to ground.
func FromStages(title string, stages [][]*device.Component, voltage float64) *NetlistData {
	data := &NetlistData{
		Title: title,
		Nodes: make(map[string]int),
	}

	add := func(elem Element) {
		data.Elements = append(data.Elements, elem)
		for _, node := range elem.Nodes {
			if _, exists := data.Nodes[node]; !exists {
				data.Nodes[node] = len(data.Nodes)
			}
		}
	}

	add(Element{Type: "V", Name: SourceName, Nodes: []string{"1", "0"}, Value: voltage})

	for s, stage := range stages {
		top := strconv.Itoa(s + 1)
		bottom := strconv.Itoa(s + 2)
		if s == len(stages)-1 {
			bottom = "0"
		}
		for _, comp := range stage {
			add(Element{
				Type:    "R",
				Name:    ComponentName(comp.ID),
				Nodes:   []string{top, bottom},
				Value:   comp.Resistance,
				Comment: comp.Kind.String(),
			})
		}
	}

	return data
}

// Format writes the deck back out in the form Parse reads.
func (d *NetlistData) Format() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "* %s\n", d.Title)
	for _, elem := range d.Elements {
		value := strconv.FormatFloat(elem.Value, 'g', -1, 64)
		if elem.Type == "V" {
			fmt.Fprintf(&sb, "%s %s %s DC %s", elem.Name, elem.Nodes[0], elem.Nodes[1], value)
		} else {
			fmt.Fprintf(&sb, "%s %s %s %s", elem.Name, elem.Nodes[0], elem.Nodes[1], value)
		}
		if elem.Comment != "" {
			fmt.Fprintf(&sb, " * %s", elem.Comment)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(".op\n.end\n")

	return sb.String()
}
