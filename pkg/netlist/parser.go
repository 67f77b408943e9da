package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/toy-circuit/pkg/device"
)

type NetlistData struct {
	Title    string    // Circuit title
	Elements []Element // Circuit elements
	Nodes    map[string]int
}

type Element struct {
	Type    string   // Part type (R, V)
	Name    string   // Part name
	Nodes   []string // Node names
	Value   float64  // Part value
	Comment string   // Inline comment, e.g. the component kind
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"M":   1e-3,  // milli, as in SPICE
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?(?:ohm|[VAs])?$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Parse reads the resistive subset of a SPICE deck: a title line, R and DC V
// elements, '*' comments, '+' continuations, .op and .end.
func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := &NetlistData{
		Nodes: make(map[string]int),
	}

	// Title or comment
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	var currentLine string
	flush := func() error {
		if currentLine == "" {
			return nil
		}
		line := currentLine
		currentLine = ""
		return parseLine(netlistData, line)
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 || strings.HasPrefix(line, "*") {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		if strings.HasPrefix(line, "+") { // Line continue
			if currentLine != "" {
				currentLine += " " + strings.TrimSpace(line[1:])
			}
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		currentLine = line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %v", err)
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return netlistData, nil
}

func parseLine(netlistData *NetlistData, line string) error {
	var comment string
	if idx := strings.Index(line, "*"); idx >= 0 {
		comment = strings.TrimSpace(line[idx+1:])
		line = strings.TrimSpace(line[:idx])
	}
	line = spaceRe.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}
	element.Comment = comment

	netlistData.Elements = append(netlistData.Elements, *element)
	for _, node := range element.Nodes {
		if _, exists := netlistData.Nodes[node]; !exists {
			netlistData.Nodes[node] = len(netlistData.Nodes)
		}
	}
	return nil
}

func parseDotOperator(line string) error {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".op", ".end":
		return nil
	}
	return fmt.Errorf("unsupported control line: %s", line)
}

func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:  fields[0],
		Type:  strings.ToUpper(string(fields[0][0])),
		Nodes: fields[1:3],
	}

	switch elem.Type {
	case "V":
		// V<name> n+ n- [DC] value
		valueStr := fields[3]
		if strings.EqualFold(valueStr, "dc") {
			if len(fields) < 5 {
				return nil, fmt.Errorf("voltage source %s: missing DC value", elem.Name)
			}
			valueStr = fields[4]
		}
		value, err := ParseValue(valueStr)
		if err != nil {
			return nil, fmt.Errorf("voltage source %s: %v", elem.Name, err)
		}
		elem.Value = value

	case "R":
		value, err := ParseValue(fields[3])
		if err != nil {
			return nil, fmt.Errorf("resistor %s: %v", elem.Name, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("resistor %s: resistance must be positive, got %g", elem.Name, value)
		}
		elem.Value = value

	default:
		return nil, fmt.Errorf("unsupported element type %q in %s", elem.Type, elem.Name)
	}

	return elem, nil
}

// ParseValue reads a number with an optional engineering suffix: 4.7k, 1meg, 10m.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	if matches[2] != "" {
		if multiplier, ok := unitMap[matches[2]]; ok {
			num *= multiplier
		}
	}

	return num, nil
}

func CreateDevice(elem Element) (device.Device, error) {
	if len(elem.Nodes) != 2 {
		return nil, fmt.Errorf("%s: requires exactly 2 nodes", elem.Name)
	}

	switch elem.Type {
	case "R":
		return device.NewResistor(elem.Name, elem.Nodes, elem.Value), nil
	case "V":
		return device.NewDCVoltageSource(elem.Name, elem.Nodes, elem.Value), nil
	}
	return nil, fmt.Errorf("unsupported device type: %s", elem.Type)
}
