package internal

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParameterError indicates a malformed parameter definition or a command
// template referencing a parameter that was never defined. It is a
// pre-execution validation failure: nothing gets benchmarked.
type ParameterError struct {
	Name   string
	Reason string
}

func (pe *ParameterError) Error() string {
	if pe.Name == "" {
		return "parameter error: " + pe.Reason
	}
	return fmt.Sprintf("parameter error: `%s`: %s", pe.Name, pe.Reason)
}

// ParamValues is one parameter definition: a name and the ordered list of
// values it takes. Numeric scans are expanded into this form up front so
// that expansion only ever deals with strings.
type ParamValues struct {
	Name   string
	Values []string
}

// ParamAssignment binds one parameter name to the concrete value chosen for
// a single expansion instance.
type ParamAssignment struct {
	Name  string
	Value string
}

// ConcreteCommand is a fully substituted command: the originating template,
// the parameter assignments used (in definition order) and the rendered
// command string. It is never mutated after creation.
type ConcreteCommand struct {
	Template string
	Params   []ParamAssignment
	Rendered string
}

// Name returns a short human-readable identity for the command, suitable
// for summaries and export headers.
func (cc ConcreteCommand) Name() string {
	return cc.Rendered
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_-]*)\}`)

// ParseParameterList parses a "name=v1,v2,v3" style definition.
func ParseParameterList(definition string) (ParamValues, error) {
	name, valueList, found := strings.Cut(definition, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return ParamValues{}, &ParameterError{Reason: fmt.Sprintf("invalid parameter list `%s`, expected name=value,value,...", definition)}
	}
	values := strings.Split(valueList, ",")
	if len(values) == 1 && values[0] == "" {
		return ParamValues{}, &ParameterError{Name: name, Reason: "empty value list"}
	}
	return ParamValues{Name: name, Values: values}, nil
}

// ParseParameterScan parses a "name=start:end:step" numeric range definition
// and expands it into a value list. Every value is rendered with the widest
// decimal precision that appears in the definition, so all rendered values
// line up at every step.
func ParseParameterScan(definition string) (ParamValues, error) {
	name, rangeSpec, found := strings.Cut(definition, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return ParamValues{}, &ParameterError{Reason: fmt.Sprintf("invalid parameter scan `%s`, expected name=start:end:step", definition)}
	}

	parts := strings.Split(rangeSpec, ":")
	if len(parts) != 3 {
		return ParamValues{}, &ParameterError{Name: name, Reason: fmt.Sprintf("invalid range `%s`, expected start:end:step", rangeSpec)}
	}

	numbers := make([]float64, 3)
	for i, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return ParamValues{}, &ParameterError{Name: name, Reason: fmt.Sprintf("`%s` is not a number", part)}
		}
		numbers[i] = n
	}

	return expandRange(name, numbers[0], numbers[1], numbers[2], rangePrecision(parts))
}

// rangePrecision returns the maximum number of decimal places among the
// textual range components.
func rangePrecision(parts []string) int {
	precision := 0
	for _, part := range parts {
		if _, frac, found := strings.Cut(strings.TrimSpace(part), "."); found {
			if len(frac) > precision {
				precision = len(frac)
			}
		}
	}
	return precision
}

func expandRange(name string, start, end, step float64, precision int) (ParamValues, error) {
	if step == 0 {
		return ParamValues{}, &ParameterError{Name: name, Reason: "step must not be zero"}
	}
	if (end-start)*step < 0 {
		return ParamValues{}, &ParameterError{Name: name, Reason: "step direction does not match start/end ordering"}
	}

	var values []string
	// generate from the index rather than accumulating the step, so that
	// float rounding cannot drop or duplicate the final value
	count := int(math.Floor((end-start)/step + 1e-9))
	for i := 0; i <= count; i++ {
		values = append(values, strconv.FormatFloat(start+float64(i)*step, 'f', precision, 64))
	}
	return ParamValues{Name: name, Values: values}, nil
}

// ExpandCommands expands every command template over the full Cartesian
// product of the given parameter definitions, in definition order then
// value order. Expansion is deterministic: the same inputs always produce
// the same ordered sequence.
func ExpandCommands(templates []string, params []ParamValues) ([]ConcreteCommand, error) {
	defined := map[string]bool{}
	for _, p := range params {
		if defined[p.Name] {
			return nil, &ParameterError{Name: p.Name, Reason: "defined more than once"}
		}
		defined[p.Name] = true
	}

	var commands []ConcreteCommand
	for _, template := range templates {
		for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
			if !defined[m[1]] {
				return nil, &ParameterError{Name: m[1], Reason: fmt.Sprintf("referenced in `%s` but never defined", template)}
			}
		}

		assignments := make([]ParamAssignment, len(params))
		expanded, err := expandTemplate(template, params, assignments, 0)
		if err != nil {
			return nil, err
		}
		commands = append(commands, expanded...)
	}
	return commands, nil
}

func expandTemplate(template string, params []ParamValues, assignments []ParamAssignment, depth int) ([]ConcreteCommand, error) {
	if depth == len(params) {
		rendered := template
		for _, a := range assignments {
			rendered = strings.ReplaceAll(rendered, "{"+a.Name+"}", a.Value)
		}
		cc := ConcreteCommand{
			Template: template,
			Params:   append([]ParamAssignment{}, assignments...),
			Rendered: rendered,
		}
		return []ConcreteCommand{cc}, nil
	}

	var commands []ConcreteCommand
	for _, value := range params[depth].Values {
		assignments[depth] = ParamAssignment{Name: params[depth].Name, Value: value}
		expanded, err := expandTemplate(template, params, assignments, depth+1)
		if err != nil {
			return nil, err
		}
		commands = append(commands, expanded...)
	}
	return commands, nil
}
