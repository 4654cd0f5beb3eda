package internal

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseParameterList(t *testing.T) {
	tests := []struct {
		name       string
		definition string
		want       ParamValues
		wantErr    bool
	}{
		{name: "simple list", definition: "size=10,20,30", want: ParamValues{Name: "size", Values: []string{"10", "20", "30"}}},
		{name: "single value", definition: "flag=-O2", want: ParamValues{Name: "flag", Values: []string{"-O2"}}},
		{name: "missing equals", definition: "size", wantErr: true},
		{name: "empty name", definition: "=1,2", wantErr: true},
		{name: "empty values", definition: "size=", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParameterList(tt.definition)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseParameterList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseParameterList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseParameterScan(t *testing.T) {
	tests := []struct {
		name       string
		definition string
		want       []string
		wantErr    bool
	}{
		{name: "integer range", definition: "n=1:5:1", want: []string{"1", "2", "3", "4", "5"}},
		{name: "descending range", definition: "n=5:1:-1", want: []string{"5", "4", "3", "2", "1"}},
		{name: "fractional step keeps width", definition: "x=0:1:0.25", want: []string{"0.00", "0.25", "0.50", "0.75", "1.00"}},
		{name: "zero step", definition: "n=1:5:0", wantErr: true},
		{name: "step direction mismatch", definition: "n=5:1:1", wantErr: true},
		{name: "not a number", definition: "n=a:5:1", wantErr: true},
		{name: "missing component", definition: "n=1:5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParameterScan(tt.definition)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseParameterScan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var perr *ParameterError
				if !errors.As(err, &perr) {
					t.Errorf("ParseParameterScan() error type = %T, want *ParameterError", err)
				}
				return
			}
			if !reflect.DeepEqual(got.Values, tt.want) {
				t.Errorf("ParseParameterScan() values = %v, want %v", got.Values, tt.want)
			}
		})
	}
}

func TestExpandCommands(t *testing.T) {
	t.Run("single parameter in order", func(t *testing.T) {
		commands, err := ExpandCommands(
			[]string{"run --x {x}"},
			[]ParamValues{{Name: "x", Values: []string{"1", "2", "3"}}},
		)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"run --x 1", "run --x 2", "run --x 3"}
		got := MapFunc[[]ConcreteCommand, []string](func(c ConcreteCommand) string { return c.Rendered }, commands)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ExpandCommands() = %v, want %v", got, want)
		}
	})

	t.Run("cartesian product, definition order then value order", func(t *testing.T) {
		commands, err := ExpandCommands(
			[]string{"{a}-{b}"},
			[]ParamValues{
				{Name: "a", Values: []string{"1", "2"}},
				{Name: "b", Values: []string{"x", "y"}},
			},
		)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"1-x", "1-y", "2-x", "2-y"}
		got := MapFunc[[]ConcreteCommand, []string](func(c ConcreteCommand) string { return c.Rendered }, commands)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ExpandCommands() = %v, want %v", got, want)
		}
	})

	t.Run("repeated placeholder occurrences all substituted", func(t *testing.T) {
		commands, err := ExpandCommands(
			[]string{"cp {f} {f}.bak"},
			[]ParamValues{{Name: "f", Values: []string{"a.txt"}}},
		)
		if err != nil {
			t.Fatal(err)
		}
		if commands[0].Rendered != "cp a.txt a.txt.bak" {
			t.Errorf("Rendered = %q", commands[0].Rendered)
		}
	})

	t.Run("multiple templates expand per template", func(t *testing.T) {
		commands, err := ExpandCommands(
			[]string{"a {n}", "b {n}"},
			[]ParamValues{{Name: "n", Values: []string{"1", "2"}}},
		)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"a 1", "a 2", "b 1", "b 2"}
		got := MapFunc[[]ConcreteCommand, []string](func(c ConcreteCommand) string { return c.Rendered }, commands)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ExpandCommands() = %v, want %v", got, want)
		}
	})

	t.Run("undefined parameter", func(t *testing.T) {
		_, err := ExpandCommands([]string{"run {missing}"}, nil)
		var perr *ParameterError
		if !errors.As(err, &perr) {
			t.Fatalf("ExpandCommands() error = %v, want *ParameterError", err)
		}
	})

	t.Run("duplicate definition", func(t *testing.T) {
		_, err := ExpandCommands(
			[]string{"run {n}"},
			[]ParamValues{
				{Name: "n", Values: []string{"1"}},
				{Name: "n", Values: []string{"2"}},
			},
		)
		if err == nil {
			t.Fatal("ExpandCommands() expected error for duplicate definition")
		}
	})

	t.Run("expansion is deterministic and restartable", func(t *testing.T) {
		templates := []string{"run {a} {b}"}
		params := []ParamValues{
			{Name: "a", Values: []string{"1", "2", "3"}},
			{Name: "b", Values: []string{"x", "y"}},
		}
		first, err := ExpandCommands(templates, params)
		if err != nil {
			t.Fatal(err)
		}
		second, err := ExpandCommands(templates, params)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Error("ExpandCommands() is not deterministic across invocations")
		}
	})
}
