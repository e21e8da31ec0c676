package command

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeArgsDefaultsAndCanonicalForms(t *testing.T) {
	store := NewMetaStore(Commands)
	got, err := store.NormalizeArgs("gaussianNoise", []string{" 2.50 ", "", "25%"})
	if err != nil {
		t.Fatalf("NormalizeArgs: %v", err)
	}
	if want := []string{"2.5", "0", "0.25"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}

	got, err = store.NormalizeArgs("median", []string{"3"})
	if err != nil {
		t.Fatalf("NormalizeArgs: %v", err)
	}
	if want := []string{"3", ""}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeArgsRejects(t *testing.T) {
	store := NewMetaStore(Commands)
	cases := []struct {
		cmd  string
		args []string
	}{
		{"threshold", []string{"1.5"}},
		{"contrast", []string{"10", "300", "0", "0"}},
		{"saltPepper", []string{"0.1", "150%"}},
		{"average", []string{"-2"}},
		{"multiply", []string{"2", "3"}},
		{"gaussianNoise", nil},
		{"gaussianNoise", []string{"-1"}},
		{"median", []string{"1000000", "1000000"}},
		{"average", []string{"3", "256"}},
		{"multiply", []string{"NaN"}},
		{"multiply", []string{"+Inf"}},
		{"rayleighNoise", []string{"NaN", "1"}},
	}
	for _, c := range cases {
		if _, err := store.NormalizeArgs(c.cmd, c.args); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s %q: err = %v, want ErrInvalidArgument", c.cmd, c.args, err)
		}
	}
	if _, err := store.NormalizeArgs("blur", nil); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("unknown command err = %v", err)
	}
	var nilStore *MetaStore
	if _, err := nilStore.NormalizeArgs("negative", nil); err == nil {
		t.Fatalf("nil store accepted")
	}
}

func TestCommandHelp(t *testing.T) {
	store := NewMetaStore(Commands)
	tip, rules, err := store.GetCommandHelp("contrast")
	if err != nil {
		t.Fatalf("GetCommandHelp: %v", err)
	}
	if !strings.Contains(tip, "r1 (int, required)") {
		t.Fatalf("tooltip missing r1 line:\n%s", tip)
	}
	r := rules["r2"]
	if r.Type != ParamTypeInt || r.Min == nil || *r.Min != 0 || r.Max == nil || *r.Max != 255 {
		t.Fatalf("r2 rule = %+v", r)
	}

	tip, err = store.GetTooltip("add")
	if err != nil {
		t.Fatalf("GetTooltip: %v", err)
	}
	if !strings.Contains(tip, "Takes 2 images") || !strings.Contains(tip, "No parameters") {
		t.Fatalf("add tooltip = %q", tip)
	}

	if _, err := store.GetValidationRules("nope"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("unknown command err = %v", err)
	}
}

func TestRegistryIsConsistent(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Commands {
		if seen[c.Name] {
			t.Fatalf("duplicate command %s", c.Name)
		}
		seen[c.Name] = true
		if c.Inputs < 1 || c.Inputs > 2 {
			t.Errorf("%s: inputs = %d", c.Name, c.Inputs)
		}
		if !strings.HasPrefix(c.Usage, c.Name) {
			t.Errorf("%s: usage %q does not start with the name", c.Name, c.Usage)
		}
		optional := false
		for _, a := range c.Args {
			if a.Required && optional {
				t.Errorf("%s: required %s follows an optional argument", c.Name, a.Name)
			}
			optional = optional || !a.Required
		}
	}
}
