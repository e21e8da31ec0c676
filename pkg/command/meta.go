package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidArgument is returned when a textual argument cannot be parsed or
// falls outside its declared bounds.
var ErrInvalidArgument = errors.New("invalid argument")

// ParamType is a small enum for parameter types used in metadata.
type ParamType string

const (
	ParamTypeInt         ParamType = "int"
	ParamTypeFloat       ParamType = "float"
	ParamTypeProbability ParamType = "probability"
)

// ValidationRule is a machine-friendly representation of the constraints
// that a UI or client can use to validate input before invoking a command.
type ValidationRule struct {
	Type     ParamType `json:"type"`
	Required bool      `json:"required"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Example  string    `json:"example,omitempty"`
	Hint     string    `json:"hint,omitempty"`
}

// parseProbability parses "0.25" or "25%" and returns the fraction as a string.
func parseProbability(s string) (string, error) {
	s = strings.TrimSpace(s)
	if raw, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return "", fmt.Errorf("invalid percent value: %q", s)
		}
		return strconv.FormatFloat(f/100, 'f', -1, 64), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", fmt.Errorf("invalid probability: %q", s)
	}
	return s, nil
}

// GenerateTooltip produces a help string from a CommandSpec.
func GenerateTooltip(c CommandSpec) string {
	var sb strings.Builder
	if c.Description != "" {
		sb.WriteString(c.Description)
	} else {
		sb.WriteString("No description")
	}
	if c.Inputs > 1 {
		fmt.Fprintf(&sb, " Takes %d images.", c.Inputs)
	}
	if len(c.Args) == 0 {
		sb.WriteString(" No parameters.")
		return sb.String()
	}
	sb.WriteString("\nParameters:\n")
	for _, a := range c.Args {
		req := "optional"
		if a.Required {
			req = "required"
		}
		fmt.Fprintf(&sb, "- %s (%s, %s)", a.Name, a.Type, req)
		if a.Description != "" {
			sb.WriteString(": " + a.Description)
		}
		if a.Default != "" {
			sb.WriteString(" (default: " + a.Default + ")")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// GenerateValidationRules creates ValidationRule entries from a CommandSpec.
func GenerateValidationRules(c CommandSpec) map[string]ValidationRule {
	rules := make(map[string]ValidationRule, len(c.Args))
	for _, a := range c.Args {
		var t ParamType
		switch strings.ToLower(a.Type) {
		case "int":
			t = ParamTypeInt
		case "probability", "percent":
			t = ParamTypeProbability
		default:
			t = ParamTypeFloat
		}
		rules[a.Name] = ValidationRule{Type: t, Required: a.Required, Min: a.Min, Max: a.Max, Hint: a.Description, Example: a.Default}
	}
	return rules
}

// MetaStore indexes command metadata by name for help and validation.
type MetaStore struct {
	Commands []CommandSpec
	byName   map[string]CommandSpec
}

// NewMetaStore creates a MetaStore from a CommandSpec list.
func NewMetaStore(cmds []CommandSpec) *MetaStore {
	m := &MetaStore{Commands: cmds, byName: make(map[string]CommandSpec, len(cmds))}
	for _, c := range cmds {
		m.byName[c.Name] = c
	}
	return m
}

// Spec returns the named command.
func (m *MetaStore) Spec(name string) (CommandSpec, error) {
	c, ok := m.byName[name]
	if !ok {
		return CommandSpec{}, fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}
	return c, nil
}

// GetTooltip returns the help string for a command.
func (m *MetaStore) GetTooltip(name string) (string, error) {
	c, err := m.Spec(name)
	if err != nil {
		return "", err
	}
	return GenerateTooltip(c), nil
}

// GetValidationRules returns validation rules for a command.
func (m *MetaStore) GetValidationRules(name string) (map[string]ValidationRule, error) {
	c, err := m.Spec(name)
	if err != nil {
		return nil, err
	}
	return GenerateValidationRules(c), nil
}

// GetCommandHelp returns both tooltip and validation rules for a command.
func (m *MetaStore) GetCommandHelp(name string) (string, map[string]ValidationRule, error) {
	c, err := m.Spec(name)
	if err != nil {
		return "", nil, err
	}
	return GenerateTooltip(c), GenerateValidationRules(c), nil
}

// NormalizeArgs normalizes args for the named command; see NormalizeArgs.
func (m *MetaStore) NormalizeArgs(name string, args []string) ([]string, error) {
	if m == nil {
		return nil, fmt.Errorf("metadata store is nil")
	}
	c, err := m.Spec(name)
	if err != nil {
		return nil, err
	}
	return NormalizeArgs(c, args)
}

// NormalizeArgs checks args against the command's parameter list and returns
// one canonical value per parameter. NaN and infinities are rejected. Omitted or blank optional parameters take
// their default; an optional parameter without a default is returned empty.
func NormalizeArgs(c CommandSpec, args []string) ([]string, error) {
	if len(args) > len(c.Args) {
		return nil, fmt.Errorf("%s takes at most %d arguments, got %d: %w", c.Name, len(c.Args), len(args), ErrInvalidArgument)
	}
	rules := GenerateValidationRules(c)
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		var raw string
		if i < len(args) {
			raw = strings.TrimSpace(args[i])
		}
		if raw == "" {
			if a.Required {
				return nil, fmt.Errorf("missing required parameter %s: %w", a.Name, ErrInvalidArgument)
			}
			out[i] = a.Default
			continue
		}
		vr := rules[a.Name]
		var f float64
		switch vr.Type {
		case ParamTypeInt:
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected integer, got %q: %w", a.Name, raw, ErrInvalidArgument)
			}
			f = float64(v)
			out[i] = strconv.FormatInt(v, 10)
		case ParamTypeProbability:
			n, err := parseProbability(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %v: %w", a.Name, err, ErrInvalidArgument)
			}
			f, _ = strconv.ParseFloat(n, 64)
			out[i] = n
		default:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected float, got %q: %w", a.Name, raw, ErrInvalidArgument)
			}
			f = v
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("parameter %s: %q is not a finite number: %w", a.Name, raw, ErrInvalidArgument)
		}
		if vr.Min != nil && f < *vr.Min {
			return nil, fmt.Errorf("parameter %s: %v < min %v: %w", a.Name, f, *vr.Min, ErrInvalidArgument)
		}
		if vr.Max != nil && f > *vr.Max {
			return nil, fmt.Errorf("parameter %s: %v > max %v: %w", a.Name, f, *vr.Max, ErrInvalidArgument)
		}
	}
	return out, nil
}
