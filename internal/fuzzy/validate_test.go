package fuzzy

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateAcceptsTestRuleBase(t *testing.T) {
	if err := testRuleBase().Validate(); err != nil {
		t.Fatalf("expected valid rule base, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rb *RuleBase)
		want   string
	}{
		{"no inputs", func(rb *RuleBase) {
			rb.Inputs = nil
			rb.Rules = nil
		}, "no input variables"},
		{"inverted domain", func(rb *RuleBase) { rb.Inputs[0].Min = 20 }, "invalid domain"},
		{"infinite domain", func(rb *RuleBase) { rb.Output.Max = math.Inf(1) }, "invalid domain"},
		{"no sets", func(rb *RuleBase) { rb.Output.Sets = nil; rb.Rules = nil }, "no fuzzy sets"},
		{"empty set name", func(rb *RuleBase) { rb.Inputs[0].Sets[1].Name = "" }, "empty name"},
		{"duplicate set name", func(rb *RuleBase) { rb.Inputs[0].Sets[1].Name = "cold" }, "duplicate set name"},
		{"unknown shape", func(rb *RuleBase) { rb.Inputs[1].Sets[0].Shape = "bell" }, "unknown shape"},
		{"wrong arity", func(rb *RuleBase) { rb.Output.Sets[2].Params = []float64{1, 2} }, "has 2 params"},
		{"unordered params", func(rb *RuleBase) { rb.Output.Sets[2].Params = []float64{5, 2.5, 7.5} }, "not ordered"},
		{"nan param", func(rb *RuleBase) { rb.Output.Sets[2].Params[0] = math.NaN() }, "not finite"},
		{"short antecedent", func(rb *RuleBase) { rb.Rules[0].Antecedent = []Clause{Is(0)} }, "antecedent has 1 clauses"},
		{"set out of range", func(rb *RuleBase) { rb.Rules[1].Antecedent[0] = Is(3) }, "references set 3 of 3"},
		{"negative set", func(rb *RuleBase) { rb.Rules[1].Antecedent[1] = Is(-1) }, "references set -1"},
		{"consequent out of range", func(rb *RuleBase) { rb.Rules[2].Consequent = 4 }, "consequent references set 4"},
		{"weight above one", func(rb *RuleBase) { rb.Rules[0].Weight = 1.5 }, "weight 1.5"},
		{"negative weight", func(rb *RuleBase) { rb.Rules[0].Weight = -0.1 }, "weight -0.1"},
		{"nan weight", func(rb *RuleBase) { rb.Rules[0].Weight = math.NaN() }, "weight NaN"},
		{"unknown connective", func(rb *RuleBase) { rb.Rules[0].Connective = "xor" }, "unknown connective"},
		{"unknown and", func(rb *RuleBase) { rb.Methods.And = "lukasiewicz" }, "unknown and method"},
		{"unknown or", func(rb *RuleBase) { rb.Methods.Or = "" }, "unknown or method"},
		{"unknown implication", func(rb *RuleBase) { rb.Methods.Implication = "godel" }, "unknown implication method"},
		{"unknown aggregation", func(rb *RuleBase) { rb.Methods.Aggregation = "avg" }, "unknown aggregation method"},
		{"unknown defuzzification", func(rb *RuleBase) { rb.Methods.Defuzzification = "wtaver" }, "unknown defuzzification method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := testRuleBase()
			tt.mutate(&rb)

			err := rb.Validate()
			if !errors.Is(err, ErrMalformedRuleBase) {
				t.Fatalf("expected ErrMalformedRuleBase, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
			if _, err := NewEngine(rb, DefaultOptions()); !errors.Is(err, ErrMalformedRuleBase) {
				t.Errorf("NewEngine accepted an invalid rule base: %v", err)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	rb := testRuleBase()
	rb.Rules[0].Weight = 2
	rb.Rules[1].Consequent = 9
	rb.Methods.And = "nope"

	err := rb.Validate()
	for _, want := range []string{"rule 1: weight", "rule 2: consequent", "unknown and method"} {
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestNewEngineRejectsOptions(t *testing.T) {
	eleven := 11.0
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"single sample", Options{Resolution: 1, UnconstrainedStrength: 1}, "resolution 1"},
		{"too many samples", Options{Resolution: MaxResolution + 1, UnconstrainedStrength: 1}, "above limit"},
		{"strength above one", Options{Resolution: 100, UnconstrainedStrength: 2}, "unconstrained strength 2"},
		{"default outside domain", Options{Resolution: 100, UnconstrainedStrength: 1, DefaultOutput: &eleven}, "default output 11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(testRuleBase(), tt.opts)
			if !errors.Is(err, ErrMalformedRuleBase) {
				t.Fatalf("expected ErrMalformedRuleBase, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDegenerateParamsAreValid(t *testing.T) {
	rb := testRuleBase()
	rb.Inputs[0].Sets[0] = triSet("cold", 0, 0, 0)
	rb.Inputs[0].Sets[2] = FuzzySet{Name: "hot", Shape: ShapeTrapezoidal, Params: []float64{5, 10, 10, 10}}
	if err := rb.Validate(); err != nil {
		t.Errorf("expected degenerate sets to validate, got %v", err)
	}
}
