package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedRuleBase wraps every problem found while validating a RuleBase
// or engine Options.
var ErrMalformedRuleBase = errors.New("malformed rule base")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRuleBase, fmt.Sprintf(format, args...))
}

// Validate checks structural invariants and returns all violations joined.
func (rb RuleBase) Validate() error {
	var errs []error

	if len(rb.Inputs) == 0 {
		errs = append(errs, malformed("no input variables"))
	}
	for i, v := range rb.Inputs {
		errs = append(errs, validateVariable(fmt.Sprintf("input %d (%s)", i, v.Name), v)...)
	}
	errs = append(errs, validateVariable(fmt.Sprintf("output (%s)", rb.Output.Name), rb.Output)...)
	errs = append(errs, rb.Methods.validate()...)

	for i, r := range rb.Rules {
		where := fmt.Sprintf("rule %d", i+1)
		if len(r.Antecedent) != len(rb.Inputs) {
			errs = append(errs, malformed("%s: antecedent has %d clauses, want %d", where, len(r.Antecedent), len(rb.Inputs)))
		} else {
			for j, c := range r.Antecedent {
				if c.wildcard {
					continue
				}
				if n := len(rb.Inputs[j].Sets); c.set < 0 || c.set >= n {
					errs = append(errs, malformed("%s: clause %d references set %d of %d", where, j, c.set, n))
				}
			}
		}
		if n := len(rb.Output.Sets); r.Consequent < 0 || r.Consequent >= n {
			errs = append(errs, malformed("%s: consequent references set %d of %d", where, r.Consequent, n))
		}
		if math.IsNaN(r.Weight) || r.Weight < 0 || r.Weight > 1 {
			errs = append(errs, malformed("%s: weight %v outside [0, 1]", where, r.Weight))
		}
		if r.Connective != ConnectiveAnd && r.Connective != ConnectiveOr {
			errs = append(errs, malformed("%s: unknown connective %q", where, r.Connective))
		}
	}

	return errors.Join(errs...)
}

func validateVariable(where string, v Variable) []error {
	var errs []error
	if v.Name == "" {
		errs = append(errs, malformed("%s: empty name", where))
	}
	if !finite(v.Min) || !finite(v.Max) || v.Min >= v.Max {
		errs = append(errs, malformed("%s: invalid domain [%v, %v]", where, v.Min, v.Max))
	}
	if len(v.Sets) == 0 {
		errs = append(errs, malformed("%s: no fuzzy sets", where))
	}
	seen := make(map[string]bool, len(v.Sets))
	for i, s := range v.Sets {
		if s.Name == "" {
			errs = append(errs, malformed("%s: set %d has empty name", where, i))
		} else if seen[s.Name] {
			errs = append(errs, malformed("%s: duplicate set name %q", where, s.Name))
		}
		seen[s.Name] = true

		def, ok := shapes[s.Shape]
		if !ok {
			errs = append(errs, malformed("%s: set %q has unknown shape %q", where, s.Name, s.Shape))
			continue
		}
		if len(s.Params) != def.arity {
			errs = append(errs, malformed("%s: set %q has %d params, %s takes %d", where, s.Name, len(s.Params), s.Shape, def.arity))
			continue
		}
		if err := def.validate(s.Params); err != nil {
			errs = append(errs, malformed("%s: set %q %v", where, s.Name, err))
		}
	}
	return errs
}

func (m Methods) validate() []error {
	var errs []error
	if _, ok := andMethods[m.And]; !ok {
		errs = append(errs, malformed("unknown and method %q", m.And))
	}
	if _, ok := orMethods[m.Or]; !ok {
		errs = append(errs, malformed("unknown or method %q", m.Or))
	}
	if _, ok := implicationMethods[m.Implication]; !ok {
		errs = append(errs, malformed("unknown implication method %q", m.Implication))
	}
	if _, ok := aggregationMethods[m.Aggregation]; !ok {
		errs = append(errs, malformed("unknown aggregation method %q", m.Aggregation))
	}
	if _, ok := defuzzMethods[m.Defuzzification]; !ok {
		errs = append(errs, malformed("unknown defuzzification method %q", m.Defuzzification))
	}
	return errs
}

func (o Options) validate(output Variable) []error {
	var errs []error
	if o.Resolution < 2 {
		errs = append(errs, malformed("resolution %d, need at least 2 samples", o.Resolution))
	}
	if o.Resolution > MaxResolution {
		errs = append(errs, malformed("resolution %d above limit %d", o.Resolution, MaxResolution))
	}
	if s := o.UnconstrainedStrength; math.IsNaN(s) || s < 0 || s > 1 {
		errs = append(errs, malformed("unconstrained strength %v outside [0, 1]", s))
	}
	if d := o.DefaultOutput; d != nil && !output.Contains(*d) {
		errs = append(errs, malformed("default output %v outside [%v, %v]", *d, output.Min, output.Max))
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
