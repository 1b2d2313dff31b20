// Package rulebase reads and writes rule-base definitions in YAML (or JSON)
// and ships the default multi-robot task allocation rule base.
package rulebase

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
)

//go:embed mrta.yaml
var mrtaYAML []byte

// Document is the on-disk form of a rule base. Rule rows use 1-based set
// indices with 0 as the wildcard.
type Document struct {
	Name    string     `yaml:"name" json:"name"`
	Methods Methods    `yaml:"methods" json:"methods"`
	Inputs  []Variable `yaml:"inputs" json:"inputs"`
	Output  Variable   `yaml:"output" json:"output"`
	Rules   []Rule     `yaml:"rules" json:"rules"`
}

// Methods left empty fall back to fuzzy.DefaultMethods.
type Methods struct {
	And             string `yaml:"and,omitempty" json:"and,omitempty"`
	Or              string `yaml:"or,omitempty" json:"or,omitempty"`
	Implication     string `yaml:"implication,omitempty" json:"implication,omitempty"`
	Aggregation     string `yaml:"aggregation,omitempty" json:"aggregation,omitempty"`
	Defuzzification string `yaml:"defuzzification,omitempty" json:"defuzzification,omitempty"`
}

type Variable struct {
	Name  string    `yaml:"name" json:"name"`
	Range []float64 `yaml:"range,flow" json:"range"`
	Sets  []Set     `yaml:"sets" json:"sets"`
}

// Set shape defaults to triangular.
type Set struct {
	Name   string    `yaml:"name" json:"name"`
	Shape  string    `yaml:"shape,omitempty" json:"shape,omitempty"`
	Params []float64 `yaml:"params,flow" json:"params"`
}

// Rule weight defaults to 1 and connective to "and".
type Rule struct {
	If         []int    `yaml:"if,flow" json:"if"`
	Then       int      `yaml:"then" json:"then"`
	Weight     *float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
	Connective string   `yaml:"connective,omitempty" json:"connective,omitempty"`
}

// Default returns the embedded 28-rule suitability rule base.
func Default() fuzzy.RuleBase {
	rb, err := Parse(mrtaYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rule base: %v", err))
	}
	return rb
}

// DefaultYAML returns the embedded rule-base definition.
func DefaultYAML() []byte {
	return bytes.Clone(mrtaYAML)
}

// Load reads and validates a rule base from path.
func Load(path string) (fuzzy.RuleBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fuzzy.RuleBase{}, fmt.Errorf("read rule base: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON document and validates the result.
// Unknown fields are rejected.
func Parse(data []byte) (fuzzy.RuleBase, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return fuzzy.RuleBase{}, fmt.Errorf("%w: empty document", fuzzy.ErrMalformedRuleBase)
		}
		return fuzzy.RuleBase{}, fmt.Errorf("%w: parse: %v", fuzzy.ErrMalformedRuleBase, err)
	}
	rb, err := doc.RuleBase()
	if err != nil {
		return fuzzy.RuleBase{}, err
	}
	if err := rb.Validate(); err != nil {
		return fuzzy.RuleBase{}, err
	}
	return rb, nil
}

// Marshal encodes rb as a YAML document.
func Marshal(rb fuzzy.RuleBase) ([]byte, error) {
	return yaml.Marshal(FromRuleBase(rb))
}

// RuleBase converts the document into engine types. It reports problems that
// cannot be expressed in fuzzy.RuleBase; everything else is left to Validate.
func (d Document) RuleBase() (fuzzy.RuleBase, error) {
	var errs []error

	defaults := fuzzy.DefaultMethods()
	rb := fuzzy.RuleBase{
		Name: d.Name,
		Methods: fuzzy.Methods{
			And:             fuzzy.AndMethod(orDefault(d.Methods.And, string(defaults.And))),
			Or:              fuzzy.OrMethod(orDefault(d.Methods.Or, string(defaults.Or))),
			Implication:     fuzzy.ImplicationMethod(orDefault(d.Methods.Implication, string(defaults.Implication))),
			Aggregation:     fuzzy.AggregationMethod(orDefault(d.Methods.Aggregation, string(defaults.Aggregation))),
			Defuzzification: fuzzy.DefuzzificationMethod(orDefault(d.Methods.Defuzzification, string(defaults.Defuzzification))),
		},
	}

	for _, v := range d.Inputs {
		fv, err := v.variable()
		if err != nil {
			errs = append(errs, err)
		}
		rb.Inputs = append(rb.Inputs, fv)
	}
	out, err := d.Output.variable()
	if err != nil {
		errs = append(errs, err)
	}
	rb.Output = out

	for i, r := range d.Rules {
		rule := fuzzy.Rule{
			Connective: fuzzy.Connective(orDefault(r.Connective, string(fuzzy.ConnectiveAnd))),
			Consequent: r.Then - 1,
			Weight:     1,
		}
		if r.Weight != nil {
			rule.Weight = *r.Weight
		}
		for _, idx := range r.If {
			switch {
			case idx == 0:
				rule.Antecedent = append(rule.Antecedent, fuzzy.Any())
			case idx > 0:
				rule.Antecedent = append(rule.Antecedent, fuzzy.Is(idx-1))
			default:
				errs = append(errs, fmt.Errorf("%w: rule %d: negated clause %d is not supported", fuzzy.ErrMalformedRuleBase, i+1, idx))
			}
		}
		rb.Rules = append(rb.Rules, rule)
	}

	if err := errors.Join(errs...); err != nil {
		return fuzzy.RuleBase{}, err
	}
	return rb, nil
}

func (v Variable) variable() (fuzzy.Variable, error) {
	if len(v.Range) != 2 {
		return fuzzy.Variable{}, fmt.Errorf("%w: variable %q: range needs [min, max], got %v", fuzzy.ErrMalformedRuleBase, v.Name, v.Range)
	}
	fv := fuzzy.Variable{Name: v.Name, Min: v.Range[0], Max: v.Range[1]}
	for _, s := range v.Sets {
		fv.Sets = append(fv.Sets, fuzzy.FuzzySet{
			Name:   s.Name,
			Shape:  fuzzy.Shape(orDefault(s.Shape, string(fuzzy.ShapeTriangular))),
			Params: s.Params,
		})
	}
	return fv, nil
}

// FromRuleBase converts engine types back into the on-disk form.
func FromRuleBase(rb fuzzy.RuleBase) Document {
	doc := Document{
		Name: rb.Name,
		Methods: Methods{
			And:             string(rb.Methods.And),
			Or:              string(rb.Methods.Or),
			Implication:     string(rb.Methods.Implication),
			Aggregation:     string(rb.Methods.Aggregation),
			Defuzzification: string(rb.Methods.Defuzzification),
		},
		Output: fromVariable(rb.Output),
	}
	for _, v := range rb.Inputs {
		doc.Inputs = append(doc.Inputs, fromVariable(v))
	}
	for _, r := range rb.Rules {
		row := Rule{
			If:         make([]int, len(r.Antecedent)),
			Then:       r.Consequent + 1,
			Connective: string(r.Connective),
		}
		w := r.Weight
		row.Weight = &w
		for i, c := range r.Antecedent {
			if !c.Wildcard() {
				row.If[i] = c.Set() + 1
			}
		}
		doc.Rules = append(doc.Rules, row)
	}
	return doc
}

func fromVariable(v fuzzy.Variable) Variable {
	out := Variable{Name: v.Name, Range: []float64{v.Min, v.Max}}
	for _, s := range v.Sets {
		out.Sets = append(out.Sets, Set{
			Name:   s.Name,
			Shape:  string(s.Shape),
			Params: append([]float64(nil), s.Params...),
		})
	}
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
