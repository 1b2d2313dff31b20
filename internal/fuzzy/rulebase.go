package fuzzy

// Variable is an input or output with a domain and ordered fuzzy sets.
// Rules refer to sets by their position in Sets.
type Variable struct {
	Name string     `json:"name"`
	Min  float64    `json:"min"`
	Max  float64    `json:"max"`
	Sets []FuzzySet `json:"sets"`
}

// Midpoint returns the centre of the variable's domain.
func (v Variable) Midpoint() float64 {
	return v.Min + (v.Max-v.Min)/2
}

// Contains reports whether x lies within [Min, Max].
func (v Variable) Contains(x float64) bool {
	return x >= v.Min && x <= v.Max
}

// Clause is one antecedent position: either a fixed set index or a wildcard.
type Clause struct {
	set      int
	wildcard bool
}

// Is returns a clause requiring the input to belong to set index i.
func Is(i int) Clause { return Clause{set: i} }

// Any returns a wildcard clause that places no constraint on its input.
func Any() Clause { return Clause{wildcard: true} }

// Wildcard reports whether the clause is excluded from firing.
func (c Clause) Wildcard() bool { return c.wildcard }

// Set returns the referenced set index. It is meaningless for wildcards.
func (c Clause) Set() int { return c.set }

// Connective joins a rule's constrained clauses.
type Connective string

const (
	ConnectiveAnd Connective = "and"
	ConnectiveOr  Connective = "or"
)

// Rule maps one antecedent to an output set index.
type Rule struct {
	Antecedent []Clause
	Connective Connective
	Consequent int
	Weight     float64
}

// Unconstrained reports whether every clause is a wildcard.
func (r Rule) Unconstrained() bool {
	for _, c := range r.Antecedent {
		if !c.wildcard {
			return false
		}
	}
	return true
}

// RuleBase is the complete, immutable configuration consumed by an Engine.
type RuleBase struct {
	Name    string
	Inputs  []Variable
	Output  Variable
	Rules   []Rule
	Methods Methods
}

func (rb RuleBase) clone() RuleBase {
	out := RuleBase{
		Name:    rb.Name,
		Inputs:  make([]Variable, len(rb.Inputs)),
		Output:  cloneVariable(rb.Output),
		Rules:   make([]Rule, len(rb.Rules)),
		Methods: rb.Methods,
	}
	for i, v := range rb.Inputs {
		out.Inputs[i] = cloneVariable(v)
	}
	for i, r := range rb.Rules {
		r.Antecedent = append([]Clause(nil), r.Antecedent...)
		out.Rules[i] = r
	}
	return out
}

func cloneVariable(v Variable) Variable {
	sets := make([]FuzzySet, len(v.Sets))
	for i, s := range v.Sets {
		s.Params = append([]float64(nil), s.Params...)
		sets[i] = s
	}
	v.Sets = sets
	return v
}
