package fuzzy

import "fmt"

// Shape names a membership function family.
type Shape string

const (
	ShapeTriangular  Shape = "triangular"
	ShapeTrapezoidal Shape = "trapezoidal"
)

// FuzzySet is one named linguistic value of a variable.
type FuzzySet struct {
	Name   string    `json:"name"`
	Shape  Shape     `json:"shape"`
	Params []float64 `json:"params"`
}

type shapeDef struct {
	arity    int
	validate func(p []float64) error
	eval     func(p []float64, x float64) float64
}

var shapes = map[Shape]shapeDef{
	ShapeTriangular:  {arity: 3, validate: ordered, eval: triangular},
	ShapeTrapezoidal: {arity: 4, validate: ordered, eval: trapezoidal},
}

// ordered accepts finite, non-decreasing parameters. Equal neighbours give
// vertical edges or single-point sets.
func ordered(p []float64) error {
	for k, v := range p {
		if !finite(v) {
			return fmt.Errorf("param %d is not finite", k)
		}
		if k > 0 && v < p[k-1] {
			return fmt.Errorf("params %v are not ordered", p)
		}
	}
	return nil
}

// Membership returns the degree in [0, 1] to which x belongs to set.
// Values outside the variable's domain are evaluated geometrically.
// An unknown shape or wrong parameter count yields 0; NewEngine rejects both.
func Membership(set FuzzySet, x float64) float64 {
	def, ok := shapes[set.Shape]
	if !ok || len(set.Params) != def.arity {
		return 0
	}
	return def.eval(set.Params, x)
}

// triangular handles degenerate edges: a == b gives 1 at a, b == c gives 1 at c,
// and a == b == c is an indicator of the single point.
func triangular(p []float64, x float64) float64 {
	a, b, c := p[0], p[1], p[2]
	switch {
	case x == b:
		return 1
	case x <= a || x >= c:
		return 0
	case x < b:
		return (x - a) / (b - a)
	default:
		return (c - x) / (c - b)
	}
}

func trapezoidal(p []float64, x float64) float64 {
	a, b, c, d := p[0], p[1], p[2], p[3]
	switch {
	case x >= b && x <= c:
		return 1
	case x <= a || x >= d:
		return 0
	case x < b:
		return (x - a) / (b - a)
	default:
		return (d - x) / (d - c)
	}
}

// degeneratePoint reports the single point of a zero-width set.
func degeneratePoint(set FuzzySet) (float64, bool) {
	if len(set.Params) == 0 {
		return 0, false
	}
	v := set.Params[0]
	for _, p := range set.Params[1:] {
		if p != v {
			return 0, false
		}
	}
	return v, true
}
