package fuzzy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInputArity   = errors.New("input count does not match rule base")
	ErrInvalidInput = errors.New("input is not a finite number")
)

// Status tells callers whether a crisp value came from the aggregate or from
// the fallback used when no rule fired.
type Status string

const (
	StatusComputed  Status = "computed"
	StatusDefaulted Status = "defaulted"
)

// DomainMismatch flags an input outside its variable's declared domain.
// The input is still evaluated.
type DomainMismatch struct {
	Variable string  `json:"variable"`
	Value    float64 `json:"value"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Value  float64 `json:"value"`
	Status Status  `json:"status"`

	// Memberships[i][j] is the degree of input i in set j.
	Memberships [][]float64 `json:"memberships"`
	// Strengths[k] is the weighted firing strength of rule k.
	Strengths []float64        `json:"strengths"`
	Warnings  []DomainMismatch `json:"warnings,omitempty"`
}

func (r Result) Defaulted() bool { return r.Status == StatusDefaulted }

// MaxResolution bounds Options.Resolution. Each output set keeps one float64
// per sample, so the grid is allocated len(sets)+1 times.
const MaxResolution = 1_000_000

// Options are the engine parameters that are not part of the rule base.
type Options struct {
	// Resolution is the number of evenly spaced output samples, endpoints included,
	// between 2 and MaxResolution. Zero-width output sets add their own point on top.
	Resolution int
	// UnconstrainedStrength is the firing strength, before weighting, of a rule
	// whose clauses are all wildcards.
	UnconstrainedStrength float64
	// DefaultOutput is returned with StatusDefaulted when the aggregate is empty.
	// Nil means the output domain midpoint.
	DefaultOutput *float64
}

// DefaultOptions samples the output at 1001 points, which keeps centroids
// stable to within 1e-2 of finer grids.
func DefaultOptions() Options {
	return Options{
		Resolution:            1001,
		UnconstrainedStrength: 1,
	}
}

// Engine evaluates a validated rule base. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	rb   RuleBase
	opts Options

	connectives map[Connective]binaryOp
	implication binaryOp
	aggregation binaryOp
	defuzz      defuzzifier

	samples     []float64
	consequents [][]float64 // output set degrees at each sample
	fallback    float64
}

// NewEngine validates rb and opts and prepares the output sampling grid.
// The rule base is copied, so later changes by the caller have no effect.
func NewEngine(rb RuleBase, opts Options) (*Engine, error) {
	if err := errors.Join(append([]error{rb.Validate()}, opts.validate(rb.Output)...)...); err != nil {
		return nil, err
	}

	rb = rb.clone()
	e := &Engine{
		rb:   rb,
		opts: opts,
		connectives: map[Connective]binaryOp{
			ConnectiveAnd: andMethods[rb.Methods.And],
			ConnectiveOr:  orMethods[rb.Methods.Or],
		},
		implication: implicationMethods[rb.Methods.Implication],
		aggregation: aggregationMethods[rb.Methods.Aggregation],
		defuzz:      defuzzMethods[rb.Methods.Defuzzification],
		samples:     sampleGrid(rb.Output, opts.Resolution),
		fallback:    rb.Output.Midpoint(),
	}
	if opts.DefaultOutput != nil {
		e.fallback = *opts.DefaultOutput
	}

	e.consequents = make([][]float64, len(rb.Output.Sets))
	for k, set := range rb.Output.Sets {
		mu := make([]float64, len(e.samples))
		for i, y := range e.samples {
			mu[i] = Membership(set, y)
		}
		e.consequents[k] = mu
	}
	return e, nil
}

// sampleGrid spaces n points over the output domain and adds the point of every
// zero-width set inside it, so spike consequents are always sampled.
func sampleGrid(out Variable, n int) []float64 {
	ys := make([]float64, n, n+len(out.Sets))
	step := (out.Max - out.Min) / float64(n-1)
	for i := range ys {
		ys[i] = out.Min + float64(i)*step
	}
	ys[n-1] = out.Max
	for _, s := range out.Sets {
		if p, ok := degeneratePoint(s); ok && out.Contains(p) {
			ys = append(ys, p)
		}
	}
	slices.Sort(ys)
	return slices.Compact(ys)
}

// RuleBase returns a copy of the rule base the engine evaluates.
func (e *Engine) RuleBase() RuleBase { return e.rb.clone() }

// Options returns the options the engine was built with.
func (e *Engine) Options() Options { return e.opts }

func (e *Engine) Name() string { return e.rb.Name }

// Evaluate runs fire, implicate, aggregate and defuzzify for one input vector
// given in the rule base's input order.
func (e *Engine) Evaluate(inputs []float64) (Result, error) {
	if len(inputs) != len(e.rb.Inputs) {
		return Result{}, fmt.Errorf("%w: got %d, want %d", ErrInputArity, len(inputs), len(e.rb.Inputs))
	}

	res := Result{
		Memberships: make([][]float64, len(inputs)),
		Strengths:   make([]float64, len(e.rb.Rules)),
	}
	for i, x := range inputs {
		v := e.rb.Inputs[i]
		if !finite(x) {
			return Result{}, fmt.Errorf("%w: %s is %v", ErrInvalidInput, v.Name, x)
		}
		if !v.Contains(x) {
			res.Warnings = append(res.Warnings, DomainMismatch{Variable: v.Name, Value: x, Min: v.Min, Max: v.Max})
		}
		row := make([]float64, len(v.Sets))
		for j, s := range v.Sets {
			row[j] = Membership(s, x)
		}
		res.Memberships[i] = row
	}

	for k, r := range e.rb.Rules {
		res.Strengths[k] = e.fire(r, res.Memberships)
	}
	agg := e.aggregate(res.Strengths)

	if v, ok := e.defuzz(e.samples, agg); ok {
		res.Value, res.Status = v, StatusComputed
	} else {
		res.Value, res.Status = e.fallback, StatusDefaulted
	}
	return res, nil
}

// fire combines the memberships of a rule's constrained clauses and applies
// the rule weight.
func (e *Engine) fire(r Rule, memberships [][]float64) float64 {
	combine := e.connectives[r.Connective]
	var strength float64
	constrained := false
	for i, c := range r.Antecedent {
		if c.wildcard {
			continue
		}
		d := memberships[i][c.set]
		if !constrained {
			strength, constrained = d, true
			continue
		}
		strength = combine(strength, d)
	}
	if !constrained {
		strength = e.opts.UnconstrainedStrength
	}
	return clamp(strength*r.Weight, 0, 1)
}

// aggregate clips each fired rule's consequent at its strength and folds the
// clipped regions into one degree per output sample.
func (e *Engine) aggregate(strengths []float64) []float64 {
	agg := make([]float64, len(e.samples))
	for k, s := range strengths {
		if s == 0 {
			continue
		}
		mu := e.consequents[e.rb.Rules[k].Consequent]
		for i := range agg {
			agg[i] = e.aggregation(agg[i], e.implication(s, mu[i]))
		}
	}
	return agg
}

// EvaluateBatch evaluates independent input vectors concurrently with at most
// workers goroutines. workers <= 0 means no limit. The first error cancels the
// remaining work.
func (e *Engine) EvaluateBatch(ctx context.Context, inputs [][]float64, workers int) ([]Result, error) {
	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := e.Evaluate(in)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
