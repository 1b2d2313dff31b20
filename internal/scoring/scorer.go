package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
)

// CandidateScore is the suitability of one candidate for a task.
type CandidateScore struct {
	CandidateID string                 `json:"candidate_id"`
	Inputs      []float64              `json:"inputs"`
	Capability  FactorResult           `json:"capability"`
	Value       float64                `json:"value"`
	Status      fuzzy.Status           `json:"status"`
	Warnings    []fuzzy.DomainMismatch `json:"warnings,omitempty"`
	RuleBase    string                 `json:"rule_base"`
	Revision    int                    `json:"revision"`
}

// Snapshot is an engine together with the revision it was installed as.
// Snapshots are never modified after they are published.
type Snapshot struct {
	Engine   *fuzzy.Engine
	Revision int
}

// Scored is a result attributed to the snapshot that computed it.
type Scored struct {
	fuzzy.Result
	RuleBase string
	Revision int
}

// ScoredBatch holds results that were all computed by one snapshot.
type ScoredBatch struct {
	Results  []fuzzy.Result
	RuleBase string
	Revision int
}

// Scorer evaluates suitability against the current engine. The engine can be
// replaced at any time; each evaluation sees exactly one snapshot and reports
// which one.
type Scorer struct {
	current atomic.Pointer[Snapshot]
	workers int
	logger  *slog.Logger
}

// NewScorer creates a Scorer. workers bounds batch parallelism; zero or less
// means unbounded.
func NewScorer(engine *fuzzy.Engine, workers int, logger *slog.Logger) *Scorer {
	s := &Scorer{workers: workers, logger: logger}
	s.current.Store(&Snapshot{Engine: engine, Revision: 1})
	return s
}

// Current returns the snapshot new evaluations will use.
func (s *Scorer) Current() *Snapshot { return s.current.Load() }

func (s *Scorer) Engine() *fuzzy.Engine { return s.Current().Engine }

// Revision counts the rule bases this scorer has served, starting at 1.
func (s *Scorer) Revision() int { return s.Current().Revision }

// Swap installs a new engine and returns the new revision.
func (s *Scorer) Swap(engine *fuzzy.Engine) int {
	for {
		old := s.current.Load()
		next := &Snapshot{Engine: engine, Revision: old.Revision + 1}
		if s.current.CompareAndSwap(old, next) {
			ruleBaseReloadsTotal.Inc()
			return next.Revision
		}
	}
}

// Score evaluates one input vector.
func (s *Scorer) Score(inputs []float64) (Scored, error) {
	snap := s.Current()
	start := time.Now()
	res, err := snap.Engine.Evaluate(inputs)
	evaluationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return Scored{}, err
	}
	s.observe(inputs, res)
	return Scored{Result: res, RuleBase: snap.Engine.Name(), Revision: snap.Revision}, nil
}

// ScoreBatch evaluates independent input vectors in parallel. All vectors are
// evaluated against the same snapshot.
func (s *Scorer) ScoreBatch(ctx context.Context, inputs [][]float64) (ScoredBatch, error) {
	snap := s.Current()
	start := time.Now()
	results, err := snap.Engine.EvaluateBatch(ctx, inputs, s.workers)
	if err != nil {
		return ScoredBatch{}, err
	}
	if len(inputs) > 0 {
		per := time.Since(start).Seconds() / float64(len(inputs))
		for i := range results {
			evaluationSeconds.Observe(per)
			s.observe(inputs[i], results[i])
		}
	}
	return ScoredBatch{Results: results, RuleBase: snap.Engine.Name(), Revision: snap.Revision}, nil
}

func (s *Scorer) ScoreCandidate(task Task, c Candidate) (CandidateScore, error) {
	inputs := c.Inputs(task)
	res, err := s.Score(inputs)
	if err != nil {
		return CandidateScore{}, fmt.Errorf("candidate %s: %w", c.ID, err)
	}
	return candidateScore(task, c, inputs, res), nil
}

// ScoreCandidates scores every candidate and returns them best first.
func (s *Scorer) ScoreCandidates(ctx context.Context, task Task, candidates []Candidate) ([]CandidateScore, error) {
	inputs := make([][]float64, len(candidates))
	for i, c := range candidates {
		inputs[i] = c.Inputs(task)
	}
	batch, err := s.ScoreBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}

	scores := make([]CandidateScore, len(candidates))
	for i, c := range candidates {
		scores[i] = candidateScore(task, c, inputs[i], Scored{
			Result:   batch.Results[i],
			RuleBase: batch.RuleBase,
			Revision: batch.Revision,
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Value > scores[j].Value
	})
	return scores, nil
}

func candidateScore(task Task, c Candidate, inputs []float64, res Scored) CandidateScore {
	return CandidateScore{
		CandidateID: c.ID,
		Inputs:      inputs,
		Capability:  CapabilityMatch(task, c),
		Value:       res.Value,
		Status:      res.Status,
		Warnings:    res.Warnings,
		RuleBase:    res.RuleBase,
		Revision:    res.Revision,
	}
}

func (s *Scorer) observe(inputs []float64, res fuzzy.Result) {
	evaluationsTotal.WithLabelValues(string(res.Status)).Inc()
	for _, w := range res.Warnings {
		domainMismatchesTotal.WithLabelValues(w.Variable).Inc()
		s.logger.Warn("input outside domain",
			"variable", w.Variable, "value", w.Value, "min", w.Min, "max", w.Max)
	}
	if res.Defaulted() {
		s.logger.Info("no rule fired, using fallback output", "inputs", inputs, "value", res.Value)
	}
}
