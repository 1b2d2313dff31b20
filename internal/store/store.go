package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
)

// Evaluation is one recorded suitability computation.
type Evaluation struct {
	ID          uuid.UUID              `json:"id"`
	RuleBase    string                 `json:"rule_base"`
	Revision    int                    `json:"revision"`
	CandidateID string                 `json:"candidate_id,omitempty"`
	TaskID      string                 `json:"task_id,omitempty"`
	Inputs      []float64              `json:"inputs"`
	Value       float64                `json:"value"`
	Status      fuzzy.Status           `json:"status"`
	Warnings    []fuzzy.DomainMismatch `json:"warnings,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type EvaluationFilter struct {
	RuleBase    string
	CandidateID string
	TaskID      string
	Status      *fuzzy.Status
	Limit       int
	Offset      int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (f EvaluationFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultListLimit
	case f.Limit > maxListLimit:
		return maxListLimit
	default:
		return f.Limit
	}
}

// RuleBaseRevision is a stored rule-base document. Revisions count up per name.
type RuleBaseRevision struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Revision  int       `json:"revision"`
	Document  []byte    `json:"-"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	RecordEvaluation(ctx context.Context, e *Evaluation) error
	GetEvaluation(ctx context.Context, id uuid.UUID) (*Evaluation, error)
	ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]*Evaluation, error)

	SaveRuleBase(ctx context.Context, rev *RuleBaseRevision) error
	GetLatestRuleBase(ctx context.Context, name string) (*RuleBaseRevision, error)

	Close() error
}
