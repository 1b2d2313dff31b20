package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
	"github.com/MikeSquared-Agency/Suitability/internal/hermes"
	"github.com/MikeSquared-Agency/Suitability/internal/scoring"
	"github.com/MikeSquared-Agency/Suitability/internal/store"
)

const maxBatchSize = 10000

type EvaluateHandler struct {
	scorer *scoring.Scorer
	store  store.Store
	hermes hermes.Client
	logger *slog.Logger
}

func NewEvaluateHandler(sc *scoring.Scorer, s store.Store, h hermes.Client, logger *slog.Logger) *EvaluateHandler {
	return &EvaluateHandler{scorer: sc, store: s, hermes: h, logger: logger}
}

type EvaluateRequest struct {
	Inputs      []float64 `json:"inputs"`
	CandidateID string    `json:"candidate_id,omitempty"`
	TaskID      string    `json:"task_id,omitempty"`
}

type EvaluateResponse struct {
	ID        string                 `json:"id,omitempty"`
	RuleBase  string                 `json:"rule_base"`
	Revision  int                    `json:"revision"`
	Value     float64                `json:"value"`
	Status    fuzzy.Status           `json:"status"`
	Strengths []float64              `json:"strengths"`
	Warnings  []fuzzy.DomainMismatch `json:"warnings,omitempty"`
}

// Evaluate scores a single input vector.
// POST /api/v1/evaluate
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.scorer.Score(req.Inputs)
	if err != nil {
		writeEvaluationError(w, err)
		return
	}

	resp := EvaluateResponse{
		RuleBase:  res.RuleBase,
		Revision:  res.Revision,
		Value:     res.Value,
		Status:    res.Status,
		Strengths: res.Strengths,
		Warnings:  res.Warnings,
	}
	resp.ID = h.record(r.Context(), &store.Evaluation{
		RuleBase:    resp.RuleBase,
		Revision:    resp.Revision,
		CandidateID: req.CandidateID,
		TaskID:      req.TaskID,
		Inputs:      req.Inputs,
		Value:       res.Value,
		Status:      res.Status,
		Warnings:    res.Warnings,
	})
	writeJSON(w, http.StatusOK, resp)
}

type BatchRequest struct {
	Inputs [][]float64 `json:"inputs"`
}

type BatchResult struct {
	Value    float64                `json:"value"`
	Status   fuzzy.Status           `json:"status"`
	Warnings []fuzzy.DomainMismatch `json:"warnings,omitempty"`
}

// Batch scores many input vectors in parallel. Batch results are not
// recorded in evaluation history.
// POST /api/v1/evaluate/batch
func (h *EvaluateHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Inputs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "batch exceeds "+strconv.Itoa(maxBatchSize)+" input vectors")
		return
	}

	batch, err := h.scorer.ScoreBatch(r.Context(), req.Inputs)
	if err != nil {
		writeEvaluationError(w, err)
		return
	}

	out := make([]BatchResult, len(batch.Results))
	for i, res := range batch.Results {
		out[i] = BatchResult{Value: res.Value, Status: res.Status, Warnings: res.Warnings}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rule_base": batch.RuleBase,
		"revision":  batch.Revision,
		"results":   out,
	})
}

type CandidatesRequest struct {
	TaskID               string              `json:"task_id,omitempty"`
	RequiredCapabilities []string            `json:"required_capabilities,omitempty"`
	Candidates           []scoring.Candidate `json:"candidates"`
}

// Candidates ranks candidates for a task, best first.
// POST /api/v1/candidates/score
func (h *EvaluateHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	var req CandidatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Candidates) == 0 {
		writeError(w, http.StatusBadRequest, "candidates required")
		return
	}
	if len(req.Candidates) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "too many candidates")
		return
	}

	task := scoring.Task{ID: req.TaskID, RequiredCapabilities: req.RequiredCapabilities}
	scores, err := h.scorer.ScoreCandidates(r.Context(), task, req.Candidates)
	if err != nil {
		writeEvaluationError(w, err)
		return
	}

	// One batch, one snapshot: every score carries the same attribution.
	name, rev := scores[0].RuleBase, scores[0].Revision
	for _, s := range scores {
		h.record(r.Context(), &store.Evaluation{
			RuleBase:    s.RuleBase,
			Revision:    s.Revision,
			CandidateID: s.CandidateID,
			TaskID:      req.TaskID,
			Inputs:      s.Inputs,
			Value:       s.Value,
			Status:      s.Status,
			Warnings:    s.Warnings,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"task_id":    req.TaskID,
		"rule_base":  name,
		"revision":   rev,
		"candidates": scores,
	})
}

type explainSet struct {
	Name   string  `json:"name"`
	Degree float64 `json:"degree"`
}

type explainInput struct {
	Name  string       `json:"name"`
	Value float64      `json:"value"`
	Sets  []explainSet `json:"sets"`
}

type explainRule struct {
	Index      int     `json:"index"`
	Strength   float64 `json:"strength"`
	Consequent string  `json:"consequent"`
}

// Explain reports the membership of each input in each set and the firing
// strength of every rule. Only rules that fired are listed.
// GET /api/v1/explain?x=1&x=2...
func (h *EvaluateHandler) Explain(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query()["x"]
	inputs := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid x: "+s)
			return
		}
		inputs[i] = v
	}

	snap := h.scorer.Current()
	res, err := snap.Engine.Evaluate(inputs)
	if err != nil {
		writeEvaluationError(w, err)
		return
	}
	rb := snap.Engine.RuleBase()

	in := make([]explainInput, len(rb.Inputs))
	for i, v := range rb.Inputs {
		in[i] = explainInput{Name: v.Name, Value: inputs[i], Sets: make([]explainSet, len(v.Sets))}
		for j, set := range v.Sets {
			in[i].Sets[j] = explainSet{Name: set.Name, Degree: res.Memberships[i][j]}
		}
	}
	var fired []explainRule
	for k, s := range res.Strengths {
		if s == 0 {
			continue
		}
		fired = append(fired, explainRule{
			Index:      k + 1,
			Strength:   s,
			Consequent: rb.Output.Sets[rb.Rules[k].Consequent].Name,
		})
	}
	if fired == nil {
		fired = []explainRule{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rule_base": rb.Name,
		"revision":  snap.Revision,
		"value":     res.Value,
		"status":    res.Status,
		"inputs":    in,
		"rules":     fired,
		"warnings":  res.Warnings,
	})
}

// record persists and announces an evaluation. It returns the evaluation ID,
// or "" when neither history nor events are configured.
func (h *EvaluateHandler) record(ctx context.Context, e *store.Evaluation) string {
	if h.store == nil && h.hermes == nil {
		return ""
	}
	if h.store != nil {
		if err := h.store.RecordEvaluation(ctx, e); err != nil {
			h.logger.Warn("failed to record evaluation", "error", err)
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if h.hermes != nil {
		subject := hermes.SubjectEvaluationComputed(e.ID.String())
		if e.Status == fuzzy.StatusDefaulted {
			subject = hermes.SubjectEvaluationDefaulted(e.ID.String())
		}
		_ = h.hermes.Publish(subject, hermes.EvaluationEvent{
			EvaluationID: e.ID.String(),
			RuleBase:     e.RuleBase,
			CandidateID:  e.CandidateID,
			TaskID:       e.TaskID,
			Inputs:       e.Inputs,
			Value:        e.Value,
			Status:       string(e.Status),
			Warnings:     len(e.Warnings),
			Timestamp:    e.CreatedAt,
		})
	}
	return e.ID.String()
}

func writeEvaluationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fuzzy.ErrInputArity), errors.Is(err, fuzzy.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
