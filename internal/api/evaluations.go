package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
	"github.com/MikeSquared-Agency/Suitability/internal/store"
)

type EvaluationsHandler struct {
	store store.Store
}

func NewEvaluationsHandler(s store.Store) *EvaluationsHandler {
	return &EvaluationsHandler{store: s}
}

func (h *EvaluationsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "evaluation history disabled")
		return
	}

	q := r.URL.Query()
	filter := store.EvaluationFilter{
		RuleBase:    q.Get("rule_base"),
		CandidateID: q.Get("candidate_id"),
		TaskID:      q.Get("task_id"),
	}
	if s := q.Get("status"); s != "" {
		status := fuzzy.Status(s)
		if status != fuzzy.StatusComputed && status != fuzzy.StatusDefaulted {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = &status
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		*dst = n
	}

	evals, err := h.store.ListEvaluations(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if evals == nil {
		evals = []*store.Evaluation{}
	}
	writeJSON(w, http.StatusOK, evals)
}

func (h *EvaluationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "evaluation history disabled")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}

	e, err := h.store.GetEvaluation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "evaluation not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}
