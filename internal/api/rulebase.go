package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
	"github.com/MikeSquared-Agency/Suitability/internal/rulebase"
	"github.com/MikeSquared-Agency/Suitability/internal/scoring"
)

const maxRuleBaseBytes = 1 << 20

type RuleBaseHandler struct {
	scorer   *scoring.Scorer
	reloader *scoring.Reloader
}

func NewRuleBaseHandler(sc *scoring.Scorer, rl *scoring.Reloader) *RuleBaseHandler {
	return &RuleBaseHandler{scorer: sc, reloader: rl}
}

// Get returns the active rule base as YAML, or as JSON when the client asks
// for it.
// GET /api/v1/rulebase
func (h *RuleBaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap := h.scorer.Current()
	rb := snap.Engine.RuleBase()
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"revision":  snap.Revision,
			"rule_base": rulebase.FromRuleBase(rb),
		})
		return
	}

	data, err := rulebase.Marshal(rb)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Put validates a rule-base document (YAML or JSON) and makes it active.
// PUT /api/v1/rulebase
func (h *RuleBaseHandler) Put(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRuleBaseBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(data) > maxRuleBaseBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "rule base too large")
		return
	}

	rb, rev, err := h.reloader.Apply(r.Context(), data, "api")
	if err != nil {
		if errors.Is(err, fuzzy.ErrMalformedRuleBase) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":     rb.Name,
		"revision": rev,
		"inputs":   len(rb.Inputs),
		"rules":    len(rb.Rules),
	})
}
