package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
)

func TestEvaluationFilterLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, defaultListLimit},
		{-3, defaultListLimit},
		{10, 10},
		{maxListLimit, maxListLimit},
		{maxListLimit + 1, maxListLimit},
	}
	for _, tt := range tests {
		if got := (EvaluationFilter{Limit: tt.limit}).limit(); got != tt.want {
			t.Errorf("limit(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestEvaluationFilterDefaults(t *testing.T) {
	f := EvaluationFilter{}
	if f.Status != nil {
		t.Error("expected nil status filter")
	}
	if f.CandidateID != "" || f.RuleBase != "" {
		t.Error("expected empty filters")
	}
}

func TestEvaluationJSON(t *testing.T) {
	e := Evaluation{
		RuleBase: "mrta",
		Inputs:   []float64{1, 2, 3, 1},
		Value:    4.2,
		Status:   fuzzy.StatusComputed,
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["status"] != "computed" {
		t.Errorf("expected status computed, got %v", m["status"])
	}
	if _, ok := m["warnings"]; ok {
		t.Error("expected warnings to be omitted when empty")
	}
	if _, ok := m["candidate_id"]; ok {
		t.Error("expected candidate_id to be omitted when empty")
	}
}

func TestRuleBaseRevisionHidesDocument(t *testing.T) {
	rev := RuleBaseRevision{Name: "mrta", Revision: 3, Document: []byte("name: mrta")}
	data, err := json.Marshal(rev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	_ = json.Unmarshal(data, &m)
	if _, ok := m["Document"]; ok {
		t.Error("document bytes should not be serialised")
	}
	if m["revision"] != float64(3) {
		t.Errorf("expected revision 3, got %v", m["revision"])
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"unique", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"foreign key", &pgconn.PgError{Code: "23503"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
