//go:build integration

package store

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE suitability_evaluations")
		_, _ = s.pool.Exec(ctx, "TRUNCATE suitability_rule_bases")
		s.Close()
	})

	return s
}

func TestRecordAndGetEvaluation(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	e := &Evaluation{
		RuleBase:    "mrta",
		Revision:    1,
		CandidateID: "robot-7",
		Inputs:      []float64{5, 12.5, 25, 1},
		Value:       3.84,
		Status:      fuzzy.StatusComputed,
		Warnings: []fuzzy.DomainMismatch{
			{Variable: "Load History", Value: 12, Min: 0, Max: 10},
		},
	}
	if err := s.RecordEvaluation(ctx, e); err != nil {
		t.Fatalf("record: %v", err)
	}
	if e.ID == uuid.Nil {
		t.Fatal("expected ID to be set")
	}

	got, err := s.GetEvaluation(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected evaluation")
	}
	if got.CandidateID != "robot-7" || got.Status != fuzzy.StatusComputed {
		t.Errorf("unexpected evaluation: %+v", got)
	}
	if len(got.Inputs) != 4 || got.Inputs[1] != 12.5 {
		t.Errorf("inputs not preserved: %v", got.Inputs)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Variable != "Load History" {
		t.Errorf("warnings not preserved: %v", got.Warnings)
	}
}

func TestGetEvaluationNotFound(t *testing.T) {
	s := setupTestDB(t)
	got, err := s.GetEvaluation(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestListEvaluationsFilters(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	for _, e := range []*Evaluation{
		{RuleBase: "mrta", CandidateID: "a", Inputs: []float64{0, 0, 0, 1}, Value: 9.3, Status: fuzzy.StatusComputed},
		{RuleBase: "mrta", CandidateID: "b", Inputs: []float64{0, 0, 0, 0}, Value: 0, Status: fuzzy.StatusComputed},
		{RuleBase: "mrta", CandidateID: "a", Inputs: []float64{0.5, 0, 0, 0.5}, Value: 5, Status: fuzzy.StatusDefaulted},
	} {
		if err := s.RecordEvaluation(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	all, err := s.ListEvaluations(ctx, EvaluationFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 evaluations, got %d", len(all))
	}

	byCandidate, _ := s.ListEvaluations(ctx, EvaluationFilter{CandidateID: "a"})
	if len(byCandidate) != 2 {
		t.Errorf("expected 2 evaluations for candidate a, got %d", len(byCandidate))
	}

	defaulted := fuzzy.StatusDefaulted
	byStatus, _ := s.ListEvaluations(ctx, EvaluationFilter{Status: &defaulted})
	if len(byStatus) != 1 {
		t.Errorf("expected 1 defaulted evaluation, got %d", len(byStatus))
	}

	page, _ := s.ListEvaluations(ctx, EvaluationFilter{Limit: 1, Offset: 1})
	if len(page) != 1 {
		t.Errorf("expected page of 1, got %d", len(page))
	}
}

func TestRuleBaseRevisions(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	latest, err := s.GetLatestRuleBase(ctx, "mrta")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest != nil {
		t.Fatal("expected no revisions yet")
	}

	first := &RuleBaseRevision{Name: "mrta", Document: []byte("name: one"), CreatedBy: "test"}
	if err := s.SaveRuleBase(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := &RuleBaseRevision{Name: "mrta", Document: []byte("name: two")}
	if err := s.SaveRuleBase(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.Revision != 1 || second.Revision != 2 {
		t.Errorf("expected revisions 1 and 2, got %d and %d", first.Revision, second.Revision)
	}

	latest, err = s.GetLatestRuleBase(ctx, "mrta")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest == nil || latest.Revision != 2 || string(latest.Document) != "name: two" {
		t.Errorf("unexpected latest revision: %+v", latest)
	}
}

func TestSaveRuleBaseConcurrent(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	const writers = 4
	revs := make([]*RuleBaseRevision, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range revs {
		revs[i] = &RuleBaseRevision{Name: "mrta", Document: []byte("name: mrta")}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.SaveRuleBase(ctx, revs[i])
		}(i)
	}
	wg.Wait()

	got := make([]int, 0, writers)
	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d: %v", i, err)
		}
		got = append(got, revs[i].Revision)
	}
	sort.Ints(got)
	for i, r := range got {
		if r != i+1 {
			t.Fatalf("expected revisions 1..%d, got %v", writers, got)
		}
	}
}
