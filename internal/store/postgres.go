package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
)

const schema = `
CREATE TABLE IF NOT EXISTS suitability_evaluations (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	rule_base    TEXT NOT NULL,
	revision     INT NOT NULL DEFAULT 0,
	candidate_id TEXT NOT NULL DEFAULT '',
	task_id      TEXT NOT NULL DEFAULT '',
	inputs       DOUBLE PRECISION[] NOT NULL,
	value        DOUBLE PRECISION NOT NULL,
	status       TEXT NOT NULL,
	warnings     JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS suitability_evaluations_candidate_idx ON suitability_evaluations (candidate_id, created_at DESC);

CREATE TABLE IF NOT EXISTS suitability_rule_bases (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name       TEXT NOT NULL,
	revision   INT NOT NULL,
	document   BYTEA NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, revision)
);`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const evaluationColumns = `id, rule_base, revision, candidate_id, task_id, inputs, value, status, warnings, created_at`

func (s *PostgresStore) RecordEvaluation(ctx context.Context, e *Evaluation) error {
	var warningsJSON []byte
	if len(e.Warnings) > 0 {
		warningsJSON, _ = json.Marshal(e.Warnings)
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO suitability_evaluations (rule_base, revision, candidate_id, task_id, inputs, value, status, warnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		e.RuleBase, e.Revision, e.CandidateID, e.TaskID, e.Inputs, e.Value, string(e.Status), warningsJSON,
	).Scan(&e.ID, &e.CreatedAt)
}

func scanEvaluation(row pgx.Row) (*Evaluation, error) {
	e := &Evaluation{}
	var status string
	var warningsJSON []byte
	if err := row.Scan(
		&e.ID, &e.RuleBase, &e.Revision, &e.CandidateID, &e.TaskID,
		&e.Inputs, &e.Value, &status, &warningsJSON, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Status = fuzzy.Status(status)
	if warningsJSON != nil {
		_ = json.Unmarshal(warningsJSON, &e.Warnings)
	}
	return e, nil
}

func (s *PostgresStore) GetEvaluation(ctx context.Context, id uuid.UUID) (*Evaluation, error) {
	e, err := scanEvaluation(s.pool.QueryRow(ctx, `
		SELECT `+evaluationColumns+`
		FROM suitability_evaluations WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]*Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM suitability_evaluations WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.RuleBase != "" {
		n++
		query += fmt.Sprintf(" AND rule_base = $%d", n)
		args = append(args, filter.RuleBase)
	}
	if filter.CandidateID != "" {
		n++
		query += fmt.Sprintf(" AND candidate_id = $%d", n)
		args = append(args, filter.CandidateID)
	}
	if filter.TaskID != "" {
		n++
		query += fmt.Sprintf(" AND task_id = $%d", n)
		args = append(args, filter.TaskID)
	}
	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}

	query += " ORDER BY created_at DESC"
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, filter.limit())
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// saveRuleBaseAttempts bounds retries when concurrent saves pick the same
// next revision.
const saveRuleBaseAttempts = 5

// SaveRuleBase stores rev as the next revision of its rule base. Two writers
// can compute the same MAX+1; the loser hits the (name, revision) constraint
// and tries again.
func (s *PostgresStore) SaveRuleBase(ctx context.Context, rev *RuleBaseRevision) error {
	var err error
	for attempt := 0; attempt < saveRuleBaseAttempts; attempt++ {
		err = s.pool.QueryRow(ctx, `
			INSERT INTO suitability_rule_bases (name, revision, document, created_by)
			VALUES ($1, (SELECT COALESCE(MAX(revision), 0) + 1 FROM suitability_rule_bases WHERE name = $1), $2, $3)
			RETURNING id, revision, created_at`,
			rev.Name, rev.Document, rev.CreatedBy,
		).Scan(&rev.ID, &rev.Revision, &rev.CreatedAt)
		if !isUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("save rule base %s: %w", rev.Name, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStore) GetLatestRuleBase(ctx context.Context, name string) (*RuleBaseRevision, error) {
	rev := &RuleBaseRevision{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, revision, document, created_by, created_at
		FROM suitability_rule_bases WHERE name = $1
		ORDER BY revision DESC LIMIT 1`, name,
	).Scan(&rev.ID, &rev.Name, &rev.Revision, &rev.Document, &rev.CreatedBy, &rev.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rev, nil
}
