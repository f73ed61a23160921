package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekaraca/tutorly/internal/tutor"
)

// PostgresStore persists submissions in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS learners (
			id TEXT PRIMARY KEY,
			identity TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			learner_id TEXT NOT NULL REFERENCES learners(id),
			age_group TEXT NOT NULL,
			topic TEXT NOT NULL,
			learning_outcome TEXT NOT NULL,
			transcript JSONB NOT NULL,
			evaluation JSONB NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_learner_submitted ON submissions (learner_id, submitted_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init submission schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, result tutor.Result) (Submission, error) {
	transcript, err := json.Marshal(result.Transcript)
	if err != nil {
		return Submission{}, fmt.Errorf("encode transcript: %w", err)
	}
	evaluation, err := json.Marshal(result.Evaluation)
	if err != nil {
		return Submission{}, fmt.Errorf("encode evaluation: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Submission{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var learnerID string
	err = tx.QueryRow(ctx,
		`INSERT INTO learners (id, identity) VALUES ($1, $2)
		 ON CONFLICT (identity) DO UPDATE SET identity=EXCLUDED.identity
		 RETURNING id`,
		uuid.NewString(), result.LearnerIdentity,
	).Scan(&learnerID)
	if err != nil {
		return Submission{}, fmt.Errorf("upsert learner: %w", err)
	}

	sub := Submission{
		ID:              uuid.NewString(),
		LearnerID:       learnerID,
		LearnerIdentity: result.LearnerIdentity,
		AgeGroup:        result.AgeGroup,
		Topic:           result.Topic,
		LearningOutcome: result.LearningOutcome,
		Transcript:      result.Transcript,
		Evaluation:      result.Evaluation,
		SubmittedAt:     time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO submissions (id, learner_id, age_group, topic, learning_outcome, transcript, evaluation, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.LearnerID, sub.AgeGroup, sub.Topic, sub.LearningOutcome,
		transcript, evaluation, sub.SubmittedAt,
	)
	if err != nil {
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Submission{}, fmt.Errorf("commit tx: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) ListByLearner(ctx context.Context, identity string, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT s.id, s.learner_id, l.identity, s.age_group, s.topic, s.learning_outcome,
		        s.transcript, s.evaluation, s.submitted_at
		 FROM submissions s JOIN learners l ON l.id = s.learner_id
		 WHERE l.identity = $1
		 ORDER BY s.submitted_at DESC LIMIT $2`,
		identity, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	items := make([]Submission, 0, limit)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Submission, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT s.id, s.learner_id, l.identity, s.age_group, s.topic, s.learning_outcome,
		        s.transcript, s.evaluation, s.submitted_at
		 FROM submissions s JOIN learners l ON l.id = s.learner_id
		 WHERE s.id = $1`,
		id,
	)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var sub Submission
	var transcript, evaluation []byte
	err := row.Scan(&sub.ID, &sub.LearnerID, &sub.LearnerIdentity, &sub.AgeGroup,
		&sub.Topic, &sub.LearningOutcome, &transcript, &evaluation, &sub.SubmittedAt)
	if err != nil {
		return Submission{}, fmt.Errorf("scan submission row: %w", err)
	}
	if err := json.Unmarshal(transcript, &sub.Transcript); err != nil {
		return Submission{}, fmt.Errorf("decode transcript: %w", err)
	}
	if err := json.Unmarshal(evaluation, &sub.Evaluation); err != nil {
		return Submission{}, fmt.Errorf("decode evaluation: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
