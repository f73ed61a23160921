package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ekaraca/tutorly/internal/tutor"
)

// SQLiteStore persists submissions in a local SQLite file, the default for
// single-host deployments without a database server.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS learners (
		id TEXT PRIMARY KEY,
		identity TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		learner_id TEXT NOT NULL REFERENCES learners(id),
		age_group TEXT NOT NULL,
		topic TEXT NOT NULL,
		learning_outcome TEXT NOT NULL,
		transcript_json TEXT NOT NULL,
		evaluation_json TEXT NOT NULL,
		submitted_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_learner_submitted ON submissions(learner_id, submitted_at DESC);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, result tutor.Result) (Submission, error) {
	transcript, err := json.Marshal(result.Transcript)
	if err != nil {
		return Submission{}, fmt.Errorf("encode transcript: %w", err)
	}
	evaluation, err := json.Marshal(result.Evaluation)
	if err != nil {
		return Submission{}, fmt.Errorf("encode evaluation: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Submission{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO learners (id, identity, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(identity) DO NOTHING`,
		uuid.NewString(), result.LearnerIdentity, now.Unix(),
	)
	if err != nil {
		return Submission{}, fmt.Errorf("upsert learner: %w", err)
	}

	var learnerID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM learners WHERE identity = ?`, result.LearnerIdentity,
	).Scan(&learnerID)
	if err != nil {
		return Submission{}, fmt.Errorf("resolve learner: %w", err)
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
		SubmittedAt:     now,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO submissions (id, learner_id, age_group, topic, learning_outcome, transcript_json, evaluation_json, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.LearnerID, sub.AgeGroup, sub.Topic, sub.LearningOutcome,
		string(transcript), string(evaluation), now.Unix(),
	)
	if err != nil {
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Submission{}, fmt.Errorf("commit tx: %w", err)
	}
	return sub, nil
}

func (s *SQLiteStore) ListByLearner(ctx context.Context, identity string, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.learner_id, l.identity, s.age_group, s.topic, s.learning_outcome,
		        s.transcript_json, s.evaluation_json, s.submitted_at
		 FROM submissions s JOIN learners l ON l.id = s.learner_id
		 WHERE l.identity = ?
		 ORDER BY s.submitted_at DESC LIMIT ?`,
		identity, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	items := make([]Submission, 0, limit)
	for rows.Next() {
		sub, err := scanSQLiteSubmission(rows)
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

func (s *SQLiteStore) Get(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT s.id, s.learner_id, l.identity, s.age_group, s.topic, s.learning_outcome,
		        s.transcript_json, s.evaluation_json, s.submitted_at
		 FROM submissions s JOIN learners l ON l.id = s.learner_id
		 WHERE s.id = ?`,
		id,
	)
	sub, err := scanSQLiteSubmission(row)
	if err == sql.ErrNoRows {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func scanSQLiteSubmission(row rowScanner) (Submission, error) {
	var sub Submission
	var transcript, evaluation string
	var submittedAt int64
	err := row.Scan(&sub.ID, &sub.LearnerID, &sub.LearnerIdentity, &sub.AgeGroup,
		&sub.Topic, &sub.LearningOutcome, &transcript, &evaluation, &submittedAt)
	if err != nil {
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(transcript), &sub.Transcript); err != nil {
		return Submission{}, fmt.Errorf("decode transcript: %w", err)
	}
	if err := json.Unmarshal([]byte(evaluation), &sub.Evaluation); err != nil {
		return Submission{}, fmt.Errorf("decode evaluation: %w", err)
	}
	sub.SubmittedAt = time.Unix(submittedAt, 0).UTC()
	return sub, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
