// ABOUTME: Discovery answer storage operations for SQLite
// ABOUTME: Enforces that an answer's question belongs to the answer's session
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/discovery/internal/models"
)

// ErrReferential is returned when a row references a parent that does not
// exist or belongs to a different session
var ErrReferential = errors.New("referential integrity violation")

// AnswerStore handles discovery answer persistence
type AnswerStore struct {
	db  *DB
	now func() time.Time
}

// NewAnswerStore creates a new AnswerStore
func NewAnswerStore(db *DB) *AnswerStore {
	return &AnswerStore{db: db, now: time.Now}
}

type queryRower interface {
	execer
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func upsertAnswers(ctx context.Context, q queryRower, answers []models.Answer, now time.Time) error {
	for i := range answers {
		a := &answers[i]
		if err := a.Validate(); err != nil {
			return fmt.Errorf("answer %s: %w", a.AnswerID, err)
		}

		var questionSession string
		err := q.QueryRowContext(ctx, `SELECT session_id FROM discovery_questions WHERE question_id = ?`,
			a.QuestionID).Scan(&questionSession)
		if err == sql.ErrNoRows {
			return fmt.Errorf("answer %s: question %s does not exist: %w", a.AnswerID, a.QuestionID, ErrReferential)
		}
		if err != nil {
			return err
		}
		if questionSession != a.SessionID {
			return fmt.Errorf("answer %s: question %s belongs to session %s, not %s: %w",
				a.AnswerID, a.QuestionID, questionSession, a.SessionID, ErrReferential)
		}

		_, err = q.ExecContext(ctx, `
			INSERT INTO discovery_answers (answer_id, question_id, session_id, answer_text, confidence_level, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(answer_id) DO UPDATE SET
				answer_text = excluded.answer_text,
				confidence_level = excluded.confidence_level,
				updated_at = excluded.updated_at
		`, a.AnswerID, a.QuestionID, a.SessionID, a.AnswerText, a.ConfidenceLevel, now.UTC(), now.UTC())
		if err != nil {
			return fmt.Errorf("failed to save answer %s: %w", a.AnswerID, err)
		}
	}
	return nil
}

// Upsert saves answers in one transaction. An answer whose question is
// missing or belongs to another session fails the batch with ErrReferential.
func (s *AnswerStore) Upsert(ctx context.Context, answers []models.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return upsertAnswers(ctx, tx, answers, s.now())
	})
}

// LatestBySession returns the authoritative (most recent) answer per question
func (s *AnswerStore) LatestBySession(ctx context.Context, sessionID string) (map[string]models.Answer, error) {
	rows, err := s.db.Query(ctx, `
		SELECT answer_id, question_id, session_id, COALESCE(answer_text, ''), confidence_level
		FROM discovery_answers
		WHERE session_id = ?
		ORDER BY updated_at, rowid
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	latest := make(map[string]models.Answer)
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.AnswerID, &a.QuestionID, &a.SessionID, &a.AnswerText, &a.ConfidenceLevel); err != nil {
			return nil, err
		}
		latest[a.QuestionID] = a
	}
	return latest, rows.Err()
}
