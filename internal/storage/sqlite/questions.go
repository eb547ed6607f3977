// ABOUTME: Discovery question storage operations for SQLite
// ABOUTME: Upserts questions by synthesized id and loads them in session order
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harper/discovery/internal/models"
)

// QuestionStore handles discovery question persistence
type QuestionStore struct {
	db *DB
}

// NewQuestionStore creates a new QuestionStore
func NewQuestionStore(db *DB) *QuestionStore {
	return &QuestionStore{db: db}
}

func upsertQuestions(ctx context.Context, ex execer, questions []models.Question) error {
	for i := range questions {
		q := &questions[i]
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %s: %w", q.QuestionID, err)
		}
		_, err := ex.ExecContext(ctx, `
			INSERT INTO discovery_questions (question_id, session_id, category, question_text, explanation, importance, question_order)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(question_id) DO UPDATE SET
				category = excluded.category,
				question_text = excluded.question_text,
				explanation = excluded.explanation,
				importance = excluded.importance,
				question_order = excluded.question_order
		`, q.QuestionID, q.SessionID, nullString(q.Category), q.QuestionText, nullString(q.Explanation),
			q.Importance, q.QuestionOrder)
		if err != nil {
			return fmt.Errorf("failed to save question %s: %w", q.QuestionID, err)
		}
	}
	return nil
}

// Upsert saves questions in one transaction; either all are written or none
func (s *QuestionStore) Upsert(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return upsertQuestions(ctx, tx, questions)
	})
}

// BySession returns a session's questions ordered by question_order
func (s *QuestionStore) BySession(ctx context.Context, sessionID string) ([]models.Question, error) {
	rows, err := s.db.Query(ctx, `
		SELECT question_id, session_id, COALESCE(category, ''), question_text, COALESCE(explanation, ''),
			importance, question_order
		FROM discovery_questions
		WHERE session_id = ?
		ORDER BY question_order
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.QuestionID, &q.SessionID, &q.Category, &q.QuestionText, &q.Explanation,
			&q.Importance, &q.QuestionOrder); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
