// ABOUTME: Read-only progress and analytics queries over the session_progress view
// ABOUTME: Also reports row counts of the normalized tables for migration verification
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/harper/discovery/internal/models"
)

// ProgressStore answers progress and analytics queries
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a new ProgressStore
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

const progressColumns = `
	p.session_id, p.session_name, p.user_email, p.company_name, p.status,
	p.total_questions, p.answered_questions, p.completion_percentage,
	p.content_types_count, p.available_content, p.contacts_count, s.updated_at`

// Counts returns the row count of each normalized table
func (s *ProgressStore) Counts(ctx context.Context) (models.EntityCounts, error) {
	var counts models.EntityCounts
	targets := []struct {
		table string
		dest  *int
	}{
		{"discovery_sessions", &counts.Sessions},
		{"discovery_questions", &counts.Questions},
		{"discovery_answers", &counts.Answers},
		{"session_content", &counts.Content},
		{"session_contacts", &counts.Contacts},
	}
	for _, t := range targets {
		if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dest); err != nil {
			return counts, fmt.Errorf("failed to count %s: %w", t.table, err)
		}
	}
	return counts, nil
}

// Progress returns one session's progress, or nil when the session does not exist
func (s *ProgressStore) Progress(ctx context.Context, sessionID string) (*models.SessionProgress, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+progressColumns+`
		FROM session_progress p
		JOIN discovery_sessions s ON s.session_id = p.session_id
		WHERE p.session_id = ?
	`, sessionID)

	progress, err := scanProgress(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return progress, err
}

// ListProgress returns progress for a user's sessions (all users when
// userEmail is empty), most recently updated first
func (s *ProgressStore) ListProgress(ctx context.Context, userEmail string) ([]models.SessionProgress, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+progressColumns+`
		FROM session_progress p
		JOIN discovery_sessions s ON s.session_id = p.session_id
		WHERE ? = '' OR p.user_email = ?
		ORDER BY s.updated_at DESC, p.session_id
	`, userEmail, userEmail)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var list []models.SessionProgress
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *progress)
	}
	return list, rows.Err()
}

// Analytics aggregates a user's sessions: totals, unique companies, and the
// average completion rounded to one decimal
func (s *ProgressStore) Analytics(ctx context.Context, userEmail string) (*models.Analytics, error) {
	analytics := &models.Analytics{UserEmail: userEmail}
	var avg float64

	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT NULLIF(company_name, '')),
			COALESCE(AVG(completion_percentage), 0),
			COALESCE(SUM(total_questions), 0),
			COALESCE(SUM(answered_questions), 0),
			COALESCE(SUM(content_types_count), 0)
		FROM session_progress
		WHERE user_email = ?
	`, userEmail).Scan(&analytics.TotalSessions, &analytics.UniqueCompanies, &avg,
		&analytics.TotalQuestions, &analytics.TotalAnswers, &analytics.TotalContentCreated)
	if err != nil {
		return nil, err
	}

	analytics.AverageCompletion = math.Round(avg*10) / 10
	return analytics, nil
}

func scanProgress(row scanner) (*models.SessionProgress, error) {
	var (
		p         models.SessionProgress
		available string
	)
	err := row.Scan(&p.SessionID, &p.SessionName, &p.UserEmail, &p.CompanyName, &p.Status,
		&p.TotalQuestions, &p.AnsweredQuestions, &p.CompletionPercentage,
		&p.ContentTypesCount, &available, &p.ContactsCount, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.AvailableContent = []string{}
	if available != "" {
		p.AvailableContent = strings.Split(available, ",")
		sort.Strings(p.AvailableContent)
	}
	return &p, nil
}
