// ABOUTME: Discovery session storage operations for SQLite
// ABOUTME: Upserts sessions, saves and loads full session details, archives by status
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/discovery/internal/models"
)

// SessionStore handles discovery session persistence
type SessionStore struct {
	db  *DB
	now func() time.Time
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

const upsertSessionSQL = `
	INSERT INTO discovery_sessions (session_id, session_name, user_email, company_name, company_website,
		competitor, contact_name, contact_title, status, notes, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		session_name = excluded.session_name,
		user_email = excluded.user_email,
		company_name = excluded.company_name,
		company_website = excluded.company_website,
		competitor = excluded.competitor,
		contact_name = excluded.contact_name,
		contact_title = excluded.contact_title,
		status = excluded.status,
		notes = excluded.notes,
		updated_at = excluded.updated_at
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsertSession(ctx context.Context, ex execer, s *models.Session) error {
	_, err := ex.ExecContext(ctx, upsertSessionSQL,
		s.SessionID, nullString(s.SessionName), nullString(s.UserEmail), nullString(s.CompanyName),
		nullString(s.CompanyWebsite), nullString(s.Competitor), nullString(s.ContactName),
		nullString(s.ContactTitle), string(s.Status), nullString(s.Notes),
		s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	return err
}

// Upsert writes the session exactly as given (insert or update by id)
func (s *SessionStore) Upsert(ctx context.Context, session *models.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	return upsertSession(ctx, s.db.conn, session)
}

// prepare fills the defaults a newly saved session needs: id, status,
// timestamps, and a display name derived from the company.
func (s *SessionStore) prepare(session *models.Session) {
	now := s.now()
	if session.SessionID == "" {
		session.SessionID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = models.SessionActive
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if strings.TrimSpace(session.SessionName) == "" {
		session.SessionName = models.SessionName(session.CompanyName, session.CompanyWebsite, session.CreatedAt)
	}
}

// Save saves or updates a session, generating an id and name when missing
func (s *SessionStore) Save(ctx context.Context, session *models.Session) error {
	s.prepare(session)
	return s.Upsert(ctx, session)
}

// Get retrieves a session by ID, or nil when it does not exist
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT session_id, COALESCE(session_name, ''), COALESCE(user_email, ''), COALESCE(company_name, ''),
			COALESCE(company_website, ''), COALESCE(competitor, ''), COALESCE(contact_name, ''),
			COALESCE(contact_title, ''), status, COALESCE(notes, ''), created_at, updated_at
		FROM discovery_sessions
		WHERE session_id = ?
	`, sessionID)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// List returns the sessions of one user (all users when userEmail is empty),
// most recently updated first
func (s *SessionStore) List(ctx context.Context, userEmail string) ([]models.Session, error) {
	rows, err := s.db.Query(ctx, `
		SELECT session_id, COALESCE(session_name, ''), COALESCE(user_email, ''), COALESCE(company_name, ''),
			COALESCE(company_website, ''), COALESCE(competitor, ''), COALESCE(contact_name, ''),
			COALESCE(contact_title, ''), status, COALESCE(notes, ''), created_at, updated_at
		FROM discovery_sessions
		WHERE ? = '' OR user_email = ?
		ORDER BY updated_at DESC, session_id
	`, userEmail, userEmail)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// Archive flags a session as archived. Sessions are never deleted.
func (s *SessionStore) Archive(ctx context.Context, sessionID string) error {
	result, err := s.db.Exec(ctx, `
		UPDATE discovery_sessions SET status = ?, updated_at = ? WHERE session_id = ?
	`, string(models.SessionArchived), s.now().UTC(), sessionID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

// SaveDetail saves a session with everything it owns in one transaction.
// Questions, answers, and contacts are replaced; content is upserted by type.
func (s *SessionStore) SaveDetail(ctx context.Context, detail *models.SessionDetail) error {
	s.prepare(&detail.Session)
	if err := detail.Session.Validate(); err != nil {
		return err
	}
	sessionID := detail.Session.SessionID

	questions := make([]models.Question, 0, len(detail.Questions))
	var answers []models.Answer
	for i := range detail.Questions {
		qa := &detail.Questions[i]
		qa.SessionID = sessionID
		if qa.QuestionID == "" {
			qa.QuestionID = fmt.Sprintf("%s-q-%d", sessionID, i+1)
		}
		if qa.QuestionOrder == 0 {
			qa.QuestionOrder = i + 1
		}
		if qa.Importance == "" {
			qa.Importance = models.ImportanceMedium
		}
		questions = append(questions, qa.Question)

		if strings.TrimSpace(qa.AnswerText) == "" {
			continue
		}
		confidence := qa.ConfidenceLevel
		if confidence == 0 {
			confidence = models.DefaultConfidence
		}
		answers = append(answers, models.Answer{
			AnswerID:        fmt.Sprintf("%s-a-%d", sessionID, i+1),
			QuestionID:      qa.QuestionID,
			SessionID:       sessionID,
			AnswerText:      qa.AnswerText,
			ConfidenceLevel: confidence,
		})
	}

	contacts := make([]models.Contact, 0, len(detail.Contacts))
	for i, c := range detail.Contacts {
		c.SessionID = sessionID
		c.ContactID = models.ContactID(sessionID, i+1)
		c.ContactType = models.ContactTypeFor(i + 1)
		contacts = append(contacts, c)
	}
	detail.Contacts = contacts

	content := make([]models.ContentItem, 0, len(detail.Content))
	for _, item := range detail.Content {
		item.SessionID = sessionID
		if item.ContentID == "" {
			item.ContentID = models.ContentID(sessionID, item.ContentType)
		}
		content = append(content, item)
	}
	detail.Content = content

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := upsertSession(ctx, tx, &detail.Session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		for _, table := range []string{"discovery_answers", "discovery_questions", "session_contacts"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE session_id = ?", sessionID); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		if err := upsertQuestions(ctx, tx, questions); err != nil {
			return err
		}
		if err := upsertAnswers(ctx, tx, answers, s.now()); err != nil {
			return err
		}
		if err := upsertContent(ctx, tx, content, s.now()); err != nil {
			return err
		}
		return upsertContacts(ctx, tx, contacts)
	})
}

// GetDetail loads a session with its ordered questions joined to their
// latest answers, its content, and its contacts (primary first).
// Returns nil when the session does not exist.
func (s *SessionStore) GetDetail(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil || session == nil {
		return nil, err
	}

	questions, err := NewQuestionStore(s.db).BySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	latest, err := NewAnswerStore(s.db).LatestBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	content, err := NewContentStore(s.db).BySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	contacts, err := NewContactStore(s.db).BySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}

	detail := &models.SessionDetail{
		Session:   *session,
		Questions: make([]models.QuestionQA, 0, len(questions)),
		Content:   content,
		Contacts:  contacts,
	}
	for _, q := range questions {
		qa := models.QuestionQA{Question: q}
		if a, ok := latest[q.QuestionID]; ok {
			qa.AnswerText = a.AnswerText
			qa.ConfidenceLevel = a.ConfidenceLevel
		}
		detail.Questions = append(detail.Questions, qa)
	}
	return detail, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		session models.Session
		status  string
	)
	err := row.Scan(&session.SessionID, &session.SessionName, &session.UserEmail, &session.CompanyName,
		&session.CompanyWebsite, &session.Competitor, &session.ContactName, &session.ContactTitle,
		&status, &session.Notes, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, err
	}
	session.Status = models.SessionStatus(status)
	return &session, nil
}

// nullString maps empty strings to SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
