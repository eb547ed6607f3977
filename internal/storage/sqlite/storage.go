// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Serves as migration source and sink, search directory, and session backend
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/harper/discovery/internal/models"
)

// Storage manages all persistent discovery data using SQLite
type Storage struct {
	db       *DB
	sessions *SessionStore
	question *QuestionStore
	answers  *AnswerStore
	content  *ContentStore
	contacts *ContactStore
	progress *ProgressStore
	legacy   *LegacyStore
	accounts *AccountStore
}

// NewStorageWithPath initializes storage with a database file path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:       db,
		sessions: NewSessionStore(db),
		question: NewQuestionStore(db),
		answers:  NewAnswerStore(db),
		content:  NewContentStore(db),
		contacts: NewContactStore(db),
		progress: NewProgressStore(db),
		legacy:   NewLegacyStore(db),
		accounts: NewAccountStore(db),
	}
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

// DB returns the underlying database
func (s *Storage) DB() *DB {
	return s.db
}

// Legacy source

// Backup snapshots the legacy table
func (s *Storage) Backup(ctx context.Context) (*models.BackupInfo, error) {
	return s.legacy.Backup(ctx)
}

// LegacySessions reads every legacy row
func (s *Storage) LegacySessions(ctx context.Context) ([]models.LegacySession, error) {
	return s.legacy.LegacySessions(ctx)
}

// ImportLegacy loads legacy rows
func (s *Storage) ImportLegacy(ctx context.Context, sessions []models.LegacySession) (int, error) {
	return s.legacy.Import(ctx, sessions)
}

// Normalized sink

// UpsertSession writes a session verbatim
func (s *Storage) UpsertSession(ctx context.Context, session *models.Session) error {
	return s.sessions.Upsert(ctx, session)
}

// UpsertQuestions writes a batch of questions atomically
func (s *Storage) UpsertQuestions(ctx context.Context, questions []models.Question) error {
	return s.question.Upsert(ctx, questions)
}

// UpsertAnswers writes a batch of answers atomically
func (s *Storage) UpsertAnswers(ctx context.Context, answers []models.Answer) error {
	return s.answers.Upsert(ctx, answers)
}

// UpsertContent writes a batch of content items atomically
func (s *Storage) UpsertContent(ctx context.Context, items []models.ContentItem) error {
	return s.content.Upsert(ctx, items)
}

// UpsertContacts writes a batch of contacts atomically
func (s *Storage) UpsertContacts(ctx context.Context, contacts []models.Contact) error {
	return s.contacts.Upsert(ctx, contacts)
}

// Counts returns normalized table row counts
func (s *Storage) Counts(ctx context.Context) (models.EntityCounts, error) {
	return s.progress.Counts(ctx)
}

// Progress returns one session's progress
func (s *Storage) Progress(ctx context.Context, sessionID string) (*models.SessionProgress, error) {
	return s.progress.Progress(ctx, sessionID)
}

// Sessions

// SaveSession saves a session with generated defaults
func (s *Storage) SaveSession(ctx context.Context, session *models.Session) error {
	return s.sessions.Save(ctx, session)
}

// GetSession retrieves a session by id
func (s *Storage) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// SaveDetail saves a session and everything it owns
func (s *Storage) SaveDetail(ctx context.Context, detail *models.SessionDetail) error {
	return s.sessions.SaveDetail(ctx, detail)
}

// GetDetail loads a session and everything it owns
func (s *Storage) GetDetail(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	return s.sessions.GetDetail(ctx, sessionID)
}

// ArchiveSession flags a session as archived
func (s *Storage) ArchiveSession(ctx context.Context, sessionID string) error {
	return s.sessions.Archive(ctx, sessionID)
}

// ListProgress lists a user's sessions with progress
func (s *Storage) ListProgress(ctx context.Context, userEmail string) ([]models.SessionProgress, error) {
	return s.progress.ListProgress(ctx, userEmail)
}

// Analytics aggregates a user's sessions
func (s *Storage) Analytics(ctx context.Context, userEmail string) (*models.Analytics, error) {
	return s.progress.Analytics(ctx, userEmail)
}

// Account directory

// Candidates returns searchable accounts modified since cutoff
func (s *Storage) Candidates(ctx context.Context, cutoff time.Time) ([]models.Account, error) {
	return s.accounts.Candidates(ctx, cutoff)
}

// ByID returns a live account by primary key
func (s *Storage) ByID(ctx context.Context, id string) (*models.Account, error) {
	return s.accounts.ByID(ctx, id)
}

// ByDomain returns live accounts for a website domain
func (s *Storage) ByDomain(ctx context.Context, website string) ([]models.Account, error) {
	return s.accounts.ByDomain(ctx, website)
}

// ImportAccounts loads accounts
func (s *Storage) ImportAccounts(ctx context.Context, accounts []models.Account) (int, error) {
	return s.accounts.Import(ctx, accounts)
}
