// ABOUTME: Access to the legacy JSON-blob session table
// ABOUTME: Takes verified snapshot backups, reads rows for migration, and loads exports
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/discovery/internal/models"
)

const legacyTable = "legacy_discovery_sessions"

const legacyColumns = `session_id, session_name, user_email, company_name, company_website,
	competitor, contact_name, contact_title, created_at, updated_at, discovery_questions,
	business_case, competitor_strategy, value_hypothesis, roadmap_data, outreach_emails,
	linkedin_messages, people_research, notes, status`

// LegacyStore reads and loads the legacy session table
type LegacyStore struct {
	db  *DB
	now func() time.Time
}

// NewLegacyStore creates a new LegacyStore
func NewLegacyStore(db *DB) *LegacyStore {
	return &LegacyStore{db: db, now: time.Now}
}

// Backup copies the whole legacy table into a new timestamped table and
// verifies the copy has the same row count. Any failure means no backup.
func (s *LegacyStore) Backup(ctx context.Context) (*models.BackupInfo, error) {
	created := s.now().UTC()
	base := legacyTable + "_backup_" + created.Format("20060102_150405")

	name := base
	for i := 2; ; i++ {
		var exists int
		err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check backup table: %w", err)
		}
		if exists == 0 {
			break
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}

	if _, err := s.db.Exec(ctx, fmt.Sprintf(`CREATE TABLE %q AS SELECT * FROM %s`, name, legacyTable)); err != nil {
		return nil, fmt.Errorf("failed to create backup table: %w", err)
	}

	var source, copied int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+legacyTable).Scan(&source); err != nil {
		return nil, fmt.Errorf("failed to count legacy rows: %w", err)
	}
	if err := s.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, name)).Scan(&copied); err != nil {
		return nil, fmt.Errorf("failed to count backup rows: %w", err)
	}
	if source != copied {
		return nil, fmt.Errorf("backup %s has %d rows, legacy table has %d", name, copied, source)
	}

	return &models.BackupInfo{Table: name, Rows: copied, CreatedAt: created}, nil
}

// LegacySessions returns every legacy row, oldest first
func (s *LegacyStore) LegacySessions(ctx context.Context) ([]models.LegacySession, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+legacyColumns+`
		FROM `+legacyTable+`
		ORDER BY created_at, session_id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []models.LegacySession
	for rows.Next() {
		var (
			ls                 models.LegacySession
			text               [12]sql.NullString
			created, updated   sql.NullTime
			questions, roadmap sql.NullString
			emails, linkedin   sql.NullString
			people             sql.NullString
		)
		err := rows.Scan(&ls.SessionID, &text[0], &text[1], &text[2], &text[3],
			&text[4], &text[5], &text[6], &created, &updated, &questions,
			&text[7], &text[8], &text[9], &roadmap, &emails,
			&linkedin, &people, &text[10], &text[11])
		if err != nil {
			return nil, err
		}

		ls.SessionName = stringPtr(text[0])
		ls.UserEmail = stringPtr(text[1])
		ls.CompanyName = stringPtr(text[2])
		ls.CompanyWebsite = stringPtr(text[3])
		ls.Competitor = stringPtr(text[4])
		ls.ContactName = stringPtr(text[5])
		ls.ContactTitle = stringPtr(text[6])
		ls.BusinessCase = stringPtr(text[7])
		ls.CompetitorStrategy = stringPtr(text[8])
		ls.ValueHypothesis = stringPtr(text[9])
		ls.Notes = stringPtr(text[10])
		ls.Status = stringPtr(text[11])
		ls.CreatedAt = timePtr(created)
		ls.UpdatedAt = timePtr(updated)
		ls.DiscoveryQuestions = rawJSON(questions)
		ls.RoadmapData = rawJSON(roadmap)
		ls.OutreachEmails = rawJSON(emails)
		ls.LinkedInMessages = rawJSON(linkedin)
		ls.PeopleResearch = rawJSON(people)

		sessions = append(sessions, ls)
	}
	return sessions, rows.Err()
}

// Import loads legacy rows (insert or replace by session id) and returns the
// number written
func (s *LegacyStore) Import(ctx context.Context, sessions []models.LegacySession) (int, error) {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i := range sessions {
			ls := &sessions[i]
			if ls.SessionID == "" {
				return fmt.Errorf("legacy session %d has no session_id", i+1)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO `+legacyTable+` (`+legacyColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, ls.SessionID, ls.SessionName, ls.UserEmail, ls.CompanyName, ls.CompanyWebsite,
				ls.Competitor, ls.ContactName, ls.ContactTitle, utcPtr(ls.CreatedAt), utcPtr(ls.UpdatedAt),
				jsonText(ls.DiscoveryQuestions), ls.BusinessCase, ls.CompetitorStrategy, ls.ValueHypothesis,
				jsonText(ls.RoadmapData), jsonText(ls.OutreachEmails), jsonText(ls.LinkedInMessages),
				jsonText(ls.PeopleResearch), ls.Notes, ls.Status)
			if err != nil {
				return fmt.Errorf("failed to import legacy session %s: %w", ls.SessionID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(sessions), nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}

func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func rawJSON(ns sql.NullString) json.RawMessage {
	if !ns.Valid {
		return nil
	}
	return json.RawMessage(ns.String)
}

func jsonText(raw json.RawMessage) interface{} {
	if models.IsNullJSON(raw) {
		return nil
	}
	return string(raw)
}
