// ABOUTME: Session contact storage operations for SQLite
// ABOUTME: Upserts contacts by synthesized id and lists the primary contact first
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harper/discovery/internal/models"
)

// ContactStore handles session contact persistence
type ContactStore struct {
	db *DB
}

// NewContactStore creates a new ContactStore
func NewContactStore(db *DB) *ContactStore {
	return &ContactStore{db: db}
}

func upsertContacts(ctx context.Context, ex execer, contacts []models.Contact) error {
	for i := range contacts {
		c := &contacts[i]
		_, err := ex.ExecContext(ctx, `
			INSERT INTO session_contacts (contact_id, session_id, contact_name, contact_title, contact_linkedin, background_notes, contact_type)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(contact_id) DO UPDATE SET
				contact_name = excluded.contact_name,
				contact_title = excluded.contact_title,
				contact_linkedin = excluded.contact_linkedin,
				background_notes = excluded.background_notes,
				contact_type = excluded.contact_type
		`, c.ContactID, c.SessionID, nullString(c.ContactName), nullString(c.ContactTitle),
			nullString(c.ContactLinkedIn), nullString(c.BackgroundNotes), c.ContactType)
		if err != nil {
			return fmt.Errorf("failed to save contact %s: %w", c.ContactID, err)
		}
	}
	return nil
}

// Upsert saves contacts in one transaction
func (s *ContactStore) Upsert(ctx context.Context, contacts []models.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return upsertContacts(ctx, tx, contacts)
	})
}

// BySession returns a session's contacts, primary first, then in insertion order
func (s *ContactStore) BySession(ctx context.Context, sessionID string) ([]models.Contact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT contact_id, session_id, COALESCE(contact_name, ''), COALESCE(contact_title, ''),
			COALESCE(contact_linkedin, ''), COALESCE(background_notes, ''), contact_type
		FROM session_contacts
		WHERE session_id = ?
		ORDER BY CASE contact_type WHEN 'primary' THEN 0 ELSE 1 END, rowid
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ContactID, &c.SessionID, &c.ContactName, &c.ContactTitle,
			&c.ContactLinkedIn, &c.BackgroundNotes, &c.ContactType); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
