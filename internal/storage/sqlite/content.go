// ABOUTME: Session content storage operations for SQLite
// ABOUTME: One item per (session, content type); writes upsert on that pair
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/discovery/internal/models"
)

// ContentStore handles session content persistence
type ContentStore struct {
	db  *DB
	now func() time.Time
}

// NewContentStore creates a new ContentStore
func NewContentStore(db *DB) *ContentStore {
	return &ContentStore{db: db, now: time.Now}
}

func upsertContent(ctx context.Context, ex execer, items []models.ContentItem, now time.Time) error {
	for i := range items {
		item := &items[i]
		if err := item.Validate(); err != nil {
			return err
		}
		var data sql.NullString
		if item.IsStructured() {
			data = sql.NullString{String: string(item.ContentData), Valid: true}
		}
		_, err := ex.ExecContext(ctx, `
			INSERT INTO session_content (content_id, session_id, content_type, content_text, content_data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, content_type) DO UPDATE SET
				content_text = excluded.content_text,
				content_data = excluded.content_data,
				updated_at = excluded.updated_at
		`, item.ContentID, item.SessionID, item.ContentType, nullString(item.ContentText), data, now.UTC(), now.UTC())
		if err != nil {
			return fmt.Errorf("failed to save %s content: %w", item.ContentType, err)
		}
	}
	return nil
}

// Upsert saves content items in one transaction
func (s *ContentStore) Upsert(ctx context.Context, items []models.ContentItem) error {
	if len(items) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return upsertContent(ctx, tx, items, s.now())
	})
}

// BySession returns a session's content items ordered by type
func (s *ContentStore) BySession(ctx context.Context, sessionID string) ([]models.ContentItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT content_id, session_id, content_type, COALESCE(content_text, ''), content_data
		FROM session_content
		WHERE session_id = ?
		ORDER BY content_type
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []models.ContentItem
	for rows.Next() {
		var (
			item models.ContentItem
			data sql.NullString
		)
		if err := rows.Scan(&item.ContentID, &item.SessionID, &item.ContentType, &item.ContentText, &data); err != nil {
			return nil, err
		}
		if data.Valid && data.String != "" {
			item.ContentData = json.RawMessage(data.String)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
