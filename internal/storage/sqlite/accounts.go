// ABOUTME: Account directory storage for SQLite
// ABOUTME: Serves search candidates, primary-key and website-domain lookups, and imports
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harper/discovery/internal/models"
)

// AccountStore handles account directory persistence
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new AccountStore
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = `id, name, type, COALESCE(owner_id, ''), COALESCE(owner_name, ''),
	COALESCE(website, ''), COALESCE(industry, ''), COALESCE(description, ''), last_modified, is_deleted`

// Candidates returns the searchable accounts: not deleted, modified on or
// after cutoff, with a name and a type
func (s *AccountStore) Candidates(ctx context.Context, cutoff time.Time) ([]models.Account, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE is_deleted = 0
			AND last_modified >= ?
			AND name IS NOT NULL
			AND type IS NOT NULL
		ORDER BY name
	`, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanAccounts(rows)
}

// ByID returns a live account by primary key, or nil when it does not exist
// or is deleted
func (s *AccountStore) ByID(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = ? AND is_deleted = 0 AND name IS NOT NULL AND type IS NOT NULL
	`, id)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ByDomain returns live accounts whose website contains the domain of the
// given website, ignoring scheme, "www." and path
func (s *AccountStore) ByDomain(ctx context.Context, website string) ([]models.Account, error) {
	domain := NormalizeDomain(website)
	if domain == "" {
		return nil, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE is_deleted = 0
			AND name IS NOT NULL
			AND type IS NOT NULL
			AND LOWER(website) LIKE '%' || ? || '%'
		ORDER BY name
	`, domain)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanAccounts(rows)
}

// Import loads accounts (insert or update by id) and returns the number written
func (s *AccountStore) Import(ctx context.Context, accounts []models.Account) (int, error) {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i := range accounts {
			a := &accounts[i]
			if a.ID == "" {
				return fmt.Errorf("account %d has no id", i+1)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO accounts (id, name, type, owner_id, owner_name, website, industry, description, last_modified, is_deleted)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					name = excluded.name,
					type = excluded.type,
					owner_id = excluded.owner_id,
					owner_name = excluded.owner_name,
					website = excluded.website,
					industry = excluded.industry,
					description = excluded.description,
					last_modified = excluded.last_modified,
					is_deleted = excluded.is_deleted
			`, a.ID, nullString(a.Name), nullString(a.Type), nullString(a.OwnerID), nullString(a.OwnerName),
				nullString(a.Website), nullString(a.Industry), nullString(a.Description),
				a.LastModified.UTC(), a.IsDeleted)
			if err != nil {
				return fmt.Errorf("failed to import account %s: %w", a.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(accounts), nil
}

// NormalizeDomain strips scheme, "www.", path and port from a website,
// e.g. "https://www.Acme.io/about" -> "acme.io"
func NormalizeDomain(website string) string {
	d := strings.ToLower(strings.TrimSpace(website))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#:"); i >= 0 {
		d = d[:i]
	}
	return d
}

func scanAccount(row scanner) (*models.Account, error) {
	var (
		a        models.Account
		modified sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.OwnerID, &a.OwnerName, &a.Website,
		&a.Industry, &a.Description, &modified, &a.IsDeleted)
	if err != nil {
		return nil, err
	}
	if modified.Valid {
		a.LastModified = modified.Time
	}
	return &a, nil
}

func scanAccounts(rows *sql.Rows) ([]models.Account, error) {
	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}
