package cache

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/ldellis/rolo/internal/contacts"
)

// emailSchema is bootstrapped on open; the index has no migration
// history, a schema change just rebuilds from the store.
const emailSchema = `
CREATE TABLE IF NOT EXISTS contact_emails (
	email      TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	PRIMARY KEY (email, contact_id)
);

CREATE INDEX IF NOT EXISTS idx_contact_emails_contact ON contact_emails(contact_id);
`

// EmailIndex maps lowercased email addresses to contact IDs in a
// sqlite database, serving duplicate detection without a full store
// scan. Use ":memory:" as the path for an ephemeral index.
type EmailIndex struct {
	db *sql.DB
}

// NewEmailIndex opens (or creates) the index database at path and
// ensures the schema exists.
func NewEmailIndex(path string) (*EmailIndex, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening email index: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging email index: %w", err)
	}
	if _, err := db.Exec(emailSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating email index schema: %w", err)
	}
	return &EmailIndex{db: db}, nil
}

// Put replaces the indexed emails of each given contact.
func (x *EmailIndex) Put(list ...contacts.Contact) error {
	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning index update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range list {
		if _, err := tx.Exec("DELETE FROM contact_emails WHERE contact_id = ?", string(c.ID)); err != nil {
			return fmt.Errorf("clearing emails for %s: %w", c.ID, err)
		}
		for _, email := range c.Emails {
			_, err := tx.Exec(
				"INSERT OR IGNORE INTO contact_emails (email, contact_id) VALUES (?, ?)",
				strings.ToLower(email), string(c.ID),
			)
			if err != nil {
				return fmt.Errorf("indexing email for %s: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index update: %w", err)
	}
	return nil
}

// Lookup returns the IDs of contacts carrying the given email,
// case-insensitively, in stable order.
func (x *EmailIndex) Lookup(email string) ([]contacts.ID, error) {
	rows, err := x.db.Query(
		"SELECT contact_id FROM contact_emails WHERE email = ? ORDER BY contact_id",
		strings.ToLower(email),
	)
	if err != nil {
		return nil, fmt.Errorf("querying email index: %w", err)
	}
	defer rows.Close()

	var ids []contacts.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning email index row: %w", err)
		}
		ids = append(ids, contacts.ID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating email index rows: %w", err)
	}
	return ids, nil
}

// Evict drops every indexed email of the given contact IDs.
func (x *EmailIndex) Evict(ids []contacts.ID) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, string(id))
	}

	query := "DELETE FROM contact_emails WHERE contact_id IN (" + placeholders + ")"
	if _, err := x.db.Exec(query, args...); err != nil {
		return fmt.Errorf("evicting from email index: %w", err)
	}
	return nil
}

// Clear empties the index.
func (x *EmailIndex) Clear() error {
	if _, err := x.db.Exec("DELETE FROM contact_emails"); err != nil {
		return fmt.Errorf("clearing email index: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (x *EmailIndex) Close() error {
	return x.db.Close()
}
