// Package store provides the SQLite-backed participant registry.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"svitlo/core/registry"
)

// SQLiteStore implements registry.Store on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	schema := `CREATE TABLE IF NOT EXISTS members (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        chat_id INTEGER NOT NULL,
        user_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        group_num TEXT NOT NULL,
        registered_at TEXT NOT NULL,
        UNIQUE(chat_id, user_id)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Register inserts the member or updates name and group on conflict. The
// original registration time is kept on re-registration.
func (s *SQLiteStore) Register(ctx context.Context, m registry.Member) error {
	at := m.RegisteredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (chat_id, user_id, name, group_num, registered_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(chat_id, user_id) DO UPDATE SET
             name = excluded.name,
             group_num = excluded.group_num`,
		m.ChatID, m.UserID, m.Name, m.Group, at.Format(time.RFC3339))
	return err
}

// Member returns one registered member or registry.ErrNotFound.
func (s *SQLiteStore) Member(ctx context.Context, chatID, userID int64) (registry.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT chat_id, user_id, name, group_num, registered_at
         FROM members WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.Member{}, registry.ErrNotFound
	}
	return m, err
}

// ChatMembers returns all members of a chat ordered by registration time.
func (s *SQLiteStore) ChatMembers(ctx context.Context, chatID int64) ([]registry.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, user_id, name, group_num, registered_at
         FROM members WHERE chat_id = ? ORDER BY registered_at ASC, id ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var members []registry.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Remove deletes the member. Removing an unknown member is not an error.
func (s *SQLiteStore) Remove(ctx context.Context, chatID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM members WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	return err
}

// Chats returns the distinct chat IDs with registered members.
func (s *SQLiteStore) Chats(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT chat_id FROM members`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var chats []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		chats = append(chats, id)
	}
	return chats, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (registry.Member, error) {
	var m registry.Member
	var at string
	if err := row.Scan(&m.ChatID, &m.UserID, &m.Name, &m.Group, &at); err != nil {
		return registry.Member{}, err
	}
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return registry.Member{}, fmt.Errorf("parse registered_at: %w", err)
	}
	m.RegisteredAt = ts
	return m, nil
}
