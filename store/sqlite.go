package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps records in the credentials table.
type SQLiteStore struct {
	db *DB
}

// NewSQLiteStore returns a store over db. Call [RunMigrations] on db.Writer first.
func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save implements [Store].
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	const query = `
		INSERT INTO credentials (username, email, password_hash, salt, encryption_engine, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(username) DO UPDATE SET
			email = excluded.email,
			password_hash = excluded.password_hash,
			salt = excluded.salt,
			encryption_engine = excluded.encryption_engine,
			updated_at = CURRENT_TIMESTAMP`

	_, err := s.db.Writer.ExecContext(ctx, query, rec.Username, rec.Email, rec.Hash, rec.Salt, rec.Engine)
	if err != nil {
		return fmt.Errorf("save credential %q: %w", rec.Username, err)
	}
	return nil
}

// Load implements [Store].
func (s *SQLiteStore) Load(ctx context.Context, username string) (Record, error) {
	const query = `SELECT username, email, password_hash, salt, encryption_engine FROM credentials WHERE username = ?`

	var rec Record
	err := s.db.Reader.QueryRowContext(ctx, query, username).Scan(
		&rec.Username, &rec.Email, &rec.Hash, &rec.Salt, &rec.Engine,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load credential %q: %w", username, err)
	}
	return rec, nil
}

// Delete implements [Store].
func (s *SQLiteStore) Delete(ctx context.Context, username string) error {
	res, err := s.db.Writer.ExecContext(ctx, `DELETE FROM credentials WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("delete credential %q: %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential %q: %w", username, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all records ordered by username.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	const query = `SELECT username, email, password_hash, salt, encryption_engine FROM credentials ORDER BY username`

	rows, err := s.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Username, &rec.Email, &rec.Hash, &rec.Salt, &rec.Engine); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
