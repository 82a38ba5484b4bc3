package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrIdentityNotFound = errors.New("identity not found")

// IssuedIdentity is one identity handed to a commissioned device.
type IssuedIdentity struct {
	Identity      string    `json:"identity"`
	DeviceAddress string    `json:"device_address"`
	IssuedAt      time.Time `json:"issued_at"`
}

// IdentityStore records issued identities.
type IdentityStore interface {
	// Reserve records identity for address and reports whether it was
	// new. An identity already on record is left untouched.
	Reserve(ctx context.Context, identity, address string) (bool, error)
	Get(ctx context.Context, identity string) (*IssuedIdentity, error)
	// ByAddress returns the most recent identity issued to address.
	ByAddress(ctx context.Context, address string) (*IssuedIdentity, error)
	List(ctx context.Context) ([]*IssuedIdentity, error)
	Release(ctx context.Context, identity string) error
}

// Identities returns an IdentityStore for this database.
func (db *DB) Identities() IdentityStore {
	return &identityStore{db: db}
}

type identityStore struct {
	db *DB
}

func (s *identityStore) Reserve(ctx context.Context, identity, address string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO issued_identities (identity, device_address)
		VALUES (?, ?)
	`, identity, address)
	if err != nil {
		return false, fmt.Errorf("failed to reserve identity: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (s *identityStore) Get(ctx context.Context, identity string) (*IssuedIdentity, error) {
	id := &IssuedIdentity{}
	var issuedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT identity, device_address, issued_at
		FROM issued_identities WHERE identity = ?
	`, identity).Scan(&id.Identity, &id.DeviceAddress, &issuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	id.IssuedAt, _ = time.Parse(time.DateTime, issuedAt)
	return id, nil
}

func (s *identityStore) ByAddress(ctx context.Context, address string) (*IssuedIdentity, error) {
	id := &IssuedIdentity{}
	var issuedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT identity, device_address, issued_at
		FROM issued_identities WHERE device_address = ?
		ORDER BY issued_at DESC, rowid DESC LIMIT 1
	`, address).Scan(&id.Identity, &id.DeviceAddress, &issuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	id.IssuedAt, _ = time.Parse(time.DateTime, issuedAt)
	return id, nil
}

func (s *identityStore) List(ctx context.Context) ([]*IssuedIdentity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identity, device_address, issued_at
		FROM issued_identities ORDER BY issued_at, identity
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*IssuedIdentity
	for rows.Next() {
		id := &IssuedIdentity{}
		var issuedAt string
		if err := rows.Scan(&id.Identity, &id.DeviceAddress, &issuedAt); err != nil {
			return nil, err
		}
		id.IssuedAt, _ = time.Parse(time.DateTime, issuedAt)
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *identityStore) Release(ctx context.Context, identity string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM issued_identities WHERE identity = ?`, identity)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
