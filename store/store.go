// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/meeting-vote/auth"
	"github.com/danielhkuo/meeting-vote/db"
)

var (
	// ErrTokenUnavailable covers both unknown and already-used tokens.
	ErrTokenUnavailable = errors.New("vote token unknown or already used")
	ErrMeetingNotFound  = errors.New("meeting not found")
)

// maxTokenAttempts bounds regeneration after a token collision.
const maxTokenAttempts = 3

type Store struct {
	db *sql.DB

	// newToken is swapped in tests to force collisions.
	newToken func() (string, error)
}

func New(conn *sql.DB) *Store {
	return &Store{db: conn, newToken: auth.GenerateVoteToken}
}

// insertToken issues a fresh token for memberID inside tx. A collision with an
// existing token is rolled back to a savepoint and retried with a new value,
// so an existing row is never touched.
func (s *Store) insertToken(ctx context.Context, tx *sql.Tx, id, memberID string, createdAt any) (string, error) {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return "", err
		}

		if _, err := tx.ExecContext(ctx, `SAVEPOINT issue_token`); err != nil {
			return "", fmt.Errorf("savepoint: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote_token (id, token, member_id, used, created_at)
			VALUES ($1, $2, $3, FALSE, $4)
		`, id, token, memberID, createdAt)
		if err == nil {
			if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT issue_token`); err != nil {
				return "", fmt.Errorf("release savepoint: %w", err)
			}
			return token, nil
		}

		if !db.IsUniqueViolation(err) {
			return "", fmt.Errorf("insert vote token: %w", err)
		}
		if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT issue_token`); rbErr != nil {
			return "", fmt.Errorf("rollback to savepoint: %w", rbErr)
		}
	}

	return "", fmt.Errorf("insert vote token: %d collisions in a row", maxTokenAttempts)
}
