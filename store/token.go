// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/meeting-vote/models"
)

// ResolveToken returns the meeting and member behind an unused token.
// It never modifies the token.
func (s *Store) ResolveToken(ctx context.Context, token string) (*models.Ballot, error) {
	b := &models.Ballot{}
	err := s.db.QueryRowContext(ctx, `
		SELECT m.id, m.title, m.content, m.start_time, m.end_time, m.created_at,
		       cm.id, cm.meeting_id, cm.name, cm.email
		FROM vote_token vt
		JOIN member cm ON vt.member_id = cm.id
		JOIN meeting m ON cm.meeting_id = m.id
		WHERE vt.token = $1 AND vt.used = FALSE
	`, token).Scan(
		&b.Meeting.ID, &b.Meeting.Title, &b.Meeting.Content,
		&b.Meeting.StartTime, &b.Meeting.EndTime, &b.Meeting.CreatedAt,
		&b.Member.ID, &b.Member.MeetingID, &b.Member.Name, &b.Member.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("query vote token: %w", err)
	}
	return b, nil
}

// ConsumeToken marks token used and records v in one transaction.
// v.MemberID, v.MeetingID, v.ID and v.SubmittedAt are filled in from the
// token and the server clock.
//
// The conditional UPDATE is what serializes concurrent submissions: only
// the first one sees used = FALSE and affects a row.
func (s *Store) ConsumeToken(ctx context.Context, token string, v *models.Vote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		SELECT cm.id, cm.meeting_id
		FROM vote_token vt
		JOIN member cm ON vt.member_id = cm.id
		WHERE vt.token = $1 AND vt.used = FALSE
	`, token).Scan(&v.MemberID, &v.MeetingID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTokenUnavailable
	}
	if err != nil {
		return fmt.Errorf("query vote token: %w", err)
	}

	v.ID = uuid.NewString()
	v.SubmittedAt = time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		UPDATE vote_token SET used = TRUE, used_at = $2
		WHERE token = $1 AND used = FALSE
	`, token, v.SubmittedAt)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	if n != 1 {
		return ErrTokenUnavailable
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, member_id, meeting_id, decision, comment, submitted_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, v.ID, v.MemberID, v.MeetingID, string(v.Decision), v.Comment, v.SubmittedAt, v.IPHash, v.UserAgent)
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
