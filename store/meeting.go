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

// Invitee is a member to be created alongside a meeting.
type Invitee struct {
	Name  string
	Email string
}

// IssuedToken pairs a freshly created member with their vote token.
type IssuedToken struct {
	Member models.Member
	Token  string
}

// CreateMeeting writes the meeting, one member per invitee and one token per
// member in a single transaction. m.ID and m.CreatedAt are filled in.
func (s *Store) CreateMeeting(ctx context.Context, m *models.Meeting, invitees []Invitee) ([]IssuedToken, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meeting (id, title, content, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.Title, m.Content, m.StartTime, m.EndTime, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert meeting: %w", err)
	}

	issued := make([]IssuedToken, 0, len(invitees))
	for _, inv := range invitees {
		member := models.Member{
			ID:        uuid.NewString(),
			MeetingID: m.ID,
			Name:      inv.Name,
			Email:     inv.Email,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO member (id, meeting_id, name, email)
			VALUES ($1, $2, $3, $4)
		`, member.ID, member.MeetingID, member.Name, member.Email)
		if err != nil {
			return nil, fmt.Errorf("insert member: %w", err)
		}

		token, err := s.insertToken(ctx, tx, uuid.NewString(), member.ID, m.CreatedAt)
		if err != nil {
			return nil, err
		}
		issued = append(issued, IssuedToken{Member: member, Token: token})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return issued, nil
}

func (s *Store) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	m := &models.Meeting{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, start_time, end_time, created_at
		FROM meeting WHERE id = $1
	`, id).Scan(&m.ID, &m.Title, &m.Content, &m.StartTime, &m.EndTime, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query meeting: %w", err)
	}
	return m, nil
}

// ListMembers returns the meeting's members with whether each has voted.
func (s *Store) ListMembers(ctx context.Context, meetingID string) ([]models.MemberStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.meeting_id, m.name, m.email, COALESCE(vt.used, FALSE)
		FROM member m
		LEFT JOIN vote_token vt ON vt.member_id = m.id
		WHERE m.meeting_id = $1
		ORDER BY m.name, m.id
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	members := []models.MemberStatus{}
	for rows.Next() {
		var ms models.MemberStatus
		if err := rows.Scan(&ms.ID, &ms.MeetingID, &ms.Name, &ms.Email, &ms.HasVoted); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, ms)
	}
	return members, rows.Err()
}

func (s *Store) ListVotes(ctx context.Context, meetingID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, member_id, meeting_id, decision, comment, submitted_at
		FROM vote
		WHERE meeting_id = $1
		ORDER BY submitted_at, id
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		var decision string
		if err := rows.Scan(&v.ID, &v.MemberID, &v.MeetingID, &decision, &v.Comment, &v.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		v.Decision = models.Decision(decision)
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// Tally counts votes per decision. Every decision is present in the result.
func (s *Store) Tally(ctx context.Context, meetingID string) (map[models.Decision]int, error) {
	tally := make(map[models.Decision]int, len(models.Decisions))
	for _, d := range models.Decisions {
		tally[d] = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT decision, COUNT(*) FROM vote WHERE meeting_id = $1 GROUP BY decision
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("query tally: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var decision string
		var n int
		if err := rows.Scan(&decision, &n); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		tally[models.Decision(decision)] = n
	}
	return tally, rows.Err()
}
