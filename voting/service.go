// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/meeting-vote/cliparse"
	"github.com/danielhkuo/meeting-vote/models"
	"github.com/danielhkuo/meeting-vote/notify"
	"github.com/danielhkuo/meeting-vote/store"
)

var (
	// ErrInvalidLink is returned for unknown and already-used tokens alike.
	ErrInvalidLink     = errors.New("invalid or already used link")
	ErrMeetingNotFound = errors.New("meeting not found")
)

// ValidationError reports input rejected before any write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Dispatcher sends a member their vote link and reports whether it went out.
type Dispatcher interface {
	Dispatch(ctx context.Context, n notify.Notification) bool
}

type Service struct {
	store      *store.Store
	dispatcher Dispatcher
	baseURL    string
	// maximum notifications in flight
	concurrency int
	logger      *slog.Logger
}

func NewService(st *store.Store, dispatcher Dispatcher, cfg cliparse.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.MailConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		store:       st,
		dispatcher:  dispatcher,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		concurrency: concurrency,
		logger:      logger,
	}
}

// CreateMeetingInput is the secretary's submission. Names and Emails are
// parallel lists.
type CreateMeetingInput struct {
	Title     string
	Content   string
	StartTime time.Time
	EndTime   time.Time
	Names     []string
	Emails    []string
}

type CreateMeetingResult struct {
	Meeting *models.Meeting
	Members []models.Member
	// Delivery outcome, for logging only.
	Sent   int
	Failed int
}

// CreateMeeting validates in, stores the meeting with one member and token
// per name/email pair, then notifies every member. A failed notification is
// logged and does not affect other members or the stored rows.
//
// Start and end times are stored as given; start may be after end.
func (s *Service) CreateMeeting(ctx context.Context, in CreateMeetingInput) (*CreateMeetingResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil, invalid("start and end time are required")
	}
	if len(in.Names) != len(in.Emails) {
		return nil, invalid("names and emails count mismatch: %d names, %d emails", len(in.Names), len(in.Emails))
	}

	invitees := make([]store.Invitee, len(in.Names))
	for i := range in.Names {
		name := strings.TrimSpace(in.Names[i])
		if name == "" {
			return nil, invalid("name on line %d is empty", i+1)
		}
		addr, err := mail.ParseAddress(strings.TrimSpace(in.Emails[i]))
		if err != nil {
			return nil, invalid("invalid email on line %d: %q", i+1, in.Emails[i])
		}
		invitees[i] = store.Invitee{Name: name, Email: addr.Address}
	}

	meeting := &models.Meeting{
		Title:     title,
		Content:   in.Content,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	issued, err := s.store.CreateMeeting(ctx, meeting, invitees)
	if err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	s.logger.Info("meeting created", "meeting_id", meeting.ID, "members", len(issued))

	result := &CreateMeetingResult{Meeting: meeting, Members: make([]models.Member, len(issued))}
	for i, it := range issued {
		result.Members[i] = it.Member
	}

	// The rows are committed; a cancelled request must not strand the
	// members not yet notified. Each send is bounded by the mailer's timeout.
	dispatchCtx := context.WithoutCancel(ctx)

	var sent, failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, it := range issued {
		g.Go(func() error {
			n := notify.Notification{
				To:      it.Member.Email,
				Name:    it.Member.Name,
				Title:   meeting.Title,
				VoteURL: s.VoteURL(it.Token),
			}
			if s.dispatcher.Dispatch(dispatchCtx, n) {
				sent.Add(1)
			} else {
				failed.Add(1)
				s.logger.Warn("notification not delivered", "meeting_id", meeting.ID, "member_id", it.Member.ID)
			}
			// Never fail the group: one member's delivery must not cancel the rest.
			return nil
		})
	}
	g.Wait()

	result.Sent = int(sent.Load())
	result.Failed = int(failed.Load())
	s.logger.Info("notifications dispatched", "meeting_id", meeting.ID, "sent", result.Sent, "failed", result.Failed)

	return result, nil
}

// VoteURL builds the link embedded in a member's notification.
func (s *Service) VoteURL(token string) string {
	return s.baseURL + "/vote?token=" + url.QueryEscape(token)
}

// ResolveLink returns what a vote link points at without consuming it.
func (s *Service) ResolveLink(ctx context.Context, token string) (*models.Ballot, error) {
	if token == "" {
		return nil, ErrInvalidLink
	}
	b, err := s.store.ResolveToken(ctx, token)
	if errors.Is(err, store.ErrTokenUnavailable) {
		return nil, ErrInvalidLink
	}
	if err != nil {
		return nil, fmt.Errorf("resolve link: %w", err)
	}
	return b, nil
}

// SubmitVoteInput carries a vote form submission. IPHash and UserAgent are
// optional request metadata.
type SubmitVoteInput struct {
	Token     string
	Decision  string
	Comment   string
	IPHash    string
	UserAgent string
}

// SubmitVote consumes the token and records the decision. The decision must
// be one of models.Decisions.
func (s *Service) SubmitVote(ctx context.Context, in SubmitVoteInput) (*models.Vote, error) {
	if in.Token == "" || strings.TrimSpace(in.Decision) == "" {
		return nil, invalid("token and decision are required")
	}
	decision, ok := models.ParseDecision(in.Decision)
	if !ok {
		return nil, invalid("invalid decision %q", in.Decision)
	}

	v := &models.Vote{
		Decision: decision,
		Comment:  strings.TrimSpace(in.Comment),
	}
	if in.IPHash != "" {
		v.IPHash = &in.IPHash
	}
	if in.UserAgent != "" {
		v.UserAgent = &in.UserAgent
	}

	err := s.store.ConsumeToken(ctx, in.Token, v)
	if errors.Is(err, store.ErrTokenUnavailable) {
		return nil, ErrInvalidLink
	}
	if err != nil {
		return nil, fmt.Errorf("submit vote: %w", err)
	}

	s.logger.Info("vote recorded", "meeting_id", v.MeetingID, "member_id", v.MemberID, "decision", v.Decision)
	return v, nil
}

// Results gathers the secretary's view of a meeting.
func (s *Service) Results(ctx context.Context, meetingID string) (*models.MeetingResultsResponse, error) {
	m, err := s.store.GetMeeting(ctx, meetingID)
	if errors.Is(err, store.ErrMeetingNotFound) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	votes, err := s.store.ListVotes(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	tally, err := s.store.Tally(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	return &models.MeetingResultsResponse{
		Meeting: *m,
		Members: members,
		Votes:   votes,
		Tally:   tally,
	}, nil
}
