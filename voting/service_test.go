// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting_test

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/meeting-vote/models"
	"github.com/danielhkuo/meeting-vote/notify"
	"github.com/danielhkuo/meeting-vote/store"
	"github.com/danielhkuo/meeting-vote/testutil"
	"github.com/danielhkuo/meeting-vote/voting"
)

func newService(t *testing.T) (*voting.Service, *sql.DB, *testutil.RecordingDispatcher) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	rec := &testutil.RecordingDispatcher{}
	return voting.NewService(store.New(conn), rec, testutil.GetTestConfig(), nil), conn, rec
}

func validInput() voting.CreateMeetingInput {
	start := time.Date(2026, 5, 4, 14, 0, 0, 0, time.UTC)
	return voting.CreateMeetingInput{
		Title:     "Investment Committee",
		Content:   "Approve the Harbor Road acquisition",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Names:     []string{"Alice", "Bob"},
		Emails:    []string{"a@x.com", "b@x.com"},
	}
}

// tokenFrom extracts the token from a dispatched vote URL.
func tokenFrom(t *testing.T, voteURL string) string {
	t.Helper()
	u, err := url.Parse(voteURL)
	if err != nil {
		t.Fatalf("bad vote URL %q: %v", voteURL, err)
	}
	return u.Query().Get("token")
}

func TestCreateMeeting(t *testing.T) {
	svc, conn, rec := newService(t)

	res, err := svc.CreateMeeting(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateMeeting() error = %v", err)
	}
	if len(res.Members) != 2 || res.Sent != 2 || res.Failed != 0 {
		t.Errorf("CreateMeeting() = %d members, %d sent, %d failed", len(res.Members), res.Sent, res.Failed)
	}

	if n := testutil.CountRows(t, conn, "member"); n != 2 {
		t.Errorf("expected 2 members, got %d", n)
	}
	if n := testutil.CountRows(t, conn, "vote_token"); n != 2 {
		t.Errorf("expected 2 tokens, got %d", n)
	}

	sent := rec.Notifications()
	if len(sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(sent))
	}
	tokens := map[string]bool{}
	for _, n := range sent {
		if !strings.HasPrefix(n.VoteURL, "http://vote.test/vote?token=") {
			t.Errorf("unexpected vote URL %s", n.VoteURL)
		}
		if n.Subject() != "[Meeting Vote] Investment Committee" {
			t.Errorf("unexpected subject %q", n.Subject())
		}
		tokens[tokenFrom(t, n.VoteURL)] = true
	}
	if len(tokens) != 2 {
		t.Errorf("expected 2 distinct tokens, got %d", len(tokens))
	}
}

func TestCreateMeetingDispatchFailureIsIsolated(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	rec := &testutil.RecordingDispatcher{Fail: map[string]bool{"a@x.com": true}}
	cfg := testutil.GetTestConfig()
	cfg.MailConcurrency = 4
	svc := voting.NewService(store.New(conn), rec, cfg, nil)

	in := validInput()
	in.Names = append(in.Names, "Carol")
	in.Emails = append(in.Emails, "c@x.com")

	res, err := svc.CreateMeeting(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateMeeting() error = %v", err)
	}
	if res.Sent != 2 || res.Failed != 1 {
		t.Errorf("sent/failed = %d/%d, want 2/1", res.Sent, res.Failed)
	}

	// Rows for the failed member stay committed.
	if n := testutil.CountRows(t, conn, "vote_token"); n != 3 {
		t.Errorf("expected 3 tokens, got %d", n)
	}
	for _, n := range rec.Notifications() {
		if n.To == "a@x.com" {
			t.Error("failed address recorded as sent")
		}
	}
}

// cancellingDispatcher cancels the caller's context during the first send
// and fails any send whose context is already done.
type cancellingDispatcher struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	sent   []string
}

func (d *cancellingDispatcher) Dispatch(ctx context.Context, n notify.Notification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.sent = append(d.sent, n.To)
	return true
}

func TestCreateMeetingSurvivesRequestCancellation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := &cancellingDispatcher{cancel: cancel}
	svc := voting.NewService(store.New(conn), d, testutil.GetTestConfig(), nil)

	in := validInput()
	in.Names = append(in.Names, "Carol")
	in.Emails = append(in.Emails, "c@x.com")

	res, err := svc.CreateMeeting(ctx, in)
	if err != nil {
		t.Fatalf("CreateMeeting() error = %v", err)
	}
	if res.Sent != 3 || res.Failed != 0 {
		t.Errorf("sent/failed = %d/%d, want 3/0", res.Sent, res.Failed)
	}
	if len(d.sent) != 3 {
		t.Errorf("delivered to %v, want all 3 members", d.sent)
	}
}

func TestCreateMeetingValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *voting.CreateMeetingInput)
	}{
		{"names and emails mismatch", func(in *voting.CreateMeetingInput) { in.Emails = in.Emails[:1] }},
		{"empty title", func(in *voting.CreateMeetingInput) { in.Title = "   " }},
		{"missing start", func(in *voting.CreateMeetingInput) { in.StartTime = time.Time{} }},
		{"bad email", func(in *voting.CreateMeetingInput) { in.Emails[1] = "bob-at-x" }},
		{"blank name", func(in *voting.CreateMeetingInput) { in.Names[0] = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, conn, rec := newService(t)

			in := validInput()
			tt.mutate(&in)

			_, err := svc.CreateMeeting(context.Background(), in)
			var verr *voting.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("CreateMeeting() error = %v, want ValidationError", err)
			}

			for _, table := range []string{"meeting", "member", "vote_token", "vote"} {
				if n := testutil.CountRows(t, conn, table); n != 0 {
					t.Errorf("%s has %d rows after rejected input", table, n)
				}
			}
			if len(rec.Notifications()) != 0 {
				t.Error("notifications sent for rejected input")
			}
		})
	}
}

func TestCreateMeetingAllowsStartAfterEnd(t *testing.T) {
	svc, _, _ := newService(t)
	in := validInput()
	in.StartTime, in.EndTime = in.EndTime, in.StartTime

	if _, err := svc.CreateMeeting(context.Background(), in); err != nil {
		t.Errorf("CreateMeeting() error = %v, want nil", err)
	}
}

func TestSubmitVoteThenResubmit(t *testing.T) {
	svc, conn, rec := newService(t)
	ctx := context.Background()

	res, err := svc.CreateMeeting(ctx, validInput())
	if err != nil {
		t.Fatal(err)
	}
	token := tokenFrom(t, rec.Notifications()[0].VoteURL)

	ballot, err := svc.ResolveLink(ctx, token)
	if err != nil {
		t.Fatalf("ResolveLink() error = %v", err)
	}
	if ballot.Meeting.Content != "Approve the Harbor Road acquisition" {
		t.Errorf("ResolveLink() content = %q", ballot.Meeting.Content)
	}

	v, err := svc.SubmitVote(ctx, voting.SubmitVoteInput{Token: token, Decision: "agree", Comment: "fine by me"})
	if err != nil {
		t.Fatalf("SubmitVote() error = %v", err)
	}
	if v.MeetingID != res.Meeting.ID || v.Decision != models.DecisionAgree {
		t.Errorf("SubmitVote() = %+v", v)
	}

	_, err = svc.SubmitVote(ctx, voting.SubmitVoteInput{Token: token, Decision: "disagree"})
	if !errors.Is(err, voting.ErrInvalidLink) {
		t.Fatalf("resubmit error = %v, want ErrInvalidLink", err)
	}

	if _, err := svc.ResolveLink(ctx, token); !errors.Is(err, voting.ErrInvalidLink) {
		t.Errorf("ResolveLink(used) error = %v, want ErrInvalidLink", err)
	}

	var count int
	var decision string
	if err := conn.QueryRow(`SELECT COUNT(*), MAX(decision) FROM vote WHERE member_id = $1`, v.MemberID).Scan(&count, &decision); err != nil {
		t.Fatal(err)
	}
	if count != 1 || decision != "agree" {
		t.Errorf("votes for token = %d (%s), want 1 (agree)", count, decision)
	}
}

func TestSubmitVoteRejectsBadInput(t *testing.T) {
	svc, conn, rec := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateMeeting(ctx, validInput()); err != nil {
		t.Fatal(err)
	}
	token := tokenFrom(t, rec.Notifications()[0].VoteURL)

	tests := []struct {
		name     string
		in       voting.SubmitVoteInput
		wantLink bool
	}{
		{"missing token", voting.SubmitVoteInput{Decision: "agree"}, false},
		{"missing decision", voting.SubmitVoteInput{Token: token}, false},
		{"decision outside set", voting.SubmitVoteInput{Token: token, Decision: "abstain"}, false},
		{"never issued token", voting.SubmitVoteInput{Token: "not-a-token", Decision: "agree"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitVote(ctx, tt.in)
			if tt.wantLink {
				if !errors.Is(err, voting.ErrInvalidLink) {
					t.Errorf("error = %v, want ErrInvalidLink", err)
				}
			} else {
				var verr *voting.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("error = %v, want ValidationError", err)
				}
			}
		})
	}

	if n := testutil.CountRows(t, conn, "vote"); n != 0 {
		t.Errorf("expected no votes, got %d", n)
	}

	// The token survived every rejected attempt.
	if _, err := svc.ResolveLink(ctx, token); err != nil {
		t.Errorf("token no longer valid after rejected submissions: %v", err)
	}
}

func TestSubmitVoteAcceptsSpacedDecision(t *testing.T) {
	svc, _, rec := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateMeeting(ctx, validInput()); err != nil {
		t.Fatal(err)
	}
	token := tokenFrom(t, rec.Notifications()[1].VoteURL)

	v, err := svc.SubmitVote(ctx, voting.SubmitVoteInput{Token: token, Decision: "Needs more information"})
	if err != nil {
		t.Fatalf("SubmitVote() error = %v", err)
	}
	if v.Decision != models.DecisionNeedsMoreInfo {
		t.Errorf("decision = %s", v.Decision)
	}
}

func TestResolveLinkUnknown(t *testing.T) {
	svc, _, _ := newService(t)
	for _, token := range []string{"", "never-issued"} {
		b, err := svc.ResolveLink(context.Background(), token)
		if !errors.Is(err, voting.ErrInvalidLink) {
			t.Errorf("ResolveLink(%q) error = %v, want ErrInvalidLink", token, err)
		}
		if b != nil {
			t.Errorf("ResolveLink(%q) returned content", token)
		}
	}
}

func TestResults(t *testing.T) {
	svc, _, rec := newService(t)
	ctx := context.Background()

	res, err := svc.CreateMeeting(ctx, validInput())
	if err != nil {
		t.Fatal(err)
	}
	token := tokenFrom(t, rec.Notifications()[0].VoteURL)
	if _, err := svc.SubmitVote(ctx, voting.SubmitVoteInput{Token: token, Decision: "disagree"}); err != nil {
		t.Fatal(err)
	}

	out, err := svc.Results(ctx, res.Meeting.ID)
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	if len(out.Members) != 2 || len(out.Votes) != 1 {
		t.Errorf("Results() = %d members, %d votes", len(out.Members), len(out.Votes))
	}
	if out.Tally[models.DecisionDisagree] != 1 || out.Tally[models.DecisionAgree] != 0 {
		t.Errorf("Results() tally = %v", out.Tally)
	}

	if _, err := svc.Results(ctx, "missing"); !errors.Is(err, voting.ErrMeetingNotFound) {
		t.Errorf("Results(missing) error = %v, want ErrMeetingNotFound", err)
	}
}
