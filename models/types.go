package models

import (
	"strings"
	"time"
)

// Decision is a member's recorded choice. Only the values below are valid.
type Decision string

const (
	DecisionAgree         Decision = "agree"
	DecisionDisagree      Decision = "disagree"
	DecisionNeedsMoreInfo Decision = "needs_more_information"
)

// Decisions lists every valid decision in display order.
var Decisions = []Decision{DecisionAgree, DecisionDisagree, DecisionNeedsMoreInfo}

// ParseDecision maps raw form input onto the closed decision set.
// "needs more information" (with spaces) is accepted as an alias.
func ParseDecision(raw string) (Decision, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.ReplaceAll(v, " ", "_")
	for _, d := range Decisions {
		if string(d) == v {
			return d, true
		}
	}
	return "", false
}

// Label returns the human-readable form of the decision.
func (d Decision) Label() string {
	switch d {
	case DecisionAgree:
		return "Agree"
	case DecisionDisagree:
		return "Disagree"
	case DecisionNeedsMoreInfo:
		return "Needs more information"
	}
	return string(d)
}

// Request types

// Names and Emails are newline-delimited, one entry per line.
type CreateMeetingRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Names     string `json:"names"`
	Emails    string `json:"emails"`
}

// Response types

type CreateMeetingResponse struct {
	MeetingID   string `json:"meeting_id"`
	MemberCount int    `json:"member_count"`
	AdminKey    string `json:"admin_key"`
	ResultsURL  string `json:"results_url"`
	Message     string `json:"message"`
}

type SubmitVoteResponse struct {
	Status string `json:"status"`
	VoteID string `json:"vote_id"`
}

type MeetingResultsResponse struct {
	Meeting Meeting          `json:"meeting"`
	Members []MemberStatus   `json:"members"`
	Votes   []Vote           `json:"votes"`
	Tally   map[Decision]int `json:"tally"`
}

// Domain types

type Meeting struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

type Member struct {
	ID        string `json:"id"`
	MeetingID string `json:"meeting_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// MemberStatus is a member plus whether their token has been consumed.
type MemberStatus struct {
	Member
	HasVoted bool `json:"has_voted"`
}

type Vote struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"member_id"`
	MeetingID   string    `json:"meeting_id"`
	Decision    Decision  `json:"decision"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

// Ballot is what a valid vote link resolves to: the meeting to display and
// the member the link was issued to.
type Ballot struct {
	Meeting Meeting
	Member  Member
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
