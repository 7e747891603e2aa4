// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/meeting-vote/auth"
	"github.com/danielhkuo/meeting-vote/cliparse"
	"github.com/danielhkuo/meeting-vote/middleware"
	"github.com/danielhkuo/meeting-vote/models"
	"github.com/danielhkuo/meeting-vote/voting"
)

const displayLayout = "2006-01-02 15:04 MST"

type VoteHandler struct {
	svc *voting.Service
	cfg cliparse.Config
	now func() time.Time
}

func NewVoteHandler(svc *voting.Service, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{svc: svc, cfg: cfg, now: time.Now}
}

type votePage struct {
	Title     string
	Content   string
	Name      string
	Start     string
	End       string
	Window    string
	Token     string
	Decisions []models.Decision
}

// VotePage handles GET /vote?token=
// Loading the page never consumes the token.
func (h *VoteHandler) VotePage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	ballot, err := h.svc.ResolveLink(r.Context(), token)
	if errors.Is(err, voting.ErrInvalidLink) {
		renderHTML(w, http.StatusBadRequest, "message.html", "This link is invalid or has already been used.")
		return
	}
	if err != nil {
		slog.Error("failed to resolve vote link", "error", err)
		renderHTML(w, http.StatusInternalServerError, "message.html", "Something went wrong. Please try again later.")
		return
	}

	m := ballot.Meeting
	renderHTML(w, http.StatusOK, "vote.html", votePage{
		Title:     m.Title,
		Content:   m.Content,
		Name:      ballot.Member.Name,
		Start:     m.StartTime.Format(displayLayout),
		End:       m.EndTime.Format(displayLayout),
		Window:    describeWindow(m, h.now()),
		Token:     token,
		Decisions: models.Decisions,
	})
}

// describeWindow says where now falls relative to the meeting. It is
// informational; votes are accepted at any time.
func describeWindow(m models.Meeting, now time.Time) string {
	switch {
	case now.Before(m.StartTime):
		return "starts " + humanize.RelTime(m.StartTime, now, "ago", "from now")
	case now.Before(m.EndTime):
		return "ends " + humanize.RelTime(m.EndTime, now, "ago", "from now")
	default:
		return "ended " + humanize.RelTime(m.EndTime, now, "ago", "from now")
	}
}

// Submit handles POST /submit
// Accepts url-encoded or multipart form fields token, decision and comment.
func (h *VoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	in := voting.SubmitVoteInput{
		Token:     r.FormValue("token"),
		Decision:  r.FormValue("decision"),
		Comment:   r.FormValue("comment"),
		IPHash:    auth.HashIP(middleware.ClientIP(r, h.cfg.TrustProxy), h.cfg.AdminKeySalt),
		UserAgent: r.UserAgent(),
	}

	vote, err := h.svc.SubmitVote(r.Context(), in)
	var verr *voting.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.ErrorResponse(w, http.StatusBadRequest, verr.Message)
		return
	case errors.Is(err, voting.ErrInvalidLink):
		middleware.ErrorResponse(w, http.StatusBadRequest, voting.ErrInvalidLink.Error())
		return
	case err != nil:
		slog.Error("failed to submit vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		Status: "success",
		VoteID: vote.ID,
	})
}
