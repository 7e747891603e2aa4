// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/meeting-vote/auth"
	"github.com/danielhkuo/meeting-vote/cliparse"
	"github.com/danielhkuo/meeting-vote/middleware"
	"github.com/danielhkuo/meeting-vote/models"
	"github.com/danielhkuo/meeting-vote/voting"
)

type MeetingHandler struct {
	svc *voting.Service
	cfg cliparse.Config
}

func NewMeetingHandler(svc *voting.Service, cfg cliparse.Config) *MeetingHandler {
	return &MeetingHandler{svc: svc, cfg: cfg}
}

// Index handles GET /
func (h *MeetingHandler) Index(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, "index.html", nil)
}

// SecretaryForm handles GET /secretary
func (h *MeetingHandler) SecretaryForm(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, "secretary.html", nil)
}

// SecretarySubmit handles POST /secretary
// Validation failures are answered in plain text, as the form expects.
func (h *MeetingHandler) SecretarySubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	in, err := meetingInput(models.CreateMeetingRequest{
		Title:     r.PostFormValue("title"),
		Content:   r.PostFormValue("content"),
		StartTime: r.PostFormValue("start"),
		EndTime:   r.PostFormValue("end"),
		Names:     r.PostFormValue("names"),
		Emails:    r.PostFormValue("emails"),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.CreateMeeting(r.Context(), in)
	var verr *voting.ValidationError
	if errors.As(err, &verr) {
		http.Error(w, verr.Message, http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("failed to create meeting", "error", err)
		http.Error(w, "Failed to create meeting", http.StatusInternalServerError)
		return
	}

	renderHTML(w, http.StatusOK, "created.html", h.createdResponse(res))
}

// CreateMeeting handles POST /meetings
func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMeetingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	in, err := meetingInput(req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.CreateMeeting(r.Context(), in)
	var verr *voting.ValidationError
	if errors.As(err, &verr) {
		middleware.ErrorResponse(w, http.StatusBadRequest, verr.Message)
		return
	}
	if err != nil {
		slog.Error("failed to create meeting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create meeting")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, h.createdResponse(res))
}

func (h *MeetingHandler) createdResponse(res *voting.CreateMeetingResult) models.CreateMeetingResponse {
	id := res.Meeting.ID
	return models.CreateMeetingResponse{
		MeetingID:   id,
		MemberCount: len(res.Members),
		AdminKey:    auth.GenerateAdminKey(id, h.cfg.AdminKeySalt),
		ResultsURL:  strings.TrimRight(h.cfg.BaseURL, "/") + "/meetings/" + id + "/results",
		Message:     fmt.Sprintf("Meeting created. %d of %d notifications sent.", res.Sent, len(res.Members)),
	}
}

// meetingInput converts the raw submission into service input. Names and
// emails are newline separated with blank lines dropped.
func meetingInput(req models.CreateMeetingRequest) (voting.CreateMeetingInput, error) {
	start, ok := parseMeetingTime(req.StartTime)
	if !ok {
		return voting.CreateMeetingInput{}, fmt.Errorf("invalid start time %q", req.StartTime)
	}
	end, ok := parseMeetingTime(req.EndTime)
	if !ok {
		return voting.CreateMeetingInput{}, fmt.Errorf("invalid end time %q", req.EndTime)
	}
	return voting.CreateMeetingInput{
		Title:     req.Title,
		Content:   req.Content,
		StartTime: start,
		EndTime:   end,
		Names:     splitLines(req.Names),
		Emails:    splitLines(req.Emails),
	}, nil
}
