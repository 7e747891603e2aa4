// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers for the meeting vote service.

# Handler Types

Each handler is a struct holding the voting service and config:

  - MeetingHandler: landing page, secretary form, meeting creation
  - VoteHandler: vote page and vote submission
  - ResultsHandler: secretary's results view

	meetingHandler := handlers.NewMeetingHandler(svc, cfg)

# Meeting Creation

	GET  /secretary → SecretaryForm
	POST /secretary → SecretarySubmit (form; plain text 400 on bad input)
	POST /meetings  → CreateMeeting (JSON; returns admin_key)

Names and emails are newline separated. Start and end accept
datetime-local values or RFC 3339; values without a zone are UTC.

# Voting

	GET  /vote?token= → VotePage
	POST /submit      → Submit (token, decision, comment)

Loading the page never uses up the link. Submit answers JSON in both the
success and the failure case so the page script can show the outcome.

# Results

	GET /meetings/{id}/results → GetResults

Requires the X-Admin-Key header.

Pages are html/template files embedded from templates/.
*/
package handlers
