// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the service.

# Request Types

  - CreateMeetingRequest: title, content, start_time, end_time, names, emails

Names and emails are newline-delimited strings, matching the secretary form.

# Response Types

  - CreateMeetingResponse: meeting_id, member_count, admin_key, results_url
  - SubmitVoteResponse: status, vote_id
  - MeetingResultsResponse: meeting, members, votes, tally
  - ErrorResponse: error, message

# Domain Types

  - Meeting: a single vote event with title, content and time window
  - Member: an eligible voter tied to one meeting
  - Vote: a recorded decision
  - Ballot: what a valid vote link resolves to

# Decisions

Decision is a closed set:

	DecisionAgree         = "agree"
	DecisionDisagree      = "disagree"
	DecisionNeedsMoreInfo = "needs_more_information"

Use ParseDecision at every boundary; it is the only way to obtain a
Decision from user input.
*/
package models
