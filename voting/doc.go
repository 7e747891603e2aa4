// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the meeting vote workflow.

Service ties the store to a notification Dispatcher:

	svc := voting.NewService(store.New(conn), dispatcher, cfg, logger)

# Operations

  - CreateMeeting: validate, store meeting + members + tokens in one
    transaction, then notify every member. Delivery is best effort.
  - ResolveLink: look up an unused token. Read-only.
  - SubmitVote: validate the decision against models.Decisions, then
    consume the token and record the vote atomically.
  - Results: meeting, members with voted flag, votes and tally.

# Errors

	*ValidationError     input rejected before any write (HTTP 400)
	ErrInvalidLink       unknown or used token; the two are never told apart
	ErrMeetingNotFound   results requested for a missing meeting

A token moves from unused to used exactly once. Every other submission for
it returns ErrInvalidLink and writes nothing.
*/
package voting
