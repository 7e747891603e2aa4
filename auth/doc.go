// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and key validation utilities.

# Vote Tokens

Vote tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateVoteToken()

Tokens are URL-safe base64 encoded and embedded in each member's vote link.
The link is a bearer capability: whoever holds it can vote once.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(meetingID, salt)
	err := auth.ValidateAdminKey(meetingID, adminKey, salt)

The secretary receives the key when a meeting is created and presents it
in the X-Admin-Key header to read results. Nothing is stored.

# IP Hashing

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256. Stored on vote rows
instead of the raw address.
*/
package auth
