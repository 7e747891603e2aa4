// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the meeting vote server.

A secretary creates a meeting with a list of committee members. Each member
is mailed a QR code for a single-use vote link; opening it shows the
meeting and lets the member agree, disagree or ask for more information.
Once a vote is recorded the link stops working.

# Starting the Server

Configuration comes from flags, the environment, or a .env file:

	ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 5000 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - ADMIN_KEY_SALT (-admin-salt): Secret for admin keys and IP hashing

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): Connection string (default: file:vote.db for sqlite)
  - BASE_URL (-base-url): Public URL used in vote links
  - SMTP_HOST, SMTP_PORT, EMAIL_FROM, SMTP_USERNAME, EMAIL_PASSWORD: Mail relay;
    without SMTP_HOST links are written to the log instead
  - MAIL_TIMEOUT, MAIL_CONCURRENCY: Per-message timeout and parallel sends
  - RATE_LIMIT_RPS, RATE_LIMIT_BURST: Per-IP limit on the vote routes
  - TRUST_PROXY (-trust-proxy): Take client IPs from X-Real-IP / X-Forwarded-For;
    only set it behind a reverse proxy that overwrites those headers

# Architecture

  - handlers: HTTP handlers and embedded page templates
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, rate limiting, client IP, JSON helpers
  - voting: Meeting creation, link resolution, vote submission
  - store: Transactional persistence of meetings, tokens and votes
  - notify: QR rendering and SMTP delivery
  - models: Domain and request/response types
  - auth: Vote tokens, admin keys, IP hashing
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
