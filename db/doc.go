// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open selects the driver from cliparse.Config.DatabaseType:

  - sqlite (default): modernc.org/sqlite, pure Go, one open connection
  - postgres: github.com/lib/pq

	conn, err := db.Open(cfg)

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on both drivers, and queries use $n placeholders, which
both understand.

# Tables

  - meeting: title, content, start/end time
  - member: one row per invited committee member
  - vote_token: one single-use token per member
  - vote: at most one decision per member

# Relationships

	meeting 1──* member
	member  1──1 vote_token
	member  1──0..1 vote
	meeting 1──* vote

vote_token.token is UNIQUE across all meetings. vote.member_id is UNIQUE so
a member can never hold two votes even if a token were replayed.

# Errors

IsUniqueViolation recognises constraint failures from both drivers so callers
can react to collisions without parsing error strings.
*/
package db
