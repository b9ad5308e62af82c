// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Opening

Open is the only way the server and the tests connect:

	conn, err := db.Open(cfg.DriverName(), cfg.DatabaseURL)

For SQLite it adds the foreign_keys and busy_timeout pragmas and the
sqlite time format to the DSN, and caps the pool at one connection.
PostgreSQL URLs pass through unchanged.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL sticks to types and defaults that PostgreSQL and SQLite share.

# Tables

  - poll: Title, question, voting window (is_active, end_date)
  - choice: Choice text, vote counter, stored position

# Relationships

	poll 1──* choice

choice.poll_id uses ON DELETE CASCADE. choice.votes carries a
CHECK (votes >= 0) constraint.
*/
package db
