// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollbooth API server.

pollbooth runs simple public polls. Voters pick one or more choices on an
open poll and see live results ranked by votes. Administrators manage polls
and choices through a token-protected admin API.

# Commands

	pollbooth [flags] serve    Run the HTTP server (default)
	pollbooth [flags] seed     Replace all polls with sample data
	pollbooth genkey           Print a new random SECRET_KEY

# Starting the Server

	DATABASE_URL=app.db ADMIN_KEY=... SECRET_KEY=... go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." -admin-key ... -secret-key ... serve

A .env file in the working directory is loaded first; real environment
variables take precedence.

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string (serve, seed)
  - ADMIN_KEY (-admin-key): key exchanged for admin tokens (serve)
  - SECRET_KEY (-secret-key): admin token signing secret (serve)

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - LOG_LEVEL (-log-level): debug, info, warn or error (default: info)

Logs are text on a terminal and JSON otherwise.

# Architecture

  - handlers: HTTP request handlers (polls, voting, results, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin guard, JSON helpers
  - tally: Open/closed rule, totals, percentages, ranking
  - store: Poll and choice persistence (sqlx)
  - models: Domain, request and response types
  - auth: Admin key check, admin tokens, secret generation
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
