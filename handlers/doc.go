// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pollbooth API.

# Handler Types

Each handler is a struct over the store. AdminHandler also holds the
config for key checks and token signing:

  - PollHandler: Poll list and voting form data
  - VotingHandler: Vote casting
  - ResultsHandler: Ranked results
  - AdminHandler: Admin console (login, dashboard, poll and choice management)

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(st)
	adminHandler := handlers.NewAdminHandler(st, cfg, handlers.DefaultAdminSite())

# Voting Flow

	GET  /polls?filter=active → ListPolls (featured = newest open poll)
	GET  /polls/{id}          → GetPoll
	POST /polls/{id}/vote     → CastVote
	GET  /polls/{id}/results  → GetResults

A poll accepts votes while it is active and its end date, if any, has not
passed (see package tally). CastVote answers 303 See Other either way:
to the results page when the vote was recorded, to /polls when the poll
was closed. Each submitted choice id gains exactly one vote; duplicates,
malformed ids and choices of other polls are ignored.

# Admin Console

AdminSite holds the console configuration: titles, dashboard limits and a
ModelAdmin per model with search fields, ordering and list limits.
Admin routes are wrapped in middleware.RequireAdmin by the router; the
handlers themselves do not check tokens.
*/
package handlers
