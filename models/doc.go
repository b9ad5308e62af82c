// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Poll: title, question, created_at, optional end_date, is_active
  - Choice: choice_text and vote counter, owned by one poll
  - ChoiceResult: a Choice with its computed percentage

Domain types carry both json and db tags so the store can scan rows
straight into them.

# Request Types

  - CastVoteRequest: choice_ids (JSON ballots; forms use "choice")
  - AdminLoginRequest: key
  - CreatePollRequest: title, question, is_active, end_date, choices
  - UpdatePollRequest: title, question, is_active, end_date
  - AddChoiceRequest / UpdateChoiceRequest

# Response Types

  - PollListResponse: filter, polls, featured
  - CastVoteResponse: accepted, redirect
  - ResultsResponse: poll, total_votes, ranked choices
  - AdminLoginResponse, AdminSiteResponse, DashboardResponse
  - ErrorResponse: error, message
*/
package models
