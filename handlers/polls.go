// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/store"
	"github.com/danielhkuo/pollbooth/tally"
)

// ListPath is where voters land after a refused vote or a closed poll
const ListPath = "/polls"

type PollHandler struct {
	store *store.Store
}

func NewPollHandler(st *store.Store) *PollHandler {
	return &PollHandler{store: st}
}

// ListPolls handles GET /polls?filter=active|past
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	filter := models.FilterActive
	if f := r.URL.Query().Get("filter"); f != "" && f != models.FilterActive {
		filter = models.FilterPast
	}

	polls, err := h.store.ListPolls(r.Context())
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	totals, err := h.store.VoteTotals(r.Context())
	if err != nil {
		slog.Error("failed to sum votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	active, past := tally.Partition(polls, now)

	selected := active
	if filter == models.FilterPast {
		selected = past
	}

	resp := models.PollListResponse{
		Filter: filter,
		Polls:  make([]models.PollSummary, 0, len(selected)),
	}
	for _, p := range selected {
		resp.Polls = append(resp.Polls, summarize(p, totals[p.ID], now))
	}

	if filter == models.FilterActive && len(resp.Polls) > 0 {
		featured := resp.Polls[0]
		resp.Featured = &featured
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetPoll handles GET /polls/{id}, the data behind the voting form
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	poll, err := h.store.GetPoll(r.Context(), pollID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !tally.PollIsOpen(poll, time.Now()) {
		middleware.RedirectResponse(w, ListPath, models.CastVoteResponse{
			Accepted: false,
			Redirect: ListPath,
		})
		return
	}

	choices, err := h.store.ListChoices(r.Context(), pollID)
	if err != nil {
		slog.Error("failed to query choices", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollWithChoices{
		Poll:    poll,
		Choices: choices,
	})
}

func summarize(p models.Poll, total int, now time.Time) models.PollSummary {
	s := models.PollSummary{
		Poll:       p,
		IsOpen:     tally.PollIsOpen(p, now),
		TotalVotes: total,
	}
	if p.EndDate != nil {
		s.EndsHuman = humanize.RelTime(*p.EndDate, now, "ago", "from now")
	}
	return s
}
