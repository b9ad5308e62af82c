// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/store"
	"github.com/danielhkuo/pollbooth/tally"
)

type VotingHandler struct {
	store *store.Store
}

func NewVotingHandler(st *store.Store) *VotingHandler {
	return &VotingHandler{store: st}
}

// CastVote handles POST /polls/{id}/vote
//
// Accepts {"choice_ids": [...]} or form values named "choice". Every
// selected choice of this poll gains one vote; anything else is ignored.
// Answers 303 to the results page, or to the list when the poll is closed.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	submitted, err := parseChoiceIDs(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid vote submission")
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
		slog.Info("vote refused, poll closed", "poll_id", pollID)
		middleware.RedirectResponse(w, ListPath, models.CastVoteResponse{
			Accepted: false,
			Redirect: ListPath,
		})
		return
	}

	counted := 0
	for _, choiceID := range uniqueChoiceIDs(submitted) {
		ok, err := h.store.IncrementVote(r.Context(), pollID, choiceID)
		if err != nil {
			slog.Error("failed to record vote", "error", err, "poll_id", pollID, "choice_id", choiceID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
			return
		}
		if ok {
			counted++
		}
	}

	slog.Info("vote cast", "poll_id", pollID, "submitted", len(submitted), "counted", counted)

	resultsPath := ListPath + "/" + pollID + "/results"
	middleware.RedirectResponse(w, resultsPath, models.CastVoteResponse{
		Accepted: true,
		Redirect: resultsPath,
	})
}

// maxBallotMemory bounds the in-memory part of a multipart ballot
const maxBallotMemory = 1 << 20

// parseChoiceIDs reads the selected ids from a JSON, urlencoded or
// multipart body
func parseChoiceIDs(r *http.Request) ([]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req models.CastVoteRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			return nil, err
		}
		return req.ChoiceIDs, nil
	case "multipart/form-data":
		// Fills PostForm with the multipart values too
		if err := r.ParseMultipartForm(maxBallotMemory); err != nil {
			return nil, err
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	}
	return r.PostForm["choice"], nil
}

// uniqueChoiceIDs drops duplicates and values that cannot be choice ids
func uniqueChoiceIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
