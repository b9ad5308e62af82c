// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/store"
	"github.com/danielhkuo/pollbooth/tally"
)

// ModelAdmin configures how one model is listed in the admin console
type ModelAdmin struct {
	SearchFields []string
	// Ordering uses column names; a leading "-" sorts descending
	Ordering    []string
	ListLimit   int
	InlineExtra int
}

// AdminSite is the admin console configuration
type AdminSite struct {
	Header      string
	Title       string
	IndexTitle  string
	RecentLimit int
	TopLimit    int
	Polls       ModelAdmin
	Choices     ModelAdmin
}

// DefaultAdminSite returns the stock admin console configuration
func DefaultAdminSite() AdminSite {
	return AdminSite{
		Header:      "Voting App Admin",
		Title:       "Voting App Admin Portal",
		IndexTitle:  "Dashboard Overview",
		RecentLimit: 5,
		TopLimit:    5,
		Polls: ModelAdmin{
			SearchFields: []string{"title", "question"},
			Ordering:     []string{"-created_at"},
			InlineExtra:  3,
		},
		Choices: ModelAdmin{
			SearchFields: []string{"choice_text"},
			Ordering:     []string{"-votes"},
		},
	}
}

type AdminHandler struct {
	store *store.Store
	cfg   cliparse.Config
	site  AdminSite
}

func NewAdminHandler(st *store.Store, cfg cliparse.Config, site AdminSite) *AdminHandler {
	return &AdminHandler{store: st, cfg: cfg, site: site}
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.ValidateAdminKey(req.Key, h.cfg.AdminKey); err != nil {
		slog.Warn("admin login failed", "client_ip", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	token, expiresAt, err := auth.IssueAdminToken(h.cfg.SecretKey, time.Now())
	if err != nil {
		slog.Error("failed to issue admin token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("admin logged in", "client_ip", middleware.GetClientIP(r))

	middleware.JSONResponse(w, http.StatusOK, models.AdminLoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Site handles GET /admin
func (h *AdminHandler) Site(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.AdminSiteResponse{
		Header:      h.site.Header,
		Title:       h.site.Title,
		IndexTitle:  h.site.IndexTitle,
		InlineExtra: h.site.Polls.InlineExtra,
	})
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
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
	choiceCount, err := h.store.CountChoices(r.Context())
	if err != nil {
		slog.Error("failed to count choices", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	active, past := tally.Partition(polls, now)

	rows := pollRows(polls, totals, now)
	totalVotes := 0
	for _, row := range rows {
		totalVotes += row.TotalVotes
	}

	// polls arrive newest first, so ties in the top list stay newest first
	top := make([]models.AdminPollRow, len(rows))
	copy(top, rows)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].TotalVotes > top[j].TotalVotes
	})

	middleware.JSONResponse(w, http.StatusOK, models.DashboardResponse{
		TotalPolls:   len(polls),
		ActivePolls:  len(active),
		PastPolls:    len(past),
		TotalVotes:   totalVotes,
		TotalChoices: choiceCount,
		VotesDisplay: humanize.Comma(int64(totalVotes)),
		RecentPolls:  limitRows(rows, h.site.RecentLimit),
		TopPolls:     limitRows(top, h.site.TopLimit),
	})
}

// ListPolls handles GET /admin/polls?q=&active=
func (h *AdminHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	filter := store.PollFilter{
		Search:       strings.TrimSpace(r.URL.Query().Get("q")),
		SearchFields: h.site.Polls.SearchFields,
		Ordering:     h.site.Polls.Ordering,
		Limit:        h.site.Polls.ListLimit,
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		filter.Active = &active
	}

	polls, err := h.store.SearchPolls(r.Context(), filter)
	if err != nil {
		slog.Error("failed to search polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	totals, err := h.store.VoteTotals(r.Context())
	if err != nil {
		slog.Error("failed to sum votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, pollRows(polls, totals, time.Now()))
}

// CreatePoll handles POST /admin/polls
func (h *AdminHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Question = strings.TrimSpace(req.Question)
	if msg := validatePoll(req.Title, req.Question); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	for _, text := range req.Choices {
		if utf8.RuneCountInString(strings.TrimSpace(text)) > models.MaxChoiceTextLen {
			middleware.ErrorResponse(w, http.StatusBadRequest, "choice_text must be at most 200 characters")
			return
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	poll, choices, err := h.store.CreatePoll(r.Context(), models.Poll{
		Title:    req.Title,
		Question: req.Question,
		EndDate:  req.EndDate,
		IsActive: isActive,
	}, req.Choices)
	if err != nil {
		slog.Error("failed to create poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "choices", len(choices))

	middleware.JSONResponse(w, http.StatusCreated, models.PollWithChoices{
		Poll:    poll,
		Choices: choices,
	})
}

// GetPoll handles GET /admin/polls/{id}
func (h *AdminHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

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

// UpdatePoll handles PUT /admin/polls/{id}
func (h *AdminHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Question = strings.TrimSpace(req.Question)
	if msg := validatePoll(req.Title, req.Question); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	err := h.store.UpdatePoll(r.Context(), models.Poll{
		ID:       pollID,
		Title:    req.Title,
		Question: req.Question,
		EndDate:  req.EndDate,
		IsActive: req.IsActive,
	})
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to update poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
		return
	}

	poll, err := h.store.GetPoll(r.Context(), pollID)
	if err != nil {
		slog.Error("failed to reload poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("poll updated", "poll_id", pollID)
	middleware.JSONResponse(w, http.StatusOK, poll)
}

// DeletePoll handles DELETE /admin/polls/{id}
func (h *AdminHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	err := h.store.DeletePoll(r.Context(), pollID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete poll")
		return
	}

	slog.Info("poll deleted", "poll_id", pollID)
	w.WriteHeader(http.StatusNoContent)
}

// ListChoices handles GET /admin/choices?poll=&q=
func (h *AdminHandler) ListChoices(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.SearchChoices(r.Context(), store.ChoiceFilter{
		PollID:       r.URL.Query().Get("poll"),
		Search:       strings.TrimSpace(r.URL.Query().Get("q")),
		SearchFields: h.site.Choices.SearchFields,
		Ordering:     h.site.Choices.Ordering,
		Limit:        h.site.Choices.ListLimit,
	})
	if err != nil {
		slog.Error("failed to search choices", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	totals, err := h.store.VoteTotals(r.Context())
	if err != nil {
		slog.Error("failed to sum votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	for i := range rows {
		rows[i].Percentage = tally.Percentage(rows[i].Votes, totals[rows[i].PollID])
	}

	middleware.JSONResponse(w, http.StatusOK, rows)
}

// AddChoice handles POST /admin/polls/{id}/choices
func (h *AdminHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	var req models.AddChoiceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	text := strings.TrimSpace(req.ChoiceText)
	if msg := validateChoiceText(text); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	choice, err := h.store.AddChoice(r.Context(), pollID, text)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to add choice", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create choice")
		return
	}

	slog.Info("choice added", "poll_id", pollID, "choice_id", choice.ID)
	middleware.JSONResponse(w, http.StatusCreated, choice)
}

// UpdateChoice handles PUT /admin/choices/{id}
func (h *AdminHandler) UpdateChoice(w http.ResponseWriter, r *http.Request) {
	choiceID := r.PathValue("id")

	var req models.UpdateChoiceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	text := strings.TrimSpace(req.ChoiceText)
	if msg := validateChoiceText(text); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	if req.Votes < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "votes must not be negative")
		return
	}

	err := h.store.UpdateChoice(r.Context(), models.Choice{
		ID:         choiceID,
		ChoiceText: text,
		Votes:      req.Votes,
	})
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Choice not found")
		return
	}
	if err != nil {
		slog.Error("failed to update choice", "error", err, "choice_id", choiceID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update choice")
		return
	}

	choice, err := h.store.GetChoice(r.Context(), choiceID)
	if err != nil {
		slog.Error("failed to reload choice", "error", err, "choice_id", choiceID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("choice updated", "choice_id", choiceID, "votes", choice.Votes)
	middleware.JSONResponse(w, http.StatusOK, choice)
}

// DeleteChoice handles DELETE /admin/choices/{id}
func (h *AdminHandler) DeleteChoice(w http.ResponseWriter, r *http.Request) {
	choiceID := r.PathValue("id")

	err := h.store.DeleteChoice(r.Context(), choiceID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Choice not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete choice", "error", err, "choice_id", choiceID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete choice")
		return
	}

	slog.Info("choice deleted", "choice_id", choiceID)
	w.WriteHeader(http.StatusNoContent)
}

func validatePoll(title, question string) string {
	switch {
	case title == "":
		return "title is required"
	case utf8.RuneCountInString(title) > models.MaxTitleLen:
		return "title must be at most 200 characters"
	case question == "":
		return "question is required"
	}
	return ""
}

func validateChoiceText(text string) string {
	switch {
	case text == "":
		return "choice_text is required"
	case utf8.RuneCountInString(text) > models.MaxChoiceTextLen:
		return "choice_text must be at most 200 characters"
	}
	return ""
}

func pollRows(polls []models.Poll, totals map[string]int, now time.Time) []models.AdminPollRow {
	rows := make([]models.AdminPollRow, 0, len(polls))
	for _, p := range polls {
		rows = append(rows, models.AdminPollRow{
			Poll:       p,
			IsOpen:     tally.PollIsOpen(p, now),
			TotalVotes: totals[p.ID],
		})
	}
	return rows
}

func limitRows(rows []models.AdminPollRow, n int) []models.AdminPollRow {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
