package models

import "time"

// List filter constants
const (
	FilterActive = "active"
	FilterPast   = "past"
)

// Field limits
const (
	MaxTitleLen      = 200
	MaxChoiceTextLen = 200
)

// Domain types

type Poll struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Question  string     `json:"question" db:"question"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`
	IsActive  bool       `json:"is_active" db:"is_active"`
}

type Choice struct {
	ID         string `json:"id" db:"id"`
	PollID     string `json:"poll_id" db:"poll_id"`
	ChoiceText string `json:"choice_text" db:"choice_text"`
	Votes      int    `json:"votes" db:"votes"`
	Position   int    `json:"-" db:"position"`
}

// ChoiceResult is a choice with its share of the poll total
type ChoiceResult struct {
	Choice
	Percentage float64 `json:"percentage"`
}

type PollWithChoices struct {
	Poll    Poll     `json:"poll"`
	Choices []Choice `json:"choices"`
}

// PollSummary is a list entry for the public poll index
type PollSummary struct {
	Poll
	IsOpen     bool   `json:"is_open"`
	TotalVotes int    `json:"total_votes"`
	EndsHuman  string `json:"ends_human,omitempty"`
}

// Request types

// Form submissions use repeated "choice" values instead
type CastVoteRequest struct {
	ChoiceIDs []string `json:"choice_ids"`
}

type AdminLoginRequest struct {
	Key string `json:"key"`
}

type CreatePollRequest struct {
	Title    string     `json:"title"`
	Question string     `json:"question"`
	IsActive *bool      `json:"is_active"`
	EndDate  *time.Time `json:"end_date"`
	Choices  []string   `json:"choices"`
}

// UpdatePollRequest replaces every editable poll field. created_at is not editable.
type UpdatePollRequest struct {
	Title    string     `json:"title"`
	Question string     `json:"question"`
	IsActive bool       `json:"is_active"`
	EndDate  *time.Time `json:"end_date"`
}

type AddChoiceRequest struct {
	ChoiceText string `json:"choice_text"`
}

type UpdateChoiceRequest struct {
	ChoiceText string `json:"choice_text"`
	Votes      int    `json:"votes"`
}

// Response types

type PollListResponse struct {
	Filter   string        `json:"filter"`
	Polls    []PollSummary `json:"polls"`
	Featured *PollSummary  `json:"featured"`
}

type CastVoteResponse struct {
	Accepted bool   `json:"accepted"`
	Redirect string `json:"redirect"`
}

type ResultsResponse struct {
	Poll       Poll           `json:"poll"`
	IsOpen     bool           `json:"is_open"`
	TotalVotes int            `json:"total_votes"`
	Choices    []ChoiceResult `json:"choices"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AdminSiteResponse struct {
	Header      string `json:"site_header"`
	Title       string `json:"site_title"`
	IndexTitle  string `json:"index_title"`
	InlineExtra int    `json:"inline_extra"`
}

// AdminPollRow is a poll in the admin list with its vote count
type AdminPollRow struct {
	Poll
	IsOpen     bool `json:"is_open"`
	TotalVotes int  `json:"total_votes"`
}

// AdminChoiceRow is a choice in the admin list with its share of the poll total
type AdminChoiceRow struct {
	Choice
	PollTitle  string  `json:"poll_title" db:"poll_title"`
	Percentage float64 `json:"percentage"`
}

type DashboardResponse struct {
	TotalPolls   int            `json:"total_polls"`
	ActivePolls  int            `json:"active_polls"`
	PastPolls    int            `json:"past_polls"`
	TotalVotes   int            `json:"total_votes"`
	TotalChoices int            `json:"total_choices"`
	VotesDisplay string         `json:"total_votes_display"`
	RecentPolls  []AdminPollRow `json:"recent_polls"`
	TopPolls     []AdminPollRow `json:"top_polls"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
