// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/danielhkuo/pollbooth/models"
)

var ErrNotFound = errors.New("not found")

func init() {
	// modernc.org/sqlite registers as "sqlite", which sqlx does not know
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store persists polls and choices. Queries are written with ? placeholders
// and rebound for the active driver.
type Store struct {
	db *sqlx.DB
}

// New wraps an open connection. driverName must be the name the
// connection was opened with ("postgres" or "sqlite").
func New(db *sql.DB, driverName string) *Store {
	return &Store{db: sqlx.NewDb(db, driverName)}
}

// PollFilter narrows the admin poll list
type PollFilter struct {
	Search       string
	SearchFields []string
	Active       *bool
	Ordering     []string
	Limit        int
}

// ChoiceFilter narrows the admin choice list
type ChoiceFilter struct {
	PollID       string
	Search       string
	SearchFields []string
	Ordering     []string
	Limit        int
}

const pollColumns = `id, title, question, created_at, end_date, is_active`
const choiceColumns = `id, poll_id, choice_text, votes, position`

// ListPolls returns every poll, newest first
func (s *Store) ListPolls(ctx context.Context) ([]models.Poll, error) {
	polls := []models.Poll{}
	err := s.db.SelectContext(ctx, &polls, `
		SELECT `+pollColumns+`
		FROM poll
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list polls")
	}
	return polls, nil
}

// SearchPolls returns polls matching the filter
func (s *Store) SearchPolls(ctx context.Context, f PollFilter) ([]models.Poll, error) {
	var where []string
	var args []interface{}

	if clause, clauseArgs := searchClause(f.Search, f.SearchFields); clause != "" {
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}
	if f.Active != nil {
		where = append(where, "is_active = ?")
		args = append(args, *f.Active)
	}

	query := `SELECT ` + pollColumns + ` FROM poll`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ` + orderBy("", f.Ordering, "created_at DESC") + `, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	polls := []models.Poll{}
	if err := s.db.SelectContext(ctx, &polls, s.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "search polls")
	}
	return polls, nil
}

// GetPoll returns ErrNotFound when no poll has the given id
func (s *Store) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	return getPoll(ctx, s.db, id)
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

func getPoll(ctx context.Context, q queryer, id string) (models.Poll, error) {
	var p models.Poll
	err := sqlx.GetContext(ctx, q, &p, q.Rebind(`
		SELECT `+pollColumns+`
		FROM poll
		WHERE id = ?
	`), id)
	if err == sql.ErrNoRows {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, errors.Wrapf(err, "get poll %s", id)
	}
	return p, nil
}

// CreatePoll inserts a poll together with its initial choices. Blank choice
// texts are skipped. ID and CreatedAt are assigned here.
func (s *Store) CreatePoll(ctx context.Context, p models.Poll, choiceTexts []string) (models.Poll, []models.Choice, error) {
	p.ID = uuid.NewString()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.EndDate = utc(p.EndDate)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Poll{}, nil, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO poll (id, title, question, created_at, end_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`), p.ID, p.Title, p.Question, p.CreatedAt, nullTime(p.EndDate), p.IsActive)
	if err != nil {
		return models.Poll{}, nil, errors.Wrap(err, "insert poll")
	}

	choices := []models.Choice{}
	for _, text := range choiceTexts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		c := models.Choice{
			ID:         uuid.NewString(),
			PollID:     p.ID,
			ChoiceText: text,
			Position:   len(choices) + 1,
		}
		if err := insertChoice(ctx, tx, c); err != nil {
			return models.Poll{}, nil, err
		}
		choices = append(choices, c)
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, nil, errors.Wrap(err, "commit poll")
	}
	return p, choices, nil
}

// UpdatePoll writes the editable fields of p. created_at is never touched.
func (s *Store) UpdatePoll(ctx context.Context, p models.Poll) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE poll
		SET title = ?, question = ?, end_date = ?, is_active = ?
		WHERE id = ?
	`), p.Title, p.Question, nullTime(p.EndDate), p.IsActive, p.ID)
	if err != nil {
		return errors.Wrapf(err, "update poll %s", p.ID)
	}
	return expectOne(res)
}

// DeletePoll removes a poll and all of its choices
func (s *Store) DeletePoll(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	// SQLite only cascades with foreign_keys enabled, so do it explicitly
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM choice WHERE poll_id = ?`), id); err != nil {
		return errors.Wrapf(err, "delete choices of poll %s", id)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM poll WHERE id = ?`), id)
	if err != nil {
		return errors.Wrapf(err, "delete poll %s", id)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit delete")
}

// ListChoices returns the choices owned by a poll in stored order
func (s *Store) ListChoices(ctx context.Context, pollID string) ([]models.Choice, error) {
	choices := []models.Choice{}
	err := s.db.SelectContext(ctx, &choices, s.db.Rebind(`
		SELECT `+choiceColumns+`
		FROM choice
		WHERE poll_id = ?
		ORDER BY position, id
	`), pollID)
	if err != nil {
		return nil, errors.Wrapf(err, "list choices of poll %s", pollID)
	}
	return choices, nil
}

// SearchChoices returns choices matching the filter with their poll title
func (s *Store) SearchChoices(ctx context.Context, f ChoiceFilter) ([]models.AdminChoiceRow, error) {
	var where []string
	var args []interface{}

	if f.PollID != "" {
		where = append(where, "c.poll_id = ?")
		args = append(args, f.PollID)
	}
	if clause, clauseArgs := searchClause(f.Search, qualify("c", f.SearchFields)); clause != "" {
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}

	query := `
		SELECT c.id, c.poll_id, c.choice_text, c.votes, c.position, p.title AS poll_title
		FROM choice c
		JOIN poll p ON p.id = c.poll_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ` + orderBy("c", f.Ordering, "c.votes DESC") + `, c.position, c.id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows := []models.AdminChoiceRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "search choices")
	}
	return rows, nil
}

func (s *Store) GetChoice(ctx context.Context, id string) (models.Choice, error) {
	var c models.Choice
	err := s.db.GetContext(ctx, &c, s.db.Rebind(`
		SELECT `+choiceColumns+`
		FROM choice
		WHERE id = ?
	`), id)
	if err == sql.ErrNoRows {
		return models.Choice{}, ErrNotFound
	}
	if err != nil {
		return models.Choice{}, errors.Wrapf(err, "get choice %s", id)
	}
	return c, nil
}

// AddChoice appends a choice to an existing poll
func (s *Store) AddChoice(ctx context.Context, pollID, text string) (models.Choice, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Choice{}, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	if _, err := getPoll(ctx, tx, pollID); err != nil {
		return models.Choice{}, err
	}

	var last int
	err = tx.GetContext(ctx, &last, tx.Rebind(`
		SELECT COALESCE(MAX(position), 0) FROM choice WHERE poll_id = ?
	`), pollID)
	if err != nil {
		return models.Choice{}, errors.Wrap(err, "read last position")
	}

	c := models.Choice{
		ID:         uuid.NewString(),
		PollID:     pollID,
		ChoiceText: text,
		Position:   last + 1,
	}
	if err := insertChoice(ctx, tx, c); err != nil {
		return models.Choice{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Choice{}, errors.Wrap(err, "commit choice")
	}
	return c, nil
}

// UpdateChoice sets a choice's text and vote counter
func (s *Store) UpdateChoice(ctx context.Context, c models.Choice) error {
	if c.Votes < 0 {
		return errors.New("votes must not be negative")
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE choice SET choice_text = ?, votes = ? WHERE id = ?
	`), c.ChoiceText, c.Votes, c.ID)
	if err != nil {
		return errors.Wrapf(err, "update choice %s", c.ID)
	}
	return expectOne(res)
}

func (s *Store) DeleteChoice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM choice WHERE id = ?`), id)
	if err != nil {
		return errors.Wrapf(err, "delete choice %s", id)
	}
	return expectOne(res)
}

// IncrementVote adds one vote to a choice of the given poll in a single
// statement, so concurrent voters never overwrite each other. It reports
// false when no such choice exists.
func (s *Store) IncrementVote(ctx context.Context, pollID, choiceID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE choice SET votes = votes + 1 WHERE id = ? AND poll_id = ?
	`), choiceID, pollID)
	if err != nil {
		return false, errors.Wrapf(err, "increment choice %s", choiceID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n == 1, nil
}

// VoteTotals maps poll id to the sum of its choices' votes. Polls without
// choices are absent.
func (s *Store) VoteTotals(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		PollID string `db:"poll_id"`
		Total  int    `db:"total"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT poll_id, COALESCE(SUM(votes), 0) AS total
		FROM choice
		GROUP BY poll_id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "sum votes")
	}

	totals := make(map[string]int, len(rows))
	for _, r := range rows {
		totals[r.PollID] = r.Total
	}
	return totals, nil
}

func (s *Store) CountChoices(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM choice`); err != nil {
		return 0, errors.Wrap(err, "count choices")
	}
	return n, nil
}

// Reset deletes every poll and choice
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM choice`); err != nil {
		return errors.Wrap(err, "delete choices")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM poll`); err != nil {
		return errors.Wrap(err, "delete polls")
	}
	return errors.Wrap(tx.Commit(), "commit reset")
}

func insertChoice(ctx context.Context, tx *sqlx.Tx, c models.Choice) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO choice (id, poll_id, choice_text, votes, position)
		VALUES (?, ?, ?, ?, ?)
	`), c.ID, c.PollID, c.ChoiceText, c.Votes, c.Position)
	return errors.Wrap(err, "insert choice")
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// searchClause builds a case-insensitive OR over fields. Field names come
// from admin configuration, never from requests.
func searchClause(term string, fields []string) (string, []interface{}) {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return "", nil
	}

	pattern := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(fields))
	args := make([]interface{}, len(fields))
	for i, f := range fields {
		parts[i] = "LOWER(" + f + ") LIKE ?"
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func qualify(alias string, fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = alias + "." + f
	}
	return out
}

// orderBy turns field names ("-votes", "title") into an ORDER BY list,
// falling back to def when fields is empty.
func orderBy(alias string, fields []string, def string) string {
	if len(fields) == 0 {
		return def
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := "ASC"
		if strings.HasPrefix(f, "-") {
			dir = "DESC"
			f = f[1:]
		}
		if alias != "" {
			f = alias + "." + f
		}
		parts[i] = f + " " + dir
	}
	return strings.Join(parts, ", ")
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
