// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/store"
	"github.com/danielhkuo/pollbooth/testutil"
)

// setupTestEnv opens a fresh database and a store on top of it
func setupTestEnv(t *testing.T) (*sql.DB, *store.Store, cliparse.Config) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	return conn, store.New(conn, testutil.TestDriver), testutil.GetTestConfig()
}

func ptr(t time.Time) *time.Time { return &t }

func TestListPolls(t *testing.T) {
	conn, st, _ := setupTestEnv(t)
	handler := NewPollHandler(st)

	now := time.Now()
	// Three open polls, two closed ones, interleaved by creation time
	newest := testutil.CreateTestPoll(t, conn, testutil.PollOpts{
		Title: "Open newest", Active: true, CreatedAt: now.Add(-1 * time.Minute),
	})
	closedFlag := testutil.CreateTestPoll(t, conn, testutil.PollOpts{
		Title: "Inactive", Active: false, CreatedAt: now.Add(-2 * time.Minute),
	})
	middle := testutil.CreateTestPoll(t, conn, testutil.PollOpts{
		Title: "Open middle", Active: true, EndDate: ptr(now.Add(72 * time.Hour)), CreatedAt: now.Add(-3 * time.Minute),
	})
	expired := testutil.CreateTestPoll(t, conn, testutil.PollOpts{
		Title: "Expired", Active: true, EndDate: ptr(now.Add(-48 * time.Hour)), CreatedAt: now.Add(-4 * time.Minute),
	})
	oldest := testutil.CreateTestPoll(t, conn, testutil.PollOpts{
		Title: "Open oldest", Active: true, CreatedAt: now.Add(-5 * time.Minute),
	})

	testutil.AddTestChoice(t, conn, newest, "A", 3)
	testutil.AddTestChoice(t, conn, newest, "B", 4)
	testutil.AddTestChoice(t, conn, expired, "C", 9)

	tests := []struct {
		name           string
		query          string
		expectedFilter string
		expectedIDs    []string
		expectFeatured string
	}{
		{
			name:           "active view",
			query:          "?filter=active",
			expectedFilter: models.FilterActive,
			expectedIDs:    []string{newest, middle, oldest},
			expectFeatured: newest,
		},
		{
			name:           "default is active",
			query:          "",
			expectedFilter: models.FilterActive,
			expectedIDs:    []string{newest, middle, oldest},
			expectFeatured: newest,
		},
		{
			name:           "past view",
			query:          "?filter=past",
			expectedFilter: models.FilterPast,
			expectedIDs:    []string{closedFlag, expired},
		},
		{
			name:           "unknown filter shows past",
			query:          "?filter=archived",
			expectedFilter: models.FilterPast,
			expectedIDs:    []string{closedFlag, expired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/polls"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.ListPolls(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.PollListResponse
			testutil.AssertJSON(t, w, &resp)

			if resp.Filter != tt.expectedFilter {
				t.Errorf("Expected filter %q, got %q", tt.expectedFilter, resp.Filter)
			}
			if len(resp.Polls) != len(tt.expectedIDs) {
				t.Fatalf("Expected %d polls, got %d", len(tt.expectedIDs), len(resp.Polls))
			}
			for i, id := range tt.expectedIDs {
				if resp.Polls[i].ID != id {
					t.Errorf("Position %d: expected poll %s, got %s (%s)", i, id, resp.Polls[i].ID, resp.Polls[i].Title)
				}
			}

			if tt.expectFeatured == "" {
				if resp.Featured != nil {
					t.Errorf("Expected no featured poll, got %s", resp.Featured.ID)
				}
				return
			}
			if resp.Featured == nil || resp.Featured.ID != tt.expectFeatured {
				t.Errorf("Expected featured poll %s, got %+v", tt.expectFeatured, resp.Featured)
			}
		})
	}

	t.Run("summaries carry totals and end times", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls?filter=active", nil)
		w := httptest.NewRecorder()
		handler.ListPolls(w, req)

		var resp models.PollListResponse
		testutil.AssertJSON(t, w, &resp)

		byID := make(map[string]models.PollSummary)
		for _, p := range resp.Polls {
			byID[p.ID] = p
			if !p.IsOpen {
				t.Errorf("Poll %s in active view is not open", p.ID)
			}
		}
		if byID[newest].TotalVotes != 7 {
			t.Errorf("Expected 7 votes on newest poll, got %d", byID[newest].TotalVotes)
		}
		if byID[oldest].TotalVotes != 0 {
			t.Errorf("Expected 0 votes on poll without choices, got %d", byID[oldest].TotalVotes)
		}
		if byID[middle].EndsHuman == "" {
			t.Error("Expected humanized end time on poll with end date")
		}
		if byID[newest].EndsHuman != "" {
			t.Errorf("Expected no end time on open-ended poll, got %q", byID[newest].EndsHuman)
		}
	})
}

func TestListPollsEmpty(t *testing.T) {
	_, st, _ := setupTestEnv(t)
	handler := NewPollHandler(st)

	req := httptest.NewRequest("GET", "/polls?filter=active", nil)
	w := httptest.NewRecorder()

	handler.ListPolls(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	body := w.Body.String()

	var resp models.PollListResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Polls) != 0 {
		t.Errorf("Expected no polls, got %d", len(resp.Polls))
	}
	if resp.Featured != nil {
		t.Error("Expected no featured poll on an empty list")
	}
	if want := `"polls":[]`; !strings.Contains(body, want) {
		t.Errorf("Expected %s in body, got %s", want, body)
	}
}

func TestGetPoll(t *testing.T) {
	conn, st, _ := setupTestEnv(t)
	handler := NewPollHandler(st)

	openPoll := testutil.CreateOpenPoll(t, conn)
	first := testutil.AddTestChoice(t, conn, openPoll, "First", 10)
	second := testutil.AddTestChoice(t, conn, openPoll, "Second", 50)

	closedPoll := testutil.CreateTestPoll(t, conn, testutil.PollOpts{
		Active:  true,
		EndDate: ptr(time.Now().Add(-time.Hour)),
	})

	t.Run("open poll lists choices in stored order", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/"+openPoll, nil)
		req.SetPathValue("id", openPoll)
		w := httptest.NewRecorder()

		handler.GetPoll(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.PollWithChoices
		testutil.AssertJSON(t, w, &resp)

		if resp.Poll.ID != openPoll {
			t.Errorf("Expected poll %s, got %s", openPoll, resp.Poll.ID)
		}
		if len(resp.Choices) != 2 {
			t.Fatalf("Expected 2 choices, got %d", len(resp.Choices))
		}
		if resp.Choices[0].ID != first || resp.Choices[1].ID != second {
			t.Error("Choices should keep stored order, not vote order")
		}
	})

	t.Run("closed poll redirects to list", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/"+closedPoll, nil)
		req.SetPathValue("id", closedPoll)
		w := httptest.NewRecorder()

		handler.GetPoll(w, req)

		testutil.AssertStatus(t, w, http.StatusSeeOther)
		if loc := w.Header().Get("Location"); loc != ListPath {
			t.Errorf("Expected Location %s, got %s", ListPath, loc)
		}
	})

	t.Run("missing poll", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/nonexistent", nil)
		req.SetPathValue("id", "nonexistent")
		w := httptest.NewRecorder()

		handler.GetPoll(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
