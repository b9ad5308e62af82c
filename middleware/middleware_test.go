// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/models"
)

// captureLogs routes the default logger into a buffer for one test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWithLogging_StatusCapture(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "vote redirect",
			handler: func(w http.ResponseWriter, r *http.Request) {
				RedirectResponse(w, "/polls/p1/results", models.CastVoteResponse{Accepted: true, Redirect: "/polls/p1/results"})
			},
			status: http.StatusSeeOther,
		},
		{
			name:    "admin rejected",
			handler: RequireAdmin("test-secret-key", func(w http.ResponseWriter, r *http.Request) {}),
			status:  http.StatusUnauthorized,
		},
		{
			name: "body without explicit status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("pollbooth API v1"))
			},
			status: http.StatusOK,
		},
		{
			name: "poll deleted",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
			status: http.StatusNoContent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)

			w := httptest.NewRecorder()
			WithLogging(tc.handler)(w, httptest.NewRequest("POST", "/polls/p1/vote", nil))

			if w.Code != tc.status {
				t.Errorf("Expected response status %d, got %d", tc.status, w.Code)
			}

			var completed string
			for _, line := range strings.Split(logs.String(), "\n") {
				if strings.Contains(line, `msg="request completed"`) {
					completed = line
				}
			}
			if completed == "" {
				t.Fatalf("No completion log line in:\n%s", logs.String())
			}
			want := "status=" + strconv.Itoa(tc.status)
			if !strings.Contains(completed, want) {
				t.Errorf("Expected %s in %q", want, completed)
			}
			if !strings.Contains(completed, "request_id=") {
				t.Errorf("Expected request_id in %q", completed)
			}
		})
	}
}

func TestWithLogging_RequestID(t *testing.T) {
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("generated when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/polls", nil))

		if id := w.Header().Get(RequestIDHeader); len(id) != 36 {
			t.Errorf("Expected generated UUID request ID, got '%s'", id)
		}
		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
	})

	t.Run("echoed when present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls", nil)
		req.Header.Set(RequestIDHeader, "trace-123")
		w := httptest.NewRecorder()
		handler(w, req)

		if id := w.Header().Get(RequestIDHeader); id != "trace-123" {
			t.Errorf("Expected request ID 'trace-123', got '%s'", id)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	secret := "test-secret-key"
	valid, _, err := auth.IssueAdminToken(secret, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	forged, _, err := auth.IssueAdminToken("other-secret", time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	expired, _, err := auth.IssueAdminToken(secret, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	testCases := []struct {
		name          string
		authorization string
		expectedCode  int
		message       string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Missing admin token"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "Missing admin token"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "Missing admin token"},
		{"forged token", "Bearer " + forged, http.StatusUnauthorized, "Invalid admin token"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "Invalid admin token"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "Invalid admin token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := RequireAdmin(secret, func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/admin/dashboard", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tc.expectedCode {
				t.Errorf("Expected status %d, got %d", tc.expectedCode, w.Code)
			}
			if called != (tc.expectedCode == http.StatusOK) {
				t.Errorf("Handler called = %v, want %v", called, tc.expectedCode == http.StatusOK)
			}
			if tc.message == "" {
				return
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if resp.Error != "Unauthorized" || resp.Message != tc.message {
				t.Errorf("Expected Unauthorized/%q, got %+v", tc.message, resp)
			}
		})
	}
}

func TestRedirectResponse(t *testing.T) {
	testCases := []struct {
		name     string
		location string
		accepted bool
	}{
		{"vote recorded", "/polls/p1/results", true},
		{"poll closed", "/polls", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RedirectResponse(w, tc.location, models.CastVoteResponse{Accepted: tc.accepted, Redirect: tc.location})

			if w.Code != http.StatusSeeOther {
				t.Errorf("Expected status 303, got %d", w.Code)
			}
			if loc := w.Header().Get("Location"); loc != tc.location {
				t.Errorf("Expected Location %q, got %q", tc.location, loc)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON body, got Content-Type %q", ct)
			}

			var resp models.CastVoteResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if resp.Accepted != tc.accepted || resp.Redirect != tc.location {
				t.Errorf("Unexpected body: %+v", resp)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("ballot", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/p1/vote", strings.NewReader(`{"choice_ids":["a","b"]}`))

		var ballot models.CastVoteRequest
		if err := ParseJSONBody(req, &ballot); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(ballot.ChoiceIDs) != 2 || ballot.ChoiceIDs[1] != "b" {
			t.Errorf("Unexpected choice ids: %v", ballot.ChoiceIDs)
		}
	})

	t.Run("admin poll with inline choices", func(t *testing.T) {
		body := `{"title":"Team lunch","question":"Where?","choices":["Pizza","Sushi"],"is_active":false}`
		req := httptest.NewRequest("POST", "/admin/polls", strings.NewReader(body))

		var parsed models.CreatePollRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Title != "Team lunch" || len(parsed.Choices) != 2 {
			t.Errorf("Unexpected poll request: %+v", parsed)
		}
		if parsed.IsActive == nil || *parsed.IsActive {
			t.Errorf("Expected explicit is_active=false, got %v", parsed.IsActive)
		}
	})

	t.Run("truncated ballot", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/p1/vote", strings.NewReader(`{"choice_ids":`))

		var ballot models.CastVoteRequest
		if err := ParseJSONBody(req, &ballot); err == nil {
			t.Error("Expected error for truncated JSON")
		}
	})
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		RedirectResponse(w, "/polls/p1/results", models.CastVoteResponse{Accepted: true})
	}))

	t.Run("preflight for admin call", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("OPTIONS", "/admin/polls", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Headers", "authorization")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK || called {
			t.Errorf("Expected preflight answered without the handler, got %d called=%v", w.Code, called)
		}
		allowed := w.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"Authorization", RequestIDHeader, "Content-Type"} {
			if !strings.Contains(allowed, h) {
				t.Errorf("Expected %s in allowed headers %q", h, allowed)
			}
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Expected origin echoed, got %q", got)
		}
	})

	t.Run("vote redirect is readable cross-origin", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("POST", "/polls/p1/vote", nil)
		req.Header.Set("Origin", "https://vote.example.com")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if !called || w.Code != http.StatusSeeOther {
			t.Errorf("Expected handler to answer 303, got %d called=%v", w.Code, called)
		}
		exposed := w.Header().Get("Access-Control-Expose-Headers")
		for _, h := range []string{"Location", RequestIDHeader} {
			if !strings.Contains(exposed, h) {
				t.Errorf("Expected %s in exposed headers %q", h, exposed)
			}
		}
	})

	t.Run("no origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/polls", nil))

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected wildcard origin, got %q", got)
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		value      string
		remoteAddr string
		expectedIP string
	}{
		{"proxy chain", "X-Forwarded-For", "203.0.113.195, 70.41.3.18", "10.0.0.1:443", "203.0.113.195"},
		{"nginx", "X-Real-IP", "203.0.113.50", "10.0.0.1:443", "203.0.113.50"},
		{"direct", "", "", "192.168.1.50:54321", "192.168.1.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/admin/login", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP %q, got %q", tc.expectedIP, got)
			}
		})
	}
}
