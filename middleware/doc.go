// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Each request gets an ID, taken from X-Request-ID when the client sent one
and generated otherwise, and echoed back in the response. Completion is
logged with status and duration_ms.

# Admin Guard

	mux.HandleFunc("GET /admin", middleware.WithLogging(
		middleware.RequireAdmin(cfg.SecretKey, h.Site)))

Requires "Authorization: Bearer <token>" with a token from
auth.IssueAdminToken. Anything else gets 401.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.RedirectResponse(w, "/polls", data) // 303 + Location

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. Used in request and auth logs.
*/
package middleware
