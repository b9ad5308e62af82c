// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin authentication and secret generation.

Voters are anonymous; only the admin console is protected.

# Admin Key

The admin key is a shared secret from configuration (ADMIN_KEY). It is
compared in constant time:

	err := auth.ValidateAdminKey(provided, cfg.AdminKey)

# Admin Tokens

A valid key is exchanged for a short-lived HS256 JWT signed with
SECRET_KEY:

	token, expiresAt, err := auth.IssueAdminToken(cfg.SecretKey, time.Now())
	err = auth.ParseAdminToken(cfg.SecretKey, token)

Tokens carry subject "admin" and expire after AdminTokenTTL (12h). Tokens
without an expiry, with another subject, or signed with another algorithm
are rejected with ErrInvalidToken.

# Secret Keys

	key, err := auth.GenerateSecretKey()

Returns 50 characters drawn from crypto/rand. The genkey command prints one.
*/
package auth
