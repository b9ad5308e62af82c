// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first. Variables that are
already set in the environment are never overwritten by it.

# Commands

The first positional argument selects what the binary does:

	serve   Run the HTTP server (default)
	seed    Replace all polls with sample data
	genkey  Print a fresh SECRET_KEY and exit

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string (required for serve and seed)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKey: Shared key exchanged for admin tokens (required for serve)
  - SecretKey: HMAC secret for admin tokens (required for serve)
  - LogLevel: debug, info, warn or error (default: info)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-log-level    Log level
	-admin-key    Admin key
	-secret-key   Token signing secret

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	LOG_LEVEL     → -log-level
	ADMIN_KEY     → -admin-key
	SECRET_KEY    → -secret-key

CLI flags take precedence over environment variables.
*/
package cliparse
