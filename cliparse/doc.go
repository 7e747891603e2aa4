// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

The Config is built once in main and passed to every component. Nothing
else in the module reads the environment.

# CLI Flags and Environment Variables

	-p                PORT                  Server port (default 5000)
	-d                DATABASE_URL          Database URL (default file:vote.db for sqlite)
	-t                DATABASE_TYPE         sqlite (default) or postgres
	--base-url        BASE_URL              Base URL for vote links
	                  RENDER_EXTERNAL_URL   Fallback base URL
	--admin-salt      ADMIN_KEY_SALT        Secret for admin key HMAC (required)
	--smtp-host       SMTP_HOST             Mail relay host (empty = log links only)
	--smtp-port       SMTP_PORT             Mail relay port (default 587)
	--mail-from       EMAIL_FROM            Sender address
	                  SMTP_USERNAME         Relay login (default EMAIL_FROM)
	                  EMAIL_PASSWORD        Relay password
	--mail-timeout    MAIL_TIMEOUT          Dial/send timeout (default 15s)
	--mail-concurrency MAIL_CONCURRENCY     Parallel sends (default 1)
	                  RATE_LIMIT_RPS        Vote endpoint rate per IP (default 5)
	                  RATE_LIMIT_BURST      Vote endpoint burst per IP (default 10)

CLI flags take precedence over environment variables. main loads a .env
file first, so values there behave like real environment variables.
*/
package cliparse
