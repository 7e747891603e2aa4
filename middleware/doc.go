// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one line per request with method, path, status and duration_ms, at
error level for 5xx. The query string is not logged, so vote tokens stay
out of the log.

# Rate Limiting

The vote endpoints are limited per client IP:

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy)
	mux.HandleFunc("POST /submit", middleware.WithLogging(middleware.RateLimit(rl, h.Submit)))

Requests over budget get 429 with a JSON error body. Limiters for addresses
idle longer than three minutes are dropped on a later request.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CreateMeetingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Bodies are capped at 1 MiB and must hold exactly one JSON value.

# Client IP

	ip := middleware.ClientIP(r, cfg.TrustProxy)

Without trustProxy this is the transport peer from RemoteAddr and forwarded
headers are ignored. With it, X-Real-IP and then the last X-Forwarded-For
hop are used. Used as the rate limit key and, hashed, as vote metadata.
*/
package middleware
