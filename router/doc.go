// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the meeting vote service.

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg)

# Endpoints

	GET  /health                 - Liveness
	GET  /                       - Landing page
	GET  /secretary              - Meeting form
	POST /secretary              - Create meeting from the form
	POST /meetings               - Create meeting (JSON)
	GET  /meetings/{id}/results  - Results (requires X-Admin-Key)
	GET  /vote?token=            - Vote page (rate limited)
	POST /submit                 - Record a vote (rate limited)

The two member routes share one per-IP limiter sized by RateLimitRPS and
RateLimitBurst.
*/
package router
