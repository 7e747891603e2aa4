// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/meeting-vote/cliparse"
	"github.com/danielhkuo/meeting-vote/handlers"
	"github.com/danielhkuo/meeting-vote/middleware"
	"github.com/danielhkuo/meeting-vote/voting"
)

func NewRouter(svc *voting.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	meetingHandler := handlers.NewMeetingHandler(svc, cfg)
	voteHandler := handlers.NewVoteHandler(svc, cfg)
	resultsHandler := handlers.NewResultsHandler(svc, cfg)

	// Shared by both vote routes so page loads count against submissions
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Secretary
	mux.HandleFunc("GET /{$}", middleware.WithLogging(meetingHandler.Index))
	mux.HandleFunc("GET /secretary", middleware.WithLogging(meetingHandler.SecretaryForm))
	mux.HandleFunc("POST /secretary", middleware.WithLogging(meetingHandler.SecretarySubmit))
	mux.HandleFunc("POST /meetings", middleware.WithLogging(meetingHandler.CreateMeeting))
	mux.HandleFunc("GET /meetings/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Members (public, token in the link)
	mux.HandleFunc("GET /vote", middleware.WithLogging(middleware.RateLimit(limiter, voteHandler.VotePage)))
	mux.HandleFunc("POST /submit", middleware.WithLogging(middleware.RateLimit(limiter, voteHandler.Submit)))

	return mux
}
