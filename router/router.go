// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/handlers"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/store"
)

func NewRouter(st *store.Store, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(st)
	votingHandler := handlers.NewVotingHandler(st)
	resultsHandler := handlers.NewResultsHandler(st)
	adminHandler := handlers.NewAdminHandler(st, cfg, handlers.DefaultAdminSite())

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voting (public)
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Admin console
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.SecretKey, h))
	}
	mux.HandleFunc("POST /admin/login", middleware.WithLogging(adminHandler.Login))
	mux.HandleFunc("GET /admin", admin(adminHandler.Site))
	mux.HandleFunc("GET /admin/dashboard", admin(adminHandler.Dashboard))
	mux.HandleFunc("GET /admin/polls", admin(adminHandler.ListPolls))
	mux.HandleFunc("POST /admin/polls", admin(adminHandler.CreatePoll))
	mux.HandleFunc("GET /admin/polls/{id}", admin(adminHandler.GetPoll))
	mux.HandleFunc("PUT /admin/polls/{id}", admin(adminHandler.UpdatePoll))
	mux.HandleFunc("DELETE /admin/polls/{id}", admin(adminHandler.DeletePoll))
	mux.HandleFunc("POST /admin/polls/{id}/choices", admin(adminHandler.AddChoice))
	mux.HandleFunc("GET /admin/choices", admin(adminHandler.ListChoices))
	mux.HandleFunc("PUT /admin/choices/{id}", admin(adminHandler.UpdateChoice))
	mux.HandleFunc("DELETE /admin/choices/{id}", admin(adminHandler.DeleteChoice))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollbooth API v1"))
	})

	return mux
}
