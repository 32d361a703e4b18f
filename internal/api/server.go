package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iklasky/tactic-trainer/internal/db"
	"github.com/iklasky/tactic-trainer/internal/repository"
)

// Server exposes the analysis results over a read-only JSON API.
type Server struct {
	DB            *db.DB
	Opportunities repository.OpportunityRepository
	Games         repository.GameRepository
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ready", s.handleReady)
	r.Get("/api/players", s.handlePlayers)
	r.Get("/api/games", s.handleGames)
	r.Get("/api/opportunities", s.handleOpportunities)
	r.Get("/api/opportunities/histogram", s.handleHistogram)

	return r
}
