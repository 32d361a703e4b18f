package api

import (
	"net/http"
	"strconv"

	"github.com/iklasky/tactic-trainer/internal/errors"
	"github.com/iklasky/tactic-trainer/internal/models"
)

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.Opportunities.Players(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"players": players})
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	username := q.Get("username")
	limit := intParam(q.Get("limit"), 200)
	offset := intParam(q.Get("offset"), 0)

	games, err := s.Games.List(r.Context(), username, limit, offset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	total, err := s.Games.Count(r.Context(), username)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"games": games,
		"total": total,
	})
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	records, err := s.Opportunities.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	total, err := s.Opportunities.Count(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   total,
	})
}

// handleHistogram bins every matching cp record; pagination parameters are
// ignored because the histogram is computed over the full result set.
func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	filter.Kind = models.KindCP
	filter.Offset = 0

	total, err := s.Opportunities.Count(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	filter.Limit = total + 1

	records, err := s.Opportunities.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.ComputeHistogram(records))
}

func parseRecordFilter(r *http.Request) (models.RecordFilter, error) {
	q := r.URL.Query()
	filter := models.RecordFilter{
		Username:    q.Get("username"),
		Kind:        q.Get("kind"),
		MinCP:       intParam(q.Get("min_cp"), 0),
		TimeControl: q.Get("time_control"),
		Limit:       intParam(q.Get("limit"), 200),
		Offset:      intParam(q.Get("offset"), 0),
	}

	if filter.Kind != "" && filter.Kind != models.KindCP && filter.Kind != models.KindMate {
		return filter, errors.NewValidationError("kind", "must be cp or mate")
	}
	if v := q.Get("converted"); v != "" {
		converted, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.NewValidationError("converted", "must be a boolean")
		}
		filter.Converted = &converted
	}
	return filter, nil
}

func intParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
