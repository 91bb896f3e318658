package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/application/query"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.Stats.Handle(r.Context(), query.GetStatsQuery{
		LearnerID: chi.URLParam(r, "learnerID"),
	})
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	s.respond.JSON(w, r, http.StatusOK, dto)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.Achievements.Handle(r.Context(), query.GetAchievementsQuery{
		LearnerID: chi.URLParam(r, "learnerID"),
	})
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	s.respond.JSON(w, r, http.StatusOK, dto)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respond.Error(w, r, http.StatusBadRequest, "invalid_request", "limit must be an integer", raw)
			return
		}
		limit = n
	}

	dto, err := s.deps.Ranking.Handle(r.Context(), query.GetRankingQuery{
		LearnerID: chi.URLParam(r, "learnerID"),
		Limit:     limit,
	})
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	s.respond.JSON(w, r, http.StatusOK, dto)
}

// writeQueryError maps error kinds to status codes.
func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch {
	case shared.IsInvalidRequest(err):
		s.respond.Error(w, r, http.StatusBadRequest, "invalid_request", "Invalid request", err.Error())
	case errors.Is(err, query.ErrFeatureDisabled):
		s.respond.Error(w, r, http.StatusNotFound, "feature_disabled", "Feature is disabled", "")
	case shared.IsNotFound(err):
		s.respond.Error(w, r, http.StatusNotFound, "not_found", "Learner not found", "")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, shared.ErrTimeout):
		log.Warn("query timed out", logger.Err(err))
		s.respond.Error(w, r, http.StatusGatewayTimeout, "timeout", "Request timed out", "")
	case shared.IsUpstreamFailure(err):
		log.Warn("upstream failure", logger.Err(err))
		s.respond.Error(w, r, http.StatusServiceUnavailable, "upstream_failure", "A data source is unavailable", "")
	default:
		log.Error("query failed", logger.Err(err))
		s.respond.Error(w, r, http.StatusInternalServerError, "internal_error", "Internal server error", "")
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVICE ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"service": "quizmentor-progress",
		"version": s.deps.Version,
		"endpoints": []string{
			"GET /api/v1/learners/{learnerID}/stats",
			"GET /api/v1/learners/{learnerID}/achievements",
			"GET /api/v1/learners/{learnerID}/ranking?limit=N",
			"GET /health",
			"GET /ready",
			"GET /live",
		},
	})
}

// handleHealth reports 503 only when a critical check fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	s.respond.JSON(w, r, code, status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		s.respond.Error(w, r, http.StatusServiceUnavailable, "not_ready", "Service not ready", status.Message)
		return
	}
	s.respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"ready":    true,
		"degraded": status.Degraded,
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.respond.JSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}
