package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
	"tournament-elo/internal/chart"
	"tournament-elo/internal/constants"
	"tournament-elo/internal/loader"
	"tournament-elo/internal/metrics"
	"tournament-elo/internal/middleware"
	"tournament-elo/internal/rating"
	"tournament-elo/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Server struct {
	ratingSvc *service.RatingService
	matchSvc  *service.MatchService
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	limiter   *rate.Limiter
}

func NewServer(ratingSvc *service.RatingService, matchSvc *service.MatchService, m *metrics.Metrics, logger zerolog.Logger) *Server {
	return &Server{
		ratingSvc: ratingSvc,
		matchSvc:  matchSvc,
		metrics:   m,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Every(constants.RefreshRateLimit), constants.RefreshBurst),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID(s.logger))
	r.Use(c.Handler)
	r.Use(chimw.Timeout(constants.RequestTimeout))

	r.Get("/api/health", s.health)
	r.Get("/api/leaderboard", s.leaderboard)
	r.Get("/api/players", s.players)
	r.Route("/api/players/{tag}", func(r chi.Router) {
		r.Get("/history", s.history)
		r.Get("/matches", s.matches)
		r.Get("/opponents", s.opponents)
		r.Get("/chart.png", s.chart)
	})
	r.Post("/api/refresh", s.refresh)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"ok": true}
	if last := s.ratingSvc.LastRefresh(); !last.IsZero() {
		resp["last_refresh"] = last.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.ratingSvc.Leaderboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) players(w http.ResponseWriter, r *http.Request) {
	players, err := s.ratingSvc.Players(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	h, err := s.ratingSvc.History(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) matches(w http.ResponseWriter, r *http.Request) {
	m, err := s.matchSvc.MatchesFor(r.Context(), chi.URLParam(r, "tag"), r.URL.Query().Get("opponent"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) opponents(w http.ResponseWriter, r *http.Request) {
	o, err := s.matchSvc.OpponentsOf(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) chart(w http.ResponseWriter, r *http.Request) {
	h, err := s.ratingSvc.History(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	png, err := chart.RatingHistory(h.Player, h.Dates, h.Ratings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "refresh rate limited"})
		return
	}

	snap, err := s.ratingSvc.Refresh(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"batches":     len(snap.Batches),
		"players":     len(snap.Histories),
		"matches":     len(snap.Log),
		"computed_at": snap.ComputedAt.Format(time.RFC3339),
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, rating.ErrNoData):
		status = http.StatusConflict
	case errors.Is(err, loader.ErrMalformedInput), errors.Is(err, rating.ErrMalformedInput):
		status = http.StatusUnprocessableEntity
	}

	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
