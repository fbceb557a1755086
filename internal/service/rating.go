package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
	"tournament-elo/internal/constants"
	"tournament-elo/internal/domain"
	"tournament-elo/internal/metrics"
	"tournament-elo/internal/rating"
	"tournament-elo/internal/repository"

	"github.com/rs/zerolog"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerHistory struct {
	Player  string    `json:"player"`
	Dates   []string  `json:"dates"`
	Ratings []float64 `json:"ratings"`
}

type RatingService struct {
	pipeline    *Pipeline
	snapshots   *repository.SnapshotRepository
	historyRepo *repository.RatingHistoryRepository
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	// mu serializes refreshes; stateMu guards lastRefresh so readers never
	// wait on a refresh in flight.
	mu          sync.Mutex
	stateMu     sync.RWMutex
	lastRefresh time.Time
}

func NewRatingService(pipeline *Pipeline, snapshots *repository.SnapshotRepository, historyRepo *repository.RatingHistoryRepository, m *metrics.Metrics, logger zerolog.Logger) *RatingService {
	return &RatingService{pipeline: pipeline, snapshots: snapshots, historyRepo: historyRepo, metrics: m, logger: logger}
}

// Refresh recomputes every rating from the raw match files and replaces the
// stored read model. On failure the previous read model stays in place.
func (s *RatingService) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()

	start := time.Now()
	snap, err := s.pipeline.Compute(ctx)
	if err == nil {
		err = s.snapshots.Replace(ctx, snap.Batches, snap.Histories)
	}
	s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.Refreshes.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("refresh failed")
		return nil, err
	}

	s.metrics.Refreshes.WithLabelValues("ok").Inc()
	s.metrics.Players.Set(float64(len(snap.Histories)))
	s.metrics.Batches.Set(float64(len(snap.Batches)))
	s.metrics.Matches.Set(float64(len(snap.Log)))
	s.stateMu.Lock()
	s.lastRefresh = snap.ComputedAt
	s.stateMu.Unlock()

	s.logger.Info().
		Int("batches", len(snap.Batches)).
		Int("players", len(snap.Histories)).
		Msg("refresh completed")
	return snap, nil
}

func (s *RatingService) LastRefresh() time.Time {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.lastRefresh
}

func (s *RatingService) Leaderboard(ctx context.Context) ([]domain.LeaderboardRow, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	h, err := s.historyRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return rating.Summarize(h)
}

func (s *RatingService) Players(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	h, err := s.historyRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return h.Players(), nil
}

func (s *RatingService) History(ctx context.Context, player string) (*PlayerHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	ratings, err := s.historyRepo.GetByPlayer(ctx, player)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, player)
	}
	if err != nil {
		return nil, err
	}

	dates, err := s.historyRepo.Dates(ctx)
	if err != nil {
		return nil, err
	}

	return &PlayerHistory{
		Player:  player,
		Dates:   append([]string{"initial"}, dates...),
		Ratings: ratings,
	}, nil
}
