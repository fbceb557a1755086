package service

import (
	"context"
	"fmt"
	"time"
	"tournament-elo/internal/api"
	"tournament-elo/internal/config"
	"tournament-elo/internal/domain"
	"tournament-elo/internal/loader"
	"tournament-elo/internal/rating"

	"github.com/rs/zerolog"
)

// Snapshot is the result of one full recompute from raw match files.
type Snapshot struct {
	Batches    []domain.MatchBatch
	Log        []domain.MatchResult
	Histories  domain.Histories
	ComputedAt time.Time
}

func (s *Snapshot) Dates() []string {
	dates := make([]string, len(s.Batches))
	for i, b := range s.Batches {
		dates[i] = b.Date
	}
	return dates
}

// Pipeline discovers result sources, loads them and replays the engine.
type Pipeline struct {
	cfg     *config.Config
	loader  *loader.Loader
	results *api.ResultsClient
	logger  zerolog.Logger
}

func NewPipeline(cfg *config.Config, ld *loader.Loader, results *api.ResultsClient, logger zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, loader: ld, results: results, logger: logger}
}

func (p *Pipeline) Sources() ([]loader.Source, error) {
	var sources []loader.Source
	if p.cfg.DataDir != "" {
		local, err := loader.Discover(p.cfg.DataDir)
		if err != nil {
			return nil, err
		}
		sources = append(sources, local...)
	}
	if len(p.cfg.ResultsURLs) > 0 {
		remote, err := p.results.Sources(p.cfg.ResultsURLs)
		if err != nil {
			return nil, err
		}
		sources = append(sources, remote...)
	}
	if err := loader.SortSources(sources); err != nil {
		return nil, err
	}
	return sources, nil
}

func (p *Pipeline) Compute(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	sources, err := p.Sources()
	if err != nil {
		return nil, fmt.Errorf("failed to discover results: %w", err)
	}
	p.logger.Debug().Int("sources", len(sources)).Msg("results discovered")

	res, err := p.loader.Load(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	opts := []rating.Option{rating.WithK(p.cfg.KFactor)}
	if p.cfg.RosterPath != "" {
		roster, err := p.loader.LoadRoster(p.cfg.RosterPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, rating.WithRoster(roster...))
	}

	h, err := rating.ComputeHistories(p.cfg.InitialRating, res.Batches, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ratings: %w", err)
	}

	p.logger.Info().
		Int("batches", len(res.Batches)).
		Int("players", len(h)).
		Int("matches", len(res.Log)).
		Dur("took", time.Since(start)).
		Msg("ratings computed")

	return &Snapshot{
		Batches:    res.Batches,
		Log:        res.Log,
		Histories:  h,
		ComputedAt: time.Now(),
	}, nil
}
