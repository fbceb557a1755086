package repository

import (
	"context"
	"database/sql"
	"fmt"
	"tournament-elo/internal/domain"

	"github.com/rs/zerolog"
)

type RatingHistoryRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRatingHistoryRepository(sqlDB *sql.DB, logger zerolog.Logger) *RatingHistoryRepository {
	return &RatingHistoryRepository{db: sqlDB, logger: logger}
}

func (r *RatingHistoryRepository) GetAll(ctx context.Context) (domain.Histories, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT player, rating FROM rating_history ORDER BY player, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	h := domain.Histories{}
	for rows.Next() {
		var (
			player string
			rating float64
		)
		if err := rows.Scan(&player, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating history: %w", err)
		}
		h[player] = append(h[player], rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rating history: %w", err)
	}
	return h, nil
}

// GetByPlayer returns the player's ratings in batch order, or sql.ErrNoRows
// if the player is unknown.
func (r *RatingHistoryRepository) GetByPlayer(ctx context.Context, player string) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT rating FROM rating_history WHERE player = ? ORDER BY position`, player)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var ratings []float64
	for rows.Next() {
		var rating float64
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating history: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rating history: %w", err)
	}
	if len(ratings) == 0 {
		r.logger.Debug().Str("player", player).Msg("no rating history for player")
		return nil, sql.ErrNoRows
	}
	return ratings, nil
}

// Dates returns the batch identifiers in processing order.
func (r *RatingHistoryRepository) Dates(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date FROM batches ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
