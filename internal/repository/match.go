package repository

import (
	"context"
	"database/sql"
	"fmt"
	"tournament-elo/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: sqlDB, logger: logger}
}

const matchColumns = `tournament_date, row_index, player1, player2, player1_win, draw, player1_deck, player2_deck`

// GetByPlayer returns every stored match the player took part in, oldest first.
func (r *MatchRepository) GetByPlayer(ctx context.Context, player string) ([]domain.MatchResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+matchColumns+`
		  FROM matches
		 WHERE player1 = ? OR player2 = ?
		 ORDER BY tournament_date, row_index`, player, player)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	return scanMatches(rows)
}

func scanMatches(rows *sql.Rows) ([]domain.MatchResult, error) {
	defer rows.Close()

	matches := []domain.MatchResult{}
	for rows.Next() {
		var m domain.MatchResult
		err := rows.Scan(&m.TournamentDate, &m.Row, &m.Player1, &m.Player2,
			&m.Player1Win, &m.Draw, &m.Player1Deck, &m.Player2Deck)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}
	return matches, nil
}
