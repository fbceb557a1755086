package repository

import (
	"context"
	"database/sql"
	"fmt"
	"tournament-elo/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// SnapshotRepository rewrites the read model after every recompute.
type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(sqlDB *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: sqlDB, logger: logger}
}

// Replace swaps the stored batches, match log and histories in one transaction.
func (r *SnapshotRepository) Replace(ctx context.Context, batches []domain.MatchBatch, h domain.Histories) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"rating_history", "matches", "batches"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	batchStmt, err := tx.PrepareContext(ctx, `INSERT INTO batches (date, position, source, match_count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer batchStmt.Close()

	matchStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matches (id, tournament_date, row_index, player1, player2, player1_win, draw, player1_deck, player2_deck)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer matchStmt.Close()

	for i, b := range batches {
		if _, err := batchStmt.ExecContext(ctx, b.Date, i+1, b.Source, len(b.Matches)); err != nil {
			return fmt.Errorf("failed to insert batch %s: %w", b.Date, err)
		}
		for _, m := range b.Matches {
			id, err := gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
			_, err = matchStmt.ExecContext(ctx, id, m.TournamentDate, m.Row, m.Player1, m.Player2,
				m.Player1Win, m.Draw, m.Player1Deck, m.Player2Deck)
			if err != nil {
				return fmt.Errorf("failed to insert match %s/%d: %w", m.TournamentDate, m.Row, err)
			}
		}
	}

	historyStmt, err := tx.PrepareContext(ctx, `INSERT INTO rating_history (player, position, rating) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer historyStmt.Close()

	for _, p := range h.Players() {
		for pos, rating := range h[p] {
			if _, err := historyStmt.ExecContext(ctx, p, pos, rating); err != nil {
				return fmt.Errorf("failed to insert history for %s: %w", p, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	r.logger.Debug().
		Int("batches", len(batches)).
		Int("players", len(h)).
		Msg("snapshot stored")
	return nil
}
