package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tournament-elo/internal/constants"
	"tournament-elo/internal/domain"
	"tournament-elo/internal/query"
	"tournament-elo/internal/repository"

	"github.com/rs/zerolog"
)

type MatchView struct {
	Date         string `json:"tournament_date"`
	Player1      string `json:"player1"`
	Player2      string `json:"player2"`
	Player1Win   bool   `json:"player1_win"`
	Draw         bool   `json:"draw"`
	Player1Deck  string `json:"player1_deck"`
	Player2Deck  string `json:"player2_deck"`
	Outcome      string `json:"outcome"`
	Line         string `json:"line,omitempty"`
	Opponent     string `json:"opponent"`
	OpponentDeck string `json:"opponent_deck"`
}

type PlayerMatches struct {
	Player  string      `json:"player"`
	Wins    int         `json:"wins"`
	Losses  int         `json:"losses"`
	Draws   int         `json:"draws"`
	Matches []MatchView `json:"matches"`
}

type MatchService struct {
	matchRepo   *repository.MatchRepository
	historyRepo *repository.RatingHistoryRepository
	logger      zerolog.Logger
}

func NewMatchService(matchRepo *repository.MatchRepository, historyRepo *repository.RatingHistoryRepository, logger zerolog.Logger) *MatchService {
	return &MatchService{matchRepo: matchRepo, historyRepo: historyRepo, logger: logger}
}

func (s *MatchService) MatchesFor(ctx context.Context, player, opponent string) (*PlayerMatches, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := s.matchRepo.GetByPlayer(ctx, player)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if err := s.ensureKnown(ctx, player); err != nil {
			return nil, err
		}
	}

	matches := query.MatchesFor(rows, player, opponent)
	out := &PlayerMatches{Player: player, Matches: make([]MatchView, 0, len(matches))}
	out.Wins, out.Losses, out.Draws = query.Record(matches, player)

	for _, m := range matches {
		v, err := view(m, player)
		if err != nil {
			s.logger.Warn().Err(err).Str("player", player).Str("date", m.TournamentDate).Int("row", m.Row).Msg("failed to format match")
			return nil, err
		}
		out.Matches = append(out.Matches, v)
	}

	s.logger.Debug().Str("player", player).Str("opponent", opponent).Int("matches", len(out.Matches)).Msg("matches listed")
	return out, nil
}

func (s *MatchService) OpponentsOf(ctx context.Context, player string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := s.matchRepo.GetByPlayer(ctx, player)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if err := s.ensureKnown(ctx, player); err != nil {
			return nil, err
		}
	}
	return query.OpponentsOf(rows, player), nil
}

// ensureKnown separates roster-only players from tags nobody has seen.
func (s *MatchService) ensureKnown(ctx context.Context, player string) error {
	_, err := s.historyRepo.GetByPlayer(ctx, player)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, player)
	}
	return err
}

func view(m domain.MatchResult, player string) (MatchView, error) {
	v := MatchView{
		Date:        m.TournamentDate,
		Player1:     m.Player1,
		Player2:     m.Player2,
		Player1Win:  m.Player1Win,
		Draw:        m.Draw,
		Player1Deck: m.Player1Deck,
		Player2Deck: m.Player2Deck,
	}

	line, err := query.FormatMatch(m, player)
	if errors.Is(err, query.ErrDrawOutcome) {
		v.Outcome = "DRAW"
		v.Opponent, v.OpponentDeck = m.Player2, m.Player2Deck
		if m.Player2 == player {
			v.Opponent, v.OpponentDeck = m.Player1, m.Player1Deck
		}
		return v, nil
	}
	if err != nil {
		return v, err
	}

	v.Outcome = string(line.Outcome)
	v.Line = line.String()
	v.Opponent = line.Opponent
	v.OpponentDeck = line.OpponentDeck
	return v, nil
}
