package query

import (
	"errors"
	"fmt"
	"sort"
	"time"
	"tournament-elo/internal/domain"
)

var (
	ErrDrawOutcome    = errors.New("draw has no win/loss outcome")
	ErrNotParticipant = errors.New("player did not play in match")
	ErrBadDate        = errors.New("invalid tournament date")
)

// MatchesFor returns the matches player took part in, in log order. A
// non-empty opponent narrows the result to games against that opponent.
func MatchesFor(log []domain.MatchResult, player, opponent string) []domain.MatchResult {
	out := []domain.MatchResult{}
	for _, m := range log {
		if !m.Involves(player) {
			continue
		}
		if opponent != "" && otherSide(m, player) != opponent {
			continue
		}
		out = append(out, m)
	}
	return out
}

func OpponentsOf(log []domain.MatchResult, player string) []string {
	seen := make(map[string]struct{})
	for _, m := range log {
		if m.Involves(player) {
			seen[otherSide(m, player)] = struct{}{}
		}
	}
	opponents := make([]string, 0, len(seen))
	for o := range seen {
		opponents = append(opponents, o)
	}
	sort.Strings(opponents)
	return opponents
}

// Record counts the player's wins, losses and draws across log.
func Record(log []domain.MatchResult, player string) (wins, losses, draws int) {
	for _, m := range log {
		if !m.Involves(player) {
			continue
		}
		switch {
		case m.Draw:
			draws++
		case (m.Player1 == player) == m.Player1Win:
			wins++
		default:
			losses++
		}
	}
	return wins, losses, draws
}

// FormatMatch describes m from perspective's side of the table.
func FormatMatch(m domain.MatchResult, perspective string) (domain.MatchLine, error) {
	if !m.Involves(perspective) {
		return domain.MatchLine{}, fmt.Errorf("%w: %q", ErrNotParticipant, perspective)
	}
	if m.Draw {
		return domain.MatchLine{}, ErrDrawOutcome
	}

	date, err := FormatDate(m.TournamentDate)
	if err != nil {
		return domain.MatchLine{}, err
	}

	line := domain.MatchLine{Date: date}
	won := m.Player1Win
	if m.Player1 == perspective {
		line.Opponent, line.Deck, line.OpponentDeck = m.Player2, m.Player1Deck, m.Player2Deck
	} else {
		line.Opponent, line.Deck, line.OpponentDeck = m.Player1, m.Player2Deck, m.Player1Deck
		won = !won
	}

	line.Outcome = domain.Loss
	if won {
		line.Outcome = domain.Win
	}
	return line, nil
}

// FormatDate renders a YYYYMMDD batch identifier as MM/DD/YY.
func FormatDate(id string) (string, error) {
	if len(id) != 8 {
		return "", fmt.Errorf("%w: %q", ErrBadDate, id)
	}
	t, err := time.Parse("20060102", id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadDate, id)
	}
	return t.Format("01/02/06"), nil
}

func otherSide(m domain.MatchResult, player string) string {
	if m.Player1 == player {
		return m.Player2
	}
	return m.Player1
}
