package rating

import (
	"fmt"
	"math"
	"sort"
	"tournament-elo/internal/domain"
)

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Summarize builds the leaderboard from the last two entries of each history.
// Rows are ordered by current rating, highest first, then by tag.
func Summarize(h domain.Histories) ([]domain.LeaderboardRow, error) {
	if len(h) == 0 {
		return nil, ErrNoData
	}

	type entry struct {
		player            string
		current, previous float64
	}
	entries := make([]entry, 0, len(h))
	for p, ratings := range h {
		if len(ratings) < 2 {
			return nil, fmt.Errorf("%w: %q has %d entries", ErrNoData, p, len(ratings))
		}
		entries = append(entries, entry{
			player:   p,
			current:  ratings[len(ratings)-1],
			previous: ratings[len(ratings)-2],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].current != entries[j].current {
			return entries[i].current > entries[j].current
		}
		return entries[i].player < entries[j].player
	})

	rows := make([]domain.LeaderboardRow, len(entries))
	for i, e := range entries {
		rows[i] = domain.LeaderboardRow{
			Player: e.player,
			Rating: round1(e.current),
			Change: round1(e.current - e.previous),
		}
	}
	return rows, nil
}
