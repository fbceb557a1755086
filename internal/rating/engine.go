package rating

import (
	"fmt"
	"maps"
	"sort"
	"tournament-elo/internal/domain"
)

type options struct {
	k      float64
	roster []string
}

type Option func(*options)

func WithK(k float64) Option {
	return func(o *options) { o.k = k }
}

// WithRoster pre-seeds the player universe with tags that may not appear in any match.
func WithRoster(tags ...string) Option {
	return func(o *options) { o.roster = append(o.roster, tags...) }
}

// Universe returns every tag that plays in any batch, sorted.
func Universe(batches []domain.MatchBatch) []string {
	seen := make(map[string]struct{})
	for _, b := range batches {
		for _, m := range b.Matches {
			seen[m.Player1] = struct{}{}
			seen[m.Player2] = struct{}{}
		}
	}
	players := make([]string, 0, len(seen))
	for p := range seen {
		players = append(players, p)
	}
	sort.Strings(players)
	return players
}

// ComputeHistories replays batches in the given order and returns one rating
// per batch for every player, preceded by the initial rating.
func ComputeHistories(initial float64, batches []domain.MatchBatch, opts ...Option) (domain.Histories, error) {
	o := options{k: DefaultK}
	for _, opt := range opts {
		opt(&o)
	}

	universe := Universe(batches)
	universe = append(universe, o.roster...)

	histories := make(domain.Histories, len(universe))
	snapshot := make(map[string]float64, len(universe))
	for _, p := range universe {
		if _, ok := histories[p]; ok {
			continue
		}
		ratings := make([]float64, 1, len(batches)+1)
		ratings[0] = initial
		histories[p] = ratings
		snapshot[p] = initial
	}

	for _, b := range batches {
		next, err := applyBatch(maps.Clone(snapshot), b, o.k)
		if err != nil {
			return nil, fmt.Errorf("batch %s: %w", b.Date, err)
		}
		for p := range histories {
			histories[p] = append(histories[p], next[p])
		}
		snapshot = next
	}

	return histories, nil
}

// applyBatch owns working for the duration of the call. Rows update it in
// order, so a player's second match in a batch starts from the first result.
func applyBatch(working map[string]float64, b domain.MatchBatch, k float64) (map[string]float64, error) {
	for _, m := range b.Matches {
		if m.Draw {
			continue
		}

		r1, ok := working[m.Player1]
		if !ok {
			return nil, fmt.Errorf("row %d: %w %q", m.Row, ErrUnknownPlayer, m.Player1)
		}
		r2, ok := working[m.Player2]
		if !ok {
			return nil, fmt.Errorf("row %d: %w %q", m.Row, ErrUnknownPlayer, m.Player2)
		}

		s1 := 0.0
		if m.Player1Win {
			s1 = 1.0
		}

		working[m.Player1] = NewRating(r1, ExpectedScore(r1, r2), s1, k)
		working[m.Player2] = NewRating(r2, ExpectedScore(r2, r1), 1-s1, k)
	}
	return working, nil
}
