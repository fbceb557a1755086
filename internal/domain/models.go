package domain

import (
	"fmt"
	"sort"
)

const UnknownDeck = "Unknown"

type Outcome string

const (
	Win  Outcome = "WIN"
	Loss Outcome = "LOSS"
)

type MatchResult struct {
	Player1        string
	Player2        string
	Player1Win     bool
	Draw           bool
	Player1Deck    string
	Player2Deck    string
	TournamentDate string // YYYYMMDD, taken from the batch
	Row            int    // position within the batch
}

// Involves reports whether tag plays either side of the match.
func (m MatchResult) Involves(tag string) bool {
	return m.Player1 == tag || m.Player2 == tag
}

type MatchBatch struct {
	Date    string
	Source  string
	Matches []MatchResult
}

// Histories maps a player tag to its rating after each processed batch.
// Index 0 holds the initial rating.
type Histories map[string][]float64

func (h Histories) Players() []string {
	players := make([]string, 0, len(h))
	for p := range h {
		players = append(players, p)
	}
	sort.Strings(players)
	return players
}

type LeaderboardRow struct {
	Player string  `json:"player"`
	Rating float64 `json:"rating"`
	Change float64 `json:"change"`
}

type MatchLine struct {
	Date         string  `json:"date"`
	Opponent     string  `json:"opponent"`
	Deck         string  `json:"deck"`
	OpponentDeck string  `json:"opponent_deck"`
	Outcome      Outcome `json:"outcome"`
}

func (l MatchLine) String() string {
	return fmt.Sprintf("%s  %-4s  vs %s  (%s vs %s)", l.Date, l.Outcome, l.Opponent, l.Deck, l.OpponentDeck)
}
