package loader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"tournament-elo/internal/constants"
	"tournament-elo/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	colPlayer1     = "player1"
	colPlayer2     = "player2"
	colPlayer1Win  = "player1_win"
	colDraw        = "draw"
	colPlayer1Deck = "player1_deck"
	colPlayer2Deck = "player2_deck"
)

type Result struct {
	Batches []domain.MatchBatch
	Log     []domain.MatchResult
}

type Loader struct {
	factory *Factory
	logger  zerolog.Logger
}

func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{factory: NewFactory(), logger: logger}
}

// Load reads every source and returns the batches and flat match log in
// source order. Sources must already be sorted oldest first.
func (l *Loader) Load(ctx context.Context, sources []Source) (*Result, error) {
	batches := make([]domain.MatchBatch, len(sources))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.LoaderConcurrency)
	for i, src := range sources {
		g.Go(func() error {
			b, err := l.LoadBatch(gCtx, src)
			if err != nil {
				return err
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Batches: batches}
	for _, b := range batches {
		res.Log = append(res.Log, b.Matches...)
	}

	l.logger.Info().
		Int("batches", len(res.Batches)).
		Int("matches", len(res.Log)).
		Msg("match log loaded")
	return res, nil
}

func (l *Loader) LoadBatch(ctx context.Context, src Source) (domain.MatchBatch, error) {
	parser, err := l.factory.GetParser(src.Name)
	if err != nil {
		return domain.MatchBatch{}, fmt.Errorf("%s: %w", src.Name, err)
	}

	data, err := src.Open(ctx)
	if err != nil {
		return domain.MatchBatch{}, fmt.Errorf("failed to read %s: %w", src.Name, err)
	}

	table, err := parser.Parse(data)
	if err != nil {
		return domain.MatchBatch{}, fmt.Errorf("failed to parse %s: %w", src.Name, err)
	}

	b, err := decodeBatch(src, table)
	if err != nil {
		return domain.MatchBatch{}, fmt.Errorf("%s: %w", src.Name, err)
	}

	l.logger.Debug().
		Str("source", src.Name).
		Str("date", src.Date).
		Int("rows", len(b.Matches)).
		Msg("batch loaded")
	return b, nil
}

func decodeBatch(src Source, t *Table) (domain.MatchBatch, error) {
	idx := make(map[string]int)
	for _, col := range []string{colPlayer1, colPlayer2, colPlayer1Win, colDraw} {
		i := t.Column(col)
		if i < 0 {
			return domain.MatchBatch{}, fmt.Errorf("%w: missing column %q", ErrMalformedInput, col)
		}
		idx[col] = i
	}
	idx[colPlayer1Deck] = t.Column(colPlayer1Deck)
	idx[colPlayer2Deck] = t.Column(colPlayer2Deck)

	b := domain.MatchBatch{
		Date:    src.Date,
		Source:  src.Name,
		Matches: make([]domain.MatchResult, 0, len(t.Rows)),
	}
	for n, row := range t.Rows {
		m, err := decodeRow(row, idx)
		if err != nil {
			return domain.MatchBatch{}, fmt.Errorf("row %d: %w", n+1, err)
		}
		m.TournamentDate = src.Date
		m.Row = n
		b.Matches = append(b.Matches, m)
	}
	return b, nil
}

func decodeRow(row []string, idx map[string]int) (domain.MatchResult, error) {
	m := domain.MatchResult{
		Player1:     cell(row, idx[colPlayer1]),
		Player2:     cell(row, idx[colPlayer2]),
		Player1Deck: deck(cell(row, idx[colPlayer1Deck])),
		Player2Deck: deck(cell(row, idx[colPlayer2Deck])),
	}
	if m.Player1 == "" || m.Player2 == "" {
		return m, fmt.Errorf("%w: empty player tag", ErrMalformedInput)
	}

	if v := cell(row, idx[colDraw]); v != "" {
		d, err := parseBool(v)
		if err != nil {
			return m, fmt.Errorf("%w: draw value %q", ErrMalformedInput, v)
		}
		m.Draw = d
	}
	if m.Draw {
		return m, nil
	}

	v := cell(row, idx[colPlayer1Win])
	win, err := parseBool(v)
	if err != nil {
		return m, fmt.Errorf("%w %q", ErrAmbiguousOutcome, v)
	}
	m.Player1Win = win
	return m, nil
}

func deck(v string) string {
	if v == "" {
		return domain.UnknownDeck
	}
	return v
}

// parseBool also accepts the float spellings spreadsheets produce.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1.0":
		return true, nil
	case "0.0":
		return false, nil
	}
	return strconv.ParseBool(v)
}
