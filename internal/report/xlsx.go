package report

import (
	"fmt"
	"io"
	"tournament-elo/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	leaderboardSheet = "Leaderboard"
	historySheet     = "History"
)

// WriteXLSX writes the leaderboard and the full rating history as two sheets.
// dates labels the history columns after the initial rating.
func WriteXLSX(w io.Writer, rows []domain.LeaderboardRow, h domain.Histories, dates []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeRow(f, leaderboardSheet, 1, []any{"Rank", "Player", "Rating", "Change"}); err != nil {
		return err
	}
	for i, r := range rows {
		if err := writeRow(f, leaderboardSheet, i+2, []any{i + 1, r.Player, r.Rating, r.Change}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(historySheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	header := []any{"Player", "initial"}
	for _, d := range dates {
		header = append(header, d)
	}
	if err := writeRow(f, historySheet, 1, header); err != nil {
		return err
	}
	for i, p := range h.Players() {
		row := []any{p}
		for _, r := range h[p] {
			row = append(row, r)
		}
		if err := writeRow(f, historySheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, n, err)
	}
	return nil
}
