package report

import (
	"bytes"
	"testing"
	"tournament-elo/internal/domain"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	h := domain.Histories{
		"ann": {1200, 1210},
		"bob": {1200, 1190},
	}
	rows := []domain.LeaderboardRow{
		{Player: "ann", Rating: 1210, Change: 10},
		{Player: "bob", Rating: 1190, Change: -10},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows, h, []string{"20240105"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{leaderboardSheet, historySheet}, f.GetSheetList())

	board, err := f.GetRows(leaderboardSheet)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Rank", "Player", "Rating", "Change"},
		{"1", "ann", "1210", "10"},
		{"2", "bob", "1190", "-10"},
	}, board)

	history, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Equal(t, []string{"Player", "initial", "20240105"}, history[0])
	require.Equal(t, []string{"bob", "1200", "1190"}, history[2])
}
