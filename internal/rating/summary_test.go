package rating

import (
	"testing"
	"tournament-elo/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		h       domain.Histories
		want    []domain.LeaderboardRow
		wantErr error
	}{
		{
			name: "sorted by rating",
			h: domain.Histories{
				"A": {1200, 1210},
				"B": {1200, 1190},
				"C": {1200, 1200},
			},
			want: []domain.LeaderboardRow{
				{Player: "A", Rating: 1210, Change: 10},
				{Player: "C", Rating: 1200, Change: 0},
				{Player: "B", Rating: 1190, Change: -10},
			},
		},
		{
			name: "rounded to one decimal",
			h: domain.Histories{
				"A": {1200, 1210, 1199.7431},
			},
			want: []domain.LeaderboardRow{
				{Player: "A", Rating: 1199.7, Change: -10.3},
			},
		},
		{
			name: "ties broken by tag",
			h: domain.Histories{
				"zed":   {1200, 1205},
				"alice": {1200, 1205},
				"mike":  {1200, 1205},
			},
			want: []domain.LeaderboardRow{
				{Player: "alice", Rating: 1205, Change: 5},
				{Player: "mike", Rating: 1205, Change: 5},
				{Player: "zed", Rating: 1205, Change: 5},
			},
		},
		{
			name:    "empty universe",
			h:       domain.Histories{},
			wantErr: ErrNoData,
		},
		{
			name:    "no batches processed",
			h:       domain.Histories{"A": {1200}},
			wantErr: ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Summarize(tt.h)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, rows)
		})
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	h := domain.Histories{}
	for _, p := range []string{"e", "d", "c", "b", "a"} {
		h[p] = []float64{1200, 1200}
	}

	first, err := Summarize(h)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		rows, err := Summarize(h)
		require.NoError(t, err)
		require.Equal(t, first, rows)
	}
	require.Equal(t, "a", first[0].Player)
}
