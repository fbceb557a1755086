package loader

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"tournament-elo/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func xlsxBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func memSource(name string, data []byte) Source {
	date, _ := DateFromName(name)
	return Source{
		Date: date,
		Name: name,
		Open: func(ctx context.Context) ([]byte, error) { return data, nil },
	}
}

func TestFactory_GetParser(t *testing.T) {
	factory := NewFactory()
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "csv file", filename: "results_20240105.csv", want: "csv"},
		{name: "upper case extension", filename: "results_20240105.CSV", want: "csv"},
		{name: "xlsx file", filename: "results_20240105.xlsx", want: "xlsx"},
		{name: "unsupported file", filename: "results_20240105.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := factory.GetParser(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			switch tt.want {
			case "csv":
				_, ok := parser.(*CSVParser)
				require.True(t, ok)
			case "xlsx":
				_, ok := parser.(*XLSXParser)
				require.True(t, ok)
			}
		})
	}
}

func TestDateFromName(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		want   string
		wantOK bool
	}{
		{"csv", "results_20240105.csv", "20240105", true},
		{"with dir", "/data/results_20231231.xlsx", "20231231", true},
		{"roster", "players.csv", "", false},
		{"short date", "results_202401.csv", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DateFromName(tt.file)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLoadBatch_CSV(t *testing.T) {
	l := NewLoader(zerolog.Nop())
	tests := []struct {
		name    string
		data    string
		want    []domain.MatchResult
		wantErr bool
	}{
		{
			name: "decks present",
			data: "player1,player2,player1_win,draw,player1_deck,player2_deck\n" +
				"ann,bob,True,False,Elves,Goblins\n" +
				"bob,cat,False,False,,Merfolk\n",
			want: []domain.MatchResult{
				{Player1: "ann", Player2: "bob", Player1Win: true, Player1Deck: "Elves", Player2Deck: "Goblins", TournamentDate: "20240105", Row: 0},
				{Player1: "bob", Player2: "cat", Player1Deck: "Unknown", Player2Deck: "Merfolk", TournamentDate: "20240105", Row: 1},
			},
		},
		{
			name: "deck columns missing",
			data: "Player1,Player2,Player1 Win,Draw\nann,bob,1,0\n\n",
			want: []domain.MatchResult{
				{Player1: "ann", Player2: "bob", Player1Win: true, Player1Deck: "Unknown", Player2Deck: "Unknown", TournamentDate: "20240105"},
			},
		},
		{
			name: "byte order mark",
			data: "\ufeffplayer1,player2,player1_win,draw\nann,bob,True,False\n",
			want: []domain.MatchResult{
				{Player1: "ann", Player2: "bob", Player1Win: true, Player1Deck: "Unknown", Player2Deck: "Unknown", TournamentDate: "20240105"},
			},
		},
		{
			name: "draw ignores outcome",
			data: "player1,player2,player1_win,draw\nann,bob,,True\n",
			want: []domain.MatchResult{
				{Player1: "ann", Player2: "bob", Draw: true, Player1Deck: "Unknown", Player2Deck: "Unknown", TournamentDate: "20240105"},
			},
		},
		{
			name: "header only",
			data: "player1,player2,player1_win,draw\n",
			want: []domain.MatchResult{},
		},
		{
			name:    "missing required column",
			data:    "player1,player2,draw\nann,bob,False\n",
			wantErr: true,
		},
		{
			name:    "ambiguous outcome",
			data:    "player1,player2,player1_win,draw\nann,bob,maybe,False\n",
			wantErr: true,
		},
		{
			name:    "empty tag",
			data:    "player1,player2,player1_win,draw\nann,,True,False\n",
			wantErr: true,
		},
		{
			name:    "empty file",
			data:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := l.LoadBatch(context.Background(), memSource("results_20240105.csv", []byte(tt.data)))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "20240105", b.Date)
			require.Equal(t, tt.want, b.Matches)
		})
	}
}

func TestLoadBatch_XLSX(t *testing.T) {
	l := NewLoader(zerolog.Nop())
	data := xlsxBytes(t, [][]any{
		{"player1", "player2", "player1_win", "draw", "player1_deck"},
		{"ann", "bob", "FALSE", "FALSE", "Elves"},
		{"cat", "ann", "TRUE", "FALSE"},
	})

	b, err := l.LoadBatch(context.Background(), memSource("results_20240112.xlsx", data))
	require.NoError(t, err)
	require.Len(t, b.Matches, 2)
	require.Equal(t, domain.MatchResult{
		Player1: "ann", Player2: "bob", Player1Deck: "Elves", Player2Deck: "Unknown",
		TournamentDate: "20240112",
	}, b.Matches[0])
	require.True(t, b.Matches[1].Player1Win)
	require.Equal(t, "Unknown", b.Matches[1].Player1Deck)
}

func TestDiscoverAndLoad(t *testing.T) {
	dir := t.TempDir()
	header := "player1,player2,player1_win,draw\n"
	writeFile(t, dir, "results_20240112.csv", header+"bob,ann,True,False\n")
	writeFile(t, dir, "results_20240105.csv", header+"ann,bob,True,False\nann,cat,False,False\n")
	writeFile(t, dir, "results_20240119.csv", header)
	writeFile(t, dir, "players.csv", "player_tag\nann\n")
	writeFile(t, dir, "notes.txt", "ignore me")

	sources, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	require.Equal(t, []string{"20240105", "20240112", "20240119"}, []string{sources[0].Date, sources[1].Date, sources[2].Date})

	res, err := NewLoader(zerolog.Nop()).Load(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, res.Batches, 3)
	require.Empty(t, res.Batches[2].Matches)
	require.Len(t, res.Log, 3)
	require.Equal(t, "20240105", res.Log[0].TournamentDate)
	require.Equal(t, "20240105", res.Log[1].TournamentDate)
	require.Equal(t, 1, res.Log[1].Row)
	require.Equal(t, "20240112", res.Log[2].TournamentDate)
}

func TestDiscover_DuplicateDate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "results_20240105.csv", "player1,player2,player1_win,draw\n")
	writeFile(t, dir, "results_20240105.xlsx", "")

	_, err := Discover(dir)
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestLoad_FailsOnBadBatch(t *testing.T) {
	sources := []Source{
		memSource("results_20240105.csv", []byte("player1,player2,player1_win,draw\nann,bob,1,0\n")),
		memSource("results_20240112.csv", []byte("player1,player2\nann,bob\n")),
	}
	_, err := NewLoader(zerolog.Nop()).Load(context.Background(), sources)
	require.ErrorIs(t, err, ErrMalformedInput)
	require.Contains(t, err.Error(), "results_20240112.csv")
}

func TestLoadRoster(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(zerolog.Nop())

	tags, err := l.LoadRoster(writeFile(t, dir, "players.csv", "player_tag,name\nann,Ann\n\nbob,Bob\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"ann", "bob"}, tags)

	_, err = l.LoadRoster(writeFile(t, dir, "bad.csv", "tag\nann\n"))
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestLoadBatch_AmbiguousOutcome(t *testing.T) {
	l := NewLoader(zerolog.Nop())
	for _, v := range []string{"", "maybe", "2"} {
		data := "player1,player2,player1_win,draw\nann,bob," + v + ",False\n"
		_, err := l.LoadBatch(context.Background(), memSource("results_20240105.csv", []byte(data)))
		require.ErrorIs(t, err, ErrAmbiguousOutcome, "player1_win=%q", v)
		require.ErrorIs(t, err, ErrMalformedInput)
	}
}
