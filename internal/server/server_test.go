package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"tournament-elo/internal/api"
	"tournament-elo/internal/config"
	"tournament-elo/internal/database"
	"tournament-elo/internal/domain"
	"tournament-elo/internal/loader"
	"tournament-elo/internal/metrics"
	"tournament-elo/internal/repository"
	"tournament-elo/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *service.RatingService) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"results_20240105.csv": "player1,player2,player1_win,draw,player1_deck,player2_deck\n" +
			"ann,bob,True,False,Elves,Goblins\n" +
			"ann,cat,False,True,Elves,\n",
		"results_20240112.csv": "player1,player2,player1_win,draw\n" +
			"cat,bob,True,False\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	db, err := database.Open(filepath.Join(t.TempDir(), "ratings.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	cfg := &config.Config{DataDir: dir, InitialRating: 1200, KFactor: 20}
	m := metrics.New()
	historyRepo := repository.NewRatingHistoryRepository(db, log)
	pipeline := service.NewPipeline(cfg, loader.NewLoader(log), api.NewResultsClient(), log)
	ratingSvc := service.NewRatingService(pipeline, repository.NewSnapshotRepository(db, log), historyRepo, m, log)
	matchSvc := service.NewMatchService(repository.NewMatchRepository(db, log), historyRepo, log)

	return NewServer(ratingSvc, matchSvc, m, log), ratingSvc
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_BeforeRefresh(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()

	rec := do(t, h, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "last_refresh")

	rec = do(t, h, http.MethodGet, "/api/leaderboard")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_ReadEndpoints(t *testing.T) {
	s, ratingSvc := newTestServer(t)
	_, err := ratingSvc.Refresh(context.Background())
	require.NoError(t, err)
	h := s.Routes()

	rec := do(t, h, http.MethodGet, "/api/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var rows []domain.LeaderboardRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	require.Equal(t, "ann", rows[0].Player)

	rec = do(t, h, http.MethodGet, "/api/players")
	require.Equal(t, http.StatusOK, rec.Code)
	var players []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.ElementsMatch(t, []string{"ann", "bob", "cat"}, players)

	rec = do(t, h, http.MethodGet, "/api/players/ann/history")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist service.PlayerHistory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Equal(t, []string{"initial", "20240105", "20240112"}, hist.Dates)
	require.Equal(t, []float64{1200, 1210, 1210}, hist.Ratings)

	rec = do(t, h, http.MethodGet, "/api/players/eve/history")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/players/ann/matches?opponent=cat")
	require.Equal(t, http.StatusOK, rec.Code)
	var pm service.PlayerMatches
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pm))
	require.Len(t, pm.Matches, 1)
	require.Equal(t, "DRAW", pm.Matches[0].Outcome)
	require.Equal(t, 1, pm.Draws)

	rec = do(t, h, http.MethodGet, "/api/players/bob/opponents")
	require.Equal(t, http.StatusOK, rec.Code)
	var opponents []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opponents))
	require.Equal(t, []string{"ann", "cat"}, opponents)

	rec = do(t, h, http.MethodGet, "/api/players/cat/chart.png")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(t, h, http.MethodGet, "/api/health")
	require.Contains(t, rec.Body.String(), "last_refresh")
}

func TestServer_RefreshIsRateLimited(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()

	rec := do(t, h, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 2, body["batches"])
	require.EqualValues(t, 3, body["players"])
	require.EqualValues(t, 3, body["matches"])

	rec = do(t, h, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `elo_refreshes_total{result="ok"} 1`))
}

func TestServer_RequestIDEchoed(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodGet, "/api/health")
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
