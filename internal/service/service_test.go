package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortuna/propline/internal/export"
	"github.com/fortuna/propline/internal/ingest/nbastats"
	"github.com/fortuna/propline/internal/ingest/prizepicks"
	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/store"
	"github.com/fortuna/propline/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 15:00 UTC on 2024-01-15 is the morning of the 15th in New York.
func fixedNow() time.Time {
	return time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)
}

// failingServer answers every request with 503 and counts the hits.
func failingServer(t *testing.T) (string, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, &hits
}

func newStatsService(t *testing.T, baseURL string) *StatsService {
	t.Helper()
	dir, err := nbastats.LoadDirectory()
	require.NoError(t, err)
	client := nbastats.NewClient(nbastats.Options{BaseURL: baseURL, Timeout: 2 * time.Second}, logger.NewNop())
	return NewStatsService(dir, client, logger.NewNop()).WithClock(fixedNow)
}

func newPropsService(t *testing.T, baseURL string, sinks ...PropSink) *PropsService {
	t.Helper()
	client := prizepicks.NewClient(prizepicks.Options{BaseURL: baseURL, Timeout: 2 * time.Second}, logger.NewNop())
	return NewPropsService(client, nil, logger.NewNop(), sinks...).WithClock(fixedNow)
}

func TestFindPlayerByName(t *testing.T) {
	svc := newStatsService(t, "http://127.0.0.1:0")

	p, ok := svc.FindPlayerByName("Stephen Curry")
	require.True(t, ok)
	assert.Equal(t, 201939, p.ID)

	p, ok = svc.FindPlayerByName("NotAPlayer123")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestGetPlayerGameLogsMock(t *testing.T) {
	url, hits := failingServer(t)
	svc := newStatsService(t, url)

	logs, err := svc.GetPlayerGameLogs(context.Background(), "LeBron James", "2023-24", true)
	require.NoError(t, err)
	require.Len(t, logs, 5)
	assert.Equal(t, int32(0), hits.Load())

	assert.Equal(t, store.GameLogRecord{
		Date:     store.NewDate(2024, 1, 15),
		Opponent: "GSW",
		Points:   28,
		Assists:  7,
		Rebounds: 8,
		Minutes:  36.4,
	}, logs[0])
	for i := 1; i < len(logs); i++ {
		assert.True(t, logs[i-1].Date.After(logs[i].Date.Time), "sorted most recent first")
	}
	for _, l := range logs {
		assert.GreaterOrEqual(t, l.Points, 0)
		assert.GreaterOrEqual(t, l.Minutes, 0.0)
	}
}

func TestGetPlayerGameLogsFallsBackOnNetworkFailure(t *testing.T) {
	url, hits := failingServer(t)
	svc := newStatsService(t, url)

	res, err := svc.FetchGameLogs(context.Background(), store.PlayerQuery{Name: "LeBron James"})
	require.NoError(t, err)

	assert.Equal(t, nbastats.SourceMock, res.Source)
	assert.Len(t, res.Records, 5)
	assert.Equal(t, "2023-24", res.Season)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetPlayerGameLogsEmptySeasonIsNotMocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultSets": [{"headers": ["GAME_DATE", "MATCHUP", "PTS", "AST", "REB", "MIN"], "rowSet": []}]}`))
	}))
	t.Cleanup(srv.Close)
	svc := newStatsService(t, srv.URL)

	logs, err := svc.GetPlayerGameLogs(context.Background(), "LeBron James", "2023-24", false)
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestGetPlayerGameLogsNotFound(t *testing.T) {
	url, hits := failingServer(t)
	svc := newStatsService(t, url)

	logs, err := svc.GetPlayerGameLogs(context.Background(), "NotAPlayer123", "", true)
	assert.ErrorIs(t, err, nbastats.ErrPlayerNotFound)
	assert.Nil(t, logs)
	assert.Equal(t, int32(0), hits.Load())

	// online, the full player list is tried once and its failure is not a fallback
	logs, err = svc.GetPlayerGameLogs(context.Background(), "NotAPlayer123", "", false)
	assert.ErrorIs(t, err, nbastats.ErrPlayerNotFound)
	assert.Nil(t, logs)
	assert.Equal(t, int32(1), hits.Load())
}

const allPlayersBody = `{"resultSets": [{
  "name": "CommonAllPlayers",
  "headers": ["PERSON_ID", "DISPLAY_LAST_COMMA_FIRST", "DISPLAY_FIRST_LAST", "ROSTERSTATUS", "FROM_YEAR", "TO_YEAR"],
  "rowSet": [
    [1641999, "Rookie, Fresh", "Fresh Rookie", 1, "2023", "2023"],
    [2544, "James, LeBron", "LeBron James", 1, "2003", "2023"]
  ]
}]}`

func TestGetPlayerGameLogsRefreshesDirectory(t *testing.T) {
	var listHits, logHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/commonallplayers":
			listHits.Add(1)
			w.Write([]byte(allPlayersBody))
		case "/playergamelog":
			logHits.Add(1)
			assert.Equal(t, "1641999", r.URL.Query().Get("PlayerID"))
			w.Write([]byte(`{"resultSets": [{"headers": ["GAME_DATE", "MATCHUP", "PTS", "AST", "REB", "MIN"],
				"rowSet": [["JAN 12, 2024", "DET @ BOS", 12, 3, 4, "24:30"]]}]}`))
		}
	}))
	t.Cleanup(srv.Close)
	svc := newStatsService(t, srv.URL)

	_, ok := svc.FindPlayerByName("Fresh Rookie")
	require.False(t, ok)

	res, err := svc.FetchGameLogs(context.Background(), store.PlayerQuery{Name: "Fresh Rookie"})
	require.NoError(t, err)
	assert.Equal(t, 1641999, res.Player.ID)
	assert.Equal(t, "Fresh", res.Player.FirstName)
	assert.Equal(t, "Rookie", res.Player.LastName)
	assert.Equal(t, nbastats.SourceAPI, res.Source)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "BOS", res.Records[0].Opponent)

	p, ok := svc.FindPlayerByName("fresh rookie")
	require.True(t, ok)
	assert.True(t, p.IsActive)

	// the list is fetched once; a later miss is answered from the directory
	_, err = svc.FetchGameLogs(context.Background(), store.PlayerQuery{Name: "NotAPlayer123"})
	assert.ErrorIs(t, err, nbastats.ErrPlayerNotFound)
	assert.Equal(t, int32(1), listHits.Load())
	assert.Equal(t, int32(1), logHits.Load())
}

func TestGetPlayerGameLogsBadSeason(t *testing.T) {
	svc := newStatsService(t, "http://127.0.0.1:0")

	_, err := svc.GetPlayerGameLogs(context.Background(), "LeBron James", "2023-25", true)
	assert.ErrorIs(t, err, store.ErrInvalidSeason)
}

func TestGetMultiplePlayersGameLogs(t *testing.T) {
	svc := newStatsService(t, "http://127.0.0.1:0")

	results := svc.GetMultiplePlayersGameLogs(context.Background(),
		[]string{"LeBron James", "NotAPlayer123", "LeBron James"}, "", true)

	require.Len(t, results, 2)
	assert.Len(t, results["LeBron James"], 5)
	require.Contains(t, results, "NotAPlayer123")
	assert.NotNil(t, results["NotAPlayer123"])
	assert.Empty(t, results["NotAPlayer123"])
}

type fakeSink struct {
	name    string
	err     error
	records []store.PropRecord
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) PublishProps(_ context.Context, _ store.Date, records []store.PropRecord) error {
	f.records = records
	return f.err
}

func TestPropsRunMock(t *testing.T) {
	url, hits := failingServer(t)
	broken := &fakeSink{name: "broken", err: errors.New("redis down")}
	good := &fakeSink{name: "good"}
	svc := newPropsService(t, url, broken, good)
	dir := filepath.Join(t.TempDir(), "out")

	res, err := svc.Run(context.Background(), RunOptions{OutputDir: dir, UseMock: true})
	require.NoError(t, err)

	assert.Equal(t, int32(0), hits.Load())
	assert.Equal(t, prizepicks.SourceMock, res.Strategy)
	assert.Equal(t, filepath.Join(dir, "nba_props_2024-01-15.csv"), res.Path)
	assert.Len(t, res.Records, 5)
	assert.Len(t, good.records, 5)

	written, err := export.ReadProps(res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Records, written)
	for _, r := range written {
		assert.Greater(t, r.LineValue, 0.0)
		assert.True(t, store.IsKnownStatType(r.StatType))
		assert.Equal(t, "2024-01-15", r.Date.String())
	}
}

func TestPropsRunFallsBackOnNetworkFailure(t *testing.T) {
	url, hits := failingServer(t)
	svc := newPropsService(t, url)

	res, err := svc.Run(context.Background(), RunOptions{OutputDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, prizepicks.SourceMock, res.Strategy)
	assert.Len(t, res.Records, 5)
	assert.Len(t, res.Failures, 2)
	// three API endpoints and the board page
	assert.Equal(t, int32(4), hits.Load())
}

func TestPropsRunFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"player_name": "LeBron James", "stat_type": "pts", "line": 25.5, "matchup": "Lakers @ Warriors", "league": "NBA"},
			{"player_name": "Stephen Curry", "stat_type": "Assists", "matchup": "GSW vs LAL"},
			{"player_name": "Patrick Mahomes", "stat_type": "Pass Yards", "line": 275.5, "matchup": "KC @ BUF", "league": "NFL"}
		]}`))
	}))
	t.Cleanup(srv.Close)
	svc := newPropsService(t, srv.URL)

	res, err := svc.Run(context.Background(), RunOptions{OutputDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, prizepicks.SourceAPI, res.Strategy)
	assert.Equal(t, 3, res.Raw)
	require.Len(t, res.Records, 1)
	assert.Equal(t, store.PropRecord{
		Player:    "LeBron James",
		StatType:  "Points",
		LineValue: 25.5,
		Matchup:   "LAL @ GSW",
		Date:      store.NewDate(2024, 1, 15),
	}, res.Records[0])
	assert.Equal(t, 2, res.Report.Dropped)
}

func TestPropsRunCountsIncompleteRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"player_name": "LeBron James", "stat_type": "Points", "line": 25.5, "matchup": "LAL @ GSW"},
			{"player_name": "Stephen Curry", "stat_type": "Assists", "line": 6.5, "matchup": "GSW vs LAL"},
			{"player_name": "Anthony Davis", "stat_type": "Rebounds", "line": 11.5, "matchup": "LAL @ GSW"},
			{"player_name": "Klay Thompson", "line": 3.5, "matchup": "GSW vs LAL"},
			{"stat_type": "Points", "line": 20.5, "matchup": "LAL @ GSW"}
		]`))
	}))
	t.Cleanup(srv.Close)

	res, err := newPropsService(t, srv.URL).Run(context.Background(), RunOptions{OutputDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Raw)
	assert.Equal(t, 3, res.Report.Kept)
	assert.Equal(t, 2, res.Report.Dropped)
	assert.Equal(t, map[string]int{"stat_type missing": 1, "player missing": 1}, res.Report.Reasons)
}

func TestPropsRunStrictEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"player_name": "Ghost", "stat_type": "Points", "line": -1, "matchup": "LAL @ GSW"}]`))
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()

	res, err := newPropsService(t, srv.URL).Run(context.Background(), RunOptions{OutputDir: dir, Strict: true})
	require.ErrorIs(t, err, validate.ErrNoValidRecords)
	require.NotNil(t, res)
	assert.Empty(t, res.Path)
	_, statErr := os.Stat(filepath.Join(dir, "nba_props_2024-01-15.csv"))
	assert.True(t, os.IsNotExist(statErr))

	// lenient mode still writes a header-only file
	res, err = newPropsService(t, srv.URL).Run(context.Background(), RunOptions{OutputDir: dir})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.FileExists(t, res.Path)
}

func TestPropsRunUnwritableOutput(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := newPropsService(t, "http://127.0.0.1:0").Run(context.Background(), RunOptions{
		OutputDir: filepath.Join(blocker, "out"),
		UseMock:   true,
	})
	assert.Error(t, err)
}
