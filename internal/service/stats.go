package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fortuna/propline/internal/ingest"
	"github.com/fortuna/propline/internal/ingest/nbastats"
	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/normalize"
	"github.com/fortuna/propline/internal/store"
	"github.com/fortuna/propline/internal/validate"
	"go.uber.org/zap"
)

// StatsService answers game log queries against the static player directory
// and stats.nba.com.
type StatsService struct {
	dir    *nbastats.Directory
	client *nbastats.Client
	now    func() time.Time
	log    *logger.Logger

	refreshMu sync.Mutex
	refreshed bool
}

// GameLogsResult is one player's validated game log, most recent game first.
type GameLogsResult struct {
	Player   store.Player             `json:"player"`
	Season   string                   `json:"season"`
	Source   string                   `json:"source"`
	Records  []store.GameLogRecord    `json:"records"`
	Report   validate.Report          `json:"-"`
	Failures []ingest.StrategyFailure `json:"-"`
}

// NewStatsService creates a new stats service. A nil client limits it to mock data.
func NewStatsService(dir *nbastats.Directory, client *nbastats.Client, log *logger.Logger) *StatsService {
	return &StatsService{
		dir:    dir,
		client: client,
		now:    time.Now,
		log:    log.Named("stats"),
	}
}

// WithClock overrides the clock used to pick the current season.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// FindPlayerByName looks a player up in the static directory.
func (s *StatsService) FindPlayerByName(name string) (*store.Player, bool) {
	p, ok := s.dir.Find(name)
	if !ok {
		s.log.Warn("player not found", zap.String("name", name))
		return nil, false
	}
	return &p, true
}

// SearchPlayers returns directory entries whose name contains query.
func (s *StatsService) SearchPlayers(query string, limit int) []store.Player {
	return s.dir.Search(query, limit)
}

// GetPlayerGameLogs returns a player's game logs for season ("" for the
// current one). A name missing from the embedded directory is looked up in
// stats.nba.com's player list unless useMock is set. An unknown player fails
// with nbastats.ErrPlayerNotFound and never falls back to mock data; an
// unreachable API does.
func (s *StatsService) GetPlayerGameLogs(ctx context.Context, name, season string, useMock bool) ([]store.GameLogRecord, error) {
	res, err := s.FetchGameLogs(ctx, store.PlayerQuery{Name: name, Season: season, UseMock: useMock})
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// FetchGameLogs is GetPlayerGameLogs with provenance.
func (s *StatsService) FetchGameLogs(ctx context.Context, q store.PlayerQuery) (*GameLogsResult, error) {
	player, err := s.lookup(ctx, q.Name, !q.UseMock)
	if err != nil {
		s.log.Warn("player lookup failed", zap.String("name", q.Name), zap.Error(err))
		return nil, err
	}

	season := q.Season
	if season == "" {
		season = store.SeasonFor(s.now())
	} else if _, err := store.ParseSeason(season); err != nil {
		return nil, err
	}

	log := s.log.With(
		zap.String("player", player.FullName),
		zap.Int("player_id", player.ID),
		zap.String("season", season),
	)
	log.Info("fetching game logs", zap.Bool("mock", q.UseMock))

	resolver := ingest.NewResolver[nbastats.GameLogQuery, ingest.RawGameLog](log, nbastats.Strategies(s.client, q.UseMock)...).AcceptEmpty()
	resolution, err := resolver.Resolve(ctx, nbastats.GameLogQuery{
		PlayerID: player.ID,
		Player:   player.FullName,
		Season:   season,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching game logs for %s: %w", player.FullName, err)
	}

	records, report := validate.GameLogs(normalize.GameLogs(resolution.Records), log)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date.Time)
	})

	return &GameLogsResult{
		Player:   player,
		Season:   season,
		Source:   resolution.Strategy,
		Records:  records,
		Report:   report,
		Failures: resolution.Failures,
	}, nil
}

// lookup resolves name in the directory. On a miss, and when online, the full
// player list is loaded from stats.nba.com once and the lookup retried.
func (s *StatsService) lookup(ctx context.Context, name string, online bool) (store.Player, error) {
	player, err := s.dir.Lookup(name)
	if err == nil || !online || s.client == nil || !errors.Is(err, nbastats.ErrPlayerNotFound) {
		return player, err
	}
	if s.RefreshDirectory(ctx) == 0 {
		return player, err
	}
	return s.dir.Lookup(name)
}

// RefreshDirectory merges stats.nba.com's full player list into the
// directory and returns how many players were added. It only succeeds once;
// failed attempts are logged and retried on the next call.
func (s *StatsService) RefreshDirectory(ctx context.Context) int {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if s.refreshed || s.client == nil {
		return 0
	}

	players, err := s.client.AllPlayers(ctx, store.SeasonFor(s.now()))
	if err != nil {
		s.log.Warn("player list refresh failed", zap.Error(err))
		return 0
	}
	s.refreshed = true
	added := s.dir.Merge(players)
	s.log.Info("player directory refreshed",
		zap.Int("fetched", len(players)),
		zap.Int("added", added),
		zap.Int("total", s.dir.Len()),
	)
	return added
}

// GetMultiplePlayersGameLogs fetches each name in order, one at a time. A
// failure for one player leaves an empty table under that name and does not
// stop the batch. Repeated names are fetched again.
func (s *StatsService) GetMultiplePlayersGameLogs(ctx context.Context, names []string, season string, useMock bool) map[string][]store.GameLogRecord {
	results := make(map[string][]store.GameLogRecord, len(names))
	for _, name := range names {
		records, err := s.GetPlayerGameLogs(ctx, name, season, useMock)
		if err != nil {
			s.log.Error("fetching game logs failed", err, zap.String("name", name))
			records = []store.GameLogRecord{}
		}
		results[name] = records
	}
	return results
}
