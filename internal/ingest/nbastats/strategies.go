package nbastats

import (
	"context"

	"github.com/fortuna/propline/internal/ingest"
)

const (
	SourceAPI  = "api"
	SourceMock = "mock"
)

// GameLogQuery identifies a resolved player and season.
type GameLogQuery struct {
	PlayerID int
	Player   string
	Season   string
}

// APIStrategy reads the game log from stats.nba.com.
type APIStrategy struct {
	client *Client
}

func NewAPIStrategy(client *Client) *APIStrategy {
	return &APIStrategy{client: client}
}

func (s *APIStrategy) Name() string { return SourceAPI }

func (s *APIStrategy) Fetch(ctx context.Context, q GameLogQuery) ([]ingest.RawGameLog, error) {
	return s.client.PlayerGameLog(ctx, q.PlayerID, q.Season)
}

// MockStrategy serves fixed game log rows.
type MockStrategy struct{}

func (MockStrategy) Name() string { return SourceMock }

func (MockStrategy) Fetch(_ context.Context, _ GameLogQuery) ([]ingest.RawGameLog, error) {
	return MockGameLogs(), nil
}

// Strategies returns the chain for a query: mock only when useMock is set,
// otherwise the API with mock as the fallback.
func Strategies(client *Client, useMock bool) []ingest.Strategy[GameLogQuery, ingest.RawGameLog] {
	if useMock || client == nil {
		return []ingest.Strategy[GameLogQuery, ingest.RawGameLog]{MockStrategy{}}
	}
	return []ingest.Strategy[GameLogQuery, ingest.RawGameLog]{
		NewAPIStrategy(client),
		MockStrategy{},
	}
}

var mockRows = []ingest.RawGameLog{
	{GameDate: "2024-01-15", Matchup: "LAL vs. GSW", Points: "28", Assists: "7", Rebounds: "8", Minutes: "36:24"},
	{GameDate: "2024-01-12", Matchup: "LAL @ BOS", Points: "25", Assists: "9", Rebounds: "6", Minutes: "38:15"},
	{GameDate: "2024-01-10", Matchup: "LAL vs. MIA", Points: "32", Assists: "6", Rebounds: "11", Minutes: "40:02"},
	{GameDate: "2024-01-08", Matchup: "LAL @ PHX", Points: "22", Assists: "8", Rebounds: "7", Minutes: "35:30"},
	{GameDate: "2024-01-05", Matchup: "LAL vs. DEN", Points: "30", Assists: "5", Rebounds: "9", Minutes: "37:45"},
}

// MockGameLogs returns a fresh copy of the fixed rows.
func MockGameLogs() []ingest.RawGameLog {
	rows := make([]ingest.RawGameLog, len(mockRows))
	for i, r := range mockRows {
		r.Source = SourceMock
		rows[i] = r
	}
	return rows
}
