package prizepicks

import (
	"github.com/fortuna/propline/internal/ingest"
	"github.com/fortuna/propline/internal/store"
)

var mockSlate = []ingest.RawProp{
	{Player: "LeBron James", StatType: "Points", Line: "25.5", Matchup: "LAL @ GSW"},
	{Player: "Stephen Curry", StatType: "Assists", Line: "6.5", Matchup: "GSW vs LAL"},
	{Player: "Anthony Davis", StatType: "Rebounds", Line: "11.5", Matchup: "LAL @ GSW"},
	{Player: "Draymond Green", StatType: "Assists", Line: "7.5", Matchup: "GSW vs LAL"},
	{Player: "Russell Westbrook", StatType: "Points", Line: "18.5", Matchup: "LAL @ GSW"},
}

// MockProps returns the fixed slate stamped with day.
func MockProps(day store.Date) []ingest.RawProp {
	props := make([]ingest.RawProp, len(mockSlate))
	for i, p := range mockSlate {
		p.Source = SourceMock
		p.League = "NBA"
		p.Date = day.String()
		props[i] = p
	}
	return props
}
