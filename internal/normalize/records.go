package normalize

import (
	"strings"

	"github.com/fortuna/propline/internal/ingest"
	"github.com/fortuna/propline/internal/store"
)

// PropCandidate is a prop in the target schema that has not been validated.
// Absent values stay absent: a nil LineValue or zero Date was not in the source.
type PropCandidate struct {
	Source    string
	Player    string
	StatType  string
	LineValue *float64
	Matchup   string
	League    string
	Date      store.Date
}

// GameLogCandidate is a game log row in the target schema, not yet validated.
type GameLogCandidate struct {
	Source   string
	Date     store.Date
	Opponent string
	Points   *int
	Assists  *int
	Rebounds *int
	Minutes  *float64
}

// Prop maps a raw prop from any strategy into the target schema.
func Prop(raw ingest.RawProp) PropCandidate {
	c := PropCandidate{
		Source:   raw.Source,
		Player:   Name(raw.Player),
		StatType: StatType(raw.StatType),
		Matchup:  MatchupText(raw.Matchup),
		League:   strings.ToUpper(strings.TrimSpace(raw.League)),
	}
	if v, ok := Number(raw.Line); ok {
		c.LineValue = &v
	}
	if d, ok := Date(raw.Date); ok {
		c.Date = d
	}
	return c
}

// Props maps a batch of raw props.
func Props(raws []ingest.RawProp) []PropCandidate {
	out := make([]PropCandidate, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Prop(raw))
	}
	return out
}

// GameLog maps a raw game log row into the target schema.
func GameLog(raw ingest.RawGameLog) GameLogCandidate {
	c := GameLogCandidate{Source: raw.Source}
	if d, ok := Date(raw.GameDate); ok {
		c.Date = d
	}
	if strings.TrimSpace(raw.Matchup) != "" {
		c.Opponent = Opponent(raw.Matchup)
	}
	c.Points = count(raw.Points)
	c.Assists = count(raw.Assists)
	c.Rebounds = count(raw.Rebounds)
	if v, ok := Minutes(raw.Minutes); ok {
		c.Minutes = &v
	}
	return c
}

// GameLogs maps a batch of raw game log rows.
func GameLogs(raws []ingest.RawGameLog) []GameLogCandidate {
	out := make([]GameLogCandidate, 0, len(raws))
	for _, raw := range raws {
		out = append(out, GameLog(raw))
	}
	return out
}

func count(s string) *int {
	if v, ok := Count(s); ok {
		return &v
	}
	return nil
}
