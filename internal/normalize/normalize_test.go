package normalize

import (
	"fmt"
	"testing"

	"github.com/fortuna/propline/internal/ingest"
	"github.com/fortuna/propline/internal/store"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeam(t *testing.T) {
	cases := map[string]string{
		"LAL":                    "LAL",
		"lal":                    "LAL",
		"GS":                     "GSW",
		"PHO":                    "PHX",
		"Utah":                   "UTA",
		"Los Angeles Lakers":     "LAL",
		"Golden State Warriors":  "GSW",
		"Portland Trail Blazers": "POR",
		"Charlotte Hornets":      "CHA",
		"Brooklyn Nets":          "BKN",
		" celtics ":              "BOS",
	}
	for in, want := range cases {
		got, ok := Team(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := Team("Los Angeles")
	assert.False(t, ok)
	_, ok = Team("Real Madrid")
	assert.False(t, ok)
}

func TestParseMatchup(t *testing.T) {
	m, ok := ParseMatchup("LAL @ GSW")
	require.True(t, ok)
	assert.Equal(t, Matchup{Team: "LAL", Opponent: "GSW", Away: true}, m)
	assert.Equal(t, "LAL @ GSW", m.String())

	assert.Equal(t, "GSW vs LAL", MatchupText("GSW vs. LAL"))
	assert.Equal(t, "GSW vs LAL", MatchupText("Warriors v Lakers"))
	assert.Equal(t, "BOS @ MIA", MatchupText("Boston Celtics at Miami Heat"))

	_, ok = ParseMatchup("LAL")
	assert.False(t, ok)
	_, ok = ParseMatchup("LAL vs LAL")
	assert.False(t, ok)
	_, ok = ParseMatchup("KC @ BUF")
	assert.False(t, ok)
	assert.Equal(t, "KC @ BUF", MatchupText("  KC   @ BUF "))
}

func TestOpponent(t *testing.T) {
	assert.Equal(t, "GSW", Opponent("LAL vs. GSW"))
	assert.Equal(t, "BOS", Opponent("LAL @ BOS"))
	assert.Equal(t, "PHX", Opponent("LAL @ PHO"))
	assert.Equal(t, "unexpected", Opponent("unexpected"))
}

func TestDate(t *testing.T) {
	want := store.NewDate(2024, 1, 15)
	for _, in := range []string{
		"2024-01-15",
		"2024-01-15T00:00:00",
		"JAN 15, 2024",
		"Jan 15, 2024",
		"January 15, 2024",
		"01/15/2024",
		"20240115",
		"2024-01-15T19:30:00-05:00",
		// 00:30 UTC on the 16th is still the evening of the 15th in New York
		"2024-01-16T00:30:00Z",
	} {
		got, ok := Date(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := Date("")
	assert.False(t, ok)
	_, ok = Date("yesterday")
	assert.False(t, ok)
}

func TestMinutes(t *testing.T) {
	got, ok := Minutes("36:24")
	require.True(t, ok)
	assert.Equal(t, 36.4, got)

	got, ok = Minutes("38:15")
	require.True(t, ok)
	assert.Equal(t, 38.3, got)

	got, ok = Minutes("34")
	require.True(t, ok)
	assert.Equal(t, 34.0, got)

	for _, bad := range []string{"", "abc", "36:75", "x:10"} {
		_, ok := Minutes(bad)
		assert.False(t, ok, bad)
	}
}

func TestMinutesProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("MM:SS converts to rounded fractional minutes", prop.ForAll(
		func(m, s int) bool {
			got, ok := Minutes(fmt.Sprintf("%d:%02d", m, s))
			return ok && got == Round1(float64(m)+float64(s)/60) && got >= 0
		},
		gen.IntRange(0, 60),
		gen.IntRange(0, 59),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCount(t *testing.T) {
	v, ok := Count("28")
	require.True(t, ok)
	assert.Equal(t, 28, v)

	v, ok = Count("28.0")
	require.True(t, ok)
	assert.Equal(t, 28, v)

	_, ok = Count("28.5")
	assert.False(t, ok)
	_, ok = Count("")
	assert.False(t, ok)
}

func TestStatType(t *testing.T) {
	assert.Equal(t, store.StatPoints, StatType("pts"))
	assert.Equal(t, store.StatPoints, StatType("Points"))
	assert.Equal(t, store.StatPtsRebsAsts, StatType("Pts + Rebs + Asts"))
	assert.Equal(t, store.StatThreesMade, StatType("3-PT Made"))
	assert.Equal(t, "Goals", StatType(" Goals "))
}

func TestProp(t *testing.T) {
	c := Prop(ingest.RawProp{
		Source:   "api",
		Player:   "  LeBron   James ",
		StatType: "pts",
		Line:     "25.5",
		Matchup:  "Lakers @ Warriors",
		League:   "nba",
		Date:     "2024-01-15",
	})

	assert.Equal(t, "LeBron James", c.Player)
	assert.Equal(t, store.StatPoints, c.StatType)
	require.NotNil(t, c.LineValue)
	assert.Equal(t, 25.5, *c.LineValue)
	assert.Equal(t, "LAL @ GSW", c.Matchup)
	assert.Equal(t, "NBA", c.League)
	assert.Equal(t, store.NewDate(2024, 1, 15), c.Date)
}

func TestPropKeepsMissingValuesAbsent(t *testing.T) {
	c := Prop(ingest.RawProp{Player: "Stephen Curry", StatType: "Assists"})

	assert.Nil(t, c.LineValue)
	assert.True(t, c.Date.IsZero())
	assert.Empty(t, c.Matchup)
}

func TestGameLog(t *testing.T) {
	c := GameLog(ingest.RawGameLog{
		GameDate: "JAN 15, 2024",
		Matchup:  "LAL vs. GSW",
		Points:   "28",
		Assists:  "7",
		Rebounds: "8",
		Minutes:  "36:24",
	})

	assert.Equal(t, store.NewDate(2024, 1, 15), c.Date)
	assert.Equal(t, "GSW", c.Opponent)
	require.NotNil(t, c.Points)
	assert.Equal(t, 28, *c.Points)
	require.NotNil(t, c.Minutes)
	assert.Equal(t, 36.4, *c.Minutes)

	empty := GameLog(ingest.RawGameLog{})
	assert.Nil(t, empty.Points)
	assert.Nil(t, empty.Minutes)
	assert.Empty(t, empty.Opponent)
}
