package ingest

// RawProp is an unvalidated prop entry exactly as a source strategy found it.
// Every field is text; an empty string means the source did not carry it.
type RawProp struct {
	Source   string
	Player   string
	StatType string
	Line     string
	Matchup  string
	League   string
	Date     string
}

// RawGameLog is an unvalidated game log row, keyed the way the stats API
// names its columns (GAME_DATE, MATCHUP, PTS, AST, REB, MIN).
type RawGameLog struct {
	Source   string
	GameDate string
	Matchup  string
	Points   string
	Assists  string
	Rebounds string
	Minutes  string
}
