package store

// Sport tags every record this module handles.
const Sport = "basketball_nba"

// PropRecord is a validated player proposition line for one game day.
type PropRecord struct {
	Player    string  `json:"player"`
	StatType  string  `json:"stat_type"`
	LineValue float64 `json:"line_value"`
	Matchup   string  `json:"matchup"`
	Date      Date    `json:"date"`
}

// PropColumns is the fixed header order of exported prop files.
var PropColumns = []string{"player", "stat_type", "line_value", "matchup", "date"}

// GameLogRecord is a validated per-game stat line for one player.
type GameLogRecord struct {
	Date     Date    `json:"date"`
	Opponent string  `json:"opponent"`
	Points   int     `json:"points"`
	Assists  int     `json:"assists"`
	Rebounds int     `json:"rebounds"`
	Minutes  float64 `json:"minutes"`
}

// GameLogColumns is the fixed header order of game log tables.
var GameLogColumns = []string{"date", "opponent", "points", "assists", "rebounds", "minutes"}

// Player is an entry of the static player directory
type Player struct {
	ID        int    `json:"id"`
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
}

// PlayerQuery parametrizes a game log fetch.
type PlayerQuery struct {
	Name    string
	Season  string // "YYYY-YY", empty means current season
	UseMock bool
}

// Canonical stat categories accepted for props.
const (
	StatPoints         = "Points"
	StatRebounds       = "Rebounds"
	StatAssists        = "Assists"
	StatThreesMade     = "3-PT Made"
	StatPtsRebsAsts    = "Pts+Rebs+Asts"
	StatPtsRebs        = "Pts+Rebs"
	StatPtsAsts        = "Pts+Asts"
	StatRebsAsts       = "Rebs+Asts"
	StatSteals         = "Steals"
	StatBlocks         = "Blocks"
	StatBlksStls       = "Blks+Stls"
	StatTurnovers      = "Turnovers"
	StatFreeThrowsMade = "Free Throws Made"
	StatFantasyScore   = "Fantasy Score"
)

var knownStatTypes = map[string]bool{
	StatPoints:         true,
	StatRebounds:       true,
	StatAssists:        true,
	StatThreesMade:     true,
	StatPtsRebsAsts:    true,
	StatPtsRebs:        true,
	StatPtsAsts:        true,
	StatRebsAsts:       true,
	StatSteals:         true,
	StatBlocks:         true,
	StatBlksStls:       true,
	StatTurnovers:      true,
	StatFreeThrowsMade: true,
	StatFantasyScore:   true,
}

// IsKnownStatType reports whether s is one of the canonical stat categories.
func IsKnownStatType(s string) bool {
	return knownStatTypes[s]
}
