package normalize

import (
	"regexp"
	"strings"
)

// teamAbbreviations holds the 30 canonical NBA codes.
var teamAbbreviations = map[string]bool{
	"ATL": true, "BOS": true, "BKN": true, "CHA": true, "CHI": true,
	"CLE": true, "DAL": true, "DEN": true, "DET": true, "GSW": true,
	"HOU": true, "IND": true, "LAC": true, "LAL": true, "MEM": true,
	"MIA": true, "MIL": true, "MIN": true, "NOP": true, "NYK": true,
	"OKC": true, "ORL": true, "PHI": true, "PHX": true, "POR": true,
	"SAC": true, "SAS": true, "TOR": true, "UTA": true, "WAS": true,
}

// Codes used by various books and feeds that differ from the canonical ones.
var legacyAbbreviations = map[string]string{
	"GS":   "GSW",
	"NY":   "NYK",
	"SA":   "SAS",
	"NO":   "NOP",
	"NOR":  "NOP",
	"NOH":  "NOP",
	"PHO":  "PHX",
	"UTAH": "UTA",
	"UTH":  "UTA",
	"WSH":  "WAS",
	"BRK":  "BKN",
	"BRO":  "BKN",
	"NJN":  "BKN",
	"CHO":  "CHA",
	"CHH":  "CHA",
	"SEA":  "OKC",
}

// teamNameToAbbreviation maps nicknames and unambiguous city names.
var teamNameToAbbreviation = map[string]string{
	"hawks":         "ATL",
	"atlanta":       "ATL",
	"celtics":       "BOS",
	"boston":        "BOS",
	"nets":          "BKN",
	"brooklyn":      "BKN",
	"hornets":       "CHA",
	"charlotte":     "CHA",
	"bulls":         "CHI",
	"chicago":       "CHI",
	"cavaliers":     "CLE",
	"cavs":          "CLE",
	"cleveland":     "CLE",
	"mavericks":     "DAL",
	"mavs":          "DAL",
	"dallas":        "DAL",
	"nuggets":       "DEN",
	"denver":        "DEN",
	"pistons":       "DET",
	"detroit":       "DET",
	"warriors":      "GSW",
	"golden state":  "GSW",
	"rockets":       "HOU",
	"houston":       "HOU",
	"pacers":        "IND",
	"indiana":       "IND",
	"clippers":      "LAC",
	"lakers":        "LAL",
	"grizzlies":     "MEM",
	"memphis":       "MEM",
	"heat":          "MIA",
	"miami":         "MIA",
	"bucks":         "MIL",
	"milwaukee":     "MIL",
	"timberwolves":  "MIN",
	"wolves":        "MIN",
	"minnesota":     "MIN",
	"pelicans":      "NOP",
	"new orleans":   "NOP",
	"knicks":        "NYK",
	"thunder":       "OKC",
	"oklahoma city": "OKC",
	"magic":         "ORL",
	"orlando":       "ORL",
	"76ers":         "PHI",
	"sixers":        "PHI",
	"philadelphia":  "PHI",
	"suns":          "PHX",
	"phoenix":       "PHX",
	"trail blazers": "POR",
	"blazers":       "POR",
	"portland":      "POR",
	"kings":         "SAC",
	"sacramento":    "SAC",
	"spurs":         "SAS",
	"san antonio":   "SAS",
	"raptors":       "TOR",
	"toronto":       "TOR",
	"jazz":          "UTA",
	"utah":          "UTA",
	"wizards":       "WAS",
	"washington":    "WAS",
}

// IsTeamAbbreviation reports whether code is a canonical NBA team code.
func IsTeamAbbreviation(code string) bool {
	return teamAbbreviations[code]
}

// Team returns the canonical abbreviation for a team code, nickname or full
// name. The second result is false when the team could not be identified, in
// which case the trimmed input is returned unchanged.
func Team(name string) (string, bool) {
	name = strings.TrimSpace(name)
	upper := strings.ToUpper(strings.TrimSuffix(name, "."))
	if teamAbbreviations[upper] {
		return upper, true
	}
	if abbr, ok := legacyAbbreviations[upper]; ok {
		return abbr, true
	}

	lower := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if abbr, ok := teamNameToAbbreviation[lower]; ok {
		return abbr, true
	}

	// Match on whole trailing words ("Los Angeles Lakers", "Portland Trail
	// Blazers") so that "nets" never matches inside "hornets".
	words := strings.Fields(lower)
	for i := len(words) - 1; i >= 0; i-- {
		for j := i; j >= 0 && j >= i-1; j-- {
			if abbr, ok := teamNameToAbbreviation[strings.Join(words[j:i+1], " ")]; ok {
				return abbr, true
			}
		}
	}

	return name, false
}

var matchupPattern = regexp.MustCompile(`(?i)^\s*(.+?)\s+(@|at|vs\.?|v\.?)\s+(.+?)\s*$`)

// Matchup is a parsed two-team matchup.
type Matchup struct {
	Team     string
	Opponent string
	Away     bool // Team is playing at Opponent
}

func (m Matchup) String() string {
	if m.Away {
		return m.Team + " @ " + m.Opponent
	}
	return m.Team + " vs " + m.Opponent
}

// ParseMatchup parses "LAL @ GSW", "GSW vs. LAL", "Lakers at Warriors" and
// similar forms. It fails unless both sides resolve to NBA teams.
func ParseMatchup(text string) (Matchup, bool) {
	m := matchupPattern.FindStringSubmatch(text)
	if m == nil {
		return Matchup{}, false
	}
	team, ok := Team(m[1])
	if !ok {
		return Matchup{}, false
	}
	opponent, ok := Team(m[3])
	if !ok || opponent == team {
		return Matchup{}, false
	}
	sep := strings.ToLower(m[2])
	return Matchup{
		Team:     team,
		Opponent: opponent,
		Away:     sep == "@" || sep == "at",
	}, true
}

// MatchupText canonicalizes matchup text. Unparseable text is returned trimmed.
func MatchupText(text string) string {
	if m, ok := ParseMatchup(text); ok {
		return m.String()
	}
	return strings.Join(strings.Fields(text), " ")
}

// Opponent extracts the opposing team from a game log matchup such as
// "LAL vs. GSW" or "LAL @ BOS". Text without a separator is returned as is.
func Opponent(matchup string) string {
	m := matchupPattern.FindStringSubmatch(matchup)
	if m == nil {
		return strings.TrimSpace(matchup)
	}
	opp, _ := Team(m[3])
	return opp
}
