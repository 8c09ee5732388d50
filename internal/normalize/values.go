package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/propline/internal/store"
)

// dateLayouts are tried in order for calendar dates without a time zone.
var dateLayouts = []string{
	store.DateLayout,
	"2006-01-02T15:04:05",
	"Jan 02, 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"20060102",
}

// Date converts a date string in any supported format to a calendar date.
// Timestamps carrying a zone are placed on the US Eastern game day.
func Date(s string) (store.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return store.Date{}, false
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return store.Today(t), true
		}
	}

	// stats.nba.com sends "JAN 15, 2024"
	titled := s
	if len(s) > 3 && s[0] >= 'A' && s[0] <= 'Z' {
		titled = s[:1] + strings.ToLower(s[1:3]) + s[3:]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, titled); err == nil {
			return store.DateOf(t), true
		}
	}
	return store.Date{}, false
}

// Minutes converts "MM:SS" to fractional minutes rounded to one decimal
// ("36:24" -> 36.4). Plain numbers pass through.
func Minutes(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	mins, secs, found := strings.Cut(s, ":")
	if !found {
		return Number(s)
	}
	m, err := strconv.Atoi(mins)
	if err != nil {
		return 0, false
	}
	sec, err := strconv.Atoi(secs)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, false
	}
	return Round1(float64(m) + float64(sec)/60), true
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Number parses a numeric string.
func Number(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Count parses a whole number; "28" and "28.0" are accepted, "28.5" is not.
func Count(s string) (int, bool) {
	v, ok := Number(s)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

var statAliases = map[string]string{
	"points":                  store.StatPoints,
	"point":                   store.StatPoints,
	"pts":                     store.StatPoints,
	"rebounds":                store.StatRebounds,
	"rebound":                 store.StatRebounds,
	"rebs":                    store.StatRebounds,
	"reb":                     store.StatRebounds,
	"total rebounds":          store.StatRebounds,
	"assists":                 store.StatAssists,
	"assist":                  store.StatAssists,
	"asts":                    store.StatAssists,
	"ast":                     store.StatAssists,
	"3-pt made":               store.StatThreesMade,
	"3pt made":                store.StatThreesMade,
	"3-pointers made":         store.StatThreesMade,
	"three pointers made":     store.StatThreesMade,
	"threes":                  store.StatThreesMade,
	"3pm":                     store.StatThreesMade,
	"pts+rebs+asts":           store.StatPtsRebsAsts,
	"points+rebounds+assists": store.StatPtsRebsAsts,
	"pra":                     store.StatPtsRebsAsts,
	"pts+rebs":                store.StatPtsRebs,
	"points+rebounds":         store.StatPtsRebs,
	"pts+asts":                store.StatPtsAsts,
	"points+assists":          store.StatPtsAsts,
	"rebs+asts":               store.StatRebsAsts,
	"rebounds+assists":        store.StatRebsAsts,
	"steals":                  store.StatSteals,
	"stl":                     store.StatSteals,
	"blocks":                  store.StatBlocks,
	"blocked shots":           store.StatBlocks,
	"blk":                     store.StatBlocks,
	"blks+stls":               store.StatBlksStls,
	"blocks+steals":           store.StatBlksStls,
	"turnovers":               store.StatTurnovers,
	"to":                      store.StatTurnovers,
	"free throws made":        store.StatFreeThrowsMade,
	"ftm":                     store.StatFreeThrowsMade,
	"fantasy score":           store.StatFantasyScore,
	"fantasy points":          store.StatFantasyScore,
}

// StatType maps a stat category alias to its canonical name. Unknown
// categories are returned trimmed so the validator can report them.
func StatType(s string) string {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	key = strings.ReplaceAll(key, " + ", "+")
	if canonical, ok := statAliases[key]; ok {
		return canonical
	}
	return strings.TrimSpace(s)
}

// Name collapses runs of whitespace in a display name.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
