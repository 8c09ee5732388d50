package store

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidSeason is returned for season identifiers not in "YYYY-YY" form.
var ErrInvalidSeason = errors.New("invalid season")

var seasonPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ParseSeason validates a "YYYY-YY" season identifier and returns its
// starting year. The two-digit suffix must be the following year.
func ParseSeason(season string) (int, error) {
	m := seasonPattern.FindStringSubmatch(season)
	if m == nil {
		return 0, fmt.Errorf("%w: %q (want YYYY-YY)", ErrInvalidSeason, season)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if (start+1)%100 != end {
		return 0, fmt.Errorf("%w: %q spans more than one year", ErrInvalidSeason, season)
	}
	return start, nil
}

// SeasonFor returns the season in progress (or about to start) on t.
// A new season is counted from October onwards.
func SeasonFor(t time.Time) string {
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}
