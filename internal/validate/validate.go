package validate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/normalize"
	"github.com/fortuna/propline/internal/store"
	"go.uber.org/zap"
)

// ErrNoValidRecords is returned by Report.Check in strict mode when every
// record was dropped.
var ErrNoValidRecords = errors.New("no valid records")

// Rejection explains why a candidate was dropped.
type Rejection struct {
	Field  string
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Field, r.Reason)
}

// Key is the tally key used in Report.Reasons.
func (r *Rejection) Key() string {
	return r.Field + " " + r.Reason
}

func reject(field, reason string) *Rejection {
	return &Rejection{Field: field, Reason: reason}
}

// Report aggregates the outcome of validating one batch.
type Report struct {
	Kept    int            `json:"kept"`
	Dropped int            `json:"dropped"`
	Reasons map[string]int `json:"reasons"`
}

func newReport() Report {
	return Report{Reasons: make(map[string]int)}
}

func (r *Report) drop(rej *Rejection) {
	r.Dropped++
	r.Reasons[rej.Key()]++
}

// Check returns ErrNoValidRecords when strict is set and nothing was kept.
func (r Report) Check(strict bool) error {
	if strict && r.Kept == 0 {
		return fmt.Errorf("%w: %d dropped", ErrNoValidRecords, r.Dropped)
	}
	return nil
}

// SortedReasons returns the reason keys ordered by count, then name.
func (r Report) SortedReasons() []string {
	keys := make([]string, 0, len(r.Reasons))
	for k := range r.Reasons {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if r.Reasons[keys[i]] != r.Reasons[keys[j]] {
			return r.Reasons[keys[i]] > r.Reasons[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (r Report) log(log *logger.Logger, kind string) {
	fields := []zap.Field{
		zap.String("kind", kind),
		zap.Int("kept", r.Kept),
		zap.Int("dropped", r.Dropped),
	}
	for _, k := range r.SortedReasons() {
		fields = append(fields, zap.Int(k, r.Reasons[k]))
	}
	if r.Kept == 0 {
		log.Warn("validation kept no records", fields...)
		return
	}
	log.Info("validation complete", fields...)
}

// Prop validates a single prop candidate against the run date.
func Prop(c normalize.PropCandidate, runDate store.Date) (store.PropRecord, error) {
	if c.Player == "" {
		return store.PropRecord{}, reject("player", "missing")
	}
	if c.StatType == "" {
		return store.PropRecord{}, reject("stat_type", "missing")
	}
	if !store.IsKnownStatType(c.StatType) {
		return store.PropRecord{}, reject("stat_type", "unknown")
	}
	if c.LineValue == nil {
		return store.PropRecord{}, reject("line_value", "missing")
	}
	if v := *c.LineValue; v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return store.PropRecord{}, reject("line_value", "not positive")
	}
	if c.Matchup == "" {
		return store.PropRecord{}, reject("matchup", "missing")
	}
	if _, ok := normalize.ParseMatchup(c.Matchup); !ok {
		return store.PropRecord{}, reject("matchup", "not an NBA matchup")
	}
	if c.League != "" && c.League != "NBA" {
		return store.PropRecord{}, reject("league", "not NBA")
	}
	if c.Date.IsZero() {
		return store.PropRecord{}, reject("date", "missing")
	}
	if !c.Date.Equal(runDate) {
		return store.PropRecord{}, reject("date", "not run date")
	}

	return store.PropRecord{
		Player:    c.Player,
		StatType:  c.StatType,
		LineValue: *c.LineValue,
		Matchup:   c.Matchup,
		Date:      c.Date,
	}, nil
}

// Props validates a batch, keeping input order for the survivors.
func Props(cands []normalize.PropCandidate, runDate store.Date, log *logger.Logger) ([]store.PropRecord, Report) {
	report := newReport()
	out := make([]store.PropRecord, 0, len(cands))

	for _, c := range cands {
		rec, err := Prop(c, runDate)
		if err != nil {
			var rej *Rejection
			if errors.As(err, &rej) {
				report.drop(rej)
			}
			log.Debug("dropped prop",
				zap.String("player", c.Player),
				zap.String("stat_type", c.StatType),
				zap.String("source", c.Source),
				zap.String("reason", err.Error()),
			)
			continue
		}
		out = append(out, rec)
		report.Kept++
	}

	report.log(log, "props")
	return out, report
}

// GameLog validates a single game log candidate.
func GameLog(c normalize.GameLogCandidate) (store.GameLogRecord, error) {
	if c.Date.IsZero() {
		return store.GameLogRecord{}, reject("date", "missing")
	}
	if c.Opponent == "" {
		return store.GameLogRecord{}, reject("opponent", "missing")
	}
	if !normalize.IsTeamAbbreviation(c.Opponent) {
		return store.GameLogRecord{}, reject("opponent", "unknown team")
	}

	counts := []struct {
		field string
		v     *int
	}{
		{"points", c.Points},
		{"assists", c.Assists},
		{"rebounds", c.Rebounds},
	}
	for _, n := range counts {
		if n.v == nil {
			return store.GameLogRecord{}, reject(n.field, "missing")
		}
		if *n.v < 0 {
			return store.GameLogRecord{}, reject(n.field, "negative")
		}
	}

	if c.Minutes == nil {
		return store.GameLogRecord{}, reject("minutes", "missing")
	}
	if m := *c.Minutes; m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return store.GameLogRecord{}, reject("minutes", "negative")
	}

	return store.GameLogRecord{
		Date:     c.Date,
		Opponent: c.Opponent,
		Points:   *c.Points,
		Assists:  *c.Assists,
		Rebounds: *c.Rebounds,
		Minutes:  *c.Minutes,
	}, nil
}

// GameLogs validates a batch of game log rows.
func GameLogs(cands []normalize.GameLogCandidate, log *logger.Logger) ([]store.GameLogRecord, Report) {
	report := newReport()
	out := make([]store.GameLogRecord, 0, len(cands))

	for _, c := range cands {
		rec, err := GameLog(c)
		if err != nil {
			var rej *Rejection
			if errors.As(err, &rej) {
				report.drop(rej)
			}
			log.Debug("dropped game log",
				zap.String("date", c.Date.String()),
				zap.String("source", c.Source),
				zap.String("reason", err.Error()),
			)
			continue
		}
		out = append(out, rec)
		report.Kept++
	}

	report.log(log, "gamelogs")
	return out, report
}
