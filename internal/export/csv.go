package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fortuna/propline/internal/store"
)

// ErrBadHeader is returned when a file being read does not carry the expected columns.
var ErrBadHeader = errors.New("unexpected csv header")

// PropsFilename returns the deterministic file name for a day's props.
func PropsFilename(date store.Date) string {
	return fmt.Sprintf("nba_props_%s.csv", date)
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// GameLogsFilename returns the file name for a player's game logs exported on date.
func GameLogsFilename(player string, date store.Date) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(player), "_"), "_")
	if slug == "" {
		slug = "player"
	}
	return fmt.Sprintf("gamelogs_%s_%s.csv", slug, date)
}

// WriteProps writes records to <dir>/nba_props_<date>.csv, replacing any file
// already there, and returns the path written.
func WriteProps(dir string, date store.Date, records []store.PropRecord) (string, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Player,
			r.StatType,
			formatFloat(r.LineValue),
			r.Matchup,
			r.Date.String(),
		})
	}
	return writeTable(filepath.Join(dir, PropsFilename(date)), store.PropColumns, rows)
}

// WriteGameLogs writes one player's game logs to <dir>/gamelogs_<slug>_<date>.csv.
func WriteGameLogs(dir, player string, date store.Date, records []store.GameLogRecord) (string, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.String(),
			r.Opponent,
			strconv.Itoa(r.Points),
			strconv.Itoa(r.Assists),
			strconv.Itoa(r.Rebounds),
			formatFloat(r.Minutes),
		})
	}
	return writeTable(filepath.Join(dir, GameLogsFilename(player, date)), store.GameLogColumns, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeTable(path string, header []string, rows [][]string) (_ string, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReadProps reads a file written by WriteProps.
func ReadProps(path string) ([]store.PropRecord, error) {
	rows, err := readTable(path, store.PropColumns)
	if err != nil {
		return nil, err
	}

	records := make([]store.PropRecord, 0, len(rows))
	for i, row := range rows {
		line, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d line_value: %w", path, i+2, err)
		}
		date, err := store.ParseDate(row[4])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		records = append(records, store.PropRecord{
			Player:    row[0],
			StatType:  row[1],
			LineValue: line,
			Matchup:   row[3],
			Date:      date,
		})
	}
	return records, nil
}

// ReadGameLogs reads a file written by WriteGameLogs.
func ReadGameLogs(path string) ([]store.GameLogRecord, error) {
	rows, err := readTable(path, store.GameLogColumns)
	if err != nil {
		return nil, err
	}

	records := make([]store.GameLogRecord, 0, len(rows))
	for i, row := range rows {
		date, err := store.ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		var ints [3]int
		for j := range ints {
			if ints[j], err = strconv.Atoi(row[2+j]); err != nil {
				return nil, fmt.Errorf("%s row %d %s: %w", path, i+2, store.GameLogColumns[2+j], err)
			}
		}
		minutes, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d minutes: %w", path, i+2, err)
		}
		records = append(records, store.GameLogRecord{
			Date:     date,
			Opponent: row[1],
			Points:   ints[0],
			Assists:  ints[1],
			Rebounds: ints[2],
			Minutes:  minutes,
		})
	}
	return records, nil
}

func readTable(path string, want []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(want)

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s is empty", ErrBadHeader, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.Join(header, ",") != strings.Join(want, ",") {
		return nil, fmt.Errorf("%w: %s has %v", ErrBadHeader, path, header)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}
