package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/propline/internal/store"
)

// PropsRepository persists exported props in the nba_props table.
type PropsRepository struct {
	db *store.Database
}

// NewPropsRepository creates a new props repository
func NewPropsRepository(db *store.Database) *PropsRepository {
	return &PropsRepository{db: db}
}

// Name identifies the repository when used as a props sink.
func (r *PropsRepository) Name() string { return "postgres" }

// PublishProps stores a day's slate. It satisfies service.PropSink.
func (r *PropsRepository) PublishProps(ctx context.Context, day store.Date, records []store.PropRecord) error {
	_, err := r.UpsertProps(ctx, records)
	return err
}

// UpsertProps inserts records, updating line and matchup when a player
// already has a line for the same stat and day. It returns the number of rows
// written.
func (r *PropsRepository) UpsertProps(ctx context.Context, records []store.PropRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO nba_props (player, stat_type, line_value, matchup, game_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player, stat_type, game_date) DO UPDATE SET
			line_value = EXCLUDED.line_value,
			matchup = EXCLUDED.matchup,
			updated_at = NOW()
	`

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Player, rec.StatType, rec.LineValue, rec.Matchup, rec.Date.Time); err != nil {
			return 0, fmt.Errorf("upserting prop %s %s: %w", rec.Player, rec.StatType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing props: %w", err)
	}
	return len(records), nil
}

// GetPropsByDate returns the stored slate for day, ordered by player then stat.
func (r *PropsRepository) GetPropsByDate(ctx context.Context, day store.Date) ([]store.PropRecord, error) {
	query := `
		SELECT player, stat_type, line_value, matchup, game_date
		FROM nba_props
		WHERE game_date = $1
		ORDER BY player, stat_type
	`

	rows, err := r.db.DB().QueryContext(ctx, query, day.Time)
	if err != nil {
		return nil, fmt.Errorf("querying props: %w", err)
	}
	defer rows.Close()

	props := []store.PropRecord{}
	for rows.Next() {
		var rec store.PropRecord
		var gameDate time.Time
		if err := rows.Scan(&rec.Player, &rec.StatType, &rec.LineValue, &rec.Matchup, &gameDate); err != nil {
			return nil, fmt.Errorf("scanning prop: %w", err)
		}
		rec.Date = store.DateOf(gameDate)
		props = append(props, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating props: %w", err)
	}
	return props, nil
}

// DeletePropsByDate removes a day's slate and returns the number of rows removed.
func (r *PropsRepository) DeletePropsByDate(ctx context.Context, day store.Date) (int64, error) {
	res, err := r.db.DB().ExecContext(ctx, "DELETE FROM nba_props WHERE game_date = $1", day.Time)
	if err != nil {
		return 0, fmt.Errorf("deleting props: %w", err)
	}
	return res.RowsAffected()
}
