package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playoff-survivor/internal/domain/round"
)

type roundScheduleModel struct {
	ContestID        string    `db:"contest_id"`
	PlayoffStartWeek int       `db:"playoff_start_week"`
	Version          int64     `db:"version"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type roundModel struct {
	ContestID string `db:"contest_id"`
	Ordinal   int    `db:"ordinal"`
	Label     string `db:"label"`
	NFLWeek   int    `db:"nfl_week"`
	IsCurrent bool   `db:"is_current"`
	IsOpen    bool   `db:"is_open"`
}

func scheduleFromRows(header roundScheduleModel, rows []roundModel) round.Schedule {
	rounds := make([]round.Round, 0, len(rows))
	for _, row := range rows {
		rounds = append(rounds, round.Round{
			Ordinal:   row.Ordinal,
			Label:     row.Label,
			NFLWeek:   row.NFLWeek,
			IsCurrent: row.IsCurrent,
			IsOpen:    row.IsOpen,
		})
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Ordinal < rounds[j].Ordinal })

	return round.Schedule{
		ContestID:        header.ContestID,
		PlayoffStartWeek: header.PlayoffStartWeek,
		Rounds:           rounds,
		Version:          header.Version,
	}
}

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) GetSchedule(ctx context.Context, contestID string) (round.Schedule, bool, error) {
	var header roundScheduleModel
	err := r.db.GetContext(ctx, &header,
		`SELECT contest_id, playoff_start_week, version, updated_at
FROM round_schedules WHERE contest_id = $1`,
		contestID,
	)
	if err != nil {
		if isNotFound(err) {
			return round.Schedule{}, false, nil
		}
		return round.Schedule{}, false, fmt.Errorf("get round schedule: %w", err)
	}

	var rows []roundModel
	err = r.db.SelectContext(ctx, &rows,
		`SELECT contest_id, ordinal, label, nfl_week, is_current, is_open
FROM rounds WHERE contest_id = $1 ORDER BY ordinal`,
		contestID,
	)
	if err != nil {
		return round.Schedule{}, false, fmt.Errorf("list schedule rounds: %w", err)
	}

	return scheduleFromRows(header, rows), true, nil
}

// SaveSchedule replaces the stored schedule wholesale inside one transaction,
// so a reader never observes two current rounds.
func (r *RoundRepository) SaveSchedule(ctx context.Context, schedule round.Schedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO round_schedules (contest_id, playoff_start_week, version, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (contest_id) DO UPDATE SET
	playoff_start_week = EXCLUDED.playoff_start_week,
	version = EXCLUDED.version,
	updated_at = NOW()`,
		schedule.ContestID, schedule.PlayoffStartWeek, schedule.Version,
	)
	if err != nil {
		return fmt.Errorf("upsert round schedule: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rounds WHERE contest_id = $1`, schedule.ContestID); err != nil {
		return fmt.Errorf("clear schedule rounds: %w", err)
	}
	for _, item := range schedule.Rounds {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rounds (contest_id, ordinal, label, nfl_week, is_current, is_open)
VALUES ($1, $2, $3, $4, $5, $6)`,
			schedule.ContestID, item.Ordinal, item.Label, item.NFLWeek, item.IsCurrent, item.IsOpen,
		)
		if err != nil {
			return fmt.Errorf("insert schedule round %d: %w", item.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule tx: %w", err)
	}
	return nil
}
