package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
)

const rosterSelectColumns = `pick_id, contest_id, user_id, round_ordinal, position, player_id,
consecutive_rounds, multiplier, base_points, final_points, is_live, locked, settled,
created_at, updated_at`

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) ListByUserAndRound(ctx context.Context, contestID, userID string, roundOrdinal int) ([]roster.Slot, error) {
	query := `SELECT ` + rosterSelectColumns + `
FROM roster_slots
WHERE contest_id = $1 AND user_id = $2 AND round_ordinal = $3
ORDER BY pick_id`

	var rows []rosterSlotModel
	if err := r.db.SelectContext(ctx, &rows, query, contestID, userID, roundOrdinal); err != nil {
		return nil, fmt.Errorf("list roster slots by user: %w", err)
	}
	return rosterSlotsFromRows(rows), nil
}

func (r *RosterRepository) ListByContestAndRound(ctx context.Context, contestID string, roundOrdinal int) ([]roster.Slot, error) {
	query := `SELECT ` + rosterSelectColumns + `
FROM roster_slots
WHERE contest_id = $1 AND round_ordinal = $2
ORDER BY pick_id`

	var rows []rosterSlotModel
	if err := r.db.SelectContext(ctx, &rows, query, contestID, roundOrdinal); err != nil {
		return nil, fmt.Errorf("list roster slots by contest: %w", err)
	}
	return rosterSlotsFromRows(rows), nil
}

func (r *RosterRepository) ListSettledByUserAndRound(ctx context.Context, contestID, userID string, roundOrdinal int) ([]roster.Slot, error) {
	query := `SELECT ` + rosterSelectColumns + `
FROM roster_slots
WHERE contest_id = $1 AND user_id = $2 AND round_ordinal = $3 AND settled
ORDER BY pick_id`

	var rows []rosterSlotModel
	if err := r.db.SelectContext(ctx, &rows, query, contestID, userID, roundOrdinal); err != nil {
		return nil, fmt.Errorf("list settled roster slots: %w", err)
	}
	return rosterSlotsFromRows(rows), nil
}

func (r *RosterRepository) GetByPickID(ctx context.Context, contestID, pickID string) (roster.Slot, bool, error) {
	query := `SELECT ` + rosterSelectColumns + `
FROM roster_slots
WHERE contest_id = $1 AND pick_id = $2`

	var row rosterSlotModel
	if err := r.db.GetContext(ctx, &row, query, contestID, pickID); err != nil {
		if isNotFound(err) {
			return roster.Slot{}, false, nil
		}
		return roster.Slot{}, false, fmt.Errorf("get roster slot: %w", err)
	}
	return rosterSlotFromRow(row), true, nil
}

func (r *RosterRepository) Upsert(ctx context.Context, slot roster.Slot) error {
	query := `INSERT INTO roster_slots (
	pick_id, contest_id, user_id, round_ordinal, position, player_id,
	consecutive_rounds, multiplier, base_points, final_points, is_live, locked, settled,
	created_at, updated_at
) VALUES (
	:pick_id, :contest_id, :user_id, :round_ordinal, :position, :player_id,
	:consecutive_rounds, :multiplier, :base_points, :final_points, :is_live, :locked, :settled,
	:created_at, :updated_at
)
ON CONFLICT (pick_id) DO UPDATE SET
	position = EXCLUDED.position,
	player_id = EXCLUDED.player_id,
	consecutive_rounds = EXCLUDED.consecutive_rounds,
	multiplier = EXCLUDED.multiplier,
	base_points = EXCLUDED.base_points,
	final_points = EXCLUDED.final_points,
	is_live = EXCLUDED.is_live,
	locked = EXCLUDED.locked,
	settled = EXCLUDED.settled,
	updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, rosterSlotToRow(slot)); err != nil {
		return fmt.Errorf("upsert roster slot: %w", err)
	}
	return nil
}

func (r *RosterRepository) Delete(ctx context.Context, contestID, pickID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM roster_slots WHERE contest_id = $1 AND pick_id = $2`,
		contestID, pickID,
	)
	if err != nil {
		return false, fmt.Errorf("delete roster slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete roster slot rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *RosterRepository) MarkRoundSettled(ctx context.Context, contestID string, roundOrdinal int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE roster_slots
SET settled = TRUE, locked = TRUE, is_live = FALSE, updated_at = NOW()
WHERE contest_id = $1 AND round_ordinal = $2`,
		contestID, roundOrdinal,
	)
	if err != nil {
		return fmt.Errorf("mark round settled: %w", err)
	}
	return nil
}

func rosterSlotsFromRows(rows []rosterSlotModel) []roster.Slot {
	out := make([]roster.Slot, 0, len(rows))
	for _, row := range rows {
		out = append(out, rosterSlotFromRow(row))
	}
	return out
}
