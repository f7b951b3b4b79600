package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playoff-survivor/internal/domain/leaderboard"
)

type leaderboardSnapshotModel struct {
	ContestID   string     `db:"contest_id"`
	State       string     `db:"state"`
	GeneratedAt *time.Time `db:"generated_at"`
	Payload     []byte     `db:"payload"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type snapshotPayload struct {
	Columns []snapshotColumn `json:"columns"`
	Rows    []snapshotRow    `json:"rows"`
}

type snapshotColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type snapshotRow struct {
	UserID       string             `json:"user_id"`
	Rank         int                `json:"rank"`
	Values       map[string]float64 `json:"values"`
	PayoutAmount float64            `json:"payout_amount"`
}

type LeaderboardRepository struct {
	db *sqlx.DB
}

func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) Get(ctx context.Context, contestID string) (leaderboard.Snapshot, bool, error) {
	var row leaderboardSnapshotModel
	err := r.db.GetContext(ctx, &row,
		`SELECT contest_id, state, generated_at, payload, updated_at
FROM leaderboard_snapshots WHERE contest_id = $1`,
		contestID,
	)
	if err != nil {
		if isNotFound(err) {
			return leaderboard.Snapshot{}, false, nil
		}
		return leaderboard.Snapshot{}, false, fmt.Errorf("get leaderboard snapshot: %w", err)
	}

	snapshot, err := snapshotFromRow(row)
	if err != nil {
		return leaderboard.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (r *LeaderboardRepository) Replace(ctx context.Context, snapshot leaderboard.Snapshot) error {
	payload := snapshotPayload{
		Columns: make([]snapshotColumn, 0, len(snapshot.Columns)),
		Rows:    make([]snapshotRow, 0, len(snapshot.Rows)),
	}
	for _, column := range snapshot.Columns {
		payload.Columns = append(payload.Columns, snapshotColumn{Key: column.Key, Label: column.Label})
	}
	for _, row := range snapshot.Rows {
		payload.Rows = append(payload.Rows, snapshotRow{
			UserID:       row.UserID,
			Rank:         row.Rank,
			Values:       row.Values,
			PayoutAmount: row.PayoutAmount,
		})
	}

	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode leaderboard payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO leaderboard_snapshots (contest_id, state, generated_at, payload, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (contest_id) DO UPDATE SET
	state = EXCLUDED.state,
	generated_at = EXCLUDED.generated_at,
	payload = EXCLUDED.payload,
	updated_at = NOW()`,
		snapshot.ContestID, string(snapshot.State), snapshot.GeneratedAt, encoded,
	)
	if err != nil {
		return fmt.Errorf("replace leaderboard snapshot: %w", err)
	}
	return nil
}

func snapshotFromRow(row leaderboardSnapshotModel) (leaderboard.Snapshot, error) {
	var payload snapshotPayload
	if len(row.Payload) > 0 {
		if err := sonic.Unmarshal(row.Payload, &payload); err != nil {
			return leaderboard.Snapshot{}, fmt.Errorf("decode leaderboard payload for contest %s: %w", row.ContestID, err)
		}
	}

	columns := make([]leaderboard.Column, 0, len(payload.Columns))
	for _, column := range payload.Columns {
		columns = append(columns, leaderboard.Column{Key: column.Key, Label: column.Label})
	}
	rows := make([]leaderboard.Standing, 0, len(payload.Rows))
	for _, item := range payload.Rows {
		rows = append(rows, leaderboard.Standing{
			UserID:       item.UserID,
			Rank:         item.Rank,
			Values:       item.Values,
			PayoutAmount: item.PayoutAmount,
		})
	}

	return leaderboard.Snapshot{
		ContestID:   row.ContestID,
		State:       leaderboard.ParseComputationState(row.State),
		GeneratedAt: row.GeneratedAt,
		Columns:     columns,
		Rows:        rows,
	}, nil
}
