package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/playoff-survivor/internal/domain/contest"
	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
)

type contestModel struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	OrganizerID      string    `db:"organizer_id"`
	Status           string    `db:"status"`
	PlayoffStartWeek int       `db:"playoff_start_week"`
	MultiplierCap    int       `db:"multiplier_cap"`
	PositionLimits   []byte    `db:"position_limits"`
	PayoutTable      []byte    `db:"payout_table"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type payoutTierModel struct {
	RankMin int     `json:"rank_min"`
	RankMax int     `json:"rank_max"`
	Amount  float64 `json:"amount"`
}

type ContestRepository struct {
	db *sqlx.DB
}

func NewContestRepository(db *sqlx.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) GetByID(ctx context.Context, contestID string) (contest.Contest, bool, error) {
	var row contestModel
	err := r.db.GetContext(ctx, &row,
		`SELECT id, name, organizer_id, status, playoff_start_week, multiplier_cap,
position_limits, payout_table, created_at, updated_at
FROM contests WHERE id = $1`,
		contestID,
	)
	if err != nil {
		if isNotFound(err) {
			return contest.Contest{}, false, nil
		}
		return contest.Contest{}, false, fmt.Errorf("get contest: %w", err)
	}

	item, err := contestFromRow(row)
	if err != nil {
		return contest.Contest{}, false, err
	}
	return item, true, nil
}

func (r *ContestRepository) HasEntry(ctx context.Context, contestID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM contest_entries WHERE contest_id = $1 AND user_id = $2)`,
		contestID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("check contest entry: %w", err)
	}
	return exists, nil
}

func contestFromRow(row contestModel) (contest.Contest, error) {
	limits := make(map[string]int)
	if len(row.PositionLimits) > 0 {
		if err := sonic.Unmarshal(row.PositionLimits, &limits); err != nil {
			return contest.Contest{}, fmt.Errorf("decode contest %s position limits: %w", row.ID, err)
		}
	}
	positionLimits := make(roster.Limits, len(limits))
	for pos, limit := range limits {
		positionLimits[roster.Position(pos)] = limit
	}

	var tiers []payoutTierModel
	if len(row.PayoutTable) > 0 {
		if err := sonic.Unmarshal(row.PayoutTable, &tiers); err != nil {
			return contest.Contest{}, fmt.Errorf("decode contest %s payout table: %w", row.ID, err)
		}
	}
	payoutTable := make([]contest.PayoutTier, 0, len(tiers))
	for _, tier := range tiers {
		payoutTable = append(payoutTable, contest.PayoutTier{
			RankMin: tier.RankMin,
			RankMax: tier.RankMax,
			Amount:  tier.Amount,
		})
	}

	return contest.Contest{
		ID:               row.ID,
		Name:             row.Name,
		OrganizerID:      row.OrganizerID,
		Status:           contest.Status(row.Status),
		PlayoffStartWeek: row.PlayoffStartWeek,
		MultiplierCap:    row.MultiplierCap,
		Limits:           positionLimits,
		PayoutTable:      payoutTable,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}
