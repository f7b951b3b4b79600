package postgres

import (
	"time"

	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
)

type rosterSlotModel struct {
	PickID            string    `db:"pick_id"`
	ContestID         string    `db:"contest_id"`
	UserID            string    `db:"user_id"`
	RoundOrdinal      int       `db:"round_ordinal"`
	Position          string    `db:"position"`
	PlayerID          string    `db:"player_id"`
	ConsecutiveRounds int       `db:"consecutive_rounds"`
	Multiplier        float64   `db:"multiplier"`
	BasePoints        float64   `db:"base_points"`
	FinalPoints       float64   `db:"final_points"`
	IsLive            bool      `db:"is_live"`
	Locked            bool      `db:"locked"`
	Settled           bool      `db:"settled"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func rosterSlotFromRow(row rosterSlotModel) roster.Slot {
	return roster.Slot{
		PickID:            row.PickID,
		ContestID:         row.ContestID,
		UserID:            row.UserID,
		RoundOrdinal:      row.RoundOrdinal,
		Position:          roster.Position(row.Position),
		PlayerID:          row.PlayerID,
		ConsecutiveRounds: row.ConsecutiveRounds,
		Multiplier:        row.Multiplier,
		BasePoints:        row.BasePoints,
		FinalPoints:       row.FinalPoints,
		IsLive:            row.IsLive,
		Locked:            row.Locked,
		Settled:           row.Settled,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func rosterSlotToRow(slot roster.Slot) rosterSlotModel {
	return rosterSlotModel{
		PickID:            slot.PickID,
		ContestID:         slot.ContestID,
		UserID:            slot.UserID,
		RoundOrdinal:      slot.RoundOrdinal,
		Position:          string(slot.Position),
		PlayerID:          slot.PlayerID,
		ConsecutiveRounds: slot.ConsecutiveRounds,
		Multiplier:        slot.Multiplier,
		BasePoints:        slot.BasePoints,
		FinalPoints:       slot.FinalPoints,
		IsLive:            slot.IsLive,
		Locked:            slot.Locked,
		Settled:           slot.Settled,
		CreatedAt:         slot.CreatedAt,
		UpdatedAt:         slot.UpdatedAt,
	}
}
