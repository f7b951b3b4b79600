package roster

import (
	"fmt"
	"time"
)

// Position is an NFL roster position slot category.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDEF Position = "DEF"
)

// AllPositions enumerates the valid slot positions.
var AllPositions = map[Position]struct{}{
	PositionQB:  {},
	PositionRB:  {},
	PositionWR:  {},
	PositionTE:  {},
	PositionK:   {},
	PositionDEF: {},
}

// Limits caps the number of filled slots per position per round.
type Limits map[Position]int

func (l Limits) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("position limits are required")
	}
	for pos, limit := range l {
		if _, ok := AllPositions[pos]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPosition, pos)
		}
		if limit < 0 {
			return fmt.Errorf("position limit must not be negative: %s=%d", pos, limit)
		}
	}
	return nil
}

// Slot is one position assignment in a user's roster for a round. A slot
// exists only while a player occupies it: created on add, deleted on remove.
type Slot struct {
	PickID            string
	ContestID         string
	UserID            string
	RoundOrdinal      int
	Position          Position
	PlayerID          string
	ConsecutiveRounds int
	Multiplier        float64
	BasePoints        float64
	FinalPoints       float64
	IsLive            bool
	Locked            bool
	Settled           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (s Slot) Validate() error {
	if s.PickID == "" {
		return fmt.Errorf("pick id is required")
	}
	if s.ContestID == "" {
		return fmt.Errorf("contest id is required")
	}
	if s.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if s.RoundOrdinal < 1 {
		return fmt.Errorf("round ordinal must be positive")
	}
	if _, ok := AllPositions[s.Position]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPosition, s.Position)
	}
	if s.PlayerID == "" {
		return fmt.Errorf("player id is required")
	}
	if s.ConsecutiveRounds < 1 {
		return fmt.Errorf("consecutive rounds must be at least 1")
	}
	if s.Multiplier < 1 {
		return fmt.Errorf("multiplier must be at least 1")
	}
	return nil
}
