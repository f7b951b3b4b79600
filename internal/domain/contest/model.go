package contest

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/playoff-survivor/internal/domain/leaderboard"
	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
)

// Status is the contest lifecycle phase.
type Status string

const (
	StatusOpen     Status = "open"
	StatusLive     Status = "live"
	StatusScoring  Status = "scoring"
	StatusScored   Status = "scored"
	StatusCanceled Status = "canceled"
)

var validStatuses = map[Status]struct{}{
	StatusOpen:     {},
	StatusLive:     {},
	StatusScoring:  {},
	StatusScored:   {},
	StatusCanceled: {},
}

var (
	ErrUnknownStatus      = errors.New("unknown contest status")
	ErrInvalidPayoutTable = errors.New("invalid payout table")
)

// PayoutTier pays every rank in [RankMin, RankMax] the same amount.
type PayoutTier struct {
	RankMin int
	RankMax int
	Amount  float64
}

// Contest carries the per-season settings the settlement core consumes:
// position limits, multiplier cap and the playoff start week anchoring the
// round clock. Settings are immutable per fetch.
type Contest struct {
	ID               string
	Name             string
	OrganizerID      string
	Status           Status
	PlayoffStartWeek int
	MultiplierCap    int
	Limits           roster.Limits
	PayoutTable      []PayoutTier
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (c Contest) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("contest id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("contest name is required")
	}
	if c.OrganizerID == "" {
		return fmt.Errorf("contest organizer id is required")
	}
	if _, ok := validStatuses[c.Status]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStatus, c.Status)
	}
	if c.MultiplierCap < 1 {
		return fmt.Errorf("multiplier cap must be at least 1")
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("contest limits: %w", err)
	}
	if err := ValidatePayoutTable(c.PayoutTable); err != nil {
		return err
	}
	return nil
}

// ValidatePayoutTable enforces non-overlapping rank ranges ordered ascending
// by RankMin, with non-negative amounts.
func ValidatePayoutTable(tiers []PayoutTier) error {
	prevMax := 0
	for i, tier := range tiers {
		if tier.RankMin < 1 || tier.RankMax < tier.RankMin {
			return fmt.Errorf("%w: tier %d has range [%d,%d]", ErrInvalidPayoutTable, i, tier.RankMin, tier.RankMax)
		}
		if tier.Amount < 0 {
			return fmt.Errorf("%w: tier %d has negative amount", ErrInvalidPayoutTable, i)
		}
		if tier.RankMin <= prevMax {
			return fmt.Errorf("%w: tier %d overlaps or is out of order", ErrInvalidPayoutTable, i)
		}
		prevMax = tier.RankMax
	}
	return nil
}

// Actions is the capability flag set derived for one caller. Flags are
// mutually constrained: read-only forces every destructive flag off.
type Actions struct {
	CanJoin          bool
	CanEditEntry     bool
	IsLive           bool
	IsClosed         bool
	IsScoring        bool
	IsScored         bool
	IsReadOnly       bool
	CanShareInvite   bool
	CanManageContest bool
	CanDelete        bool
	CanUnjoin        bool
}

// RosterConfig is the roster-shape portion of contest settings exposed to
// clients alongside capabilities.
type RosterConfig struct {
	Limits        roster.Limits
	MultiplierCap int
}

// ActionState is recomputed from contest status, round lock state and caller
// identity on every fetch; it is never stored.
type ActionState struct {
	ContestID        string
	LeaderboardState leaderboard.ComputationState
	Actions          Actions
	PayoutTable      []PayoutTier
	RosterConfig     RosterConfig
}

// ReadOnlyActionState is the fail-closed resolution result: read-only with
// every destructive capability off.
func ReadOnlyActionState(contestID string) ActionState {
	return ActionState{
		ContestID:        contestID,
		LeaderboardState: leaderboard.StateUnknown,
		Actions:          Actions{IsReadOnly: true},
	}
}
