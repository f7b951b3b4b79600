package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
)

// MultiplierEngine computes the continuity multiplier for an add. Continuity
// is checked against the previous round's settled roster only, so removing
// and re-adding a player within a still-open round never changes the answer.
type MultiplierEngine struct {
	rosterRepo roster.Repository
}

func NewMultiplierEngine(rosterRepo roster.Repository) *MultiplierEngine {
	return &MultiplierEngine{rosterRepo: rosterRepo}
}

// Compute returns (multiplier, consecutiveRounds) for playing playerID at
// position in the given round. multiplier = min(consecutiveRounds, cap).
func (e *MultiplierEngine) Compute(
	ctx context.Context,
	contestID, userID string,
	position roster.Position,
	playerID string,
	roundOrdinal, multiplierCap int,
) (float64, int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MultiplierEngine.Compute")
	defer span.End()

	if multiplierCap < 1 {
		multiplierCap = 1
	}
	if roundOrdinal <= 1 {
		// Round 1 has no prior round: every pick starts a streak.
		return 1.0, 1, nil
	}

	previous, err := e.rosterRepo.ListSettledByUserAndRound(ctx, contestID, userID, roundOrdinal-1)
	if err != nil {
		return 0, 0, fmt.Errorf("load settled roster for round %d: %w", roundOrdinal-1, err)
	}

	consecutive := 1
	for _, slot := range previous {
		if slot.PlayerID == playerID && slot.Position == position {
			consecutive = slot.ConsecutiveRounds + 1
			break
		}
	}

	multiplier := consecutive
	if multiplier > multiplierCap {
		multiplier = multiplierCap
	}
	return float64(multiplier), consecutive, nil
}
