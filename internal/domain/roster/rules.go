package roster

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPosition       = errors.New("unknown roster position")
	ErrPositionLimitExceeded = errors.New("position slot limit exceeded")
	ErrDuplicatePlayer       = errors.New("player already rostered this round")
	ErrSlotScored            = errors.New("slot has points and cannot be removed")
	ErrSlotLocked            = errors.New("slot is locked for its player's game")
)

// ValidateAdd checks the add-player preconditions against the user's existing
// slots for the round. Violations are rejected, never truncated or queued.
func ValidateAdd(existing []Slot, position Position, playerID string, limits Limits) error {
	if _, ok := AllPositions[position]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPosition, position)
	}
	if playerID == "" {
		return fmt.Errorf("player id is required")
	}

	filled := 0
	for _, slot := range existing {
		if slot.PlayerID == playerID {
			// Duplicate players are rejected across all positions, not just
			// the one being filled.
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, playerID)
		}
		if slot.Position == position {
			filled++
		}
	}

	limit := limits[position]
	if filled >= limit {
		return fmt.Errorf("%w: %s max=%d", ErrPositionLimitExceeded, position, limit)
	}

	return nil
}

// ValidateRemove checks the remove preconditions for a slot the caller owns.
// Any settled or live points lock the slot permanently, even during an
// otherwise-open round.
func ValidateRemove(slot Slot) error {
	if slot.Locked {
		return fmt.Errorf("%w: pick=%s", ErrSlotLocked, slot.PickID)
	}
	if slot.FinalPoints != 0 {
		return fmt.Errorf("%w: pick=%s points=%v", ErrSlotScored, slot.PickID, slot.FinalPoints)
	}
	return nil
}
