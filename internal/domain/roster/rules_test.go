package roster

import (
	"errors"
	"testing"
)

func testLimits() Limits {
	return Limits{
		PositionQB:  1,
		PositionRB:  2,
		PositionWR:  2,
		PositionTE:  1,
		PositionK:   1,
		PositionDEF: 1,
	}
}

func TestValidateAdd_PositionLimit(t *testing.T) {
	existing := []Slot{
		{PickID: "p1", Position: PositionQB, PlayerID: "qb-1"},
	}

	err := ValidateAdd(existing, PositionQB, "qb-2", testLimits())
	if !errors.Is(err, ErrPositionLimitExceeded) {
		t.Fatalf("expected ErrPositionLimitExceeded, got %v", err)
	}

	if err := ValidateAdd(existing, PositionRB, "rb-1", testLimits()); err != nil {
		t.Fatalf("add within limit failed: %v", err)
	}
}

func TestValidateAdd_DuplicateAcrossPositions(t *testing.T) {
	existing := []Slot{
		{PickID: "p1", Position: PositionRB, PlayerID: "flex-1"},
	}

	err := ValidateAdd(existing, PositionWR, "flex-1", testLimits())
	if !errors.Is(err, ErrDuplicatePlayer) {
		t.Fatalf("expected ErrDuplicatePlayer, got %v", err)
	}
}

func TestValidateAdd_UnknownPosition(t *testing.T) {
	err := ValidateAdd(nil, Position("PUNTER"), "p-1", testLimits())
	if !errors.Is(err, ErrUnknownPosition) {
		t.Fatalf("expected ErrUnknownPosition, got %v", err)
	}
}

func TestValidateRemove(t *testing.T) {
	if err := ValidateRemove(Slot{PickID: "p1"}); err != nil {
		t.Fatalf("zero-point unlocked slot should be removable: %v", err)
	}

	err := ValidateRemove(Slot{PickID: "p1", FinalPoints: 4.5})
	if !errors.Is(err, ErrSlotScored) {
		t.Fatalf("expected ErrSlotScored, got %v", err)
	}

	err = ValidateRemove(Slot{PickID: "p1", FinalPoints: -2})
	if !errors.Is(err, ErrSlotScored) {
		t.Fatalf("negative points still lock removal, got %v", err)
	}

	err = ValidateRemove(Slot{PickID: "p1", Locked: true})
	if !errors.Is(err, ErrSlotLocked) {
		t.Fatalf("expected ErrSlotLocked, got %v", err)
	}
}
