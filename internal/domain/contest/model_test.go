package contest

import (
	"errors"
	"testing"
)

func TestValidatePayoutTable(t *testing.T) {
	valid := []PayoutTier{
		{RankMin: 1, RankMax: 1, Amount: 500},
		{RankMin: 2, RankMax: 3, Amount: 150},
		{RankMin: 4, RankMax: 10, Amount: 25},
	}
	if err := ValidatePayoutTable(valid); err != nil {
		t.Fatalf("valid table rejected: %v", err)
	}

	overlapping := []PayoutTier{
		{RankMin: 1, RankMax: 3, Amount: 500},
		{RankMin: 3, RankMax: 5, Amount: 100},
	}
	if err := ValidatePayoutTable(overlapping); !errors.Is(err, ErrInvalidPayoutTable) {
		t.Fatalf("expected ErrInvalidPayoutTable for overlap, got %v", err)
	}

	outOfOrder := []PayoutTier{
		{RankMin: 4, RankMax: 10, Amount: 25},
		{RankMin: 1, RankMax: 1, Amount: 500},
	}
	if err := ValidatePayoutTable(outOfOrder); !errors.Is(err, ErrInvalidPayoutTable) {
		t.Fatalf("expected ErrInvalidPayoutTable for ordering, got %v", err)
	}

	negative := []PayoutTier{{RankMin: 1, RankMax: 1, Amount: -5}}
	if err := ValidatePayoutTable(negative); !errors.Is(err, ErrInvalidPayoutTable) {
		t.Fatalf("expected ErrInvalidPayoutTable for negative amount, got %v", err)
	}
}

func TestReadOnlyActionState(t *testing.T) {
	state := ReadOnlyActionState("contest-1")
	if !state.Actions.IsReadOnly {
		t.Fatal("fail-closed state must be read-only")
	}
	if state.Actions.CanEditEntry || state.Actions.CanDelete || state.Actions.CanManageContest {
		t.Fatalf("fail-closed state leaked destructive flags: %+v", state.Actions)
	}
}
