package round

import (
	"errors"
	"testing"
)

func TestNewSchedule_RequiresStartWeek(t *testing.T) {
	_, err := NewSchedule("contest-1", 0)
	if !errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected ErrUninitialized, got %v", err)
	}
}

func TestSchedule_EffectiveNFLWeek(t *testing.T) {
	s, err := NewSchedule("contest-1", 19)
	if err != nil {
		t.Fatalf("new schedule: %v", err)
	}

	cases := []struct {
		ordinal int
		want    int
	}{
		{1, 19},
		{2, 20},
		{3, 21},
		{4, 22},
		{5, 22}, // over-incremented counter resolves to the final week
		{6, 22},
	}
	for _, tc := range cases {
		got, err := s.EffectiveNFLWeek(tc.ordinal)
		if err != nil {
			t.Fatalf("effective week for ordinal %d: %v", tc.ordinal, err)
		}
		if got != tc.want {
			t.Fatalf("ordinal %d: got week %d want %d", tc.ordinal, got, tc.want)
		}
	}
}

func TestSchedule_EffectiveNFLWeek_Uninitialized(t *testing.T) {
	var s Schedule
	if _, err := s.EffectiveNFLWeek(1); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected ErrUninitialized, got %v", err)
	}
}

func TestSchedule_AdvanceAndOpen(t *testing.T) {
	s, err := NewSchedule("contest-1", 19)
	if err != nil {
		t.Fatalf("new schedule: %v", err)
	}

	current, err := s.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Ordinal != 1 || current.IsOpen {
		t.Fatalf("expected round 1 current and closed, got %+v", current)
	}

	if err := s.SetOpen(true); err != nil {
		t.Fatalf("set open: %v", err)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	current, err = s.Current()
	if err != nil {
		t.Fatalf("current after advance: %v", err)
	}
	if current.Ordinal != 2 {
		t.Fatalf("expected round 2 current, got %d", current.Ordinal)
	}
	if current.IsOpen {
		t.Fatal("advanced round must stay closed until explicit unlock")
	}

	prev, err := s.ByOrdinal(1)
	if err != nil {
		t.Fatalf("by ordinal: %v", err)
	}
	if prev.IsCurrent || prev.IsOpen {
		t.Fatalf("round 1 must be frozen after advance, got %+v", prev)
	}
}

func TestSchedule_AdvancePastLastRound(t *testing.T) {
	s, err := NewSchedule("contest-1", 19)
	if err != nil {
		t.Fatalf("new schedule: %v", err)
	}
	for i := 0; i < RoundCount-1; i++ {
		if err := s.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if err := s.Advance(); err == nil {
		t.Fatal("expected error advancing past the last round")
	}
}

func TestResolveLockState(t *testing.T) {
	current := Round{Ordinal: 2, IsCurrent: true, IsOpen: true}

	cases := []struct {
		name     string
		selected Round
		open     bool
		want     LockState
	}{
		{"past", Round{Ordinal: 1}, true, LockStatePastLocked},
		{"future", Round{Ordinal: 3}, true, LockStateFutureLocked},
		{"current open", current, true, LockStateCurrentOpen},
		{"current locked", Round{Ordinal: 2}, false, LockStateCurrentLocked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cur := current
			cur.IsOpen = tc.open
			got := ResolveLockState(tc.selected, cur)
			if got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
			if got.AllowsRosterEdits() != (tc.want == LockStateCurrentOpen) {
				t.Fatalf("AllowsRosterEdits mismatch for %s", got)
			}
		})
	}
}
