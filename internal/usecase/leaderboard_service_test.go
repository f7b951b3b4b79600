package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/playoff-survivor/internal/domain/leaderboard"
	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
	"github.com/riskibarqy/playoff-survivor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playoff-survivor/internal/platform/cache"
	"github.com/riskibarqy/playoff-survivor/internal/platform/logging"
)

func newLeaderboardFixture(t *testing.T) (*fixture, *LeaderboardService) {
	t.Helper()
	f := newFixture(t)
	svc := NewLeaderboardService(
		f.contestRepo,
		f.roundRepo,
		f.rosterRepo,
		f.lbRepo,
		cache.NewStore(time.Minute),
		logging.NewNop(),
	)
	return f, svc
}

func seedScoredSlot(t *testing.T, f *fixture, userID string, ordinal int, playerID string, points float64, settled bool) {
	t.Helper()
	now := time.Date(2026, time.January, 11, 21, 0, 0, 0, time.UTC)
	err := f.rosterRepo.Upsert(context.Background(), roster.Slot{
		PickID:            fmt.Sprintf("pick-%s-%d-%s", userID, ordinal, playerID),
		ContestID:         memory.ContestIDPlayoffs2026,
		UserID:            userID,
		RoundOrdinal:      ordinal,
		Position:          roster.PositionQB,
		PlayerID:          playerID,
		ConsecutiveRounds: 1,
		Multiplier:        1.0,
		BasePoints:        points,
		FinalPoints:       points,
		Settled:           settled,
		Locked:            settled,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		t.Fatalf("seed scored slot: %v", err)
	}
}

func TestLeaderboardService_Recompute_CompetitionRanking(t *testing.T) {
	f, svc := newLeaderboardFixture(t)

	seedScoredSlot(t, f, "user-a", 1, "qb-1", 50, true)
	seedScoredSlot(t, f, "user-b", 1, "qb-2", 50, true)
	seedScoredSlot(t, f, "user-c", 1, "qb-3", 40, true)

	snapshot, err := svc.Recompute(context.Background(), memory.ContestIDPlayoffs2026)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if snapshot.State != leaderboard.StateComputed {
		t.Fatalf("expected computed state, got %s", snapshot.State)
	}
	if snapshot.GeneratedAt == nil {
		t.Fatal("computed snapshot must carry a generation time")
	}
	if len(snapshot.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(snapshot.Rows))
	}

	// Ties share a rank; the next distinct total takes its 1-based position.
	want := []struct {
		userID string
		rank   int
		total  float64
		payout float64
	}{
		{"user-a", 1, 50, 500},
		{"user-b", 1, 50, 500},
		{"user-c", 3, 40, 150},
	}
	for i, w := range want {
		row := snapshot.Rows[i]
		if row.UserID != w.userID || row.Rank != w.rank {
			t.Fatalf("row %d: got %s rank %d, want %s rank %d", i, row.UserID, row.Rank, w.userID, w.rank)
		}
		if row.Values[leaderboardColumnTotal] != w.total {
			t.Fatalf("row %d: got total %v, want %v", i, row.Values[leaderboardColumnTotal], w.total)
		}
		if row.PayoutAmount != w.payout {
			t.Fatalf("row %d: got payout %v, want %v", i, row.PayoutAmount, w.payout)
		}
	}
}

func TestLeaderboardService_Recompute_UnsettledSlotsContributeZero(t *testing.T) {
	f, svc := newLeaderboardFixture(t)

	seedScoredSlot(t, f, "user-a", 1, "qb-1", 30, true)
	// user-b has picks but nothing settled: participates at zero points.
	seedScoredSlot(t, f, "user-b", 1, "qb-2", 99, false)

	snapshot, err := svc.Recompute(context.Background(), memory.ContestIDPlayoffs2026)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if len(snapshot.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(snapshot.Rows))
	}
	if snapshot.Rows[1].UserID != "user-b" || snapshot.Rows[1].Values[leaderboardColumnTotal] != 0 {
		t.Fatalf("unsettled points must not count: %+v", snapshot.Rows[1])
	}
}

func TestLeaderboardService_Recompute_Deterministic(t *testing.T) {
	f, svc := newLeaderboardFixture(t)

	seedScoredSlot(t, f, "user-a", 1, "qb-1", 21.5, true)
	seedScoredSlot(t, f, "user-b", 1, "qb-2", 18, true)

	first, err := svc.Recompute(context.Background(), memory.ContestIDPlayoffs2026)
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	second, err := svc.Recompute(context.Background(), memory.ContestIDPlayoffs2026)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Fatalf("recompute on unchanged data must be identical:\nfirst:  %+v\nsecond: %+v", first.Rows, second.Rows)
	}
}

func TestLeaderboardService_Recompute_FaultStoresErrorState(t *testing.T) {
	// Contest exists but its round schedule does not: aggregation must fail
	// and leave an error-state snapshot behind.
	contestRepo := memory.NewContestRepository(memory.SeedContests()...)
	roundRepo := memory.NewRoundRepository()
	rosterRepo := memory.NewRosterRepository()
	lbRepo := memory.NewLeaderboardRepository()
	svc := NewLeaderboardService(contestRepo, roundRepo, rosterRepo, lbRepo, nil, logging.NewNop())

	_, err := svc.Recompute(context.Background(), memory.ContestIDPlayoffs2026)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing schedule, got %v", err)
	}

	stored, exists, getErr := lbRepo.Get(context.Background(), memory.ContestIDPlayoffs2026)
	if getErr != nil || !exists {
		t.Fatalf("error snapshot must be stored: exists=%v err=%v", exists, getErr)
	}
	if stored.State != leaderboard.StateError {
		t.Fatalf("expected error state, got %s", stored.State)
	}
}

func TestLeaderboardService_Snapshot_PendingPlaceholder(t *testing.T) {
	_, svc := newLeaderboardFixture(t)

	snapshot, err := svc.Snapshot(context.Background(), memory.ContestIDPlayoffs2026)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.State != leaderboard.StatePending {
		t.Fatalf("expected pending placeholder before first compute, got %s", snapshot.State)
	}
	if snapshot.ContestID != memory.ContestIDPlayoffs2026 {
		t.Fatalf("placeholder must carry the contest id, got %q", snapshot.ContestID)
	}
}

func TestLeaderboardService_Snapshot_AfterRecompute(t *testing.T) {
	f, svc := newLeaderboardFixture(t)

	seedScoredSlot(t, f, "user-a", 1, "qb-1", 10, true)
	if _, err := svc.Recompute(context.Background(), memory.ContestIDPlayoffs2026); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	snapshot, err := svc.Snapshot(context.Background(), memory.ContestIDPlayoffs2026)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.State != leaderboard.StateComputed || len(snapshot.Rows) != 1 {
		t.Fatalf("expected computed snapshot with 1 row, got %+v", snapshot)
	}

	wantColumns := []string{"round_1", "round_2", "round_3", "round_4", leaderboardColumnTotal}
	if len(snapshot.Columns) != len(wantColumns) {
		t.Fatalf("expected %d columns, got %d", len(wantColumns), len(snapshot.Columns))
	}
	for i, key := range wantColumns {
		if snapshot.Columns[i].Key != key {
			t.Fatalf("column %d: got %q, want %q", i, snapshot.Columns[i].Key, key)
		}
	}
}
