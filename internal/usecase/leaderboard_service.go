package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/playoff-survivor/internal/domain/contest"
	"github.com/riskibarqy/playoff-survivor/internal/domain/leaderboard"
	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
	"github.com/riskibarqy/playoff-survivor/internal/domain/round"
	"github.com/riskibarqy/playoff-survivor/internal/platform/cache"
	"github.com/riskibarqy/playoff-survivor/internal/platform/logging"
)

const (
	leaderboardColumnTotal  = "total"
	leaderboardCachePrefix  = "leaderboard:"
	defaultAggregateWorkers = 4
)

// LeaderboardService regenerates contest standings wholesale. A generation
// moves pending -> computed, or pending -> error on any aggregation fault;
// a later cycle may recompute from pending again.
type LeaderboardService struct {
	contestRepo contest.Repository
	roundRepo   round.Repository
	rosterRepo  roster.Repository
	lbRepo      leaderboard.Repository
	snapshots   *cache.Store
	logger      *logging.Logger
	now         func() time.Time
	workers     int
}

func NewLeaderboardService(
	contestRepo contest.Repository,
	roundRepo round.Repository,
	rosterRepo roster.Repository,
	lbRepo leaderboard.Repository,
	snapshots *cache.Store,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		contestRepo: contestRepo,
		roundRepo:   roundRepo,
		rosterRepo:  rosterRepo,
		lbRepo:      lbRepo,
		snapshots:   snapshots,
		logger:      logger,
		now:         time.Now,
		workers:     defaultAggregateWorkers,
	}
}

// Recompute runs one generation cycle for a contest.
func (s *LeaderboardService) Recompute(ctx context.Context, contestID string) (leaderboard.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Recompute")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return leaderboard.Snapshot{}, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}

	settings, exists, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("get contest: %w", err)
	}
	if !exists {
		return leaderboard.Snapshot{}, fmt.Errorf("%w: contest=%s", ErrNotFound, contestID)
	}

	if err := s.lbRepo.Replace(ctx, leaderboard.PendingSnapshot(contestID)); err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("mark leaderboard pending: %w", err)
	}
	if s.snapshots != nil {
		s.snapshots.Delete(ctx, leaderboardCachePrefix+contestID)
	}

	snapshot, err := s.aggregate(ctx, settings)
	if err != nil {
		now := s.now().UTC()
		failed := leaderboard.Snapshot{
			ContestID:   contestID,
			State:       leaderboard.StateError,
			GeneratedAt: &now,
		}
		if replaceErr := s.lbRepo.Replace(ctx, failed); replaceErr != nil {
			s.logger.ErrorContext(ctx, "store error-state leaderboard failed",
				"contest_id", contestID, "error", replaceErr)
		}
		return leaderboard.Snapshot{}, err
	}

	if err := s.lbRepo.Replace(ctx, snapshot); err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("replace leaderboard snapshot: %w", err)
	}
	if s.snapshots != nil {
		s.snapshots.Set(ctx, leaderboardCachePrefix+contestID, snapshot)
	}

	s.logger.InfoContext(ctx, "leaderboard recomputed",
		"contest_id", contestID,
		"rows", len(snapshot.Rows),
	)
	return snapshot, nil
}

// Snapshot returns the latest stored generation, or a pending placeholder if
// none has been computed yet.
func (s *LeaderboardService) Snapshot(ctx context.Context, contestID string) (leaderboard.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Snapshot")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return leaderboard.Snapshot{}, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}

	if s.snapshots != nil {
		if cached, ok := s.snapshots.Get(ctx, leaderboardCachePrefix+contestID); ok {
			if snapshot, ok := cached.(leaderboard.Snapshot); ok {
				return snapshot, nil
			}
		}
	}

	snapshot, exists, err := s.lbRepo.Get(ctx, contestID)
	if err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("get leaderboard snapshot: %w", err)
	}
	if !exists {
		return leaderboard.PendingSnapshot(contestID), nil
	}
	return snapshot, nil
}

func (s *LeaderboardService) aggregate(ctx context.Context, settings contest.Contest) (leaderboard.Snapshot, error) {
	schedule, exists, err := s.roundRepo.GetSchedule(ctx, settings.ID)
	if err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("get schedule: %w", err)
	}
	if !exists {
		return leaderboard.Snapshot{}, fmt.Errorf("%w: schedule for contest=%s", ErrNotFound, settings.ID)
	}
	if err := schedule.Validate(); err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("schedule for contest=%s: %w", settings.ID, err)
	}

	// One read per round is the consistency boundary: a user's slots for a
	// round are never observed half-updated within a generation.
	slotsByRound := make(map[int][]roster.Slot, len(schedule.Rounds))
	for _, r := range schedule.Rounds {
		slots, err := s.rosterRepo.ListByContestAndRound(ctx, settings.ID, r.Ordinal)
		if err != nil {
			return leaderboard.Snapshot{}, fmt.Errorf("list slots for round %d: %w", r.Ordinal, err)
		}
		slotsByRound[r.Ordinal] = slots
	}

	workerPool, err := ants.NewPool(s.workers)
	if err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("create aggregation pool: %w", err)
	}
	defer workerPool.Release()

	var (
		mu             sync.Mutex
		wg             sync.WaitGroup
		pointsByUser   = make(map[string]map[int]float64)
		participantSet = make(map[string]struct{})
		submitErr      error
	)
	for _, r := range schedule.Rounds {
		r := r
		wg.Add(1)
		err := workerPool.Submit(func() {
			defer wg.Done()
			roundPoints := make(map[string]float64)
			users := make([]string, 0)
			for _, slot := range slotsByRound[r.Ordinal] {
				if _, seen := roundPoints[slot.UserID]; !seen {
					users = append(users, slot.UserID)
				}
				if slot.Settled {
					roundPoints[slot.UserID] += slot.FinalPoints
				} else {
					roundPoints[slot.UserID] += 0
				}
			}

			mu.Lock()
			for _, userID := range users {
				participantSet[userID] = struct{}{}
				if pointsByUser[userID] == nil {
					pointsByUser[userID] = make(map[int]float64)
				}
				pointsByUser[userID][r.Ordinal] = roundPoints[userID]
			}
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit round %d aggregation: %w", r.Ordinal, err)
			break
		}
	}
	wg.Wait()
	if submitErr != nil {
		return leaderboard.Snapshot{}, submitErr
	}

	rows := make([]leaderboard.Standing, 0, len(participantSet))
	for userID := range participantSet {
		values := make(map[string]float64, len(schedule.Rounds)+1)
		total := 0.0
		for _, r := range schedule.Rounds {
			points := pointsByUser[userID][r.Ordinal]
			values[roundColumnKey(r.Ordinal)] = points
			total += points
		}
		values[leaderboardColumnTotal] = total
		rows = append(rows, leaderboard.Standing{UserID: userID, Values: values})
	}

	// Deterministic order: points descending, then user id. Re-running on
	// unchanged settled data always produces identical ranks.
	sort.Slice(rows, func(i, j int) bool {
		ti, tj := rows[i].Values[leaderboardColumnTotal], rows[j].Values[leaderboardColumnTotal]
		if ti != tj {
			return ti > tj
		}
		return rows[i].UserID < rows[j].UserID
	})

	// Standard competition ranking: ties share a rank, the next distinct
	// score takes its 1-based position.
	for i := range rows {
		if i > 0 && rows[i].Values[leaderboardColumnTotal] == rows[i-1].Values[leaderboardColumnTotal] {
			rows[i].Rank = rows[i-1].Rank
		} else {
			rows[i].Rank = i + 1
		}
		rows[i].PayoutAmount = payoutForRank(settings.PayoutTable, rows[i].Rank)
	}

	columns := make([]leaderboard.Column, 0, len(schedule.Rounds)+1)
	for _, r := range schedule.Rounds {
		columns = append(columns, leaderboard.Column{Key: roundColumnKey(r.Ordinal), Label: r.Label})
	}
	columns = append(columns, leaderboard.Column{Key: leaderboardColumnTotal, Label: "Total"})

	now := s.now().UTC()
	return leaderboard.Snapshot{
		ContestID:   settings.ID,
		State:       leaderboard.StateComputed,
		GeneratedAt: &now,
		Columns:     columns,
		Rows:        rows,
	}, nil
}

func roundColumnKey(ordinal int) string {
	return fmt.Sprintf("round_%d", ordinal)
}

func payoutForRank(tiers []contest.PayoutTier, rank int) float64 {
	for _, tier := range tiers {
		if rank >= tier.RankMin && rank <= tier.RankMax {
			return tier.Amount
		}
	}
	return 0
}
