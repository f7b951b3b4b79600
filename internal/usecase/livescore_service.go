package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
	"github.com/riskibarqy/playoff-survivor/internal/domain/scoring"
	"github.com/riskibarqy/playoff-survivor/internal/platform/logging"
	"github.com/riskibarqy/playoff-survivor/internal/platform/resilience"
)

const (
	// DefaultPollInterval matches the cadence roster views refresh at.
	DefaultPollInterval = 60 * time.Second

	defaultRefreshGap      = 15 * time.Second
	defaultFailureLimit    = 3
	defaultApplyGoroutines = 8
)

// LiveScoreService merges the polled stat feed with stored slots. A live feed
// entry supersedes a stored value while the game runs; a final entry writes
// the terminal value and locks the slot for the round.
type LiveScoreService struct {
	rosterRepo roster.Repository
	rounds     *RoundService
	feed       scoring.Feed
	logger     *logging.Logger
	now        func() time.Time
	newTicker  func(d time.Duration) (<-chan time.Time, func())

	flight          resilience.SingleFlight
	mu              sync.Mutex
	lastRefreshAt   map[string]time.Time
	refreshGap      time.Duration
	failureLimit    int
	applyGoroutines int
}

func NewLiveScoreService(
	rosterRepo roster.Repository,
	rounds *RoundService,
	feed scoring.Feed,
	logger *logging.Logger,
) *LiveScoreService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LiveScoreService{
		rosterRepo: rosterRepo,
		rounds:     rounds,
		feed:       feed,
		logger:     logger,
		now:        time.Now,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
		lastRefreshAt:   make(map[string]time.Time),
		refreshGap:      defaultRefreshGap,
		failureLimit:    defaultFailureLimit,
		applyGoroutines: defaultApplyGoroutines,
	}
}

// Refresh performs one merge pass for a contest round. Concurrent callers for
// the same (contest, round) share a single pass.
func (s *LiveScoreService) Refresh(ctx context.Context, contestID string, roundOrdinal int) ([]scoring.ScoreUpdate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveScoreService.Refresh")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return nil, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}
	if roundOrdinal < 1 {
		return nil, fmt.Errorf("%w: round ordinal must be positive", ErrInvalidInput)
	}

	key := "livescore:" + contestID + ":" + strconv.Itoa(roundOrdinal)
	val, err, _ := s.flight.Do(key, func() (any, error) {
		return s.refreshOnce(ctx, contestID, roundOrdinal)
	})
	if err != nil {
		return nil, err
	}

	updates, _ := val.([]scoring.ScoreUpdate)
	return updates, nil
}

func (s *LiveScoreService) refreshOnce(ctx context.Context, contestID string, roundOrdinal int) ([]scoring.ScoreUpdate, error) {
	week, err := s.rounds.EffectiveWeek(ctx, contestID, roundOrdinal)
	if err != nil {
		return nil, err
	}

	stats, err := s.feed.FetchLiveStats(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("fetch live stats for week %d: %w", week, err)
	}
	statByPlayer := make(map[string]scoring.PlayerGameStat, len(stats))
	for _, stat := range stats {
		statByPlayer[stat.PlayerID] = stat
	}

	// Slot state is re-read on every pass: a mutation that landed while this
	// refresh was scheduled must not be overwritten from a stale cache.
	slots, err := s.rosterRepo.ListByContestAndRound(ctx, contestID, roundOrdinal)
	if err != nil {
		return nil, fmt.Errorf("list slots for refresh: %w", err)
	}

	now := s.now().UTC()
	updates := make([]scoring.ScoreUpdate, 0, len(slots))
	changed := make([]roster.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Settled {
			// Settled rounds are frozen; the feed no longer has authority.
			continue
		}
		stat, ok := statByPlayer[slot.PlayerID]
		if !ok {
			continue
		}

		// The multiplier applies uniformly, including to negative base
		// points; nothing is clamped.
		slot.BasePoints = stat.Points
		slot.FinalPoints = stat.Points * slot.Multiplier
		slot.IsLive = stat.IsLive && !stat.GameFinal
		if stat.IsLive || stat.GameFinal {
			// A started game locks the slot against removal permanently.
			slot.Locked = true
		}
		slot.UpdatedAt = now

		changed = append(changed, slot)
		updates = append(updates, scoring.ScoreUpdate{
			PickID:      slot.PickID,
			BasePoints:  slot.BasePoints,
			FinalPoints: slot.FinalPoints,
			IsLive:      slot.IsLive,
			GameLocked:  slot.Locked,
		})
	}

	if len(changed) > 0 {
		p := pool.New().WithContext(ctx).WithMaxGoroutines(s.applyGoroutines).WithCancelOnError()
		for _, slot := range changed {
			slot := slot
			p.Go(func(ctx context.Context) error {
				return s.rosterRepo.Upsert(ctx, slot)
			})
		}
		if err := p.Wait(); err != nil {
			return nil, fmt.Errorf("apply score updates: %w", err)
		}
	}

	sort.Slice(updates, func(i, j int) bool { return updates[i].PickID < updates[j].PickID })
	return updates, nil
}

// EnsureFresh refreshes unless a pass ran within the refresh gap. Used by
// read paths that want reasonably fresh scores without stampeding the feed.
func (s *LiveScoreService) EnsureFresh(ctx context.Context, contestID string, roundOrdinal int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveScoreService.EnsureFresh")
	defer span.End()

	key := strings.TrimSpace(contestID) + ":" + strconv.Itoa(roundOrdinal)
	if s.shouldSkipRefresh(key) {
		return nil
	}

	if _, err := s.Refresh(ctx, contestID, roundOrdinal); err != nil {
		return err
	}
	s.markRefresh(key)
	return nil
}

// Poll refreshes on a fixed interval until ctx is cancelled. Cancellation is
// the normal way a roster view stops watching and returns nil; only a run of
// consecutive failures past the limit is surfaced.
func (s *LiveScoreService) Poll(ctx context.Context, contestID string, roundOrdinal int, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	tick, stop := s.newTicker(interval)
	defer stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if _, err := s.Refresh(ctx, contestID, roundOrdinal); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				failures++
				s.logger.WarnContext(ctx, "live score refresh failed",
					"contest_id", contestID,
					"round", roundOrdinal,
					"consecutive_failures", failures,
					"error", err,
				)
				if failures >= s.failureLimit {
					return fmt.Errorf("%w: refresh failed %d consecutive times: %s", ErrDependencyUnavailable, failures, err)
				}
				continue
			}
			failures = 0
		}
	}
}

func (s *LiveScoreService) shouldSkipRefresh(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.lastRefreshAt[key]
	if !ok {
		return false
	}
	return s.now().UTC().Sub(last) < s.refreshGap
}

func (s *LiveScoreService) markRefresh(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRefreshAt[key] = s.now().UTC()
}
