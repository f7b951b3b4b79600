package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/playoff-survivor/internal/domain/round"
	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
	"github.com/riskibarqy/playoff-survivor/internal/platform/logging"
)

// RoundLockStatus pairs a round with its resolved lock state.
type RoundLockStatus struct {
	Round     round.Round
	LockState round.LockState
}

// RoundService owns the round clock and the lock window. It also arbitrates
// between administrative transitions and in-flight roster mutations: a
// transition takes the contest guard exclusively, so a mutation racing it
// re-validates the lock state and loses.
type RoundService struct {
	roundRepo  round.Repository
	rosterRepo roster.Repository
	logger     *logging.Logger

	mu     sync.Mutex
	guards map[string]*sync.RWMutex
}

func NewRoundService(roundRepo round.Repository, rosterRepo roster.Repository, logger *logging.Logger) *RoundService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RoundService{
		roundRepo:  roundRepo,
		rosterRepo: rosterRepo,
		logger:     logger,
		guards:     make(map[string]*sync.RWMutex),
	}
}

func (s *RoundService) guard(contestID string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guards[contestID]
	if !ok {
		g = &sync.RWMutex{}
		s.guards[contestID] = g
	}
	return g
}

// Schedule loads and structurally validates a contest's round schedule. An
// uninitialized clock is surfaced, never defaulted: all downstream components
// treat it as "edits forbidden".
func (s *RoundService) Schedule(ctx context.Context, contestID string) (round.Schedule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Schedule")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return round.Schedule{}, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}

	schedule, exists, err := s.roundRepo.GetSchedule(ctx, contestID)
	if err != nil {
		return round.Schedule{}, fmt.Errorf("get round schedule: %w", err)
	}
	if !exists {
		return round.Schedule{}, fmt.Errorf("%w: schedule for contest=%s", ErrNotFound, contestID)
	}
	if err := schedule.Validate(); err != nil {
		return round.Schedule{}, fmt.Errorf("schedule for contest=%s: %w", contestID, err)
	}

	return schedule, nil
}

// Rounds returns every round with its lock state resolved against the
// current round.
func (s *RoundService) Rounds(ctx context.Context, contestID string) ([]RoundLockStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Rounds")
	defer span.End()

	schedule, err := s.Schedule(ctx, contestID)
	if err != nil {
		return nil, err
	}
	current, err := schedule.Current()
	if err != nil {
		return nil, err
	}

	out := make([]RoundLockStatus, 0, len(schedule.Rounds))
	for _, r := range schedule.Rounds {
		out = append(out, RoundLockStatus{
			Round:     r,
			LockState: round.ResolveLockState(r, current),
		})
	}
	return out, nil
}

// LockStateFor resolves the lock state of one round.
func (s *RoundService) LockStateFor(ctx context.Context, contestID string, ordinal int) (round.LockState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.LockStateFor")
	defer span.End()

	schedule, err := s.Schedule(ctx, contestID)
	if err != nil {
		return "", err
	}
	selected, err := schedule.ByOrdinal(ordinal)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	current, err := schedule.Current()
	if err != nil {
		return "", err
	}

	return round.ResolveLockState(selected, current), nil
}

// EffectiveWeek maps a round ordinal to its absolute NFL week.
func (s *RoundService) EffectiveWeek(ctx context.Context, contestID string, ordinal int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.EffectiveWeek")
	defer span.End()

	schedule, err := s.Schedule(ctx, contestID)
	if err != nil {
		return 0, err
	}
	return schedule.EffectiveNFLWeek(ordinal)
}

// WithRoundOpen runs fn while holding the contest guard shared, after
// verifying the selected round is current and open. The lock state is
// resolved inside the guard, so a mutation that raced a transition observes
// the post-transition state and is rejected.
func (s *RoundService) WithRoundOpen(ctx context.Context, contestID string, ordinal int, fn func(ctx context.Context) error) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.WithRoundOpen")
	defer span.End()

	g := s.guard(strings.TrimSpace(contestID))
	g.RLock()
	defer g.RUnlock()

	state, err := s.LockStateFor(ctx, contestID, ordinal)
	if err != nil {
		return err
	}
	if !state.AllowsRosterEdits() {
		return fmt.Errorf("%w: round %d is %s", ErrRoundLocked, ordinal, state)
	}

	return fn(ctx)
}

// Advance settles the current round's rosters and makes the next round
// current (still locked). Exclusive against roster mutations.
func (s *RoundService) Advance(ctx context.Context, contestID string) (round.Schedule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Advance")
	defer span.End()

	g := s.guard(strings.TrimSpace(contestID))
	g.Lock()
	defer g.Unlock()

	schedule, err := s.Schedule(ctx, contestID)
	if err != nil {
		return round.Schedule{}, err
	}
	current, err := schedule.Current()
	if err != nil {
		return round.Schedule{}, err
	}

	// Settling first makes the closing round's roster the continuity baseline
	// before anyone can add against the next round.
	if err := s.rosterRepo.MarkRoundSettled(ctx, schedule.ContestID, current.Ordinal); err != nil {
		return round.Schedule{}, fmt.Errorf("settle round %d: %w", current.Ordinal, err)
	}
	if err := schedule.Advance(); err != nil {
		return round.Schedule{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := s.roundRepo.SaveSchedule(ctx, schedule); err != nil {
		return round.Schedule{}, fmt.Errorf("save advanced schedule: %w", err)
	}

	s.logger.InfoContext(ctx, "round advanced",
		"contest_id", schedule.ContestID,
		"settled_round", current.Ordinal,
		"schedule_version", schedule.Version,
	)
	return schedule, nil
}

// SetRoundOpen toggles the current round's edit window. Exclusive against
// roster mutations.
func (s *RoundService) SetRoundOpen(ctx context.Context, contestID string, open bool) (round.Schedule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.SetRoundOpen")
	defer span.End()

	g := s.guard(strings.TrimSpace(contestID))
	g.Lock()
	defer g.Unlock()

	schedule, err := s.Schedule(ctx, contestID)
	if err != nil {
		return round.Schedule{}, err
	}
	if err := schedule.SetOpen(open); err != nil {
		return round.Schedule{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := s.roundRepo.SaveSchedule(ctx, schedule); err != nil {
		return round.Schedule{}, fmt.Errorf("save schedule: %w", err)
	}

	s.logger.InfoContext(ctx, "round lock window changed",
		"contest_id", schedule.ContestID,
		"open", open,
		"schedule_version", schedule.Version,
	)
	return schedule, nil
}
