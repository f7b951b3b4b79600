package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/playoff-survivor/internal/domain/contest"
	"github.com/riskibarqy/playoff-survivor/internal/domain/leaderboard"
	"github.com/riskibarqy/playoff-survivor/internal/domain/round"
	"github.com/riskibarqy/playoff-survivor/internal/domain/user"
)

// CapabilityService derives the caller's action flags from contest status,
// round lock state and caller identity. Resolution is pure and total; any
// upstream fault fails closed to a read-only flag set, because a silently
// wrong capability is a security defect, not a display glitch.
type CapabilityService struct {
	contestRepo contest.Repository
	rounds      *RoundService
	lbRepo      leaderboard.Repository
}

func NewCapabilityService(contestRepo contest.Repository, rounds *RoundService, lbRepo leaderboard.Repository) *CapabilityService {
	return &CapabilityService{
		contestRepo: contestRepo,
		rounds:      rounds,
		lbRepo:      lbRepo,
	}
}

// Resolve always returns a usable ActionState. When err != nil the returned
// state is the fail-closed read-only set.
func (s *CapabilityService) Resolve(ctx context.Context, contestID string, caller user.Principal) (contest.ActionState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CapabilityService.Resolve")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return contest.ReadOnlyActionState(contestID), fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}
	if err := caller.Validate(); err != nil {
		return contest.ReadOnlyActionState(contestID), fmt.Errorf("%w: %s", ErrUnauthorized, err)
	}

	item, exists, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return contest.ReadOnlyActionState(contestID), fmt.Errorf("get contest: %w", err)
	}
	if !exists {
		return contest.ReadOnlyActionState(contestID), fmt.Errorf("%w: contest=%s", ErrNotFound, contestID)
	}
	// A malformed contest (missing settings, unknown status) poisons the
	// whole resolution; no per-flag defaulting.
	if err := item.Validate(); err != nil {
		return contest.ReadOnlyActionState(contestID), fmt.Errorf("contest %s failed validation: %w", contestID, err)
	}

	hasEntry, err := s.contestRepo.HasEntry(ctx, contestID, caller.UserID)
	if err != nil {
		return contest.ReadOnlyActionState(contestID), fmt.Errorf("check contest entry: %w", err)
	}

	schedule, err := s.rounds.Schedule(ctx, contestID)
	if err != nil {
		return contest.ReadOnlyActionState(contestID), err
	}
	current, err := schedule.Current()
	if err != nil {
		return contest.ReadOnlyActionState(contestID), err
	}
	lockState := round.ResolveLockState(current, current)

	lbState := leaderboard.StatePending
	if snapshot, ok, err := s.lbRepo.Get(ctx, contestID); err != nil {
		return contest.ReadOnlyActionState(contestID), fmt.Errorf("get leaderboard state: %w", err)
	} else if ok {
		lbState = leaderboard.ParseComputationState(string(snapshot.State))
	}

	actions := deriveActions(item, caller, hasEntry, lockState)
	return contest.ActionState{
		ContestID:        contestID,
		LeaderboardState: lbState,
		Actions:          actions,
		PayoutTable:      item.PayoutTable,
		RosterConfig: contest.RosterConfig{
			Limits:        item.Limits,
			MultiplierCap: item.MultiplierCap,
		},
	}, nil
}

func deriveActions(c contest.Contest, caller user.Principal, hasEntry bool, lockState round.LockState) contest.Actions {
	isScored := c.Status == contest.StatusScored
	isScoring := c.Status == contest.StatusScoring
	isClosed := isScored || c.Status == contest.StatusCanceled
	isOrganizer := caller.UserID == c.OrganizerID

	actions := contest.Actions{
		IsLive:           c.Status == contest.StatusLive,
		IsClosed:         isClosed,
		IsScoring:        isScoring,
		IsScored:         isScored,
		IsReadOnly:       isClosed,
		CanJoin:          c.Status == contest.StatusOpen && !hasEntry,
		CanEditEntry:     hasEntry && lockState.AllowsRosterEdits(),
		CanUnjoin:        hasEntry && !isScored && c.Status == contest.StatusOpen,
		CanShareInvite:   c.Status == contest.StatusOpen && (hasEntry || isOrganizer),
		CanManageContest: isOrganizer || caller.IsAdmin,
		CanDelete:        (isOrganizer || caller.IsAdmin) && c.Status == contest.StatusOpen,
	}

	// Flag invariant: read-only forces every destructive capability off.
	if actions.IsReadOnly {
		actions.CanEditEntry = false
		actions.CanDelete = false
		actions.CanUnjoin = false
		actions.CanShareInvite = false
	}
	return actions
}
