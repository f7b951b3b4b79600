package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/playoff-survivor/internal/domain/contest"
	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
	idgen "github.com/riskibarqy/playoff-survivor/internal/platform/id"
	"github.com/riskibarqy/playoff-survivor/internal/platform/logging"
)

// AddPlayerInput is one add-player request.
type AddPlayerInput struct {
	ContestID    string
	UserID       string
	RoundOrdinal int
	Position     roster.Position
	PlayerID     string
}

// RosterService implements the slot store: add/remove gated by the lock
// window, position limits and the scored-slot rule.
type RosterService struct {
	contestRepo contest.Repository
	rosterRepo  roster.Repository
	rounds      *RoundService
	engine      *MultiplierEngine
	ids         idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewRosterService(
	contestRepo contest.Repository,
	rosterRepo roster.Repository,
	rounds *RoundService,
	engine *MultiplierEngine,
	ids idgen.Generator,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterService{
		contestRepo: contestRepo,
		rosterRepo:  rosterRepo,
		rounds:      rounds,
		engine:      engine,
		ids:         ids,
		logger:      logger,
		now:         time.Now,
	}
}

// AddPlayer creates a slot for the player in the given round. Preconditions
// are checked inside the round guard and violations are rejected, not queued.
func (s *RosterService) AddPlayer(ctx context.Context, input AddPlayerInput) (roster.Slot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.AddPlayer")
	defer span.End()

	input.ContestID = strings.TrimSpace(input.ContestID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)

	if input.ContestID == "" {
		return roster.Slot{}, fmt.Errorf("%w: contest_id is required", ErrInvalidInput)
	}
	if input.UserID == "" {
		return roster.Slot{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if input.PlayerID == "" {
		return roster.Slot{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	if input.RoundOrdinal < 1 {
		return roster.Slot{}, fmt.Errorf("%w: round ordinal must be positive", ErrInvalidInput)
	}

	settings, exists, err := s.contestRepo.GetByID(ctx, input.ContestID)
	if err != nil {
		return roster.Slot{}, fmt.Errorf("get contest settings: %w", err)
	}
	if !exists {
		return roster.Slot{}, fmt.Errorf("%w: contest=%s", ErrNotFound, input.ContestID)
	}

	var created roster.Slot
	err = s.rounds.WithRoundOpen(ctx, input.ContestID, input.RoundOrdinal, func(ctx context.Context) error {
		existing, err := s.rosterRepo.ListByUserAndRound(ctx, input.ContestID, input.UserID, input.RoundOrdinal)
		if err != nil {
			return fmt.Errorf("list roster slots: %w", err)
		}
		if err := roster.ValidateAdd(existing, input.Position, input.PlayerID, settings.Limits); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}

		multiplier, consecutive, err := s.engine.Compute(
			ctx,
			input.ContestID,
			input.UserID,
			input.Position,
			input.PlayerID,
			input.RoundOrdinal,
			settings.MultiplierCap,
		)
		if err != nil {
			return fmt.Errorf("compute continuity multiplier: %w", err)
		}

		pickID, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate pick id: %w", err)
		}

		now := s.now().UTC()
		slot := roster.Slot{
			PickID:            pickID,
			ContestID:         input.ContestID,
			UserID:            input.UserID,
			RoundOrdinal:      input.RoundOrdinal,
			Position:          input.Position,
			PlayerID:          input.PlayerID,
			ConsecutiveRounds: consecutive,
			Multiplier:        multiplier,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		if err := s.rosterRepo.Upsert(ctx, slot); err != nil {
			return fmt.Errorf("save roster slot: %w", err)
		}

		created = slot
		return nil
	})
	if err != nil {
		return roster.Slot{}, err
	}

	s.logger.InfoContext(ctx, "player added to roster",
		"contest_id", created.ContestID,
		"user_id", created.UserID,
		"round", created.RoundOrdinal,
		"position", string(created.Position),
		"multiplier", created.Multiplier,
	)
	return created, nil
}

// RemoveSlot clears a slot the caller owns. Removing an already-absent pick
// is a not-found error so stale clients can detect it.
func (s *RosterService) RemoveSlot(ctx context.Context, contestID, userID string, roundOrdinal int, pickID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.RemoveSlot")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	userID = strings.TrimSpace(userID)
	pickID = strings.TrimSpace(pickID)
	if contestID == "" || userID == "" || pickID == "" {
		return fmt.Errorf("%w: contest_id, user_id and pick_id are required", ErrInvalidInput)
	}

	return s.rounds.WithRoundOpen(ctx, contestID, roundOrdinal, func(ctx context.Context) error {
		slot, exists, err := s.rosterRepo.GetByPickID(ctx, contestID, pickID)
		if err != nil {
			return fmt.Errorf("get roster slot: %w", err)
		}
		// Other users' picks are indistinguishable from absent ones.
		if !exists || slot.UserID != userID || slot.RoundOrdinal != roundOrdinal {
			return fmt.Errorf("%w: pick=%s", ErrNotFound, pickID)
		}
		if err := roster.ValidateRemove(slot); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}

		deleted, err := s.rosterRepo.Delete(ctx, contestID, pickID)
		if err != nil {
			return fmt.Errorf("delete roster slot: %w", err)
		}
		if !deleted {
			return fmt.Errorf("%w: pick=%s", ErrNotFound, pickID)
		}

		s.logger.InfoContext(ctx, "roster slot removed",
			"contest_id", contestID,
			"user_id", userID,
			"round", roundOrdinal,
			"pick_id", pickID,
		)
		return nil
	})
}

// ListSlots returns the caller's slots for any round; viewing is never gated
// by the lock window.
func (s *RosterService) ListSlots(ctx context.Context, contestID, userID string, roundOrdinal int) ([]roster.Slot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListSlots")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	userID = strings.TrimSpace(userID)
	if contestID == "" || userID == "" {
		return nil, fmt.Errorf("%w: contest_id and user_id are required", ErrInvalidInput)
	}
	if roundOrdinal < 1 {
		return nil, fmt.Errorf("%w: round ordinal must be positive", ErrInvalidInput)
	}

	slots, err := s.rosterRepo.ListByUserAndRound(ctx, contestID, userID, roundOrdinal)
	if err != nil {
		return nil, fmt.Errorf("list roster slots: %w", err)
	}
	return slots, nil
}
