package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/playoff-survivor/internal/domain/contest"
	"github.com/riskibarqy/playoff-survivor/internal/domain/leaderboard"
	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
	"github.com/riskibarqy/playoff-survivor/internal/domain/round"
	"github.com/riskibarqy/playoff-survivor/internal/platform/logging"
	"github.com/riskibarqy/playoff-survivor/internal/usecase"
)

type Handler struct {
	rosterService      *usecase.RosterService
	roundService       *usecase.RoundService
	liveScoreService   *usecase.LiveScoreService
	leaderboardService *usecase.LeaderboardService
	capabilityService  *usecase.CapabilityService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	rosterService *usecase.RosterService,
	roundService *usecase.RoundService,
	liveScoreService *usecase.LiveScoreService,
	leaderboardService *usecase.LeaderboardService,
	capabilityService *usecase.CapabilityService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		rosterService:      rosterService,
		roundService:       roundService,
		liveScoreService:   liveScoreService,
		leaderboardService: leaderboardService,
		capabilityService:  capabilityService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func roundOrdinalFromPath(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("ordinal"))
	ordinal, err := strconv.Atoi(raw)
	if err != nil || ordinal < 1 {
		return 0, fmt.Errorf("%w: round ordinal %q is not a positive integer", usecase.ErrInvalidInput, raw)
	}
	return ordinal, nil
}

type addRosterPlayerRequest struct {
	Position string `json:"position" validate:"required,max=8"`
	PlayerID string `json:"player_id" validate:"required,max=120"`
}

type rosterSlotDTO struct {
	PickID            string  `json:"pick_id"`
	ContestID         string  `json:"contest_id"`
	UserID            string  `json:"user_id"`
	RoundOrdinal      int     `json:"round_ordinal"`
	Position          string  `json:"position"`
	PlayerID          string  `json:"player_id"`
	ConsecutiveRounds int     `json:"consecutive_rounds"`
	Multiplier        float64 `json:"multiplier"`
	BasePoints        float64 `json:"base_points"`
	FinalPoints       float64 `json:"final_points"`
	IsLive            bool    `json:"is_live"`
	Locked            bool    `json:"locked"`
	Settled           bool    `json:"settled"`
	UpdatedAtUTC      string  `json:"updated_at_utc"`
}

type roundDTO struct {
	Ordinal   int    `json:"ordinal"`
	Label     string `json:"label"`
	NFLWeek   int    `json:"nfl_week"`
	IsCurrent bool   `json:"is_current"`
	IsOpen    bool   `json:"is_open"`
	LockState string `json:"lock_state"`
}

type scheduleDTO struct {
	ContestID        string     `json:"contest_id"`
	PlayoffStartWeek int        `json:"playoff_start_week"`
	Version          int64      `json:"version"`
	Rounds           []roundDTO `json:"rounds"`
}

type scoreUpdateDTO struct {
	PickID      string  `json:"pick_id"`
	BasePoints  float64 `json:"base_points"`
	FinalPoints float64 `json:"final_points"`
	IsLive      bool    `json:"is_live"`
	GameLocked  bool    `json:"game_locked"`
}

type leaderboardColumnDTO struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type leaderboardRowDTO struct {
	UserID       string             `json:"user_id"`
	Rank         int                `json:"rank"`
	Values       map[string]float64 `json:"values"`
	PayoutAmount float64            `json:"payout_amount"`
}

type leaderboardDTO struct {
	ContestID      string                 `json:"contest_id"`
	State          string                 `json:"state"`
	Authoritative  bool                   `json:"authoritative"`
	GeneratedAtUTC string                 `json:"generated_at_utc,omitempty"`
	Columns        []leaderboardColumnDTO `json:"columns"`
	Rows           []leaderboardRowDTO    `json:"rows"`
}

type actionsDTO struct {
	CanJoin          bool `json:"can_join"`
	CanEditEntry     bool `json:"can_edit_entry"`
	IsLive           bool `json:"is_live"`
	IsClosed         bool `json:"is_closed"`
	IsScoring        bool `json:"is_scoring"`
	IsScored         bool `json:"is_scored"`
	IsReadOnly       bool `json:"is_read_only"`
	CanShareInvite   bool `json:"can_share_invite"`
	CanManageContest bool `json:"can_manage_contest"`
	CanDelete        bool `json:"can_delete"`
	CanUnjoin        bool `json:"can_unjoin"`
}

type payoutTierDTO struct {
	RankMin int     `json:"rank_min"`
	RankMax int     `json:"rank_max"`
	Amount  float64 `json:"amount"`
}

type rosterConfigDTO struct {
	PositionLimits map[string]int `json:"position_limits"`
	MultiplierCap  int            `json:"multiplier_cap"`
}

type actionStateDTO struct {
	ContestID        string          `json:"contest_id"`
	LeaderboardState string          `json:"leaderboard_state"`
	Actions          actionsDTO      `json:"actions"`
	PayoutTable      []payoutTierDTO `json:"payout_table"`
	RosterConfig     rosterConfigDTO `json:"roster_config"`
}

func rosterSlotToDTO(ctx context.Context, v roster.Slot) rosterSlotDTO {
	ctx, span := startSpan(ctx, "httpapi.rosterSlotToDTO")
	defer span.End()

	return rosterSlotDTO{
		PickID:            v.PickID,
		ContestID:         v.ContestID,
		UserID:            v.UserID,
		RoundOrdinal:      v.RoundOrdinal,
		Position:          string(v.Position),
		PlayerID:          v.PlayerID,
		ConsecutiveRounds: v.ConsecutiveRounds,
		Multiplier:        v.Multiplier,
		BasePoints:        v.BasePoints,
		FinalPoints:       v.FinalPoints,
		IsLive:            v.IsLive,
		Locked:            v.Locked,
		Settled:           v.Settled,
		UpdatedAtUTC:      v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func roundStatusToDTO(ctx context.Context, v usecase.RoundLockStatus) roundDTO {
	ctx, span := startSpan(ctx, "httpapi.roundStatusToDTO")
	defer span.End()

	return roundDTO{
		Ordinal:   v.Round.Ordinal,
		Label:     v.Round.Label,
		NFLWeek:   v.Round.NFLWeek,
		IsCurrent: v.Round.IsCurrent,
		IsOpen:    v.Round.IsOpen,
		LockState: string(v.LockState),
	}
}

func scheduleToDTO(ctx context.Context, v round.Schedule) scheduleDTO {
	ctx, span := startSpan(ctx, "httpapi.scheduleToDTO")
	defer span.End()

	current, err := v.Current()
	rounds := make([]roundDTO, 0, len(v.Rounds))
	for _, item := range v.Rounds {
		dto := roundDTO{
			Ordinal:   item.Ordinal,
			Label:     item.Label,
			NFLWeek:   item.NFLWeek,
			IsCurrent: item.IsCurrent,
			IsOpen:    item.IsOpen,
		}
		if err == nil {
			dto.LockState = string(round.ResolveLockState(item, current))
		}
		rounds = append(rounds, dto)
	}

	return scheduleDTO{
		ContestID:        v.ContestID,
		PlayoffStartWeek: v.PlayoffStartWeek,
		Version:          v.Version,
		Rounds:           rounds,
	}
}

func leaderboardToDTO(ctx context.Context, v leaderboard.Snapshot) leaderboardDTO {
	ctx, span := startSpan(ctx, "httpapi.leaderboardToDTO")
	defer span.End()

	columns := make([]leaderboardColumnDTO, 0, len(v.Columns))
	for _, column := range v.Columns {
		columns = append(columns, leaderboardColumnDTO{Key: column.Key, Label: column.Label})
	}
	rows := make([]leaderboardRowDTO, 0, len(v.Rows))
	for _, row := range v.Rows {
		rows = append(rows, leaderboardRowDTO{
			UserID:       row.UserID,
			Rank:         row.Rank,
			Values:       row.Values,
			PayoutAmount: row.PayoutAmount,
		})
	}

	dto := leaderboardDTO{
		ContestID:     v.ContestID,
		State:         string(v.State),
		Authoritative: v.State.Authoritative(),
		Columns:       columns,
		Rows:          rows,
	}
	if v.GeneratedAt != nil && !v.GeneratedAt.IsZero() {
		dto.GeneratedAtUTC = v.GeneratedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func actionStateToDTO(ctx context.Context, v contest.ActionState) actionStateDTO {
	ctx, span := startSpan(ctx, "httpapi.actionStateToDTO")
	defer span.End()

	tiers := make([]payoutTierDTO, 0, len(v.PayoutTable))
	for _, tier := range v.PayoutTable {
		tiers = append(tiers, payoutTierDTO{
			RankMin: tier.RankMin,
			RankMax: tier.RankMax,
			Amount:  tier.Amount,
		})
	}
	limits := make(map[string]int, len(v.RosterConfig.Limits))
	for pos, limit := range v.RosterConfig.Limits {
		limits[string(pos)] = limit
	}

	return actionStateDTO{
		ContestID:        v.ContestID,
		LeaderboardState: string(v.LeaderboardState),
		Actions: actionsDTO{
			CanJoin:          v.Actions.CanJoin,
			CanEditEntry:     v.Actions.CanEditEntry,
			IsLive:           v.Actions.IsLive,
			IsClosed:         v.Actions.IsClosed,
			IsScoring:        v.Actions.IsScoring,
			IsScored:         v.Actions.IsScored,
			IsReadOnly:       v.Actions.IsReadOnly,
			CanShareInvite:   v.Actions.CanShareInvite,
			CanManageContest: v.Actions.CanManageContest,
			CanDelete:        v.Actions.CanDelete,
			CanUnjoin:        v.Actions.CanUnjoin,
		},
		PayoutTable: tiers,
		RosterConfig: rosterConfigDTO{
			PositionLimits: limits,
			MultiplierCap:  v.RosterConfig.MultiplierCap,
		},
	}
}
