package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
	"github.com/riskibarqy/playoff-survivor/internal/usecase"
)

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoster")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	ordinal, err := roundOrdinalFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	// Best effort: a feed outage degrades to last-stored scores, it never
	// blocks viewing the roster.
	if err := h.liveScoreService.EnsureFresh(ctx, contestID, ordinal); err != nil {
		h.logger.WarnContext(ctx, "live score refresh skipped",
			"contest_id", contestID, "round", ordinal, "error", err)
	}

	slots, err := h.rosterService.ListSlots(ctx, contestID, principal.UserID, ordinal)
	if err != nil {
		h.logger.WarnContext(ctx, "list roster failed",
			"contest_id", contestID, "user_id", principal.UserID, "round", ordinal, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]rosterSlotDTO, 0, len(slots))
	for _, slot := range slots {
		items = append(items, rosterSlotToDTO(ctx, slot))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AddRosterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddRosterPlayer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	ordinal, err := roundOrdinalFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req addRosterPlayerRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	slot, err := h.rosterService.AddPlayer(ctx, usecase.AddPlayerInput{
		ContestID:    contestID,
		UserID:       principal.UserID,
		RoundOrdinal: ordinal,
		Position:     roster.Position(strings.ToUpper(strings.TrimSpace(req.Position))),
		PlayerID:     req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add roster player failed",
			"contest_id", contestID, "user_id", principal.UserID, "round", ordinal, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, rosterSlotToDTO(ctx, slot))
}

func (h *Handler) RemoveRosterSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveRosterSlot")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	pickID := strings.TrimSpace(r.PathValue("pickID"))
	ordinal, err := roundOrdinalFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.rosterService.RemoveSlot(ctx, contestID, principal.UserID, ordinal, pickID); err != nil {
		h.logger.WarnContext(ctx, "remove roster slot failed",
			"contest_id", contestID, "user_id", principal.UserID, "round", ordinal, "pick_id", pickID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"pick_id": pickID, "status": "removed"})
}
