package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRounds")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	rounds, err := h.roundService.Rounds(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "list rounds failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]roundDTO, 0, len(rounds))
	for _, item := range rounds {
		items = append(items, roundStatusToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AdvanceRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdvanceRound")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	schedule, err := h.roundService.Advance(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "advance round failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scheduleToDTO(ctx, schedule))
}

func (h *Handler) LockRound(w http.ResponseWriter, r *http.Request) {
	h.setRoundOpen(w, r, false)
}

func (h *Handler) UnlockRound(w http.ResponseWriter, r *http.Request) {
	h.setRoundOpen(w, r, true)
}

func (h *Handler) setRoundOpen(w http.ResponseWriter, r *http.Request, open bool) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.setRoundOpen")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	schedule, err := h.roundService.SetRoundOpen(ctx, contestID, open)
	if err != nil {
		h.logger.WarnContext(ctx, "set round open failed",
			"contest_id", contestID, "open", open, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scheduleToDTO(ctx, schedule))
}

func (h *Handler) RefreshScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshScores")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	ordinal, err := roundOrdinalFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	updates, err := h.liveScoreService.Refresh(ctx, contestID, ordinal)
	if err != nil {
		h.logger.WarnContext(ctx, "score refresh failed",
			"contest_id", contestID, "round", ordinal, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]scoreUpdateDTO, 0, len(updates))
	for _, update := range updates {
		items = append(items, scoreUpdateDTO{
			PickID:      update.PickID,
			BasePoints:  update.BasePoints,
			FinalPoints: update.FinalPoints,
			IsLive:      update.IsLive,
			GameLocked:  update.GameLocked,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
