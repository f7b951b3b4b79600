package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/playoff-survivor/internal/usecase"
)

func (h *Handler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCapabilities")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	state, err := h.capabilityService.Resolve(ctx, contestID, principal)
	if err != nil {
		// Resolution fails closed: surface the fault but still return the
		// read-only flag set so clients render a consistent disabled UI.
		h.logger.WarnContext(ctx, "capability resolution failed closed",
			"contest_id", contestID, "user_id", principal.UserID, "error", err)
		mapped := mapError(ctx, err)
		writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
			APIVersion: googleAPIVersion,
			Data:       actionStateToDTO(ctx, state),
			Error: &googleErrorBody{
				Code:    mapped.HTTPStatus,
				Message: err.Error(),
				Status:  mapped.Status,
				Errors: []googleErrorItem{
					{Domain: errorDomain, Reason: mapped.Reason, Message: err.Error()},
				},
			},
		})
		return
	}

	writeSuccess(ctx, w, http.StatusOK, actionStateToDTO(ctx, state))
}
