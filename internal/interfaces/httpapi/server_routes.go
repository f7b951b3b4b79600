package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicContestRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/contests/{contestID}/rounds", handler.ListRounds)
	mux.HandleFunc("GET /v1/contests/{contestID}/leaderboard", handler.GetLeaderboard)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/contests/{contestID}/capabilities", RequireAuth(verifier, http.HandlerFunc(handler.GetCapabilities)))
	mux.Handle("GET /v1/contests/{contestID}/rounds/{ordinal}/roster", RequireAuth(verifier, http.HandlerFunc(handler.GetRoster)))
	mux.Handle("POST /v1/contests/{contestID}/rounds/{ordinal}/roster", RequireAuth(verifier, http.HandlerFunc(handler.AddRosterPlayer)))
	mux.Handle("DELETE /v1/contests/{contestID}/rounds/{ordinal}/roster/{pickID}", RequireAuth(verifier, http.HandlerFunc(handler.RemoveRosterSlot)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/contests/{contestID}/rounds/advance", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.AdvanceRound)))
	mux.Handle("POST /v1/internal/contests/{contestID}/rounds/lock", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.LockRound)))
	mux.Handle("POST /v1/internal/contests/{contestID}/rounds/unlock", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.UnlockRound)))
	mux.Handle("POST /v1/internal/contests/{contestID}/rounds/{ordinal}/scores/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RefreshScores)))
	mux.Handle("POST /v1/internal/contests/{contestID}/leaderboard/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecomputeLeaderboard)))
}
