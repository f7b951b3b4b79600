package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/playoff-survivor/internal/domain/scoring"
	"github.com/riskibarqy/playoff-survivor/internal/domain/user"
	"github.com/riskibarqy/playoff-survivor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playoff-survivor/internal/platform/cache"
	idgen "github.com/riskibarqy/playoff-survivor/internal/platform/id"
	"github.com/riskibarqy/playoff-survivor/internal/usecase"
)

const (
	testUserToken    = "user-token"
	testUserID       = "user-1"
	testJobToken     = "job-token"
	testContestPath  = "/v1/contests/" + memory.ContestIDPlayoffs2026
	testInternalPath = "/v1/internal/contests/" + memory.ContestIDPlayoffs2026
)

type stubVerifier struct{}

func (stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token != testUserToken {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: testUserID}, nil
}

type emptyFeed struct{}

func (emptyFeed) FetchLiveStats(context.Context, int) ([]scoring.PlayerGameStat, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	contestRepo := memory.NewContestRepository(memory.SeedContests()...)
	if err := contestRepo.AddEntry(context.Background(), memory.ContestIDPlayoffs2026, testUserID); err != nil {
		t.Fatalf("seed contest entry: %v", err)
	}
	roundRepo := memory.NewRoundRepository(memory.SeedSchedules()...)
	rosterRepo := memory.NewRosterRepository()
	lbRepo := memory.NewLeaderboardRepository()

	rounds := usecase.NewRoundService(roundRepo, rosterRepo, nil)
	engine := usecase.NewMultiplierEngine(rosterRepo)
	rosterSvc := usecase.NewRosterService(contestRepo, rosterRepo, rounds, engine, idgen.NewRandomGenerator(), nil)
	liveSvc := usecase.NewLiveScoreService(rosterRepo, rounds, emptyFeed{}, nil)
	lbSvc := usecase.NewLeaderboardService(contestRepo, roundRepo, rosterRepo, lbRepo, cache.NewStore(time.Minute), nil)
	capSvc := usecase.NewCapabilityService(contestRepo, rounds, lbRepo)

	handler := NewHandler(rosterSvc, rounds, liveSvc, lbSvc, capSvc, nil)
	return NewRouter(handler, stubVerifier{}, nil, nil, testJobToken)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_AddRosterPlayer_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, testContestPath+"/rounds/1/roster",
		strings.NewReader(`{"position":"QB","player_id":"qb-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_AddAndGetRoster(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, testContestPath+"/rounds/1/roster",
		strings.NewReader(`{"position":"QB","player_id":"qb-1"}`))
	req.Header.Set("Authorization", "Bearer "+testUserToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected slot object in data, got %v", body["data"])
	}
	if got, _ := data["multiplier"].(float64); got != 1.0 {
		t.Fatalf("expected first-round multiplier 1.0, got %v", data["multiplier"])
	}

	req = httptest.NewRequest(http.MethodGet, testContestPath+"/rounds/1/roster", nil)
	req.Header.Set("Authorization", "Bearer "+testUserToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body = decodeEnvelope(t, rec)
	slots, ok := body["data"].([]any)
	if !ok || len(slots) != 1 {
		t.Fatalf("expected one roster slot, got %v", body["data"])
	}
}

func TestRouter_AddRosterPlayer_RejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, testContestPath+"/rounds/1/roster",
		strings.NewReader(`{"position":"QB","player_id":"qb-1","bogus":true}`))
	req.Header.Set("Authorization", "Bearer "+testUserToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_InternalAdvance_TokenGate(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, testInternalPath+"/rounds/advance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without job token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, testInternalPath+"/rounds/advance", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 with job token, got %d: %s", rec.Code, rec.Body.String())
	}

	// Round one settled: adding against it now conflicts with the lock window.
	req = httptest.NewRequest(http.MethodPost, testContestPath+"/rounds/1/roster",
		strings.NewReader(`{"position":"QB","player_id":"qb-1"}`))
	req.Header.Set("Authorization", "Bearer "+testUserToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 after advance, got %d", rec.Code)
	}
}

func TestRouter_GetLeaderboard_PendingPlaceholder(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, testContestPath+"/leaderboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected leaderboard object in data, got %v", body["data"])
	}
	if got, _ := data["state"].(string); got != "pending" {
		t.Fatalf("expected pending state, got %v", data["state"])
	}
	if got, _ := data["authoritative"].(bool); got {
		t.Fatalf("pending snapshot must not be authoritative")
	}
}

func TestRouter_GetCapabilities(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, testContestPath+"/capabilities", nil)
	req.Header.Set("Authorization", "Bearer "+testUserToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	actions, ok := data["actions"].(map[string]any)
	if !ok {
		t.Fatalf("expected actions object, got %v", data)
	}
	if got, _ := actions["can_edit_entry"].(bool); !got {
		t.Fatalf("expected can_edit_entry for a member during an open round")
	}
}
