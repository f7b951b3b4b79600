package statsfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/playoff-survivor/internal/domain/scoring"
	"github.com/riskibarqy/playoff-survivor/internal/platform/logging"
	"github.com/riskibarqy/playoff-survivor/internal/platform/resilience"
	"github.com/riskibarqy/playoff-survivor/internal/usecase"
)

func newTestClient(baseURL string, retries int, circuit resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		Token:          "test-token",
		Timeout:        2 * time.Second,
		MaxRetries:     retries,
		Logger:         logging.NewNop(),
		CircuitBreaker: circuit,
	})
}

func TestClient_FetchLiveStats_MapsGameStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/stats/live" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("week"); got != "19" {
			t.Errorf("unexpected week %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"week": 19,
			"players": [
				{"player_id": "qb-mahomes", "fantasy_points": 24.5, "game_status": "in_progress"},
				{"player_id": "rb-henry", "fantasy_points": -2, "game_status": "final"},
				{"player_id": "wr-hill", "fantasy_points": 0, "game_status": "scheduled"},
				{"player_id": "  ", "fantasy_points": 3, "game_status": "final"}
			]
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0, resilience.CircuitBreakerConfig{})

	stats, err := client.FetchLiveStats(context.Background(), 19)
	if err != nil {
		t.Fatalf("fetch live stats: %v", err)
	}

	want := []scoring.PlayerGameStat{
		{PlayerID: "qb-mahomes", Points: 24.5, IsLive: true},
		{PlayerID: "rb-henry", Points: -2, GameFinal: true},
		{PlayerID: "wr-hill"},
	}
	if len(stats) != len(want) {
		t.Fatalf("expected %d stats, got %d", len(want), len(stats))
	}
	for i, w := range want {
		if stats[i] != w {
			t.Fatalf("stat %d: got %+v, want %+v", i, stats[i], w)
		}
	}
}

func TestClient_FetchLiveStats_RetriesTransientStatus(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"week": 19, "players": []}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 1, resilience.CircuitBreakerConfig{})

	stats, err := client.FetchLiveStats(context.Background(), 19)
	if err != nil {
		t.Fatalf("fetch after retry: %v", err)
	}
	if len(stats) != 0 {
		t.Fatalf("expected empty stats, got %d", len(stats))
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestClient_FetchLiveStats_TransientFailureMarksFeedUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0, resilience.CircuitBreakerConfig{})

	_, err := client.FetchLiveStats(context.Background(), 19)
	if !errors.Is(err, scoring.ErrFeedUnavailable) {
		t.Fatalf("expected ErrFeedUnavailable, got %v", err)
	}
}

func TestClient_FetchLiveStats_PermanentStatusIsNotRetried(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 2, resilience.CircuitBreakerConfig{})

	_, err := client.FetchLiveStats(context.Background(), 19)
	if err == nil {
		t.Fatal("expected an error for status 401")
	}
	if errors.Is(err, scoring.ErrFeedUnavailable) {
		t.Fatalf("permanent failure must not look transient: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestClient_FetchLiveStats_CircuitOpensAfterFailures(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if _, err := client.FetchLiveStats(context.Background(), 19); !errors.Is(err, scoring.ErrFeedUnavailable) {
		t.Fatalf("first call must fail transiently, got %v", err)
	}

	_, err := client.FetchLiveStats(context.Background(), 19)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("open circuit must reject without calling the feed, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected 1 upstream attempt, got %d", got)
	}
}

func TestClient_FetchLiveStats_InvalidWeek(t *testing.T) {
	client := newTestClient("http://localhost:0", 0, resilience.CircuitBreakerConfig{})

	if _, err := client.FetchLiveStats(context.Background(), 0); err == nil {
		t.Fatal("expected an error for week 0")
	}
}
