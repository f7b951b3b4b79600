package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	_ "github.com/lib/pq"

	"github.com/riskibarqy/playoff-survivor/internal/config"
	"github.com/riskibarqy/playoff-survivor/internal/domain/contest"
	"github.com/riskibarqy/playoff-survivor/internal/domain/leaderboard"
	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
	"github.com/riskibarqy/playoff-survivor/internal/domain/round"
	"github.com/riskibarqy/playoff-survivor/internal/domain/scoring"
	"github.com/riskibarqy/playoff-survivor/internal/infrastructure/account"
	"github.com/riskibarqy/playoff-survivor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playoff-survivor/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/playoff-survivor/internal/infrastructure/statsfeed"
	"github.com/riskibarqy/playoff-survivor/internal/interfaces/httpapi"
	"github.com/riskibarqy/playoff-survivor/internal/platform/cache"
	idgen "github.com/riskibarqy/playoff-survivor/internal/platform/id"
	"github.com/riskibarqy/playoff-survivor/internal/platform/logging"
	"github.com/riskibarqy/playoff-survivor/internal/platform/resilience"
	"github.com/riskibarqy/playoff-survivor/internal/usecase"
)

type repositories struct {
	contests     contest.Repository
	rounds       round.Repository
	rosters      roster.Repository
	leaderboards leaderboard.Repository
}

// NewHTTPServer wires configuration into a ready-to-run API server. With an
// empty DB_URL the server runs on seeded in-memory repositories, which is the
// local development mode.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, db, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	var snapshotCache, tokenCache *cache.Store
	if cfg.CacheEnabled {
		snapshotCache = cache.NewStore(cfg.CacheTTL)
		tokenCache = cache.NewStore(cfg.CacheTTL)
	}

	roundSvc := usecase.NewRoundService(repos.rounds, repos.rosters, logger)
	engine := usecase.NewMultiplierEngine(repos.rosters)
	rosterSvc := usecase.NewRosterService(repos.contests, repos.rosters, roundSvc, engine, idgen.NewRandomGenerator(), logger)
	liveSvc := usecase.NewLiveScoreService(repos.rosters, roundSvc, buildFeed(cfg, logger), logger)
	lbSvc := usecase.NewLeaderboardService(repos.contests, repos.rounds, repos.rosters, repos.leaderboards, snapshotCache, logger)
	capSvc := usecase.NewCapabilityService(repos.contests, roundSvc, repos.leaderboards)

	verifier := account.NewClient(account.ClientConfig{
		BaseURL:        cfg.AccountBaseURL,
		IntrospectPath: cfg.AccountIntrospectPath,
		AdminKey:       cfg.AccountAdminKey,
		Timeout:        cfg.AccountTimeout,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AccountCircuitEnabled,
			FailureThreshold: cfg.AccountCircuitFailureCount,
			OpenTimeout:      cfg.AccountCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AccountCircuitHalfOpenMaxReq,
		},
		TokenCache: tokenCache,
	})

	handler := httpapi.NewHandler(rosterSvc, roundSvc, liveSvc, lbSvc, capSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	if db != nil {
		server.RegisterOnShutdown(func() {
			if err := db.Close(); err != nil {
				logger.Warn("close database", "error", err)
			}
		})
	}

	if cfg.StatsFeedEnabled {
		watchContestID := strings.TrimSpace(cfg.LiveScoreWatchContestID)
		if watchContestID == "" {
			logger.Info("live score watcher disabled, no contest configured")
		} else {
			watchCtx, cancel := context.WithCancel(context.Background())
			server.RegisterOnShutdown(cancel)
			go watchLiveScores(watchCtx, repos.contests, liveSvc, roundSvc, watchContestID, cfg.LiveScorePollInterval, logger)
		}
	}

	return server, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, *sqlx.DB, error) {
	dbURL := strings.TrimSpace(cfg.DBURL)
	if dbURL == "" {
		logger.Info("database disabled, using seeded in-memory repositories")
		return repositories{
			contests:     memory.NewContestRepository(memory.SeedContests()...),
			rounds:       memory.NewRoundRepository(memory.SeedSchedules()...),
			rosters:      memory.NewRosterRepository(),
			leaderboards: memory.NewLeaderboardRepository(),
		}, nil, nil
	}

	dbURL = normalizeDBURL(dbURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return repositories{
		contests:     postgres.NewContestRepository(db),
		rounds:       postgres.NewRoundRepository(db),
		rosters:      postgres.NewRosterRepository(db),
		leaderboards: postgres.NewLeaderboardRepository(db),
	}, db, nil
}

func buildFeed(cfg config.Config, logger *logging.Logger) scoring.Feed {
	if !cfg.StatsFeedEnabled {
		logger.Info("stats feed disabled, live scores serve stored values only")
		return noopFeed{}
	}

	return statsfeed.NewClient(statsfeed.ClientConfig{
		BaseURL:    cfg.StatsFeedBaseURL,
		Token:      cfg.StatsFeedToken,
		Timeout:    cfg.StatsFeedTimeout,
		MaxRetries: cfg.StatsFeedMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatsFeedCircuitEnabled,
			FailureThreshold: cfg.StatsFeedCircuitFailureCount,
			OpenTimeout:      cfg.StatsFeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StatsFeedCircuitHalfOpenMaxReq,
		},
	})
}

// noopFeed keeps the live score merge path inert when no provider is wired.
type noopFeed struct{}

func (noopFeed) FetchLiveStats(context.Context, int) ([]scoring.PlayerGameStat, error) {
	return nil, nil
}

// watchLiveScores follows the round clock: each tick it refreshes the round
// that is currently editable or locked in play. Rounds that already settled
// are left alone.
func watchLiveScores(
	ctx context.Context,
	contests contest.Repository,
	liveSvc *usecase.LiveScoreService,
	roundSvc *usecase.RoundService,
	contestID string,
	interval time.Duration,
	logger *logging.Logger,
) {
	if _, ok, err := contests.GetByID(ctx, contestID); err == nil && !ok {
		logger.Warn("live score watcher disabled, configured contest not found",
			"contest_id", contestID,
		)
		return
	}

	if interval <= 0 {
		interval = usecase.DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			statuses, err := roundSvc.Rounds(ctx, contestID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.WarnContext(ctx, "live score watcher could not resolve rounds",
					"contest_id", contestID,
					"error", err,
				)
				continue
			}
			for _, status := range statuses {
				if !status.Round.IsCurrent {
					continue
				}
				if err := liveSvc.EnsureFresh(ctx, contestID, status.Round.Ordinal); err != nil && ctx.Err() == nil {
					logger.WarnContext(ctx, "live score watcher refresh failed",
						"contest_id", contestID,
						"round", status.Round.Ordinal,
						"error", err,
					)
				}
			}
		}
	}
}
