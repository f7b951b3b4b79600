package memory

import (
	"time"

	"github.com/riskibarqy/playoff-survivor/internal/domain/contest"
	"github.com/riskibarqy/playoff-survivor/internal/domain/round"
	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
)

const (
	ContestIDPlayoffs2026 = "nfl-playoffs-2026"
	OrganizerIDDemo       = "organizer-1"

	// Playoff start week of the 2025/26 NFL season.
	SeedPlayoffStartWeek = 19
)

func SeedContests() []contest.Contest {
	now := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	return []contest.Contest{
		{
			ID:               ContestIDPlayoffs2026,
			Name:             "Playoff Survivor 2026",
			OrganizerID:      OrganizerIDDemo,
			Status:           contest.StatusOpen,
			PlayoffStartWeek: SeedPlayoffStartWeek,
			MultiplierCap:    4,
			Limits: roster.Limits{
				roster.PositionQB:  1,
				roster.PositionRB:  2,
				roster.PositionWR:  2,
				roster.PositionTE:  1,
				roster.PositionK:   1,
				roster.PositionDEF: 1,
			},
			PayoutTable: []contest.PayoutTier{
				{RankMin: 1, RankMax: 1, Amount: 500},
				{RankMin: 2, RankMax: 3, Amount: 150},
				{RankMin: 4, RankMax: 10, Amount: 25},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func SeedSchedules() []round.Schedule {
	schedule, err := round.NewSchedule(ContestIDPlayoffs2026, SeedPlayoffStartWeek)
	if err != nil {
		panic(err)
	}
	_ = schedule.SetOpen(true)
	return []round.Schedule{schedule}
}
