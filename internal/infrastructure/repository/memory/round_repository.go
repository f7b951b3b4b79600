package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/playoff-survivor/internal/domain/round"
)

type RoundRepository struct {
	mu        sync.RWMutex
	schedules map[string]round.Schedule
}

func NewRoundRepository(seed ...round.Schedule) *RoundRepository {
	items := make(map[string]round.Schedule, len(seed))
	for _, s := range seed {
		items[s.ContestID] = cloneSchedule(s)
	}
	return &RoundRepository{schedules: items}
}

func (r *RoundRepository) GetSchedule(_ context.Context, contestID string) (round.Schedule, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.schedules[contestID]
	if !ok {
		return round.Schedule{}, false, nil
	}
	return cloneSchedule(item), true, nil
}

func (r *RoundRepository) SaveSchedule(_ context.Context, schedule round.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schedules[schedule.ContestID] = cloneSchedule(schedule)
	return nil
}

func cloneSchedule(s round.Schedule) round.Schedule {
	copied := s
	copied.Rounds = append([]round.Round(nil), s.Rounds...)
	return copied
}
