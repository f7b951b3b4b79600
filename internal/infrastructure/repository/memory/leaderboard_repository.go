package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/playoff-survivor/internal/domain/leaderboard"
)

type LeaderboardRepository struct {
	mu        sync.RWMutex
	snapshots map[string]leaderboard.Snapshot
}

func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{snapshots: make(map[string]leaderboard.Snapshot)}
}

func (r *LeaderboardRepository) Get(_ context.Context, contestID string) (leaderboard.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.snapshots[contestID]
	if !ok {
		return leaderboard.Snapshot{}, false, nil
	}
	return cloneSnapshot(item), true, nil
}

func (r *LeaderboardRepository) Replace(_ context.Context, snapshot leaderboard.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[snapshot.ContestID] = cloneSnapshot(snapshot)
	return nil
}

func cloneSnapshot(s leaderboard.Snapshot) leaderboard.Snapshot {
	copied := s
	copied.Columns = append([]leaderboard.Column(nil), s.Columns...)
	copied.Rows = make([]leaderboard.Standing, 0, len(s.Rows))
	for _, row := range s.Rows {
		values := make(map[string]float64, len(row.Values))
		for k, v := range row.Values {
			values[k] = v
		}
		row.Values = values
		copied.Rows = append(copied.Rows, row)
	}
	return copied
}
