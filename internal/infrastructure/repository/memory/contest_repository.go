package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/playoff-survivor/internal/domain/contest"
)

type ContestRepository struct {
	mu       sync.RWMutex
	contests map[string]contest.Contest
	entries  map[string]map[string]struct{}
}

func NewContestRepository(seed ...contest.Contest) *ContestRepository {
	items := make(map[string]contest.Contest, len(seed))
	for _, c := range seed {
		items[c.ID] = c
	}
	return &ContestRepository{
		contests: items,
		entries:  make(map[string]map[string]struct{}),
	}
}

func (r *ContestRepository) GetByID(_ context.Context, contestID string) (contest.Contest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.contests[contestID]
	return item, ok, nil
}

func (r *ContestRepository) HasEntry(_ context.Context, contestID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[contestID][userID]
	return ok, nil
}

// AddEntry registers a user's contest entry; entry collection itself is an
// external concern, this exists for wiring and tests.
func (r *ContestRepository) AddEntry(_ context.Context, contestID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries[contestID] == nil {
		r.entries[contestID] = make(map[string]struct{})
	}
	r.entries[contestID][userID] = struct{}{}
	return nil
}

// SetStatus updates a seeded contest's status; used by tests and demo wiring.
func (r *ContestRepository) SetStatus(_ context.Context, contestID string, status contest.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.contests[contestID]
	if !ok {
		return nil
	}
	item.Status = status
	r.contests[contestID] = item
	return nil
}
