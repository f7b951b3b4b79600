package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/playoff-survivor/internal/domain/roster"
)

type RosterRepository struct {
	mu    sync.RWMutex
	slots map[string]map[string]roster.Slot
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{slots: make(map[string]map[string]roster.Slot)}
}

func (r *RosterRepository) ListByUserAndRound(_ context.Context, contestID, userID string, roundOrdinal int) ([]roster.Slot, error) {
	return r.list(contestID, func(s roster.Slot) bool {
		return s.UserID == userID && s.RoundOrdinal == roundOrdinal
	}), nil
}

func (r *RosterRepository) ListByContestAndRound(_ context.Context, contestID string, roundOrdinal int) ([]roster.Slot, error) {
	return r.list(contestID, func(s roster.Slot) bool {
		return s.RoundOrdinal == roundOrdinal
	}), nil
}

func (r *RosterRepository) ListSettledByUserAndRound(_ context.Context, contestID, userID string, roundOrdinal int) ([]roster.Slot, error) {
	return r.list(contestID, func(s roster.Slot) bool {
		return s.UserID == userID && s.RoundOrdinal == roundOrdinal && s.Settled
	}), nil
}

func (r *RosterRepository) GetByPickID(_ context.Context, contestID, pickID string) (roster.Slot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, ok := r.slots[contestID][pickID]
	return slot, ok, nil
}

func (r *RosterRepository) Upsert(_ context.Context, slot roster.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slots[slot.ContestID] == nil {
		r.slots[slot.ContestID] = make(map[string]roster.Slot)
	}
	r.slots[slot.ContestID][slot.PickID] = slot
	return nil
}

func (r *RosterRepository) Delete(_ context.Context, contestID, pickID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[contestID][pickID]; !ok {
		return false, nil
	}
	delete(r.slots[contestID], pickID)
	return true, nil
}

func (r *RosterRepository) MarkRoundSettled(_ context.Context, contestID string, roundOrdinal int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for pickID, slot := range r.slots[contestID] {
		if slot.RoundOrdinal != roundOrdinal {
			continue
		}
		slot.Settled = true
		slot.Locked = true
		slot.IsLive = false
		r.slots[contestID][pickID] = slot
	}
	return nil
}

func (r *RosterRepository) list(contestID string, match func(roster.Slot) bool) []roster.Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Slot, 0)
	for _, slot := range r.slots[contestID] {
		if match(slot) {
			out = append(out, slot)
		}
	}
	// Map iteration order is random; keep reads deterministic.
	sort.Slice(out, func(i, j int) bool { return out[i].PickID < out[j].PickID })
	return out
}
