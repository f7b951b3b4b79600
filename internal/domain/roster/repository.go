package roster

import "context"

// Repository exposes slot persistence operations. Settled reads return only
// slots from rounds whose lock window has closed.
type Repository interface {
	ListByUserAndRound(ctx context.Context, contestID, userID string, roundOrdinal int) ([]Slot, error)
	ListByContestAndRound(ctx context.Context, contestID string, roundOrdinal int) ([]Slot, error)
	ListSettledByUserAndRound(ctx context.Context, contestID, userID string, roundOrdinal int) ([]Slot, error)
	GetByPickID(ctx context.Context, contestID, pickID string) (Slot, bool, error)
	Upsert(ctx context.Context, slot Slot) error
	Delete(ctx context.Context, contestID, pickID string) (bool, error)
	MarkRoundSettled(ctx context.Context, contestID string, roundOrdinal int) error
}
