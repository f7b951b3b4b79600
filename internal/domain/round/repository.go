package round

import "context"

// Repository exposes schedule persistence operations.
type Repository interface {
	GetSchedule(ctx context.Context, contestID string) (Schedule, bool, error)
	SaveSchedule(ctx context.Context, schedule Schedule) error
}
