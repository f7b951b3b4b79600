package contest

import "context"

// Repository exposes contest settings and entry membership reads.
type Repository interface {
	GetByID(ctx context.Context, contestID string) (Contest, bool, error)
	HasEntry(ctx context.Context, contestID, userID string) (bool, error)
}
