package leaderboard

import "context"

// Repository stores one snapshot per contest, replaced wholesale.
type Repository interface {
	Get(ctx context.Context, contestID string) (Snapshot, bool, error)
	Replace(ctx context.Context, snapshot Snapshot) error
}
