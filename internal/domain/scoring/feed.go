package scoring

import (
	"context"
	"errors"
)

// ErrFeedUnavailable marks a transient feed fault, safe to retry with backoff.
var ErrFeedUnavailable = errors.New("live stat feed unavailable")

// Feed is the opaque live game-stat collaborator, polled per NFL week.
type Feed interface {
	FetchLiveStats(ctx context.Context, nflWeek int) ([]PlayerGameStat, error)
}
