package leaderboard

import "time"

// ComputationState marks leaderboard data freshness. Only StateComputed rows
// are authoritative; consumers must not render any other state as final
// standings. StateUnknown is the forward-compatibility fallback for values a
// client does not recognize.
type ComputationState string

const (
	StatePending  ComputationState = "pending"
	StateComputed ComputationState = "computed"
	StateError    ComputationState = "error"
	StateUnknown  ComputationState = "unknown"
)

// ParseComputationState degrades unrecognized values to StateUnknown instead
// of guessing.
func ParseComputationState(raw string) ComputationState {
	switch ComputationState(raw) {
	case StatePending, StateComputed, StateError:
		return ComputationState(raw)
	default:
		return StateUnknown
	}
}

// Authoritative reports whether rows under this state may be shown as final.
func (s ComputationState) Authoritative() bool {
	return s == StateComputed
}

// Column describes one value column in a snapshot.
type Column struct {
	Key   string
	Label string
}

// Standing is one user's row. Rows are regenerated wholesale per computation
// cycle and replaced atomically as a set, never partially mutated.
type Standing struct {
	UserID       string
	Rank         int
	Values       map[string]float64
	PayoutAmount float64
}

// Snapshot is one generation of contest standings.
type Snapshot struct {
	ContestID   string
	State       ComputationState
	GeneratedAt *time.Time
	Columns     []Column
	Rows        []Standing
}

// PendingSnapshot is the placeholder while a generation is computing.
func PendingSnapshot(contestID string) Snapshot {
	return Snapshot{ContestID: contestID, State: StatePending}
}
