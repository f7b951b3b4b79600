package round

// LockState classifies a selected round relative to the current one. Only
// LockStateCurrentOpen permits roster mutations: no future pre-staging, no
// retroactive edits. Once a round stops being current its roster is frozen
// forever.
type LockState string

const (
	LockStatePastLocked    LockState = "past_locked"
	LockStateCurrentOpen   LockState = "current_open"
	LockStateCurrentLocked LockState = "current_locked"
	LockStateFutureLocked  LockState = "future_locked"
)

// ResolveLockState is a pure decision table over (selected, current).
func ResolveLockState(selected, current Round) LockState {
	switch {
	case selected.Ordinal < current.Ordinal:
		return LockStatePastLocked
	case selected.Ordinal > current.Ordinal:
		return LockStateFutureLocked
	case current.IsOpen:
		return LockStateCurrentOpen
	default:
		return LockStateCurrentLocked
	}
}

// AllowsRosterEdits reports whether add/remove operations are permitted.
func (s LockState) AllowsRosterEdits() bool {
	return s == LockStateCurrentOpen
}
