package leaderboard

import "testing"

func TestParseComputationState(t *testing.T) {
	cases := []struct {
		raw  string
		want ComputationState
	}{
		{"pending", StatePending},
		{"computed", StateComputed},
		{"error", StateError},
		{"unknown", StateUnknown},
		{"", StateUnknown},
		{"recalculating", StateUnknown},
	}
	for _, tc := range cases {
		if got := ParseComputationState(tc.raw); got != tc.want {
			t.Fatalf("parse %q: got %s want %s", tc.raw, got, tc.want)
		}
	}
}

func TestComputationState_Authoritative(t *testing.T) {
	if !StateComputed.Authoritative() {
		t.Fatal("computed must be authoritative")
	}
	for _, s := range []ComputationState{StatePending, StateError, StateUnknown} {
		if s.Authoritative() {
			t.Fatalf("%s must not be authoritative", s)
		}
	}
}
