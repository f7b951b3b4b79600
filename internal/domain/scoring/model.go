package scoring

// PlayerGameStat is one player's stat line from the live feed: in-progress
// while IsLive, terminal once GameFinal. The stat-to-point translation is the
// feed's concern; Points arrives already converted.
type PlayerGameStat struct {
	PlayerID  string
	Points    float64
	IsLive    bool
	GameFinal bool
}

// ScoreUpdate is the merged per-slot result of one refresh pass.
// FinalPoints = BasePoints × the slot's multiplier, applied uniformly
// including to negative base values; no clamping.
type ScoreUpdate struct {
	PickID      string
	BasePoints  float64
	FinalPoints float64
	IsLive      bool
	GameLocked  bool
}
