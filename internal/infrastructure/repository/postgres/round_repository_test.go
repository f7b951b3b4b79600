package postgres

import (
	"math"
	"testing"
	"time"
)

func TestScheduleFromRows(t *testing.T) {
	header := roundScheduleModel{
		ContestID:        "nfl-playoffs-2026",
		PlayoffStartWeek: 19,
		Version:          math.MaxInt32 + 1,
		UpdatedAt:        time.Now(),
	}
	rows := []roundModel{
		{ContestID: header.ContestID, Ordinal: 2, Label: "Divisional", NFLWeek: 20},
		{ContestID: header.ContestID, Ordinal: 1, Label: "Wild Card", NFLWeek: 19, IsCurrent: true, IsOpen: true},
	}

	schedule := scheduleFromRows(header, rows)

	if schedule.Version != int64(math.MaxInt32)+1 {
		t.Fatalf("expected version to survive the mapping, got %d", schedule.Version)
	}
	if len(schedule.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(schedule.Rounds))
	}
	if schedule.Rounds[0].Ordinal != 1 || schedule.Rounds[1].Ordinal != 2 {
		t.Fatalf("expected rounds ordered by ordinal, got %+v", schedule.Rounds)
	}
	if !schedule.Rounds[0].IsCurrent || !schedule.Rounds[0].IsOpen {
		t.Fatalf("expected round 1 to stay current and open, got %+v", schedule.Rounds[0])
	}
}
