package round

import (
	"errors"
	"fmt"
)

const (
	// RoundCount is the number of competitive playoff rounds in a season.
	RoundCount = 4

	// maxWeekOffset caps the ordinal-to-week offset. The league calendar can
	// insert a bye/exhibition week before the final round, which bumps the
	// administrative round counter past 4; capping the offset keeps the last
	// competitive round on the correct absolute week.
	maxWeekOffset = 3
)

var (
	ErrUninitialized = errors.New("round schedule is uninitialized")
	ErrUnknownRound  = errors.New("unknown round ordinal")
	ErrNoCurrent     = errors.New("schedule has no current round")
)

// Round is one of the four sequential playoff contest periods.
type Round struct {
	Ordinal   int
	Label     string
	NFLWeek   int
	IsCurrent bool
	IsOpen    bool
}

// Schedule holds a contest's four rounds plus the clock anchoring them to
// absolute NFL weeks. IsCurrent/IsOpen change only through explicit
// administrative transitions, never implicitly.
type Schedule struct {
	ContestID        string
	PlayoffStartWeek int
	Rounds           []Round
	Version          int64
}

var roundLabels = [RoundCount]string{"Wild Card", "Divisional", "Conference", "Championship"}

// NewSchedule builds a fresh four-round schedule anchored at startWeek, with
// round 1 current and closed until an explicit unlock.
func NewSchedule(contestID string, startWeek int) (Schedule, error) {
	if contestID == "" {
		return Schedule{}, fmt.Errorf("contest id is required")
	}
	if startWeek <= 0 {
		return Schedule{}, fmt.Errorf("%w: playoff start week must be positive", ErrUninitialized)
	}

	rounds := make([]Round, 0, RoundCount)
	for i := 0; i < RoundCount; i++ {
		rounds = append(rounds, Round{
			Ordinal:   i + 1,
			Label:     roundLabels[i],
			NFLWeek:   startWeek + i,
			IsCurrent: i == 0,
			IsOpen:    false,
		})
	}

	return Schedule{
		ContestID:        contestID,
		PlayoffStartWeek: startWeek,
		Rounds:           rounds,
		Version:          1,
	}, nil
}

// Validate reports structural problems. An unset start week is fatal for every
// downstream consumer: edits are forbidden until the clock is initialized.
func (s Schedule) Validate() error {
	if s.ContestID == "" {
		return fmt.Errorf("schedule contest id is required")
	}
	if s.PlayoffStartWeek <= 0 {
		return fmt.Errorf("%w: playoff start week is not set", ErrUninitialized)
	}
	if len(s.Rounds) != RoundCount {
		return fmt.Errorf("%w: expected %d rounds, got %d", ErrUninitialized, RoundCount, len(s.Rounds))
	}

	currentCount := 0
	for i, r := range s.Rounds {
		if r.Ordinal != i+1 {
			return fmt.Errorf("round ordinals must be contiguous from 1: got %d at index %d", r.Ordinal, i)
		}
		if r.IsCurrent {
			currentCount++
		}
	}
	if currentCount != 1 {
		return fmt.Errorf("%w: exactly one round must be current, got %d", ErrNoCurrent, currentCount)
	}

	return nil
}

// Current returns the single current round.
func (s Schedule) Current() (Round, error) {
	if err := s.Validate(); err != nil {
		return Round{}, err
	}
	for _, r := range s.Rounds {
		if r.IsCurrent {
			return r, nil
		}
	}
	return Round{}, ErrNoCurrent
}

// ByOrdinal returns the round with the given ordinal.
func (s Schedule) ByOrdinal(ordinal int) (Round, error) {
	for _, r := range s.Rounds {
		if r.Ordinal == ordinal {
			return r, nil
		}
	}
	return Round{}, fmt.Errorf("%w: %d", ErrUnknownRound, ordinal)
}

// EffectiveNFLWeek maps a round ordinal to its absolute NFL week. The offset
// is capped so an over-incremented ordinal still resolves to the final
// competitive week.
func (s Schedule) EffectiveNFLWeek(ordinal int) (int, error) {
	if s.PlayoffStartWeek <= 0 {
		return 0, fmt.Errorf("%w: playoff start week is not set", ErrUninitialized)
	}
	if ordinal < 1 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownRound, ordinal)
	}

	offset := ordinal - 1
	if offset > maxWeekOffset {
		offset = maxWeekOffset
	}
	return s.PlayoffStartWeek + offset, nil
}

// Advance freezes the current round and makes the next one current. The new
// round stays closed until an explicit unlock. Advancing past the last round
// is an error.
func (s *Schedule) Advance() error {
	current, err := s.Current()
	if err != nil {
		return err
	}
	if current.Ordinal >= RoundCount {
		return fmt.Errorf("cannot advance past round %d", RoundCount)
	}

	for i := range s.Rounds {
		switch s.Rounds[i].Ordinal {
		case current.Ordinal:
			s.Rounds[i].IsCurrent = false
			s.Rounds[i].IsOpen = false
		case current.Ordinal + 1:
			s.Rounds[i].IsCurrent = true
			s.Rounds[i].IsOpen = false
		}
	}
	s.Version++
	return nil
}

// SetOpen toggles the edit window of the current round.
func (s *Schedule) SetOpen(open bool) error {
	current, err := s.Current()
	if err != nil {
		return err
	}
	for i := range s.Rounds {
		if s.Rounds[i].Ordinal == current.Ordinal {
			s.Rounds[i].IsOpen = open
		}
	}
	s.Version++
	return nil
}
