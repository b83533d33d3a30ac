package engine

import (
	"time"

	"github.com/sb362/chess-engine/internal/board"
)

// TimeControl holds the clock parameters of a "go" command.
type TimeControl struct {
	WTime, WInc time.Duration
	BTime, BInc time.Duration
	MoveTime    time.Duration
	MovesToGo   int
}

// Time returns the remaining clock time for the given color.
func (tc *TimeControl) Time(us board.Color) time.Duration {
	if us == board.White {
		return tc.WTime
	}
	return tc.BTime
}

// Inc returns the per-move increment for the given color.
func (tc *TimeControl) Inc(us board.Color) time.Duration {
	if us == board.White {
		return tc.WInc
	}
	return tc.BInc
}

// IsSuddenDeath reports whether there is no further time control.
func (tc *TimeControl) IsSuddenDeath() bool {
	return tc.MovesToGo == 0
}

// IsNonzero reports whether any clock parameter was supplied.
func (tc *TimeControl) IsNonzero() bool {
	return tc.WTime != 0 || tc.WInc != 0 || tc.BTime != 0 || tc.BInc != 0 || tc.MoveTime != 0
}

// Limits describes when a search must stop.
type Limits struct {
	TC TimeControl

	Ponder   bool
	Infinite bool
	Depth    int
	Mate     int
	Nodes    uint64
}

// KeyHistory is the ordered sequence of Zobrist keys since the last
// irreversible move (conservatively, since the game start), used for
// threefold-repetition detection.
type KeyHistory []uint64
