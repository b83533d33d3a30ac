package engine

import (
	"time"

	"github.com/sb362/chess-engine/internal/board"
)

// benchPositions covers opening, middlegame, endgame and promotion
// play so a bench run exercises every part of move generation and
// evaluation.
var benchPositions = []string{
	board.StartFEN,
	board.KiwipeteFEN,
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq -",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ -",
	"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - -",
	"6k1/6pp/8/8/8/8/5PPP/6K1 w - - 0 1",
}

// BenchResult aggregates a benchmark run.
type BenchResult struct {
	Positions int
	Depth     int
	Nodes     uint64
	Duration  time.Duration
}

// NPS returns the aggregate search speed in nodes per second.
func (r BenchResult) NPS() uint64 {
	ms := uint64(r.Duration.Milliseconds())
	return 1000 * r.Nodes / (ms + 1)
}

// Bench searches the benchmark positions to a fixed depth on the given
// thread pool and sums the node counts.
func Bench(m *MainThread, depth int) (BenchResult, error) {
	result := BenchResult{Depth: depth}

	for _, fen := range benchPositions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			return result, err
		}

		m.Initialise(pos, KeyHistory{pos.Key})

		start := time.Now()
		m.StartThinking(Limits{Depth: depth})
		m.WaitUntilSearchDone()

		result.Nodes += m.TotalNodes()
		result.Duration += time.Since(start)
		result.Positions++
	}

	return result, nil
}
