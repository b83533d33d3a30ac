package engine

import (
	"testing"
	"time"

	"github.com/sb362/chess-engine/internal/board"
)

// searchFEN runs a depth-limited search and returns the main thread.
func searchFEN(t *testing.T, fen string, limits Limits) *MainThread {
	t.Helper()

	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}

	tt := NewTranspositionTable(DefaultTTSize)
	m := NewMainThread(tt)
	t.Cleanup(m.Close)

	m.Initialise(pos, KeyHistory{pos.Key})
	m.StartThinking(limits)
	m.WaitUntilSearchDone()

	return m
}

func TestSearchDepthOneReturnsLegalMove(t *testing.T) {
	m := searchFEN(t, board.StartFEN, Limits{Depth: 1})

	if m.DepthReached() < 1 {
		t.Fatalf("depth reached = %d, want >= 1", m.DepthReached())
	}

	pv := m.PrincipalVariation()
	if len(pv) == 0 {
		t.Fatal("empty principal variation")
	}

	pos, _ := board.ParseFEN(board.StartFEN)
	var ml board.MoveList
	pos.GenerateMoves(&ml)

	if !ml.Contains(pv[0]) {
		t.Errorf("bestmove %v is not one of the %d legal moves", pv[0], ml.Len())
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	// Back-rank mate: Ra8#.
	m := searchFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", Limits{Depth: 4})

	pv := m.PrincipalVariation()
	if len(pv) == 0 {
		t.Fatal("empty principal variation")
	}
	if pv[0] != board.NewMove(board.A1, board.A8) {
		t.Errorf("bestmove = %v, want a1a8", pv[0])
	}
	if m.BestValue() != MateIn(1) {
		t.Errorf("value = %d, want mate in 1 (%d)", m.BestValue(), MateIn(1))
	}
}

func TestSearchEvadesCheck(t *testing.T) {
	// Black is in check from the bishop on b5 and must interpose or
	// step aside; whatever comes back has to be a legal evasion.
	fen := "rnbqkbnr/ppp1pppp/8/1B1p4/4P3/8/PPPP1PPP/RNBQK1NR b KQkq - 1 2"
	m := searchFEN(t, fen, Limits{Depth: 1})

	pv := m.PrincipalVariation()
	if len(pv) == 0 {
		t.Fatal("empty principal variation")
	}

	pos, _ := board.ParseFEN(fen)
	var ml board.MoveList
	pos.GenerateMoves(&ml)
	if !ml.Contains(pv[0]) {
		t.Errorf("bestmove %v is not a legal evasion", pv[0])
	}
}

func TestSearchMatedAtRoot(t *testing.T) {
	// Fool's mate: white is checkmated; the search must report mate
	// with a null bestmove, and never crash.
	m := searchFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
		Limits{Depth: 3})

	if len(m.PrincipalVariation()) != 0 {
		t.Errorf("mated root should have no PV, got %v", m.PrincipalVariation())
	}
}

func TestSearchThreefoldIsDrawish(t *testing.T) {
	pos, err := board.ParseFEN(board.StartFEN)
	if err != nil {
		t.Fatal(err)
	}

	history := KeyHistory{pos.Key}
	for _, text := range []string{
		"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8",
	} {
		pos.DoMove(board.ParseMove(text))
		history = append(history, pos.Key)
	}

	tt := NewTranspositionTable(DefaultTTSize)
	m := NewMainThread(tt)
	t.Cleanup(m.Close)

	m.Initialise(pos, history)
	m.StartThinking(Limits{Depth: 8})
	m.WaitUntilSearchDone()

	if v := m.BestValue(); v < -1 || v > 1 {
		t.Errorf("threefold value = %d, want in [-1, 1]", v)
	}
}

func TestSearchSymmetricEndgameIsBalanced(t *testing.T) {
	// Mirrored pawn structures: nobody should be winning.
	m := searchFEN(t, "6k1/5ppp/8/8/8/8/5PPP/6K1 w - - 0 1", Limits{Depth: 4})

	if len(m.PrincipalVariation()) < 1 {
		t.Error("expected a principal variation")
	}
	if v := m.BestValue(); v < -2*TempoBonus || v > 2*TempoBonus {
		t.Errorf("symmetric endgame value = %d, want near zero", v)
	}
	if IsMate(m.BestValue()) {
		t.Error("symmetric endgame must not be scored as mate")
	}
}

func TestSearchKPvKNeverMate(t *testing.T) {
	m := searchFEN(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", Limits{Depth: 10})

	if v := m.BestValue(); v <= 0 {
		t.Errorf("K+P vs K value = %d, want positive", v)
	}
	if IsMate(m.BestValue()) {
		t.Errorf("K+P vs K must not be scored as mate, got %d", m.BestValue())
	}
}

func TestSearchRespectsNodeLimit(t *testing.T) {
	m := searchFEN(t, board.KiwipeteFEN, Limits{Nodes: 20000, Depth: 30})

	// A small overshoot within one node-limit check is fine; an order
	// of magnitude is not.
	if nodes := m.TotalNodes(); nodes > 200000 {
		t.Errorf("searched %d nodes against a 20000 node limit", nodes)
	}
}

func TestStopBoundedLatency(t *testing.T) {
	pos, err := board.ParseFEN(board.KiwipeteFEN)
	if err != nil {
		t.Fatal(err)
	}

	tt := NewTranspositionTable(DefaultTTSize)
	m := NewMainThread(tt)
	t.Cleanup(m.Close)

	m.Initialise(pos, KeyHistory{pos.Key})
	m.StartThinking(Limits{Infinite: true})

	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	m.StopThinking()
	m.WaitUntilSearchDone()

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("stop took %v, want prompt unwind", elapsed)
	}
}

func TestFailHardWindow(t *testing.T) {
	// Direct search calls must stay within the alpha-beta window.
	pos, err := board.ParseFEN(board.KiwipeteFEN)
	if err != nil {
		t.Fatal(err)
	}

	tt := NewTranspositionTable(DefaultTTSize)
	m := NewMainThread(tt)
	t.Cleanup(m.Close)
	m.Initialise(pos, KeyHistory{pos.Key})

	for _, window := range [][2]int{{-50, 50}, {-1, 1}, {-500, -400}, {100, 300}} {
		alpha, beta := window[0], window[1]

		var pv []board.Move
		value := m.search(&m.rootPosition, alpha, beta, 3, 0, &pv)

		if value < alpha || value > beta {
			t.Errorf("search(%d, %d) = %d, outside the window", alpha, beta, value)
		}
	}
}

func TestQSearchStandPatFloor(t *testing.T) {
	pos, err := board.ParseFEN(board.KiwipeteFEN)
	if err != nil {
		t.Fatal(err)
	}

	tt := NewTranspositionTable(DefaultTTSize)
	m := NewMainThread(tt)
	t.Cleanup(m.Close)
	m.Initialise(pos, KeyHistory{pos.Key})

	staticEval := Evaluate(&m.rootPosition, m.pawnCache.ProbeOrAssign(&m.rootPosition))

	var pv []board.Move
	value := m.qsearch(&m.rootPosition, -Infinite, Infinite, 0, &pv)

	if value < staticEval {
		t.Errorf("qsearch = %d below stand-pat %d", value, staticEval)
	}
}
