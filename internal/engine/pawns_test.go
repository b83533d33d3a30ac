package engine

import (
	"testing"

	"github.com/sb362/chess-engine/internal/board"
)

func pawnEntryFor(t *testing.T, fen string) (*board.Position, PawnEntry) {
	t.Helper()

	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos, makePawnEntry(pos)
}

func TestPawnStructureSymmetric(t *testing.T) {
	_, entry := pawnEntryFor(t, board.StartFEN)

	if entry.Eval(board.White) != entry.Eval(board.Black) {
		t.Errorf("startpos pawn evals differ: %d vs %d",
			entry.Eval(board.White), entry.Eval(board.Black))
	}
	if entry.Passed() != 0 {
		t.Error("startpos has no passed pawns")
	}
}

func TestPassedPawnDetection(t *testing.T) {
	// The white e5 pawn is passed; the black a7 pawn is passed; the
	// white h2 pawn is not (blocked by h7).
	pos, entry := pawnEntryFor(t, "4k3/p6p/8/4P3/8/8/7P/4K3 w - - 0 1")

	if !entry.Passed().IsSet(board.E5) {
		t.Error("e5 should be passed")
	}
	if !entry.Passed().IsSet(board.A7) {
		t.Error("a7 should be passed")
	}
	if entry.Passed().IsSet(board.H2) {
		t.Error("h2 is not passed")
	}

	_ = pos
}

func TestDoubledAndIsolatedPenalties(t *testing.T) {
	// White: doubled, isolated, passed a-pawns; black has no pawns.
	// Each pawn collects the isolated penalty, the passed bonus and
	// its square value; the file collects one doubled penalty.
	_, entry := pawnEntryFor(t, "4k3/8/8/8/8/P7/P7/4K3 w - - 0 1")

	want := pawnDoubled + 2*pawnIsolated + 2*pawnPassed +
		pawnSquareValue(board.White, board.A2) + pawnSquareValue(board.White, board.A3)

	if got := entry.Eval(board.White); got != want {
		t.Errorf("white pawn eval = %d, want %d", got, want)
	}
	if got := entry.Eval(board.Black); got != 0 {
		t.Errorf("black pawn eval = %d, want 0", got)
	}
}

func TestTripledPenaltyExceedsDoubled(t *testing.T) {
	_, doubled := pawnEntryFor(t, "4k3/8/8/8/8/P7/P7/4K3 w - - 0 1")
	_, tripled := pawnEntryFor(t, "4k3/8/8/8/P7/P7/P7/4K3 w - - 0 1")

	perFileDoubled := doubled.Eval(board.White) -
		2*(pawnIsolated+pawnPassed) -
		pawnSquareValue(board.White, board.A2) - pawnSquareValue(board.White, board.A3)
	perFileTripled := tripled.Eval(board.White) -
		3*(pawnIsolated+pawnPassed) -
		pawnSquareValue(board.White, board.A2) - pawnSquareValue(board.White, board.A3) -
		pawnSquareValue(board.White, board.A4)

	if perFileDoubled != pawnDoubled {
		t.Errorf("doubled penalty = %d, want %d", perFileDoubled, pawnDoubled)
	}
	if perFileTripled != pawnTripled {
		t.Errorf("tripled penalty = %d, want %d", perFileTripled, pawnTripled)
	}
}

func TestConnectedBonus(t *testing.T) {
	// White pawns d4/e5 are connected; Black has no pawns.
	_, entry := pawnEntryFor(t, "4k3/8/8/4P3/3P4/8/8/4K3 w - - 0 1")

	if entry.Eval(board.White) <= 0 {
		t.Errorf("connected passed pawns should score positive, got %d", entry.Eval(board.White))
	}
}

func TestPawnCacheHit(t *testing.T) {
	cache := NewPawnCache()
	pos, err := board.ParseFEN(board.StartFEN)
	if err != nil {
		t.Fatal(err)
	}

	first := cache.ProbeOrAssign(pos)
	second := cache.ProbeOrAssign(pos)

	if first != second {
		t.Error("second probe did not hit the cached entry")
	}
	if cache.HitRate() == 0 {
		t.Error("hit rate should be nonzero after a repeat probe")
	}

	// Same pawn structure, different piece placement: still a hit.
	moved, err := board.ParseFEN("rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq - 1 1")
	if err != nil {
		t.Fatal(err)
	}
	if cache.ProbeOrAssign(moved) != first {
		t.Error("pawn key must ignore non-pawn placement")
	}
}
