package board

import "testing"

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
		"6k1/6pp/8/8/8/8/5PPP/6K1 b - - 12 40",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}

		if got := pos.FEN(); got != fen {
			t.Errorf("FEN round trip: got %q, want %q", got, fen)
		}

		// Parsing the output must reproduce the identical position.
		again, err := ParseFEN(pos.FEN())
		if err != nil {
			t.Fatalf("reparse %q: %v", pos.FEN(), err)
		}
		if *again != *pos {
			t.Errorf("positions differ after round trip of %q", fen)
		}
	}
}

func TestFENOptionalCounters(t *testing.T) {
	pos, err := ParseFEN(KiwipeteFEN)
	if err != nil {
		t.Fatal(err)
	}

	if pos.Rule50 != 0 {
		t.Errorf("Rule50 = %d, want 0", pos.Rule50)
	}
	if pos.Fullmoves() != 1 {
		t.Errorf("Fullmoves() = %d, want 1", pos.Fullmoves())
	}
}

func TestFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", // bad side
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // rank overflow
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w AHah - 0 1", // FRC castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq zz 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
	}

	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q): expected error", fen)
		}
	}
}

func TestStartposState(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		t.Fatal(err)
	}

	if pos.SideToMove != White {
		t.Errorf("side to move = %v, want white", pos.SideToMove)
	}
	if pos.Castling != AllCastling {
		t.Errorf("castling = %v, want KQkq", pos.Castling)
	}
	if pos.EnPassant != NoSquare {
		t.Errorf("en passant = %v, want -", pos.EnPassant)
	}
	if pos.KingSquare(White) != E1 || pos.KingSquare(Black) != E8 {
		t.Error("kings misplaced")
	}
	if pos.Occupied().PopCount() != 32 {
		t.Errorf("occupancy = %d pieces, want 32", pos.Occupied().PopCount())
	}
	if pos.Checkers != 0 {
		t.Error("startpos should not be check")
	}
}

// TestMoveTextRoundTrip checks parseMove(formatMove(m)) == m for every
// legal move in a mix of positions.
func TestMoveTextRoundTrip(t *testing.T) {
	for _, fen := range movegenFENs {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}

		var ml MoveList
		pos.GenerateMoves(&ml)

		for i := 0; i < ml.Len(); i++ {
			m := ml.Get(i)
			if got := ParseMove(m.String()); got != m {
				t.Errorf("%s: ParseMove(%q) = %v, want %v", fen, m.String(), got, m)
			}
		}
	}
}

func TestParseMoveInvalid(t *testing.T) {
	for _, text := range []string{"", "0000", "e2", "e2e9", "i2i4", "e7e8x", "e2e4qq"} {
		if m := ParseMove(text); m.IsValid() {
			t.Errorf("ParseMove(%q) = %v, want invalid", text, m)
		}
	}
}
