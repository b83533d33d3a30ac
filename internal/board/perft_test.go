package board

import "testing"

// Standard perft positions with published node counts.
// https://www.chessprogramming.org/Perft_Results
var perftCases = []struct {
	name     string
	fen      string
	expected []uint64 // expected[i] is perft(i+1)
}{
	{
		name:     "startpos",
		fen:      StartFEN,
		expected: []uint64{20, 400, 8902, 197281, 4865609},
	},
	{
		name:     "kiwipete",
		fen:      KiwipeteFEN,
		expected: []uint64{48, 2039, 97862, 4085603},
	},
	{
		name:     "position3",
		fen:      "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		expected: []uint64{14, 191, 2812, 43238, 674624},
	},
	{
		name:     "position4",
		fen:      "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq -",
		expected: []uint64{6, 264, 9467, 422333},
	},
	{
		name:     "position5",
		fen:      "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ -",
		expected: []uint64{44, 1486, 62379, 2103487},
	},
	{
		name:     "promotions",
		fen:      "n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - -",
		expected: []uint64{24, 496, 9483, 182838},
	},
}

func TestPerft(t *testing.T) {
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
			}

			for depth, expected := range tc.expected {
				depth++
				if depth >= 4 && testing.Short() {
					t.Skip("skipping deep perft in short mode")
				}

				if got := Perft(pos, depth); got != expected {
					t.Errorf("perft(%d) = %d, want %d", depth, got, expected)
				}
			}
		})
	}
}

// TestPerftEnPassantPin covers the horizontal-pin en passant case: the
// capture removes two pawns from the fourth rank, exposing the king to
// the rook, so it must not be generated.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatal(err)
	}

	var ml MoveList
	pos.GenerateMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		if m := ml.Get(i); m.To() == D3 && pos.Pieces(Black, Pawn).IsSet(m.From()) {
			t.Errorf("en passant %v should be illegal (horizontal pin)", m)
		}
	}

	for depth, expected := range []uint64{6, 94} {
		if got := Perft(pos, depth+1); got != expected {
			t.Errorf("perft(%d) = %d, want %d", depth+1, got, expected)
		}
	}
}

// TestDivideSumsToPerft checks that the per-root-move breakdown adds
// up to the plain perft count.
func TestDivideSumsToPerft(t *testing.T) {
	pos, err := ParseFEN(KiwipeteFEN)
	if err != nil {
		t.Fatal(err)
	}

	var sum uint64
	total := Divide(pos, 3, func(_ Move, count uint64) {
		sum += count
	})

	if total != sum {
		t.Errorf("divide total %d != per-move sum %d", total, sum)
	}
	if want := Perft(pos, 3); total != want {
		t.Errorf("divide total %d != perft %d", total, want)
	}
}
