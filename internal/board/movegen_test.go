package board

import "testing"

var movegenFENs = []string{
	StartFEN,
	KiwipeteFEN,
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq -",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ -",
	"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - -",
	"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", // in check
	"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",                             // en passant pin
	"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
}

// TestGeneratedMovesAreLegal verifies that every generated move leaves
// the mover's king unattacked, that the kings never end up adjacent,
// and that no move is generated twice.
func TestGeneratedMovesAreLegal(t *testing.T) {
	for _, fen := range movegenFENs {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}

		us := pos.SideToMove

		var ml MoveList
		pos.GenerateMoves(&ml)

		seen := make(map[Move]bool)
		for i := 0; i < ml.Len(); i++ {
			m := ml.Get(i)

			if seen[m] {
				t.Errorf("%s: duplicate move %v", fen, m)
			}
			seen[m] = true

			next := *pos
			next.DoMove(m)

			ksq := next.KingSquare(us)
			if next.AttackersTo(ksq, next.Occupied())&next.ByColor[us.Other()] != 0 {
				t.Errorf("%s: move %v leaves own king attacked", fen, m)
			}

			if KingAttacks(ksq).IsSet(next.KingSquare(us.Other())) {
				t.Errorf("%s: move %v puts kings adjacent", fen, m)
			}
		}
	}
}

// TestOnlyMoverCanBeChecked: after any legal move, only the new side
// to move may be in check.
func TestOnlyMoverCanBeChecked(t *testing.T) {
	pos, err := ParseFEN(KiwipeteFEN)
	if err != nil {
		t.Fatal(err)
	}

	var ml MoveList
	pos.GenerateMoves(&ml)

	for i := 0; i < ml.Len(); i++ {
		next := *pos
		next.DoMove(ml.Get(i))

		them := next.SideToMove.Other()
		if next.AttackersTo(next.KingSquare(them), next.Occupied())&next.ByColor[next.SideToMove] != 0 {
			t.Errorf("move %v leaves the side that just moved in check", ml.Get(i))
		}
	}
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	// Knight on f6 and rook on e1 both check the king on e8.
	pos, err := ParseFEN("4k3/8/5N2/8/8/8/8/4RK2 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if !pos.Checkers.MoreThanOne() {
		t.Fatalf("expected double check, checkers = %v", pos.Checkers)
	}

	var ml MoveList
	pos.GenerateMoves(&ml)

	for i := 0; i < ml.Len(); i++ {
		if m := ml.Get(i); m.From() != E8 {
			t.Errorf("double check admitted non-king move %v", m)
		}
	}
}

func TestCastlingLegality(t *testing.T) {
	cases := []struct {
		fen  string
		move Move
		want bool
	}{
		// Both sides clear.
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", NewMove(E1, G1), true},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", NewMove(E1, C1), true},
		// The f1 square is attacked by the bishop on a6.
		{"r3k2r/8/b7/8/8/8/8/R3K2R w KQkq - 0 1", NewMove(E1, G1), false},
		// Path blocked by own knight.
		{"r3k2r/8/8/8/8/8/8/R3K1NR w KQkq - 0 1", NewMove(E1, G1), false},
		// No rights after the rook moved away.
		{"r3k2r/8/8/8/8/8/8/R3K2R w Qkq - 0 1", NewMove(E1, G1), false},
	}

	for _, tc := range cases {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
		}

		var ml MoveList
		pos.GenerateMoves(&ml)

		if got := ml.Contains(tc.move); got != tc.want {
			t.Errorf("%s: castling %v generated = %v, want %v", tc.fen, tc.move, got, tc.want)
		}
	}
}

func TestInsufficientMaterial(t *testing.T) {
	cases := []struct {
		fen  string
		want bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},         // K vs K
		{"4k3/8/8/8/8/8/8/2B1K3 w - - 0 1", true},       // K+B vs K
		{"4k3/8/8/8/8/8/8/1N2K3 w - - 0 1", true},       // K+N vs K
		{"4kn2/8/8/8/8/8/8/1N2K3 w - - 0 1", false},     // minors both sides
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},      // pawn present
		{"4k3/8/8/8/8/8/8/R3K3 w - - 0 1", false},       // rook present
		{StartFEN, false},
	}

	for _, tc := range cases {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
		}
		if got := pos.IsInsufficientMaterial(); got != tc.want {
			t.Errorf("IsInsufficientMaterial(%q) = %v, want %v", tc.fen, got, tc.want)
		}
	}
}

func TestSelectReturnsBestFirst(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		t.Fatal(err)
	}

	var ml MoveList
	pos.GenerateMoves(&ml)

	for i := 0; i < ml.Len(); i++ {
		ml.SetValue(i, int16(i*7%ml.Len()))
	}

	prev := int16(32767)
	for i := 0; i < ml.Len(); i++ {
		m := ml.Select()
		// Find the value this move was assigned.
		var v int16
		for j := 0; j < ml.Len(); j++ {
			if ml.entries[j].Move == m {
				v = ml.entries[j].Value
				break
			}
		}
		if v > prev {
			t.Fatalf("selection out of order: %d after %d", v, prev)
		}
		prev = v
	}
}
