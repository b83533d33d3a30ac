package engine

import "github.com/sb362/chess-engine/internal/board"

// TempoBonus is credited to the side to move.
const TempoBonus = 29

// mobilityWeight scores each safe attack square per piece type.
// Pawns, queens and kings are not counted.
var mobilityWeight = [6]int{0, 4, 3, 2, 0, 0}

// Evaluate statically scores the position in centipawns from the side
// to move's perspective: material, cached pawn structure, tempo and
// minor/rook mobility. The caller guarantees the side to move is not
// in check (quiescence only stands pat outside check).
func Evaluate(p *board.Position, pawnEntry *PawnEntry) int {
	us := p.SideToMove
	them := us.Other()

	value := TempoBonus

	for pt := board.Pawn; pt <= board.Queen; pt++ {
		value += board.PieceValue[pt] * p.Pieces(us, pt).PopCount()
		value -= board.PieceValue[pt] * p.Pieces(them, pt).PopCount()
	}

	value += pawnEntry.Eval(us)
	value -= pawnEntry.Eval(them)

	value += mobility(p, us)
	value -= mobility(p, them)

	return clamp(value, -32000, 32000)
}

// mobility counts, per piece type weight, the knight/bishop/rook
// attacks into squares that are neither occupied by friendly pieces
// nor covered by enemy pawns.
func mobility(p *board.Position, us board.Color) int {
	them := us.Other()
	occ := p.Occupied()
	safe := ^p.Colors(us) &^ board.PawnAttacksBB(them, p.Pieces(them, board.Pawn))

	value := 0
	for pt := board.Knight; pt <= board.Rook; pt++ {
		for bb := p.Pieces(us, pt); bb != 0; {
			from := bb.PopLSB()
			attacks := board.PieceAttacks(pt, from, occ) & safe
			value += mobilityWeight[pt] * attacks.PopCount()
		}
	}
	return value
}
