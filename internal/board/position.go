package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options as a bitmask.
type CastlingRights uint8

const (
	WhiteKingSideCastle CastlingRights = 1 << iota // K
	WhiteQueenSideCastle
	BlackKingSideCastle
	BlackQueenSideCastle

	NoCastling  CastlingRights = 0
	AllCastling CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	if cr&WhiteKingSideCastle != 0 {
		sb.WriteByte('K')
	}
	if cr&WhiteQueenSideCastle != 0 {
		sb.WriteByte('Q')
	}
	if cr&BlackKingSideCastle != 0 {
		sb.WriteByte('k')
	}
	if cr&BlackQueenSideCastle != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

// MakeCastlingRights returns the single right for a color and side.
func MakeCastlingRights(us Color, kingSide bool) CastlingRights {
	if us == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// CastlingKingDest returns the king's destination for a single right.
func CastlingKingDest(cr CastlingRights) Square {
	file := 2 // c-file
	if cr&(WhiteKingSideCastle|BlackKingSideCastle) != 0 {
		file = 6 // g-file
	}
	rank := 0
	if cr&(BlackKingSideCastle|BlackQueenSideCastle) != 0 {
		rank = 7
	}
	return NewSquare(file, rank)
}

// CastlingRookDest returns the rook's destination for a single right.
func CastlingRookDest(cr CastlingRights) Square {
	file := 3 // d-file
	if cr&(WhiteKingSideCastle|BlackKingSideCastle) != 0 {
		file = 5 // f-file
	}
	rank := 0
	if cr&(BlackKingSideCastle|BlackQueenSideCastle) != 0 {
		rank = 7
	}
	return NewSquare(file, rank)
}

// CastlingRookSquare returns the rook's origin for a single right.
func CastlingRookSquare(cr CastlingRights) Square {
	switch cr {
	case WhiteKingSideCastle:
		return H1
	case WhiteQueenSideCastle:
		return A1
	case BlackKingSideCastle:
		return H8
	case BlackQueenSideCastle:
		return A8
	}
	return NoSquare
}

// castlingRightsMask maps a square to the rights lost when a piece
// moves from or lands on it.
var castlingRightsMask = func() [64]CastlingRights {
	var mask [64]CastlingRights
	mask[A1] = WhiteQueenSideCastle
	mask[H1] = WhiteKingSideCastle
	mask[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	mask[A8] = BlackQueenSideCastle
	mask[H8] = BlackKingSideCastle
	mask[E8] = BlackKingSideCastle | BlackQueenSideCastle
	return mask
}()

// Position is an incrementally-hashed chess position. It has value
// semantics: making a move in search is a plain copy followed by
// DoMove, and there is no unmake.
type Position struct {
	// Occupancy split by color and by piece type; a square's piece is
	// the intersection of its color and type boards.
	ByColor [2]Bitboard
	ByType  [6]Bitboard

	// Zobrist hash, maintained incrementally by every mutation.
	Key uint64

	Rule50     uint8
	EnPassant  Square
	Castling   CastlingRights
	SideToMove Color

	// Derived state, recomputed after every mutation.
	Checkers Bitboard
	Pinned   Bitboard
	Blockers Bitboard

	// Half-moves played from the initial position.
	Plies uint16

	// Crazyhouse state. Unused (and zero) in standard builds.
	Crazyhouse    bool
	Hand          [12]uint8
	PromotedPawns Bitboard
}

// Clear resets the position to an empty board.
func (p *Position) Clear() {
	*p = Position{EnPassant: NoSquare}
}

// Occupied returns the bitboard of all pieces.
func (p *Position) Occupied() Bitboard {
	return p.ByColor[White] | p.ByColor[Black]
}

// Colors returns all pieces of the given color.
func (p *Position) Colors(c Color) Bitboard {
	return p.ByColor[c]
}

// Types returns all pieces of the given type.
func (p *Position) Types(pt PieceType) Bitboard {
	return p.ByType[pt]
}

// Pieces returns all pieces of the given color and type.
func (p *Position) Pieces(c Color, pt PieceType) Bitboard {
	return p.ByColor[c] & p.ByType[pt]
}

// KingSquare returns the king square of the given color.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces(c, King).LSB()
}

// IsEmpty returns true if the square is unoccupied.
func (p *Position) IsEmpty(sq Square) bool {
	return !p.Occupied().IsSet(sq)
}

// ColorOn returns the color of the piece on an occupied square.
func (p *Position) ColorOn(sq Square) Color {
	if p.ByColor[Black].IsSet(sq) {
		return Black
	}
	return White
}

// TypeOn returns the type of the piece on a square, NoPieceType if empty.
func (p *Position) TypeOn(sq Square) PieceType {
	for pt := Pawn; pt <= King; pt++ {
		if p.ByType[pt].IsSet(sq) {
			return pt
		}
	}
	return NoPieceType
}

// PieceOn returns the piece on a square, NoPiece if empty.
func (p *Position) PieceOn(sq Square) Piece {
	if p.IsEmpty(sq) {
		return NoPiece
	}
	return NewPiece(p.ColorOn(sq), p.TypeOn(sq))
}

// MovedPiece returns the piece a move displaces (the dropped piece for
// drops).
func (p *Position) MovedPiece(m Move) Piece {
	if CrazyhouseEnabled && m.IsDrop() {
		return NewPiece(p.SideToMove, m.Drop())
	}
	return p.PieceOn(m.From())
}

// IsCapture returns true if the move's destination is occupied. En
// passant is not considered a capture by this predicate.
func (p *Position) IsCapture(m Move) bool {
	if CrazyhouseEnabled && m.IsDrop() {
		return false
	}
	return !p.IsEmpty(m.To())
}

// IsCastling returns true if the move is a castling king move.
func (p *Position) IsCastling(m Move) bool {
	return FileDistance(m.From(), m.To()) == 2 && p.Pieces(p.SideToMove, King).IsSet(m.From())
}

// IsDrawByRule50 reports a draw by the fifty-move rule.
func (p *Position) IsDrawByRule50() bool {
	return p.Rule50 >= 100
}

// Fullmoves returns the current fullmove number, starting from 1.
func (p *Position) Fullmoves() int {
	black := 0
	if p.SideToMove == Black {
		black = 1
	}
	return 1 + (int(p.Plies)-black)/2
}

// setPiece places a piece on an empty square, updating the key.
func (p *Position) setPiece(sq Square, piece Piece, promotedPawn bool) {
	if CrazyhouseEnabled && promotedPawn {
		p.PromotedPawns |= SquareBB(sq)
	}
	bb := SquareBB(sq)
	p.ByType[piece.Type()] |= bb
	p.ByColor[piece.Color()] |= bb
	p.Key ^= zobrist.pieceSquare[piece][sq]
}

// removePiece removes the given piece from a square, updating the key.
func (p *Position) removePiece(sq Square, piece Piece) {
	if CrazyhouseEnabled {
		p.PromotedPawns &^= SquareBB(sq)
	}
	bb := SquareBB(sq)
	p.ByType[piece.Type()] ^= bb
	p.ByColor[piece.Color()] ^= bb
	p.Key ^= zobrist.pieceSquare[piece][sq]
}

// movePiece teleports a piece between squares, updating the key.
// Not to be confused with DoMove.
func (p *Position) movePiece(from, to Square, piece Piece) {
	mask := SquaresBB(from, to)
	if CrazyhouseEnabled && p.PromotedPawns.IsSet(from) {
		p.PromotedPawns ^= mask
	}
	p.ByType[piece.Type()] ^= mask
	p.ByColor[piece.Color()] ^= mask
	p.Key ^= zobrist.pieceSquare[piece][from]
	p.Key ^= zobrist.pieceSquare[piece][to]
}

// setEnPassant records an en passant target square, updating the key.
func (p *Position) setEnPassant(sq Square) {
	if p.EnPassant.IsValid() {
		p.Key ^= zobrist.enPassant[p.EnPassant.File()]
	}
	p.EnPassant = sq
	if p.EnPassant.IsValid() {
		p.Key ^= zobrist.enPassant[p.EnPassant.File()]
	}
}

// resetCastlingRights removes rights from the mask, updating the key.
func (p *Position) resetCastlingRights(cr CastlingRights) {
	p.Key ^= zobrist.castling[p.Castling]
	p.Castling &^= cr
	p.Key ^= zobrist.castling[p.Castling]
}

// addCastlingRights adds rights to the mask, updating the key.
func (p *Position) addCastlingRights(cr CastlingRights) {
	p.Key ^= zobrist.castling[p.Castling]
	p.Castling |= cr
	p.Key ^= zobrist.castling[p.Castling]
}

// swapSideToMove flips the side to move, updating the key.
func (p *Position) swapSideToMove() {
	p.SideToMove = p.SideToMove.Other()
	p.Key ^= zobrist.side
}

// HandCount returns how many of the given piece are in hand (crazyhouse).
func (p *Position) HandCount(piece Piece) uint8 {
	return p.Hand[piece]
}

// setHandCount sets a hand count, updating the key. Counts share keys
// modulo the hand table size; only pawn reserves can ever get there.
func (p *Position) setHandCount(piece Piece, count uint8) {
	p.Key ^= zobrist.hand[piece][p.Hand[piece]&7]
	p.Hand[piece] = count
	p.Key ^= zobrist.hand[piece][count&7]
}

func (p *Position) addToHand(piece Piece) {
	p.setHandCount(piece, p.Hand[piece]+1)
}

func (p *Position) removeFromHand(piece Piece) {
	p.setHandCount(piece, p.Hand[piece]-1)
}

// AttackersTo returns all pieces of both colors attacking a square,
// given an arbitrary occupancy.
func (p *Position) AttackersTo(sq Square, occ Bitboard) Bitboard {
	return (pawnAttackBB[Black][sq] & p.Pieces(White, Pawn)) |
		(pawnAttackBB[White][sq] & p.Pieces(Black, Pawn)) |
		(knightAttacks[sq] & p.ByType[Knight]) |
		(kingAttacks[sq] & p.ByType[King]) |
		(BishopAttacks(sq, occ) & (p.ByType[Bishop] | p.ByType[Queen])) |
		(RookAttacks(sq, occ) & (p.ByType[Rook] | p.ByType[Queen]))
}

// sliderAttackersTo restricts AttackersTo to bishop-like and rook-like
// pieces; used by pin detection and the en passant legality probe.
func (p *Position) sliderAttackersTo(sq Square, occ Bitboard) Bitboard {
	return (BishopAttacks(sq, occ) & (p.ByType[Bishop] | p.ByType[Queen])) |
		(RookAttacks(sq, occ) & (p.ByType[Rook] | p.ByType[Queen]))
}

// pinnedTo accumulates, into pinned and blockers, the pieces that are
// the sole obstruction between the piece on sq and an enemy slider.
// Same-color obstructions are pinned, opposite-color ones are blockers.
func (p *Position) pinnedTo(sq Square, pinned, blockers *Bitboard) {
	us := p.ColorOn(sq)
	friendly, enemy := p.ByColor[us], p.ByColor[us.Other()]
	occ := p.Occupied()

	candidates := p.sliderAttackersTo(sq, Empty) & enemy
	for candidates != 0 {
		csq := candidates.PopLSB()

		if maybePinned := Between(sq, csq) & occ; maybePinned.OnlyOne() {
			*pinned |= maybePinned & friendly
			*blockers |= maybePinned & enemy
		}
	}
}

// update recomputes the derived bitboards: checkers for the side to
// move, and the pin/blocker sets for both kings.
func (p *Position) update() {
	us := p.SideToMove
	p.Checkers = p.AttackersTo(p.KingSquare(us), p.Occupied()) & p.ByColor[us.Other()]

	p.Pinned, p.Blockers = 0, 0
	p.pinnedTo(p.KingSquare(us), &p.Pinned, &p.Blockers)
	p.pinnedTo(p.KingSquare(us.Other()), &p.Pinned, &p.Blockers)
}

// castlingBlocked reports whether a piece obstructs the castling path.
func (p *Position) castlingBlocked(cr CastlingRights) bool {
	us := White
	if cr&(BlackKingSideCastle|BlackQueenSideCastle) != 0 {
		us = Black
	}
	ksq := p.KingSquare(us)
	path := CastlingPath(ksq, CastlingKingDest(cr), CastlingRookSquare(cr), CastlingRookDest(cr))
	return p.Occupied()&path != 0
}

// castlingAttacked reports whether any square the king traverses is
// attacked by the opponent.
func (p *Position) castlingAttacked(cr CastlingRights) bool {
	us := White
	if cr&(BlackKingSideCastle|BlackQueenSideCastle) != 0 {
		us = Black
	}
	ksq := p.KingSquare(us)
	kto := CastlingKingDest(cr)

	d := East
	if kto > ksq {
		d = West
	}
	for sq := kto; sq != ksq; sq = sq.Add(d) {
		if p.AttackersTo(sq, p.Occupied())&p.ByColor[us.Other()] != 0 {
			return true
		}
	}
	return false
}

// CanCastle reports whether the given castling right can be exercised:
// the right is held, the path is clear, and the king's walk is safe.
func (p *Position) CanCastle(cr CastlingRights) bool {
	return p.Castling&cr != 0 && !p.castlingBlocked(cr) && !p.castlingAttacked(cr)
}

// RecomputeKey rebuilds the Zobrist key from scratch. DoMove maintains
// the key incrementally; this exists so tests can verify the
// incremental-hash law.
func (p *Position) RecomputeKey() uint64 {
	var key uint64

	occ := p.Occupied()
	for occ != 0 {
		sq := occ.PopLSB()
		key ^= zobrist.pieceSquare[p.PieceOn(sq)][sq]
	}

	if p.SideToMove == Black {
		key ^= zobrist.side
	}
	key ^= zobrist.castling[p.Castling]
	if p.EnPassant.IsValid() {
		key ^= zobrist.enPassant[p.EnPassant.File()]
	}

	if CrazyhouseEnabled {
		for piece, count := range p.Hand {
			key ^= zobrist.hand[piece][count&7]
		}
	}

	return key
}

// PawnKey returns the Zobrist subset covering only the pawns, used to
// key the pawn-structure cache.
func (p *Position) PawnKey() uint64 {
	var key uint64
	for c := White; c <= Black; c++ {
		pawns := p.Pieces(c, Pawn)
		piece := NewPiece(c, Pawn)
		for pawns != 0 {
			key ^= zobrist.pieceSquare[piece][pawns.PopLSB()]
		}
	}
	return key
}

// String returns a board diagram with the position's state, for the
// "d" debug command.
func (p *Position) String() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			if piece := p.PieceOn(sq); piece.IsValid() {
				sb.WriteString(piece.String())
			} else {
				sb.WriteByte('.')
			}
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}

	fmt.Fprintf(&sb, "Side to move:      %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling rights:   %s\n", p.Castling)
	fmt.Fprintf(&sb, "En passant square: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Halfmove clock:    %d\n", p.Rule50)
	fmt.Fprintf(&sb, "Fullmoves:         %d\n", p.Fullmoves())
	if CrazyhouseEnabled && p.Crazyhouse {
		sb.WriteString("Hand:             ")
		any := false
		for piece := WhitePawn; piece < NoPiece; piece++ {
			for i := uint8(0); i < p.Hand[piece]; i++ {
				sb.WriteByte(' ')
				sb.WriteString(piece.String())
				any = true
			}
		}
		if !any {
			sb.WriteString(" (empty)")
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "Zobrist key:       %016x\n", p.Key)

	return sb.String()
}
