package board

import (
	"fmt"
	"strings"
)

// Move is a compact 16-bit move representation.
//
// Bits 0-5 store the source square. Bits 6-12 store the destination
// square, with one extra bit so NoSquare (64) is representable. Bits
// 13-15 store a piece type, used for promotions and (in crazyhouse)
// drops.
//
//	Invalid moves:         !Move.IsValid()
//	Non-promotions/drops:  From() != To(), promotion field invalid
//	Promotions:            From() != To(), promotion field valid
//	Drops:                 From() == To(), drop field valid
//
// Castling is encoded as a king move whose file distance is two; en
// passant is recognised from the position's en passant square. Callers
// should use the constructors and predicates, never the raw bits.
type Move uint16

// NoMove is the invalid/null move ("0000" in UCI notation).
const NoMove = Move(uint16(NoSquare)<<6 | uint16(NoPieceType)<<13)

func makeMove(from, to Square, pt PieceType) Move {
	return Move(uint16(from)&0x3f | (uint16(to)&0x7f)<<6 | (uint16(pt)&0x7)<<13)
}

// NewMove creates a normal (non-promotion, non-drop) move.
func NewMove(from, to Square) Move {
	return makeMove(from, to, NoPieceType)
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promotion PieceType) Move {
	return makeMove(from, to, promotion)
}

// NewDrop creates a crazyhouse drop of the given piece type.
func NewDrop(to Square, drop PieceType) Move {
	return makeMove(to, to, drop)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3f)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x7f)
}

// Promotion returns the promotion piece type, NoPieceType if none.
func (m Move) Promotion() PieceType {
	return PieceType((m >> 13) & 0x7)
}

// Drop returns the dropped piece type; alias of Promotion.
func (m Move) Drop() PieceType {
	return m.Promotion()
}

// IsValid returns true unless this is the invalid/null move.
func (m Move) IsValid() bool {
	return m.To().IsValid()
}

// IsPromotion returns true for promotion moves.
func (m Move) IsPromotion() bool {
	return m.Promotion().IsValid() && m.From() != m.To()
}

// IsDrop returns true for crazyhouse drops.
func (m Move) IsDrop() bool {
	return m.Drop().IsValid() && m.From() == m.To()
}

// String returns the UCI text for the move: "e2e4", "e7e8q", "N@f3",
// or "0000" for the invalid move.
func (m Move) String() string {
	if !m.IsValid() {
		return "0000"
	}
	if CrazyhouseEnabled && m.IsDrop() {
		return fmt.Sprintf("%c@%s", m.Drop().UpperChar(), m.To())
	}
	if m.IsPromotion() {
		return fmt.Sprintf("%s%s%c", m.From(), m.To(), m.Promotion().Char())
	}
	return m.From().String() + m.To().String()
}

// ParseMove parses UCI move text. This is purely textual: castling
// arrives as the king's two-square move and en passant as a plain pawn
// capture, both recognised later when the move is applied. Malformed
// text yields NoMove.
func ParseMove(s string) Move {
	if s == "0000" || (len(s) != 4 && len(s) != 5) {
		return NoMove
	}

	if CrazyhouseEnabled && len(s) == 4 && s[1] == '@' {
		drop := PieceTypeFromChar(s[0])
		if !drop.IsValid() || s[0] != drop.UpperChar() {
			return NoMove
		}
		to, err := ParseSquare(s[2:4])
		if err != nil {
			return NoMove
		}
		return NewDrop(to, drop)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove
	}

	promotion := NoPieceType
	if len(s) == 5 {
		promotion = PieceTypeFromChar(s[4])
		if promotion < Knight || promotion > Queen || s[4] != promotion.Char() {
			return NoMove
		}
	}

	return makeMove(from, to, promotion)
}

// FormatVariation renders a move sequence as space-separated UCI text.
func FormatVariation(moves []Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// MoveEntry is a move with its ordering value.
type MoveEntry struct {
	Move  Move
	Value int16
}

// MoveList is a bounded list of moves with ordering values. Moves are
// generated in bulk and then consumed in best-first order by Select,
// which performs an in-place partial selection sort.
type MoveList struct {
	entries [MaxMoves]MoveEntry
	top     int
	cur     int
}

// Push appends a move with a zero ordering value.
func (ml *MoveList) Push(m Move) {
	ml.entries[ml.top] = MoveEntry{Move: m}
	ml.top++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.top
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.entries[i].Move
}

// SetValue sets the ordering value of the move at index i.
func (ml *MoveList) SetValue(i int, v int16) {
	ml.entries[i].Value = v
}

// Select returns the unconsumed move with the highest ordering value,
// swapping it into the consumed prefix.
func (ml *MoveList) Select() Move {
	best := ml.cur
	for i := ml.cur + 1; i < ml.top; i++ {
		if ml.entries[i].Value > ml.entries[best].Value {
			best = i
		}
	}
	ml.entries[ml.cur], ml.entries[best] = ml.entries[best], ml.entries[ml.cur]

	m := ml.entries[ml.cur].Move
	ml.cur++
	return m
}

// Reset rewinds the consumption cursor so the list can be re-selected.
func (ml *MoveList) Reset() {
	ml.cur = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.top; i++ {
		if ml.entries[i].Move == m {
			return true
		}
	}
	return false
}
