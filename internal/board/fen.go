package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// KiwipeteFEN is the community-standard "Kiwipete" perft position.
const KiwipeteFEN = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -"

// ParseFEN parses a FEN string into a new Position.
func ParseFEN(fen string) (*Position, error) {
	p := &Position{}
	if err := p.SetFEN(fen); err != nil {
		return nil, err
	}
	return p, nil
}

// SetFEN replaces the position with one parsed from standard six-field
// FEN. The halfmove clock and fullmove number are optional. For
// crazyhouse, pieces in hand appear either as a ninth placement rank
// (lichess style) or in brackets, and a '~' suffix marks a promoted
// pawn. On error the position contents are unspecified; callers keep
// their previous position.
func (p *Position) SetFEN(fen string) error {
	p.Clear()

	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return fmt.Errorf("invalid FEN %q: expected at least placement and side fields", fen)
	}

	// Piece placement
	file, rank := 0, 7
	inHand := false
	lastSq := NoSquare

	for i := 0; i < len(fields[0]); i++ {
		c := fields[0][i]

		switch {
		case c >= '1' && c <= '8':
			file += int(c - '0')
			if file > 8 {
				return fmt.Errorf("invalid FEN: rank %d overflows the board", rank+1)
			}

		case c == '/':
			file = 0
			rank--
			// Lichess crazyhouse FENs carry a ninth rank holding the
			// pieces in hand.
			if rank < 0 {
				if !CrazyhouseEnabled {
					return fmt.Errorf("invalid FEN: too many ranks")
				}
				inHand = true
			}

		case c == '[':
			inHand = true

		case c == ']':

		case c == '~':
			// Suffix on a piece letter: that piece is a promoted pawn.
			if !CrazyhouseEnabled || !lastSq.IsValid() {
				return fmt.Errorf("invalid FEN: misplaced '~'")
			}
			p.PromotedPawns |= SquareBB(lastSq)

		case c == '-' && inHand:
			// Empty reserve marker.

		default:
			piece := PieceFromChar(c)
			if !piece.IsValid() {
				return fmt.Errorf("invalid FEN: unexpected character %q in placement", c)
			}

			if inHand {
				p.addToHand(piece)
				continue
			}

			if file > 7 || rank < 0 {
				return fmt.Errorf("invalid FEN: piece %q placed off the board", c)
			}
			lastSq = NewSquare(file, rank)
			p.setPiece(lastSq, piece, false)
			file++
		}
	}

	if CrazyhouseEnabled {
		p.Crazyhouse = inHand
	}

	// Side to move
	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
		p.Key ^= zobrist.side
	default:
		return fmt.Errorf("invalid FEN: bad side to move %q", fields[1])
	}

	p.update()

	// Castling rights
	if len(fields) > 2 && fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			c := fields[2][i]

			us := Black
			if c >= 'A' && c <= 'Z' {
				us = White
			}

			rooks := p.Pieces(us, Rook)
			ksq := p.KingSquare(us)
			var rsq Square

			switch c {
			case 'K':
				rsq = (rooks & Rank1).MSB()
			case 'Q':
				rsq = (rooks & Rank1).LSB()
			case 'k':
				rsq = (rooks & Rank8).MSB()
			case 'q':
				rsq = (rooks & Rank8).LSB()
			default:
				if lc := c | 0x20; lc >= 'a' && lc <= 'h' {
					return fmt.Errorf("invalid FEN: FRC castling %q not supported", c)
				}
				return fmt.Errorf("invalid FEN: bad castling character %q", c)
			}

			if rsq.IsValid() {
				p.addCastlingRights(MakeCastlingRights(us, rsq > ksq))
			}
		}
	}

	// En passant square
	if len(fields) > 3 && fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return fmt.Errorf("invalid FEN: bad en passant square %q", fields[3])
		}
		p.setEnPassant(sq)
	}

	// Halfmove clock (defaults to zero)
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid FEN: bad halfmove clock %q", fields[4])
		}
		p.Rule50 = uint8(min(n, 255))
	}

	// Fullmove number (defaults to one)
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid FEN: bad fullmove number %q", fields[5])
		}
		black := 0
		if p.SideToMove == Black {
			black = 1
		}
		p.Plies = uint16((n-1)*2 + black)
	}

	return nil
}

// FEN returns the FEN string describing this position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			if p.IsEmpty(sq) {
				empty++
				continue
			}

			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(p.PieceOn(sq).String())
			if CrazyhouseEnabled && p.Crazyhouse && p.PromotedPawns.IsSet(sq) {
				sb.WriteByte('~')
			}
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if CrazyhouseEnabled && p.Crazyhouse {
		sb.WriteByte('/')
		for _, c := range []Color{White, Black} {
			for pt := Pawn; pt <= Queen; pt++ {
				piece := NewPiece(c, pt)
				for i := uint8(0); i < p.HandCount(piece); i++ {
					sb.WriteString(piece.String())
				}
			}
		}
	}

	fmt.Fprintf(&sb, " %s %s %s %d %d",
		p.SideToMove, p.Castling, p.EnPassant, p.Rule50, p.Fullmoves())

	return sb.String()
}
