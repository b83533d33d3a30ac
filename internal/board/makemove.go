package board

// DoMove applies a legal move to the position, producing the successor
// in place. Search makes moves by copying the position first; there is
// no unmake.
func (p *Position) DoMove(m Move) {
	from, to := m.From(), m.To()
	us := p.SideToMove

	p.Plies++
	p.Rule50++
	p.swapSideToMove()

	enPassant := p.EnPassant
	p.setEnPassant(NoSquare)

	// Capture
	if !p.IsEmpty(to) {
		capturedType := p.TypeOn(to)

		if CrazyhouseEnabled && p.Crazyhouse {
			// A captured promoted pawn goes back into the hand as a pawn.
			if p.PromotedPawns.IsSet(to) {
				p.addToHand(NewPiece(us, Pawn))
			} else {
				p.addToHand(NewPiece(us, capturedType))
			}
		}

		p.removePiece(to, NewPiece(us.Other(), capturedType))
		p.Rule50 = 0
	}

	switch {
	case CrazyhouseEnabled && m.IsDrop():
		drop := NewPiece(us, m.Drop())
		p.setPiece(to, drop, false)
		p.removeFromHand(drop)

	case p.ByType[Pawn].IsSet(from) && p.ByColor[us].IsSet(from):
		p.Rule50 = 0

		switch {
		case m.IsPromotion():
			p.removePiece(from, NewPiece(us, Pawn))
			p.setPiece(to, NewPiece(us, m.Promotion()), CrazyhouseEnabled && p.Crazyhouse)

		case to == enPassant:
			// En passant: the captured pawn sits behind the target square.
			p.removePiece(to.Add(-PawnPush(us)), NewPiece(us.Other(), Pawn))
			if CrazyhouseEnabled && p.Crazyhouse {
				p.addToHand(NewPiece(us, Pawn))
			}
			p.movePiece(from, to, NewPiece(us, Pawn))

		default:
			if RankDistance(from, to) == 2 {
				// Record the en passant square only if an enemy pawn
				// could actually capture there; otherwise the key (and
				// with it repetition detection) would be polluted by
				// unusable en passant state.
				epSq := to.Add(-PawnPush(us))
				if PawnAttacks(us, epSq)&p.Pieces(us.Other(), Pawn) != 0 {
					p.setEnPassant(epSq)
				}
			}
			p.movePiece(from, to, NewPiece(us, Pawn))
		}

	case FileDistance(from, to) == 2 && p.ByType[King].IsSet(from):
		rights := MakeCastlingRights(us, to > from)
		p.movePiece(CastlingRookSquare(rights), CastlingRookDest(rights), NewPiece(us, Rook))
		p.movePiece(from, to, NewPiece(us, King))

	default:
		p.movePiece(from, to, p.PieceOn(from))
	}

	// Any move from or to a corner or king square clears the
	// corresponding castling rights.
	if mask := castlingRightsMask[from]; mask != NoCastling {
		p.resetCastlingRights(mask)
	}
	if mask := castlingRightsMask[to]; mask != NoCastling {
		p.resetCastlingRights(mask)
	}

	p.update()
}
