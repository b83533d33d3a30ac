package board

// GenerateMoves fills ml with every legal move for the side to move,
// in a single pass. King moves are validated against the occupancy
// with the king removed; when in check the target set is restricted to
// blocking or capturing squares; pinned pieces may only move along
// their pin line; en passant is verified with an explicit slider probe.
func (p *Position) GenerateMoves(ml *MoveList) {
	ml.top, ml.cur = 0, 0

	us := p.SideToMove
	ksq := p.KingSquare(us)
	checkers := p.Checkers

	targets := ^p.ByColor[us]

	p.appendKingMoves(ml, us, targets)

	if checkers != 0 {
		// In double check only king moves are legal.
		if checkers.MoreThanOne() {
			return
		}

		// Restrict the target set to squares that block the check or
		// capture the checking piece.
		checker := checkers.LSB()
		targets &= Between(ksq, checker) | checkers
	} else {
		if cr := MakeCastlingRights(us, true); p.CanCastle(cr) {
			ml.Push(NewMove(ksq, CastlingKingDest(cr)))
		}
		if cr := MakeCastlingRights(us, false); p.CanCastle(cr) {
			ml.Push(NewMove(ksq, CastlingKingDest(cr)))
		}
	}

	if CrazyhouseEnabled && p.Crazyhouse {
		p.appendDrops(ml, us, targets)
	}

	p.appendPieceMoves(ml, us, Queen, targets)
	p.appendPieceMoves(ml, us, Rook, targets)
	p.appendPieceMoves(ml, us, Bishop, targets)
	p.appendPieceMoves(ml, us, Knight, targets)

	p.appendPawnMoves(ml, us, targets)
}

// appendKingMoves emits king moves whose destination is not attacked
// once the king has stepped off its own square.
func (p *Position) appendKingMoves(ml *MoveList, us Color, targets Bitboard) {
	ksq := p.KingSquare(us)
	enemy := p.ByColor[us.Other()]
	occ := p.Occupied() &^ SquareBB(ksq)

	attacks := kingAttacks[ksq] & targets
	for attacks != 0 {
		to := attacks.PopLSB()
		if p.AttackersTo(to, occ)&enemy == 0 {
			ml.Push(NewMove(ksq, to))
		}
	}
}

// appendPieceMoves emits knight, bishop, rook or queen moves into the
// target set, filtering pinned pieces to their pin line.
func (p *Position) appendPieceMoves(ml *MoveList, us Color, pt PieceType, targets Bitboard) {
	ksq := p.KingSquare(us)
	pinned := p.Pinned
	occ := p.Occupied()

	pieces := p.Pieces(us, pt)
	for pieces != 0 {
		from := pieces.PopLSB()

		attacks := PieceAttacks(pt, from, occ) & targets
		for attacks != 0 {
			to := attacks.PopLSB()
			if !pinned.IsSet(from) || Aligned(ksq, from, to) {
				ml.Push(NewMove(from, to))
			}
		}
	}
}

// appendDrops emits crazyhouse drops for every piece type in hand onto
// empty target squares; pawns may not be dropped on the back ranks.
func (p *Position) appendDrops(ml *MoveList, us Color, targets Bitboard) {
	empty := targets &^ p.Occupied()

	for pt := Pawn; pt <= Queen; pt++ {
		if p.HandCount(NewPiece(us, pt)) == 0 {
			continue
		}

		drops := empty
		if pt == Pawn {
			drops &^= Rank1 | Rank8
		}
		for drops != 0 {
			ml.Push(NewDrop(drops.PopLSB(), pt))
		}
	}
}

func appendPromotions(ml *MoveList, from, to Square) {
	ml.Push(NewPromotion(from, to, Queen))
	ml.Push(NewPromotion(from, to, Rook))
	ml.Push(NewPromotion(from, to, Bishop))
	ml.Push(NewPromotion(from, to, Knight))
}

func (p *Position) appendPawnMoves(ml *MoveList, us Color, targets Bitboard) {
	them := us.Other()
	ksq := p.KingSquare(us)
	pinned := p.Pinned
	pawns := p.Pieces(us, Pawn)
	occ := p.Occupied()
	empty := ^occ
	enemy := p.ByColor[them]

	up := PawnPush(us)
	upWest, upEast := up+West, up+East

	var rank3, rank7 Bitboard
	if us == White {
		rank3, rank7 = Rank3, Rank7
	} else {
		rank3, rank7 = Rank6, Rank2
	}

	// En passant. The captured pawn must be a target (it is the checker
	// when the double push gave check); legality is verified with a
	// slider probe on the occupancy with both pawns removed and the en
	// passant square filled.
	if p.EnPassant.IsValid() {
		epSq := p.EnPassant
		capturedSq := epSq.Add(-up)

		if targets.IsSet(capturedSq) {
			candidates := PawnAttacks(them, epSq) & pawns
			for candidates != 0 {
				from := candidates.PopLSB()

				nocc := (occ ^ SquareBB(from) ^ SquareBB(capturedSq)) | SquareBB(epSq)
				if p.sliderAttackersTo(ksq, nocc)&enemy == 0 {
					ml.Push(NewMove(from, epSq))
				}
			}
		}
	}

	pawnsOn7 := pawns & rank7
	pawnsNotOn7 := pawns &^ rank7

	// Push promotions
	bb := pawnsOn7.Shift(up) & empty & targets
	for bb != 0 {
		to := bb.PopLSB()
		from := to.Add(-up)
		if !pinned.IsSet(from) || Aligned(ksq, from, to) {
			appendPromotions(ml, from, to)
		}
	}

	// Capture promotions
	bb = pawnsOn7.Shift(upWest) & enemy & targets
	for bb != 0 {
		to := bb.PopLSB()
		from := to.Add(-upWest)
		if !pinned.IsSet(from) || Aligned(ksq, from, to) {
			appendPromotions(ml, from, to)
		}
	}

	bb = pawnsOn7.Shift(upEast) & enemy & targets
	for bb != 0 {
		to := bb.PopLSB()
		from := to.Add(-upEast)
		if !pinned.IsSet(from) || Aligned(ksq, from, to) {
			appendPromotions(ml, from, to)
		}
	}

	// Single pushes
	singlePush := pawnsNotOn7.Shift(up) & empty
	bb = singlePush & targets
	for bb != 0 {
		to := bb.PopLSB()
		from := to.Add(-up)
		if !pinned.IsSet(from) || Aligned(ksq, from, to) {
			ml.Push(NewMove(from, to))
		}
	}

	// Double pushes
	bb = (singlePush & rank3).Shift(up) & empty & targets
	for bb != 0 {
		to := bb.PopLSB()
		from := to.Add(-up).Add(-up)
		if !pinned.IsSet(from) || Aligned(ksq, from, to) {
			ml.Push(NewMove(from, to))
		}
	}

	// Captures
	bb = pawnsNotOn7.Shift(upWest) & enemy & targets
	for bb != 0 {
		to := bb.PopLSB()
		from := to.Add(-upWest)
		if !pinned.IsSet(from) || Aligned(ksq, from, to) {
			ml.Push(NewMove(from, to))
		}
	}

	bb = pawnsNotOn7.Shift(upEast) & enemy & targets
	for bb != 0 {
		to := bb.PopLSB()
		from := to.Add(-upEast)
		if !pinned.IsSet(from) || Aligned(ksq, from, to) {
			ml.Push(NewMove(from, to))
		}
	}
}

// HasLegalMoves reports whether the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	var ml MoveList
	p.GenerateMoves(&ml)
	return ml.Len() > 0
}

// IsInsufficientMaterial reports whether neither side can possibly
// deliver checkmate: bare kings, or king and a single minor piece
// against a bare king. Crazyhouse positions are never material-drawn
// while anything remains in hand.
func (p *Position) IsInsufficientMaterial() bool {
	if p.ByType[Pawn]|p.ByType[Rook]|p.ByType[Queen] != 0 {
		return false
	}

	if CrazyhouseEnabled && p.Crazyhouse {
		for _, count := range p.Hand {
			if count > 0 {
				return false
			}
		}
	}

	whiteMinors := (p.Pieces(White, Knight) | p.Pieces(White, Bishop)).PopCount()
	blackMinors := (p.Pieces(Black, Knight) | p.Pieces(Black, Bishop)).PopCount()

	return (whiteMinors <= 1 && blackMinors == 0) || (blackMinors <= 1 && whiteMinors == 0)
}
