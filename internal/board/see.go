package board

// SEE statically evaluates the net material change of the capture
// sequence a move can start on its destination square, using the swap
// algorithm: both sides keep recapturing with their least valuable
// attacker, sliders behind the capturing piece are x-rayed in, and the
// result is minimaxed backwards over the gain stack. Scores are in
// centipawns from the moving side's perspective.
// https://www.chessprogramming.org/SEE_-_The_Swap_Algorithm
func (p *Position) SEE(m Move) int {
	if CrazyhouseEnabled && m.IsDrop() {
		return 0
	}

	from, to := m.From(), m.To()
	us := p.ColorOn(from)
	pt := p.TypeOn(from)

	var gain [33]int
	d := 0

	switch {
	case pt == Pawn && to == p.EnPassant:
		gain[0] = PieceValue[Pawn]
	case p.IsEmpty(to):
		gain[0] = 0
	default:
		gain[0] = PieceValue[p.TypeOn(to)]
	}
	if m.IsPromotion() {
		// Approximate a promotion as the promoted piece capturing.
		pt = m.Promotion()
	}

	// Sliders hidden behind a capturing piece join the fray once it
	// moves; kings and knights never reveal anything.
	mayXray := p.ByType[Pawn] | p.ByType[Bishop] | p.ByType[Rook] | p.ByType[Queen]

	occ := p.Occupied()
	attackers := p.AttackersTo(to, occ)
	fromSet := SquareBB(from)
	stm := us

	for fromSet != 0 {
		d++
		gain[d] = PieceValue[pt] - gain[d-1]

		attackers &^= fromSet
		occ &^= fromSet
		if mayXray&fromSet != 0 {
			attackers |= p.sliderAttackersTo(to, occ) & occ
		}

		stm = stm.Other()
		fromSet, pt = leastValuableAttacker(p, attackers&p.ByColor[stm])
	}

	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker picks the cheapest piece from the attacker set.
func leastValuableAttacker(p *Position, attackers Bitboard) (Bitboard, PieceType) {
	for pt := Pawn; pt <= King; pt++ {
		if subset := attackers & p.ByType[pt]; subset != 0 {
			return subset & -subset, pt
		}
	}
	return Empty, NoPieceType
}
