package engine

import "github.com/sb362/chess-engine/internal/board"

// Move ordering bands. Every move gets a base offset for its class;
// captures and promotions are refined within their band.
const (
	hashMoveOffset   = 30000
	promotionsOffset = 20000
	capturesOffset   = 20000
	killersOffset    = 20000
	quietsOffset     = 10000
)

// Killers holds the two most recent quiet cutoff moves at one depth.
// https://www.chessprogramming.org/Killer_Heuristic
type Killers [2]board.Move

// Update records a new killer, shifting the previous one down unless
// the move is already in the first slot.
func (k *Killers) Update(m board.Move) {
	if k[0] != m {
		k[1] = k[0]
	}
	k[0] = m
}

// IsKiller reports whether the move occupies either slot.
func (k *Killers) IsKiller(m board.Move) bool {
	return m == k[0] || m == k[1]
}

// KillerHeuristic keeps killers per depth.
type KillerHeuristic [MaxDepth + 1]Killers

// Update records a quiet cutoff move at the given depth.
func (kh *KillerHeuristic) Update(depth int, m board.Move) {
	kh[depth].Update(m)
}

// maxHistoryValue bounds history scores; a slot reaching it is halved
// so old results decay instead of saturating.
const maxHistoryValue = 2000

// HistoryHeuristic tracks, per (piece, destination), how often quiet
// moves improved alpha, weighted by depth squared.
// Derived from http://rebel13.nl/rebel13/blog/lmr%20advanced.html
type HistoryHeuristic [12][64]int16

// Update adds value to a slot, halving it when it drifts too far.
func (h *HistoryHeuristic) Update(value int, piece board.Piece, to board.Square) {
	h[piece][to] += int16(value)

	if v := h[piece][to]; v >= maxHistoryValue || v <= -maxHistoryValue {
		h[piece][to] /= 2
	}
}

// Probe returns the history score of a (piece, destination) pair.
func (h *HistoryHeuristic) Probe(piece board.Piece, to board.Square) int {
	return int(h[piece][to])
}

// Heuristics bundles the per-thread move ordering state.
type Heuristics struct {
	Killer  KillerHeuristic
	History HistoryHeuristic
}

// Clear resets all heuristics between searches.
func (h *Heuristics) Clear() {
	*h = Heuristics{}
}

// OrderMoves assigns an ordering value to every generated move: the
// hash move first, then promotions and captures scored by exchange
// evaluation, killer moves, and finally quiets by history.
func OrderMoves(p *board.Position, ml *board.MoveList, depth int, hashMove board.Move, h *Heuristics) {
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)

		var value int
		switch {
		case m == hashMove:
			value = hashMoveOffset

		case m.IsPromotion():
			value = promotionsOffset + board.PieceValue[m.Promotion()]
			if p.IsCapture(m) {
				value += board.PieceValue[p.TypeOn(m.To())]
			}

		case p.IsCapture(m) || isEnPassant(p, m):
			value = capturesOffset + p.SEE(m)

		case h.Killer[depth].IsKiller(m):
			value = killersOffset

		default:
			value = quietsOffset + h.History.Probe(p.MovedPiece(m), m.To())
		}

		ml.SetValue(i, int16(value))
	}
}

// OrderCaptures is the simpler quiescence ordering: promotions first,
// then captures by most valuable victim / least valuable attacker.
// No hash move or killers.
func OrderCaptures(p *board.Position, ml *board.MoveList) {
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)

		var value int
		switch {
		case m.IsPromotion():
			value = promotionsOffset + board.PieceValue[m.Promotion()]
			if p.IsCapture(m) {
				value += board.PieceValue[p.TypeOn(m.To())]
			}

		case p.IsCapture(m):
			victim := board.PieceValue[p.TypeOn(m.To())]
			attacker := board.PieceValue[p.TypeOn(m.From())]
			value = capturesOffset + victim - attacker

		case isEnPassant(p, m):
			value = capturesOffset
		}

		ml.SetValue(i, int16(value))
	}
}

// isEnPassant recognises an en passant capture, which lands on an
// empty square and is therefore missed by Position.IsCapture.
func isEnPassant(p *board.Position, m board.Move) bool {
	return m.To() == p.EnPassant && p.EnPassant.IsValid() &&
		p.Pieces(p.SideToMove, board.Pawn).IsSet(m.From())
}
