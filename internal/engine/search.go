package engine

import (
	"time"

	"github.com/sb362/chess-engine/internal/board"
)

// Search tuning constants.
const (
	// CheckTimeEvery is the quiescence node cadence of the main
	// thread's fast time check; it bounds the latency of a stop.
	CheckTimeEvery = 65536

	// Aspiration window half-width around the previous iteration's
	// value, in centipawns.
	AspirationWindowHalfWidth = 25

	// Late move reductions apply from this depth upwards, to moves whose
	// zero-based index in the ordered list exceeds this move number.
	// http://rebel13.nl/rebel13/blog/lmr%20advanced.html
	LMRDepthLimit = 3
	LMRMoveNumber = 3

	// Overhead is the communication margin subtracted from every time
	// budget so the engine never flags on a slow link.
	Overhead = 50 * time.Millisecond
)

// totalSearched returns this thread's combined node count.
func (t *Thread) totalSearched() uint64 {
	return t.nodes.Load() + t.qnodes.Load()
}

// overNodeLimit reports whether the node budget is exhausted.
func (t *Thread) overNodeLimit() bool {
	return t.limits.Nodes > 0 && t.totalSearched() >= t.limits.Nodes
}

// countRepetitions counts how often the key occurs in the history,
// which includes every key from the game start through the current node.
func (t *Thread) countRepetitions(key uint64) int {
	count := 0
	for _, k := range t.keyHistory {
		if k == key {
			count++
		}
	}
	return count
}

// search is the main alpha-beta routine: fail-hard negamax with
// transposition cutoffs, late move reductions and killer/history
// updates. pv receives the principal variation of this subtree.
func (t *Thread) search(pos *board.Position, alpha, beta, depth, pliesToRoot int, pv *[]board.Move) int {
	// Unwind on stop or when out of nodes. In check the position is
	// probably dangerous, so return a draw value instead of a static
	// evaluation.
	if t.ShouldStop() || t.overNodeLimit() {
		if pos.Checkers != 0 {
			return Draw
		}
		return Evaluate(pos, t.pawnCache.ProbeOrAssign(pos))
	}

	key := pos.Key

	// Draw by the fifty-move rule or threefold repetition. Returning a
	// value that varies within Draw ± 1 instead of always exactly zero
	// avoids threefold blindness through the transposition table.
	if pos.IsDrawByRule50() || t.countRepetitions(key) >= 3 {
		return int(t.totalSearched()%3) - 1
	}

	t.selDepth = max(t.selDepth, pliesToRoot)

	// Best move from the transposition table, or from the previous
	// iteration's PV at the root.
	hashMove := board.NoMove
	if pliesToRoot == 0 {
		if len(t.rootPV) > 0 {
			hashMove = t.rootPV[0]
		}
	} else if entry, ok := t.tt.Probe(key); ok {
		// A result from an equal or greater depth can cut this node
		// off entirely; anything else still improves move ordering.
		if entry.Depth >= depth {
			value := entry.Value

			// Mate values are stored relative to the entry's node;
			// rebase onto our distance to root.
			if IsMate(value) {
				value = absoluteMateValue(value, pliesToRoot)
			}

			switch entry.Bound {
			case BoundExact:
				return value
			case BoundUpper:
				if value <= alpha {
					return alpha
				}
			case BoundLower:
				if value >= beta {
					return beta
				}
			}
		}

		hashMove = entry.Move
	}

	// Horizon node: resolve tactics in quiescence.
	if depth == 0 {
		return t.qsearch(pos, alpha, beta, pliesToRoot, pv)
	}

	var moveList board.MoveList
	pos.GenerateMoves(&moveList)

	if moveList.Len() == 0 {
		if pos.Checkers != 0 {
			return MatedIn(pliesToRoot)
		}
		return Draw
	}

	OrderMoves(pos, &moveList, depth, hashMove, &t.heuristics)

	bound := BoundUpper
	bestMove := board.NoMove
	var childPV []board.Move

	for moveNumber := 0; moveNumber < moveList.Len(); moveNumber++ {
		move := moveList.Select()

		movedPiece := pos.MovedPiece(move)
		isCapture := pos.IsCapture(move)
		isPromotion := move.IsPromotion()

		next := *pos
		next.DoMove(move)
		t.keyHistory = append(t.keyHistory, next.Key)
		t.nodes.Add(1)

		givesCheck := next.Checkers != 0

		// Late move reductions: late quiet moves that do not give
		// check are searched shallower, deeper still when they also
		// carry a bad history. Re-searched at full depth on success.
		r := 1
		didLMR := false
		if depth >= LMRDepthLimit && moveNumber > LMRMoveNumber &&
			!givesCheck && !isCapture && !isPromotion {
			r++

			if pliesToRoot > 0 {
				r++
				if t.heuristics.History.Probe(movedPiece, move.To()) < 0 {
					r++
				}
			}

			didLMR = true
			r = clamp(r, 1, depth)
		}

		childPV = childPV[:0]
		value := -t.search(&next, -beta, -alpha, depth-r, pliesToRoot+1, &childPV)

		if didLMR && value > alpha {
			childPV = childPV[:0]
			value = -t.search(&next, -beta, -alpha, depth-1, pliesToRoot+1, &childPV)
		}

		t.keyHistory = t.keyHistory[:len(t.keyHistory)-1]

		if value > alpha {
			alpha = value
			bestMove = move
			bound = BoundExact

			*pv = append((*pv)[:0], move)
			*pv = append(*pv, childPV...)

			if pliesToRoot <= 8 && !isCapture && !isPromotion {
				t.heuristics.History.Update(depth*depth, movedPiece, move.To())
			}

			if alpha >= beta {
				bound = BoundLower

				if !isCapture && !isPromotion {
					t.heuristics.Killer.Update(depth, move)
				}

				t.tt.Save(key, depth, pliesToRoot, beta, bound, bestMove)

				// Fail-hard beta cutoff.
				return beta
			}
		} else if pliesToRoot <= 8 && !isCapture && !isPromotion {
			t.heuristics.History.Update(-depth, movedPiece, move.To())
		}
	}

	t.tt.Save(key, depth, pliesToRoot, alpha, bound, bestMove)

	return alpha
}

// qsearch searches captures, promotions and (in crazyhouse) drops
// until the position is quiet, standing pat on the static evaluation
// outside check. All legal moves are tried while in check. No
// transposition entries are written here.
func (t *Thread) qsearch(pos *board.Position, alpha, beta, pliesToRoot int, pv *[]board.Move) int {
	// The main thread watches the clock on a node cadence.
	if t.checkTime != nil && t.totalSearched()%CheckTimeEvery == 0 {
		t.checkTime()
	}

	if t.ShouldStop() || t.overNodeLimit() {
		if pos.Checkers != 0 {
			return Draw
		}
		return Evaluate(pos, t.pawnCache.ProbeOrAssign(pos))
	}

	if pos.IsDrawByRule50() || t.countRepetitions(pos.Key) >= 3 {
		return Draw
	}

	t.selDepth = max(t.selDepth, pliesToRoot)

	var moveList board.MoveList
	pos.GenerateMoves(&moveList)

	if moveList.Len() == 0 {
		if pos.Checkers != 0 {
			return MatedIn(pliesToRoot)
		}
		return Draw
	}

	inCheck := pos.Checkers != 0
	if !inCheck {
		standPat := Evaluate(pos, t.pawnCache.ProbeOrAssign(pos))

		if standPat >= beta {
			return beta
		}
		alpha = max(alpha, standPat)
	}

	OrderCaptures(pos, &moveList)

	var childPV []board.Move

	for moveNumber := 0; moveNumber < moveList.Len(); moveNumber++ {
		move := moveList.Select()

		// Outside check, only search forcing moves.
		if !inCheck && !pos.IsCapture(move) && !move.IsPromotion() &&
			!isEnPassant(pos, move) && !(board.CrazyhouseEnabled && move.IsDrop()) {
			continue
		}

		next := *pos
		next.DoMove(move)
		t.keyHistory = append(t.keyHistory, next.Key)
		t.qnodes.Add(1)

		childPV = childPV[:0]
		value := -t.qsearch(&next, -beta, -alpha, pliesToRoot+1, &childPV)

		t.keyHistory = t.keyHistory[:len(t.keyHistory)-1]

		if value > alpha {
			alpha = value

			*pv = append((*pv)[:0], move)
			*pv = append(*pv, childPV...)

			if alpha >= beta {
				return beta
			}
		}
	}

	return alpha
}

// iterate is the iterative deepening loop: search with increasing
// depth inside an aspiration window around the previous value,
// widening the window fully on a fail, until a limit or the stop flag
// ends the search. Results of an interrupted iteration are discarded.
func (t *Thread) iterate() {
	t.clear()

	alpha, beta := -Infinite, Infinite
	value := -Infinite
	var pv []board.Move

	for depth := 1; depth <= MaxDepth; depth++ {
		if t.limits.Depth > 0 && depth > t.limits.Depth && !t.limits.Infinite {
			break
		}

		t.selDepth = 0

		if depth > 1 {
			alpha = max(value-AspirationWindowHalfWidth, -Infinite)
			beta = min(value+AspirationWindowHalfWidth, Infinite)
		}

		// Aspiration loop: widen the failing bound and repeat.
		for !t.ShouldStop() {
			pv = pv[:0]
			value = t.search(&t.rootPosition, alpha, beta, depth, 0, &pv)

			if value <= alpha {
				alpha = -Infinite
			} else if value >= beta {
				beta = Infinite
			} else {
				break
			}
		}

		// Results of an interrupted iteration are discarded.
		if t.ShouldStop() {
			break
		}

		t.idDepth = depth
		t.rootPV = append(t.rootPV[:0], pv...)
		t.rootValue = value

		message("info depth %d seldepth %d thread %d score %s pv %s",
			t.idDepth, t.selDepth, t.id, FormatValue(t.rootValue),
			board.FormatVariation(t.rootPV))

		if t.onIteration != nil {
			t.onIteration()
		}

		// Limit checks: a found mate within the requested distance or
		// an exhausted node budget also ends the search.
		if t.limits.Mate > 0 && IsMate(value) && DepthToMate(value) <= 2*t.limits.Mate {
			break
		}
		if t.overNodeLimit() {
			break
		}
	}
}
