package engine

import "github.com/sb362/chess-engine/internal/board"

// Pawn structure scoring terms, in centipawns.
const (
	pawnDoubled   = -15
	pawnTripled   = -30
	pawnBlocked   = -10
	pawnIsolated  = -20
	pawnBackwards = -50
	pawnConnected = 10
	pawnPassed    = 50
)

// pawnSquareTable rewards advanced and central pawns. Written from
// White's eighth rank down; mirrored for Black by the indexer.
var pawnSquareTable = [64]int16{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

func pawnSquareValue(us board.Color, sq board.Square) int {
	if us == board.White {
		sq ^= 56
	}
	return int(pawnSquareTable[sq])
}

// PawnEntry is a cached pawn-structure evaluation.
type PawnEntry struct {
	key    uint64
	passed board.Bitboard

	whiteEval int16
	blackEval int16
}

// Eval returns the structure score for one side.
func (e *PawnEntry) Eval(us board.Color) int {
	if us == board.White {
		return int(e.whiteEval)
	}
	return int(e.blackEval)
}

// Passed returns the bitboard of passed pawns of both colors.
func (e *PawnEntry) Passed() board.Bitboard {
	return e.passed
}

// PawnCacheSize is the number of entries in a pawn cache. Must be a
// power of two.
const PawnCacheSize = 262144

// PawnCache is a fixed-size direct-mapped cache of pawn-structure
// evaluations, keyed by the pawn-only Zobrist key. Each search thread
// owns its own cache; it is never shared.
type PawnCache struct {
	entries []PawnEntry

	probes uint64
	hits   uint64
}

// NewPawnCache allocates an empty pawn cache.
func NewPawnCache() *PawnCache {
	return &PawnCache{entries: make([]PawnEntry, PawnCacheSize)}
}

// ProbeOrAssign returns the entry for the position's pawn structure,
// computing and inserting it (evicting the prior occupant) on a miss.
func (c *PawnCache) ProbeOrAssign(p *board.Position) *PawnEntry {
	key := p.PawnKey()
	entry := &c.entries[key&(PawnCacheSize-1)]

	c.probes++
	if entry.key == key && entry.isPopulated() {
		c.hits++
		return entry
	}

	*entry = makePawnEntry(p)
	entry.key = key
	return entry
}

// isPopulated guards the all-zero slot: a fresh cache has key 0
// everywhere, which is also the pawn key of a pawnless position.
func (e *PawnEntry) isPopulated() bool {
	return e.key != 0 || e.whiteEval != 0 || e.blackEval != 0 || e.passed != 0
}

// HitRate returns the percentage of probes served from the cache.
func (c *PawnCache) HitRate() int {
	if c.probes == 0 {
		return 0
	}
	return int(100 * c.hits / c.probes)
}

// makePawnEntry scores the pawn structure of both sides: penalties for
// doubled, isolated, blocked and backwards pawns, bonuses for
// connected and passed pawns, plus a fixed pawn square table.
func makePawnEntry(p *board.Position) PawnEntry {
	var entry PawnEntry

	for us := board.White; us <= board.Black; us++ {
		them := us.Other()
		ours := p.Pieces(us, board.Pawn)
		theirs := p.Pieces(them, board.Pawn)
		up := board.PawnPush(us)

		value := 0

		for file := 0; file < 8; file++ {
			switch n := (ours & board.FileMask[file]).PopCount(); {
			case n >= 3:
				value += pawnTripled
			case n == 2:
				value += pawnDoubled
			}
		}

		for bb := ours; bb != 0; {
			sq := bb.PopLSB()
			file := sq.File()
			stop := sq.Add(up)

			value += pawnSquareValue(us, sq)

			if adjacentFiles(file)&ours == 0 {
				value += pawnIsolated
			}

			if theirs.IsSet(stop) {
				value += pawnBlocked
			}

			// Defended by a friendly pawn diagonally behind.
			if board.PawnAttacks(them, sq)&ours != 0 {
				value += pawnConnected
			}

			// The stop square is covered by enemy pawns: the blocked
			// and attacked flavour of backwardness.
			if board.PawnAttacks(us, stop)&theirs != 0 {
				value += pawnBackwards
			}

			if passedMask(us, sq)&theirs == 0 {
				value += pawnPassed
				entry.passed |= board.SquareBB(sq)
			}
		}

		if us == board.White {
			entry.whiteEval = int16(value)
		} else {
			entry.blackEval = int16(value)
		}
	}

	return entry
}

// adjacentFiles returns the mask of the files neighbouring file f.
func adjacentFiles(f int) board.Bitboard {
	return board.FileMask[f].East() | board.FileMask[f].West()
}

// passedMask returns the squares that must be free of enemy pawns for
// a pawn on sq to be passed: its file and both adjacent files, from
// the next rank forward.
func passedMask(us board.Color, sq board.Square) board.Bitboard {
	bb := board.SquareBB(sq)
	wings := bb | bb.East() | bb.West()

	if us == board.White {
		return wings.North().NorthFill()
	}
	return wings.South().SouthFill()
}
