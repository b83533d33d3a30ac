//go:build !crazyhouse

package board

// CrazyhouseEnabled reports whether this binary was built with
// crazyhouse support. All variant code paths are guarded by this
// constant so the standard build carries no drop logic.
const CrazyhouseEnabled = false

// MaxMoves is the move list capacity. 218 is the known maximum for
// standard chess; 128 covers every position reachable in practice.
const MaxMoves = 128
