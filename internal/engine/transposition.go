package engine

import (
	"sync/atomic"

	"github.com/sb362/chess-engine/internal/board"
)

// Bound classifies a stored value in the alpha-beta framework.
// https://www.chessprogramming.org/Node_Types
type Bound uint8

const (
	BoundUpper Bound = iota // fail-low: value is an upper bound
	BoundExact              // PV node: exact value
	BoundLower              // fail-high: value is a lower bound
)

// Entry is a decoded transposition table entry.
type Entry struct {
	Depth int
	Move  board.Move
	Value int
	Bound Bound
	Epoch uint8
}

// DefaultTTSize is the default transposition table size in bytes (8 MiB).
const DefaultTTSize = 8 * 1024 * 1024

// bucket is a single table slot. The payload is packed into one word
// and the key is stored XORed with it, so a torn read of a bucket that
// is being overwritten concurrently fails the key check instead of
// yielding a structurally invalid entry.
type bucket struct {
	key  atomic.Uint64 // Zobrist key ^ data
	data atomic.Uint64
}

// TranspositionTable is the shared, lock-free search cache. It is a
// single-probe, always-replace table; the per-entry epoch tag is
// informational. All threads read and write it without locks.
type TranspositionTable struct {
	buckets []bucket
	epoch   uint8 // bumped per "go"; only changed while search is idle

	probes atomic.Uint64
	hits   atomic.Uint64
	writes atomic.Uint64
}

// NewTranspositionTable creates a table occupying the given number of
// bytes.
func NewTranspositionTable(bytes int) *TranspositionTable {
	tt := &TranspositionTable{}
	tt.Resize(bytes)
	return tt
}

// Resize reallocates the table. The search must be stopped.
func (tt *TranspositionTable) Resize(bytes int) {
	n := bytes / 16 // sizeof(bucket)
	if n < 1 {
		n = 1
	}
	tt.buckets = make([]bucket, n)
}

// Clear wipes all entries and statistics. The search must be stopped.
func (tt *TranspositionTable) Clear() {
	for i := range tt.buckets {
		tt.buckets[i].key.Store(0)
		tt.buckets[i].data.Store(0)
	}
	tt.probes.Store(0)
	tt.hits.Store(0)
	tt.writes.Store(0)
}

// IncrementEpoch bumps the epoch counter at the start of a search.
func (tt *TranspositionTable) IncrementEpoch() {
	tt.epoch = (tt.epoch + 1) & 0x3f
}

func packEntry(depth int, move board.Move, value int, bound Bound, epoch uint8) uint64 {
	return uint64(uint16(move)) |
		uint64(uint16(int16(value)))<<16 |
		uint64(uint8(depth))<<32 |
		uint64(bound&3)<<40 |
		uint64(epoch&0x3f)<<42
}

func unpackEntry(data uint64) Entry {
	return Entry{
		Move:  board.Move(uint16(data)),
		Value: int(int16(uint16(data >> 16))),
		Depth: int(uint8(data >> 32)),
		Bound: Bound(data >> 40 & 3),
		Epoch: uint8(data >> 42 & 0x3f),
	}
}

// Probe looks the key up, returning the decoded entry on a hit. Mate
// values come back node-relative; the caller rebases them with
// plies-to-root.
func (tt *TranspositionTable) Probe(key uint64) (Entry, bool) {
	tt.probes.Add(1)

	b := &tt.buckets[key%uint64(len(tt.buckets))]
	k, data := b.key.Load(), b.data.Load()

	if k^data != key || data == 0 {
		return Entry{}, false
	}

	tt.hits.Add(1)
	return unpackEntry(data), true
}

// Save stores an entry, always replacing the previous occupant. Mate
// values are stored relative to the current node so that a retrieved
// mate stays correct whatever the probing node's distance to root.
func (tt *TranspositionTable) Save(key uint64, depth, pliesToRoot, value int, bound Bound, move board.Move) {
	if IsMate(value) {
		value = relativeMateValue(value, pliesToRoot)
	}

	data := packEntry(depth, move, value, bound, tt.epoch)
	b := &tt.buckets[key%uint64(len(tt.buckets))]
	b.data.Store(data)
	b.key.Store(key ^ data)

	tt.writes.Add(1)
}

// HashfullApprox estimates table occupancy in permille by sampling the
// first thousand buckets for current-epoch entries.
func (tt *TranspositionTable) HashfullApprox() int {
	sample := 1000
	if len(tt.buckets) < sample {
		sample = len(tt.buckets)
	}

	used := 0
	for i := 0; i < sample; i++ {
		data := tt.buckets[i].data.Load()
		if data != 0 && uint8(data>>42&0x3f) == tt.epoch {
			used++
		}
	}
	return used * 1000 / sample
}

// HitRate returns the percentage of probes that hit.
func (tt *TranspositionTable) HitRate() int {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return int(100 * tt.hits.Load() / probes)
}
