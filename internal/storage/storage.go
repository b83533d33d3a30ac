package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
)

// Preferences stores the engine option defaults applied at startup and
// updated on every setoption.
type Preferences struct {
	Threads  int       `json:"threads"`
	HashMiB  int       `json:"hash_mib"`
	Variant  string    `json:"variant"`
	LastUsed time.Time `json:"last_used"`
}

// DefaultPreferences returns the out-of-the-box option values.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Threads: 1,
		HashMiB: 8,
		Variant: "standard",
	}
}

// SearchStats accumulates search activity across runs.
type SearchStats struct {
	Searches   int           `json:"searches"`
	TotalNodes uint64        `json:"total_nodes"`
	TotalTime  time.Duration `json:"total_time"`

	BenchRuns     int    `json:"bench_runs"`
	BestBenchNPS  uint64 `json:"best_bench_nps"`
	LastBenchNPS  uint64 `json:"last_bench_nps"`
	LastBenchTime string `json:"last_bench_time"`
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the engine database in the platform data
// directory.
func Open() (*Storage, error) {
	dbDir, err := DatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenAt(dbDir)
}

// OpenAt opens (or creates) a database in the given directory.
func OpenAt(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences stores the option defaults.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastUsed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads the option defaults, falling back to
// DefaultPreferences when none are stored.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// SaveStats stores the cumulative search statistics.
func (s *Storage) SaveStats(stats *SearchStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads the cumulative search statistics, returning zeroed
// stats when none are stored.
func (s *Storage) LoadStats() (*SearchStats, error) {
	stats := &SearchStats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordSearch folds one finished search into the statistics.
func (s *Storage) RecordSearch(nodes uint64, duration time.Duration) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.Searches++
	stats.TotalNodes += nodes
	stats.TotalTime += duration

	return s.SaveStats(stats)
}

// RecordBench folds one finished benchmark run into the statistics.
func (s *Storage) RecordBench(nps uint64) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.BenchRuns++
	stats.LastBenchNPS = nps
	stats.LastBenchTime = time.Now().Format(time.RFC3339)
	if nps > stats.BestBenchNPS {
		stats.BestBenchNPS = nps
	}

	return s.SaveStats(stats)
}
