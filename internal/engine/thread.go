package engine

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sb362/chess-engine/internal/board"
)

// MaxThreads is the upper bound for the Threads option.
func MaxThreads() int {
	return runtime.NumCPU()
}

// message emits one line of UCI output.
func message(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Thread is a search thread. Each thread owns a goroutine that parks
// on a condition variable between searches: StartThinking wakes it, it
// runs its think function, then re-enters the idle wait. Threads share
// nothing but the transposition table and their atomic stop flags;
// pawn cache, heuristics and key history are all thread-local.
type Thread struct {
	id int

	mu   sync.Mutex // guards idle and quit, paired with cond
	cond *sync.Cond
	done chan struct{}
	idle bool
	quit bool

	stop atomic.Bool

	think func()

	tt *TranspositionTable

	rootPosition board.Position
	keyHistory   KeyHistory
	limits       Limits

	idDepth  int
	selDepth int
	nodes    atomic.Uint64
	qnodes   atomic.Uint64

	pawnCache  *PawnCache
	heuristics Heuristics

	rootPV    []board.Move
	rootValue int

	// Set on the main thread only: periodic time check during search
	// and the end-of-iteration hook.
	checkTime   func()
	onIteration func()
}

// NewThread creates a helper thread and waits for it to go idle.
func NewThread(id int, tt *TranspositionTable) *Thread {
	t := &Thread{}
	t.start(id, tt, t.iterate)
	return t
}

func (t *Thread) start(id int, tt *TranspositionTable, think func()) {
	t.id = id
	t.tt = tt
	t.pawnCache = NewPawnCache()
	t.rootValue = -Infinite
	t.think = think
	t.cond = sync.NewCond(&t.mu)
	t.done = make(chan struct{})

	go t.loop()
	t.WaitUntilIdle()
}

// loop is the worker body: park on the condition variable until woken,
// search, park again.
func (t *Thread) loop() {
	defer close(t.done)

	t.mu.Lock()
	for {
		t.idle = true
		t.cond.Broadcast()
		for t.idle {
			t.cond.Wait()
		}

		if t.quit {
			t.mu.Unlock()
			return
		}

		t.mu.Unlock()
		t.think()
		t.mu.Lock()
	}
}

// IsIdle reports whether the thread is parked.
func (t *Thread) IsIdle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idle
}

// ShouldStop reports whether the stop flag is raised; the search
// checks it on entry to every node and unwinds cooperatively.
func (t *Thread) ShouldStop() bool {
	return t.stop.Load()
}

// StopThinking raises the stop flag. The thread keeps running until it
// observes the flag and unwinds.
func (t *Thread) StopThinking() {
	t.stop.Store(true)
}

// WaitUntilIdle blocks until the thread has parked.
func (t *Thread) WaitUntilIdle() {
	t.mu.Lock()
	for !t.idle {
		t.cond.Wait()
	}
	t.mu.Unlock()
}

// StartThinking wakes the thread with the given limits.
func (t *Thread) StartThinking(limits Limits) {
	t.WaitUntilIdle()

	t.mu.Lock()
	t.limits = limits
	t.stop.Store(false)
	t.idle = false
	t.cond.Broadcast()
	t.mu.Unlock()
}

// Close terminates the worker goroutine.
func (t *Thread) Close() {
	t.StopThinking()
	t.WaitUntilIdle()

	t.mu.Lock()
	t.quit = true
	t.idle = false
	t.cond.Broadcast()
	t.mu.Unlock()

	<-t.done
}

// Initialise sets the root position and key history for the next search.
func (t *Thread) Initialise(pos *board.Position, keyHistory KeyHistory) {
	t.rootPosition = *pos
	t.keyHistory = append(t.keyHistory[:0], keyHistory...)
	t.clear()
}

// clear resets counters, statistics and results.
func (t *Thread) clear() {
	t.idDepth, t.selDepth = 0, 0
	t.nodes.Store(0)
	t.qnodes.Store(0)
	t.heuristics.Clear()
	t.rootPV = t.rootPV[:0]
	t.rootValue = -Infinite
}

// NodesSearched returns the number of full-width nodes searched.
func (t *Thread) NodesSearched() uint64 {
	return t.nodes.Load()
}

// QNodesSearched returns the number of quiescence nodes searched.
func (t *Thread) QNodesSearched() uint64 {
	return t.qnodes.Load()
}

// DepthReached returns the last completed iteration depth.
func (t *Thread) DepthReached() int {
	return t.idDepth
}

// PrincipalVariation returns the best line from the last completed
// iteration.
func (t *Thread) PrincipalVariation() []board.Move {
	return t.rootPV
}

// BestValue returns the value of the principal variation.
func (t *Thread) BestValue() int {
	return t.rootValue
}

// SearchResult summarises a finished search, for callers that want to
// record statistics.
type SearchResult struct {
	Depth    int
	Value    int
	Nodes    uint64
	Duration time.Duration
	PV       []board.Move
}

// MainThread drives the search: it owns the helper threads, the clock,
// and the bestmove report.
type MainThread struct {
	Thread

	helpers []*Thread

	t0, t1  time.Time
	timesUp bool

	// OnFinish, if set, is called with the search result after
	// bestmove has been sent.
	OnFinish func(SearchResult)
}

// NewMainThread creates the main search thread on the given
// transposition table.
func NewMainThread(tt *TranspositionTable) *MainThread {
	m := &MainThread{}
	m.start(0, tt, m.mainThink)
	m.checkTime = m.checkTimeFast
	m.onIteration = func() {
		m.postStatistics()
		m.checkTimeSlow()
	}
	return m
}

// Initialise sets the root position on the main thread and all helpers.
func (m *MainThread) Initialise(pos *board.Position, keyHistory KeyHistory) {
	for _, helper := range m.helpers {
		helper.Initialise(pos, keyHistory)
	}
	m.Thread.Initialise(pos, keyHistory)
}

// ResizeHelpers adjusts the number of helper threads.
func (m *MainThread) ResizeHelpers(n int) {
	for len(m.helpers) > n {
		last := m.helpers[len(m.helpers)-1]
		last.Close()
		m.helpers = m.helpers[:len(m.helpers)-1]
	}
	for len(m.helpers) < n {
		m.helpers = append(m.helpers, NewThread(len(m.helpers)+1, m.tt))
	}
}

// Close terminates all threads.
func (m *MainThread) Close() {
	m.ResizeHelpers(0)
	m.Thread.Close()
}

// WaitUntilSearchDone blocks until the main thread and every helper is
// parked again.
func (m *MainThread) WaitUntilSearchDone() {
	m.WaitUntilIdle()
	for _, helper := range m.helpers {
		helper.WaitUntilIdle()
	}
}

// TotalSearchTime returns the time since the search started.
func (m *MainThread) TotalSearchTime() time.Duration {
	return time.Since(m.t0)
}

// IterationTime returns the time since the last completed iteration.
func (m *MainThread) IterationTime() time.Duration {
	return time.Since(m.t1)
}

// TotalNodes sums full-width and quiescence nodes over all threads.
func (m *MainThread) TotalNodes() uint64 {
	nodes := m.NodesSearched() + m.QNodesSearched()
	for _, helper := range m.helpers {
		nodes += helper.NodesSearched() + helper.QNodesSearched()
	}
	return nodes
}

// mainThink runs one "go" command to completion.
func (m *MainThread) mainThink() {
	m.timesUp = false
	m.t0 = time.Now()
	m.t1 = m.t0

	var rootMoves board.MoveList
	m.rootPosition.GenerateMoves(&rootMoves)

	// Checkmate or stalemate at the root: nothing to search.
	if rootMoves.Len() == 0 {
		value := Draw
		if m.rootPosition.Checkers != 0 {
			value = Mated
		}
		message("info depth 0 score %s", FormatValue(value))
		message("bestmove %s", board.NoMove)
		m.finish()
		return
	}

	// A forced move against a real clock is not worth searching.
	if rootMoves.Len() == 1 && m.limits.TC.IsNonzero() {
		message("info depth 0 score %s", FormatValue(Draw))
		message("bestmove %s", rootMoves.Get(0))
		m.finish()
		return
	}

	// Old entries may be overwritten immediately.
	m.tt.IncrementEpoch()

	for _, helper := range m.helpers {
		helper.StartThinking(m.limits)
	}

	m.iterate()

	// If the search is infinite, keep going until the GUI sends stop.
	if !m.timesUp && m.limits.Infinite {
		for !m.ShouldStop() {
			time.Sleep(time.Millisecond)
		}
	}

	for _, helper := range m.helpers {
		helper.StopThinking()
	}
	for _, helper := range m.helpers {
		helper.WaitUntilIdle()
	}

	// Report the deepest thread's line.
	best := &m.Thread
	for _, helper := range m.helpers {
		if helper.DepthReached() > best.DepthReached() {
			best = helper
		}
	}

	pv := best.PrincipalVariation()
	if len(pv) == 0 {
		pv = []board.Move{rootMoves.Get(0)}
	}

	message("info depth %d thread %d score %s pv %s",
		best.DepthReached(), best.id, FormatValue(best.BestValue()), board.FormatVariation(pv))

	if len(pv) >= 2 {
		message("bestmove %s ponder %s", pv[0], pv[1])
	} else {
		message("bestmove %s", pv[0])
	}

	m.finish()
}

func (m *MainThread) finish() {
	if m.OnFinish != nil {
		m.OnFinish(SearchResult{
			Depth:    m.DepthReached(),
			Value:    m.BestValue(),
			Nodes:    m.TotalNodes(),
			Duration: m.TotalSearchTime(),
			PV:       m.PrincipalVariation(),
		})
	}
}

// checkTimeFast is called on a node cadence during quiescence. It
// raises the stop flag once the allotted time is nearly spent: the
// whole movetime, or a fixed fraction of the remaining clock. The
// overhead margin keeps the engine from flagging on slow links.
func (m *MainThread) checkTimeFast() {
	us := m.rootPosition.SideToMove
	elapsed := m.TotalSearchTime()

	if movetime := m.limits.TC.MoveTime; movetime > 0 && elapsed >= movetime-Overhead {
		m.timesUp = true
		m.StopThinking()
	}

	if our := m.limits.TC.Time(us); our > 0 && elapsed > (our-Overhead)/10 {
		m.timesUp = true
		m.StopThinking()
	}
}

// checkTimeSlow runs after each iteration.
func (m *MainThread) checkTimeSlow() {
	m.checkTimeFast()
	m.t1 = time.Now()
}

// postStatistics emits the per-iteration statistics line.
func (m *MainThread) postStatistics() {
	elapsed := m.TotalSearchTime().Milliseconds()
	nodes := m.TotalNodes()
	nps := 1000 * nodes / uint64(elapsed+1)

	message("info nodes %d time %d nps %d hashfull %d hitrate %d",
		nodes, elapsed, nps, m.tt.HashfullApprox(), m.tt.HitRate())
}
