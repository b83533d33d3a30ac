// Package uci implements the Universal Chess Interface protocol loop
// driving the search pool.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sb362/chess-engine/internal/board"
	"github.com/sb362/chess-engine/internal/engine"
	"github.com/sb362/chess-engine/internal/storage"
)

// Engine identity, reported in response to "uci".
const (
	Name    = "Mink"
	Version = 1
	Author  = "sb362"
)

// UCI is the protocol handler. It owns the transposition table, the
// thread pool, and the position being discussed with the GUI.
type UCI struct {
	tt   *engine.TranspositionTable
	main *engine.MainThread

	position   *board.Position
	keyHistory engine.KeyHistory

	// Current option values.
	threads int
	hashMiB int
	variant string

	// Optional persistence for option defaults and search statistics.
	store *storage.Storage
}

// New builds a protocol handler, applying persisted option defaults
// when a store is available.
func New(store *storage.Storage) *UCI {
	prefs := storage.DefaultPreferences()
	if store != nil {
		if loaded, err := store.LoadPreferences(); err == nil {
			prefs = loaded
		} else {
			fmt.Fprintf(os.Stderr, "info string Failed to load preferences: %v\n", err)
		}
	}

	prefs.Threads = clampInt(prefs.Threads, 1, engine.MaxThreads())
	prefs.HashMiB = clampInt(prefs.HashMiB, 1, 16384)

	u := &UCI{
		tt:      engine.NewTranspositionTable(prefs.HashMiB * 1024 * 1024),
		threads: prefs.Threads,
		hashMiB: prefs.HashMiB,
		variant: "standard",
		store:   store,
	}
	if board.CrazyhouseEnabled && prefs.Variant == "crazyhouse" {
		u.variant = prefs.Variant
	}

	u.main = engine.NewMainThread(u.tt)
	u.main.ResizeHelpers(u.threads - 1)
	u.main.OnFinish = u.recordSearch

	u.position, _ = board.ParseFEN(board.StartFEN)
	u.keyHistory = engine.KeyHistory{u.position.Key}
	u.main.Initialise(u.position, u.keyHistory)

	return u
}

func (u *UCI) recordSearch(result engine.SearchResult) {
	if u.store == nil {
		return
	}
	if err := u.store.RecordSearch(result.Nodes, result.Duration); err != nil {
		fmt.Fprintf(os.Stderr, "info string Failed to record search: %v\n", err)
	}
}

func (u *UCI) savePreferences() {
	if u.store == nil {
		return
	}
	prefs := &storage.Preferences{
		Threads: u.threads,
		HashMiB: u.hashMiB,
		Variant: u.variant,
	}
	if err := u.store.SavePreferences(prefs); err != nil {
		fmt.Fprintf(os.Stderr, "info string Failed to save preferences: %v\n", err)
	}
}

// Run reads commands from stdin until "quit" or EOF. Protocol errors
// are reported as "info string" lines and never terminate the loop.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<16), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "setoption":
			u.handleSetOption(args)
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.main.StopThinking()
		case "ponderhit":
			// Pondering is parsed but not implemented.
		case "d":
			fmt.Print(u.position.String())
		case "perft":
			u.handlePerft(args)
		case "quit":
			u.shutdown()
			return
		default:
			fmt.Println("info string Unknown command")
		}
	}

	u.shutdown()
}

func (u *UCI) shutdown() {
	u.main.StopThinking()
	u.main.WaitUntilSearchDone()
	u.main.Close()
}

func (u *UCI) handleUCI() {
	fmt.Printf("id name %s %d\n", Name, Version)
	fmt.Printf("id author %s\n", Author)
	fmt.Printf("option name Threads type spin default %d min 1 max %d\n", u.threads, engine.MaxThreads())
	fmt.Printf("option name Hash type spin default %d min 1 max 16384\n", u.hashMiB)
	if board.CrazyhouseEnabled {
		fmt.Printf("option name UCI_Variant type combo default %s var standard var crazyhouse\n", u.variant)
	}
	fmt.Println("uciok")
}

// handleSetOption applies "setoption name <N> value <V>". Changing
// Threads or Hash stops the search first; the new value applies to the
// next "go".
func (u *UCI) handleSetOption(args []string) {
	name, value, ok := parseSetOption(args)
	if !ok {
		fmt.Println("info string Malformed setoption command")
		return
	}

	u.main.StopThinking()
	u.main.WaitUntilSearchDone()

	switch name {
	case "Threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > engine.MaxThreads() {
			fmt.Printf("info string Invalid value '%s' for option Threads\n", value)
			return
		}
		u.threads = n
		u.main.ResizeHelpers(n - 1)

	case "Hash":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 16384 {
			fmt.Printf("info string Invalid value '%s' for option Hash\n", value)
			return
		}
		u.hashMiB = n
		u.tt.Resize(n * 1024 * 1024)

	case "UCI_Variant":
		if !board.CrazyhouseEnabled || (value != "standard" && value != "crazyhouse") {
			fmt.Printf("info string Invalid value '%s' for option UCI_Variant\n", value)
			return
		}
		u.variant = value
		u.position.Crazyhouse = value == "crazyhouse"
		u.main.Initialise(u.position, u.keyHistory)

	default:
		fmt.Printf("info string Option '%s' not found\n", name)
		return
	}

	u.savePreferences()
}

func parseSetOption(args []string) (name, value string, ok bool) {
	if len(args) < 2 || args[0] != "name" {
		return "", "", false
	}

	i := 1
	var nameParts []string
	for ; i < len(args) && args[i] != "value"; i++ {
		nameParts = append(nameParts, args[i])
	}
	if i < len(args) {
		i++ // skip "value"
	}

	return strings.Join(nameParts, " "), strings.Join(args[i:], " "), len(nameParts) > 0
}

func (u *UCI) handleNewGame() {
	u.main.StopThinking()
	u.main.WaitUntilSearchDone()
	u.tt.Clear()
}

// handlePosition parses "position {startpos | fen <FEN>} [moves ...]"
// and hands the resulting position and key history to the thread pool.
// On any error the previous position is kept.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		fmt.Println("info string Malformed position command")
		return
	}

	position := &board.Position{}
	moveStart := len(args)

	switch args[0] {
	case "startpos":
		if err := position.SetFEN(board.StartFEN); err != nil {
			fmt.Printf("info string %v\n", err)
			return
		}
		moveStart = 1

	case "fen":
		fenEnd := len(args)
		for i, arg := range args {
			if arg == "moves" {
				fenEnd = i
				break
			}
		}

		if err := position.SetFEN(strings.Join(args[1:fenEnd], " ")); err != nil {
			fmt.Printf("info string %v\n", err)
			return
		}
		moveStart = fenEnd

	default:
		fmt.Printf("info string Unrecognised parameter '%s'\n", args[0])
		return
	}

	if board.CrazyhouseEnabled && u.variant == "crazyhouse" {
		position.Crazyhouse = true
	}

	keyHistory := engine.KeyHistory{position.Key}

	if moveStart < len(args) && args[moveStart] == "moves" {
		for _, text := range args[moveStart+1:] {
			move := board.ParseMove(text)
			if !move.IsValid() {
				fmt.Printf("info string Invalid move '%s'\n", text)
				return
			}

			position.DoMove(move)
			keyHistory = append(keyHistory, position.Key)
		}
	}

	u.position = position
	u.keyHistory = keyHistory

	u.main.StopThinking()
	u.main.WaitUntilSearchDone()
	u.main.Initialise(u.position, u.keyHistory)
}

// handleGo parses the limits and wakes the main thread; "bestmove" is
// emitted by the search itself when it finishes.
func (u *UCI) handleGo(args []string) {
	var limits engine.Limits

	for i := 0; i < len(args); i++ {
		takeInt := func() (int, bool) {
			if i+1 >= len(args) {
				return 0, false
			}
			i++
			n, err := strconv.Atoi(args[i])
			return n, err == nil
		}

		switch args[i] {
		case "ponder":
			limits.Ponder = true
		case "infinite":
			limits.Infinite = true
		case "wtime":
			if n, ok := takeInt(); ok {
				limits.TC.WTime = time.Duration(n) * time.Millisecond
			}
		case "btime":
			if n, ok := takeInt(); ok {
				limits.TC.BTime = time.Duration(n) * time.Millisecond
			}
		case "winc":
			if n, ok := takeInt(); ok {
				limits.TC.WInc = time.Duration(n) * time.Millisecond
			}
		case "binc":
			if n, ok := takeInt(); ok {
				limits.TC.BInc = time.Duration(n) * time.Millisecond
			}
		case "movestogo":
			if n, ok := takeInt(); ok {
				limits.TC.MovesToGo = n
			}
		case "movetime":
			if n, ok := takeInt(); ok {
				limits.TC.MoveTime = time.Duration(n) * time.Millisecond
			}
		case "depth":
			if n, ok := takeInt(); ok {
				limits.Depth = n
			}
		case "mate":
			if n, ok := takeInt(); ok {
				limits.Mate = n
			}
		case "nodes":
			if n, ok := takeInt(); ok {
				limits.Nodes = uint64(n)
			}
		default:
			fmt.Printf("info string Unrecognised parameter '%s'\n", args[i])
		}
	}

	u.main.StopThinking()
	u.main.WaitUntilSearchDone()
	u.main.StartThinking(limits)
}

func (u *UCI) handlePerft(args []string) {
	if len(args) < 1 {
		fmt.Println("info string Usage: perft <depth>")
		return
	}

	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 {
		fmt.Printf("info string Invalid depth '%s'\n", args[0])
		return
	}

	start := time.Now()
	nodes := board.Perft(u.position, depth)
	elapsed := time.Since(start)

	fmt.Printf("info string perft(%d) = %d in %d ms\n", depth, nodes, elapsed.Milliseconds())
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
