// Command mink is a UCI chess engine. Run with no arguments for the
// UCI protocol loop, or with a subcommand:
//
//	mink perft <depth> [fen]    count leaf nodes of the move tree
//	mink divide <depth> [fen]   perft split by root move
//	mink bench [depth]          search a fixed position set and report nps
//
// The FEN may be the literal "startpos" or "kiwipete".
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sb362/chess-engine/internal/board"
	"github.com/sb362/chess-engine/internal/engine"
	"github.com/sb362/chess-engine/internal/storage"
	"github.com/sb362/chess-engine/internal/uci"
)

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "perft", "divide":
			os.Exit(runPerft(args))
		case "bench":
			os.Exit(runBench(args))
		default:
			fmt.Printf("Unknown subcommand '%s'\n", args[0])
			os.Exit(1)
		}
	}

	store, err := storage.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string Persistent storage unavailable: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	uci.New(store).Run()
}

// parseFENArg resolves the trailing FEN arguments, accepting the
// "startpos" and "kiwipete" aliases.
func parseFENArg(args []string) (*board.Position, error) {
	fen := strings.Join(args, " ")

	switch fen {
	case "", "startpos":
		fen = board.StartFEN
	case "kiwipete":
		fen = board.KiwipeteFEN
	}

	return board.ParseFEN(fen)
}

func runPerft(args []string) int {
	if len(args) < 2 {
		fmt.Printf("Usage: %s [perft | divide] <depth> [fen | startpos | kiwipete]\n", os.Args[0])
		return 1
	}

	depth, err := strconv.Atoi(args[1])
	if err != nil || depth < 1 {
		fmt.Printf("Failed to parse depth: %s\n", args[1])
		return 1
	}

	position, err := parseFENArg(args[2:])
	if err != nil {
		fmt.Printf("%v\n", err)
		return 1
	}

	fmt.Print(position.String())

	start := time.Now()
	var nodes uint64
	if args[0] == "divide" {
		nodes = board.Divide(position, depth, func(m board.Move, count uint64) {
			fmt.Printf("%s: %d\n", m, count)
		})
	} else {
		nodes = board.Perft(position, depth)
	}
	elapsed := time.Since(start)

	fmt.Printf("nodes:      %d\n", nodes)
	fmt.Printf("knodes/sec: %.0f\n", float64(nodes)/float64(elapsed.Microseconds()+1)*1e3)
	fmt.Printf("time taken: %d ms\n", elapsed.Milliseconds())

	return 0
}

func runBench(args []string) int {
	depth := 8
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			fmt.Printf("Failed to parse depth: %s\n", args[1])
			return 1
		}
		depth = n
	}

	tt := engine.NewTranspositionTable(engine.DefaultTTSize)
	mainThread := engine.NewMainThread(tt)
	defer mainThread.Close()

	result, err := engine.Bench(mainThread, depth)
	if err != nil {
		fmt.Printf("%v\n", err)
		return 1
	}

	fmt.Printf("positions:  %d\n", result.Positions)
	fmt.Printf("depth:      %d\n", result.Depth)
	fmt.Printf("nodes:      %d\n", result.Nodes)
	fmt.Printf("nodes/sec:  %d\n", result.NPS())
	fmt.Printf("time taken: %d ms\n", result.Duration.Milliseconds())

	if store, err := storage.Open(); err == nil {
		if err := store.RecordBench(result.NPS()); err != nil {
			fmt.Fprintf(os.Stderr, "info string Failed to record bench: %v\n", err)
		}
		store.Close()
	}

	return 0
}
