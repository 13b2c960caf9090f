// Command embr is the CLI driver for the language (spec §1, §6): run a
// script, drop into a REPL, or disassemble compiled bytecode. Grounded on
// kristofer-smog's cmd/smog/main.go — a bare switch over os.Args[1]
// dispatching to small runFile/runREPL/disassembleFile helpers — retargeted
// at embr's single compiled artifact (there is no separate .sg bytecode
// format to also support) and wired to real host implementations for the
// hooks internal/host declares.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/embr-lang/embr/internal/hostconfig"
	"github.com/embr-lang/embr/internal/interp"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runREPL()
	}
	switch args[0] {
	case "version", "-v", "--version":
		fmt.Printf("embr version %s\n", version)
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "repl":
		return runREPL()
	case "run":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "error: no file specified")
			printUsage()
			return 64
		}
		return runFile(args[1])
	case "disassemble", "disasm":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "error: no file specified")
			printUsage()
			return 64
		}
		return disassembleFile(args[1])
	default:
		return runFile(args[0])
	}
}

func printUsage() {
	fmt.Println("embr - a small dynamically-typed scripting language")
	fmt.Println("\nUsage:")
	fmt.Println("  embr                   Start the interactive REPL")
	fmt.Println("  embr <file>            Run a source file")
	fmt.Println("  embr run <file>        Run a source file")
	fmt.Println("  embr disassemble <f>   Print the compiled bytecode for a file")
	fmt.Println("  embr repl              Start the interactive REPL")
	fmt.Println("  embr version           Show the version")
}

// runFile runs one source file to completion, exiting per spec §6: 0 on a
// clean run, 65 on a compile error, 70 on a runtime error.
func runFile(filename string) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", filename, err)
		return 74
	}

	cfg, err := hostconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		return 74
	}

	h := newFileHost(filename)
	it := interp.New(h, cfg)
	if err := it.Run(string(src)); err != nil {
		return reportAndExitCode(err)
	}
	return 0
}

func disassembleFile(filename string) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", filename, err)
		return 74
	}
	cfg, err := hostconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		return 74
	}
	it := interp.New(newFileHost(filename), cfg)
	listing, err := it.Disassemble(string(src), filename)
	if err != nil {
		return reportAndExitCode(err)
	}
	fmt.Print(listing)
	return 0
}

// runREPL reads one statement per line and runs it against a single
// Interpreter whose globals persist across lines — the way kristofer-smog's
// runREPL keeps one VM alive for the whole session.
func runREPL() int {
	cfg, err := hostconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		return 74
	}
	it := interp.New(newFileHost("."), cfg)

	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	prompt := "> "
	if color {
		prompt = "\x1b[36m>\x1b[0m "
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("embr %s — Ctrl-D to exit\n", version)
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			return 0
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := it.Run(line); err != nil {
			reportAndExitCode(err)
		}
	}
}
