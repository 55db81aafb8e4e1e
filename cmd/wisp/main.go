// Command wisp is the Wisp language's CLI: a REPL, a file runner, and a
// bytecode disassembler, dispatching on its first non-flag argument. A
// -config flag points at a YAML file of VM tuning knobs, read once here at
// startup and threaded into every VM it creates.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/wisplang/wisp/internal/config"
	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/compiler"
	"github.com/wisplang/wisp/pkg/object"
	"github.com/wisplang/wisp/pkg/vm"
)

const version = "0.1.0"

// defaultConfigPath is looked up relative to the working directory when
// -config isn't given; a missing file is not an error (config.Load falls
// back to config.Defaults()).
const defaultConfigPath = "wisp.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to a YAML VM-tuning file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) < 1 {
		runREPL(cfg)
		return
	}

	switch args[0] {
	case "version", "-v", "--version":
		fmt.Printf("wisp version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	case "repl":
		runREPL(cfg)
	case "run":
		if len(args) < 2 {
			fmt.Println("Error: no file specified")
			printUsage()
			os.Exit(1)
		}
		runFile(args[1], cfg)
	case "disassemble", "disasm":
		if len(args) < 2 {
			fmt.Println("Error: no file specified")
			fmt.Println("\nUsage: wisp disassemble <file.wisp>")
			os.Exit(1)
		}
		disassembleFile(args[1], cfg)
	default:
		runFile(args[0], cfg)
	}
}

func printUsage() {
	fmt.Println("wisp - a dynamically-typed, class-based scripting language")
	fmt.Println("\nUsage:")
	fmt.Println("  wisp                       Start interactive REPL")
	fmt.Println("  wisp [file]                Run a .wisp file")
	fmt.Println("  wisp run [file]            Run a .wisp file")
	fmt.Println("  wisp disassemble <file>    Compile a .wisp file and print its bytecode")
	fmt.Println("  wisp repl                  Start interactive REPL")
	fmt.Println("  wisp version               Show version")
	fmt.Println("  wisp help                  Show this help")
	fmt.Printf("\n  -config <path>             VM-tuning YAML file (default %q)\n", defaultConfigPath)
}

// runFile reads, compiles, and runs a single source file in a fresh VM,
// exiting non-zero on a compile or runtime error.
func runFile(filename string, cfg *config.Config) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	machine := vm.New(cfg)
	result, err := machine.Interpret(string(data))
	switch result {
	case vm.InterpretCompileError:
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(65)
	case vm.InterpretRuntimeError:
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(70)
	}
}

// disassembleFile compiles a source file and prints the top-level script's
// instruction listing (constant operands shown inline) via pkg/bytecode's
// disassembler, without running it. Nested functions' chunks are not listed.
func disassembleFile(filename string, cfg *config.Config) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	fn, err := compiler.New(object.NewHeap(cfg.GCGrowFactor)).Compile(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(65)
	}
	bytecode.Disassemble(os.Stdout, fn.Chunk, fn.String())
}

// runREPL starts an interactive session, using peterh/liner for history and
// line editing when stdin is a real terminal, and a plain line scanner when
// it's piped (mirroring funvibe-funxy's isatty-gated terminal-mode switch).
func runREPL(cfg *config.Config) {
	machine := vm.New(cfg)

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		runLinerREPL(machine)
		return
	}
	runPipedREPL(machine)
}

func runLinerREPL(machine *vm.VM) {
	fmt.Printf("wisp %s\n", version)
	fmt.Println("Type :quit or :exit to leave, Ctrl-D also works.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("wisp> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			return
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" || trimmed == ":exit" {
			return
		}
		line.AppendHistory(input)
		evalREPL(machine, input)
	}
}

// runPipedREPL feeds a non-interactive stdin (a pipe or redirected file)
// line by line, calling Interpret once per input chunk and keeping
// globals live across calls.
func runPipedREPL(machine *vm.VM) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
		os.Exit(1)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		evalREPL(machine, line)
	}
}

func evalREPL(machine *vm.VM, input string) {
	result, err := machine.Interpret(input)
	if result != vm.InterpretOK {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}
