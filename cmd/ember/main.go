// Command ember is the driver for the Ember language: a REPL plus
// run/build/disasm subcommands over pkg/compiler, pkg/vm, and pkg/chunk.
//
// Descended from the teacher's cmd/smog/main.go (same subcommand set —
// run a source file, compile to bytecode, disassemble bytecode, drop
// into an interactive shell) rebuilt on github.com/urfave/cli/v2 instead
// of a hand-rolled os.Args switch, and on github.com/peterh/liner instead
// of a bare bufio.Scanner loop for the REPL.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/urfave/cli/v2"

	"github.com/ember-lang/ember/pkg/chunk"
	"github.com/ember-lang/ember/pkg/compiler"
	"github.com/ember-lang/ember/pkg/object"
	"github.com/ember-lang/ember/pkg/vm"
)

const appVersion = "0.1.0"

// Exit codes per spec.md §6: 0 clean, 65 a compile error, 70 a runtime
// error. Argument-parsing failures (urfave/cli's own doing) use its
// default of 1.
const (
	exitCompile = 65
	exitRuntime = 70
)

func main() {
	app := &cli.App{
		Name:    "ember",
		Usage:   "a small bytecode-compiled scripting language",
		Version: appVersion,
		Action:  replOrRunAction,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "compile and execute a .em source file or a .emc bytecode file",
				ArgsUsage: "<file>",
				Action:    runAction,
			},
			{
				Name:      "repl",
				Usage:     "start the interactive read-eval-print loop",
				ArgsUsage: " ",
				Action:    func(c *cli.Context) error { return runREPL() },
			},
			{
				Name:      "build",
				Usage:     "compile a .em source file to a .emc bytecode file",
				ArgsUsage: "<input.em> [output.emc]",
				Action:    buildAction,
			},
			{
				Name:      "disasm",
				Usage:     "print a human-readable listing of a compiled chunk",
				ArgsUsage: "<file.em|file.emc>",
				Action:    disasmAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFromError(err))
	}
}

// replOrRunAction is the app's bare-invocation behavior: no arguments
// drops into the REPL (matching spec.md's "run file", "no file -> REPL"
// shorthand), one argument runs it as a file.
func replOrRunAction(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return runREPL()
	}
	return runFile(c.Args().First())
}

func runAction(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return cli.Exit("Error: no file specified\nUsage: ember run <file>", 1)
	}
	return runFile(c.Args().First())
}

// exitFromError maps a returned error to the process exit code spec.md
// §6 wants, so that a cli.Exit usage error still exits 1 while compile
// and runtime errors get their own codes.
func exitFromError(err error) int {
	switch err.(type) {
	case *vm.CompileErrors:
		return exitCompile
	case *vm.RuntimeError:
		return exitRuntime
	}
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return 1
}

// runFile loads filename, which may be Ember source (any extension other
// than .emc) or a precompiled .emc chunk, and executes it on a fresh VM.
func runFile(filename string) error {
	machine := vm.New()
	if filepath.Ext(filename) == ".emc" {
		fn, err := loadChunkAsFunction(filename, machine)
		if err != nil {
			return err
		}
		return machine.Run(fn)
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return machine.Interpret(string(source))
}

// loadChunkAsFunction decodes the .emc file at filename against machine's
// string pool and wraps the result in a nameless, zero-arity Function so
// it can be handed to vm.Run the same way a freshly compiled script can.
func loadChunkAsFunction(filename string, machine *vm.VM) (*object.Function, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := chunk.Decode(f, machine.Strings())
	if err != nil {
		return nil, fmt.Errorf("error loading bytecode: %w", err)
	}
	fn := object.NewFunction(nil, 0)
	fn.Chunk = c
	return fn, nil
}

// buildAction compiles a .em source file to a .emc bytecode file, the way
// the teacher's "compile" subcommand precompiles a .smog to a .sg.
func buildAction(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return cli.Exit("Error: no file specified\nUsage: ember build <input.em> [output.emc]", 1)
	}
	input := c.Args().Get(0)
	output := c.Args().Get(1)
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".emc"
	}

	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	machine := vm.New()
	fn, errs := compiler.Compile(string(source), machine.Strings())
	if len(errs) > 0 {
		return &vm.CompileErrors{Errors: errs}
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := chunk.Encode(out, fn.Chunk.(*chunk.Chunk)); err != nil {
		return fmt.Errorf("error writing bytecode: %w", err)
	}

	fmt.Printf("Compiled %s -> %s\n", input, output)
	return nil
}

// disasmAction prints vm.DisassembleChunk's listing for a source or
// bytecode file's top-level chunk, recursing into nested function chunks
// the same disassembler already walks.
func disasmAction(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return cli.Exit("Error: no file specified\nUsage: ember disasm <file>", 1)
	}
	filename := c.Args().First()
	machine := vm.New()

	var name string
	var fn *object.Function
	var err error
	if filepath.Ext(filename) == ".emc" {
		name = filename
		fn, err = loadChunkAsFunction(filename, machine)
	} else {
		var source []byte
		source, err = os.ReadFile(filename)
		if err == nil {
			name = "script"
			var errs []compiler.CompileError
			fn, errs = compiler.Compile(string(source), machine.Strings())
			if len(errs) > 0 {
				err = &vm.CompileErrors{Errors: errs}
			}
		}
	}
	if err != nil {
		return err
	}

	fmt.Print(vm.DisassembleChunk(name, fn.Chunk.(*chunk.Chunk)))
	return nil
}

func runREPL() error {
	fmt.Printf("ember %s\n", appVersion)
	fmt.Println("Type 'exit' or 'quit' to leave, Ctrl-D also works.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	machine := vm.New()
	for {
		input, err := line.Prompt("ember> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if strings.EqualFold(trimmed, "exit") || strings.EqualFold(trimmed, "quit") {
			return nil
		}
		line.AppendHistory(input)

		if err := machine.Interpret(trimmed); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
