// Command lox is the CLI entry point for the lox-lang toolchain.
//
// Usage:
//
//	lox tokens <file>            Print tokens
//	lox tokens <file> --json     Print tokens as JSON
//	lox parse  <file>            Print AST as JSON
//	lox run    <file>            Run a source file
//	lox repl                     Start interactive REPL
//	lox <file>                   Shorthand for run
//	lox                          Shorthand for repl
package main

import (
	"fmt"
	"os"
	"strings"

	"lox-lang/internal/ast"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/runtime"
)

func main() {
	if len(os.Args) < 2 {
		cmdRepl()
		return
	}

	command := os.Args[1]

	switch command {
	case "tokens":
		source := requireFileArg()
		cmdTokens(source, hasFlag("--json"))
	case "parse":
		source := requireFileArg()
		cmdParse(source)
	case "run":
		source := requireFileArg()
		cmdRun(source)
	case "repl":
		cmdRepl()
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		// `lox script.lox` is shorthand for `lox run script.lox`.
		if strings.HasSuffix(command, ".lox") {
			cmdRun(readFile(command))
			return
		}
		if _, err := os.Stat(command); err == nil {
			cmdRun(readFile(command))
			return
		}
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func usage(w *os.File) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  lox tokens <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(w, "  lox parse  <file>            Parse and print AST (JSON)")
	fmt.Fprintln(w, "  lox run    <file>            Run a source file")
	fmt.Fprintln(w, "  lox repl                     Start interactive REPL")
	fmt.Fprintln(w, "  lox <file>                   Same as run")
	fmt.Fprintln(w, "  lox                          Same as repl")
}

func requireFileArg() string {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "error: missing file argument")
		usage(os.Stderr)
		os.Exit(2)
	}
	return readFile(os.Args[2])
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args[3:] {
		if arg == flag {
			return true
		}
	}
	return false
}

// ---- tokens command ----

func cmdTokens(source string, jsonMode bool) {
	tokens, diags := lexer.New(source).Tokenize()

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}
}

// ---- parse command ----

func cmdParse(source string) {
	tokens, lexDiags := lexer.New(source).Tokenize()
	file, parseDiags := parser.New(tokens).ParseFile()

	allDiags := append(lexDiags, parseDiags...)
	printJSON(map[string]interface{}{
		"ast":         ast.NodeToMap(file),
		"diagnostics": diagsToSlice(allDiags),
	})
}

// ---- run command ----

// cmdRun runs a source file in stages. Errors in an earlier stage stop the
// pipeline; diagnostics are rendered with source context. A program that
// fails is not a tool failure, so the exit code stays 0.
func cmdRun(source string) {
	tokens, lexDiags := lexer.New(source).Tokenize()
	if len(lexDiags) > 0 {
		renderDiags(source, lexDiags)
		return
	}

	file, parseDiags := parser.New(tokens).ParseFile()
	if len(parseDiags) > 0 {
		renderDiags(source, parseDiags)
		return
	}

	interp := runtime.NewInterpreter(os.Stdout)
	if err := interp.Run(file); err != nil {
		renderRuntimeError(source, err)
	}
}
