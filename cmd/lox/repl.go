package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/runtime"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// ---- repl command ----

func cmdRepl() {
	// History lives in ~/.lox_history.
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".lox_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            colorGreen + "lox> " + colorReset,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s%slox REPL%s %s(empty line, 'exit', or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	// One interpreter for the whole session, so variables and functions
	// persist between submissions. Echo mode shows expression results.
	interp := runtime.NewInterpreter(rl.Stdout())
	interp.SetEcho(true)

	var accumulated strings.Builder
	braceDepth := 0

	for {
		if braceDepth > 0 {
			rl.SetPrompt(colorGray + "...  " + colorReset)
		} else {
			rl.SetPrompt(colorGreen + "lox> " + colorReset)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					// Cancel multi-line input.
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(empty line, 'exit', or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if braceDepth == 0 {
			trimmed := strings.TrimSpace(line)
			// An empty line or 'exit' ends the session.
			if trimmed == "" || trimmed == "exit" {
				break
			}
		}

		// Unbalanced braces mean the statement continues on the next line.
		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")

		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()

		tokens, lexDiags := lexer.New(source).Tokenize()
		if len(lexDiags) > 0 {
			renderReplDiags(rl.Stderr(), source, lexDiags)
			continue
		}

		file, parseDiags := parser.New(tokens).ParseFile()
		if len(parseDiags) > 0 {
			renderReplDiags(rl.Stderr(), source, parseDiags)
			continue
		}

		if err := interp.Run(file); err != nil {
			if rerr, ok := err.(*runtime.Error); ok {
				renderReplDiags(rl.Stderr(), source, []diag.Diagnostic{rerr.Diagnostic()})
				continue
			}
			fmt.Fprintf(rl.Stderr(), "%serror: %s%s\n", colorRed, err, colorReset)
		}
	}
}

// renderReplDiags renders diagnostics with source context. The REPL always
// colors its output.
func renderReplDiags(w io.Writer, source string, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprint(w, diag.Render(source, d))
	}
}
