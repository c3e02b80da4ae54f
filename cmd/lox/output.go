package main

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/term"

	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// ---- diagnostic rendering ----

// renderDiags prints diagnostics with source context (caret underline).
// Colors are stripped when stderr is not a terminal.
func renderDiags(source string, diags []diag.Diagnostic) {
	for _, d := range diags {
		out := diag.Render(source, d)
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			out = diag.StripColor(out)
		}
		fmt.Fprint(os.Stderr, out)
	}
}

func renderRuntimeError(source string, err error) {
	type diagnoser interface {
		Diagnostic() diag.Diagnostic
	}
	if d, ok := err.(diagnoser); ok {
		renderDiags(source, []diag.Diagnostic{d.Diagnostic()})
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// ---- JSON output ----

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: JSON encoding failed: %v\n", err)
		os.Exit(1)
	}
}

func diagsToSlice(diags []diag.Diagnostic) []map[string]interface{} {
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"code":     d.Code,
			"severity": d.Severity.String(),
			"message":  d.Message,
			"start":    d.Span.Start,
			"end":      d.Span.End,
		}
		if d.Hint != "" {
			result[i]["hint"] = d.Hint
		}
	}
	return result
}

// ---- token output ----

func printTokensText(tokens []token.Token, diags []diag.Diagnostic) {
	for _, tok := range tokens {
		fmt.Printf("%-12s %-20s %s\n", tok.Kind, tok.Lexeme, tok.Span)
	}
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func printTokensJSON(tokens []token.Token, diags []diag.Diagnostic) {
	type tokenJSON struct {
		Kind   string `json:"kind"`
		Lexeme string `json:"lexeme"`
		Start  int    `json:"start"`
		End    int    `json:"end"`
	}

	var toks []tokenJSON
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:   tok.Kind.String(),
			Lexeme: tok.Lexeme,
			Start:  tok.Span.Start,
			End:    tok.Span.End,
		})
	}

	printJSON(map[string]interface{}{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	})
}
