// Package lexer implements lexical analysis (tokenization) for the language.
package lexer

import (
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// Lexer tokenizes source code into a sequence of tokens. It never aborts
// early: errors are collected as diagnostics and lexing continues at the
// next character.
type Lexer struct {
	source string
	pos    int // current read position in source
	diags  []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source string) *Lexer {
	return &Lexer{source: source}
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The token slice always ends with exactly one EOF token spanning one byte
// past the end of the source.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok, ok := l.next()
		if ok {
			tokens = append(tokens, tok)
		}
		if ok && tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// absorbIfMatch consumes the current character and returns true if it equals
// ch; otherwise it leaves the cursor alone and returns false.
func (l *Lexer) absorbIfMatch(ch byte) bool {
	if l.pos < len(l.source) && l.source[l.pos] == ch {
		l.pos++
		return true
	}
	return false
}

// makeToken builds a token over [start, l.pos) with the lexeme sliced from
// the source.
func (l *Lexer) makeToken(kind token.Kind, start int) token.Token {
	s := span.New(start, l.pos)
	return token.Token{Kind: kind, Lexeme: s.Slice(l.source), Span: s}
}

func (l *Lexer) addError(code string, s span.Span, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, s, "%s", msg))
}

// ---- token reading ----

// next produces the next token. The bool result is false when no token was
// produced (whitespace, comment, or an error that consumed input); callers
// just loop.
func (l *Lexer) next() (token.Token, bool) {
	if l.pos >= len(l.source) {
		// Eof spans one byte past the end of the source.
		eof := span.New(l.pos, l.pos+1)
		return token.Token{Kind: token.EOF, Span: eof}, true
	}

	start := l.pos
	ch := l.source[l.pos]

	switch ch {
	case ' ', '\t', '\r', '\n':
		l.pos++
		return token.Token{}, false

	case '(':
		l.pos++
		return l.makeToken(token.LPAREN, start), true
	case ')':
		l.pos++
		return l.makeToken(token.RPAREN, start), true
	case '{':
		l.pos++
		return l.makeToken(token.LBRACE, start), true
	case '}':
		l.pos++
		return l.makeToken(token.RBRACE, start), true
	case ',':
		l.pos++
		return l.makeToken(token.COMMA, start), true
	case '.':
		l.pos++
		return l.makeToken(token.DOT, start), true
	case '-':
		l.pos++
		return l.makeToken(token.MINUS, start), true
	case '+':
		l.pos++
		return l.makeToken(token.PLUS, start), true
	case ';':
		l.pos++
		return l.makeToken(token.SEMICOLON, start), true
	case '*':
		l.pos++
		return l.makeToken(token.STAR, start), true

	case '!':
		l.pos++
		if l.absorbIfMatch('=') {
			return l.makeToken(token.BANG_EQ, start), true
		}
		return l.makeToken(token.BANG, start), true
	case '=':
		l.pos++
		if l.absorbIfMatch('=') {
			return l.makeToken(token.EQUAL_EQ, start), true
		}
		return l.makeToken(token.EQUAL, start), true
	case '>':
		l.pos++
		if l.absorbIfMatch('=') {
			return l.makeToken(token.GREATER_EQ, start), true
		}
		return l.makeToken(token.GREATER, start), true
	case '<':
		l.pos++
		if l.absorbIfMatch('=') {
			return l.makeToken(token.LESS_EQ, start), true
		}
		return l.makeToken(token.LESS, start), true

	case '/':
		l.pos++
		if l.absorbIfMatch('/') {
			l.skipLineComment()
			return token.Token{}, false
		}
		return l.makeToken(token.SLASH, start), true

	case '"':
		return l.readString(start)
	}

	if isDigit(ch) {
		return l.readNumber(start), true
	}
	if isAlpha(ch) {
		return l.readIdentifier(start), true
	}

	l.addError("E1002", span.New(start, start+1), "unexpected character")
	l.pos++
	return token.Token{}, false
}

// skipLineComment skips from // to end of line.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.pos++
	}
}

// readString reads a double-quoted string literal. Escape sequences are not
// supported. An unterminated string is a diagnostic and produces no token.
func (l *Lexer) readString(start int) (token.Token, bool) {
	l.pos++ // opening "
	for l.pos < len(l.source) && l.source[l.pos] != '"' {
		l.pos++
	}

	if l.pos >= len(l.source) {
		l.addError("E1001", span.New(start, l.pos), "unterminated string literal")
		return token.Token{}, false
	}

	l.pos++ // closing "
	return l.makeToken(token.STRING, start), true
}

// readNumber reads a number literal: a run of digits, optionally followed by
// a '.' and more digits. The '.' is consumed only when a digit follows, so
// "2." lexes as NUMBER then DOT, and ".2" as DOT then NUMBER.
func (l *Lexer) readNumber(start int) token.Token {
	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.pos++
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.pos++ // '.'
		for l.pos < len(l.source) && isDigit(l.peek()) {
			l.pos++
		}
	}

	return l.makeToken(token.NUMBER, start)
}

// readIdentifier reads an identifier or keyword: an ASCII letter followed by
// a run of ASCII letters and digits.
func (l *Lexer) readIdentifier(start int) token.Token {
	for l.pos < len(l.source) && isAlphaNumeric(l.peek()) {
		l.pos++
	}

	lexeme := l.source[start:l.pos]
	return l.makeToken(token.LookupIdent(lexeme), start)
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}
