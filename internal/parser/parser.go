// Package parser implements syntax analysis for the language.
// It uses Pratt parsing for expressions and recursive descent for
// statements and declarations.
package parser

import (
	"fmt"
	"strconv"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// maxCallArgs is the maximum number of arguments (and parameters) a call
// may carry. Exceeding it is reported but does not abort the parse.
const maxCallArgs = 255

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpAssign     = 5  // =
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * /
	bpPrefix     = 70 // ! -
	bpPostfix    = 80 // () .
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.EQUAL:
		return bpAssign
	case token.KW_OR:
		return bpOr
	case token.KW_AND:
		return bpAnd
	case token.EQUAL_EQ, token.BANG_EQ:
		return bpEquality
	case token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH:
		return bpMultiply
	case token.LPAREN, token.DOT:
		return bpPostfix
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens. Failed productions
// return nil; the declaration loop synchronizes to the next statement
// boundary and keeps going, so one bad statement never hides the rest.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice. The slice is expected to end
// with an EOF token, as produced by the lexer.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseFile parses the entire token stream and returns the AST root and
// diagnostics.
func (p *Parser) ParseFile() (*ast.File, []diag.Diagnostic) {
	file := &ast.File{}
	start := p.peek().Span.Start

	for !p.isAtEnd() {
		decl := p.parseDecl()
		if decl != nil {
			file.Body = append(file.Body, decl)
		} else {
			p.synchronize()
		}
	}

	file.Span = span.New(start, p.peek().Span.End)
	return file, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) previous() token.Token {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1]
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

// expect consumes a token of the given kind or reports a diagnostic. An
// unexpected EOF gets its own code so callers can tell "ran off the end"
// from "wrong token here".
func (p *Parser) expect(kind token.Kind, context string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	if tok.Kind == token.EOF {
		p.error("E2002", tok.Span, fmt.Sprintf("unexpected end of input, expected '%s' %s", kind, context))
	} else {
		p.error("E2001", tok.Span, fmt.Sprintf("expected '%s' %s, got '%s'", kind, context, tok.Kind))
	}
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(code, s, "%s", msg))
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary: just past a
// semicolon, or just before a keyword that starts a statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		switch p.peekKind() {
		case token.KW_CLASS, token.KW_FUN, token.KW_VAR, token.KW_FOR,
			token.KW_IF, token.KW_WHILE, token.KW_PRINT, token.KW_RETURN:
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations
// ============================================================

// parseDecl parses a declaration or statement. Returns nil on failure after
// reporting a diagnostic; the caller synchronizes.
func (p *Parser) parseDecl() ast.Stmt {
	switch p.peekKind() {
	case token.KW_FUN:
		return p.parseFuncDecl()
	case token.KW_VAR:
		return p.parseVarDecl()
	default:
		return p.parseStmt()
	}
}

// parseFuncDecl parses: fun IDENT ( params ) block
func (p *Parser) parseFuncDecl() ast.Stmt {
	start := p.advance() // 'fun'

	name, ok := p.expect(token.IDENT, "after 'fun'")
	if !ok {
		return nil
	}

	params, ok := p.parseParamList()
	if !ok {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &ast.FuncDecl{
		StmtBase: makeStmtBase(start.Span.Start, body.Span.End),
		Name:     name,
		Params:   params,
		Body:     body,
	}
}

// parseParamList parses: ( IDENT, IDENT, ... )
func (p *Parser) parseParamList() ([]token.Token, bool) {
	if _, ok := p.expect(token.LPAREN, "before parameters"); !ok {
		return nil, false
	}

	var params []token.Token
	if !p.check(token.RPAREN) {
		for {
			name, ok := p.expect(token.IDENT, "as parameter name")
			if !ok {
				return nil, false
			}
			if len(params) == maxCallArgs {
				p.error("E2004", name.Span, fmt.Sprintf("cannot have more than %d parameters", maxCallArgs))
			}
			params = append(params, name)
			if !p.check(token.COMMA) {
				break
			}
			p.advance() // ','
		}
	}

	if _, ok := p.expect(token.RPAREN, "after parameters"); !ok {
		return nil, false
	}
	return params, true
}

// parseVarDecl parses: var IDENT [ = expr ] ;
func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.advance() // 'var'

	name, ok := p.expect(token.IDENT, "after 'var'")
	if !ok {
		return nil
	}

	var init ast.Expr
	if p.check(token.EQUAL) {
		p.advance()
		init = p.parseExpr(bpNone)
		if init == nil {
			return nil
		}
	}

	semi, ok := p.expect(token.SEMICOLON, "after variable declaration")
	if !ok {
		return nil
	}

	return &ast.VarDeclStmt{
		StmtBase: makeStmtBase(start.Span.Start, semi.Span.End),
		Name:     name,
		Init:     init,
	}
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_PRINT:
		return p.parsePrintStmt()
	case token.LBRACE:
		block := p.parseBlock()
		if block == nil {
			return nil
		}
		return block
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	default:
		return p.parseExprStmt()
	}
}

// parsePrintStmt parses: print expr ;
func (p *Parser) parsePrintStmt() ast.Stmt {
	start := p.advance() // 'print'

	expr := p.parseExpr(bpNone)
	if expr == nil {
		return nil
	}

	semi, ok := p.expect(token.SEMICOLON, "after value")
	if !ok {
		return nil
	}

	return &ast.PrintStmt{
		StmtBase: makeStmtBase(start.Span.Start, semi.Span.End),
		Expr:     expr,
	}
}

// parseBlock parses: { declaration* }
func (p *Parser) parseBlock() *ast.BlockStmt {
	start, ok := p.expect(token.LBRACE, "to open block")
	if !ok {
		return nil
	}

	block := &ast.BlockStmt{}
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		decl := p.parseDecl()
		if decl != nil {
			block.Stmts = append(block.Stmts, decl)
		} else {
			p.synchronize()
		}
	}

	end, ok := p.expect(token.RBRACE, "to close block")
	if !ok {
		return nil
	}

	block.StmtBase = makeStmtBase(start.Span.Start, end.Span.End)
	return block
}

// parseIfStmt parses: if ( expr ) stmt [ else stmt ]
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance() // 'if'

	if _, ok := p.expect(token.LPAREN, "after 'if'"); !ok {
		return nil
	}
	condition := p.parseExpr(bpNone)
	if condition == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN, "after condition"); !ok {
		return nil
	}

	then := p.parseStmt()
	if then == nil {
		return nil
	}

	// else binds to the nearest if.
	var elseStmt ast.Stmt
	if p.check(token.KW_ELSE) {
		p.advance()
		elseStmt = p.parseStmt()
		if elseStmt == nil {
			return nil
		}
	}

	end := then.GetSpan().End
	if elseStmt != nil {
		end = elseStmt.GetSpan().End
	}
	return &ast.IfStmt{
		StmtBase:  makeStmtBase(start.Span.Start, end),
		Condition: condition,
		Then:      then,
		Else:      elseStmt,
	}
}

// parseWhileStmt parses: while ( expr ) stmt
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.advance() // 'while'

	if _, ok := p.expect(token.LPAREN, "after 'while'"); !ok {
		return nil
	}
	condition := p.parseExpr(bpNone)
	if condition == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN, "after condition"); !ok {
		return nil
	}

	body := p.parseStmt()
	if body == nil {
		return nil
	}

	return &ast.WhileStmt{
		StmtBase:  makeStmtBase(start.Span.Start, body.GetSpan().End),
		Condition: condition,
		Body:      body,
	}
}

// parseForStmt parses: for ( [init] ; [cond] ; [incr] ) stmt
//
// For loops have no AST node of their own; they desugar into blocks and a
// while loop:
//
//	{ init; while (cond) { body; incr; } }
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance() // 'for'

	if _, ok := p.expect(token.LPAREN, "after 'for'"); !ok {
		return nil
	}

	// Initializer: a var declaration, an expression statement, or nothing.
	var init ast.Stmt
	switch p.peekKind() {
	case token.SEMICOLON:
		p.advance()
	case token.KW_VAR:
		init = p.parseVarDecl()
		if init == nil {
			return nil
		}
	default:
		init = p.parseExprStmt()
		if init == nil {
			return nil
		}
	}

	// Condition: an omitted condition is always true.
	var condition ast.Expr
	if !p.check(token.SEMICOLON) {
		condition = p.parseExpr(bpNone)
		if condition == nil {
			return nil
		}
	}
	semi, ok := p.expect(token.SEMICOLON, "after loop condition")
	if !ok {
		return nil
	}
	if condition == nil {
		condition = &ast.BoolLiteral{
			ExprBase: makeExprBase(semi.Span.Start, semi.Span.End),
			Value:    true,
		}
	}

	// Increment.
	var incr ast.Expr
	if !p.check(token.RPAREN) {
		incr = p.parseExpr(bpNone)
		if incr == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.RPAREN, "after for clauses"); !ok {
		return nil
	}

	body := p.parseStmt()
	if body == nil {
		return nil
	}

	loopSpan := span.New(start.Span.Start, body.GetSpan().End)

	if incr != nil {
		body = &ast.BlockStmt{
			StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: body.GetSpan()}},
			Stmts: []ast.Stmt{
				body,
				&ast.ExprStmt{
					StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: incr.GetSpan()}},
					Expr:     incr,
				},
			},
		}
	}

	var loop ast.Stmt = &ast.WhileStmt{
		StmtBase:  ast.StmtBase{NodeBase: ast.NodeBase{Span: loopSpan}},
		Condition: condition,
		Body:      body,
	}

	if init != nil {
		loop = &ast.BlockStmt{
			StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: loopSpan}},
			Stmts:    []ast.Stmt{init, loop},
		}
	}
	return loop
}

// parseReturnStmt parses: return [expr] ;
func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.advance() // 'return'

	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.parseExpr(bpNone)
		if value == nil {
			return nil
		}
	}

	semi, ok := p.expect(token.SEMICOLON, "after return value")
	if !ok {
		return nil
	}

	return &ast.ReturnStmt{
		StmtBase: makeStmtBase(start.Span.Start, semi.Span.End),
		Value:    value,
	}
}

// parseExprStmt parses: expr ;
func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpr(bpNone)
	if expr == nil {
		return nil
	}

	semi, ok := p.expect(token.SEMICOLON, "after expression")
	if !ok {
		return nil
	}

	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, semi.Span.End),
		Expr:     expr,
	}
}

// ============================================================
// Expressions (Pratt / precedence climbing)
// ============================================================

// parseExpr parses an expression with the given minimum binding power.
// Returns nil on failure after reporting a diagnostic.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		bp := infixBP(p.peekKind())
		if bp <= minBP {
			break
		}
		left = p.led(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		val, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.NumberLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    val,
		}

	case token.STRING:
		p.advance()
		// Strip the surrounding quotes; there are no escape sequences.
		return &ast.StringLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Lexeme[1 : len(tok.Lexeme)-1],
		}

	case token.KW_TRUE:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    true,
		}

	case token.KW_FALSE:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    false,
		}

	case token.KW_NIL:
		p.advance()
		return &ast.NilLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
		}

	case token.KW_THIS:
		p.advance()
		return &ast.ThisExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
		}

	case token.KW_SUPER:
		p.advance()
		if _, ok := p.expect(token.DOT, "after 'super'"); !ok {
			return nil
		}
		method, ok := p.expect(token.IDENT, "as superclass method name")
		if !ok {
			return nil
		}
		return &ast.SuperExpr{
			ExprBase: makeExprBase(tok.Span.Start, method.Span.End),
			Method:   method,
		}

	case token.IDENT:
		p.advance()
		return &ast.IdentExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok.Lexeme,
		}

	case token.LPAREN:
		p.advance() // '('
		inner := p.parseExpr(bpNone)
		if inner == nil {
			return nil
		}
		end, ok := p.expect(token.RPAREN, "after expression")
		if !ok {
			return nil
		}
		return &ast.GroupingExpr{
			ExprBase: makeExprBase(tok.Span.Start, end.Span.End),
			Expr:     inner,
		}

	case token.BANG, token.MINUS:
		p.advance()
		operand := p.parseExpr(bpPrefix)
		if operand == nil {
			return nil
		}
		op := ast.OpNot
		if tok.Kind == token.MINUS {
			op = ast.OpNeg
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       op,
			Operand:  operand,
		}

	default:
		if tok.Kind == token.EOF {
			p.error("E2002", tok.Span, "unexpected end of input, expected expression")
		} else {
			p.error("E2001", tok.Span, fmt.Sprintf("expected expression, got '%s'", tok.Kind))
		}
		return nil
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EQUAL_EQ, token.BANG_EQ,
		token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ:
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			return nil
		}
		return &ast.BinaryExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       binaryOp(tok.Kind),
			Left:     left,
			Right:    right,
		}

	case token.KW_AND, token.KW_OR:
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			return nil
		}
		op := ast.OpAnd
		if tok.Kind == token.KW_OR {
			op = ast.OpOr
		}
		return &ast.LogicalExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       op,
			Left:     left,
			Right:    right,
		}

	case token.EQUAL:
		return p.parseAssign(left, tok)

	case token.LPAREN:
		return p.parseCallExpr(left)

	case token.DOT:
		p.advance() // '.'
		name, ok := p.expect(token.IDENT, "as property name after '.'")
		if !ok {
			return nil
		}
		return &ast.GetExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, name.Span.End),
			Object:   left,
			Name:     name,
		}

	default:
		return left
	}
}

// parseAssign parses the right side of '=' and validates the target. Only a
// plain variable or a property access may be assigned to; anything else is
// reported, but the left expression is still returned so parsing continues.
func (p *Parser) parseAssign(left ast.Expr, eq token.Token) ast.Expr {
	p.advance() // '='

	// Right-associative: a = b = c parses as a = (b = c).
	value := p.parseExpr(bpAssign - 1)
	if value == nil {
		return nil
	}

	switch target := left.(type) {
	case *ast.IdentExpr:
		return &ast.AssignExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, value.GetSpan().End),
			Name:     token.Token{Kind: token.IDENT, Lexeme: target.Name, Span: target.GetSpan()},
			Value:    value,
		}
	case *ast.GetExpr:
		return &ast.SetExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, value.GetSpan().End),
			Object:   target.Object,
			Name:     target.Name,
			Value:    value,
		}
	default:
		p.error("E2003", eq.Span, "invalid assignment target")
		return left
	}
}

// parseCallExpr parses: callee ( args )
func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	p.advance() // '('

	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			arg := p.parseExpr(bpNone)
			if arg == nil {
				return nil
			}
			if len(args) == maxCallArgs {
				p.error("E2004", arg.GetSpan(), fmt.Sprintf("cannot have more than %d arguments", maxCallArgs))
			}
			args = append(args, arg)
			if !p.check(token.COMMA) {
				break
			}
			p.advance() // ','
		}
	}

	end, ok := p.expect(token.RPAREN, "after arguments")
	if !ok {
		return nil
	}

	return &ast.CallExpr{
		ExprBase: makeExprBase(callee.GetSpan().Start, end.Span.End),
		Callee:   callee,
		Args:     args,
	}
}

// binaryOp maps a binary operator token to its AST operator.
func binaryOp(kind token.Kind) ast.BinaryOp {
	switch kind {
	case token.PLUS:
		return ast.OpAdd
	case token.MINUS:
		return ast.OpSub
	case token.STAR:
		return ast.OpMul
	case token.SLASH:
		return ast.OpDiv
	case token.EQUAL_EQ:
		return ast.OpEq
	case token.BANG_EQ:
		return ast.OpNe
	case token.GREATER:
		return ast.OpGt
	case token.GREATER_EQ:
		return ast.OpGe
	case token.LESS:
		return ast.OpLt
	default:
		return ast.OpLe
	}
}

// ============================================================
// Span helpers
// ============================================================

func makeExprBase(start, end int) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.New(start, end)}}
}

func makeStmtBase(start, end int) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.New(start, end)}}
}
