package parser

import (
	"encoding/json"
	"testing"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
)

// helper: parse source and return AST, failing the test on any diagnostic
func parseOK(t *testing.T, source string) *ast.File {
	t.Helper()
	tokens, lexDiags := lexer.New(source).Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	file, parseDiags := New(tokens).ParseFile()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return file
}

// helper: parse source expecting diagnostics
func parseBad(t *testing.T, source string) (*ast.File, []diag.Diagnostic) {
	t.Helper()
	tokens, _ := lexer.New(source).Tokenize()
	file, diags := New(tokens).ParseFile()
	if len(diags) == 0 {
		t.Fatalf("expected parse errors for %q", source)
	}
	return file, diags
}

func TestParseVarDecl(t *testing.T) {
	file := parseOK(t, `var x = 42;`)
	if len(file.Body) != 1 {
		t.Fatalf("expected 1 node, got %d", len(file.Body))
	}
	decl, ok := file.Body[0].(*ast.VarDeclStmt)
	if !ok {
		t.Fatalf("expected VarDeclStmt, got %T", file.Body[0])
	}
	if decl.Name.Lexeme != "x" {
		t.Errorf("expected name 'x', got %q", decl.Name.Lexeme)
	}
	if decl.Init == nil {
		t.Error("expected initializer")
	}
}

func TestParseVarDeclNoInit(t *testing.T) {
	file := parseOK(t, `var x;`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	if decl.Init != nil {
		t.Errorf("expected nil initializer, got %T", decl.Init)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	file := parseOK(t, `var z = 1 + 2 * 3;`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	// init should be BinaryExpr: 1 + (2 * 3)
	binExpr, ok := decl.Init.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", decl.Init)
	}
	if binExpr.Op != ast.OpAdd {
		t.Errorf("expected '+', got %q", binExpr.Op)
	}
	rightBin, ok := binExpr.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected right BinaryExpr, got %T", binExpr.Right)
	}
	if rightBin.Op != ast.OpMul {
		t.Errorf("expected '*', got %q", rightBin.Op)
	}
}

func TestParseLeftAssociativity(t *testing.T) {
	file := parseOK(t, `1 - 2 - 3;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	// (1 - 2) - 3
	outer, ok := stmt.Expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", stmt.Expr)
	}
	if _, ok := outer.Left.(*ast.BinaryExpr); !ok {
		t.Errorf("expected left-nested BinaryExpr, got %T", outer.Left)
	}
	if _, ok := outer.Right.(*ast.NumberLiteral); !ok {
		t.Errorf("expected NumberLiteral right, got %T", outer.Right)
	}
}

func TestParseStringLiteral(t *testing.T) {
	file := parseOK(t, `"hello";`)
	stmt := file.Body[0].(*ast.ExprStmt)
	str, ok := stmt.Expr.(*ast.StringLiteral)
	if !ok {
		t.Fatalf("expected StringLiteral, got %T", stmt.Expr)
	}
	// The quotes are stripped from the value.
	if str.Value != "hello" {
		t.Errorf("expected value 'hello', got %q", str.Value)
	}
}

func TestParseGrouping(t *testing.T) {
	file := parseOK(t, `(1 + 2) * 3;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	mul := stmt.Expr.(*ast.BinaryExpr)
	if mul.Op != ast.OpMul {
		t.Fatalf("expected '*', got %q", mul.Op)
	}
	if _, ok := mul.Left.(*ast.GroupingExpr); !ok {
		t.Errorf("expected GroupingExpr, got %T", mul.Left)
	}
}

func TestParseLogical(t *testing.T) {
	file := parseOK(t, `a or b and c;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	// or binds looser than and: a or (b and c)
	orExpr, ok := stmt.Expr.(*ast.LogicalExpr)
	if !ok {
		t.Fatalf("expected LogicalExpr, got %T", stmt.Expr)
	}
	if orExpr.Op != ast.OpOr {
		t.Errorf("expected 'or', got %q", orExpr.Op)
	}
	andExpr, ok := orExpr.Right.(*ast.LogicalExpr)
	if !ok {
		t.Fatalf("expected right LogicalExpr, got %T", orExpr.Right)
	}
	if andExpr.Op != ast.OpAnd {
		t.Errorf("expected 'and', got %q", andExpr.Op)
	}
}

func TestParseIfElse(t *testing.T) {
	file := parseOK(t, `if (x > 0) print x; else print 0;`)
	ifStmt, ok := file.Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", file.Body[0])
	}
	if ifStmt.Condition == nil {
		t.Fatal("condition is nil")
	}
	if ifStmt.Else == nil {
		t.Error("else branch is nil")
	}
}

func TestParseDanglingElse(t *testing.T) {
	// else binds to the nearest if
	file := parseOK(t, `if (a) if (b) print 1; else print 2;`)
	outer := file.Body[0].(*ast.IfStmt)
	if outer.Else != nil {
		t.Error("else should bind to the inner if")
	}
	inner, ok := outer.Then.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected inner IfStmt, got %T", outer.Then)
	}
	if inner.Else == nil {
		t.Error("inner if should own the else")
	}
}

func TestParseWhile(t *testing.T) {
	file := parseOK(t, `while (i < 10) i = i + 1;`)
	whileStmt, ok := file.Body[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", file.Body[0])
	}
	if whileStmt.Condition == nil || whileStmt.Body == nil {
		t.Fatal("condition or body is nil")
	}
}

func TestParseForDesugars(t *testing.T) {
	file := parseOK(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	// { var i = 0; while (i < 3) { print i; i = i + 1; } }
	block, ok := file.Body[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected BlockStmt, got %T", file.Body[0])
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(block.Stmts))
	}
	if _, ok := block.Stmts[0].(*ast.VarDeclStmt); !ok {
		t.Errorf("expected VarDeclStmt first, got %T", block.Stmts[0])
	}
	loop, ok := block.Stmts[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", block.Stmts[1])
	}
	inner, ok := loop.Body.(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected BlockStmt body, got %T", loop.Body)
	}
	if len(inner.Stmts) != 2 {
		t.Errorf("expected body + increment, got %d statements", len(inner.Stmts))
	}
}

func TestParseForEmptyClauses(t *testing.T) {
	file := parseOK(t, `for (;;) print 1;`)
	// No init, so the loop is not wrapped in a block.
	loop, ok := file.Body[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", file.Body[0])
	}
	// Omitted condition becomes a true literal.
	cond, ok := loop.Condition.(*ast.BoolLiteral)
	if !ok || !cond.Value {
		t.Errorf("expected true condition, got %T", loop.Condition)
	}
}

func TestParseFuncDecl(t *testing.T) {
	file := parseOK(t, `fun add(a, b) { return a + b; }`)
	fn, ok := file.Body[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", file.Body[0])
	}
	if fn.Name.Lexeme != "add" {
		t.Errorf("expected name 'add', got %q", fn.Name.Lexeme)
	}
	if len(fn.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(fn.Params))
	}
	if len(fn.Body.Stmts) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(fn.Body.Stmts))
	}
}

func TestParseReturnBare(t *testing.T) {
	file := parseOK(t, `fun f() { return; }`)
	fn := file.Body[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	if ret.Value != nil {
		t.Errorf("expected nil return value, got %T", ret.Value)
	}
}

func TestParseCallExpr(t *testing.T) {
	file := parseOK(t, `f(1, 2, 3);`)
	stmt := file.Body[0].(*ast.ExprStmt)
	call, ok := stmt.Expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", stmt.Expr)
	}
	if len(call.Args) != 3 {
		t.Errorf("expected 3 args, got %d", len(call.Args))
	}
}

func TestParseChainedCalls(t *testing.T) {
	file := parseOK(t, `f(1)(2);`)
	stmt := file.Body[0].(*ast.ExprStmt)
	outer, ok := stmt.Expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", stmt.Expr)
	}
	if _, ok := outer.Callee.(*ast.CallExpr); !ok {
		t.Errorf("expected nested CallExpr callee, got %T", outer.Callee)
	}
}

func TestParseAssignment(t *testing.T) {
	file := parseOK(t, `x = 42;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	assign, ok := stmt.Expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", stmt.Expr)
	}
	if assign.Name.Lexeme != "x" {
		t.Errorf("expected 'x', got %q", assign.Name.Lexeme)
	}
}

func TestParseAssignmentRightAssoc(t *testing.T) {
	file := parseOK(t, `a = b = 1;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	outer := stmt.Expr.(*ast.AssignExpr)
	if _, ok := outer.Value.(*ast.AssignExpr); !ok {
		t.Errorf("expected nested AssignExpr, got %T", outer.Value)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	_, diags := parseBad(t, `1 + 2 = 3;`)
	found := false
	for _, d := range diags {
		if d.Code == "E2003" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected E2003, got %v", diags)
	}
}

func TestParsePropertyAccess(t *testing.T) {
	file := parseOK(t, `obj.field;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	get, ok := stmt.Expr.(*ast.GetExpr)
	if !ok {
		t.Fatalf("expected GetExpr, got %T", stmt.Expr)
	}
	if get.Name.Lexeme != "field" {
		t.Errorf("expected 'field', got %q", get.Name.Lexeme)
	}
}

func TestParsePropertyAssignment(t *testing.T) {
	file := parseOK(t, `obj.field = 1;`)
	stmt := file.Body[0].(*ast.ExprStmt)
	set, ok := stmt.Expr.(*ast.SetExpr)
	if !ok {
		t.Fatalf("expected SetExpr, got %T", stmt.Expr)
	}
	if set.Name.Lexeme != "field" {
		t.Errorf("expected 'field', got %q", set.Name.Lexeme)
	}
}

func TestParseThisAndSuper(t *testing.T) {
	file := parseOK(t, `this.x; super.method;`)
	get := file.Body[0].(*ast.ExprStmt).Expr.(*ast.GetExpr)
	if _, ok := get.Object.(*ast.ThisExpr); !ok {
		t.Errorf("expected ThisExpr, got %T", get.Object)
	}
	sup, ok := file.Body[1].(*ast.ExprStmt).Expr.(*ast.SuperExpr)
	if !ok {
		t.Fatalf("expected SuperExpr, got %T", file.Body[1].(*ast.ExprStmt).Expr)
	}
	if sup.Method.Lexeme != "method" {
		t.Errorf("expected 'method', got %q", sup.Method.Lexeme)
	}
}

func TestParseMissingSemicolon(t *testing.T) {
	_, diags := parseBad(t, `print 1`)
	if diags[0].Code != "E2002" {
		t.Errorf("expected E2002 at end of input, got %s", diags[0].Code)
	}
}

func TestParseErrorRecovery(t *testing.T) {
	// The bad first statement must not hide the second one.
	source := `var x = ;
var y = 3;`
	tokens, _ := lexer.New(source).Tokenize()
	file, diags := New(tokens).ParseFile()

	if len(diags) == 0 {
		t.Fatal("expected parse errors")
	}
	if len(file.Body) != 1 {
		t.Fatalf("expected recovery to parse 1 statement, got %d", len(file.Body))
	}
	decl, ok := file.Body[0].(*ast.VarDeclStmt)
	if !ok || decl.Name.Lexeme != "y" {
		t.Errorf("expected var y to survive recovery, got %T", file.Body[0])
	}
}

func TestParseTwoIndependentErrors(t *testing.T) {
	// Recovery bounds the cascade: each malformed statement reports its own
	// error instead of the first one hiding the second.
	source := `var = 1;
print ;`
	tokens, _ := lexer.New(source).Tokenize()
	_, diags := New(tokens).ParseFile()
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(diags), diags)
	}
	if diags[0].Span.Start >= diags[1].Span.Start {
		t.Error("each error should be localized near its own statement")
	}
}

func TestParseRecoveryAtKeyword(t *testing.T) {
	// synchronize stops before a statement keyword even without a semicolon
	source := `var x = ) print 1;`
	tokens, _ := lexer.New(source).Tokenize()
	file, diags := New(tokens).ParseFile()
	if len(diags) == 0 {
		t.Fatal("expected errors")
	}
	if len(file.Body) != 1 {
		t.Fatalf("expected print statement to survive, got %d statements", len(file.Body))
	}
	if _, ok := file.Body[0].(*ast.PrintStmt); !ok {
		t.Errorf("expected PrintStmt, got %T", file.Body[0])
	}
}

func TestParseJSONOutput(t *testing.T) {
	file := parseOK(t, `var x = 1;`)
	data, err := json.MarshalIndent(ast.NodeToMap(file), "", "  ")
	if err != nil {
		t.Fatalf("json error: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["kind"] != "File" {
		t.Errorf("expected kind 'File', got %v", m["kind"])
	}
}
