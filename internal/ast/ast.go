// Package ast defines the abstract syntax tree for the language.
package ast

import (
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement and declaration nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Operator kinds
// ============================================================

// Token kinds are folded into small operator enums at parse time, so the
// evaluator never re-matches the full token-kind space.

// BinaryOp is the operator of a BinaryExpr.
type BinaryOp int

const (
	OpAdd BinaryOp = iota // +
	OpSub                 // -
	OpMul                 // *
	OpDiv                 // /
	OpEq                  // ==
	OpNe                  // !=
	OpGt                  // >
	OpGe                  // >=
	OpLt                  // <
	OpLe                  // <=
)

var binaryOpNames = [...]string{"+", "-", "*", "/", "==", "!=", ">", ">=", "<", "<="}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// LogicalOp is the operator of a LogicalExpr.
type LogicalOp int

const (
	OpAnd LogicalOp = iota // and
	OpOr                   // or
)

func (op LogicalOp) String() string {
	if op == OpAnd {
		return "and"
	}
	return "or"
}

// UnaryOp is the operator of a UnaryExpr.
type UnaryOp int

const (
	OpNeg UnaryOp = iota // -
	OpNot                // !
)

func (op UnaryOp) String() string {
	if op == OpNeg {
		return "-"
	}
	return "!"
}

// ============================================================
// File (top-level AST root)
// ============================================================

// File represents an entire parsed source file (or REPL submission).
type File struct {
	NodeBase
	Body []Stmt // top-level declarations and statements
}

// ============================================================
// Expressions
// ============================================================

// IdentExpr represents a variable reference.
type IdentExpr struct {
	ExprBase
	Name string
}

// NumberLiteral represents a number literal.
type NumberLiteral struct {
	ExprBase
	Value float64
}

// StringLiteral represents a string literal. Value excludes the quotes.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NilLiteral represents nil.
type NilLiteral struct {
	ExprBase
}

// GroupingExpr represents a parenthesized expression: (expr).
type GroupingExpr struct {
	ExprBase
	Expr Expr
}

// UnaryExpr represents a unary operation: !x, -x.
type UnaryExpr struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

// BinaryExpr represents a binary operation: a + b, x == y.
type BinaryExpr struct {
	ExprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// LogicalExpr represents a short-circuiting logical operation: a and b, a or b.
type LogicalExpr struct {
	ExprBase
	Op    LogicalOp
	Left  Expr
	Right Expr
}

// AssignExpr represents an assignment to an existing variable: x = value.
type AssignExpr struct {
	ExprBase
	Name  token.Token // identifier token of the target
	Value Expr
}

// CallExpr represents a function call: f(a, b).
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// GetExpr represents property access: obj.name. Parsed but never evaluated;
// class support is incomplete.
type GetExpr struct {
	ExprBase
	Object Expr
	Name   token.Token
}

// SetExpr represents property assignment: obj.name = value. Parsed but never
// evaluated.
type SetExpr struct {
	ExprBase
	Object Expr
	Name   token.Token
	Value  Expr
}

// ThisExpr represents the 'this' keyword. Parsed but never evaluated.
type ThisExpr struct {
	ExprBase
}

// SuperExpr represents 'super.name'. Parsed but never evaluated.
type SuperExpr struct {
	ExprBase
	Method token.Token
}

// ============================================================
// Statements and declarations
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// PrintStmt represents: print expr;
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// VarDeclStmt represents a variable declaration: var x = expr;
type VarDeclStmt struct {
	StmtBase
	Name token.Token
	Init Expr // may be nil if no initializer
}

// BlockStmt represents a block of declarations: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents an if statement with an optional else branch.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

// WhileStmt represents a while loop. For loops are desugared into this at
// parse time and have no node of their own.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	StmtBase
	Value Expr // may be nil
}

// FuncDecl represents a function declaration: fun name(params) { ... }.
// Body is shared by every closure built from this declaration.
type FuncDecl struct {
	StmtBase
	Name   token.Token
	Params []token.Token
	Body   *BlockStmt
}
