package runtime

import (
	"fmt"
	"io"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return from function
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Runtime error
// ============================================================

// Error represents an error during interpretation. Runtime errors carry
// stable codes like parse and lex diagnostics do.
type Error struct {
	Code    string
	Message string
	Span    span.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] runtime error at %s: %s", e.Code, e.Span, e.Message)
}

// Diagnostic converts the runtime error for source-context rendering.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Errorf(e.Code, e.Span, "%s", e.Message)
}

func runtimeErr(code string, s span.Span, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Span: s}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it.
type Interpreter struct {
	global *Environment
	env    *Environment
	output io.Writer
	echo   bool
}

// NewInterpreter creates a new interpreter writing program output to output.
func NewInterpreter(output io.Writer) *Interpreter {
	global := NewEnvironment(nil)
	return &Interpreter{
		global: global,
		env:    global,
		output: output,
	}
}

// SetEcho controls whether expression-statement results are printed. The
// REPL turns this on so `1 + 2;` shows its value without an explicit print.
func (i *Interpreter) SetEcho(echo bool) {
	i.echo = echo
}

// Env returns the current environment (useful for the REPL).
func (i *Interpreter) Env() *Environment {
	return i.env
}

// Run executes the entire AST file. A return at the top level is not an
// error; it simply ends the program early.
func (i *Interpreter) Run(file *ast.File) error {
	for _, stmt := range file.Body {
		result, err := i.execStmt(stmt)
		if err != nil {
			return err
		}
		if result.Signal == SigReturn {
			return nil
		}
	}
	return nil
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		val, err := i.evalExpr(s.Expr)
		if err != nil {
			return resultNone, err
		}
		if i.echo {
			fmt.Fprintln(i.output, val.String())
		}
		return resultNone, nil

	case *ast.PrintStmt:
		val, err := i.evalExpr(s.Expr)
		if err != nil {
			return resultNone, err
		}
		fmt.Fprintln(i.output, val.String())
		return resultNone, nil

	case *ast.VarDeclStmt:
		return i.execVarDecl(s)

	case *ast.FuncDecl:
		return i.execFuncDecl(s)

	case *ast.BlockStmt:
		return i.execBlock(s, NewEnvironment(i.env))

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.ReturnStmt:
		var val Value = NilVal{Sp: s.GetSpan()}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	default:
		return resultNone, runtimeErr("E3001", stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execVarDecl(s *ast.VarDeclStmt) (ExecResult, error) {
	// A declaration without an initializer yields nil.
	var val Value = NilVal{Sp: s.GetSpan()}
	if s.Init != nil {
		v, err := i.evalExpr(s.Init)
		if err != nil {
			return resultNone, err
		}
		val = v
	}
	i.env.Define(s.Name.Lexeme, val)
	return resultNone, nil
}

func (i *Interpreter) execFuncDecl(s *ast.FuncDecl) (ExecResult, error) {
	fn := &FuncVal{
		Name:    s.Name.Lexeme,
		Params:  s.Params,
		Body:    s.Body,
		Closure: i.env,
		Sp:      s.GetSpan(),
	}
	i.env.Define(s.Name.Lexeme, fn)
	return resultNone, nil
}

func (i *Interpreter) execBlock(block *ast.BlockStmt, blockEnv *Environment) (ExecResult, error) {
	prevEnv := i.env
	i.env = blockEnv
	defer func() { i.env = prevEnv }()

	for _, stmt := range block.Stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate return
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalExpr(s.Condition)
	if err != nil {
		return resultNone, err
	}

	if IsTruthy(cond) {
		return i.execStmt(s.Then)
	}
	if s.Else != nil {
		return i.execStmt(s.Else)
	}
	return resultNone, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			return resultNone, nil
		}

		result, err := i.execStmt(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil // propagate return through the loop
		}
	}
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return NumberVal{Value: e.Value, Sp: e.GetSpan()}, nil
	case *ast.StringLiteral:
		return StringVal{Value: e.Value, Sp: e.GetSpan()}, nil
	case *ast.BoolLiteral:
		return BoolVal{Value: e.Value, Sp: e.GetSpan()}, nil
	case *ast.NilLiteral:
		return NilVal{Sp: e.GetSpan()}, nil
	case *ast.GroupingExpr:
		return i.evalExpr(e.Expr)
	case *ast.IdentExpr:
		return i.evalIdent(e)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.AssignExpr:
		return i.evalAssign(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.GetExpr, *ast.SetExpr, *ast.ThisExpr, *ast.SuperExpr:
		return nil, runtimeErr("E3005", expr.GetSpan(), "classes are not supported")
	default:
		return nil, runtimeErr("E3001", expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

func (i *Interpreter) evalIdent(e *ast.IdentExpr) (Value, error) {
	val, ok := i.env.Get(e.Name)
	if !ok {
		return nil, runtimeErr("E3002", e.GetSpan(), "undefined variable '%s'", e.Name)
	}
	return val, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpNot:
		return BoolVal{Value: !IsTruthy(operand), Sp: e.GetSpan()}, nil
	default: // OpNeg
		num, err := asNumber(operand)
		if err != nil {
			return nil, err
		}
		return NumberVal{Value: -num, Sp: e.GetSpan()}, nil
	}
}

// asNumber unwraps a number operand. The error points at the value's own
// span, not the enclosing expression, so the diagnostic lands on the
// offending sub-expression.
func asNumber(v Value) (float64, error) {
	num, ok := v.(NumberVal)
	if !ok {
		return 0, runtimeErr("E3001", v.Span(), "expected number, got %s", v.TypeName())
	}
	return num.Value, nil
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	// A string on the left concatenates; the right operand is stringified
	// whatever its type. A number on the left demands a number on the right.
	if e.Op == ast.OpAdd {
		if str, ok := left.(StringVal); ok {
			return StringVal{Value: str.Value + right.String(), Sp: e.GetSpan()}, nil
		}
	}

	l, err := asNumber(left)
	if err != nil {
		return nil, err
	}
	r, err := asNumber(right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpAdd:
		return NumberVal{Value: l + r, Sp: e.GetSpan()}, nil
	case ast.OpSub:
		return NumberVal{Value: l - r, Sp: e.GetSpan()}, nil
	case ast.OpMul:
		return NumberVal{Value: l * r, Sp: e.GetSpan()}, nil
	case ast.OpDiv:
		// Division by zero follows IEEE 754: +Inf, -Inf, or NaN.
		return NumberVal{Value: l / r, Sp: e.GetSpan()}, nil
	case ast.OpEq:
		return BoolVal{Value: l == r, Sp: e.GetSpan()}, nil
	case ast.OpNe:
		return BoolVal{Value: l != r, Sp: e.GetSpan()}, nil
	case ast.OpGt:
		return BoolVal{Value: l > r, Sp: e.GetSpan()}, nil
	case ast.OpGe:
		return BoolVal{Value: l >= r, Sp: e.GetSpan()}, nil
	case ast.OpLt:
		return BoolVal{Value: l < r, Sp: e.GetSpan()}, nil
	default: // OpLe
		return BoolVal{Value: l <= r, Sp: e.GetSpan()}, nil
	}
}

// evalLogical short-circuits and returns an operand value, not a bool:
// `nil or "x"` is "x", `1 and 2` is 2.
func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}

	if e.Op == ast.OpOr {
		if IsTruthy(left) {
			return left, nil
		}
		return i.evalExpr(e.Right)
	}
	// and
	if !IsTruthy(left) {
		return left, nil
	}
	return i.evalExpr(e.Right)
}

// evalAssign assigns to an existing variable and yields the assigned value.
// Assignment never creates a binding.
func (i *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	val, err := i.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}
	if !i.env.Assign(e.Name.Lexeme, val) {
		return nil, runtimeErr("E3002", e.Name.Span, "undefined variable '%s'", e.Name.Lexeme)
	}
	return val, nil
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	// Callability and arity fail before any argument runs, so argument
	// side effects are not observable on a doomed call.
	fn, ok := callee.(*FuncVal)
	if !ok {
		return nil, runtimeErr("E3003", e.GetSpan(), "cannot call value of type '%s'", callee.TypeName())
	}
	if len(e.Args) != len(fn.Params) {
		return nil, runtimeErr("E3004", e.GetSpan(), "%s() expects %d arguments, got %d",
			fn.Name, len(fn.Params), len(e.Args))
	}

	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	// Fresh scope from the closure, not from the caller's environment.
	funcEnv := NewEnvironment(fn.Closure)
	for idx, param := range fn.Params {
		funcEnv.Define(param.Lexeme, args[idx])
	}

	result, err := i.execBlock(fn.Body, funcEnv)
	if err != nil {
		return nil, err
	}
	if result.Signal == SigReturn {
		return result.Value, nil
	}
	// Falling off the end of a function yields nil.
	return NilVal{Sp: e.GetSpan()}, nil
}
