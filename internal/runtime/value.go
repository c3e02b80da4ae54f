// Package runtime implements the tree-walking interpreter and its value system.
package runtime

import (
	"fmt"
	"strconv"

	"lox-lang/internal/ast"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// Value is the interface for all runtime values. Every value remembers the
// source span it was produced at, so runtime errors can point back into the
// program text.
type Value interface {
	TypeName() string
	String() string
	Span() span.Span
}

// ---- Primitive values ----

// NilVal represents nil.
type NilVal struct {
	Sp span.Span
}

func (v NilVal) TypeName() string { return "nil" }
func (v NilVal) String() string   { return "nil" }
func (v NilVal) Span() span.Span  { return v.Sp }

// BoolVal represents a boolean value.
type BoolVal struct {
	Value bool
	Sp    span.Span
}

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string   { return fmt.Sprintf("%t", v.Value) }
func (v BoolVal) Span() span.Span  { return v.Sp }

// NumberVal represents a number. All numbers are float64.
type NumberVal struct {
	Value float64
	Sp    span.Span
}

func (v NumberVal) TypeName() string { return "number" }

// String prints the shortest decimal form that round-trips; whole numbers
// have no trailing ".0" and exponent notation is never used.
func (v NumberVal) String() string { return strconv.FormatFloat(v.Value, 'f', -1, 64) }
func (v NumberVal) Span() span.Span  { return v.Sp }

// StringVal represents a string value.
type StringVal struct {
	Value string
	Sp    span.Span
}

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return v.Value }
func (v StringVal) Span() span.Span  { return v.Sp }

// ---- Callable values ----

// FuncVal represents a user-defined function. The closure environment is the
// one the declaration was executed in, so inner functions see outer locals
// even after the outer call has returned.
type FuncVal struct {
	Name    string
	Params  []token.Token
	Body    *ast.BlockStmt
	Closure *Environment
	Sp      span.Span
}

func (v *FuncVal) TypeName() string { return "function" }
func (v *FuncVal) String() string   { return fmt.Sprintf("<fun %s>", v.Name) }
func (v *FuncVal) Span() span.Span  { return v.Sp }

// ---- Truthiness ----

// IsTruthy reports the truthiness of a value: nil and false are falsy,
// everything else is truthy. 0 and "" are truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NilVal:
		return false
	case BoolVal:
		return val.Value
	default:
		return true
	}
}
