// Package ast defines the closed set of statement and expression nodes
// consumed by the compiler passes.
//
// Nodes are immutable in shape once built. The only mutable state is the
// inferred type slot on BinaryExpr, written by the semantic pass. Passes
// traverse the tree through Visitor, so a new pass is a new Visitor
// implementation and never touches the node types.
package ast

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pulse-lang/core-compiler/types"
)

// Pos is a source location. The zero Pos means "unknown".
type Pos struct {
	Line   int
	Column int
}

func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is implemented by every AST variant.
type Node interface {
	// Accept dispatches to the visitor method for the concrete variant.
	Accept(v Visitor) any
	// Text renders the node's value as source-like text.
	Text() string
	// Equal compares variant and all child fields, ignoring positions.
	Equal(other Node) bool
	Position() Pos
	node()
}

// Visitor has one method per node variant.
type Visitor interface {
	VisitLiteral(n *Literal) any
	VisitBinaryExpr(n *BinaryExpr) any
	VisitVariableDec(n *VariableDec) any
	VisitVariableAssign(n *VariableAssign) any
	VisitVariableRef(n *VariableRef) any
	VisitCodeBlock(n *CodeBlock) any
	VisitFunctionDef(n *FunctionDef) any
	VisitFunctionDec(n *FunctionDec) any
	VisitFunctionCall(n *FunctionCall) any
	VisitReturn(n *Return) any
	VisitIf(n *If) any
	VisitElse(n *Else) any
	VisitWhile(n *While) any
	VisitFor(n *For) any
	VisitLoopControl(n *LoopControl) any
	VisitEvent(n *Event) any
	VisitExit(n *Exit) any
	VisitTimeLiteral(n *TimeLiteral) any
}

// Param is one entry of a function or event parameter list.
type Param struct {
	Type *types.Type
	Name string
}

func (p Param) String() string { return p.Type.String() + " " + p.Name }

// Literal is a constant of a fixed type. Value holds an int32, float32,
// byte, bool or string matching Type.
type Literal struct {
	At    Pos
	Type  *types.Type
	Value any
}

func IntLit(v int32) *Literal     { return &Literal{Type: types.IntType, Value: v} }
func FloatLit(v float32) *Literal { return &Literal{Type: types.FloatType, Value: v} }
func CharLit(v byte) *Literal     { return &Literal{Type: types.CharType, Value: v} }
func BoolLit(v bool) *Literal     { return &Literal{Type: types.BoolType, Value: v} }
func StringLit(v string) *Literal { return &Literal{Type: types.StringType, Value: v} }

func (n *Literal) Text() string {
	switch v := n.Value.(type) {
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case byte:
		return string(rune(v))
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	}
	return fmt.Sprint(n.Value)
}

func (n *Literal) Equal(other Node) bool {
	o, ok := other.(*Literal)
	return ok && n.Type.Equal(o.Type) && n.Value == o.Value
}

// BinaryExpr applies Op to Left and Right. Type is nil until the semantic
// pass infers it.
type BinaryExpr struct {
	At    Pos
	Op    string
	Left  Node
	Right Node
	Type  *types.Type
}

func (n *BinaryExpr) Text() string {
	return "(" + n.Left.Text() + " " + n.Op + " " + n.Right.Text() + ")"
}

func (n *BinaryExpr) Equal(other Node) bool {
	o, ok := other.(*BinaryExpr)
	return ok && n.Op == o.Op && nodesEqual(n.Left, o.Left) &&
		nodesEqual(n.Right, o.Right) && n.Type.Equal(o.Type)
}

// VariableDec declares Name with Type and no initializer.
type VariableDec struct {
	At   Pos
	Type *types.Type
	Name string
}

func (n *VariableDec) Text() string { return n.Type.String() + " " + n.Name }

func (n *VariableDec) Equal(other Node) bool {
	o, ok := other.(*VariableDec)
	return ok && n.Name == o.Name && n.Type.Equal(o.Type)
}

// VariableAssign stores Value into Name. A non-void Type makes it a
// declaration with initializer.
type VariableAssign struct {
	At    Pos
	Type  *types.Type
	Name  string
	Value Node
}

// Declares reports whether the assignment also declares its target.
func (n *VariableAssign) Declares() bool {
	return n.Type != nil && !n.Type.Is(types.Void)
}

func (n *VariableAssign) Text() string {
	s := n.Name + " = " + n.Value.Text()
	if n.Declares() {
		s = n.Type.String() + " " + s
	}
	return s
}

func (n *VariableAssign) Equal(other Node) bool {
	o, ok := other.(*VariableAssign)
	return ok && n.Name == o.Name && n.Type.Equal(o.Type) && nodesEqual(n.Value, o.Value)
}

type VariableRef struct {
	At   Pos
	Name string
}

func (n *VariableRef) Text() string { return n.Name }

func (n *VariableRef) Equal(other Node) bool {
	o, ok := other.(*VariableRef)
	return ok && n.Name == o.Name
}

// CodeBlock is an ordered statement list forming one lexical scope.
type CodeBlock struct {
	At    Pos
	Stmts []Node
}

func (n *CodeBlock) Text() string {
	parts := make([]string, len(n.Stmts))
	for i, s := range n.Stmts {
		parts[i] = s.Text() + ";"
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func (n *CodeBlock) Equal(other Node) bool {
	o, ok := other.(*CodeBlock)
	if !ok {
		return false
	}
	if n == nil || o == nil {
		return n == o
	}
	return listsEqual(n.Stmts, o.Stmts)
}

type FunctionDef struct {
	At     Pos
	Name   string
	Params []Param
	Return *types.Type
	Body   *CodeBlock
}

func (n *FunctionDef) Text() string {
	return signature(n.Return, n.Name, n.Params) + " " + n.Body.Text()
}

func (n *FunctionDef) Equal(other Node) bool {
	o, ok := other.(*FunctionDef)
	return ok && n.Name == o.Name && n.Return.Equal(o.Return) &&
		paramsEqual(n.Params, o.Params) && n.Body.Equal(o.Body)
}

// FunctionDec declares a signature without a body.
type FunctionDec struct {
	At       Pos
	Name     string
	Params   []Param
	Return   *types.Type
	Variadic bool
}

func (n *FunctionDec) Text() string { return signature(n.Return, n.Name, n.Params) }

func (n *FunctionDec) Equal(other Node) bool {
	o, ok := other.(*FunctionDec)
	return ok && n.Name == o.Name && n.Return.Equal(o.Return) &&
		n.Variadic == o.Variadic && paramsEqual(n.Params, o.Params)
}

type FunctionCall struct {
	At   Pos
	Name string
	Args []Node
}

func (n *FunctionCall) Text() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.Text()
	}
	return n.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (n *FunctionCall) Equal(other Node) bool {
	o, ok := other.(*FunctionCall)
	return ok && n.Name == o.Name && listsEqual(n.Args, o.Args)
}

// Return yields Expr from the enclosing function. Expr is nil for a bare return.
type Return struct {
	At   Pos
	Expr Node
}

func (n *Return) Text() string {
	if n.Expr == nil {
		return "return"
	}
	return "return " + n.Expr.Text()
}

func (n *Return) Equal(other Node) bool {
	o, ok := other.(*Return)
	return ok && nodesEqual(n.Expr, o.Expr)
}

// If runs Then when Cond holds, otherwise the first matching entry of Elses.
type If struct {
	At    Pos
	Cond  Node
	Then  *CodeBlock
	Elses []*Else
}

func (n *If) Text() string {
	s := "if (" + n.Cond.Text() + ") " + n.Then.Text()
	for _, e := range n.Elses {
		s += " " + e.Text()
	}
	return s
}

func (n *If) Equal(other Node) bool {
	o, ok := other.(*If)
	if !ok || !nodesEqual(n.Cond, o.Cond) || !n.Then.Equal(o.Then) || len(n.Elses) != len(o.Elses) {
		return false
	}
	for i := range n.Elses {
		if !n.Elses[i].Equal(o.Elses[i]) {
			return false
		}
	}
	return true
}

// Else is an "else if" arm when Cond is set and a final "else" otherwise.
type Else struct {
	At    Pos
	Cond  Node
	Block *CodeBlock
}

func (n *Else) Text() string {
	if n.Cond == nil {
		return "else " + n.Block.Text()
	}
	return "else if (" + n.Cond.Text() + ") " + n.Block.Text()
}

func (n *Else) Equal(other Node) bool {
	o, ok := other.(*Else)
	return ok && nodesEqual(n.Cond, o.Cond) && n.Block.Equal(o.Block)
}

type While struct {
	At    Pos
	Cond  Node
	Block *CodeBlock
}

func (n *While) Text() string { return "while (" + n.Cond.Text() + ") " + n.Block.Text() }

func (n *While) Equal(other Node) bool {
	o, ok := other.(*While)
	return ok && nodesEqual(n.Cond, o.Cond) && n.Block.Equal(o.Block)
}

type For struct {
	At    Pos
	Init  Node
	Cond  Node
	Step  Node
	Block *CodeBlock
}

func (n *For) Text() string {
	return "for (" + textOf(n.Init) + "; " + textOf(n.Cond) + "; " + textOf(n.Step) + ") " + n.Block.Text()
}

func (n *For) Equal(other Node) bool {
	o, ok := other.(*For)
	return ok && nodesEqual(n.Init, o.Init) && nodesEqual(n.Cond, o.Cond) &&
		nodesEqual(n.Step, o.Step) && n.Block.Equal(o.Block)
}

type LoopKind int

const (
	Break LoopKind = iota
	Continue
)

func (k LoopKind) String() string {
	if k == Continue {
		return "continue"
	}
	return "break"
}

type LoopControl struct {
	At   Pos
	Kind LoopKind
}

func (n *LoopControl) Text() string { return n.Kind.String() }

func (n *LoopControl) Equal(other Node) bool {
	o, ok := other.(*LoopControl)
	return ok && n.Kind == o.Kind
}

// Event declares a periodic handler registered with the runtime scheduler.
// Limit caps the number of runs; 0 means unlimited.
type Event struct {
	At      Pos
	Name    string
	Period  Node
	Handler *CodeBlock
	Params  []Param
	Limit   int
}

func (n *Event) Text() string {
	return fmt.Sprintf("event %s every %s limit %d %s", signature(nil, n.Name, n.Params), textOf(n.Period), n.Limit, n.Handler.Text())
}

func (n *Event) Equal(other Node) bool {
	o, ok := other.(*Event)
	return ok && n.Name == o.Name && n.Limit == o.Limit && nodesEqual(n.Period, o.Period) &&
		paramsEqual(n.Params, o.Params) && n.Handler.Equal(o.Handler)
}

// Exit terminates the named event.
type Exit struct {
	At    Pos
	Event string
}

func (n *Exit) Text() string { return "exit " + n.Event }

func (n *Exit) Equal(other Node) bool {
	o, ok := other.(*Exit)
	return ok && n.Event == o.Event
}

// TimeLiteral is a duration such as 500ms. Unit is one of ns, us, ms, s, m, h.
type TimeLiteral struct {
	At        Pos
	Magnitude float64
	Unit      string
}

var timeUnits = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
}

// ValidTimeUnit reports whether unit is a recognized time unit.
func ValidTimeUnit(unit string) bool {
	_, ok := timeUnits[unit]
	return ok
}

// Seconds converts the literal to seconds.
func (n *TimeLiteral) Seconds() (float64, bool) {
	d, ok := timeUnits[n.Unit]
	if !ok {
		return 0, false
	}
	return n.Magnitude * d.Seconds(), true
}

func (n *TimeLiteral) Text() string {
	return strconv.FormatFloat(n.Magnitude, 'g', -1, 64) + n.Unit
}

func (n *TimeLiteral) Equal(other Node) bool {
	o, ok := other.(*TimeLiteral)
	return ok && n.Magnitude == o.Magnitude && n.Unit == o.Unit
}

func nodesEqual(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func listsEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !nodesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func paramsEqual(a, b []Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}
	return true
}

func signature(ret *types.Type, name string, params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	s := name + "(" + strings.Join(parts, ", ") + ")"
	if ret != nil {
		s = ret.String() + " " + s
	}
	return s
}

func textOf(n Node) string {
	if n == nil {
		return ""
	}
	return n.Text()
}
