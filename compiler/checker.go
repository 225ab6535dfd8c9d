package compiler

import (
	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/diagnostics"
	"github.com/pulse-lang/core-compiler/types"
)

// Checker is the semantic pass. It declares symbols, opens a scope for
// every scope-introducing node (recording it in the SymbolTable for the
// lowering pass) and annotates binary expressions with their type.
// Violations are accumulated; the pass never stops on them.
type Checker struct {
	symbols *SymbolTable
	diags   *diagnostics.DiagnosticEngine
	logger  *Logger
}

// NewChecker creates a semantic pass over symbols.
func NewChecker(symbols *SymbolTable, diags *diagnostics.DiagnosticEngine, logger *Logger) *Checker {
	return &Checker{symbols: symbols, diags: diags, logger: logger}
}

// Check walks the translation unit once. The returned error is only set
// for structural failures; semantic errors land in the diagnostics.
func (c *Checker) Check(stmts []ast.Node) (err error) {
	defer diagnostics.Recover(&err)
	ast.Walk(c, stmts)
	c.logger.Debug("Semantic pass done: %d scope(s), %d error(s)", c.symbols.Len(), c.diags.ErrorCount())
	return nil
}

func (c *Checker) errorf(node ast.Node, ident, format string, args ...any) {
	c.diags.Error(diagnostics.PhaseSemantic, node.Position(), ident, format, args...)
}

// openScope enters a new scope and records it against node.
func (c *Checker) openScope(node ast.Node) {
	scope := c.symbols.EnterScope()
	c.symbols.Bind(node, scope.ID)
}

func (c *Checker) visit(n ast.Node) {
	if n != nil {
		n.Accept(c)
	}
}

// declare inserts sym into the current scope, reporting a redeclaration.
func (c *Checker) declare(node ast.Node, sym *Symbol) bool {
	if c.symbols.InsertSymbol(sym) {
		return true
	}
	prev, _ := c.symbols.Current().LookupLocal(sym.Name)
	c.errorf(node, sym.Name, "redeclaration of %s '%s' in the same scope", prev.Category, sym.Name)
	return false
}

func (c *Checker) declareParams(params []ast.Param, node ast.Node) {
	for _, p := range params {
		c.declare(node, NewSymbol(p.Name, Parameter, p.Type, node))
	}
}

// ============================================================================
// EXPRESSIONS
// ============================================================================

func (c *Checker) VisitLiteral(n *ast.Literal) any { return nil }

func (c *Checker) VisitTimeLiteral(n *ast.TimeLiteral) any { return nil }

// literalType returns the type of a literal operand, or of a binary operand
// whose own type came from literals. Anything else is undetermined.
func literalType(n ast.Node) *types.Type {
	switch e := n.(type) {
	case *ast.Literal:
		return e.Type
	case *ast.BinaryExpr:
		return e.Type
	}
	return nil
}

func (c *Checker) VisitBinaryExpr(n *ast.BinaryExpr) any {
	c.visit(n.Left)
	c.visit(n.Right)

	lt, rt := literalType(n.Left), literalType(n.Right)
	if lt == nil || rt == nil {
		return nil
	}
	switch {
	case lt.Equal(rt):
		n.Type = lt
	case lt.Numeric() && rt.Numeric():
		// lowering promotes the Int side, so the result is Float
		n.Type = types.FloatType
	default:
		return nil
	}
	if isComparison(n.Op) {
		// comparisons of either operand type produce a Bool
		n.Type = types.BoolType
	}
	return nil
}

func (c *Checker) VisitVariableRef(n *ast.VariableRef) any {
	sym := c.symbols.GetSymbol(n.Name)
	if sym == nil {
		c.errorf(n, n.Name, "undeclared identifier '%s'", n.Name)
		return nil
	}
	if sym.Category == Function || sym.Category == Event {
		c.errorf(n, n.Name, "%s '%s' used as a value", sym.Category, n.Name)
	}
	return nil
}

func (c *Checker) VisitFunctionCall(n *ast.FunctionCall) any {
	for _, arg := range n.Args {
		c.visit(arg)
	}
	sym := c.symbols.GetSymbol(n.Name)
	if sym == nil {
		c.errorf(n, n.Name, "call to undeclared function '%s'", n.Name)
		return nil
	}
	if sym.Category != Function && sym.Category != Event {
		c.errorf(n, n.Name, "%s '%s' is not callable", sym.Category, n.Name)
		return nil
	}
	want, got := sym.ParamCount(), len(n.Args)
	if got < want || (got > want && !sym.Variadic) {
		c.errorf(n, n.Name, "'%s' expects %d argument(s), got %d", n.Name, want, got)
	}
	return nil
}

// ============================================================================
// VARIABLES
// ============================================================================

func (c *Checker) VisitVariableDec(n *ast.VariableDec) any {
	c.declare(n, NewSymbol(n.Name, Variable, n.Type, n))
	return nil
}

func (c *Checker) VisitVariableAssign(n *ast.VariableAssign) any {
	c.visit(n.Value)
	valueType := literalType(n.Value)

	if n.Declares() {
		if c.declare(n, NewSymbol(n.Name, Variable, n.Type, n)) {
			c.checkAssignedType(n, n.Type)
		}
		return nil
	}

	sym := c.symbols.GetSymbol(n.Name)
	if sym == nil {
		// first assignment declares the variable
		if valueType == nil {
			c.errorf(n, n.Name, "cannot infer the type of '%s' from %s", n.Name, n.Value.Text())
		}
		c.symbols.InsertSymbol(NewSymbol(n.Name, Variable, valueType, n))
		return nil
	}
	if sym.Category != Variable && sym.Category != Parameter {
		c.errorf(n, n.Name, "cannot assign to %s '%s'", sym.Category, n.Name)
		return nil
	}
	c.checkAssignedType(n, sym.Type)
	return nil
}

// checkAssignedType reports a binary expression value whose inferred type
// differs from the target's. Untyped expressions are left to lowering.
func (c *Checker) checkAssignedType(n *ast.VariableAssign, target *types.Type) {
	bin, ok := n.Value.(*ast.BinaryExpr)
	if !ok || target == nil || bin.Type == nil {
		return
	}
	if !bin.Type.Equal(target) {
		c.errorf(n, n.Name, "cannot assign %s value %s to '%s' of type %s", bin.Type, bin.Text(), n.Name, target)
	}
}

// ============================================================================
// BLOCKS AND FUNCTIONS
// ============================================================================

func (c *Checker) VisitCodeBlock(n *ast.CodeBlock) any {
	c.openScope(n)
	defer c.symbols.ExitScope()
	for _, stmt := range n.Stmts {
		c.visit(stmt)
	}
	return nil
}

func (c *Checker) declareFunction(node ast.Node, name string, ret *types.Type, params []ast.Param, variadic bool) *Symbol {
	sym := NewSymbol(name, Function, ret, node)
	sym.Variadic = variadic
	// SetParamCount cannot fail on a Function symbol
	_ = sym.SetParamCount(len(params))
	if c.symbols.InsertSymbol(sym) {
		return sym
	}

	prev, _ := c.symbols.Current().LookupLocal(name)
	if _, isDec := prev.Node.(*ast.FunctionDec); isDec && prev.Category == Function {
		if prev.ParamCount() != len(params) || !prev.Type.Equal(ret) {
			c.errorf(node, name, "definition of '%s' does not match its declaration", name)
		}
		if _, isDef := node.(*ast.FunctionDef); isDef {
			prev.Node = node
		}
		return prev
	}
	c.errorf(node, name, "redeclaration of %s '%s' in the same scope", prev.Category, name)
	return nil
}

func (c *Checker) VisitFunctionDec(n *ast.FunctionDec) any {
	c.declareFunction(n, n.Name, n.Return, n.Params, n.Variadic)
	return nil
}

func (c *Checker) VisitFunctionDef(n *ast.FunctionDef) any {
	c.declareFunction(n, n.Name, n.Return, n.Params, false)

	c.openScope(n)
	defer c.symbols.ExitScope()
	c.declareParams(n.Params, n)
	c.visit(n.Body)
	return nil
}

func (c *Checker) VisitReturn(n *ast.Return) any {
	c.visit(n.Expr)
	return nil
}

// ============================================================================
// CONTROL FLOW
// ============================================================================

func (c *Checker) VisitIf(n *ast.If) any {
	c.visit(n.Cond)
	c.visit(n.Then)
	for _, e := range n.Elses {
		c.visit(e)
	}
	return nil
}

func (c *Checker) VisitElse(n *ast.Else) any {
	c.visit(n.Cond)
	c.visit(n.Block)
	return nil
}

func (c *Checker) VisitWhile(n *ast.While) any {
	c.visit(n.Cond)
	c.visit(n.Block)
	return nil
}

func (c *Checker) VisitFor(n *ast.For) any {
	c.openScope(n)
	defer c.symbols.ExitScope()
	c.visit(n.Init)
	c.visit(n.Cond)
	c.visit(n.Step)
	c.visit(n.Block)
	return nil
}

func (c *Checker) VisitLoopControl(n *ast.LoopControl) any { return nil }

// ============================================================================
// EVENTS
// ============================================================================

func (c *Checker) VisitEvent(n *ast.Event) any {
	sym := NewSymbol(n.Name, Event, types.VoidType, n)
	_ = sym.SetParamCount(len(n.Params))
	c.declare(n, sym)
	if n.Limit < 0 {
		c.errorf(n, n.Name, "event limit must not be negative, got %d", n.Limit)
	}
	c.visit(n.Period)

	c.openScope(n)
	defer c.symbols.ExitScope()
	c.declareParams(n.Params, n)
	c.visit(n.Handler)
	return nil
}

func (c *Checker) VisitExit(n *ast.Exit) any {
	sym := c.symbols.GetSymbol(n.Event)
	switch {
	case sym == nil:
		c.errorf(n, n.Event, "exit of undeclared event '%s'", n.Event)
	case sym.Category != Event:
		c.errorf(n, n.Event, "exit target '%s' is a %s, not an event", n.Event, sym.Category)
	}
	return nil
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">":
		return true
	}
	return false
}
