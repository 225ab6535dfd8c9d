package compiler

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/diagnostics"
	"github.com/pulse-lang/core-compiler/types"
)

// IRVisitor is the lowering pass. Expression visits return an
// llvalue.Value, or nil when lowering failed and a diagnostic was reported.
type IRVisitor struct {
	ctx    *Context
	logger *Logger
	entry  *ir.Func
}

// NewIRVisitor creates a new IR visitor
func NewIRVisitor(ctx *Context, logger *Logger) *IRVisitor {
	return &IRVisitor{ctx: ctx, logger: logger}
}

// Lower lowers a checked translation unit into the context's module.
// Function declarations and definitions become module-level functions;
// every other top-level statement is lowered into the entry function.
// Only structural failures are returned; codegen errors are accumulated
// in the diagnostics and lowering continues.
func (v *IRVisitor) Lower(stmts []ast.Node) (err error) {
	defer diagnostics.Recover(&err)

	v.ctx.PushScope(v.ctx.Symbols.Root().ID)
	for _, stmt := range stmts {
		switch stmt.(type) {
		case *ast.FunctionDef, *ast.FunctionDec:
			stmt.Accept(v)
		default:
			v.enterEntry(stmt)
			if v.ctx.Terminated() {
				v.warnUnreachable(stmt)
				continue
			}
			stmt.Accept(v)
		}
	}
	v.finishEntry()
	v.ctx.PopScope()

	if v.ctx.ScopeDepth() != 0 {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "%d scope(s) left open after lowering", v.ctx.ScopeDepth())
	}
	v.logger.Debug("Lowered %d function(s), %d global(s)", len(v.ctx.Module.Funcs), len(v.ctx.Module.Globals))
	return nil
}

// enterEntry creates the entry function on first use and leaves it as the
// current function for the rest of the unit.
func (v *IRVisitor) enterEntry(stmt ast.Node) {
	if v.entry != nil {
		return
	}
	name := v.ctx.Options.EntryFunction
	if v.ctx.FindFunction(name) != nil {
		v.errorf(stmt, name, "entry function '%s' is already defined", name)
	}
	v.entry = v.ctx.Module.NewFunc(name, lltypes.I32)
	v.ctx.EnterFunction(v.entry)
}

func (v *IRVisitor) finishEntry() {
	if v.entry == nil {
		return
	}
	if !v.ctx.Terminated() {
		v.ctx.CurrentBlock().NewRet(constant.NewInt(lltypes.I32, 0))
	}
	v.ctx.ExitFunction()
}

func (v *IRVisitor) errorf(node ast.Node, ident, format string, args ...any) {
	v.ctx.Diagnostics.Error(diagnostics.PhaseCodegen, node.Position(), ident, format, args...)
}

func (v *IRVisitor) warnUnreachable(node ast.Node) {
	v.ctx.Diagnostics.Warning(diagnostics.PhaseCodegen, node.Position(), "", "unreachable statement %s", node.Text())
}

// lower visits an expression node and returns its value, or nil.
func (v *IRVisitor) lower(n ast.Node) llvalue.Value {
	if n == nil {
		return nil
	}
	val, _ := n.Accept(v).(llvalue.Value)
	return val
}

// resolve looks up name, reporting a codegen error when it is missing.
func (v *IRVisitor) resolve(node ast.Node, name string) *Symbol {
	sym, ok := v.ctx.Resolve(name)
	if !ok {
		v.errorf(node, name, "undefined: %s", name)
		return nil
	}
	return sym
}

// ============================================================================
// LITERALS
// ============================================================================

func (v *IRVisitor) VisitLiteral(n *ast.Literal) any {
	switch val := n.Value.(type) {
	case int32:
		if n.Type.Is(types.Int) {
			return constant.NewInt(lltypes.I32, int64(val))
		}
	case float32:
		if n.Type.Is(types.Float) {
			return constant.NewFloat(lltypes.Float, float64(val))
		}
	case byte:
		if n.Type.Is(types.Char) {
			return constant.NewInt(lltypes.I8, int64(val))
		}
	case bool:
		if n.Type.Is(types.Bool) {
			return constant.NewBool(val)
		}
	case string:
		if n.Type.Is(types.String) {
			// opaque until folded; call arguments are materialized instead
			return constant.NewUndef(lltypes.I8Ptr)
		}
	}
	v.errorf(n, n.Text(), "literal of type %s holds a %T", n.Type, n.Value)
	return nil
}

// ============================================================================
// VARIABLES
// ============================================================================

func (v *IRVisitor) VisitVariableDec(n *ast.VariableDec) any {
	typ := irType(n.Type)
	if typ == nil || lltypes.IsVoid(typ) {
		v.errorf(n, n.Name, "cannot allocate '%s' of type %s", n.Name, n.Type)
		return nil
	}
	slot := v.ctx.Hoist(typ, n.Name)
	if sym, ok := v.ctx.Resolve(n.Name); ok && sym.Node == n {
		v.bindStorage(sym, slot)
	}
	return nil
}

func (v *IRVisitor) VisitVariableAssign(n *ast.VariableAssign) any {
	val := v.argument(n.Value)
	if val == nil {
		v.errorf(n, n.Name, "cannot assign an invalid value to '%s'", n.Name)
		return nil
	}
	sym := v.resolve(n, n.Name)
	if sym == nil {
		return nil
	}

	if sym.Storage == nil && sym.Node == n {
		typ := irType(sym.Type)
		if typ == nil {
			typ = val.Type()
		}
		v.bindStorage(sym, v.ctx.Hoist(typ, n.Name))
	}
	slot := v.storageOf(n, sym)
	if slot == nil {
		return nil
	}

	target := slotType(slot)
	val = v.convert(val, target)
	if val == nil {
		v.errorf(n, n.Name, "cannot store %s into '%s' of type %s", n.Value.Text(), n.Name, target)
		return nil
	}
	v.ctx.CurrentBlock().NewStore(val, slot)
	return nil
}

func (v *IRVisitor) VisitVariableRef(n *ast.VariableRef) any {
	sym := v.resolve(n, n.Name)
	if sym == nil {
		return nil
	}
	if sym.Category == Function || sym.Category == Event {
		v.errorf(n, n.Name, "%s '%s' used as a value", sym.Category, n.Name)
		return nil
	}
	slot := v.storageOf(n, sym)
	if slot == nil {
		return nil
	}
	return v.ctx.CurrentBlock().NewLoad(slotType(slot), slot)
}

// bindStorage records slot as sym's storage, owned by the current function.
func (v *IRVisitor) bindStorage(sym *Symbol, slot llvalue.Value) {
	sym.Storage = slot
	v.ctx.slots[sym] = v.ctx.CurrentFunction()
}

// storageOf returns sym's stack slot if the current function can use it.
func (v *IRVisitor) storageOf(node ast.Node, sym *Symbol) llvalue.Value {
	if sym.Storage == nil {
		v.errorf(node, sym.Name, "'%s' is used before it has storage", sym.Name)
		return nil
	}
	if owner := v.ctx.slots[sym]; owner != nil && owner != v.ctx.CurrentFunction() {
		v.errorf(node, sym.Name, "'%s' is local to function '%s'", sym.Name, owner.Name())
		return nil
	}
	return sym.Storage
}

// convert returns val as a value of type to, promoting int to float. It
// returns nil when no conversion applies.
func (v *IRVisitor) convert(val llvalue.Value, to lltypes.Type) llvalue.Value {
	from := val.Type()
	switch {
	case to == nil:
		return nil
	case from.Equal(to):
		return val
	case from.Equal(lltypes.I32) && lltypes.IsFloat(to):
		return v.toFloat(val)
	}
	return nil
}

// ============================================================================
// BLOCKS
// ============================================================================

func (v *IRVisitor) VisitCodeBlock(n *ast.CodeBlock) any {
	v.ctx.PushScope(v.ctx.recordedScope(n))
	defer v.ctx.PopScope()

	for _, stmt := range n.Stmts {
		// Stop if we hit a terminator
		if v.ctx.Terminated() {
			v.warnUnreachable(stmt)
			break
		}
		stmt.Accept(v)
	}
	return nil
}
