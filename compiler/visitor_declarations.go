package compiler

import (
	"github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/types"
)

// ============================================================================
// FUNCTION DECLARATIONS
// ============================================================================

// declareFunc returns the module function called name, creating it from
// the signature on first use.
func (v *IRVisitor) declareFunc(node ast.Node, name string, ret *types.Type, params []ast.Param, variadic bool) *ir.Func {
	if fn := v.ctx.FindFunction(name); fn != nil {
		return fn
	}

	retType := irType(ret)
	paramTypes := make([]*types.Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	irParams, ok := irTypes(paramTypes)
	if retType == nil || !ok {
		v.errorf(node, name, "cannot lower the signature of '%s'", name)
		return nil
	}

	args := make([]*ir.Param, len(params))
	for i, p := range params {
		args[i] = ir.NewParam(p.Name, irParams[i])
	}
	fn := v.ctx.Module.NewFunc(name, retType, args...)
	fn.Sig.Variadic = variadic
	v.logger.Debug("Declared function %s", fn.Name())
	return fn
}

// bindFunc records fn as the storage of the function symbol called name.
func (v *IRVisitor) bindFunc(name string, fn *ir.Func) {
	if sym, ok := v.ctx.Resolve(name); ok && sym.Category == Function && sym.Storage == nil {
		sym.Storage = fn
	}
}

func (v *IRVisitor) VisitFunctionDec(n *ast.FunctionDec) any {
	if fn := v.declareFunc(n, n.Name, n.Return, n.Params, n.Variadic); fn != nil {
		v.bindFunc(n.Name, fn)
	}
	return nil
}

func (v *IRVisitor) VisitFunctionDef(n *ast.FunctionDef) any {
	fn := v.declareFunc(n, n.Name, n.Return, n.Params, false)
	if fn == nil {
		return nil
	}
	if len(fn.Blocks) > 0 {
		v.errorf(n, n.Name, "redefinition of function '%s'", n.Name)
		return nil
	}
	v.bindFunc(n.Name, fn)

	v.ctx.EnterFunction(fn)
	v.ctx.PushScope(v.ctx.recordedScope(n))
	v.storeParams(n, fn, n.Params)

	n.Body.Accept(v)

	// Add default return if needed
	if !v.ctx.Terminated() {
		if lltypes.IsVoid(fn.Sig.RetType) {
			v.ctx.CurrentBlock().NewRet(nil)
		} else {
			v.ctx.CurrentBlock().NewRet(zeroValue(fn.Sig.RetType))
		}
	}

	v.ctx.PopScope()
	v.ctx.ExitFunction()
	return nil
}

// storeParams copies each incoming parameter into a hoisted slot so the
// body can assign to it.
func (v *IRVisitor) storeParams(owner ast.Node, fn *ir.Func, params []ast.Param) {
	for i, p := range params {
		arg := fn.Params[i]
		slot := v.ctx.Hoist(arg.Type(), p.Name+".addr")
		v.ctx.CurrentBlock().NewStore(arg, slot)
		if sym, ok := v.ctx.Resolve(p.Name); ok && sym.Node == owner {
			v.bindStorage(sym, slot)
		}
	}
}

// ============================================================================
// CALLS AND RETURNS
// ============================================================================

func (v *IRVisitor) VisitFunctionCall(n *ast.FunctionCall) any {
	sym := v.resolve(n, n.Name)
	if sym == nil {
		return nil
	}
	switch sym.Category {
	case Event:
		return v.scheduleEvent(n, sym)
	case Function:
	default:
		v.errorf(n, n.Name, "%s '%s' is not callable", sym.Category, n.Name)
		return nil
	}

	fn := v.callee(n, sym)
	if fn == nil {
		return nil
	}
	if got, want := len(n.Args), len(fn.Params); got < want || (got > want && !fn.Sig.Variadic) {
		v.errorf(n, n.Name, "'%s' expects %d argument(s), got %d", n.Name, want, got)
		return nil
	}

	args := make([]llvalue.Value, len(n.Args))
	for i, arg := range n.Args {
		val := v.argument(arg)
		if val == nil {
			v.errorf(arg, n.Name, "invalid argument %d to '%s'", i+1, n.Name)
			return nil
		}
		if i < len(fn.Params) {
			val = v.convert(val, fn.Params[i].Type())
		} else {
			val = v.promoteVariadic(val)
		}
		if val == nil {
			v.errorf(arg, n.Name, "cannot use %s as argument %d to '%s'", arg.Text(), i+1, n.Name)
			return nil
		}
		args[i] = val
	}
	return v.ctx.CurrentBlock().NewCall(fn, args...)
}

// callee returns the module function behind a function symbol, declaring
// it from its declaring node on first use.
func (v *IRVisitor) callee(n *ast.FunctionCall, sym *Symbol) *ir.Func {
	if fn, ok := sym.Storage.(*ir.Func); ok {
		return fn
	}
	var fn *ir.Func
	switch decl := sym.Node.(type) {
	case *ast.FunctionDec:
		fn = v.declareFunc(decl, decl.Name, decl.Return, decl.Params, decl.Variadic)
	case *ast.FunctionDef:
		fn = v.declareFunc(decl, decl.Name, decl.Return, decl.Params, false)
	default:
		v.errorf(n, n.Name, "function '%s' has no declaration", n.Name)
		return nil
	}
	if fn != nil {
		sym.Storage = fn
	}
	return fn
}

// argument lowers a value passed out of the current function. String
// literals are materialized as global constants.
func (v *IRVisitor) argument(n ast.Node) llvalue.Value {
	if lit, ok := n.(*ast.Literal); ok && lit.Type.Is(types.String) {
		return v.ctx.StringConstant(lit.Text())
	}
	return v.lower(n)
}

// promoteVariadic applies the C default argument promotions.
func (v *IRVisitor) promoteVariadic(val llvalue.Value) llvalue.Value {
	switch typ := val.Type(); {
	case typ.Equal(lltypes.Float):
		return v.ctx.CurrentBlock().NewFPExt(val, lltypes.Double)
	case typ.Equal(lltypes.I1), typ.Equal(lltypes.I8):
		return v.ctx.CurrentBlock().NewZExt(val, lltypes.I32)
	}
	return val
}

func (v *IRVisitor) VisitReturn(n *ast.Return) any {
	fn := v.ctx.CurrentFunction()
	retType := fn.Sig.RetType
	b := v.ctx.CurrentBlock()

	if n.Expr == nil {
		if !lltypes.IsVoid(retType) {
			v.errorf(n, fn.Name(), "missing return value in '%s'", fn.Name())
			b.NewRet(zeroValue(retType))
			return nil
		}
		b.NewRet(nil)
		return nil
	}

	if lltypes.IsVoid(retType) {
		v.errorf(n, fn.Name(), "'%s' returns no value", fn.Name())
		b.NewRet(nil)
		return nil
	}
	val := v.argument(n.Expr)
	if val != nil {
		// Cast to expected return type if needed
		val = v.convert(val, retType)
	}
	if val == nil {
		v.errorf(n, fn.Name(), "cannot return %s from '%s' of type %s", n.Expr.Text(), fn.Name(), retType)
		val = zeroValue(retType)
	}
	v.ctx.CurrentBlock().NewRet(val)
	return nil
}
