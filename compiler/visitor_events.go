package compiler

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/pulse-lang/core-compiler/ast"
)

// ============================================================================
// EVENTS
// ============================================================================

// VisitEvent compiles the handler to <name>.handler and registers it with
// the runtime:
//
//	registerEvent(id, period, handler, argc, argtypes, limit)
func (v *IRVisitor) VisitEvent(n *ast.Event) any {
	handler := v.eventHandler(n)
	if handler == nil {
		return nil
	}
	if sym, ok := v.ctx.Resolve(n.Name); ok && sym.Node == n {
		sym.Storage = handler
	}

	period := v.lower(n.Period)
	if period != nil {
		period = v.convert(period, lltypes.Float)
	}
	if period == nil {
		v.errorf(n, n.Name, "event period %s is not a duration or number", n.Period.Text())
		return nil
	}

	tags := make([]int64, len(n.Params))
	for i, p := range n.Params {
		tags[i] = tagCode(p.Type)
	}

	v.ctx.CurrentBlock().NewCall(v.ctx.registerEventFunc(),
		v.ctx.StringConstant(n.Name),
		period,
		constant.NewBitCast(handler, lltypes.I8Ptr),
		constant.NewInt(lltypes.I32, int64(len(n.Params))),
		v.ctx.TagArray(n.Name, tags),
		constant.NewInt(lltypes.I32, int64(n.Limit)),
	)
	v.logger.Debug("Registered event %s (limit %d)", n.Name, n.Limit)
	return nil
}

// eventHandler lowers an event body into a void function taking the
// event's parameters.
func (v *IRVisitor) eventHandler(n *ast.Event) *ir.Func {
	name := n.Name + ".handler"
	if v.ctx.FindFunction(name) != nil {
		v.errorf(n, n.Name, "handler for event '%s' is already defined", n.Name)
		return nil
	}

	params := make([]*ir.Param, len(n.Params))
	for i, p := range n.Params {
		typ := irType(p.Type)
		if typ == nil || lltypes.IsVoid(typ) {
			v.errorf(n, p.Name, "event parameter '%s' has no storable type", p.Name)
			return nil
		}
		params[i] = ir.NewParam(p.Name, typ)
	}
	fn := v.ctx.Module.NewFunc(name, lltypes.Void, params...)

	v.ctx.EnterFunction(fn)
	v.ctx.PushScope(v.ctx.recordedScope(n))
	v.storeParams(n, fn, n.Params)

	n.Handler.Accept(v)
	if !v.ctx.Terminated() {
		v.ctx.CurrentBlock().NewRet(nil)
	}

	v.ctx.PopScope()
	v.ctx.ExitFunction()
	return fn
}

// scheduleEvent lowers a call to an event into
//
//	scheduleEvent(id, argv)
//
// where argv points at one i8* per argument, each addressing a stack copy
// of the argument value.
func (v *IRVisitor) scheduleEvent(n *ast.FunctionCall, sym *Symbol) llvalue.Value {
	if len(n.Args) != sym.ParamCount() {
		v.errorf(n, n.Name, "event '%s' expects %d argument(s), got %d", n.Name, sym.ParamCount(), len(n.Args))
		return nil
	}
	handler, _ := sym.Storage.(*ir.Func)

	var argv llvalue.Value = constant.NewNull(lltypes.NewPointer(lltypes.I8Ptr))
	if len(n.Args) > 0 {
		arrType := lltypes.NewArray(uint64(len(n.Args)), lltypes.I8Ptr)
		arr := v.ctx.Hoist(arrType, n.Name+".argv")
		zero := constant.NewInt(lltypes.I32, 0)

		for i, arg := range n.Args {
			val := v.argument(arg)
			if val != nil && handler != nil {
				val = v.convert(val, handler.Params[i].Type())
			}
			if val == nil {
				v.errorf(arg, n.Name, "invalid argument %d to event '%s'", i+1, n.Name)
				return nil
			}

			b := v.ctx.CurrentBlock()
			slot := v.ctx.Hoist(val.Type(), fmt.Sprintf("%s.arg%d", n.Name, i))
			b.NewStore(val, slot)
			elem := b.NewGetElementPtr(arrType, arr, zero, constant.NewInt(lltypes.I32, int64(i)))
			b.NewStore(b.NewBitCast(slot, lltypes.I8Ptr), elem)
		}
		argv = v.ctx.CurrentBlock().NewGetElementPtr(arrType, arr, zero, zero)
	}

	return v.ctx.CurrentBlock().NewCall(v.ctx.scheduleEventFunc(), v.ctx.StringConstant(n.Name), argv)
}

func (v *IRVisitor) VisitExit(n *ast.Exit) any {
	sym := v.resolve(n, n.Event)
	if sym == nil {
		return nil
	}
	if sym.Category != Event {
		v.errorf(n, n.Event, "exit target '%s' is a %s, not an event", n.Event, sym.Category)
		return nil
	}
	v.ctx.CurrentBlock().NewCall(v.ctx.terminateEventFunc(), v.ctx.StringConstant(n.Event))
	return nil
}

// VisitTimeLiteral lowers a duration to seconds.
func (v *IRVisitor) VisitTimeLiteral(n *ast.TimeLiteral) any {
	secs, ok := n.Seconds()
	if !ok {
		v.errorf(n, n.Unit, "unknown time unit %q", n.Unit)
		return nil
	}
	return constant.NewFloat(lltypes.Float, float64(float32(secs)))
}
