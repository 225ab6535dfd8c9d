package compiler

import (
	"github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/types"
)

// Builtins returns the declarations seeded into every root scope: formatted
// print, string length and integer-to-string.
func Builtins() []*ast.FunctionDec {
	return []*ast.FunctionDec{
		{
			Name:     "printf",
			Params:   []ast.Param{{Type: types.StringType, Name: "format"}},
			Return:   types.IntType,
			Variadic: true,
		},
		{
			Name:   "strlen",
			Params: []ast.Param{{Type: types.StringType, Name: "s"}},
			Return: types.IntType,
		},
		{
			Name:   "itoa",
			Params: []ast.Param{{Type: types.IntType, Name: "n"}},
			Return: types.StringType,
		},
	}
}

// ============================================================================
// EVENT RUNTIME ABI
// ============================================================================

// registerEventFunc declares
// registerEvent(i8* id, float period, i8* handler, i32 argc, i32* argtypes, i32 limit).
func (c *Context) registerEventFunc() *ir.Func {
	return c.runtimeFunc(c.Options.Runtime.Register,
		ir.NewParam("id", lltypes.I8Ptr),
		ir.NewParam("period", lltypes.Float),
		ir.NewParam("handler", lltypes.I8Ptr),
		ir.NewParam("argc", lltypes.I32),
		ir.NewParam("argtypes", lltypes.NewPointer(lltypes.I32)),
		ir.NewParam("limit", lltypes.I32),
	)
}

// scheduleEventFunc declares scheduleEvent(i8* id, i8** argv).
func (c *Context) scheduleEventFunc() *ir.Func {
	return c.runtimeFunc(c.Options.Runtime.Schedule,
		ir.NewParam("id", lltypes.I8Ptr),
		ir.NewParam("argv", lltypes.NewPointer(lltypes.I8Ptr)),
	)
}

// terminateEventFunc declares terminateEvent(i8* id).
func (c *Context) terminateEventFunc() *ir.Func {
	return c.runtimeFunc(c.Options.Runtime.Terminate,
		ir.NewParam("id", lltypes.I8Ptr),
	)
}

func (c *Context) runtimeFunc(name string, params ...*ir.Param) *ir.Func {
	if fn, ok := c.runtime[name]; ok {
		return fn
	}
	fn := c.Module.NewFunc(name, lltypes.Void, params...)
	c.runtime[name] = fn
	return fn
}
