package compiler

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/pulse-lang/core-compiler/diagnostics"
	"github.com/pulse-lang/core-compiler/types"
)

func variable(name string, typ *types.Type) *Symbol {
	return NewSymbol(name, Variable, typ, nil)
}

func TestRootSeededWithBuiltins(t *testing.T) {
	st := NewSymbolTable()
	for _, name := range []string{"printf", "strlen", "itoa"} {
		sym := st.GetSymbol(name)
		be.True(t, sym != nil)
		be.Equal(t, sym.Category, Function)
	}
	be.True(t, st.GetSymbol("printf").Variadic)
	be.Equal(t, st.GetSymbol("itoa").ParamCount(), 1)
	be.Equal(t, st.Current().ID, st.Root().ID)
	be.Equal(t, st.Root().Level, 0)
}

func TestInsertRedeclaration(t *testing.T) {
	st := NewSymbolTable()
	be.True(t, st.InsertSymbol(variable("a", types.IntType)))
	be.True(t, !st.InsertSymbol(variable("a", types.FloatType)))
	be.True(t, st.GetSymbol("a").Type.Equal(types.IntType))
}

func TestChildShadows(t *testing.T) {
	st := NewSymbolTable()
	st.InsertSymbol(variable("a", types.IntType))

	child := st.EnterScope()
	be.Equal(t, child.Level, 1)
	be.True(t, st.Contains("a"))
	be.True(t, st.InsertSymbol(variable("a", types.FloatType)))
	be.True(t, st.GetSymbol("a").Type.Equal(types.FloatType))

	st.ExitScope()
	be.True(t, st.GetSymbol("a").Type.Equal(types.IntType))
}

func TestNoSiblingOrDescendantLookup(t *testing.T) {
	st := NewSymbolTable()

	first := st.EnterScope()
	st.InsertSymbol(variable("inner", types.IntType))
	st.EnterScope()
	st.InsertSymbol(variable("deep", types.IntType))
	st.ExitScope()
	st.ExitScope()

	second := st.EnterScope()
	be.True(t, !st.Contains("inner"))
	be.True(t, st.GetSymbol("deep") == nil)
	st.ExitScope()

	// from the root, neither is visible
	be.True(t, !st.Contains("inner"))

	_, ok := st.LookupIn(first.ID, "inner")
	be.True(t, ok)
	_, ok = st.LookupIn(first.ID, "deep")
	be.True(t, !ok)
	_, ok = st.LookupIn(second.ID, "printf")
	be.True(t, ok)
}

func TestExitRootIsNoop(t *testing.T) {
	st := NewSymbolTable()
	st.ExitScope()
	st.ExitScope()
	be.Equal(t, st.Current().ID, st.Root().ID)

	st.EnterScope()
	st.ExitScope()
	st.ExitScope()
	be.Equal(t, st.Current().ID, st.Root().ID)
}

func TestScopeIDsAreDense(t *testing.T) {
	st := NewSymbolTable()
	a := st.EnterScope()
	b := st.EnterScope()
	st.ExitScope()
	c := st.EnterScope()

	be.Equal(t, a.ID, ScopeID(1))
	be.Equal(t, b.ID, ScopeID(2))
	be.Equal(t, c.ID, ScopeID(3))
	be.Equal(t, c.Level, 2)
	parent, ok := c.Parent()
	be.True(t, ok)
	be.Equal(t, parent, a.ID)
	be.Equal(t, st.Len(), 4)
}

func lookupScope(st *SymbolTable, id ScopeID) (err error) {
	defer diagnostics.Recover(&err)
	st.ScopeByID(id)
	return nil
}

func TestScopeByIDMissIsFatal(t *testing.T) {
	st := NewSymbolTable()
	be.Err(t, lookupScope(st, 0), nil)

	err := lookupScope(st, 7)
	be.True(t, err != nil)
	be.True(t, diagnostics.IsStructural(err))
	be.True(t, lookupScope(st, -1) != nil)
}

func TestSetParamCount(t *testing.T) {
	fn := NewSymbol("f", Function, types.VoidType, nil)
	be.Err(t, fn.SetParamCount(2), nil)
	be.Equal(t, fn.ParamCount(), 2)

	ev := NewSymbol("tick", Event, types.VoidType, nil)
	be.Err(t, ev.SetParamCount(1), nil)

	v := variable("x", types.IntType)
	be.True(t, v.SetParamCount(1) != nil)
	be.Equal(t, v.ParamCount(), 0)
}
