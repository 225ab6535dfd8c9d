package compiler

import (
	"io"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/diagnostics"
	"github.com/pulse-lang/core-compiler/types"
)

func quietLogger() *Logger {
	return NewLoggerTo(io.Discard, "[test]", LogLevelSilent, ColorNever)
}

func check(t *testing.T, stmts ...ast.Node) (*SymbolTable, *diagnostics.DiagnosticEngine) {
	t.Helper()
	st := NewSymbolTable()
	diags := diagnostics.NewDiagnosticEngine()
	be.Err(t, NewChecker(st, diags, quietLogger()).Check(stmts), nil)
	return st, diags
}

func hasMessage(diags *diagnostics.DiagnosticEngine, substr string) bool {
	for _, d := range diags.All() {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

func block(stmts ...ast.Node) *ast.CodeBlock {
	return &ast.CodeBlock{Stmts: stmts}
}

func ref(name string) *ast.VariableRef {
	return &ast.VariableRef{Name: name}
}

func bin(op string, l, r ast.Node) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: op, Left: l, Right: r}
}

func TestBinaryTypeFromLiterals(t *testing.T) {
	same := bin("+", ast.IntLit(1), ast.IntLit(2))
	mixed := bin("*", ast.IntLit(2), ast.FloatLit(1.5))
	cmp := bin("<", ast.IntLit(2), ast.IntLit(3))
	nested := bin("-", bin("+", ast.IntLit(1), ast.IntLit(2)), ast.IntLit(3))
	withVar := bin("+", ref("x"), ast.IntLit(1))
	strs := bin("==", ast.StringLit("a"), ast.StringLit("b"))
	badMix := bin("+", ast.StringLit("a"), ast.IntLit(1))

	_, diags := check(t,
		&ast.VariableDec{Type: types.IntType, Name: "x"},
		same, mixed, cmp, nested, withVar, strs, badMix,
	)

	be.True(t, same.Type.Equal(types.IntType))
	be.True(t, mixed.Type.Equal(types.FloatType))
	be.True(t, cmp.Type.Equal(types.BoolType))
	be.True(t, nested.Type.Equal(types.IntType))
	be.True(t, withVar.Type == nil)
	be.True(t, strs.Type.Equal(types.BoolType))
	be.True(t, badMix.Type == nil)
	be.True(t, !diags.HasErrors())
}

func TestRedeclarationSameScope(t *testing.T) {
	_, diags := check(t,
		&ast.VariableDec{Type: types.IntType, Name: "a"},
		&ast.VariableDec{Type: types.FloatType, Name: "a"},
	)
	be.Equal(t, diags.ErrorCount(), 1)
	be.True(t, hasMessage(diags, "redeclaration"))
	be.Equal(t, diags.All()[0].Phase, diagnostics.PhaseSemantic)
}

func TestShadowingInBlock(t *testing.T) {
	inner := block(&ast.VariableDec{Type: types.FloatType, Name: "a"})
	st, diags := check(t,
		&ast.VariableDec{Type: types.IntType, Name: "a"},
		&ast.While{Cond: ast.BoolLit(true), Block: inner},
	)
	be.True(t, !diags.HasErrors())

	id, ok := st.ScopeOf(inner)
	be.True(t, ok)
	sym, _ := st.LookupIn(id, "a")
	be.True(t, sym.Type.Equal(types.FloatType))
	sym, _ = st.LookupIn(st.Root().ID, "a")
	be.True(t, sym.Type.Equal(types.IntType))
}

func TestBlockScopesAreClosed(t *testing.T) {
	_, diags := check(t,
		&ast.If{Cond: ast.BoolLit(true), Then: block(&ast.VariableDec{Type: types.IntType, Name: "hidden"})},
		&ast.VariableAssign{Type: types.VoidType, Name: "y", Value: ref("hidden")},
	)
	be.True(t, hasMessage(diags, "undeclared identifier 'hidden'"))
}

func TestImplicitDeclaration(t *testing.T) {
	st, diags := check(t,
		&ast.VariableAssign{Type: types.VoidType, Name: "a", Value: ast.IntLit(2)},
		&ast.VariableAssign{Type: types.VoidType, Name: "a", Value: ast.IntLit(3)},
	)
	be.True(t, !diags.HasErrors())
	sym := st.GetSymbol("a")
	be.Equal(t, sym.Category, Variable)
	be.True(t, sym.Type.Equal(types.IntType))
}

func TestImplicitDeclarationNeedsType(t *testing.T) {
	_, diags := check(t,
		&ast.VariableDec{Type: types.IntType, Name: "x"},
		&ast.VariableAssign{Type: types.VoidType, Name: "a", Value: ref("x")},
	)
	be.True(t, hasMessage(diags, "cannot infer the type of 'a'"))
}

func TestAssignCategoryAndType(t *testing.T) {
	_, diags := check(t,
		&ast.VariableAssign{Type: types.VoidType, Name: "printf", Value: ast.IntLit(1)},
		&ast.VariableAssign{Type: types.IntType, Name: "n", Value: bin("+", ast.IntLit(1), ast.FloatLit(2))},
	)
	be.Equal(t, diags.ErrorCount(), 2)
	be.True(t, hasMessage(diags, "cannot assign to function 'printf'"))
	be.True(t, hasMessage(diags, "cannot assign float value"))
}

func TestFunctionDeclThenDef(t *testing.T) {
	dec := &ast.FunctionDec{Name: "twice", Params: []ast.Param{{Type: types.IntType, Name: "n"}}, Return: types.IntType}
	call := &ast.FunctionCall{Name: "twice", Args: []ast.Node{ast.IntLit(4)}}
	def := &ast.FunctionDef{
		Name:   "twice",
		Params: []ast.Param{{Type: types.IntType, Name: "n"}},
		Return: types.IntType,
		Body:   block(&ast.Return{Expr: bin("*", ref("n"), ast.IntLit(2))}),
	}
	st, diags := check(t, dec, call, def)
	be.True(t, !diags.HasErrors())

	sym := st.GetSymbol("twice")
	be.True(t, sym.Node == def)
	be.Equal(t, sym.ParamCount(), 1)

	fnScope, ok := st.ScopeOf(def)
	be.True(t, ok)
	param, ok := st.ScopeByID(fnScope).LookupLocal("n")
	be.True(t, ok)
	be.Equal(t, param.Category, Parameter)
}

func TestFunctionDefMismatch(t *testing.T) {
	_, diags := check(t,
		&ast.FunctionDec{Name: "f", Return: types.IntType},
		&ast.FunctionDef{Name: "f", Return: types.FloatType, Body: block()},
		&ast.FunctionDef{Name: "g", Return: types.VoidType, Body: block()},
		&ast.FunctionDef{Name: "g", Return: types.VoidType, Body: block()},
	)
	be.True(t, hasMessage(diags, "does not match its declaration"))
	be.True(t, hasMessage(diags, "redeclaration of function 'g'"))
}

func TestCallChecks(t *testing.T) {
	_, diags := check(t,
		&ast.FunctionCall{Name: "printf", Args: []ast.Node{ast.StringLit("%d %d"), ast.IntLit(1), ast.IntLit(2)}},
		&ast.FunctionCall{Name: "strlen"},
		&ast.FunctionCall{Name: "nope"},
		&ast.VariableDec{Type: types.IntType, Name: "x"},
		&ast.FunctionCall{Name: "x"},
	)
	be.Equal(t, diags.ErrorCount(), 3)
	be.True(t, hasMessage(diags, "'strlen' expects 1 argument(s), got 0"))
	be.True(t, hasMessage(diags, "undeclared function 'nope'"))
	be.True(t, hasMessage(diags, "variable 'x' is not callable"))
}

func TestFunctionUsedAsValue(t *testing.T) {
	_, diags := check(t,
		&ast.VariableAssign{Type: types.IntType, Name: "n", Value: ref("strlen")},
	)
	be.True(t, hasMessage(diags, "function 'strlen' used as a value"))
}

func TestEventChecks(t *testing.T) {
	ev := &ast.Event{
		Name:    "tick",
		Period:  &ast.TimeLiteral{Magnitude: 1, Unit: "s"},
		Params:  []ast.Param{{Type: types.IntType, Name: "n"}},
		Handler: block(&ast.VariableAssign{Type: types.VoidType, Name: "n", Value: ast.IntLit(0)}),
		Limit:   -1,
	}
	st, diags := check(t,
		ev,
		&ast.FunctionCall{Name: "tick", Args: []ast.Node{ast.IntLit(1)}},
		&ast.Exit{Event: "tick"},
		&ast.Exit{Event: "printf"},
		&ast.Exit{Event: "ghost"},
	)
	be.Equal(t, diags.ErrorCount(), 3)
	be.True(t, hasMessage(diags, "limit must not be negative"))
	be.True(t, hasMessage(diags, "'printf' is a function, not an event"))
	be.True(t, hasMessage(diags, "undeclared event 'ghost'"))

	sym := st.GetSymbol("tick")
	be.Equal(t, sym.Category, Event)
	be.Equal(t, sym.ParamCount(), 1)
}

func TestForOpensHeaderScope(t *testing.T) {
	loop := &ast.For{
		Init:  &ast.VariableAssign{Type: types.IntType, Name: "i", Value: ast.IntLit(0)},
		Cond:  bin("<", ref("i"), ast.IntLit(10)),
		Step:  &ast.VariableAssign{Type: types.VoidType, Name: "i", Value: bin("+", ref("i"), ast.IntLit(1))},
		Block: block(&ast.LoopControl{Kind: ast.Continue}),
	}
	st, diags := check(t, loop, &ast.VariableAssign{Type: types.VoidType, Name: "j", Value: ref("i")})
	be.True(t, hasMessage(diags, "undeclared identifier 'i'"))

	id, ok := st.ScopeOf(loop)
	be.True(t, ok)
	_, ok = st.ScopeByID(id).LookupLocal("i")
	be.True(t, ok)
	_, ok = st.ScopeOf(loop.Block)
	be.True(t, ok)
}
