package syntax

import (
	"strings"
	"testing"

	"github.com/antlr4-go/antlr/v4"
	"github.com/go-test/deep"
	"github.com/nalgeon/be"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/diagnostics"
	"github.com/pulse-lang/core-compiler/types"
)

var ruleNames = []string{
	"program", "statement", "block", "varDecl", "assignment", "type",
	"expression", "literal", "timeLiteral", "varRef", "call", "arguments",
	"functionDef", "functionDec", "params", "param", "return", "if", "else",
	"while", "for", "loopControl", "event", "exit", "import",
}

func token(text string) antlr.Token {
	tok := antlr.NewCommonToken(&antlr.TokenSourceCharStreamPair{}, 1, antlr.TokenDefaultChannel, 0, 0)
	tok.SetText(text)
	return tok
}

// rule builds a context for name. String children become tokens.
func rule(name string, children ...any) *antlr.BaseParserRuleContext {
	ctx := antlr.NewBaseParserRuleContext(nil, -1)
	ctx.RuleIndex = -1
	for i, n := range ruleNames {
		if n == name {
			ctx.RuleIndex = i
		}
	}
	for _, child := range children {
		switch c := child.(type) {
		case string:
			ctx.AddTokenNode(token(c))
		case *antlr.BaseParserRuleContext:
			ctx.AddChild(c)
		}
	}
	return ctx
}

func typ(parts ...any) *antlr.BaseParserRuleContext { return rule("type", parts...) }
func lit(text string) *antlr.BaseParserRuleContext  { return rule("literal", text) }
func vref(name string) *antlr.BaseParserRuleContext { return rule("varRef", name) }

func expr(l any, op string, r any) *antlr.BaseParserRuleContext {
	return rule("expression", l, op, r)
}

func blk(stmts ...any) *antlr.BaseParserRuleContext {
	return rule("block", append(append([]any{"{"}, stmts...), "}")...)
}

func param(t, name string) *antlr.BaseParserRuleContext {
	return rule("param", typ(t), name)
}

func build(t *testing.T, tree antlr.ParseTree) []ast.Node {
	t.Helper()
	stmts, err := NewBuilder(ruleNames).Build(tree)
	be.Err(t, err, nil)
	return stmts
}

func expectEqual(t *testing.T, got, want any) {
	t.Helper()
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestBuildProgram(t *testing.T) {
	tree := rule("program",
		rule("statement", rule("varDecl", typ("int"), "x", "=", expr(lit("1"), "+", lit("2"))), ";"),
		rule("statement", rule("assignment", "x", "=", expr(vref("x"), "*", lit("2.5"))), ";"),
		rule("statement", rule("varDecl", typ("char", "*"), "s"), ";"),
		"<EOF>",
	)
	expectEqual(t, build(t, tree), []ast.Node{
		&ast.VariableAssign{Type: types.IntType, Name: "x", Value: &ast.BinaryExpr{
			Op: "+", Left: ast.IntLit(1), Right: ast.IntLit(2),
		}},
		&ast.VariableAssign{Type: types.VoidType, Name: "x", Value: &ast.BinaryExpr{
			Op: "*", Left: &ast.VariableRef{Name: "x"}, Right: ast.FloatLit(2.5),
		}},
		&ast.VariableDec{Type: types.PointerTo(types.CharType), Name: "s"},
	})
}

func TestBuildLiterals(t *testing.T) {
	cases := map[string]*ast.Literal{
		`"hi\n"`: ast.StringLit("hi\n"),
		`'c'`:    ast.CharLit('c'),
		"true":   ast.BoolLit(true),
		"false":  ast.BoolLit(false),
		"42":     ast.IntLit(42),
		"0x10":   ast.IntLit(16),
		"1e3":    ast.FloatLit(1000),
		"0.25":   ast.FloatLit(0.25),
	}
	for text, want := range cases {
		expectEqual(t, build(t, lit(text)), []ast.Node{want})
	}
}

func TestBuildParenthesized(t *testing.T) {
	tree := rule("expression", "(", expr(lit("1"), "-", vref("n")), ")")
	expectEqual(t, build(t, tree), []ast.Node{
		&ast.BinaryExpr{Op: "-", Left: ast.IntLit(1), Right: &ast.VariableRef{Name: "n"}},
	})
}

func TestBuildFunctions(t *testing.T) {
	tree := rule("program",
		rule("functionDec", typ("int"), "printf", "(",
			rule("params", param("string", "format"), ",", "..."), ")"),
		rule("functionDef", typ("float"), "half", "(",
			rule("params", param("float", "v")), ")",
			blk(rule("statement", rule("return", "return", expr(vref("v"), "/", lit("2.0"))), ";")),
		),
		rule("statement", rule("call", "half", "(", rule("arguments", lit("3")), ")"), ";"),
	)
	expectEqual(t, build(t, tree), []ast.Node{
		&ast.FunctionDec{
			Name:     "printf",
			Params:   []ast.Param{{Type: types.StringType, Name: "format"}},
			Return:   types.IntType,
			Variadic: true,
		},
		&ast.FunctionDef{
			Name:   "half",
			Params: []ast.Param{{Type: types.FloatType, Name: "v"}},
			Return: types.FloatType,
			Body: &ast.CodeBlock{Stmts: []ast.Node{&ast.Return{Expr: &ast.BinaryExpr{
				Op: "/", Left: &ast.VariableRef{Name: "v"}, Right: ast.FloatLit(2),
			}}}},
		},
		&ast.FunctionCall{Name: "half", Args: []ast.Node{ast.IntLit(3)}},
	})
}

func TestBuildControlFlow(t *testing.T) {
	cond := func() *antlr.BaseParserRuleContext { return expr(vref("i"), "<", lit("3")) }
	tree := rule("program",
		rule("if", "if", "(", cond(), ")", blk(),
			rule("else", "else", "if", "(", cond(), ")", blk()),
			rule("else", "else", blk(rule("statement", rule("return", "return"), ";"))),
		),
		rule("while", "while", "(", cond(), ")", blk(rule("statement", rule("loopControl", "break"), ";"))),
		rule("for", "for", "(",
			rule("varDecl", typ("int"), "i", "=", lit("0")), ";",
			cond(), ";",
			rule("assignment", "i", "=", expr(vref("i"), "+", lit("1"))), ")",
			blk(rule("loopControl", "continue")),
		),
		rule("for", "for", "(", ";", ";", ")", blk()),
	)

	want := func() *ast.BinaryExpr {
		return &ast.BinaryExpr{Op: "<", Left: &ast.VariableRef{Name: "i"}, Right: ast.IntLit(3)}
	}
	expectEqual(t, build(t, tree), []ast.Node{
		&ast.If{Cond: want(), Then: &ast.CodeBlock{}, Elses: []*ast.Else{
			{Cond: want(), Block: &ast.CodeBlock{}},
			{Block: &ast.CodeBlock{Stmts: []ast.Node{&ast.Return{}}}},
		}},
		&ast.While{Cond: want(), Block: &ast.CodeBlock{Stmts: []ast.Node{&ast.LoopControl{Kind: ast.Break}}}},
		&ast.For{
			Init:  &ast.VariableAssign{Type: types.IntType, Name: "i", Value: ast.IntLit(0)},
			Cond:  want(),
			Step:  &ast.VariableAssign{Type: types.VoidType, Name: "i", Value: &ast.BinaryExpr{Op: "+", Left: &ast.VariableRef{Name: "i"}, Right: ast.IntLit(1)}},
			Block: &ast.CodeBlock{Stmts: []ast.Node{&ast.LoopControl{Kind: ast.Continue}}},
		},
		&ast.For{Block: &ast.CodeBlock{}},
	})
}

func TestBuildEvent(t *testing.T) {
	tree := rule("program",
		rule("event", "event", "tick", "(", rule("params", param("int", "n")), ")",
			"every", rule("timeLiteral", "250ms"), "limit", "4",
			blk(rule("statement", rule("exit", "exit", "tick"), ";")),
		),
		rule("event", "event", "beat", "(", ")", "every", rule("timeLiteral", "1.5", "s"), blk()),
	)
	expectEqual(t, build(t, tree), []ast.Node{
		&ast.Event{
			Name:    "tick",
			Params:  []ast.Param{{Type: types.IntType, Name: "n"}},
			Period:  &ast.TimeLiteral{Magnitude: 250, Unit: "ms"},
			Limit:   4,
			Handler: &ast.CodeBlock{Stmts: []ast.Node{&ast.Exit{Event: "tick"}}},
		},
		&ast.Event{
			Name:    "beat",
			Period:  &ast.TimeLiteral{Magnitude: 1.5, Unit: "s"},
			Handler: &ast.CodeBlock{},
		},
	})
}

func TestBuildInvalid(t *testing.T) {
	cases := map[string]antlr.ParseTree{
		"not a valid statement or expression": rule("import", "import", "x"),
		"not a valid literal":                 lit("99999999999"),
		"not a valid type":                    rule("varDecl", typ("long"), "x"),
		"not a valid functionDef":             rule("functionDef", typ("int"), "f", "(", rule("params", param("int", "a"), ",", "..."), ")", blk()),
		"not a valid for":                     rule("for", "for", "(", ";", ")", blk()),
		"not a valid timeLiteral":             rule("timeLiteral", "ms"),
		"unknown rule index":                  rule("nonsense"),
		"expected a rule context":             antlr.NewTerminalNodeImpl(token("x")),
	}
	for want, tree := range cases {
		_, err := NewBuilder(ruleNames).Build(tree)
		be.True(t, err != nil)
		be.True(t, diagnostics.IsStructural(err))
		if !strings.Contains(err.Error(), want) {
			t.Errorf("got %q, want it to contain %q", err, want)
		}
	}
}

func TestBuildSyntaxErrorNode(t *testing.T) {
	ctx := rule("varRef")
	ctx.AddErrorNode(token("@"))
	_, err := NewBuilder(ruleNames).Build(ctx)
	be.True(t, diagnostics.IsStructural(err))
	be.True(t, strings.Contains(err.Error(), `syntax error at "@"`))
}
