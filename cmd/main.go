package main

import (
	"fmt"
	"os"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/compiler"
	"github.com/pulse-lang/core-compiler/types"
)

func main() {
	opts := compiler.DefaultOptions()
	outputFile := ""

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "-o" && len(args) > 1:
			outputFile = args[1]
			args = args[2:]
		case args[0] == "-h" || args[0] == "--help":
			printUsage()
			return
		default:
			data, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
				os.Exit(1)
			}
			opts, err = compiler.ParseOptions(data, args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			args = args[1:]
		}
	}

	comp, err := compiler.NewCompiler(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	module, err := comp.Compile(demoProgram())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Functions: %d\n", len(module.Funcs))
	fmt.Fprintf(os.Stderr, "Globals: %d\n", len(module.Globals))

	if outputFile == "" {
		fmt.Print(module.String())
		return
	}
	if err := comp.CompileToIR(outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// demoProgram builds
//
//	int fib(int n) {
//	    if (n < 2) { return n; }
//	    return fib(n - 1) + fib(n - 2);
//	}
//	event tick(int round) every 500ms limit 3 {
//	    printf("round %d: %d\n", round, fib(10));
//	}
//	tick(1);
func demoProgram() []ast.Node {
	n := func() ast.Node { return &ast.VariableRef{Name: "n"} }
	fibOf := func(k int32) ast.Node {
		return &ast.FunctionCall{Name: "fib", Args: []ast.Node{
			&ast.BinaryExpr{Op: "-", Left: n(), Right: ast.IntLit(k)},
		}}
	}

	fib := &ast.FunctionDef{
		Name:   "fib",
		Params: []ast.Param{{Type: types.IntType, Name: "n"}},
		Return: types.IntType,
		Body: &ast.CodeBlock{Stmts: []ast.Node{
			&ast.If{
				Cond: &ast.BinaryExpr{Op: "<", Left: n(), Right: ast.IntLit(2)},
				Then: &ast.CodeBlock{Stmts: []ast.Node{&ast.Return{Expr: n()}}},
			},
			&ast.Return{Expr: &ast.BinaryExpr{Op: "+", Left: fibOf(1), Right: fibOf(2)}},
		}},
	}

	tick := &ast.Event{
		Name:   "tick",
		Params: []ast.Param{{Type: types.IntType, Name: "round"}},
		Period: &ast.TimeLiteral{Magnitude: 500, Unit: "ms"},
		Limit:  3,
		Handler: &ast.CodeBlock{Stmts: []ast.Node{
			&ast.FunctionCall{Name: "printf", Args: []ast.Node{
				ast.StringLit("round %d: %d\n"),
				&ast.VariableRef{Name: "round"},
				&ast.FunctionCall{Name: "fib", Args: []ast.Node{ast.IntLit(10)}},
			}},
		}},
	}

	return []ast.Node{
		fib,
		tick,
		&ast.FunctionCall{Name: "tick", Args: []ast.Node{ast.IntLit(1)}},
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: pulsec [config.yaml] [-o <output-file>]\n")
	fmt.Fprintf(os.Stderr, "\nCompiles the built-in demo program and prints its IR.\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  pulsec                      # IR on stdout\n")
	fmt.Fprintf(os.Stderr, "  pulsec pulse.yaml -o out.ll # custom options, IR in out.ll\n")
}
