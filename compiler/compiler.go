package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/antlr4-go/antlr/v4"
	"github.com/llir/llvm/ir"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/diagnostics"
	"github.com/pulse-lang/core-compiler/syntax"
)

// Compiler runs the semantic and lowering passes over one translation unit.
// A Compiler is single use.
type Compiler struct {
	opts    Options
	logger  *Logger
	symbols *SymbolTable
	diags   *diagnostics.DiagnosticEngine
	context *Context
	module  *ir.Module
	used    bool
}

// NewCompiler creates a new compiler instance logging to stderr.
func NewCompiler(opts Options) (*Compiler, error) {
	return NewCompilerTo(opts, os.Stderr)
}

// NewCompilerTo is NewCompiler with log output sent to out.
func NewCompilerTo(opts Options, out io.Writer) (*Compiler, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	level, _ := ParseLogLevel(opts.Log.Level)
	logger := NewLoggerTo(out, fmt.Sprintf("[Compiler:%s]", opts.ModuleName), level, opts.Log.Color)
	return newCompiler(opts, logger), nil
}

func newCompiler(opts Options, logger *Logger) *Compiler {
	symbols := NewSymbolTable()
	diags := diagnostics.NewDiagnosticEngine()
	return &Compiler{
		opts:    opts,
		logger:  logger,
		symbols: symbols,
		diags:   diags,
		context: NewContext(opts, symbols, diags),
	}
}

// Compile checks stmts and lowers them into an IR module. Both passes run
// to completion so that every diagnostic is collected; the module is only
// returned when neither reported an error.
func (c *Compiler) Compile(stmts []ast.Node) (*ir.Module, error) {
	if c.used {
		return nil, fmt.Errorf("compiler for module '%s' was already used", c.opts.ModuleName)
	}
	c.used = true
	c.logger.Info("Compiling module '%s' (%d top-level statement(s))", c.opts.ModuleName, len(stmts))

	c.logger.Debug("Running semantic pass")
	if err := NewChecker(c.symbols, c.diags, c.logger).Check(stmts); err != nil {
		c.logger.Error("%v", err)
		return nil, fmt.Errorf("semantic pass: %w", err)
	}

	c.logger.Debug("Lowering to IR")
	if err := NewIRVisitor(c.context, c.logger).Lower(stmts); err != nil {
		c.logger.Error("%v", err)
		return nil, fmt.Errorf("lowering: %w", err)
	}

	c.report()
	if c.diags.HasErrors() {
		c.logger.PrintSummary()
		return nil, fmt.Errorf("compilation failed with %d error(s): %w", c.diags.ErrorCount(), c.diags.Err())
	}
	if c.diags.WarningCount() > 0 {
		c.logger.PrintSummary()
	}

	c.logger.Info("Successfully compiled module '%s'", c.opts.ModuleName)
	c.module = c.context.Module
	return c.module, nil
}

// CompileTree builds the AST from an ANTLR parse tree and compiles it.
// ruleNames is the generating parser's rule name table.
func (c *Compiler) CompileTree(tree antlr.ParseTree, ruleNames []string) (*ir.Module, error) {
	stmts, err := syntax.NewBuilder(ruleNames).Build(tree)
	if err != nil {
		c.logger.Error("%v", err)
		return nil, fmt.Errorf("building AST: %w", err)
	}
	return c.Compile(stmts)
}

// report forwards accumulated diagnostics to the logger.
func (c *Compiler) report() {
	for _, d := range c.diags.All() {
		switch d.Severity {
		case diagnostics.SeverityError:
			c.logger.Error("%s", d)
		case diagnostics.SeverityWarning:
			c.logger.Warning("%s", d)
		default:
			c.logger.Info("%s", d)
		}
	}
}

// GetModule returns the compiled module
func (c *Compiler) GetModule() *ir.Module {
	return c.context.Module
}

// GetContext returns the compilation context
func (c *Compiler) GetContext() *Context {
	return c.context
}

// Symbols returns the translation unit's symbol table.
func (c *Compiler) Symbols() *SymbolTable {
	return c.symbols
}

// Diagnostics returns the accumulated diagnostics.
func (c *Compiler) Diagnostics() *diagnostics.DiagnosticEngine {
	return c.diags
}
