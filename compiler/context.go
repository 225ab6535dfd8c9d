// Package compiler checks and lowers a translation unit's AST into a typed,
// block-structured LLVM IR module.
package compiler

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/diagnostics"
)

// LoopContext holds the branch targets of the innermost loop. Cond is
// where continue jumps; End is where break jumps.
type LoopContext struct {
	Cond *ir.Block
	End  *ir.Block
}

// funcFrame is the per-function lowering state.
type funcFrame struct {
	fn      *ir.Func
	entry   *ir.Block
	block   *ir.Block
	allocas int
	loops   []LoopContext
	names   map[string]int
}

// Context holds the state during lowering
type Context struct {
	Module      *ir.Module
	Symbols     *SymbolTable
	Diagnostics *diagnostics.DiagnosticEngine
	Options     Options

	frame  funcFrame
	frames []funcFrame

	// scope ids replayed from the checker, innermost last
	scopes []ScopeID

	labels  int
	slots   map[*Symbol]*ir.Func
	strings map[string]*ir.Global
	runtime map[string]*ir.Func
}

// NewContext creates a lowering context over a fresh module.
func NewContext(opts Options, symbols *SymbolTable, diags *diagnostics.DiagnosticEngine) *Context {
	mod := ir.NewModule()
	mod.SourceFilename = opts.ModuleName
	return &Context{
		Module:      mod,
		Symbols:     symbols,
		Diagnostics: diags,
		Options:     opts,
		slots:       make(map[*Symbol]*ir.Func),
		strings:     make(map[string]*ir.Global),
		runtime:     make(map[string]*ir.Func),
	}
}

// ============================================================================
// SCOPES
// ============================================================================

// PushScope makes id the innermost scope.
func (c *Context) PushScope(id ScopeID) {
	c.Symbols.ScopeByID(id)
	c.scopes = append(c.scopes, id)
}

// PopScope leaves the innermost scope. Popping an empty stack is fatal.
func (c *Context) PopScope() {
	if len(c.scopes) == 0 {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "scope stack underflow")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// CurrentScope returns the innermost scope id.
func (c *Context) CurrentScope() ScopeID {
	if len(c.scopes) == 0 {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "no active scope")
	}
	return c.scopes[len(c.scopes)-1]
}

// ScopeDepth returns the number of scopes on the stack.
func (c *Context) ScopeDepth() int {
	return len(c.scopes)
}

// Resolve looks name up from the innermost scope outwards.
func (c *Context) Resolve(name string) (*Symbol, bool) {
	return c.Symbols.LookupIn(c.CurrentScope(), name)
}

// recordedScope returns the scope the checker opened for node.
func (c *Context) recordedScope(node ast.Node) ScopeID {
	id, ok := c.Symbols.ScopeOf(node)
	if !ok {
		diagnostics.Fatal(diagnostics.PhaseStructural, node.Position(), "no scope recorded for %T", node)
	}
	return id
}

// ============================================================================
// LOOPS
// ============================================================================

// PushLoop enters a loop whose continue target is cond and break target end.
func (c *Context) PushLoop(cond, end *ir.Block) {
	c.frame.loops = append(c.frame.loops, LoopContext{Cond: cond, End: end})
}

// PopLoop leaves the innermost loop. Popping an empty stack is fatal.
func (c *Context) PopLoop() {
	n := len(c.frame.loops)
	if n == 0 {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "loop context stack underflow")
	}
	c.frame.loops = c.frame.loops[:n-1]
}

// CurrentLoop returns the innermost loop. Outside any loop it is fatal.
func (c *Context) CurrentLoop(pos ast.Pos) LoopContext {
	n := len(c.frame.loops)
	if n == 0 {
		diagnostics.Fatal(diagnostics.PhaseStructural, pos, "loop control outside of a loop")
	}
	return c.frame.loops[n-1]
}

// ============================================================================
// FUNCTIONS AND BLOCKS
// ============================================================================

// EnterFunction sets up context for lowering fn and positions the insert
// point at a new entry block. The enclosing function's state is saved.
func (c *Context) EnterFunction(fn *ir.Func) {
	c.frames = append(c.frames, c.frame)
	c.frame = funcFrame{fn: fn, names: make(map[string]int)}
	entry := c.NewBlock("entry")
	c.frame.entry = entry
	c.SetInsertBlock(entry)
}

// ExitFunction restores the state saved by the matching EnterFunction.
func (c *Context) ExitFunction() {
	n := len(c.frames)
	if n == 0 {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "function stack underflow")
	}
	c.frame = c.frames[n-1]
	c.frames = c.frames[:n-1]
}

// CurrentFunction returns the function being lowered, or nil at module level.
func (c *Context) CurrentFunction() *ir.Func {
	return c.frame.fn
}

// CurrentBlock returns the insert block.
func (c *Context) CurrentBlock() *ir.Block {
	return c.frame.block
}

// Terminated reports whether the insert block already ends in a terminator.
func (c *Context) Terminated() bool {
	return c.frame.block != nil && c.frame.block.Term != nil
}

// NextLabel returns a number unique to one control construct.
func (c *Context) NextLabel() int {
	c.labels++
	return c.labels
}

// NewBlock creates a detached block. It joins the current function when it
// first becomes the insert block, so blocks appear in lowering order.
func (c *Context) NewBlock(name string) *ir.Block {
	return ir.NewBlock(name)
}

// SetInsertBlock sets the current basic block for instruction insertion
func (c *Context) SetInsertBlock(block *ir.Block) {
	if block.Parent == nil {
		if c.frame.fn == nil {
			diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "block %q outside of a function", block.Name())
		}
		block.Parent = c.frame.fn
		c.frame.fn.Blocks = append(c.frame.fn.Blocks, block)
	}
	c.frame.block = block
}

// Hoist allocates a stack slot at the start of the function's entry block,
// after any previously hoisted slots.
func (c *Context) Hoist(typ lltypes.Type, name string) *ir.InstAlloca {
	entry := c.frame.entry
	if entry == nil {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "stack slot %q outside of a function", name)
	}
	inst := ir.NewAlloca(typ)
	inst.SetName(c.localName(name))

	idx := c.frame.allocas
	insts := make([]ir.Instruction, 0, len(entry.Insts)+1)
	insts = append(insts, entry.Insts[:idx]...)
	insts = append(insts, inst)
	insts = append(insts, entry.Insts[idx:]...)
	entry.Insts = insts
	c.frame.allocas++
	return inst
}

// localName makes name unique among the function's slots.
func (c *Context) localName(name string) string {
	n := c.frame.names[name]
	c.frame.names[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s.%d", name, n)
}

// ============================================================================
// MODULE-LEVEL VALUES
// ============================================================================

// FindFunction returns the module function named name.
func (c *Context) FindFunction(name string) *ir.Func {
	for _, fn := range c.Module.Funcs {
		if fn.Name() == name {
			return fn
		}
	}
	return nil
}

// StringConstant returns an i8* to a private NUL-terminated global holding s.
// Identical strings share one global.
func (c *Context) StringConstant(s string) constant.Constant {
	g, ok := c.strings[s]
	if !ok {
		init := constant.NewCharArrayFromString(s + "\x00")
		g = c.Module.NewGlobalDef(fmt.Sprintf(".str.%d", len(c.strings)), init)
		g.Immutable = true
		g.Linkage = enum.LinkagePrivate
		c.strings[s] = g
	}
	zero := constant.NewInt(lltypes.I32, 0)
	return constant.NewGetElementPtr(g.ContentType, g, zero, zero)
}

// TagArray returns an i32* to a private global holding tags, or a null
// pointer when tags is empty.
func (c *Context) TagArray(name string, tags []int64) constant.Constant {
	ptrTy := lltypes.NewPointer(lltypes.I32)
	if len(tags) == 0 {
		return constant.NewNull(ptrTy)
	}
	elems := make([]constant.Constant, len(tags))
	for i, t := range tags {
		elems[i] = constant.NewInt(lltypes.I32, t)
	}
	arr := constant.NewArray(lltypes.NewArray(uint64(len(tags)), lltypes.I32), elems...)
	g := c.Module.NewGlobalDef(name+".argtypes", arr)
	g.Immutable = true
	g.Linkage = enum.LinkagePrivate
	zero := constant.NewInt(lltypes.I32, 0)
	return constant.NewGetElementPtr(g.ContentType, g, zero, zero)
}
