package compiler

import (
	"fmt"

	llvalue "github.com/llir/llvm/ir/value"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/diagnostics"
	"github.com/pulse-lang/core-compiler/types"
)

// Category classifies what a Symbol names.
type Category int

const (
	Variable Category = iota
	Function
	Event
	Parameter
	Constant
)

func (c Category) String() string {
	switch c {
	case Variable:
		return "variable"
	case Function:
		return "function"
	case Event:
		return "event"
	case Parameter:
		return "parameter"
	case Constant:
		return "constant"
	}
	return "unknown"
}

// Symbol represents a named value in the symbol table
type Symbol struct {
	Name     string
	Category Category
	Type     *types.Type

	// Node is the declaring AST node. It is only used for lookups.
	Node ast.Node

	// Storage is the backend handle: a stack slot for variables and
	// parameters, the function for functions. Set by the lowering pass.
	Storage llvalue.Value

	Variadic   bool
	paramCount int
}

// NewSymbol creates a symbol bound to its declaring node.
func NewSymbol(name string, cat Category, typ *types.Type, node ast.Node) *Symbol {
	return &Symbol{Name: name, Category: cat, Type: typ, Node: node}
}

// ParamCount returns the declared parameter count of a function or event.
func (s *Symbol) ParamCount() int {
	return s.paramCount
}

// SetParamCount records the parameter count. Only functions and events
// have one.
func (s *Symbol) SetParamCount(n int) error {
	if s.Category != Function && s.Category != Event {
		return fmt.Errorf("symbol '%s' is a %s and has no parameter count", s.Name, s.Category)
	}
	s.paramCount = n
	return nil
}

// ScopeID indexes a scope inside its SymbolTable.
type ScopeID int

const noScope ScopeID = -1

// Scope represents a lexical scope with symbol table
type Scope struct {
	ID      ScopeID
	Level   int
	parent  ScopeID
	symbols map[string]*Symbol
}

// Parent returns the enclosing scope id; ok is false for the root.
func (s *Scope) Parent() (ScopeID, bool) {
	return s.parent, s.parent != noScope
}

// LookupLocal searches only this scope (not parents)
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Len returns the number of symbols declared directly in this scope.
func (s *Scope) Len() int {
	return len(s.symbols)
}

// SymbolTable owns every scope of one translation unit. Scopes are kept in
// an id-indexed arena and refer to their parent by id.
type SymbolTable struct {
	scopes  []*Scope
	current ScopeID

	// scope opened for each scope-introducing node, recorded by the
	// checker and replayed by the lowering pass
	bindings map[ast.Node]ScopeID
}

// NewSymbolTable creates a table holding only the root scope, seeded with
// the built-in functions.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{
		bindings: make(map[ast.Node]ScopeID),
	}
	root := &Scope{ID: 0, Level: 0, parent: noScope, symbols: make(map[string]*Symbol)}
	st.scopes = append(st.scopes, root)
	st.current = root.ID

	for _, dec := range Builtins() {
		sym := NewSymbol(dec.Name, Function, dec.Return, dec)
		sym.Variadic = dec.Variadic
		sym.paramCount = len(dec.Params)
		root.symbols[dec.Name] = sym
	}
	return st
}

// Root returns the root scope.
func (st *SymbolTable) Root() *Scope {
	return st.scopes[0]
}

// Current returns the scope under the table's cursor.
func (st *SymbolTable) Current() *Scope {
	return st.scopes[st.current]
}

// Len returns the number of scopes created so far.
func (st *SymbolTable) Len() int {
	return len(st.scopes)
}

// Contains reports whether name is visible from the current scope.
func (st *SymbolTable) Contains(name string) bool {
	_, ok := st.LookupIn(st.current, name)
	return ok
}

// GetSymbol returns the nearest symbol named name visible from the current
// scope, or nil.
func (st *SymbolTable) GetSymbol(name string) *Symbol {
	sym, _ := st.LookupIn(st.current, name)
	return sym
}

// InsertSymbol adds sym to the current scope unless that scope already has
// a symbol with the same name. Shadowing an outer symbol is allowed.
func (st *SymbolTable) InsertSymbol(sym *Symbol) bool {
	return st.InsertInto(st.current, sym)
}

// EnterScope opens a child of the current scope and makes it current.
func (st *SymbolTable) EnterScope() *Scope {
	parent := st.Current()
	scope := &Scope{
		ID:      ScopeID(len(st.scopes)),
		Level:   parent.Level + 1,
		parent:  parent.ID,
		symbols: make(map[string]*Symbol),
	}
	st.scopes = append(st.scopes, scope)
	st.current = scope.ID
	return scope
}

// ExitScope makes the parent of the current scope current. At the root it
// does nothing.
func (st *SymbolTable) ExitScope() {
	if parent, ok := st.Current().Parent(); ok {
		st.current = parent
	}
}

// ScopeByID returns the scope with the given id. The id space is dense and
// internal to the passes, so a miss aborts the pass.
func (st *SymbolTable) ScopeByID(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(st.scopes) {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "no scope with id %d (table has %d)", id, len(st.scopes))
	}
	return st.scopes[id]
}

// LookupIn resolves name starting at scope id and walking towards the root.
// Sibling and descendant scopes are never searched.
func (st *SymbolTable) LookupIn(id ScopeID, name string) (*Symbol, bool) {
	for cur := id; cur != noScope; {
		scope := st.ScopeByID(cur)
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
		cur = scope.parent
	}
	return nil, false
}

// InsertInto adds sym to scope id unless the name is already declared there.
func (st *SymbolTable) InsertInto(id ScopeID, sym *Symbol) bool {
	scope := st.ScopeByID(id)
	if _, exists := scope.symbols[sym.Name]; exists {
		return false
	}
	scope.symbols[sym.Name] = sym
	return true
}

// Bind records that node opened scope id.
func (st *SymbolTable) Bind(node ast.Node, id ScopeID) {
	st.bindings[node] = id
}

// ScopeOf returns the scope recorded for node by Bind.
func (st *SymbolTable) ScopeOf(node ast.Node) (ScopeID, bool) {
	id, ok := st.bindings[node]
	return id, ok
}
