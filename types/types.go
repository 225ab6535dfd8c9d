// Package types holds the source-language type values shared by the AST,
// the symbol table and both compiler passes.
package types

import "strings"

// Tag identifies the kind of a Type.
type Tag int

const (
	Int Tag = iota
	Float
	Char
	String
	Bool
	Void
	Time
	Ptr
)

var tagNames = [...]string{
	Int:    "int",
	Float:  "float",
	Char:   "char",
	String: "string",
	Bool:   "bool",
	Void:   "void",
	Time:   "time",
	Ptr:    "ptr",
}

func (t Tag) String() string {
	if t < 0 || int(t) >= len(tagNames) {
		return "invalid"
	}
	return tagNames[t]
}

// Type is a tagged type value. Only Ptr-tagged types carry a pointee.
type Type struct {
	Tag     Tag
	Pointee *Type
}

// Shared instances for the non-pointer tags.
var (
	IntType    = &Type{Tag: Int}
	FloatType  = &Type{Tag: Float}
	CharType   = &Type{Tag: Char}
	StringType = &Type{Tag: String}
	BoolType   = &Type{Tag: Bool}
	VoidType   = &Type{Tag: Void}
	TimeType   = &Type{Tag: Time}
)

// New returns the type for a non-pointer tag. Passing Ptr yields a pointer
// to void; use PointerTo for anything else.
func New(tag Tag) *Type {
	if tag == Ptr {
		return PointerTo(VoidType)
	}
	return &Type{Tag: tag}
}

// PointerTo returns a Ptr type owning elem as its pointee.
func PointerTo(elem *Type) *Type {
	return &Type{Tag: Ptr, Pointee: elem}
}

// Resolve follows the pointee chain to the first non-pointer tag.
func (t *Type) Resolve() Tag {
	if t.Tag == Ptr && t.Pointee != nil {
		return t.Pointee.Resolve()
	}
	return t.Tag
}

// Equal compares tag and, recursively, pointee. Two nil types are equal.
func (t *Type) Equal(u *Type) bool {
	if t == nil || u == nil {
		return t == u
	}
	if t.Tag != u.Tag {
		return false
	}
	if t.Tag != Ptr {
		return true
	}
	return t.Pointee.Equal(u.Pointee)
}

// Is reports whether t is a non-nil type with the given tag.
func (t *Type) Is(tag Tag) bool {
	return t != nil && t.Tag == tag
}

// Numeric reports whether t is Int or Float.
func (t *Type) Numeric() bool {
	return t.Is(Int) || t.Is(Float)
}

func (t *Type) String() string {
	if t == nil {
		return "<unresolved>"
	}
	var sb strings.Builder
	cur := t
	for cur.Tag == Ptr && cur.Pointee != nil {
		sb.WriteString("ptr->")
		cur = cur.Pointee
	}
	sb.WriteString(cur.Tag.String())
	return sb.String()
}

// Lookup maps a source type name to its Type. Trailing '*' characters wrap
// the named type in pointers ("int**" is ptr->ptr->int).
func Lookup(name string) (*Type, bool) {
	depth := 0
	for strings.HasSuffix(name, "*") {
		name = strings.TrimSuffix(name, "*")
		depth++
	}
	var t *Type
	for tag, n := range tagNames {
		if n == name && Tag(tag) != Ptr {
			t = New(Tag(tag))
			break
		}
	}
	if t == nil {
		return nil, false
	}
	for ; depth > 0; depth-- {
		t = PointerTo(t)
	}
	return t, true
}
