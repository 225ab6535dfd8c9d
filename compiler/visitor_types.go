package compiler

import (
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/pulse-lang/core-compiler/types"
)

// irType maps a source type to its IR type. It returns nil for an
// unresolved type.
func irType(t *types.Type) lltypes.Type {
	if t == nil {
		return nil
	}
	switch t.Tag {
	case types.Int:
		return lltypes.I32
	case types.Float, types.Time:
		return lltypes.Float
	case types.Char:
		return lltypes.I8
	case types.Bool:
		return lltypes.I1
	case types.String:
		return lltypes.I8Ptr
	case types.Void:
		return lltypes.Void
	case types.Ptr:
		elem := irType(t.Pointee)
		if elem == nil || lltypes.IsVoid(elem) {
			return lltypes.I8Ptr
		}
		return lltypes.NewPointer(elem)
	}
	return nil
}

// irTypes maps every parameter type; ok is false if one is unresolved or void.
func irTypes(ts []*types.Type) ([]lltypes.Type, bool) {
	out := make([]lltypes.Type, len(ts))
	for i, t := range ts {
		out[i] = irType(t)
		if out[i] == nil || lltypes.IsVoid(out[i]) {
			return nil, false
		}
	}
	return out, true
}

// zeroValue returns the zero constant of typ.
func zeroValue(typ lltypes.Type) constant.Constant {
	switch t := typ.(type) {
	case *lltypes.IntType:
		return constant.NewInt(t, 0)
	case *lltypes.FloatType:
		return constant.NewFloat(t, 0)
	case *lltypes.PointerType:
		return constant.NewNull(t)
	}
	return constant.NewZeroInitializer(typ)
}

// slotType returns the element type of a stack slot or other pointer.
func slotType(ptr llvalue.Value) lltypes.Type {
	if pt, ok := ptr.Type().(*lltypes.PointerType); ok {
		return pt.ElemType
	}
	return nil
}

// valueClass groups IR types by the operation family they use.
type valueClass int

const (
	classInvalid valueClass = iota
	classInt
	classUnsigned
	classFloat
	classString
)

func classOf(t lltypes.Type) valueClass {
	switch {
	case t.Equal(lltypes.I32):
		return classInt
	case t.Equal(lltypes.I8), t.Equal(lltypes.I1):
		return classUnsigned
	case lltypes.IsFloat(t):
		return classFloat
	case t.Equal(lltypes.I8Ptr):
		return classString
	}
	return classInvalid
}

// tagCode is the runtime's numeric code for an argument type.
func tagCode(t *types.Type) int64 {
	if t == nil {
		return -1
	}
	return int64(t.Tag)
}
