package compiler

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/types"
)

func (v *IRVisitor) VisitBinaryExpr(n *ast.BinaryExpr) any {
	if l, r, ok := stringLiterals(n); ok {
		return v.foldStrings(n, l, r)
	}

	lhs := v.lower(n.Left)
	rhs := v.lower(n.Right)
	if lhs == nil || rhs == nil {
		v.errorf(n, n.Text(), "null operand in %s", n.Text())
		return nil
	}

	lhs, rhs = v.promote(lhs, rhs)
	if !lhs.Type().Equal(rhs.Type()) {
		v.errorf(n, n.Text(), "incompatible operand types %s and %s", lhs.Type(), rhs.Type())
		return nil
	}

	switch classOf(lhs.Type()) {
	case classFloat:
		return v.floatOp(n, lhs, rhs)
	case classInt:
		return v.intOp(n, lhs, rhs, true)
	case classUnsigned:
		return v.intOp(n, lhs, rhs, false)
	}
	v.unsupported(n, lhs.Type())
	return nil
}

func (v *IRVisitor) unsupported(n *ast.BinaryExpr, typ lltypes.Type) {
	v.errorf(n, n.Op, "unsupported operation %s on %s", n.Op, typ)
}

// stringLiterals returns the texts of two string literal operands.
func stringLiterals(n *ast.BinaryExpr) (l, r string, ok bool) {
	ll, lok := n.Left.(*ast.Literal)
	rl, rok := n.Right.(*ast.Literal)
	if !lok || !rok || !ll.Type.Is(types.String) || !rl.Type.Is(types.String) {
		return "", "", false
	}
	return ll.Text(), rl.Text(), true
}

// foldStrings resolves == and != on string literals at compile time.
func (v *IRVisitor) foldStrings(n *ast.BinaryExpr, l, r string) llvalue.Value {
	switch n.Op {
	case "==":
		return constant.NewBool(l == r)
	case "!=":
		return constant.NewBool(l != r)
	}
	v.unsupported(n, lltypes.I8Ptr)
	return nil
}

// promote widens an int operand to float when the other one is float.
func (v *IRVisitor) promote(lhs, rhs llvalue.Value) (llvalue.Value, llvalue.Value) {
	lt, rt := lhs.Type(), rhs.Type()
	switch {
	case lt.Equal(lltypes.I32) && lltypes.IsFloat(rt):
		lhs = v.toFloat(lhs)
	case lltypes.IsFloat(lt) && rt.Equal(lltypes.I32):
		rhs = v.toFloat(rhs)
	}
	return lhs, rhs
}

// toFloat converts a signed 32-bit value to float.
func (v *IRVisitor) toFloat(val llvalue.Value) llvalue.Value {
	if c, ok := val.(*constant.Int); ok && v.ctx.Options.FoldConstants {
		return constant.NewFloat(lltypes.Float, float64(int32(c.X.Int64())))
	}
	return v.ctx.CurrentBlock().NewSIToFP(val, lltypes.Float)
}

func (v *IRVisitor) floatOp(n *ast.BinaryExpr, lhs, rhs llvalue.Value) llvalue.Value {
	if v.ctx.Options.FoldConstants {
		l, lok := lhs.(*constant.Float)
		r, rok := rhs.(*constant.Float)
		if lok && rok {
			if c, ok := foldFloat(n.Op, l, r); ok {
				return c
			}
		}
	}

	b := v.ctx.CurrentBlock()
	switch n.Op {
	case "+":
		return b.NewFAdd(lhs, rhs)
	case "-":
		return b.NewFSub(lhs, rhs)
	case "*":
		return b.NewFMul(lhs, rhs)
	case "/":
		return b.NewFDiv(lhs, rhs)
	case "==":
		return b.NewFCmp(enum.FPredOEQ, lhs, rhs)
	case "!=":
		return b.NewFCmp(enum.FPredUNE, lhs, rhs)
	case "<":
		return b.NewFCmp(enum.FPredOLT, lhs, rhs)
	case ">":
		return b.NewFCmp(enum.FPredOGT, lhs, rhs)
	}
	v.unsupported(n, lhs.Type())
	return nil
}

// intOp emits integer arithmetic or comparison. Int is signed; Char and
// Bool compare and divide unsigned.
func (v *IRVisitor) intOp(n *ast.BinaryExpr, lhs, rhs llvalue.Value, signed bool) llvalue.Value {
	if v.ctx.Options.FoldConstants {
		l, lok := lhs.(*constant.Int)
		r, rok := rhs.(*constant.Int)
		if lok && rok {
			if c, ok := foldInt(n.Op, l, r, signed); ok {
				return c
			}
		}
	}

	b := v.ctx.CurrentBlock()
	switch n.Op {
	case "+":
		return b.NewAdd(lhs, rhs)
	case "-":
		return b.NewSub(lhs, rhs)
	case "*":
		return b.NewMul(lhs, rhs)
	case "/":
		if signed {
			return b.NewSDiv(lhs, rhs)
		}
		return b.NewUDiv(lhs, rhs)
	case "==":
		return b.NewICmp(enum.IPredEQ, lhs, rhs)
	case "!=":
		return b.NewICmp(enum.IPredNE, lhs, rhs)
	case "<":
		if signed {
			return b.NewICmp(enum.IPredSLT, lhs, rhs)
		}
		return b.NewICmp(enum.IPredULT, lhs, rhs)
	case ">":
		if signed {
			return b.NewICmp(enum.IPredSGT, lhs, rhs)
		}
		return b.NewICmp(enum.IPredUGT, lhs, rhs)
	}
	v.unsupported(n, lhs.Type())
	return nil
}

// condition lowers a branch condition to an i1. Int conditions test
// against zero. On failure it reports and returns false so the branch can
// still be wired.
func (v *IRVisitor) condition(n ast.Node) llvalue.Value {
	val := v.lower(n)
	if val == nil {
		v.errorf(n, n.Text(), "invalid condition %s", n.Text())
		return constant.False
	}
	switch typ := val.Type(); {
	case typ.Equal(lltypes.I1):
		return val
	case typ.Equal(lltypes.I32):
		zero := constant.NewInt(lltypes.I32, 0)
		if c, ok := val.(*constant.Int); ok && v.ctx.Options.FoldConstants {
			return constant.NewBool(c.X.Sign() != 0)
		}
		return v.ctx.CurrentBlock().NewICmp(enum.IPredNE, val, zero)
	default:
		v.errorf(n, n.Text(), "condition %s has type %s, want bool or int", n.Text(), typ)
		return constant.False
	}
}
