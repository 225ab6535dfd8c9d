package compiler

import (
	"math"
	"math/big"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
)

// foldInt evaluates op over two integer constants of the same type with
// the wrap-around semantics of the emitted instruction. ok is false when
// the operation cannot be folded (division by zero, unknown operator).
func foldInt(op string, l, r *constant.Int, signed bool) (c constant.Constant, ok bool) {
	bits := l.Typ.BitSize
	x := normalize(l.X, bits, signed)
	y := normalize(r.X, bits, signed)

	res := new(big.Int)
	switch op {
	case "+":
		res.Add(x, y)
	case "-":
		res.Sub(x, y)
	case "*":
		res.Mul(x, y)
	case "/":
		if y.Sign() == 0 {
			return nil, false
		}
		// Quo truncates toward zero like sdiv/udiv
		res.Quo(x, y)
	case "==":
		return constant.NewBool(x.Cmp(y) == 0), true
	case "!=":
		return constant.NewBool(x.Cmp(y) != 0), true
	case "<":
		return constant.NewBool(x.Cmp(y) < 0), true
	case ">":
		return constant.NewBool(x.Cmp(y) > 0), true
	default:
		return nil, false
	}
	return constant.NewInt(l.Typ, normalize(res, bits, signed).Int64()), true
}

// normalize reduces v to the range of a bits-wide integer.
func normalize(v *big.Int, bits uint64, signed bool) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	out := new(big.Int).Mod(v, mod)
	if signed && out.Bit(int(bits)-1) == 1 {
		out.Sub(out, mod)
	}
	return out
}

// foldFloat evaluates op over two single-precision constants. Results that
// are not finite are left to the runtime.
func foldFloat(op string, l, r *constant.Float) (c constant.Constant, ok bool) {
	x, _ := l.X.Float32()
	y, _ := r.X.Float32()

	var res float32
	switch op {
	case "+":
		res = x + y
	case "-":
		res = x - y
	case "*":
		res = x * y
	case "/":
		res = x / y
	case "==":
		return constant.NewBool(x == y), true
	case "!=":
		return constant.NewBool(x != y), true
	case "<":
		return constant.NewBool(x < y), true
	case ">":
		return constant.NewBool(x > y), true
	default:
		return nil, false
	}
	if math.IsInf(float64(res), 0) || math.IsNaN(float64(res)) {
		return nil, false
	}
	return constant.NewFloat(lltypes.Float, float64(res)), true
}
