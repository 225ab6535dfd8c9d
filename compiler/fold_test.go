package compiler

import (
	"math"
	"testing"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
)

func i32(v int64) *constant.Int { return constant.NewInt(lltypes.I32, v) }
func i8(v int64) *constant.Int  { return constant.NewInt(lltypes.I8, v) }
func f32(v float64) *constant.Float {
	return constant.NewFloat(lltypes.Float, v)
}

func intValue(t *testing.T, c constant.Constant) int64 {
	t.Helper()
	ci, ok := c.(*constant.Int)
	be.True(t, ok)
	return ci.X.Int64()
}

func TestFoldIntArithmetic(t *testing.T) {
	cases := []struct {
		op   string
		l, r int64
		want int64
	}{
		{"+", 2, 2, 4},
		{"-", 2, 5, -3},
		{"*", -4, 6, -24},
		{"/", 7, 2, 3},
		{"/", -7, 2, -3},
		{"+", math.MaxInt32, 1, math.MinInt32},
		{"*", math.MaxInt32, 2, -2},
		{"==", 3, 3, 1},
		{"!=", 3, 3, 0},
		{"<", -1, 0, 1},
		{">", -1, 0, 0},
	}
	for _, tc := range cases {
		c, ok := foldInt(tc.op, i32(tc.l), i32(tc.r), true)
		be.True(t, ok)
		be.Equal(t, intValue(t, c), tc.want)
	}
}

func TestFoldIntComparisonIsBool(t *testing.T) {
	c, ok := foldInt("<", i32(1), i32(2), true)
	be.True(t, ok)
	be.True(t, c.Type().Equal(lltypes.I1))

	c, ok = foldInt("+", i32(1), i32(2), true)
	be.True(t, ok)
	be.True(t, c.Type().Equal(lltypes.I32))
}

func TestFoldIntNotFolded(t *testing.T) {
	_, ok := foldInt("/", i32(1), i32(0), true)
	be.True(t, !ok)
	_, ok = foldInt("%", i32(5), i32(2), true)
	be.True(t, !ok)
}

func TestFoldUnsigned(t *testing.T) {
	c, ok := foldInt("+", i8(200), i8(100), false)
	be.True(t, ok)
	be.Equal(t, intValue(t, c), int64(44))

	c, _ = foldInt(">", i8(200), i8(100), false)
	be.Equal(t, intValue(t, c), int64(1))

	// the same bits read as signed
	c, _ = foldInt(">", i8(200), i8(100), true)
	be.Equal(t, intValue(t, c), int64(0))

	c, _ = foldInt("/", i8(250), i8(2), false)
	be.Equal(t, intValue(t, c), int64(125))
}

func TestFoldFloat(t *testing.T) {
	cases := []struct {
		op   string
		l, r float64
		want float64
	}{
		{"+", 1.5, 2, 3.5},
		{"-", 1, 0.25, 0.75},
		{"*", 1.5, 4, 6},
		{"/", 1, 4, 0.25},
	}
	for _, tc := range cases {
		c, ok := foldFloat(tc.op, f32(tc.l), f32(tc.r))
		be.True(t, ok)
		got, _ := c.(*constant.Float).X.Float64()
		be.Equal(t, got, tc.want)
	}

	c, ok := foldFloat("<", f32(1), f32(2))
	be.True(t, ok)
	be.Equal(t, intValue(t, c), int64(1))
}

func TestFoldFloatSinglePrecision(t *testing.T) {
	c, ok := foldFloat("+", f32(0.1), f32(0.2))
	be.True(t, ok)
	got, _ := c.(*constant.Float).X.Float64()
	be.Equal(t, got, float64(float32(0.1)+float32(0.2)))
}

func TestFoldFloatNotFinite(t *testing.T) {
	_, ok := foldFloat("/", f32(1), f32(0))
	be.True(t, !ok)
	_, ok = foldFloat("*", f32(math.MaxFloat32), f32(2))
	be.True(t, !ok)
}
