package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantFive() *Function {
	fn := NewFunction("five", nil, []Type{Int32})
	b := NewBuilder(fn)
	b.Ret(b.Add(b.Int32(2), b.Int32(3)))
	return fn
}

func TestOptimize_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level int
		want  string
	}{
		{
			name:  "none",
			level: OptNone,
			want: `define i32 @five() {
entry:
  %0 = const i32 2
  %1 = const i32 3
  %2 = add i32 %0, i32 %1
  ret i32 %2
}
`,
		},
		{
			name:  "fold",
			level: OptFold,
			want: `define i32 @five() {
entry:
  %0 = const i32 2
  %1 = const i32 3
  %2 = const i32 5
  ret i32 %2
}
`,
		},
		{
			name:  "full",
			level: OptFull,
			want: `define i32 @five() {
entry:
  %0 = const i32 5
  ret i32 %0
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exe := finalize(t, constantFive(), tt.level)
			if diff := cmp.Diff(tt.want, exe.Code()); diff != "" {
				t.Errorf("code mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, []any{int32(5)}, exe.Entry()(nil))
		})
	}
}

func TestOptimize_ConstantBranch(t *testing.T) {
	build := func() *Function {
		fn := NewFunction("pick", nil, []Type{Int32})
		b := NewBuilder(fn)
		then, els, join := b.NewBlock("then"), b.NewBlock("else"), b.NewBlock("join")
		b.CondBr(b.Bool(true), then, els)
		b.SetInsertPoint(then)
		one := b.Int32(1)
		b.Br(join)
		b.SetInsertPoint(els)
		two := b.Int32(2)
		b.Br(join)
		b.SetInsertPoint(join)
		phi := b.Phi(Int32)
		phi.AddIncoming(one, then)
		phi.AddIncoming(two, els)
		b.Ret(phi)
		return fn
	}

	for _, level := range []int{OptNone, OptFold, OptFull} {
		exe := finalize(t, build(), level)
		assert.Equal(t, []any{int32(1)}, exe.Entry()(nil), "level %d", level)
	}

	full := finalize(t, build(), OptFull)
	assert.NotContains(t, full.Code(), "else:")
	assert.NotContains(t, full.Code(), "condbr")
}

func TestOptimize_SelectOnConstant(t *testing.T) {
	fn := NewFunction("sel", []Type{Int32, Int32}, []Type{Int32})
	b := NewBuilder(fn)
	b.Ret(b.Select(b.Bool(false), fn.Param(0), fn.Param(1)))

	exe := finalize(t, fn, OptFull)
	assert.NotContains(t, exe.Code(), "select")
	assert.Equal(t, []any{int32(4)}, exe.Entry()([]any{int32(3), int32(4)}))
}

func TestOptimize_KeepsDivisionByZero(t *testing.T) {
	fn := NewFunction("div", nil, []Type{Int32})
	b := NewBuilder(fn)
	b.Ret(b.Div(b.Int32(1), b.Int32(0)))

	exe := finalize(t, fn, OptFull)
	assert.Contains(t, exe.Code(), "div i32")
	require.NotNil(t, trapOf(func() { exe.Entry()(nil) }))
}

func TestOptimize_KeepsStores(t *testing.T) {
	cell := NewCell(Int32, int32(0))
	fn := NewFunction("st", nil, nil)
	b := NewBuilder(fn)
	b.Store(cell, b.Int32(11))
	b.Ret()

	exe := finalize(t, fn, OptFull)
	exe.Entry()(nil)
	assert.Equal(t, int32(11), cell.Get())
}
