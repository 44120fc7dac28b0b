package bytecode

import (
	"testing"

	"muparser/token"
)

func valTok(fixed, mul float64, ptr *float64) token.Token[float64] {
	return token.Token[float64]{Kind: token.ValueEx, Fixed: fixed, Multiplier: mul, Ptr: ptr}
}

func addBinOp() token.Token[float64] {
	return token.Token[float64]{
		Kind: token.BinaryOp, Lexeme: "+", Argc: 2,
		Fn: func(a []float64) (float64, error) { return a[0] + a[1], nil },
	}
}

func subBinOp() token.Token[float64] {
	return token.Token[float64]{
		Kind: token.BinaryOp, Lexeme: "-", Argc: 2,
		Fn: func(a []float64) (float64, error) { return a[0] - a[1], nil },
	}
}

func mulBinOp() token.Token[float64] {
	return token.Token[float64]{
		Kind: token.BinaryOp, Lexeme: "*", Argc: 2,
		Fn: func(a []float64) (float64, error) { return a[0] * a[1], nil },
	}
}

func powBinOp() token.Token[float64] {
	return token.Token[float64]{
		Kind: token.BinaryOp, Lexeme: "^", Argc: 2,
		Fn: func(a []float64) (float64, error) { return a[0], nil }, // unused once substituted
	}
}

func TestConstantFolding(t *testing.T) {
	b := New[float64]()
	b.AddVal(valTok(3, 0, nil))
	b.AddVal(valTok(4, 0, nil))
	if err := b.AddFun(addBinOp()); err != nil {
		t.Fatalf("AddFun() error = %v", err)
	}
	if len(b.rpn) != 1 {
		t.Fatalf("len(rpn) = %d, want 1 (folded)", len(b.rpn))
	}
	if b.rpn[0].Kind != token.ValueEx || b.rpn[0].Fixed != 7 {
		t.Errorf("rpn[0] = %+v, want ValueEx{Fixed: 7}", b.rpn[0])
	}
}

func TestAdditiveAbsorption(t *testing.T) {
	x := 1.0
	b := New[float64]()
	b.AddVal(valTok(0, 1, &x)) // variable x
	b.AddVal(valTok(5, 0, nil))
	if err := b.AddFun(addBinOp()); err != nil {
		t.Fatalf("AddFun() error = %v", err)
	}
	if len(b.rpn) != 1 {
		t.Fatalf("len(rpn) = %d, want 1 (absorbed)", len(b.rpn))
	}
	got := b.rpn[0]
	if got.Ptr != &x || got.Multiplier != 1 || got.Fixed != 5 {
		t.Errorf("rpn[0] = %+v, want ValueEx{Ptr: &x, Multiplier: 1, Fixed: 5}", got)
	}
}

func TestAdditiveAbsorptionSubtraction(t *testing.T) {
	x := 2.0
	b := New[float64]()
	b.AddVal(valTok(0, 1, &x))
	b.AddVal(valTok(5, 0, nil))
	if err := b.AddFun(subBinOp()); err != nil {
		t.Fatalf("AddFun() error = %v", err)
	}
	if len(b.rpn) != 1 {
		t.Fatalf("len(rpn) = %d, want 1 (absorbed)", len(b.rpn))
	}
	got := b.rpn[0]
	if got.Ptr != &x || got.Multiplier != 1 || got.Fixed != -5 {
		t.Errorf("rpn[0] = %+v, want ValueEx{Ptr: &x, Multiplier: 1, Fixed: -5}", got)
	}
}

func TestMultiplicativeAbsorption(t *testing.T) {
	x := 3.0
	b := New[float64]()
	b.AddVal(valTok(2, 0, nil)) // constant 2
	b.AddVal(valTok(0, 1, &x)) // variable x
	if err := b.AddFun(mulBinOp()); err != nil {
		t.Fatalf("AddFun() error = %v", err)
	}
	if len(b.rpn) != 1 {
		t.Fatalf("len(rpn) = %d, want 1 (absorbed)", len(b.rpn))
	}
	got := b.rpn[0]
	if got.Ptr != &x || got.Multiplier != 2 || got.Fixed != 0 {
		t.Errorf("rpn[0] = %+v, want ValueEx{Ptr: &x, Multiplier: 2, Fixed: 0}", got)
	}
}

func TestPowerSubstitution(t *testing.T) {
	x := 2.0
	b := New[float64]()
	b.AddVal(valTok(0, 1, &x)) // base: variable x
	b.AddVal(valTok(3, 0, nil)) // exponent: constant 3
	if err := b.AddFun(powBinOp()); err != nil {
		t.Fatalf("AddFun() error = %v", err)
	}
	if len(b.rpn) != 2 {
		t.Fatalf("len(rpn) = %d, want 2 (base with fast-pow function)", len(b.rpn))
	}
	got := b.rpn[1]
	if got.Kind != token.Function || got.Lexeme != "^3" || got.Argc != 1 {
		t.Errorf("rpn[1] = %+v, want Function{Lexeme: \"^3\", Argc: 1}", got)
	}
	result, err := got.Fn([]float64{x})
	if err != nil || result != 8 {
		t.Errorf("Fn(2) = (%v, %v), want (8, nil)", result, err)
	}
}

func TestFinalizeAppendsEndAndComputesFingerprint(t *testing.T) {
	x, y := 1.0, 2.0
	b := New[float64]()
	b.AddVal(valTok(0, 1, &x))
	b.AddVal(valTok(0, 1, &y))
	if err := b.AddFun(addBinOp()); err != nil {
		t.Fatalf("AddFun() error = %v", err)
	}
	prog, err := b.Finalize(1)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if prog.RPN[len(prog.RPN)-1].Kind != token.End {
		t.Fatalf("last token = %v, want End", prog.RPN[len(prog.RPN)-1].Kind)
	}
	if prog.Unoptimizable {
		t.Errorf("Unoptimizable = true, want false for a short additive expression")
	}
	if !prog.NoMul {
		t.Errorf("NoMul = false, want true (both operands unscaled)")
	}
}

func TestFinalizeMarksConditionalUnoptimizable(t *testing.T) {
	b := New[float64]()
	b.AddVal(valTok(1, 0, nil))
	b.AddIf(token.Token[float64]{Kind: token.IfCond})
	b.AddVal(valTok(2, 0, nil))
	b.AddElse(token.Token[float64]{Kind: token.Else})
	b.AddVal(valTok(3, 0, nil))
	b.AddTok(token.Token[float64]{Kind: token.EndIf})

	prog, err := b.Finalize(1)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if !prog.Unoptimizable {
		t.Errorf("Unoptimizable = false, want true for a conditional program")
	}
}

func TestDisableOptimizerSkipsConstantFolding(t *testing.T) {
	b := New[float64]()
	b.DisableOptimizer()
	b.AddVal(valTok(3, 0, nil))
	b.AddVal(valTok(4, 0, nil))
	if err := b.AddFun(addBinOp()); err != nil {
		t.Fatalf("AddFun() error = %v", err)
	}
	if len(b.rpn) != 3 {
		t.Fatalf("len(rpn) = %d, want 3 (unfolded: two values plus the function)", len(b.rpn))
	}
}
