package compiler

import (
	"testing"

	"muparser/lexer"
	"muparser/registry"
	"muparser/token"
)

func newReg() *registry.Registry[float64] {
	return registry.New[float64](false)
}

func compile(t *testing.T, reg *registry.Registry[float64], expr string, disableOpt bool) ([]token.Token[float64], error) {
	t.Helper()
	lx := lexer.New[float64](expr, reg)
	c := New[float64](lx)
	if disableOpt {
		c.DisableOptimizer()
	}
	prog, err := c.Compile()
	if err != nil {
		return nil, err
	}
	return prog.RPN, nil
}

func lexemes(rpn []token.Token[float64]) []string {
	out := make([]string, len(rpn))
	for i, tok := range rpn {
		out[i] = tok.Lexeme
	}
	return out
}

func kinds(rpn []token.Token[float64]) []token.Kind {
	out := make([]token.Kind, len(rpn))
	for i, tok := range rpn {
		out[i] = tok.Kind
	}
	return out
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPrecedenceMulBeforeAdd(t *testing.T) {
	var x, y, z float64 = 1, 2, 3
	reg := newReg()
	reg.DefineVariable("x", &x)
	reg.DefineVariable("y", &y)
	reg.DefineVariable("z", &z)

	rpn, err := compile(t, reg, "x+y*z", true)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	wantKinds := []token.Kind{token.Variable, token.Variable, token.Variable, token.Function, token.Function, token.End}
	if !equalSlices(kinds(rpn), wantKinds) {
		t.Fatalf("kinds = %v, want %v (rpn=%v)", kinds(rpn), wantKinds, lexemes(rpn))
	}
	wantLexemes := []string{"x", "y", "z", "*", "+", ""}
	if !equalSlices(lexemes(rpn), wantLexemes) {
		t.Fatalf("lexemes = %v, want %v", lexemes(rpn), wantLexemes)
	}
}

func TestAssociativityPowRightLeftAddLeft(t *testing.T) {
	var x, y, z float64 = 2, 3, 4
	reg := newReg()
	reg.DefineVariable("x", &x)
	reg.DefineVariable("y", &y)
	reg.DefineVariable("z", &z)

	// x^y^z is right-associative: x^(y^z) -> push x, push y, push z, apply
	// "^" (innermost, y^z), apply "^" (outer, x^(...)).
	rpn, err := compile(t, reg, "x^y^z", true)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	wantLexemes := []string{"x", "y", "z", "^", "^", ""}
	if !equalSlices(lexemes(rpn), wantLexemes) {
		t.Fatalf("lexemes = %v, want %v", lexemes(rpn), wantLexemes)
	}

	// x-y-z is left-associative: (x-y)-z -> push x, push y, apply "-",
	// push z, apply "-".
	rpn, err = compile(t, reg, "x-y-z", true)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	wantLexemes = []string{"x", "y", "-", "z", "-", ""}
	if !equalSlices(lexemes(rpn), wantLexemes) {
		t.Fatalf("lexemes = %v, want %v", lexemes(rpn), wantLexemes)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	var x, y, z float64 = 1, 2, 3
	reg := newReg()
	reg.DefineVariable("x", &x)
	reg.DefineVariable("y", &y)
	reg.DefineVariable("z", &z)

	rpn, err := compile(t, reg, "(x+y)*z", true)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	wantLexemes := []string{"x", "y", "+", "z", "*", ""}
	if !equalSlices(lexemes(rpn), wantLexemes) {
		t.Fatalf("lexemes = %v, want %v", lexemes(rpn), wantLexemes)
	}
}

func TestFunctionCallArgumentOrder(t *testing.T) {
	var x, y float64 = 1, 2
	reg := newReg()
	reg.DefineVariable("x", &x)
	reg.DefineVariable("y", &y)
	if err := reg.DefineFunction("mypow", func(a []float64) (float64, error) { return a[0], nil }, 2, 2); err != nil {
		t.Fatalf("DefineFunction() error = %v", err)
	}

	rpn, err := compile(t, reg, "mypow(x,y)", true)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	wantLexemes := []string{"x", "y", "mypow", ""}
	if !equalSlices(lexemes(rpn), wantLexemes) {
		t.Fatalf("lexemes = %v, want %v", lexemes(rpn), wantLexemes)
	}
	if rpn[2].Argc != 2 {
		t.Errorf("mypow Argc = %d, want 2", rpn[2].Argc)
	}
}

func TestTooManyAndTooFewParams(t *testing.T) {
	var x float64 = 1
	reg := newReg()
	reg.DefineVariable("x", &x)
	reg.DefineFunction("f", func(a []float64) (float64, error) { return a[0], nil }, 1, 1)

	if _, err := compile(t, reg, "f(x,x)", false); err == nil {
		t.Fatal("expected TooManyParams error, got nil")
	} else if terr, ok := err.(*token.Error); !ok || terr.Code != token.TooManyParams {
		t.Errorf("error = %v, want TooManyParams", err)
	}

	if _, err := compile(t, reg, "f()", false); err == nil {
		t.Fatal("expected TooFewParams error, got nil")
	} else if terr, ok := err.(*token.Error); !ok || terr.Code != token.TooFewParams {
		t.Errorf("error = %v, want TooFewParams", err)
	}
}

func TestVariadicFunctionZeroArgFloor(t *testing.T) {
	reg := newReg()
	reg.DefineFunction("sum", func(a []float64) (float64, error) {
		var s float64
		for _, v := range a {
			s += v
		}
		return s, nil
	}, -1, 0)

	if _, err := compile(t, reg, "sum()", false); err != nil {
		t.Errorf("sum() error = %v, want nil (MinArgc 0 allows zero args)", err)
	}
}

func TestAssignRequiresBareVariableTarget(t *testing.T) {
	var x float64 = 1
	reg := newReg()
	reg.DefineVariable("x", &x)

	rpn, err := compile(t, reg, "x=5", true)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	last := rpn[len(rpn)-2] // before End
	if last.Kind != token.Assign {
		t.Fatalf("last op kind = %v, want Assign", last.Kind)
	}
	if last.Target != &x {
		t.Errorf("Target = %p, want %p", last.Target, &x)
	}

	// "2*x" folds to a single scaled ValueEx (Multiplier 2, not bare) before
	// "=" is read; the lexer's own flags don't forbid an assign here since
	// the raw token immediately before it is a Variable, so this exercises
	// the compiler's own IsBareVariable check rather than the lexer's gate.
	if _, err := compile(t, reg, "2*x=5", false); err == nil {
		t.Fatal("expected UnexpectedOperator for assigning to a scaled operand")
	} else if terr, ok := err.(*token.Error); !ok || terr.Code != token.UnexpectedOperator {
		t.Errorf("error = %v, want UnexpectedOperator", err)
	}
}

func TestTernaryEmitsIfElseEndIfWithOffsets(t *testing.T) {
	var x, y, z float64 = 1, 2, 3
	reg := newReg()
	reg.DefineVariable("x", &x)
	reg.DefineVariable("y", &y)
	reg.DefineVariable("z", &z)

	rpn, err := compile(t, reg, "x?y:z", true)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	wantKinds := []token.Kind{token.Variable, token.IfCond, token.Variable, token.Else, token.Variable, token.EndIf, token.End}
	if !equalSlices(kinds(rpn), wantKinds) {
		t.Fatalf("kinds = %v, want %v", kinds(rpn), wantKinds)
	}
	ifIdx, elseIdx := 1, 3
	if rpn[ifIdx].Offset != elseIdx-ifIdx {
		t.Errorf("IfCond.Offset = %d, want %d", rpn[ifIdx].Offset, elseIdx-ifIdx)
	}
	endIfIdx := 5
	if rpn[elseIdx].Offset != endIfIdx-elseIdx {
		t.Errorf("Else.Offset = %d, want %d", rpn[elseIdx].Offset, endIfIdx-elseIdx)
	}
}

func TestNestedTernaryInThenBranch(t *testing.T) {
	var a, b, c, d float64 = 1, 2, 3, 4
	reg := newReg()
	reg.DefineVariable("a", &a)
	reg.DefineVariable("b", &b)
	reg.DefineVariable("c", &c)
	reg.DefineVariable("d", &d)

	rpn, err := compile(t, reg, "a?b?c:d:d", true)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	// a, IfCond(outer), b, IfCond(inner), c, Else(inner), d, EndIf(inner), Else(outer), d, EndIf(outer), End
	wantKinds := []token.Kind{
		token.Variable, token.IfCond,
		token.Variable, token.IfCond, token.Variable, token.Else, token.Variable, token.EndIf,
		token.Else, token.Variable, token.EndIf,
		token.End,
	}
	if !equalSlices(kinds(rpn), wantKinds) {
		t.Fatalf("kinds = %v, want %v", kinds(rpn), wantKinds)
	}
}

func TestMultipleTopLevelStatementsTrackNumResults(t *testing.T) {
	var x, y float64 = 1, 2
	reg := newReg()
	reg.DefineVariable("x", &x)
	reg.DefineVariable("y", &y)

	lx := lexer.New[float64]("x,y,x+y", reg)
	c := New[float64](lx)
	c.DisableOptimizer()
	prog, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if prog.NumResults != 3 {
		t.Errorf("NumResults = %d, want 3", prog.NumResults)
	}
}

func TestMissingCloseParen(t *testing.T) {
	var x float64 = 1
	reg := newReg()
	reg.DefineVariable("x", &x)

	if _, err := compile(t, reg, "(x+1", false); err == nil {
		t.Fatal("expected MissingParens error, got nil")
	}
}

func TestEmptyExpression(t *testing.T) {
	reg := newReg()
	if _, err := compile(t, reg, "", false); err == nil {
		t.Fatal("expected EmptyExpression error, got nil")
	} else if terr, ok := err.(*token.Error); !ok || terr.Code != token.EmptyExpression {
		t.Errorf("error = %v, want EmptyExpression", err)
	}
}

func TestMissingElseClause(t *testing.T) {
	var x, y float64 = 1, 2
	reg := newReg()
	reg.DefineVariable("x", &x)
	reg.DefineVariable("y", &y)

	if _, err := compile(t, reg, "x?y", false); err == nil {
		t.Fatal("expected MissingElseClause error, got nil")
	} else if terr, ok := err.(*token.Error); !ok || terr.Code != token.MissingElseClause {
		t.Errorf("error = %v, want MissingElseClause", err)
	}
}
