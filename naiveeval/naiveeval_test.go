package naiveeval

import (
	"math"
	"testing"

	"muparser/muparser"
	"muparser/registry"
	"muparser/token"
)

// newFixture returns a registry and a Parser sharing the same bindings,
// so Eval and Parser.Evaluate are exercised against identical state.
func newFixture() (*registry.Registry[float64], *muparser.Parser[float64], *float64, *float64, *float64) {
	p := muparser.New[float64](false)
	a, b, c := 1.0, 2.0, 3.0
	p.DefineVariable("a", &a)
	p.DefineVariable("b", &b)
	p.DefineVariable("c", &c)
	p.DefinePrefixOperator("-", func(args []float64) (float64, error) { return -args[0], nil }, 8)
	return p.Registry(), p, &a, &b, &c
}

func TestCrossCheckAgreesWithCompiledPipeline(t *testing.T) {
	cases := []string{
		"a+b*c",
		"(a+b)*c",
		"a^b^c",
		"a<b ? b : c",
		"a<b ? (b<c ? 1 : 2) : 3",
		"a==1 && b==2",
		"a!=1 || c==3",
		"-a + -b",
		"a, b, a+b+c",
	}
	for _, expr := range cases {
		reg, p, _, _, _ := newFixture()
		p.SetExpression(expr)

		want, err := p.Evaluate()
		if err != nil {
			t.Fatalf("%q: compiled Evaluate() error = %v", expr, err)
		}
		got, err := Eval[float64](expr, reg)
		if err != nil {
			t.Fatalf("%q: naiveeval.Eval() error = %v", expr, err)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%q: naiveeval = %v, compiled = %v", expr, got, want)
		}
	}
}

func TestCrossCheckAssignObservedByBoth(t *testing.T) {
	reg, _, a, _, _ := newFixture()

	got, err := Eval[float64]("a=42", reg)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got != 42 || *a != 42 {
		t.Errorf("got = %v, *a = %v, want 42", got, *a)
	}
}

func TestCrossCheckDivByZero(t *testing.T) {
	reg := registry.New[float64](false)
	x, y := 1.0, 0.0
	reg.DefineVariable("x", &x)
	reg.DefineVariable("y", &y)

	_, err := Eval[float64]("x/y", reg)
	terr, ok := err.(*token.Error)
	if !ok || terr.Code != token.DivByZero {
		t.Errorf("error = %v, want DivByZero", err)
	}
}

func TestCrossCheckFunctionCall(t *testing.T) {
	reg := registry.New[float64](false)
	reg.DefineFunction("double", func(a []float64) (float64, error) { return a[0] * 2, nil }, 1, 1)

	got, err := Eval[float64]("double(21)", reg)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Eval() = %v, want 42", got)
	}
}

func TestCrossCheckEvalMulti(t *testing.T) {
	reg := registry.New[float64](false)
	got, err := EvalMulti[float64]("1,2,3", reg)
	if err != nil {
		t.Fatalf("EvalMulti() error = %v", err)
	}
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EvalMulti()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
