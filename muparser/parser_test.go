package muparser

import (
	"math"
	"testing"

	"muparser/token"
)

func TestScenarioBasicPrecedence(t *testing.T) {
	var a, b, c float64 = 1, 2, 3
	p := New[float64](false)
	p.DefineVariable("a", &a)
	p.DefineVariable("b", &b)
	p.DefineVariable("c", &c)
	p.SetExpression("a+b*c")

	got, err := p.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != 7 {
		t.Errorf("Evaluate() = %v, want 7", got)
	}
}

func TestScenarioChainedAssignSideEffects(t *testing.T) {
	var a, b, c float64 = 1, 2, 3
	p := New[float64](false)
	p.DefineVariable("a", &a)
	p.DefineVariable("b", &b)
	p.DefineVariable("c", &c)
	p.SetExpression("a=10, b=20, c=a*b")

	got, err := p.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != 200 {
		t.Errorf("Evaluate() = %v, want 200", got)
	}
	if a != 10 {
		t.Errorf("a = %v, want 10", a)
	}
	if b != 20 {
		t.Errorf("b = %v, want 20", b)
	}
}

func TestScenarioNestedTernaryWithVariadicSum(t *testing.T) {
	var a, b float64 = 1, 2
	p := New[float64](false)
	p.DefineVariable("a", &a)
	p.DefineVariable("b", &b)
	p.DefineVariadicFunction("sum", func(args []float64) (float64, error) {
		var s float64
		for _, v := range args {
			s += v
		}
		return s, nil
	}, 1)
	p.SetExpression("(a<b) ? sum(3, (a<b) ? 3 : 10, 10, 20)*10 : 99")

	got, err := p.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != 360 {
		t.Errorf("Evaluate() = %v, want 360", got)
	}
}

func TestScenarioNoBindingsPrecedenceAndAssociativity(t *testing.T) {
	p := New[float64](false)
	p.SetExpression("1 - ((4*3) + (4/3)) - 3")

	got, err := p.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	want := 1 - ((4.0 * 3) + (4.0 / 3)) - 3
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Evaluate() = %v, want %v", got, want)
	}
}

func TestScenarioIntegerModeHexAndBinaryLiterals(t *testing.T) {
	p := New[int64](true)
	p.SetExpression("#1111 + 0xff")

	got, err := p.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != 270 {
		t.Errorf("Evaluate() = %v, want 270", got)
	}
}

func TestScenarioRemoveVariableInvalidatesSubsequentCompile(t *testing.T) {
	var a, b, c float64 = 1, 2, 3
	p := New[float64](false)
	p.DefineVariable("a", &a)
	p.DefineVariable("b", &b)
	p.DefineVariable("c", &c)
	p.DefineVariadicFunction("sum", func(args []float64) (float64, error) {
		var s float64
		for _, v := range args {
			s += v
		}
		return s, nil
	}, 1)
	p.SetExpression("sum(a,b,c)")

	got, err := p.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != 6 {
		t.Errorf("Evaluate() = %v, want 6", got)
	}

	p.RemoveVariable("c")
	p.SetExpression("sum(a,b,c)")
	_, err = p.Evaluate()
	if err == nil {
		t.Fatal("expected UnassignableToken after removing a variable the expression references")
	}
	terr, ok := err.(*token.Error)
	if !ok || terr.Code != token.UnassignableToken {
		t.Errorf("error = %v, want UnassignableToken", err)
	}
}

func TestGetUsedVariablesDoesNotRequireBindings(t *testing.T) {
	p := New[float64](false)
	p.SetExpression("x+y*2")

	used, err := p.GetUsedVariables()
	if err != nil {
		t.Fatalf("GetUsedVariables() error = %v", err)
	}
	if _, ok := used["x"]; !ok {
		t.Errorf("used variables = %v, want to contain x", used)
	}
	if _, ok := used["y"]; !ok {
		t.Errorf("used variables = %v, want to contain y", used)
	}

	// GetUsedVariables must not leave the Parser's own compiled state
	// behind: a real Evaluate of the same unbound expression still fails.
	if _, err := p.Evaluate(); err == nil {
		t.Fatal("expected Evaluate() to fail on an expression with no bound variables")
	}
}

func TestRoundTripGetExpression(t *testing.T) {
	p := New[float64](false)
	const expr = "1 + 2 * 3"
	p.SetExpression(expr)
	if got := p.GetExpression(); got != expr {
		t.Errorf("GetExpression() = %q, want %q", got, expr)
	}
}

func TestEmptyExpressionError(t *testing.T) {
	p := New[float64](false)
	p.SetExpression("")
	if _, err := p.Evaluate(); err == nil {
		t.Fatal("expected EmptyExpression error, got nil")
	} else if terr, ok := err.(*token.Error); !ok || terr.Code != token.EmptyExpression {
		t.Errorf("error = %v, want EmptyExpression", err)
	}
}

func TestDefineVariableNameConflictWithFunction(t *testing.T) {
	p := New[float64](false)
	p.DefineFunction("f", func(a []float64) (float64, error) { return a[0], nil }, 1)

	var x float64
	if err := p.DefineVariable("f", &x); err == nil {
		t.Fatal("expected NameConflict defining a variable over an existing function name")
	} else if terr, ok := err.(*token.Error); !ok || terr.Code != token.NameConflict {
		t.Errorf("error = %v, want NameConflict", err)
	}
}

func TestEvaluateMultiReturnsAllTopLevelResults(t *testing.T) {
	p := New[float64](false)
	p.SetExpression("1,2,3")

	got, err := p.EvaluateMulti()
	if err != nil {
		t.Fatalf("EvaluateMulti() error = %v", err)
	}
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("EvaluateMulti() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EvaluateMulti()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
