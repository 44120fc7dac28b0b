package registry

import "testing"

func TestDefineVariableConflicts(t *testing.T) {
	r := New[float64](false)
	if err := r.DefineConstant("pi", 3.14159); err != nil {
		t.Fatalf("DefineConstant() error = %v", err)
	}
	x := 1.0
	if err := r.DefineVariable("pi", &x); err == nil {
		t.Fatalf("DefineVariable() with a name already used by a constant should fail")
	}
	if err := r.DefineVariable("x", &x); err != nil {
		t.Fatalf("DefineVariable() error = %v", err)
	}
	if _, ok := r.Vars["x"]; !ok {
		t.Fatalf("expected variable x to be registered")
	}
}

func TestDefineVariableNilAddr(t *testing.T) {
	r := New[float64](false)
	if err := r.DefineVariable("x", nil); err == nil {
		t.Fatalf("DefineVariable() with a nil address should fail")
	}
}

func TestValidName(t *testing.T) {
	r := New[float64](false)
	tests := []struct {
		name string
		want bool
	}{
		{"myVar", true},
		{"my_var_2", true},
		{"2bad", false},
		{"", false},
		{"bad name", false},
	}
	for _, tt := range tests {
		if got := r.ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAddValueRecognizerPrecedence(t *testing.T) {
	r := New[int](true)
	calls := 0
	r.AddValueRecognizer(func(expr string, pos int) (int, int, bool) {
		calls++
		return 42, pos + 1, true
	})
	if len(r.Recognizers()) == 0 {
		t.Fatalf("expected at least one recognizer")
	}
	v, newPos, ok := r.Recognizers()[0]("0xff", 0)
	if !ok || v != 42 || newPos != 1 {
		t.Fatalf("expected the user recognizer to run first, got v=%d newPos=%d ok=%v", v, newPos, ok)
	}
	if calls != 1 {
		t.Fatalf("expected the user recognizer to be called once, got %d", calls)
	}
}

func TestDefaultRecognizersIntegerMode(t *testing.T) {
	r := New[int64](true)
	recs := r.Recognizers()
	if len(recs) != 3 {
		t.Fatalf("expected 3 default recognizers in integer mode, got %d", len(recs))
	}
	if v, pos, ok := recs[2]("123abc", 0); !ok || v != 123 || pos != 3 {
		t.Errorf("decimal recognizer = (%d, %d, %v), want (123, 3, true)", v, pos, ok)
	}
	if v, pos, ok := recs[1]("#1111", 0); !ok || v != 15 || pos != 5 {
		t.Errorf("binary recognizer = (%d, %d, %v), want (15, 5, true)", v, pos, ok)
	}
	if v, pos, ok := recs[0]("0xff", 0); !ok || v != 255 || pos != 4 {
		t.Errorf("hex recognizer = (%d, %d, %v), want (255, 4, true)", v, pos, ok)
	}
}

func TestDefaultRecognizerFloatMode(t *testing.T) {
	r := New[float64](false)
	recs := r.Recognizers()
	if len(recs) != 1 {
		t.Fatalf("expected 1 default recognizer in float mode, got %d", len(recs))
	}
	if v, pos, ok := recs[0]("3.14 ", 0); !ok || v != 3.14 || pos != 4 {
		t.Errorf("float recognizer = (%v, %d, %v), want (3.14, 4, true)", v, pos, ok)
	}
}
