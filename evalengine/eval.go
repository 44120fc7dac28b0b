package evalengine

import (
	"fmt"
	"os"
	"sync/atomic"

	"muparser/bytecode"
	"muparser/token"
)

// Evaluator runs compiled programs. It carries no per-program state of its
// own beyond the stack-dump diagnostic switch, so a single Evaluator may run
// any number of programs, including concurrently from different
// goroutines — each Eval/EvalMulti call owns its own Stack.
//
// Grounded on ParserBase::g_DbgDumpStack (muParserBase.cpp), a static
// console-dump toggle; the dump field (set by SetDumpStack) is the same idea made instance-scoped and
// safe for concurrent use via atomic.Bool instead of a raw package global.
type Evaluator[T token.Number] struct {
	dump atomic.Bool
}

// New returns an Evaluator with stack dumping disabled.
func New[T token.Number]() *Evaluator[T] {
	return &Evaluator[T]{}
}

// SetDumpStack toggles whether each Eval/EvalMulti call prints its operand
// stack to stderr after every RPN step, the Go analogue of
// ParserBase::EnableDebugDump's bDumpStack argument.
func (e *Evaluator[T]) SetDumpStack(on bool) { e.dump.Store(on) }

// Eval runs prog and returns its single result. Callers with a
// multi-statement program (prog.NumResults > 1) should use EvalMulti
// instead; Eval returns only the last comma-separated result, matching the
// original's "a,b,c" expression semantics where intermediate results are
// discarded unless the caller asked for every one of them.
func (e *Evaluator[T]) Eval(prog *bytecode.Program[T]) (T, error) {
	results, err := e.EvalMulti(prog)
	if err != nil {
		var zero T
		return zero, err
	}
	return results[len(results)-1], nil
}

// EvalMulti runs prog and returns every top-level comma-separated result,
// oldest first.
func (e *Evaluator[T]) EvalMulti(prog *bytecode.Program[T]) ([]T, error) {
	st := newStack[T](prog.MaxStackDepth + 1)
	dump := e.dump.Load()

	rpn := prog.RPN
	for i := 0; i < len(rpn); i++ {
		tok := &rpn[i]

		switch tok.Kind {
		case token.Value, token.Variable, token.ValueEx:
			st.Push(scaled(tok.Ptr, tok.Multiplier, tok.Fixed))
			if tok.HasValue2 {
				st.Push(scaled(tok.Ptr2, tok.Multiplier2, tok.Fixed2))
			}

		case token.Function:
			if err := dispatchFn(st, tok); err != nil {
				return nil, err
			}

		case token.Assign:
			if st.Len() < 2 {
				return nil, fmt.Errorf("evalengine: stack underflow at assign")
			}
			val := st.Pop()
			st.Pop() // discard the stale LHS value the compiler pushed reading the target as an operand
			*tok.Target = val
			st.Push(val)

		case token.IfCond:
			if st.Len() < 1 {
				return nil, fmt.Errorf("evalengine: stack underflow at ternary condition")
			}
			var zero T
			if st.Pop() == zero {
				i += tok.Offset
			}

		case token.Else:
			i += tok.Offset

		case token.EndIf:
			// no-op: reached only via the false branch, nothing to unwind

		case token.End:
			if dump {
				dumpStack(st)
			}
			return st.Results(), nil

		default:
			return nil, fmt.Errorf("evalengine: unexpected token kind %s in compiled program", tok.Kind)
		}

		if dump {
			dumpStack(st)
		}
	}

	return nil, fmt.Errorf("evalengine: compiled program missing End marker")
}

// scaled computes a ValueEx token's runtime value: a pure constant when ptr
// is nil, or mult*(*ptr)+fixed for a (possibly folded-linear) variable
// reference. Value and Variable tokens are the degenerate cases Finalize
// reintroduces for tokens Compress never fused a second slot onto; they
// carry the same Ptr/Multiplier/Fixed shape, so one helper covers all three
// kinds.
func scaled[T token.Number](ptr *T, mult, fixed T) T {
	if ptr == nil {
		return fixed
	}
	return *ptr*mult + fixed
}

// dispatchFn applies a Function token's fused callback chain: Fn always
// runs, then Fn2 and Fn3 run in turn when Compress fused additional
// Function tokens onto this one. Each stage is an independent
// pop-its-arguments-push-its-result step; fusion only removes dispatch
// overhead, it never changes which values flow into which callback.
func dispatchFn[T token.Number](st *Stack[T], tok *token.Token[T]) error {
	if err := apply(st, tok.Fn, tok.Argc); err != nil {
		return err
	}
	if tok.Fn2 == nil {
		return nil
	}
	if err := apply(st, tok.Fn2, tok.Argc2); err != nil {
		return err
	}
	if tok.Fn3 == nil {
		return nil
	}
	return apply(st, tok.Fn3, tok.Argc3)
}

func apply[T token.Number](st *Stack[T], fn token.Func[T], argc int) error {
	if st.Len() < argc {
		return fmt.Errorf("evalengine: stack underflow calling function (need %d, have %d)", argc, st.Len())
	}
	args := st.popN(argc)
	result, err := fn(args)
	if err != nil {
		return err
	}
	st.Push(result)
	return nil
}

func dumpStack[T token.Number](st *Stack[T]) {
	fmt.Fprintf(os.Stderr, "stack: %v\n", st.Results())
}
