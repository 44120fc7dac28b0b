// Package stdfuncs is the conventional function/constant library the core
// parser deliberately ships without: per §1's Non-goals the numeric
// function set is an external collaborator, the way the original
// distribution ships muParserMath.h alongside (not inside) the bare parser
// core (original_source/branches/muparser3/include/muParserMath.h).
package stdfuncs

import (
	"math"

	"muparser/muparser"
	"muparser/token"
)

// RegisterAll wires the conventional set (sin, cos, tan, exp, log, sqrt,
// abs, min, max, sum, avg, sign), the constants pi and e, and a prefix
// "-" (negation, binding looser than "^" so "-2^2" is -4) onto p. Every
// callback follows the same func(args []T) (T, error) contract the core
// evaluator invokes directly — no adapter layer at call time.
func RegisterAll[T token.Number](p *muparser.Parser[T]) error {
	neg := func(a []T) (T, error) { return -a[0], nil }
	if err := p.DefinePrefixOperator("-", neg, 6); err != nil {
		return err
	}

	unary := []struct {
		name string
		fn   func(float64) float64
	}{
		{"sin", math.Sin},
		{"cos", math.Cos},
		{"tan", math.Tan},
		{"exp", math.Exp},
		{"log", math.Log},
		{"sqrt", math.Sqrt},
	}
	for _, u := range unary {
		if err := p.DefineFunction(u.name, wrap1[T](u.fn), 1); err != nil {
			return err
		}
	}

	if err := p.DefineFunction("abs", Abs[T], 1); err != nil {
		return err
	}
	if err := p.DefineFunction("sign", Sign[T], 1); err != nil {
		return err
	}
	if err := p.DefineVariadicFunction("min", Min[T], 1); err != nil {
		return err
	}
	if err := p.DefineVariadicFunction("max", Max[T], 1); err != nil {
		return err
	}
	if err := p.DefineVariadicFunction("sum", Sum[T], 1); err != nil {
		return err
	}
	if err := p.DefineVariadicFunction("avg", Avg[T], 1); err != nil {
		return err
	}

	if err := p.DefineConstant("pi", T(math.Pi)); err != nil {
		return err
	}
	if err := p.DefineConstant("e", T(math.E)); err != nil {
		return err
	}
	return nil
}

// wrap1 lifts a float64->float64 math function into the T-generic
// callback contract, round-tripping through float64. Exact for float T;
// for integer T the caller has chosen a function whose domain and range
// happen to be meaningful truncated to an integer, the same tradeoff the
// original leaves to the caller by exposing these as plain double-typed
// callbacks regardless of parser mode.
func wrap1[T token.Number](f func(float64) float64) token.Func[T] {
	return func(a []T) (T, error) {
		return T(f(float64(a[0]))), nil
	}
}

// Abs returns the absolute value of its single argument.
func Abs[T token.Number](a []T) (T, error) {
	if a[0] < 0 {
		return -a[0], nil
	}
	return a[0], nil
}

// Sign returns -1, 0, or 1 according to the sign of its single argument.
func Sign[T token.Number](a []T) (T, error) {
	switch {
	case a[0] < 0:
		return -1, nil
	case a[0] > 0:
		return 1, nil
	default:
		return 0, nil
	}
}

// Min returns the smallest of a variadic argument list.
func Min[T token.Number](a []T) (T, error) {
	m := a[0]
	for _, v := range a[1:] {
		if v < m {
			m = v
		}
	}
	return m, nil
}

// Max returns the largest of a variadic argument list.
func Max[T token.Number](a []T) (T, error) {
	m := a[0]
	for _, v := range a[1:] {
		if v > m {
			m = v
		}
	}
	return m, nil
}

// Sum returns the sum of a variadic argument list.
func Sum[T token.Number](a []T) (T, error) {
	var s T
	for _, v := range a {
		s += v
	}
	return s, nil
}

// Avg returns the arithmetic mean of a variadic argument list.
func Avg[T token.Number](a []T) (T, error) {
	s, _ := Sum(a)
	return s / T(len(a)), nil
}
