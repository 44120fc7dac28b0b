package lexer

import "muparser/token"

// Precedence constants mirror the original's fixed EOprtPrecedence scale,
// kept as relative magnitudes only (higher binds tighter).
const (
	precAssign  = 0
	precLor     = 1
	precLand    = 2
	precCmp     = 4
	precAddSub  = 5
	precMulDiv  = 6
	precPow     = 7
)

// builtinOp is one entry of the fixed built-in operator/structural table —
// the Go analogue of the original's c_DefaultOprt array. Unlike registry
// operators, these are never subject to NameConflict and are always
// available; a user binary operator sharing one of these symbols is
// skipped during the user-operator scan and falls through to this table,
// mirroring IsOprt's "Check if the operator is a built in operator, if so
// ignore it here."
type builtinOp struct {
	symbol string
	kind   token.Kind
	prec   int
	assoc  token.Associativity
}

// builtinTable is ordered longest-symbol-first so the reader's scan finds
// "==" before "=", "<=" before "<", and so on (the longest-match rule of
// §4.1 applied to the fixed table).
var builtinTable = []builtinOp{
	{"==", token.BinaryOp, precCmp, token.LeftAssoc},
	{"!=", token.BinaryOp, precCmp, token.LeftAssoc},
	{"<=", token.BinaryOp, precCmp, token.LeftAssoc},
	{">=", token.BinaryOp, precCmp, token.LeftAssoc},
	{"&&", token.BinaryOp, precLand, token.LeftAssoc},
	{"||", token.BinaryOp, precLor, token.LeftAssoc},
	{"<", token.BinaryOp, precCmp, token.LeftAssoc},
	{">", token.BinaryOp, precCmp, token.LeftAssoc},
	{"+", token.BinaryOp, precAddSub, token.LeftAssoc},
	{"-", token.BinaryOp, precAddSub, token.LeftAssoc},
	{"*", token.BinaryOp, precMulDiv, token.LeftAssoc},
	{"/", token.BinaryOp, precMulDiv, token.LeftAssoc},
	{"^", token.BinaryOp, precPow, token.RightAssoc},
	{"(", token.OpenParen, 0, token.LeftAssoc},
	{")", token.CloseParen, 0, token.LeftAssoc},
	{"=", token.Assign, precAssign, token.RightAssoc},
	{"?", token.IfCond, 0, token.LeftAssoc},
	{":", token.Else, 0, token.LeftAssoc},
}

// builtinFn returns the callback for a built-in binary operator symbol.
// Comparisons and logical operators produce 1/0; relies only on ordering
// and equality, which every Number instantiation supports.
func builtinFn[T token.Number](symbol string) token.Func[T] {
	one := func(b bool) T {
		if b {
			return 1
		}
		return 0
	}
	switch symbol {
	case "+":
		return func(a []T) (T, error) { return a[0] + a[1], nil }
	case "-":
		return func(a []T) (T, error) { return a[0] - a[1], nil }
	case "*":
		return func(a []T) (T, error) { return a[0] * a[1], nil }
	case "/":
		return func(a []T) (T, error) {
			if a[1] == 0 {
				return 0, token.NewError(token.DivByZero, "/", "", 0)
			}
			return a[0] / a[1], nil
		}
	case "^":
		return func(a []T) (T, error) { return powInt(a[0], a[1]), nil }
	case "<":
		return func(a []T) (T, error) { return one(a[0] < a[1]), nil }
	case ">":
		return func(a []T) (T, error) { return one(a[0] > a[1]), nil }
	case "<=":
		return func(a []T) (T, error) { return one(a[0] <= a[1]), nil }
	case ">=":
		return func(a []T) (T, error) { return one(a[0] >= a[1]), nil }
	case "==":
		return func(a []T) (T, error) { return one(a[0] == a[1]), nil }
	case "!=":
		return func(a []T) (T, error) { return one(a[0] != a[1]), nil }
	case "&&":
		return func(a []T) (T, error) { return one(a[0] != 0 && a[1] != 0), nil }
	case "||":
		return func(a []T) (T, error) { return one(a[0] != 0 || a[1] != 0), nil }
	default:
		return nil
	}
}

// powInt computes a^b by repeated squaring when b is a non-negative
// integer value (the common case for both integer and float Number
// instantiations); it falls back to repeated multiplication for a
// negative integer exponent by inverting — acceptable here because the
// fast pow2..pow5 substitution (§4.3 item 4) handles the hot, small
// constant-exponent path and this is only the generic fallback.
func powInt[T token.Number](base, exp T) T {
	e := int64(exp)
	neg := e < 0
	if neg {
		e = -e
	}
	var result T = 1
	b := base
	for n := e; n > 0; n >>= 1 {
		if n&1 == 1 {
			result *= b
		}
		b *= b
	}
	if neg {
		if result == 0 {
			return 0
		}
		return 1 / result
	}
	return result
}
