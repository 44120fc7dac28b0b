// Package token defines the vocabulary shared by every stage of the
// muparser pipeline: the numeric type constraint, the tagged-variant RPN
// token, and the callback shape the registry, compiler, bytecode builder
// and evaluator all agree on.
package token

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Number is the set of scalar types a Parser may be instantiated over:
// any floating-point type for the default mode, or any signed/unsigned
// integer type for the integer specialization.
type Number interface {
	constraints.Float | constraints.Integer
}

// Func is the callback shape invoked for functions, binary, prefix and
// postfix operators alike — they differ only in the identifier string and
// declared arity under which they are registered. The callback receives
// its argument window and returns the single value that replaces it.
type Func[T Number] func(args []T) (T, error)

// Associativity governs which side a run of equal-precedence binary
// operators groups from.
type Associativity int

const (
	LeftAssoc Associativity = iota
	RightAssoc
)

// Kind discriminates the arms of Token. Names follow the tagged-union
// variants of the token reader's output, which double as the opcode
// space of the compiled RPN program after ValueEx collapsing.
type Kind int

const (
	Value      Kind = iota // literal, pre-collapse
	Variable               // bound to a caller address, pre-collapse
	Constant               // named constant, pre-collapse
	ValueEx                // collapsed (ptr, multiplier, fixed) slot
	Function               // callback + resolved arity
	BinaryOp               // callback + precedence + associativity
	PrefixOp               // callback + precedence
	PostfixOp              // callback, arity fixed at 1
	Assign                 // distinguished binary op targeting a variable
	IfCond                 // ternary '?', carries a forward jump offset
	Else                   // ternary ':', carries a forward jump offset
	EndIf                  // ternary close, no-op at eval time
	OpenParen
	CloseParen
	ArgSep
	End
)

func (k Kind) String() string {
	switch k {
	case Value:
		return "Value"
	case Variable:
		return "Variable"
	case Constant:
		return "Constant"
	case ValueEx:
		return "ValueEx"
	case Function:
		return "Function"
	case BinaryOp:
		return "BinaryOp"
	case PrefixOp:
		return "PrefixOp"
	case PostfixOp:
		return "PostfixOp"
	case Assign:
		return "Assign"
	case IfCond:
		return "IfCond"
	case Else:
		return "Else"
	case EndIf:
		return "EndIf"
	case OpenParen:
		return "OpenParen"
	case CloseParen:
		return "CloseParen"
	case ArgSep:
		return "ArgSep"
	case End:
		return "End"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is the single flat struct standing in for the source's raw union
// of per-opcode record shapes: each Kind only reads the fields relevant
// to its arm. Ptr2/Multiplier2/Fixed2 and Fn2/Fn3 are the "second and
// third slot" fields the bytecode Compress sweep fills when it fuses
// adjacent value or function tokens into one dispatch step.
type Token[T Number] struct {
	Kind Kind

	// Lexeme and Pos identify the token for error reporting; Pos is the
	// byte offset in the source expression where the token began.
	Lexeme string
	Pos    int

	// Value/Variable/Constant/ValueEx. HasValue2 distinguishes "second slot
	// fused in by Compress, and it happens to be a pure constant (Ptr2 ==
	// nil)" from "second slot never used" — Ptr2 alone can't tell those
	// apart, since a legitimately fused constant also has a nil Ptr2.
	Ptr         *T
	Multiplier  T
	Fixed       T
	Ptr2        *T
	Multiplier2 T
	Fixed2      T
	HasValue2   bool

	// Function/BinaryOp/PrefixOp/PostfixOp/Assign. Fn2/Fn3 and Argc2/Argc3
	// are filled in by the bytecode Compress sweep when it fuses up to
	// three successive Function tokens into one dispatch step.
	Fn          Func[T]
	Fn2         Func[T]
	Fn3         Func[T]
	Argc        int
	Argc2       int
	Argc3       int
	MinArgc     int // floor for variadic functions (Argc == -1)
	Precedence  int
	Assoc       Associativity
	Target      *T // Assign only: address the result is stored into

	// IfCond/Else: forward offset (in RPN slots) to jump on branch-not-taken.
	Offset int

	// StackPos is the working-stack index this token's result occupies
	// immediately after it executes; filled in by the bytecode builder.
	StackPos int
}

// IsPureConstant reports whether a ValueEx token carries no variable
// component — the condition the optimizer uses to decide whether a token
// may participate in constant folding.
func (t Token[T]) IsPureConstant() bool {
	return t.Kind == ValueEx && t.Multiplier == 0
}

// IsBareVariable reports whether a ValueEx token is an unscaled, unshifted
// reference to a variable address — the shape Assign requires of its left
// operand.
func (t Token[T]) IsBareVariable() bool {
	var zero T
	return t.Kind == ValueEx && t.Multiplier == 1 && t.Fixed == zero && t.Ptr != nil
}

func (t Token[T]) String() string {
	return fmt.Sprintf("Token{%s %q @%d}", t.Kind, t.Lexeme, t.Pos)
}
