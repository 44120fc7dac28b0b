// Package naiveeval is a second, independently written evaluator over the
// same grammar the core lexer/compiler/bytecode/evalengine pipeline
// compiles to RPN. It exists purely as an internal cross-check: for any
// expression and registry binding, naiveeval.Eval and the compiled
// pipeline's Parser.Evaluate must agree (see the testable property in
// §8). Where the core pipeline tokenizes once and compiles to a flat
// instruction stream, naiveeval walks a freshly parsed tree on every call
// — deliberately the slower, more obviously-correct shape, in the
// visitor style of informatter-nilan's ast/parser/interpreter.
package naiveeval

import "muparser/token"

// Expr is an expression AST node.
type Expr[T token.Number] interface {
	Accept(v Visitor[T]) (T, error)
}

// Visitor dispatches over the concrete Expr node types.
type Visitor[T token.Number] interface {
	VisitLiteral(n *Literal[T]) (T, error)
	VisitVariable(n *Variable[T]) (T, error)
	VisitUnary(n *Unary[T]) (T, error)
	VisitPostfix(n *Postfix[T]) (T, error)
	VisitBinary(n *Binary[T]) (T, error)
	VisitTernary(n *Ternary[T]) (T, error)
	VisitCall(n *Call[T]) (T, error)
	VisitAssign(n *Assign[T]) (T, error)
}

// Literal is a constant value read directly from source text or a
// registered named constant.
type Literal[T token.Number] struct {
	Value T
}

func (n *Literal[T]) Accept(v Visitor[T]) (T, error) { return v.VisitLiteral(n) }

// Variable is a reference to a registered variable by name, resolved at
// evaluation time so mutations between calls are observed.
type Variable[T token.Number] struct {
	Name string
}

func (n *Variable[T]) Accept(v Visitor[T]) (T, error) { return v.VisitVariable(n) }

// Unary is a prefix operator applied to a single operand.
type Unary[T token.Number] struct {
	Op      string
	Operand Expr[T]
}

func (n *Unary[T]) Accept(v Visitor[T]) (T, error) { return v.VisitUnary(n) }

// Postfix is a postfix operator applied to a single operand.
type Postfix[T token.Number] struct {
	Op      string
	Operand Expr[T]
}

func (n *Postfix[T]) Accept(v Visitor[T]) (T, error) { return v.VisitPostfix(n) }

// Binary is a left/right operator pair.
type Binary[T token.Number] struct {
	Op          string
	Left, Right Expr[T]
}

func (n *Binary[T]) Accept(v Visitor[T]) (T, error) { return v.VisitBinary(n) }

// Ternary is the cond ? then : els expression.
type Ternary[T token.Number] struct {
	Cond, Then, Else Expr[T]
}

func (n *Ternary[T]) Accept(v Visitor[T]) (T, error) { return v.VisitTernary(n) }

// Call is a named function applied to an argument list.
type Call[T token.Number] struct {
	Name string
	Args []Expr[T]
}

func (n *Call[T]) Accept(v Visitor[T]) (T, error) { return v.VisitCall(n) }

// Assign stores the evaluated Value through the named variable's address.
type Assign[T token.Number] struct {
	Name  string
	Value Expr[T]
}

func (n *Assign[T]) Accept(v Visitor[T]) (T, error) { return v.VisitAssign(n) }
