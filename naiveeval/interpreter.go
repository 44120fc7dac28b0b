package naiveeval

import (
	"muparser/registry"
	"muparser/token"
)

// interpreter implements Visitor by walking the tree Parse produced,
// resolving Variable nodes through reg on every visit so a binding
// mutated between calls is observed exactly like the compiled pipeline.
type interpreter[T token.Number] struct {
	reg *registry.Registry[T]
}

func (it *interpreter[T]) VisitLiteral(n *Literal[T]) (T, error) {
	return n.Value, nil
}

func (it *interpreter[T]) VisitVariable(n *Variable[T]) (T, error) {
	def, ok := it.reg.Vars[n.Name]
	if !ok {
		var zero T
		return zero, token.NewError(token.UnassignableToken, n.Name, "", 0)
	}
	return *def.Addr, nil
}

func (it *interpreter[T]) VisitUnary(n *Unary[T]) (T, error) {
	v, err := n.Operand.Accept(it)
	if err != nil {
		var zero T
		return zero, err
	}
	def, ok := it.reg.PrefixOps[n.Op]
	if !ok {
		var zero T
		return zero, token.NewError(token.UnexpectedOperator, n.Op, "", 0)
	}
	return def.Fn([]T{v})
}

func (it *interpreter[T]) VisitPostfix(n *Postfix[T]) (T, error) {
	v, err := n.Operand.Accept(it)
	if err != nil {
		var zero T
		return zero, err
	}
	def, ok := it.reg.PostfixOps[n.Op]
	if !ok {
		var zero T
		return zero, token.NewError(token.UnexpectedOperator, n.Op, "", 0)
	}
	return def.Fn([]T{v})
}

func (it *interpreter[T]) VisitBinary(n *Binary[T]) (T, error) {
	l, err := n.Left.Accept(it)
	if err != nil {
		var zero T
		return zero, err
	}
	r, err := n.Right.Accept(it)
	if err != nil {
		var zero T
		return zero, err
	}
	if def, ok := it.reg.BinOps[n.Op]; ok {
		return def.Fn([]T{l, r})
	}
	fn := builtinFn[T](n.Op)
	if fn == nil {
		var zero T
		return zero, token.NewError(token.UnexpectedOperator, n.Op, "", 0)
	}
	return fn([]T{l, r})
}

func (it *interpreter[T]) VisitTernary(n *Ternary[T]) (T, error) {
	c, err := n.Cond.Accept(it)
	if err != nil {
		var zero T
		return zero, err
	}
	var zero T
	if c != zero {
		return n.Then.Accept(it)
	}
	return n.Else.Accept(it)
}

func (it *interpreter[T]) VisitCall(n *Call[T]) (T, error) {
	def, ok := it.reg.Funcs[n.Name]
	if !ok {
		var zero T
		return zero, token.NewError(token.UnassignableToken, n.Name, "", 0)
	}
	args := make([]T, len(n.Args))
	for i, a := range n.Args {
		v, err := a.Accept(it)
		if err != nil {
			var zero T
			return zero, err
		}
		args[i] = v
	}
	return def.Fn(args)
}

func (it *interpreter[T]) VisitAssign(n *Assign[T]) (T, error) {
	v, err := n.Value.Accept(it)
	if err != nil {
		var zero T
		return zero, err
	}
	def, ok := it.reg.Vars[n.Name]
	if !ok {
		var zero T
		return zero, token.NewError(token.UnassignableToken, n.Name, "", 0)
	}
	*def.Addr = v
	return v, nil
}

// Eval parses and evaluates expr against reg in one pass, returning the
// last comma-separated top-level result — the tree-walking counterpart
// to Parser.Evaluate.
func Eval[T token.Number](expr string, reg *registry.Registry[T]) (T, error) {
	results, err := EvalMulti(expr, reg)
	if err != nil {
		var zero T
		return zero, err
	}
	return results[len(results)-1], nil
}

// EvalMulti parses and evaluates expr against reg, returning every
// top-level comma-separated result.
func EvalMulti[T token.Number](expr string, reg *registry.Registry[T]) ([]T, error) {
	stmts, err := Parse[T](expr, reg)
	if err != nil {
		return nil, err
	}
	it := &interpreter[T]{reg: reg}
	out := make([]T, len(stmts))
	for i, s := range stmts {
		v, err := s.Accept(it)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
