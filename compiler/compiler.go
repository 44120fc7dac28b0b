// Package compiler drives a Lexer through the grammar and emits RPN into
// a bytecode.Builder. Binary operator/function/bracket handling follows
// the original's two-stack CreateRPN shunting-yard algorithm rewritten as
// precedence climbing, which produces the identical RPN order for infix
// expressions — the Design Notes explicitly allow either strategy as long
// as emission order matches. Assign and ternary are not present in the
// barebone source this package is otherwise grounded on, so both are
// designed directly from the grammar and wired onto the same climb.
package compiler

import (
	"muparser/bytecode"
	"muparser/lexer"
	"muparser/token"
)

// Compiler compiles one expression, pulling tokens from a Lexer and
// writing the resulting RPN into a bytecode.Builder.
type Compiler[T token.Number] struct {
	lex     *lexer.Lexer[T]
	builder *bytecode.Builder[T]
	cur     token.Token[T]
}

// New binds a Compiler to lex. Each Compiler compiles exactly one
// expression, matching the Lexer's own single-use contract.
func New[T token.Number](lex *lexer.Lexer[T]) *Compiler[T] {
	return &Compiler[T]{lex: lex, builder: bytecode.New[T]()}
}

// UsedVars forwards the underlying Lexer's accumulated variable map, for
// callers running a dry compile in ignore-undefined-variable mode.
func (c *Compiler[T]) UsedVars() map[string]*T { return c.lex.UsedVars() }

// DisableOptimizer turns off constant folding and both Finalize sweeps for
// this compilation, for the optimizer-soundness property: the same
// expression compiled with and without optimization must evaluate to the
// same result.
func (c *Compiler[T]) DisableOptimizer() { c.builder.DisableOptimizer() }

// Compile runs the full grammar — a comma-separated list of statements,
// each either an assignment or a ternary — and returns the finalized
// program.
func (c *Compiler[T]) Compile() (*bytecode.Program[T], error) {
	if err := c.advance(); err != nil {
		return nil, err
	}
	if c.cur.Kind == token.End {
		return nil, c.err(token.EmptyExpression, c.cur)
	}

	numResults := 0
	for {
		if err := c.parseExpr(0); err != nil {
			return nil, err
		}
		numResults++
		if c.cur.Kind != token.ArgSep {
			break
		}
		if err := c.advance(); err != nil {
			return nil, err
		}
	}

	if c.cur.Kind != token.End {
		return nil, c.err(token.InternalError, c.cur)
	}
	return c.builder.Finalize(numResults)
}

func (c *Compiler[T]) advance() error {
	tok, err := c.lex.ReadNext()
	if err != nil {
		return err
	}
	c.cur = tok
	return nil
}

func (c *Compiler[T]) err(code token.ErrorCode, tok token.Token[T]) error {
	return c.lex.ErrAt(code, tok.Pos, tok.Lexeme)
}

// parseExpr is the precedence-climbing core: it parses one unary operand
// then repeatedly consumes a BinaryOp or Assign at or above minPrec,
// recursing for the right-hand side at the precedence the operator's
// associativity demands. A ternary encountered while minPrec permits the
// loosest binding (minPrec <= 0) is handled as its own sub-grammar, since
// it is a three-part construct rather than a simple binary fold.
func (c *Compiler[T]) parseExpr(minPrec int) error {
	if err := c.unary(); err != nil {
		return err
	}

	for {
		if c.cur.Kind == token.IfCond {
			if minPrec > 0 {
				return nil
			}
			return c.ternaryTail()
		}

		prec, ok := c.binOpPrecedence()
		if !ok || prec < minPrec {
			return nil
		}
		op := c.cur
		nextMin := prec + 1
		if op.Assoc == token.RightAssoc {
			nextMin = prec
		}
		if err := c.advance(); err != nil {
			return err
		}

		if op.Kind == token.Assign {
			target, ok := c.builder.LastValue()
			if !ok || !target.IsBareVariable() {
				return c.err(token.UnexpectedOperator, op)
			}
			op.Target = target.Ptr
		}

		if err := c.parseExpr(nextMin); err != nil {
			return err
		}

		if op.Kind == token.Assign {
			c.builder.AddAssignOp(op)
		} else if err := c.builder.AddFun(op); err != nil {
			return err
		}
	}
}

func (c *Compiler[T]) binOpPrecedence() (int, bool) {
	switch c.cur.Kind {
	case token.BinaryOp, token.Assign:
		return c.cur.Precedence, true
	default:
		return 0, false
	}
}

// ternaryTail compiles "? then : else" once the condition has already
// been parsed and pushed. IfCond/Else are emitted directly into the RPN
// stream rather than held on an operator stack: bytecode.Finalize resolves
// their forward jump offsets by LIFO pairing, so each recursive call here
// nests correctly regardless of how deeply ternaries are chained.
func (c *Compiler[T]) ternaryTail() error {
	ifTok := c.cur
	if err := c.advance(); err != nil {
		return err
	}
	c.builder.AddIf(ifTok)

	if err := c.parseExpr(0); err != nil {
		return err
	}
	if c.cur.Kind != token.Else {
		return c.err(token.MissingElseClause, c.cur)
	}
	elseTok := c.cur
	if err := c.advance(); err != nil {
		return err
	}
	c.builder.AddElse(elseTok)

	if err := c.parseExpr(0); err != nil {
		return err
	}
	c.builder.AddTok(token.Token[T]{Kind: token.EndIf})
	return nil
}

// unary handles the grammar's one non-binary-op, non-atom tier: a prefix
// operator applies to another unary, everything else falls through to a
// postfix-decorated atom.
func (c *Compiler[T]) unary() error {
	if c.cur.Kind == token.PrefixOp {
		op := c.cur
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseExpr(op.Precedence); err != nil {
			return err
		}
		return c.applyFunc(op, 1)
	}
	return c.postfixChain()
}

func (c *Compiler[T]) postfixChain() error {
	if err := c.atom(); err != nil {
		return err
	}
	for c.cur.Kind == token.PostfixOp {
		op := c.cur
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.applyFunc(op, 1); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler[T]) atom() error {
	switch c.cur.Kind {
	case token.Value, token.Variable, token.Constant:
		c.builder.AddVal(c.cur)
		return c.advance()

	case token.OpenParen:
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseExpr(0); err != nil {
			return err
		}
		if c.cur.Kind != token.CloseParen {
			return c.err(token.MissingParens, c.cur)
		}
		return c.advance()

	case token.Function:
		return c.call()

	default:
		return c.err(token.ValExpected, c.cur)
	}
}

// call compiles a function's argument list. The lexer has already
// verified an open paren must follow a Function token, so the advance
// past the name always lands on one.
func (c *Compiler[T]) call() error {
	fnTok := c.cur
	if err := c.advance(); err != nil {
		return err
	}
	if c.cur.Kind != token.OpenParen {
		return c.err(token.UnexpectedParens, c.cur)
	}
	if err := c.advance(); err != nil {
		return err
	}

	argc := 0
	if c.cur.Kind != token.CloseParen {
		for {
			if err := c.parseExpr(0); err != nil {
				return err
			}
			argc++
			if c.cur.Kind != token.ArgSep {
				break
			}
			if err := c.advance(); err != nil {
				return err
			}
		}
	}
	if c.cur.Kind != token.CloseParen {
		return c.err(token.MissingParens, c.cur)
	}
	if err := c.advance(); err != nil {
		return err
	}
	return c.applyFunc(fnTok, argc)
}

// applyFunc validates an arity-bearing token (function, prefix or postfix
// operator) against the actual argument count reached, then emits it.
// A negative Argc marks a variadic function; MinArgc is its floor.
func (c *Compiler[T]) applyFunc(tok token.Token[T], argc int) error {
	if tok.Argc >= 0 {
		if argc > tok.Argc {
			return c.err(token.TooManyParams, tok)
		}
		if argc < tok.Argc {
			return c.err(token.TooFewParams, tok)
		}
	} else if argc < tok.MinArgc {
		return c.err(token.TooFewParams, tok)
	}
	tok.Argc = argc
	return c.builder.AddFun(tok)
}
