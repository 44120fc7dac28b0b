package naiveeval

import (
	"muparser/registry"
	"muparser/token"
)

// Precedence constants, independently duplicated from the builtin table
// the core lexer owns (see lexer/builtins.go) rather than imported, since
// that table is unexported — the two must still agree on relative
// ordering for the cross-check property to mean anything.
const (
	precAssign = 0
	precLor    = 1
	precLand   = 2
	precCmp    = 4
	precAddSub = 5
	precMulDiv = 6
	precPow    = 7
)

var builtinPrec = map[string]struct {
	prec  int
	right bool
}{
	"==": {precCmp, false}, "!=": {precCmp, false},
	"<=": {precCmp, false}, ">=": {precCmp, false},
	"&&": {precLand, false}, "||": {precLor, false},
	"<": {precCmp, false}, ">": {precCmp, false},
	"+": {precAddSub, false}, "-": {precAddSub, false},
	"*": {precMulDiv, false}, "/": {precMulDiv, false},
	"^": {precPow, true},
}

// parser walks a flat lexTok slice and builds an Expr tree, resolving
// identifiers against reg: named constant, then variable, then function
// call, then prefix/postfix operator. The core lexer tries a function call
// before constants and variables; names are unique across the registry's
// maps, so the two orders resolve every name the same way.
type parser[T token.Number] struct {
	toks []lexTok[T]
	pos  int
	reg  *registry.Registry[T]
}

// Parse compiles expr's comma-separated top-level statement list into an
// Expr slice, one per statement (mirroring the core compiler's
// numResults loop).
func Parse[T token.Number](expr string, reg *registry.Registry[T]) ([]Expr[T], error) {
	toks, err := newScanner[T](expr, reg).tokens()
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 && toks[0].kind == lexEOF {
		return nil, token.NewError(token.EmptyExpression, "", expr, 0)
	}
	p := &parser[T]{toks: toks, reg: reg}

	var stmts []Expr[T]
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, e)
		if p.cur().kind != lexComma {
			break
		}
		p.pos++
	}
	if p.cur().kind != lexEOF {
		return nil, token.NewError(token.InternalError, p.cur().text, expr, 0)
	}
	return stmts, nil
}

func (p *parser[T]) cur() lexTok[T] { return p.toks[p.pos] }

// expr is the precedence-climbing core, following the same shape as
// compiler.Compiler.parseExpr: one unary/atom operand, then as many
// binary operators at or above minPrec as the input has, recursing at
// the precedence each operator's associativity demands.
func (p *parser[T]) expr(minPrec int) (Expr[T], error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		if p.cur().kind == lexQuestion {
			if minPrec > 0 {
				return left, nil
			}
			return p.ternaryTail(left)
		}

		op, prec, right, ok := p.peekBinOp()
		if !ok || prec < minPrec {
			return left, nil
		}
		p.pos++
		nextMin := prec + 1
		if right {
			nextMin = prec
		}

		if op == "=" {
			v, ok := left.(*Variable[T])
			if !ok {
				return nil, token.NewError(token.UnexpectedOperator, op, "", 0)
			}
			rhs, err := p.expr(nextMin)
			if err != nil {
				return nil, err
			}
			left = &Assign[T]{Name: v.Name, Value: rhs}
			continue
		}

		rhs, err := p.expr(nextMin)
		if err != nil {
			return nil, err
		}
		left = &Binary[T]{Op: op, Left: left, Right: rhs}
	}
}

// peekBinOp reports the current token's operator symbol and precedence
// if it is a binary operator or assignment: a registered custom binary
// operator if one is bound under that symbol, else the builtin table.
func (p *parser[T]) peekBinOp() (string, int, bool, bool) {
	t := p.cur()
	if t.kind != lexOp {
		return "", 0, false, false
	}
	if t.text == "=" {
		return "=", precAssign, true, true
	}
	if def, ok := p.reg.BinOps[t.text]; ok {
		return t.text, def.Precedence, def.Assoc == token.RightAssoc, true
	}
	if bp, ok := builtinPrec[t.text]; ok {
		return t.text, bp.prec, bp.right, true
	}
	return "", 0, false, false
}

func (p *parser[T]) ternaryTail(cond Expr[T]) (Expr[T], error) {
	p.pos++ // consume '?'
	then, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if p.cur().kind != lexColon {
		return nil, token.NewError(token.MissingElseClause, p.cur().text, "", 0)
	}
	p.pos++ // consume ':'
	els, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return &Ternary[T]{Cond: cond, Then: then, Else: els}, nil
}

// unary handles a prefix operator recursively, then falls through to a
// postfix-decorated atom — the same tier compiler.Compiler.unary models.
func (p *parser[T]) unary() (Expr[T], error) {
	t := p.cur()
	if t.kind == lexOp {
		if def, ok := p.reg.PrefixOps[t.text]; ok {
			p.pos++
			operand, err := p.expr(def.Precedence)
			if err != nil {
				return nil, err
			}
			return &Unary[T]{Op: t.text, Operand: operand}, nil
		}
	}
	return p.postfixChain()
}

func (p *parser[T]) postfixChain() (Expr[T], error) {
	e, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == lexOp {
		if _, ok := p.reg.PostfixOps[p.cur().text]; !ok {
			break
		}
		op := p.cur().text
		p.pos++
		e = &Postfix[T]{Op: op, Operand: e}
	}
	return e, nil
}

func (p *parser[T]) atom() (Expr[T], error) {
	t := p.cur()
	switch t.kind {
	case lexNumber:
		p.pos++
		return &Literal[T]{Value: t.value}, nil

	case lexLParen:
		p.pos++
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if p.cur().kind != lexRParen {
			return nil, token.NewError(token.MissingParens, p.cur().text, "", 0)
		}
		p.pos++
		return e, nil

	case lexIdent:
		return p.ident()

	default:
		return nil, token.NewError(token.ValExpected, t.text, "", 0)
	}
}

// ident resolves a bare identifier: named constant, then variable, then a
// function call (only if immediately followed by an open paren). The core
// lexer's ReadNext chain checks functions first; with names unique across
// the registry's maps the result is the same.
func (p *parser[T]) ident() (Expr[T], error) {
	name := p.cur().text
	p.pos++

	if v, ok := p.reg.Consts[name]; ok {
		return &Literal[T]{Value: v}, nil
	}
	if _, ok := p.reg.Vars[name]; ok {
		return &Variable[T]{Name: name}, nil
	}
	if _, ok := p.reg.Funcs[name]; ok {
		return p.call(name)
	}
	return nil, token.NewError(token.UnassignableToken, name, "", 0)
}

func (p *parser[T]) call(name string) (Expr[T], error) {
	if p.cur().kind != lexLParen {
		return nil, token.NewError(token.UnexpectedParens, p.cur().text, "", 0)
	}
	p.pos++

	var args []Expr[T]
	if p.cur().kind != lexRParen {
		for {
			a, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.cur().kind != lexComma {
				break
			}
			p.pos++
		}
	}
	if p.cur().kind != lexRParen {
		return nil, token.NewError(token.MissingParens, p.cur().text, "", 0)
	}
	p.pos++

	def := p.reg.Funcs[name]
	if def.Argc >= 0 {
		if len(args) > def.Argc {
			return nil, token.NewError(token.TooManyParams, name, "", 0)
		}
		if len(args) < def.Argc {
			return nil, token.NewError(token.TooFewParams, name, "", 0)
		}
	} else if len(args) < def.MinArgc {
		return nil, token.NewError(token.TooFewParams, name, "", 0)
	}
	return &Call[T]{Name: name, Args: args}, nil
}
