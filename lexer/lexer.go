// Package lexer implements the token reader: a pull-based, context
// sensitive classifier that returns one Token per ReadNext call, gated by
// a bitmask of syntax flags that constrains what kind may legally follow
// what. Grounded on the original muParserTokenReader's ReadNextToken
// dispatch order and flag table.
package lexer

import (
	"strings"

	"muparser/registry"
	"muparser/token"
)

// SynFlag is a bit set over the categories the reader enforces between
// tokens. A bit set means the corresponding token kind is currently
// forbidden — mirrors ESynCodes in the original token reader exactly,
// including its naming (noBO = "no Bracket Open", noBC = "no Bracket
// Close", and so on) so the two stay easy to cross-reference.
type SynFlag uint32

const (
	noBO SynFlag = 1 << iota // no Bracket Open: forbid '('
	noBC                      // no Bracket Close: forbid ')'
	noVAL
	noVAR
	noArgSep
	noFUN
	noOPT // no binary OPerator (built-in or user)
	noPOSTOP
	noINFIXOP // forbids a PrefixOp (named for the original's "infix operator" term)
	noEND
	noASSIGN
	noIF
	noELSE
)

const noANY = SynFlag(^uint32(0))

// startOfLine is the flag state §3 describes: "Initial state forbids
// '),', ',', postfix, assign, '?', ':', binary operator."
const startOfLine = noOPT | noBC | noPOSTOP | noASSIGN | noIF | noELSE | noArgSep

// Lexer is the generic token reader bound to one Registry and one input
// expression. It is stateful and single-use per SetExpr call, matching
// the original's per-formula ReInit.
type Lexer[T token.Number] struct {
	expr    string
	origLen int
	pos     int
	flags   SynFlag
	bracketDepth int
	lastKind     token.Kind

	reg *registry.Registry[T]

	ignoreUndefVar bool
	factory        func(name string) *T
	usedVar        map[string]*T
	zero           T
}

// New binds a Lexer to expr against reg. A trailing space is appended to
// the stored expression, matching the original's SetExpr workaround for
// platform-specific end-of-buffer stream quirks — harmless here, but kept
// so byte positions line up with expr exactly up to (not including) that
// padding. Value recognizers are handed the padded string; the default
// ones stop at the space without consuming it.
func New[T token.Number](expr string, reg *registry.Registry[T]) *Lexer[T] {
	l := &Lexer[T]{
		expr:    expr + " ",
		origLen: len(expr),
		reg:     reg,
	}
	l.flags = startOfLine
	l.usedVar = make(map[string]*T)
	return l
}

// SetIgnoreUndefinedVar toggles the "dry compile" mode GetUsedVariables
// uses: undefined identifiers are treated as zero-sentinel variables
// instead of raising UnassignableToken.
func (l *Lexer[T]) SetIgnoreUndefinedVar(ignore bool) { l.ignoreUndefVar = ignore }

// SetVariableFactory installs the callback used to lazily materialize an
// address for an otherwise-undefined identifier.
func (l *Lexer[T]) SetVariableFactory(fn func(name string) *T) { l.factory = fn }

// UsedVars returns the identifier→address map accumulated by this Lexer's
// run — every name resolved as a Variable or undefined-variable token.
func (l *Lexer[T]) UsedVars() map[string]*T { return l.usedVar }

// Pos returns the current byte cursor into the (unpadded) expression.
func (l *Lexer[T]) Pos() int {
	if l.pos > l.origLen {
		return l.origLen
	}
	return l.pos
}

// Expr returns the original (unpadded) expression text, for error
// messages built outside the lexer itself.
func (l *Lexer[T]) Expr() string { return l.expr[:l.origLen] }

// ErrAt builds an Error positioned at pos against this Lexer's expression,
// for callers (the compiler) that need the same formatting ReadNext uses.
func (l *Lexer[T]) ErrAt(code token.ErrorCode, pos int, tok string) *token.Error {
	return l.errAt(code, pos, tok)
}

func (l *Lexer[T]) errAt(code token.ErrorCode, pos int, tok string) *token.Error {
	return token.NewError(code, tok, l.expr[:l.origLen], pos)
}

// skipWhitespace advances past codepoints <= 0x20, mirroring the
// original's raw byte comparison (the expression's identifier/operator
// charsets are themselves ASCII-only, so a byte scan is faithful here).
// It never advances past origLen: the single padding space is not
// observable whitespace, it only exists so a literal recognizer scanning
// forward from the last real byte never reads past the end of the string.
func (l *Lexer[T]) skipWhitespace() {
	for l.pos < l.origLen && l.expr[l.pos] > 0 && l.expr[l.pos] <= 0x20 {
		l.pos++
	}
}

// extract scans the longest run of bytes in charset starting at pos,
// returning the matched substring and the position just past it — the Go
// analogue of ExtractToken's find_first_not_of scan.
func extract(s string, pos int, inSet func(byte) bool) (string, int) {
	end := pos
	for end < len(s) && inSet(s[end]) {
		end++
	}
	return s[pos:end], end
}

func byteIn(charset string) func(byte) bool {
	return func(b byte) bool { return strings.IndexByte(charset, b) >= 0 }
}

// ReadNext classifies and consumes the next token, advancing the cursor.
// Dispatch order follows §4.1 exactly.
func (l *Lexer[T]) ReadNext() (token.Token[T], error) {
	l.skipWhitespace()

	if tok, err, ok := l.isEOF(); ok || err != nil {
		return tok, err
	}
	if tok, err, ok := l.isUserBinOp(); ok || err != nil {
		return tok, err
	}
	if tok, err, ok := l.isFunTok(); ok || err != nil {
		return tok, err
	}
	if tok, err, ok := l.isBuiltIn(); ok || err != nil {
		return tok, err
	}
	if tok, err, ok := l.isArgSep(); ok || err != nil {
		return tok, err
	}
	if tok, err, ok := l.isValTok(); ok || err != nil {
		return tok, err
	}
	if tok, err, ok := l.isVarTok(); ok || err != nil {
		return tok, err
	}
	if tok, err, ok := l.isPrefixOpTok(); ok || err != nil {
		return tok, err
	}
	if tok, err, ok := l.isPostfixOpTok(); ok || err != nil {
		return tok, err
	}
	if l.ignoreUndefVar || l.factory != nil {
		if tok, err, ok := l.isUndefVarTok(); ok || err != nil {
			return tok, err
		}
	}

	name, end := extract(l.expr, l.pos, byteIn(l.reg.NameChars()))
	if end != l.pos {
		return token.Token[T]{}, l.errAt(token.UnassignableToken, l.pos, name)
	}
	return token.Token[T]{}, l.errAt(token.UnassignableToken, l.pos, strings.TrimRight(l.expr[l.pos:], " "))
}

func (l *Lexer[T]) isEOF() (token.Token[T], error, bool) {
	if l.pos < l.origLen {
		return token.Token[T]{}, nil, false
	}
	if l.flags&noEND != 0 {
		return token.Token[T]{}, l.errAt(token.UnexpectedEOF, l.pos, ""), true
	}
	if l.bracketDepth > 0 {
		return token.Token[T]{}, l.errAt(token.MissingParens, l.pos, ")"), true
	}
	l.flags = 0
	l.lastKind = token.End
	return token.Token[T]{Kind: token.End, Pos: l.pos}, nil, true
}

// isUserBinOp scans a registered user binary operator, skipping any
// candidate that coincides with a built-in symbol (those are resolved by
// isBuiltIn instead, preserving built-in precedence/associativity). If the
// flag state forbids a binary operator here, retries as a prefix operator
// — this is the longest-match "yield to prefix" rule that makes "3*-x"
// parse.
func (l *Lexer[T]) isUserBinOp() (token.Token[T], error, bool) {
	if len(l.reg.BinOps) == 0 {
		return token.Token[T]{}, nil, false
	}
	cand, end := extract(l.expr, l.pos, byteIn(l.reg.OprtChars()))
	if end == l.pos {
		return token.Token[T]{}, nil, false
	}
	for _, b := range builtinTable {
		if cand == b.symbol {
			return token.Token[T]{}, nil, false
		}
	}
	name, def, ok := longestMatch(l.reg.BinOps, cand)
	if !ok {
		return token.Token[T]{}, nil, false
	}
	if l.flags&noOPT != 0 {
		return l.isPrefixOpTok()
	}
	l.pos += len(name)
	l.flags = noBC | noOPT | noArgSep | noPOSTOP | noEND | noASSIGN
	l.lastKind = token.BinaryOp
	return token.Token[T]{Kind: token.BinaryOp, Lexeme: name, Pos: l.pos - len(name), Fn: def.Fn, Precedence: def.Precedence, Assoc: def.Assoc, Argc: 2}, nil, true
}

// longestMatch finds the registered key of greatest length that is a
// prefix of cand, mirroring the original's reverse iteration over a map
// sorted ascending by key length (longer names first).
func longestMatch[D any](m map[string]D, cand string) (string, D, bool) {
	best := ""
	var bestDef D
	found := false
	for name, def := range m {
		if strings.HasPrefix(cand, name) && len(name) > len(best) {
			best, bestDef, found = name, def, true
		}
	}
	return best, bestDef, found
}

func (l *Lexer[T]) isFunTok() (token.Token[T], error, bool) {
	name, end := extract(l.expr, l.pos, byteIn(l.reg.NameChars()))
	if end == l.pos {
		return token.Token[T]{}, nil, false
	}
	def, ok := l.reg.Funcs[name]
	if !ok {
		return token.Token[T]{}, nil, false
	}
	if end >= len(l.expr) || l.expr[end] != '(' {
		return token.Token[T]{}, nil, false
	}
	if l.flags&noFUN != 0 {
		return token.Token[T]{}, l.errAt(token.UnexpectedFunction, l.pos, name), true
	}
	l.pos = end
	l.flags = noANY &^ noBO
	l.lastKind = token.Function
	return token.Token[T]{Kind: token.Function, Lexeme: name, Pos: end - len(name), Fn: def.Fn, Argc: def.Argc, MinArgc: def.MinArgc}, nil, true
}

func (l *Lexer[T]) isBuiltIn() (token.Token[T], error, bool) {
	for _, b := range builtinTable {
		if !strings.HasPrefix(l.expr[l.pos:], b.symbol) {
			continue
		}
		start := l.pos
		switch b.kind {
		case token.Assign:
			if l.flags&noASSIGN != 0 {
				return token.Token[T]{}, l.errAt(token.UnexpectedOperator, l.pos, b.symbol), true
			}
			if l.flags&noOPT != 0 {
				if tok, err, ok := l.isPrefixOpTok(); ok || err != nil {
					return tok, err, ok
				}
				return token.Token[T]{}, l.errAt(token.UnexpectedOperator, l.pos, b.symbol), true
			}
			l.flags = noBC | noOPT | noArgSep | noPOSTOP | noASSIGN | noIF | noELSE | noEND
			l.pos += len(b.symbol)
			l.lastKind = token.Assign
			return token.Token[T]{Kind: token.Assign, Lexeme: b.symbol, Pos: start}, nil, true

		case token.OpenParen:
			if l.flags&noBO != 0 {
				return token.Token[T]{}, l.errAt(token.UnexpectedParens, l.pos, b.symbol), true
			}
			if l.lastKind == token.Function {
				l.flags = noOPT | noEND | noArgSep | noPOSTOP | noASSIGN | noIF | noELSE
			} else {
				l.flags = noBC | noOPT | noEND | noArgSep | noPOSTOP | noASSIGN | noIF | noELSE
			}
			l.bracketDepth++
			l.pos += len(b.symbol)
			l.lastKind = token.OpenParen
			return token.Token[T]{Kind: token.OpenParen, Lexeme: b.symbol, Pos: start}, nil, true

		case token.CloseParen:
			if l.flags&noBC != 0 {
				return token.Token[T]{}, l.errAt(token.UnexpectedParens, l.pos, b.symbol), true
			}
			l.flags = noBO | noVAR | noVAL | noFUN | noINFIXOP | noASSIGN
			l.bracketDepth--
			if l.bracketDepth < 0 {
				return token.Token[T]{}, l.errAt(token.UnexpectedParens, l.pos, b.symbol), true
			}
			l.pos += len(b.symbol)
			l.lastKind = token.CloseParen
			return token.Token[T]{Kind: token.CloseParen, Lexeme: b.symbol, Pos: start}, nil, true

		case token.IfCond:
			if l.flags&noIF != 0 {
				return token.Token[T]{}, l.errAt(token.UnexpectedConditional, l.pos, b.symbol), true
			}
			l.flags = noBC | noPOSTOP | noEND | noOPT | noIF | noELSE
			l.pos += len(b.symbol)
			l.lastKind = token.IfCond
			return token.Token[T]{Kind: token.IfCond, Lexeme: b.symbol, Pos: start}, nil, true

		case token.Else:
			if l.flags&noELSE != 0 {
				return token.Token[T]{}, l.errAt(token.UnexpectedConditional, l.pos, b.symbol), true
			}
			l.flags = noBC | noPOSTOP | noEND | noOPT | noIF | noELSE
			l.pos += len(b.symbol)
			l.lastKind = token.Else
			return token.Token[T]{Kind: token.Else, Lexeme: b.symbol, Pos: start}, nil, true

		default: // arithmetic/relational/logical binary operator
			if l.flags&noOPT != 0 {
				if tok, err, ok := l.isPrefixOpTok(); ok || err != nil {
					return tok, err, ok
				}
				return token.Token[T]{}, l.errAt(token.UnexpectedOperator, l.pos, b.symbol), true
			}
			l.flags = noBC | noOPT | noArgSep | noPOSTOP | noEND | noASSIGN
			l.pos += len(b.symbol)
			l.lastKind = token.BinaryOp
			return token.Token[T]{Kind: token.BinaryOp, Lexeme: b.symbol, Pos: start, Fn: builtinFn[T](b.symbol), Precedence: b.prec, Assoc: b.assoc, Argc: 2}, nil, true
		}
	}
	return token.Token[T]{}, nil, false
}

func (l *Lexer[T]) isArgSep() (token.Token[T], error, bool) {
	if l.pos >= len(l.expr) || l.expr[l.pos] != ',' {
		return token.Token[T]{}, nil, false
	}
	if l.flags&noArgSep != 0 {
		return token.Token[T]{}, l.errAt(token.UnexpectedArgSep, l.pos, ","), true
	}
	l.flags = noBC | noOPT | noEND | noArgSep | noPOSTOP | noASSIGN
	start := l.pos
	l.pos++
	l.lastKind = token.ArgSep
	return token.Token[T]{Kind: token.ArgSep, Lexeme: ",", Pos: start}, nil, true
}

func (l *Lexer[T]) isValTok() (token.Token[T], error, bool) {
	// Named constant first.
	name, end := extract(l.expr, l.pos, byteIn(l.reg.NameChars()))
	if end != l.pos {
		if v, ok := l.reg.Consts[name]; ok {
			if l.flags&noVAL != 0 {
				return token.Token[T]{}, l.errAt(token.UnexpectedValue, l.pos, name), true
			}
			start := l.pos
			l.pos = end
			l.flags = noVAL | noVAR | noFUN | noBO | noINFIXOP | noASSIGN
			l.lastKind = token.Constant
			return token.Token[T]{Kind: token.Constant, Lexeme: name, Pos: start, Multiplier: 0, Fixed: v}, nil, true
		}
	}

	// Recognizer chain, most-recently-added first.
	for _, rec := range l.reg.Recognizers() {
		start := l.pos
		if v, newPos, ok := rec(l.expr, l.pos); ok {
			if l.flags&noVAL != 0 {
				return token.Token[T]{}, l.errAt(token.UnexpectedValue, l.pos, l.expr[start:newPos]), true
			}
			lexeme := l.expr[start:newPos]
			l.pos = newPos
			l.flags = noVAL | noVAR | noFUN | noBO | noINFIXOP | noASSIGN
			l.lastKind = token.Value
			return token.Token[T]{Kind: token.Value, Lexeme: lexeme, Pos: start, Multiplier: 0, Fixed: v}, nil, true
		}
	}

	return token.Token[T]{}, nil, false
}

func (l *Lexer[T]) isVarTok() (token.Token[T], error, bool) {
	if len(l.reg.Vars) == 0 {
		return token.Token[T]{}, nil, false
	}
	name, end := extract(l.expr, l.pos, byteIn(l.reg.NameChars()))
	if end == l.pos {
		return token.Token[T]{}, nil, false
	}
	def, ok := l.reg.Vars[name]
	if !ok {
		return token.Token[T]{}, nil, false
	}
	if l.flags&noVAR != 0 {
		return token.Token[T]{}, l.errAt(token.UnexpectedVariable, l.pos, name), true
	}
	start := l.pos
	l.pos = end
	l.usedVar[name] = def.Addr
	l.flags = noVAL | noVAR | noFUN | noBO | noINFIXOP
	l.lastKind = token.Variable
	return token.Token[T]{Kind: token.Variable, Lexeme: name, Pos: start, Multiplier: 1, Fixed: 0, Ptr: def.Addr}, nil, true
}

func (l *Lexer[T]) isPrefixOpTok() (token.Token[T], error, bool) {
	cand, end := extract(l.expr, l.pos, byteIn(l.reg.OprtChars()))
	if end == l.pos {
		return token.Token[T]{}, nil, false
	}
	name, def, ok := longestMatch(l.reg.PrefixOps, cand)
	if !ok {
		return token.Token[T]{}, nil, false
	}
	if l.flags&noINFIXOP != 0 {
		return token.Token[T]{}, l.errAt(token.UnexpectedOperator, l.pos, name), true
	}
	start := l.pos
	l.pos += len(name)
	l.flags = noPOSTOP | noINFIXOP | noOPT | noBC | noASSIGN
	l.lastKind = token.PrefixOp
	return token.Token[T]{Kind: token.PrefixOp, Lexeme: name, Pos: start, Fn: def.Fn, Precedence: def.Precedence, Argc: 1}, nil, true
}

func (l *Lexer[T]) isPostfixOpTok() (token.Token[T], error, bool) {
	if l.flags&noPOSTOP != 0 {
		return token.Token[T]{}, nil, false
	}
	cand, end := extract(l.expr, l.pos, byteIn(l.reg.OprtChars()))
	if end == l.pos {
		return token.Token[T]{}, nil, false
	}
	name, def, ok := longestMatch(l.reg.PostfixOps, cand)
	if !ok {
		return token.Token[T]{}, nil, false
	}
	start := l.pos
	l.pos += len(name)
	l.flags = noVAL | noVAR | noFUN | noBO | noPOSTOP | noASSIGN
	l.lastKind = token.PostfixOp
	return token.Token[T]{Kind: token.PostfixOp, Lexeme: name, Pos: start, Fn: def.Fn, Argc: 1}, nil, true
}

func (l *Lexer[T]) isUndefVarTok() (token.Token[T], error, bool) {
	name, end := extract(l.expr, l.pos, byteIn(l.reg.NameChars()))
	if end == l.pos {
		return token.Token[T]{}, nil, false
	}
	if l.flags&noVAR != 0 {
		return token.Token[T]{}, l.errAt(token.UnexpectedVariable, l.pos, name), true
	}
	start := l.pos
	var ptr *T
	if l.factory != nil {
		ptr = l.factory(name)
		l.reg.Vars[name] = registry.VarDef[T]{Addr: ptr}
	} else {
		ptr = &l.zero
	}
	l.usedVar[name] = ptr
	l.pos = end
	l.flags = noVAL | noVAR | noFUN | noBO | noPOSTOP | noINFIXOP
	l.lastKind = token.Variable
	return token.Token[T]{Kind: token.Variable, Lexeme: name, Pos: start, Multiplier: 1, Fixed: 0, Ptr: ptr}, nil, true
}
