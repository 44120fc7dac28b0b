// Package muparser is the Parser façade: it binds a registry, lexer,
// compiler and evaluator into the single "set expression, evaluate"
// workflow a host application sees, matching §4.5's public contract.
package muparser

import (
	"io"
	"os"

	"muparser/bytecode"
	"muparser/compiler"
	"muparser/evalengine"
	"muparser/lexer"
	"muparser/registry"
	"muparser/token"
)

// Parser is the root generic type: one instance per logical expression
// slot, bound to one Registry of variables/constants/functions/operators.
// Not safe for concurrent mutation or evaluation — §5's single-threaded
// cooperative model — though independent Parser instances never share
// state and may run on different goroutines without coordination.
type Parser[T token.Number] struct {
	reg     *registry.Registry[T]
	ev      *evalengine.Evaluator[T]
	factory func(name string) *T

	expr string
	prog *bytecode.Program[T]

	dumpBytecode bool
	dumpWriter   io.Writer
}

// New builds a Parser. integer selects integer-mode literal recognizers
// (see registry.New); opts override the identifier/operator character
// sets before any name is defined.
func New[T token.Number](integer bool, opts ...Option) *Parser[T] {
	cfg := &Config{}
	for _, o := range opts {
		o(cfg)
	}
	reg := registry.New[T](integer)
	if cfg.identChars != "" {
		reg.SetNameChars(cfg.identChars)
	}
	if cfg.oprtChars != "" {
		reg.SetOprtChars(cfg.oprtChars)
	}
	return &Parser[T]{
		reg:        reg,
		ev:         evalengine.New[T](),
		dumpWriter: os.Stderr,
	}
}

// SetDebugDump toggles the two advisory diagnostic dumps: the compiled
// bytecode (a process-wide flag), written to w (os.Stderr if w is nil),
// and the operand stack trace during evaluation (this Parser's evaluator
// only), which is always written to os.Stderr and never to w. The Go
// analogue of ParserBase::EnableDebugDump's two boolean flags.
func (p *Parser[T]) SetDebugDump(dumpBytecode, dumpStack bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	p.dumpBytecode = dumpBytecode
	p.dumpWriter = w
	p.ev.SetDumpStack(dumpStack)
	bytecode.DumpBytecode.Store(dumpBytecode)
}

// SetExpression rebinds the input text and invalidates any compiled RPN;
// the next Evaluate/EvaluateMulti call recompiles.
func (p *Parser[T]) SetExpression(expr string) {
	p.expr = expr
	p.prog = nil
}

// GetExpression returns the text last passed to SetExpression.
func (p *Parser[T]) GetExpression() string {
	return p.expr
}

// Registry exposes the Parser's underlying binding set. Exists for
// collaborators that need to evaluate against the exact same
// variable/constant/function/operator state the Parser itself compiles
// against — naiveeval's cross-check evaluator being the motivating case
// — rather than for general mutation; prefer the Define*/Remove* methods
// above for that.
func (p *Parser[T]) Registry() *registry.Registry[T] {
	return p.reg
}

// compile lazily (re)builds the RPN program for the current expression,
// matching "compile if needed" in §4.5. A failed compile leaves the
// Parser in string-parse mode: prog stays nil so the next Evaluate call
// retries from the same source text rather than being stuck on a partial
// result.
func (p *Parser[T]) compile() error {
	if p.prog != nil {
		return nil
	}
	lx := lexer.New[T](p.expr, p.reg)
	if p.factory != nil {
		lx.SetVariableFactory(p.factory)
	}
	c := compiler.New[T](lx)
	prog, err := c.Compile()
	if err != nil {
		return err
	}
	if p.dumpBytecode {
		prog.Dump(p.dumpWriter)
	}
	p.prog = prog
	return nil
}

// Evaluate compiles (if needed) and runs the current expression, returning
// its last comma-separated result.
func (p *Parser[T]) Evaluate() (T, error) {
	if err := p.compile(); err != nil {
		var zero T
		return zero, err
	}
	return p.ev.Eval(p.prog)
}

// EvaluateMulti compiles (if needed) and runs the current expression,
// returning every top-level comma-separated result.
func (p *Parser[T]) EvaluateMulti() ([]T, error) {
	if err := p.compile(); err != nil {
		return nil, err
	}
	return p.ev.EvalMulti(p.prog)
}

// invalidate drops any compiled RPN, forcing a recompile on the next
// Evaluate call — every mutation to the registry must call this, since a
// compiled Program may hold addresses or fused constants resolved against
// the registry state as it stood at compile time.
func (p *Parser[T]) invalidate() {
	p.prog = nil
}

// DefineVariable binds name to addr.
func (p *Parser[T]) DefineVariable(name string, addr *T) error {
	if err := p.reg.DefineVariable(name, addr); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// RemoveVariable removes a variable binding, if present.
func (p *Parser[T]) RemoveVariable(name string) {
	p.reg.RemoveVariable(name)
	p.invalidate()
}

// ClearVariables removes every variable binding.
func (p *Parser[T]) ClearVariables() {
	p.reg.ClearVariables()
	p.invalidate()
}

// DefineConstant registers a named constant value.
func (p *Parser[T]) DefineConstant(name string, val T) error {
	if err := p.reg.DefineConstant(name, val); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// DefineFunction registers a fixed-arity function callback.
func (p *Parser[T]) DefineFunction(name string, fn token.Func[T], argc int) error {
	if err := p.reg.DefineFunction(name, fn, argc, argc); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// DefineVariadicFunction registers a variable-arity function callback,
// enforced with a floor of minArgc arguments (see §9's resolved
// "sum()/avg() with zero arguments" open question).
func (p *Parser[T]) DefineVariadicFunction(name string, fn token.Func[T], minArgc int) error {
	if err := p.reg.DefineFunction(name, fn, -1, minArgc); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// DefineBinaryOperator registers a binary operator callback with
// precedence and associativity.
func (p *Parser[T]) DefineBinaryOperator(name string, fn token.Func[T], prec int, assoc token.Associativity) error {
	if err := p.reg.DefineBinaryOperator(name, fn, prec, assoc); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// DefinePrefixOperator registers a prefix operator callback.
func (p *Parser[T]) DefinePrefixOperator(name string, fn token.Func[T], prec int) error {
	if err := p.reg.DefinePrefixOperator(name, fn, prec); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// DefinePostfixOperator registers a postfix operator callback.
func (p *Parser[T]) DefinePostfixOperator(name string, fn token.Func[T]) error {
	if err := p.reg.DefinePostfixOperator(name, fn); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// AddValueRecognizer prepends fn to the literal recognizer chain.
func (p *Parser[T]) AddValueRecognizer(fn registry.ValueRecognizer[T]) {
	p.reg.AddValueRecognizer(fn)
	p.invalidate()
}

// SetVariableFactory installs the callback used to lazily materialize an
// address for an otherwise-undefined identifier encountered during
// compilation. Passing nil disables lazy variable creation.
func (p *Parser[T]) SetVariableFactory(fn func(name string) *T) {
	p.factory = fn
	p.invalidate()
}

// GetUsedVariables performs a dry compile of the current expression in
// "ignore undefined variables" mode and returns the identifier → address
// map the reader collected, without disturbing the Parser's own compiled
// state — every other error still surfaces, only the UnassignableToken an
// unresolved identifier would raise is suppressed (folded into the
// zero-sentinel placeholder the dry-compile
// lexer installs for unresolved identifiers).
func (p *Parser[T]) GetUsedVariables() (map[string]*T, error) {
	lx := lexer.New[T](p.expr, p.reg)
	lx.SetIgnoreUndefinedVar(true)
	if p.factory != nil {
		lx.SetVariableFactory(p.factory)
	}
	c := compiler.New[T](lx)
	if _, err := c.Compile(); err != nil {
		return nil, err
	}
	return c.UsedVars(), nil
}
