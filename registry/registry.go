// Package registry holds the name→definition maps a Parser resolves
// identifiers against: variables, constants, functions, and the three
// operator flavors, plus the pluggable chain of value-literal recognizers.
// A name is unique across the union of all six maps; registering a name
// already claimed by another map is a define-time NameConflict.
package registry

import (
	"regexp"
	"strings"

	"muparser/token"

	"github.com/dlclark/regexp2"
)

// ValueRecognizer attempts to read a literal starting at pos in expr. It
// returns the parsed value, the position just past the consumed text, and
// whether it matched. Recognizers are tried most-recently-added first.
type ValueRecognizer[T token.Number] func(expr string, pos int) (val T, newPos int, ok bool)

// VarDef is a variable binding: a stable caller-owned address.
type VarDef[T token.Number] struct {
	Addr *T
}

// FunDef is a registered function: its callback and declared arity.
// Argc == -1 means variadic; MinArgc is the floor enforced at apply time
// (see the resolved "sum()/avg() with zero arguments" open question).
type FunDef[T token.Number] struct {
	Fn      token.Func[T]
	Argc    int
	MinArgc int
}

// OprtDef is a registered operator: callback plus the shunting-yard
// metadata needed to resolve precedence and associativity. Postfix
// operators ignore Precedence/Assoc (fixed arity 1, applied immediately).
type OprtDef[T token.Number] struct {
	Fn         token.Func[T]
	Precedence int
	Assoc      token.Associativity
}

// Registry is the generic, per-Parser collection of every name binding
// plus the active character sets and value recognizer chain.
type Registry[T token.Number] struct {
	Vars      map[string]VarDef[T]
	Consts    map[string]T
	Funcs     map[string]FunDef[T]
	BinOps    map[string]OprtDef[T]
	PrefixOps map[string]OprtDef[T]
	PostfixOps map[string]OprtDef[T]

	recognizers []ValueRecognizer[T]

	nameChars string
	oprtChars string
	nameRE    *regexp2.Regexp
	oprtRE    *regexp2.Regexp

	integer bool // gates hex/binary recognizer installation
}

const (
	defaultNameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"
	defaultOprtChars = "+-*/^!=<>&|~'_abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// New builds an empty Registry. integer selects whether the default
// hex/binary literal recognizers are installed alongside the decimal one
// (spec.md §9 Open Question: gated on the integer-ness of T, not on a
// compile-time trait, since Go generics carry no such trait at runtime
// without an explicit witness).
func New[T token.Number](integer bool) *Registry[T] {
	r := &Registry[T]{
		Vars:       make(map[string]VarDef[T]),
		Consts:     make(map[string]T),
		Funcs:      make(map[string]FunDef[T]),
		BinOps:     make(map[string]OprtDef[T]),
		PrefixOps:  make(map[string]OprtDef[T]),
		PostfixOps: make(map[string]OprtDef[T]),
		integer:    integer,
	}
	r.SetNameChars(defaultNameChars)
	r.SetOprtChars(defaultOprtChars)
	r.installDefaultRecognizers()
	return r
}

// SetNameChars reconfigures the identifier character set and recompiles
// its validation pattern.
func (r *Registry[T]) SetNameChars(chars string) {
	r.nameChars = chars
	r.nameRE = regexp2.MustCompile("^["+classEscape(chars)+"]+$", regexp2.None)
}

// SetOprtChars reconfigures the operator character set and recompiles its
// validation pattern.
func (r *Registry[T]) SetOprtChars(chars string) {
	r.oprtChars = chars
	r.oprtRE = regexp2.MustCompile("^["+classEscape(chars)+"]+$", regexp2.None)
}

// classEscape quotes chars for use inside a character class; '-' needs
// escaping there too, or "+-*" would read as a (reversed) range.
func classEscape(chars string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(chars), "-", `\-`)
}

// NameChars reports the configured identifier character set.
func (r *Registry[T]) NameChars() string { return r.nameChars }

// OprtChars reports the configured operator character set.
func (r *Registry[T]) OprtChars() string { return r.oprtChars }

func matches(re *regexp2.Regexp, s string) bool {
	if s == "" {
		return false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return false
	}
	ok, err := re.MatchString(s)
	return err == nil && ok
}

// ValidName reports whether name is well-formed against the identifier
// character set (non-empty, no leading digit, every rune in the set).
func (r *Registry[T]) ValidName(name string) bool {
	return matches(r.nameRE, name)
}

// ValidOprtName reports whether name is well-formed against the operator
// character set, used to validate infix/postfix operator identifiers.
func (r *Registry[T]) ValidOprtName(name string) bool {
	return matches(r.oprtRE, name)
}

// taken reports whether name is already claimed by any map other than the
// one the caller is about to insert into — the cross-map uniqueness rule.
func (r *Registry[T]) taken(name string, except string) bool {
	if except != "var" {
		if _, ok := r.Vars[name]; ok {
			return true
		}
	}
	if except != "const" {
		if _, ok := r.Consts[name]; ok {
			return true
		}
	}
	if except != "func" {
		if _, ok := r.Funcs[name]; ok {
			return true
		}
	}
	if except != "binop" {
		if _, ok := r.BinOps[name]; ok {
			return true
		}
	}
	if except != "prefixop" {
		if _, ok := r.PrefixOps[name]; ok {
			return true
		}
	}
	if except != "postfixop" {
		if _, ok := r.PostfixOps[name]; ok {
			return true
		}
	}
	return false
}

func newErr(code token.ErrorCode, name string) *token.Error {
	return token.NewError(code, name, "", 0)
}

// DefineVariable binds name to addr. Fails with InvalidVarPtr on a nil
// address, InvalidName on a malformed name, and NameConflict if name is
// already registered elsewhere.
func (r *Registry[T]) DefineVariable(name string, addr *T) error {
	if addr == nil {
		return newErr(token.InvalidVarPtr, name)
	}
	if !r.ValidName(name) {
		return newErr(token.InvalidName, name)
	}
	if r.taken(name, "var") {
		return newErr(token.NameConflict, name)
	}
	r.Vars[name] = VarDef[T]{Addr: addr}
	return nil
}

// RemoveVariable removes a variable binding, if present. Absence is not an
// error: callers may remove speculatively.
func (r *Registry[T]) RemoveVariable(name string) {
	delete(r.Vars, name)
}

// ClearVariables removes every variable binding.
func (r *Registry[T]) ClearVariables() {
	r.Vars = make(map[string]VarDef[T])
}

// DefineConstant registers a named constant value.
func (r *Registry[T]) DefineConstant(name string, val T) error {
	if !r.ValidName(name) {
		return newErr(token.InvalidName, name)
	}
	if r.taken(name, "const") {
		return newErr(token.NameConflict, name)
	}
	r.Consts[name] = val
	return nil
}

// DefineFunction registers a callback under name with the given arity
// (-1 for variadic). minArgc is the floor enforced for variadic functions.
func (r *Registry[T]) DefineFunction(name string, fn token.Func[T], argc, minArgc int) error {
	if fn == nil {
		return newErr(token.InvalidFunPtr, name)
	}
	if !r.ValidName(name) {
		return newErr(token.InvalidName, name)
	}
	if r.taken(name, "func") {
		return newErr(token.NameConflict, name)
	}
	r.Funcs[name] = FunDef[T]{Fn: fn, Argc: argc, MinArgc: minArgc}
	return nil
}

// DefineBinaryOperator registers a binary operator callback with
// precedence and associativity.
func (r *Registry[T]) DefineBinaryOperator(name string, fn token.Func[T], prec int, assoc token.Associativity) error {
	if fn == nil {
		return newErr(token.InvalidFunPtr, name)
	}
	if !r.ValidOprtName(name) {
		return newErr(token.InvalidName, name)
	}
	if r.taken(name, "binop") {
		return newErr(token.NameConflict, name)
	}
	r.BinOps[name] = OprtDef[T]{Fn: fn, Precedence: prec, Assoc: assoc}
	return nil
}

// DefinePrefixOperator registers a prefix (infix, in the original's
// terminology — applied before its single operand) operator callback.
func (r *Registry[T]) DefinePrefixOperator(name string, fn token.Func[T], prec int) error {
	if fn == nil {
		return newErr(token.InvalidFunPtr, name)
	}
	if !r.ValidOprtName(name) {
		return newErr(token.InvalidInfixIdent, name)
	}
	if r.taken(name, "prefixop") {
		return newErr(token.NameConflict, name)
	}
	r.PrefixOps[name] = OprtDef[T]{Fn: fn, Precedence: prec}
	return nil
}

// DefinePostfixOperator registers a postfix operator callback (fixed
// arity 1, applied immediately when read).
func (r *Registry[T]) DefinePostfixOperator(name string, fn token.Func[T]) error {
	if fn == nil {
		return newErr(token.InvalidFunPtr, name)
	}
	if !r.ValidOprtName(name) {
		return newErr(token.InvalidPostfixIdent, name)
	}
	if r.taken(name, "postfixop") {
		return newErr(token.NameConflict, name)
	}
	r.PostfixOps[name] = OprtDef[T]{Fn: fn}
	return nil
}

// AddValueRecognizer prepends fn to the recognizer chain so it is tried
// before every previously registered recognizer, including the defaults
// installed by New — mirroring the original's push_front on m_vIdentFun
// ("give user defined callbacks a higher priority than the built-in
// ones").
func (r *Registry[T]) AddValueRecognizer(fn ValueRecognizer[T]) {
	r.recognizers = append([]ValueRecognizer[T]{fn}, r.recognizers...)
}

// Recognizers returns the current chain, most-recently-added first.
func (r *Registry[T]) Recognizers() []ValueRecognizer[T] {
	return r.recognizers
}
