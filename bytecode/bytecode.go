// Package bytecode builds and optimizes the linear RPN program the
// compiler emits. A Builder accumulates tokens one at a time, folding
// constants and absorbing linear combinations as it goes; Finalize runs
// two further sweeps over the finished sequence and computes the shape
// fingerprint stored on the Program. The evaluator runs every program
// through one generic loop and does not consult the fingerprint.
//
// Grounded on the original bytecode optimizer's add/fold/substitute/
// compress pipeline, reworked around a Go slice instead of an in-place
// mutable vector plus pop/push helpers.
package bytecode

import (
	"muparser/token"
)

// disableOptimizerGlobal, when true, turns every Builder newly constructed by
// New into a pass-through recorder: AddFun never folds, and Finalize
// skips both sweeps. This is the process-wide toggle §8's optimizer
// soundness property exercises by comparing a Builder's output with it
// on vs. off.
var disableOptimizerGlobal bool

// SetDisableOptimizer toggles the process-wide optimizer switch. Meant
// for tests only; production callers never need it.
func SetDisableOptimizer(disable bool) { disableOptimizerGlobal = disable }

// Program is the finished artifact: a terminated RPN sequence plus the
// metadata the evaluator needs to run it without recomputing anything.
type Program[T token.Number] struct {
	RPN           []token.Token[T]
	MaxStackDepth int
	Fingerprint   uint64
	Unoptimizable bool
	NoMul         bool // every ValueEx has Multiplier == 1 (or is a pure constant)
	NumResults    int  // top-level comma count of the compiled expression (>= 1)
}

// maxOptimizableOpcodes bounds the shape fingerprint: programs longer
// than this are always Unoptimizable, matching the §9 Open Question
// resolution (documented in DESIGN.md) of covering up to 16 opcodes.
const maxOptimizableOpcodes = 16

// Builder accumulates RPN tokens for one compilation, applying the
// peephole optimizations described in §4.3 as each token arrives.
type Builder[T token.Number] struct {
	rpn              []token.Token[T]
	stackPos         int
	maxStackDepth    int
	disableOptimizer bool
}

// New returns an empty Builder. The optimizer is enabled by default,
// following the process-wide toggle at construction time.
func New[T token.Number]() *Builder[T] {
	b := &Builder[T]{}
	b.disableOptimizer = disableOptimizerGlobal
	b.rpn = make([]token.Token[T], 0, 50)
	return b
}

// DisableOptimizer turns off every optimization for this Builder only,
// for property-testing optimized vs. unoptimized output from the same
// token stream.
func (b *Builder[T]) DisableOptimizer() { b.disableOptimizer = true }

// AddVal appends a ValueEx token (Value/Variable/Constant, already
// collapsed by the compiler into the fused representation), clearing
// its second-slot fields so Compress can tell it hasn't been fused yet.
func (b *Builder[T]) AddVal(tok token.Token[T]) {
	b.stackPos++
	tok.Kind = token.ValueEx
	tok.Ptr2 = nil
	tok.HasValue2 = false
	var zero T
	tok.Multiplier2, tok.Fixed2 = zero, zero
	if b.stackPos > b.maxStackDepth {
		b.maxStackDepth = b.stackPos
	}
	b.addTok(tok)
}

// AddTok appends tok verbatim, stamping it with the current stack
// position.
func (b *Builder[T]) AddTok(tok token.Token[T]) {
	b.addTok(tok)
}

func (b *Builder[T]) addTok(tok token.Token[T]) {
	tok.StackPos = b.stackPos
	b.rpn = append(b.rpn, tok)
}

// RemoveTok drops the most recently added token and restores stackPos
// to what the new top of the RPN recorded, mirroring the original's
// pop_back followed by reading back.StackPos.
func (b *Builder[T]) RemoveTok() {
	b.rpn = b.rpn[:len(b.rpn)-1]
	if len(b.rpn) > 0 {
		b.stackPos = b.rpn[len(b.rpn)-1].StackPos
	}
}

// AddAssignOp appends an Assign token; its right operand has already
// been consumed (stackPos drops by one, consuming the value assigned).
func (b *Builder[T]) AddAssignOp(tok token.Token[T]) {
	b.stackPos--
	b.addTok(tok)
}

// AddIf appends an IfCond marker. Its offset is back-patched later, in
// Finalize.
func (b *Builder[T]) AddIf(tok token.Token[T]) {
	b.stackPos--
	b.addTok(tok)
}

// AddElse appends an Else marker at the stack position the matching
// IfCond will be patched to jump to.
func (b *Builder[T]) AddElse(tok token.Token[T]) {
	b.stackPos = b.rpn[len(b.rpn)-1].StackPos - 1
	tok.StackPos = b.stackPos
	b.rpn = append(b.rpn, tok)
}

// AddFun is the optimization hinge: called for both plain functions and
// operators (binary/prefix/postfix), which are functions of a known
// arity distinguished only by their identifier. It tries constant
// folding first, then the operator-specific absorptions, falling back
// to pushing a plain Function token when nothing applies.
func (b *Builder[T]) AddFun(tok token.Token[T]) error {
	optimized := false
	if !b.disableOptimizer {
		var err error
		optimized, err = b.tryConstantFolding(tok)
		if err != nil {
			return err
		}
		if !optimized {
			switch tok.Kind {
			case token.BinaryOp:
				switch tok.Lexeme {
				case "+", "-":
					optimized = b.tryOptimizeAddSub(tok)
				case "*":
					optimized = b.tryOptimizeMul(tok)
				case "^":
					optimized = b.tryOptimizePow(tok)
				}
			}
		}
	}

	if !optimized {
		b.stackPos = b.stackPos - tok.Argc + 1
		if b.stackPos > b.maxStackDepth {
			b.maxStackDepth = b.stackPos
		}
		tok.Kind = token.Function
		b.addTok(tok)
	}
	return nil
}

// tryConstantFolding evaluates tok's callback immediately when every one
// of its argc most-recent operands is a pure (variable-free) ValueEx,
// replacing them with a single folded constant.
func (b *Builder[T]) tryConstantFolding(tok token.Token[T]) (bool, error) {
	argc := tok.Argc
	sz := len(b.rpn)
	if argc <= 0 || argc >= 20 || sz < argc {
		return false, nil
	}

	var buf [20]T
	for i := 0; i < argc; i++ {
		t := b.rpn[sz-argc+i]
		if t.Kind != token.ValueEx {
			return false, nil
		}
		var zero T
		if t.Multiplier != zero {
			return false, nil
		}
		buf[i] = t.Fixed
	}

	result, err := tok.Fn(buf[:argc])
	if err != nil {
		return false, err
	}

	b.rpn = b.rpn[:sz-argc+1]
	folded := &b.rpn[len(b.rpn)-1]
	var zero T
	folded.Kind = token.ValueEx
	folded.Ptr, folded.Multiplier = nil, zero
	folded.Fixed = result
	folded.Ptr2, folded.Multiplier2, folded.Fixed2 = nil, zero, zero
	folded.HasValue2 = false
	b.stackPos = folded.StackPos
	return true, nil
}

// tryOptimizeAddSub implements the additive-absorption fold: a trailing
// subtraction is first rewritten in place as addition of a negated
// value (so the merge below only ever has to deal with "+"), then two
// adjacent ValueEx tokens — sharing a variable pointer, or with at
// least one being a pure constant — are combined into one. This folds
// a plain "x - 5" as eagerly as "x + 5"; the original's C++ only
// continues the fold when a "+" function happens to sit just below the
// negated operand, a narrower and, by its own comment, unintentional
// restriction not worth preserving since both forms are equally sound.
func (b *Builder[T]) tryOptimizeAddSub(tok token.Token[T]) bool {
	sz := len(b.rpn)
	var zero T
	negated := false

	if sz >= 1 && b.rpn[sz-1].Kind == token.ValueEx && tok.Lexeme == "-" {
		top := &b.rpn[sz-1]
		if top.Multiplier != zero {
			top.Multiplier = -top.Multiplier
		}
		if top.Fixed != zero {
			top.Fixed = -top.Fixed
		}
		negated = true
	}

	if sz >= 2 && b.rpn[sz-1].Kind == token.ValueEx && b.rpn[sz-2].Kind == token.ValueEx {
		last, prev := b.rpn[sz-1], b.rpn[sz-2]
		if (last.Multiplier == zero && prev.Multiplier == zero) ||
			(last.Multiplier == zero && prev.Multiplier != zero) ||
			(last.Multiplier != zero && prev.Multiplier == zero) ||
			(last.Ptr == prev.Ptr) {

			merged := &b.rpn[sz-2]
			if last.Multiplier != zero {
				merged.Ptr = last.Ptr
			}
			// last has already been negated above when tok was "-", so
			// the combine is always a plain addition from here.
			merged.Fixed += last.Fixed
			merged.Multiplier += last.Multiplier
			b.RemoveTok()
			if b.rpn[len(b.rpn)-1].Multiplier == zero {
				b.rpn[len(b.rpn)-1].Ptr = nil
			}
			return true
		}
	}

	if !negated {
		return false
	}

	// The sign flip happened but the two ValueEx tokens didn't qualify
	// for a merge (e.g. two distinct variables): still must push an
	// addition over the now-negated operand, since the caller won't
	// push the original "-" token for us.
	b.stackPos = b.stackPos - 2 + 1
	if b.stackPos > b.maxStackDepth {
		b.maxStackDepth = b.stackPos
	}
	b.addTok(token.Token[T]{Kind: token.Function, Lexeme: "+", Argc: 2, Fn: addFn[T]})
	return true
}

// tryOptimizeMul folds a value-times-variable (or variable-times-value)
// pair into a single scaled ValueEx.
func (b *Builder[T]) tryOptimizeMul(tok token.Token[T]) bool {
	sz := len(b.rpn)
	if sz < 2 || b.rpn[sz-1].Kind != token.ValueEx || b.rpn[sz-2].Kind != token.ValueEx {
		return false
	}
	var zero T
	last, prev := &b.rpn[sz-1], &b.rpn[sz-2]

	if last.Multiplier == zero && prev.Multiplier != zero {
		prev.Multiplier *= last.Fixed
		prev.Fixed *= last.Fixed
		b.RemoveTok()
		return true
	}
	if last.Multiplier != zero && prev.Multiplier == zero {
		scaleFixed := prev.Fixed
		prev.Ptr = last.Ptr
		prev.Multiplier = last.Multiplier * scaleFixed
		prev.Fixed = last.Fixed * scaleFixed
		b.RemoveTok()
		return true
	}
	return false
}

// pow2..pow5 are the fixed fast-power functions substituted for a
// binary '^' whose exponent is a small constant integer.
func pow2[T token.Number](a []T) (T, error) { return a[0] * a[0], nil }
func pow3[T token.Number](a []T) (T, error) { return a[0] * a[0] * a[0], nil }
func pow4[T token.Number](a []T) (T, error) { return a[0] * a[0] * a[0] * a[0], nil }
func pow5[T token.Number](a []T) (T, error) { return a[0] * a[0] * a[0] * a[0] * a[0], nil }

func addFn[T token.Number](a []T) (T, error) { return a[0] + a[1], nil }

// tryOptimizePow replaces x^k for k in {2,3,4,5} with a dedicated fast
// function over the single base operand, dropping the exponent token.
func (b *Builder[T]) tryOptimizePow(tok token.Token[T]) bool {
	sz := len(b.rpn)
	if sz < 2 {
		return false
	}
	top := b.rpn[sz-1]
	if top.Kind != token.ValueEx {
		return false
	}
	var zero T
	if top.Multiplier != zero {
		return false
	}

	n := int(top.Fixed)
	if T(n) != top.Fixed || n < 2 || n > 5 {
		return false
	}

	b.RemoveTok()
	newTok := tok
	newTok.Kind = token.Function
	newTok.Argc = 1
	switch n {
	case 2:
		newTok.Fn, newTok.Lexeme = pow2[T], "^2"
	case 3:
		newTok.Fn, newTok.Lexeme = pow3[T], "^3"
	case 4:
		newTok.Fn, newTok.Lexeme = pow4[T], "^4"
	case 5:
		newTok.Fn, newTok.Lexeme = pow5[T], "^5"
	}
	b.addTok(newTok)
	return true
}
