package bytecode

import "muparser/token"

// ternaryFn wraps two fused binary callbacks into a single 3-argument
// call: arg[1] and arg[2] are combined via inner, then arg[0] is combined
// with that result via outer — e.g. "+*" (RPN "a b c * +") becomes a+(b*c)
// done as one dispatch.
type ternaryFn[T token.Number] func(a []T) (T, error)

func substituteTable[T token.Number]() []struct {
	op1, op2 string
	fn       ternaryFn[T]
	name     string
} {
	add := func(a []T) (T, error) { return a[0] + a[1], nil }
	sub := func(a []T) (T, error) { return a[0] - a[1], nil }
	mul := func(a []T) (T, error) { return a[0] * a[1], nil }
	div := func(a []T) (T, error) {
		if a[1] == 0 {
			return 0, token.NewError(token.DivByZero, "/", "", 0)
		}
		return a[0] / a[1], nil
	}

	mk := func(outer, inner func(a []T) (T, error)) ternaryFn[T] {
		return func(a []T) (T, error) {
			v, err := inner(a[1:3])
			if err != nil {
				return 0, err
			}
			return outer([]T{a[0], v})
		}
	}

	return []struct {
		op1, op2 string
		fn       ternaryFn[T]
		name     string
	}{
		{"+", "+", mk(add, add), "++"},
		{"*", "*", mk(mul, mul), "**"},
		{"+", "*", mk(add, mul), "+*"},
		{"*", "+", mk(mul, add), "*+"},
		{"/", "/", mk(div, div), "//"},
		{"*", "/", mk(mul, div), "*/"},
		{"/", "*", mk(div, mul), "/*"},
		{"+", "/", mk(add, div), "+/"},
		{"/", "+", mk(div, add), "/+"},
		{"-", "/", mk(sub, div), "-/"},
		{"/", "-", mk(div, sub), "/-"},
	}
}

// substitute fuses adjacent Function-token pairs from a fixed table of
// binary-op combinations into a single ternary dispatch, the Go
// analogue of Sweep A.
func (b *Builder[T]) substitute() {
	if b.disableOptimizer {
		return
	}
	table := substituteTable[T]()

	out := make([]token.Token[T], 0, len(b.rpn))
	for _, tok := range b.rpn {
		if len(out) == 0 {
			out = append(out, tok)
			continue
		}
		prev := &out[len(out)-1]
		if tok.Kind == token.Function && prev.Kind == token.Function && tok.Argc == 2 && prev.Argc == 2 {
			fused := false
			for _, row := range table {
				if tok.Lexeme == row.op1 && prev.Lexeme == row.op2 {
					prev.Lexeme = row.name
					prev.Fn = row.fn
					prev.Argc = 3
					fused = true
					break
				}
			}
			if fused {
				continue
			}
		}
		out = append(out, tok)
	}
	b.rpn = out
}

// compress fuses a run of up to three adjacent Function tokens into one
// token's Fn/Fn2/Fn3 slots, and a run of up to two adjacent ValueEx
// tokens into one token's primary/secondary value slots — Sweep B,
// trading extra fields per token for fewer dispatch steps.
func (b *Builder[T]) compress() {
	if b.disableOptimizer {
		return
	}

	out := make([]token.Token[T], 0, len(b.rpn))
	for _, tok := range b.rpn {
		if len(out) == 0 {
			out = append(out, tok)
			continue
		}
		prev := &out[len(out)-1]

		switch tok.Kind {
		case token.Function:
			if prev.Kind == token.Function {
				if prev.Fn2 == nil {
					prev.Fn2, prev.Argc2 = tok.Fn, tok.Argc
					continue
				}
				if prev.Fn3 == nil {
					prev.Fn3, prev.Argc3 = tok.Fn, tok.Argc
					continue
				}
			}
			out = append(out, tok)

		case token.ValueEx:
			if prev.Kind == token.ValueEx && !prev.HasValue2 {
				prev.Ptr2, prev.Multiplier2, prev.Fixed2 = tok.Ptr, tok.Multiplier, tok.Fixed
				prev.HasValue2 = true
				continue
			}
			out = append(out, tok)

		default:
			out = append(out, tok)
		}
	}
	b.rpn = out
}

// Finalize runs the two optimizer sweeps, appends the End marker,
// resolves IfCond/Else/EndIf jump offsets, and computes the program's
// shape fingerprint. numResults is the compiled expression's top-level
// comma count, carried through unchanged to the returned Program.
func (b *Builder[T]) Finalize(numResults int) (*Program[T], error) {
	b.substitute()
	b.compress()

	b.rpn = append(b.rpn, token.Token[T]{Kind: token.End})

	var ifStack, elseStack []int
	var fingerprint uint64
	unoptimizable := false
	noMul := true
	var zero T

	for i := range b.rpn {
		tok := &b.rpn[i]

		// Reintroduce the plain Value/Variable kinds where the second
		// value slot was never fused by Compress: they evaluate more
		// cheaply than the general ValueEx case. A token still carrying
		// a fused Ptr2 must stay ValueEx or that second slot is lost.
		if tok.Kind == token.ValueEx && !tok.HasValue2 {
			if tok.Multiplier == zero {
				tok.Kind = token.Value
			} else if tok.Fixed == zero && tok.Multiplier == 1 {
				tok.Kind = token.Variable
			}
		}

		if tok.Kind == token.ValueEx && tok.Multiplier != zero && tok.Multiplier != 1 {
			noMul = false
		}
		if tok.Kind == token.ValueEx && tok.HasValue2 && tok.Multiplier2 != zero && tok.Multiplier2 != 1 {
			noMul = false
		}

		switch tok.Kind {
		case token.IfCond:
			ifStack = append(ifStack, i)
			unoptimizable = true

		case token.Else:
			elseStack = append(elseStack, i)
			idx := ifStack[len(ifStack)-1]
			ifStack = ifStack[:len(ifStack)-1]
			b.rpn[idx].Offset = i - idx
			unoptimizable = true

		case token.EndIf:
			idx := elseStack[len(elseStack)-1]
			elseStack = elseStack[:len(elseStack)-1]
			b.rpn[idx].Offset = i - idx
			unoptimizable = true

		case token.Value, token.Variable, token.ValueEx:
			if !unoptimizable && countOpcodes(fingerprint) < maxOptimizableOpcodes {
				fingerprint = fingerprint<<1 | 1
			} else {
				unoptimizable = true
			}

		case token.Function:
			if tok.Argc < 1 {
				unoptimizable = true
				break
			}
			if !unoptimizable && countOpcodes(fingerprint) < maxOptimizableOpcodes {
				fingerprint = fingerprint << 1
			} else {
				unoptimizable = true
			}

		case token.End:
			// terminal marker, not part of the shape

		default:
			unoptimizable = true
		}
	}

	return &Program[T]{
		RPN:           b.rpn,
		MaxStackDepth: b.maxStackDepth,
		Fingerprint:   fingerprint,
		Unoptimizable: unoptimizable,
		NoMul:         noMul,
		NumResults:    numResults,
	}, nil
}

// LastValue returns the most recently appended ValueEx token, if the tail
// of the RPN stream is one — the peek the compiler uses to validate an
// Assign target without reaching into the Builder's internal slice.
func (b *Builder[T]) LastValue() (token.Token[T], bool) {
	if len(b.rpn) == 0 {
		return token.Token[T]{}, false
	}
	tail := b.rpn[len(b.rpn)-1]
	if tail.Kind != token.ValueEx {
		return token.Token[T]{}, false
	}
	return tail, true
}

// countOpcodes reports how many shape bits have been recorded so far —
// used to cap the fingerprint at maxOptimizableOpcodes regardless of
// the host machine's integer width.
func countOpcodes(fp uint64) int {
	n := 0
	for fp > 0 {
		n++
		fp >>= 1
	}
	return n
}
