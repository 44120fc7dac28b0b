package main

import "muparser/token"

// isIntegerType reports whether T was instantiated with an integer type,
// determined at runtime through integer-truncating division rather than
// a constant conversion — T's constraint has no common core type, so a
// literal like T(0.5) cannot be checked for representability at compile
// time the way it could against a single concrete type.
func isIntegerType[T token.Number]() bool {
	one := T(1)
	two := T(2)
	return one/two == 0
}
