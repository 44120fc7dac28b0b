package muparser

// Config holds the construction-time knobs a Parser is built from. The
// zero Config means "use the registry's own defaults" for every field.
//
// Grounded on the teacher's plain-struct-plus-functional-option
// constructors (`lexer.New`, `compiler.New` take their dependencies
// directly rather than through a builder type); Option composes the same
// way without introducing an options-builder dependency the teacher never
// reaches for.
type Config struct {
	identChars string
	oprtChars  string
}

// Option mutates a Config during New.
type Option func(*Config)

// WithIdentChars overrides the identifier character set (default
// `[A-Za-z0-9_]`).
func WithIdentChars(chars string) Option {
	return func(c *Config) { c.identChars = chars }
}

// WithOprtChars overrides the user-operator character set (default
// arithmetic/punctuation glyphs plus letters).
func WithOprtChars(chars string) Option {
	return func(c *Config) { c.oprtChars = chars }
}
