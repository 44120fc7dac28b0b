package token

import "fmt"

// ErrorCode is the stable taxonomy a host application may switch on. The
// codes and their grouping follow the external-interfaces error table: one
// flat enum rather than one error type per pipeline stage, because the
// façade promises callers a single space to match against regardless of
// which stage raised it.
type ErrorCode int

const (
	// syntactic
	UnexpectedOperator ErrorCode = iota
	UnexpectedEOF
	UnexpectedArgSep
	UnexpectedArg
	UnexpectedValue
	UnexpectedVariable
	UnexpectedParens
	UnexpectedFunction
	ValExpected

	// structural
	MissingParens
	TooManyParams
	TooFewParams

	// definition
	InvalidName
	InvalidInfixIdent
	InvalidPostfixIdent
	InvalidFunPtr
	InvalidVarPtr
	NameConflict

	// configuration
	EmptyExpression
	UnassignableToken
	OptPri
	BuiltinOverload
	LocaleConflict

	// ternary
	UnexpectedConditional
	MissingElseClause
	MisplacedColon

	// numeric (reserved for callbacks)
	DivByZero
	DomainError

	// invariant violated
	InternalError

	// UndefinedVariable is part of the code space but no pipeline stage
	// returns it: a bare identifier that resolves to no registered
	// variable/constant/function, with no variable factory installed, is
	// reported as UnassignableToken, and that is the error GetUsedVariables
	// suppresses. §7 names this code without listing it in the external
	// error table.
	UndefinedVariable
)

var errorCodeNames = map[ErrorCode]string{
	UnexpectedOperator:    "UnexpectedOperator",
	UnexpectedEOF:         "UnexpectedEOF",
	UnexpectedArgSep:      "UnexpectedArgSep",
	UnexpectedArg:         "UnexpectedArg",
	UnexpectedValue:       "UnexpectedValue",
	UnexpectedVariable:    "UnexpectedVariable",
	UnexpectedParens:      "UnexpectedParens",
	UnexpectedFunction:    "UnexpectedFunction",
	ValExpected:           "ValExpected",
	MissingParens:         "MissingParens",
	TooManyParams:         "TooManyParams",
	TooFewParams:          "TooFewParams",
	InvalidName:           "InvalidName",
	InvalidInfixIdent:     "InvalidInfixIdent",
	InvalidPostfixIdent:   "InvalidPostfixIdent",
	InvalidFunPtr:         "InvalidFunPtr",
	InvalidVarPtr:         "InvalidVarPtr",
	NameConflict:          "NameConflict",
	EmptyExpression:       "EmptyExpression",
	UnassignableToken:     "UnassignableToken",
	OptPri:                "OptPri",
	BuiltinOverload:       "BuiltinOverload",
	LocaleConflict:        "LocaleConflict",
	UnexpectedConditional: "UnexpectedConditional",
	MissingElseClause:     "MissingElseClause",
	MisplacedColon:        "MisplacedColon",
	DivByZero:             "DivByZero",
	DomainError:           "DomainError",
	InternalError:         "InternalError",
	UndefinedVariable:     "UndefinedVariable",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Error is the single structured error type every pipeline stage returns.
// It carries the offending token text, the full expression it was found
// in, and its byte position, matching §6's "Each error carries: code,
// offending token text, expression text, and byte position."
type Error struct {
	Code ErrorCode
	Tok  string
	Expr string
	Pos  int
}

func (e *Error) Error() string {
	if e.Tok == "" {
		return fmt.Sprintf("%s at position %d in %q", e.Code, e.Pos, e.Expr)
	}
	return fmt.Sprintf("%s: %q at position %d in %q", e.Code, e.Tok, e.Pos, e.Expr)
}

// NewError constructs an Error for the given code/token/expression/position.
func NewError(code ErrorCode, tok, expr string, pos int) *Error {
	return &Error{Code: code, Tok: tok, Expr: expr, Pos: pos}
}
