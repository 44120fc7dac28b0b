package muparser

import "muparser/token"

// Error is the single structured error type every Parser method returns on
// failure — a direct re-export of token.Error rather than a second wrapper
// struct, since the façade has nothing to add to the code/token/expression/
// position quadruple the pipeline already produces.
type Error = token.Error

// ErrorCode re-exports the stable taxonomy a host application may switch
// on without importing the token package directly.
type ErrorCode = token.ErrorCode

const (
	UnexpectedOperator    = token.UnexpectedOperator
	UnexpectedEOF         = token.UnexpectedEOF
	UnexpectedArgSep      = token.UnexpectedArgSep
	UnexpectedArg         = token.UnexpectedArg
	UnexpectedValue       = token.UnexpectedValue
	UnexpectedVariable    = token.UnexpectedVariable
	UnexpectedParens      = token.UnexpectedParens
	UnexpectedFunction    = token.UnexpectedFunction
	ValExpected           = token.ValExpected
	MissingParens         = token.MissingParens
	TooManyParams         = token.TooManyParams
	TooFewParams          = token.TooFewParams
	InvalidName           = token.InvalidName
	InvalidInfixIdent     = token.InvalidInfixIdent
	InvalidPostfixIdent   = token.InvalidPostfixIdent
	InvalidFunPtr         = token.InvalidFunPtr
	InvalidVarPtr         = token.InvalidVarPtr
	NameConflict          = token.NameConflict
	EmptyExpression       = token.EmptyExpression
	UnassignableToken     = token.UnassignableToken
	OptPri                = token.OptPri
	BuiltinOverload       = token.BuiltinOverload
	LocaleConflict        = token.LocaleConflict
	UnexpectedConditional = token.UnexpectedConditional
	MissingElseClause     = token.MissingElseClause
	MisplacedColon        = token.MisplacedColon
	DivByZero             = token.DivByZero
	DomainError           = token.DomainError
	InternalError         = token.InternalError
	UndefinedVariable     = token.UndefinedVariable
)
