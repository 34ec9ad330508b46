package diagnostics

import (
	sterrors "errors"
	"fmt"
)

type ErrorCode string

const (
	ErrCodeUnsupportedChar     ErrorCode = "LEX_UNSUPPORTED_CHAR"
	ErrCodeBufferFull          ErrorCode = "LEX_BUFFER_FULL"
	ErrCodeUnsupportedToken    ErrorCode = "PARSE_UNSUPPORTED_TOKEN"
	ErrCodeStackOverflow       ErrorCode = "PARSE_STACK_OVERFLOW"
	ErrCodeDiagnostics         ErrorCode = "PARSE_DIAGNOSTICS"
	ErrCodeUnknownReturnType   ErrorCode = "BIND_UNKNOWN_RETURN_TYPE"
	ErrCodeMalformedNode       ErrorCode = "BIND_MALFORMED_NODE"
	ErrCodeUndefinedExpression ErrorCode = "EVAL_UNDEFINED_EXPRESSION"
	ErrCodeUndefinedVariable   ErrorCode = "EVAL_UNDEFINED_VARIABLE"
	ErrCodeDivisionByZero      ErrorCode = "EVAL_DIVISION_BY_ZERO"
	ErrCodeIntegerRange        ErrorCode = "EVAL_INTEGER_RANGE"
	ErrCodeTypeMismatch        ErrorCode = "EVAL_TYPE_MISMATCH"
	ErrCodeInputTooLarge       ErrorCode = "INPUT_TOO_LARGE"
	ErrCodeIO                  ErrorCode = "IO_ERROR"
	ErrCodeConfig              ErrorCode = "CONFIG_ERROR"
)

// Error is the single error type every stage of the pipeline returns.
// Line and Column are zero when the failure has no source position.
type Error struct {
	Code    ErrorCode
	Message string
	Details []string
	Line    int
	Column  int
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// At attaches a source position and returns e for chaining.
func (e *Error) At(line, column int) *Error {
	e.Line = line
	e.Column = column
	return e
}

func Wrap(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if sterrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
