package formula

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	// ErrSyntax reports a malformed expression.
	ErrSyntax = errors.New("formula syntax error")
	// ErrUnsafe reports a construct, function or name outside the allowed grammar,
	// including references to variables that are not bound.
	ErrUnsafe = errors.New("formula safety violation")
	// ErrMathDomain reports an arithmetic failure such as division by zero.
	ErrMathDomain = errors.New("math domain error")
)

// Error describes why a formula was rejected.
type Error struct {
	Kind    error
	Formula string
	// Pos is the byte offset of the offending token, or -1.
	Pos int
	Msg string
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%v: %s (offset %d in %q)", e.Kind, e.Msg, e.Pos, e.Formula)
	}
	return fmt.Sprintf("%v: %s (in %q)", e.Kind, e.Msg, e.Formula)
}

func (e *Error) Unwrap() error { return e.Kind }

func syntaxErr(src string, pos int, format string, args ...any) *Error {
	return &Error{Kind: ErrSyntax, Formula: src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func unsafeErr(src string, pos int, format string, args ...any) *Error {
	return &Error{Kind: ErrUnsafe, Formula: src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func domainErr(src string, format string, args ...any) *Error {
	return &Error{Kind: ErrMathDomain, Formula: src, Pos: -1, Msg: fmt.Sprintf(format, args...)}
}
