package codegen

import "github.com/pkg/errors"

// ErrorKind classifies a failure raised while lowering a typed program to LLVM IR.
type ErrorKind string

const (
	BadPtrGen       ErrorKind = "bad_ptr_gen"
	UnknownClass    ErrorKind = "unknown_class"
	UnsupportedCast ErrorKind = "unsupported_cast"
	UnsupportedType ErrorKind = "unsupported_type"
	MissingReturn   ErrorKind = "missing_return"
	DuplicateSymbol ErrorKind = "duplicate_symbol"
)

// Error is a code generation failure. Lowering aborts on the first one.
type Error struct {
	Kind ErrorKind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }
func (e *Error) Unwrap() error { return e.err }

func newErr(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, err: errors.Errorf(format, args...)}
}

func wrapErr(kind ErrorKind, err error, msg string) *Error {
	return &Error{Kind: kind, err: errors.Wrap(err, msg)}
}
