// Package taintkit holds the pieces shared by the relocation reporter and
// the taint dump visualizer: mostly the error taxonomy both tools report.
package taintkit

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	// ErrFormat is returned when an input does not match the expected
	// container or text format.
	ErrFormat = stderrors.New("invalid format")
	// ErrIO is returned when a file can not be opened, read or written.
	ErrIO = stderrors.New("i/o error")
)

type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return e.kind.Error()
	}
	return e.err.Error()
}

func (e *kindError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// FormatError annotates err with msg and marks it as ErrFormat. err may be
// nil when the format violation has no underlying cause.
func FormatError(err error, msg string) error {
	return errors.Wrap(&kindError{kind: ErrFormat, err: err}, msg)
}

// Formatf is FormatError without an underlying cause.
func Formatf(format string, args ...interface{}) error {
	return errors.Wrapf(&kindError{kind: ErrFormat}, format, args...)
}

// IOError annotates err with msg and marks it as ErrIO.
func IOError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(&kindError{kind: ErrIO, err: err}, msg)
}

// IsFormat reports whether err was caused by malformed input.
func IsFormat(err error) bool {
	return stderrors.Is(err, ErrFormat)
}

// IsIO reports whether err was caused by a failing file operation.
func IsIO(err error) bool {
	return stderrors.Is(err, ErrIO)
}
