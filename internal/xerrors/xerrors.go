// Package xerrors provides error constructors that capture call stacks so the
// log layer can attach them to error-level records.
package xerrors

import (
	"errors"
	"fmt"
	"runtime"
)

type stacked struct {
	err error
	pcs []uintptr
}

func (s *stacked) Error() string       { return s.err.Error() }
func (s *stacked) Unwrap() error       { return s.err }
func (s *stacked) StackPCs() []uintptr { return s.pcs }

func capture(skip int) []uintptr {
	const maxDepth = 64
	pcs := make([]uintptr, maxDepth)
	// 2 skips runtime.Callers and capture itself
	n := runtime.Callers(2+skip, pcs)
	return pcs[:n]
}

func withStack(err error, skip int) error {
	if err == nil {
		return nil
	}
	return &stacked{err: err, pcs: capture(skip)}
}

// WithStack attaches the caller's stack to err.
func WithStack(err error) error { return withStack(err, 2) }

// EnsureTrace attaches a stack only if err does not already carry one.
func EnsureTrace(err error) error {
	if err == nil {
		return nil
	}
	type hasStack interface{ StackPCs() []uintptr }
	var hs hasStack
	if errors.As(err, &hs) && hs != nil && len(hs.StackPCs()) > 0 {
		return err
	}
	return withStack(err, 2)
}

type wrapped struct {
	err error
	msg string
	pc  uintptr
}

func (w *wrapped) Error() string { return w.msg + ": " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }
func (w *wrapped) PC() uintptr   { return w.pc }

func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	if n := runtime.Callers(2+skip, pcs[:]); n == 0 {
		return 0
	}
	return pcs[0]
}

// Wrap annotates err with msg and the caller's program counter.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrapped{err: err, msg: msg, pc: callerPC(1)}
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrapped{err: err, msg: fmt.Sprintf(format, args...), pc: callerPC(1)}
}

func New(msg string) error             { return withStack(errors.New(msg), 2) }
func Newf(f string, args ...any) error { return withStack(fmt.Errorf(f, args...), 2) }
