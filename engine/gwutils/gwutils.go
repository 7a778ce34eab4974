// Package gwutils keeps engine routines alive across panics in user callbacks
package gwutils

import (
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
)

// CatchPanic calls f and returns its panic as an error. The error carries the stack of the panic.
func CatchPanic(f func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if perr, ok := r.(error); ok {
			err = errors.Wrap(perr, "panic")
		} else {
			err = errors.Errorf("panic: %v", r)
		}
	}()

	f()
	return nil
}

// RunPanicless calls f and logs its panic instead of propagating it. Returns true if f panicked.
func RunPanicless(f func()) (panicked bool) {
	if err := CatchPanic(f); err != nil {
		gwlog.Errorf("%+v", err)
		return true
	}
	return false
}

// RepeatUntilPanicless calls f again each time it panics, until it returns normally
func RepeatUntilPanicless(f func()) {
	for RunPanicless(f) {
	}
}
