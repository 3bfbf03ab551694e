package scene

import (
	"errors"
	"fmt"
)

// ErrCrashed wraps a panic that escaped the frame loop.
var ErrCrashed = errors.New("scene crashed")

// Guard runs fn and turns a panic into an error wrapping ErrCrashed, so the
// caller can restore the terminal before reporting it.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCrashed, r)
		}
	}()
	return fn()
}
