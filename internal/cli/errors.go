package cli

import (
	"errors"
	"fmt"
)

// ErrUsage marks errors caused by invocation or input problems rather than
// bugs. main exits 1 for both, but tests and wrappers tell them apart.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg   string
	cause error
}

func newUsageError(msg string) error {
	return &usageError{msg: msg}
}

// wrapUsage keeps cause reachable through errors.Is/As.
func wrapUsage(cause error, format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...), cause: cause}
}

func (e *usageError) Error() string { return e.msg }

func (e *usageError) Unwrap() error { return e.cause }

func (e *usageError) Is(target error) bool { return target == ErrUsage }
