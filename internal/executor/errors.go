package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
)

var (
	// ErrElementNotFound means a locator matched nothing before the deadline.
	ErrElementNotFound = errors.New("element not found")
	// ErrTimeout means a wait condition did not hold before the deadline.
	ErrTimeout = errors.New("timed out")
	// ErrAssertion means the page was reachable but did not look as expected.
	ErrAssertion = errors.New("assertion failed")
)

// StepError ties a failure to the step that produced it.
type StepError struct {
	Index  int
	Action Action
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Action, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Tolerable reports whether err belongs to the class of failures the legacy
// suite swallowed: missing elements and expired waits.
func Tolerable(err error) bool {
	return errors.Is(err, ErrElementNotFound) || errors.Is(err, ErrTimeout)
}

// classify maps driver errors onto the taxonomy. notFound is used for
// deadline errors raised while locating an element.
func classify(err error, notFound bool, what string) error {
	if err == nil {
		return nil
	}
	var nf *rod.ElementNotFoundError
	switch {
	case errors.As(err, &nf):
		return fmt.Errorf("%w: %s", ErrElementNotFound, what)
	case errors.Is(err, context.DeadlineExceeded):
		if notFound {
			return fmt.Errorf("%w: %s", ErrElementNotFound, what)
		}
		return fmt.Errorf("%w waiting for %s", ErrTimeout, what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func assertionf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrAssertion}, args...)...)
}
