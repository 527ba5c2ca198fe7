package reconcile

import "errors"

var (
	ErrFutureDate     = errors.New("cannot reconcile a day that has not started yet")
	ErrTooEarly       = errors.New("reconcile time has not been reached today")
	ErrPartialFailure = errors.New("some absence records could not be written")
)
