package vocab

import (
	"errors"
	"fmt"
)

// ErrNoneDue is the scheduler's signal that no card is due. It ends a
// review session normally and is never shown as a failure.
var ErrNoneDue = errors.New("no cards due for review")

// ServiceError is a failed remote call, reduced to what the caller needs:
// which operation failed, the HTTP status if there was one, and the
// server-supplied detail message if there was one.
type ServiceError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *ServiceError) Error() string {
	msg := e.Op + " failed"
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Message returns the detail carried by err when it is a ServiceError with a
// non-empty detail, and fallback otherwise.
func Message(err error, fallback string) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	return fallback
}
