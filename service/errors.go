package service

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotEnoughTickets = errors.New("not enough available tickets")

// ValidationError collects every rule a request broke.
type ValidationError struct {
	Violations []string
	Cause      error
}

func (e *ValidationError) Add(msg string) {
	e.Violations = append(e.Violations, msg)
}

func (e *ValidationError) Addf(format string, args ...any) {
	e.Add(fmt.Sprintf(format, args...))
}

// Err returns e when something was added, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, " ")
}

func (e *ValidationError) Unwrap() error { return e.Cause }
