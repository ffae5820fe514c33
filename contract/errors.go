package contract

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrIdentityExists    = errors.New("identity already registered")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrNotShared         = errors.New("not shared with caller")
)

// ArgumentCountError is returned when a transaction receives the wrong number of arguments.
type ArgumentCountError struct {
	Function string
	Expected []int
	Got      []string
}

func (e *ArgumentCountError) Error() string {
	expected := fmt.Sprint(e.Expected[0])
	for _, n := range e.Expected[1:] {
		expected += fmt.Sprintf(" or %d", n)
	}
	return fmt.Sprintf("%s: incorrect number of arguments. Expecting %s, got %d: %q", e.Function, expected, len(e.Got), e.Got)
}
