package binary

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError is returned when an executable is missing from every
// candidate location.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("executable %s not found (tried: %s)", e.Name, strings.Join(e.Tried, ", "))
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
