package suggest

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrNilLoader    = errors.New("loader is nil")
)

// LoadError reports a loader failure during a build. The previously published
// index, if any, is left in place.
type LoadError struct {
	Field Field
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s words: %v", e.Field, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
