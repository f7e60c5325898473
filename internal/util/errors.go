package util

import (
	"errors"
	"strings"
)

// ErrPublic is an error whose message can be shown as-is to end users.
type ErrPublic string

func (e ErrPublic) Error() string {
	return string(e)
}

// Is matches any ErrPublic, use errors.Is(err, ErrPublic("")).
func (e ErrPublic) Is(v error) bool {
	_, ok := v.(ErrPublic)
	return ok
}

// ConcatErrors merges the non-nil errors into one, or returns nil.
func ConcatErrors(errs []error) error {
	filtered := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err.Error())
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	return errors.New(strings.Join(filtered, "; "))
}
