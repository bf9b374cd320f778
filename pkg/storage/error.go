package storage

import "errors"

// NotFoundError is returned when a collection doesn't exist in the store.
type NotFoundError struct {
	Name string
}

func (e NotFoundError) Error() string {
	if e.Name == "" {
		return "collection not found"
	}

	return "collection not found: " + e.Name
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
