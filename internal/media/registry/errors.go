package registry

import "errors"

var (
	// ErrAppNotFound indicates no model is registered under the app label
	ErrAppNotFound = errors.New("app not found")

	// ErrModelNotFound indicates the app has no model with that name
	ErrModelNotFound = errors.New("model not found")

	// ErrFieldNotFound indicates the model has no registered image field with that name
	ErrFieldNotFound = errors.New("field not found")

	// ErrDuplicateField indicates the same field path was registered twice
	ErrDuplicateField = errors.New("field already registered")
)

// IsNotFound reports whether err is one of the resolution errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAppNotFound) || errors.Is(err, ErrModelNotFound) || errors.Is(err, ErrFieldNotFound)
}
