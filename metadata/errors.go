package metadata

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel for every descriptor-resolution failure,
// matchable with errors.Is.
var ErrConfiguration = errors.New("invalid entity configuration")

// ConfigurationError reports contradictory or unresolvable entity metadata.
// It always names the offending entity, and the field when one is involved,
// so failures are diagnosable without a debugger.
type ConfigurationError struct {
	Entity  string
	Field   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("entity %q field %q: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("entity %q: %s", e.Entity, e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(entity, field string, err error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
