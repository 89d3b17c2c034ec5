// Package provider holds the errors shared by clients of external services
// (completion and email delivery).
package provider

import (
	"errors"
	"fmt"
)

// ErrMissingConfiguration indicates the hosting environment did not supply a
// key or identity the provider call needs. It is reported at call time.
var ErrMissingConfiguration = errors.New("missing provider configuration")

// Error wraps a transport or service-level failure of a named provider.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s provider failed: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as a provider Error unless it already is one or reports
// missing configuration.
func Wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrMissingConfiguration) {
		return err
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Provider: name, Err: err}
}

// Missing reports which setting is absent while keeping ErrMissingConfiguration
// matchable with errors.Is.
func Missing(setting string) error {
	return fmt.Errorf("%w: %s is not set", ErrMissingConfiguration, setting)
}
