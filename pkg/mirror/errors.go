package mirror

import (
	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is returned when a setting required to plan a table is
	// missing. It aborts the table, not the run.
	ErrConfiguration = errors.New("missing configuration")

	// ErrMismatch is returned when a path or partition layout does not meet the
	// structural expectations of the requested strategy.
	ErrMismatch = errors.New("path mismatch")

	// ErrSchemaIncompatible is returned when a table cannot be carried between
	// the two environments as requested, e.g. ACID tables across incompatible
	// Hive versions.
	ErrSchemaIncompatible = errors.New("schema incompatibility")
)

// ConfigurationError wraps ErrConfiguration with a formatted message.
func ConfigurationError(format string, args ...any) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// MismatchError wraps ErrMismatch with a formatted message.
func MismatchError(format string, args ...any) error {
	return errors.Wrapf(ErrMismatch, format, args...)
}

// SchemaIncompatibilityError wraps ErrSchemaIncompatible with a formatted
// message.
func SchemaIncompatibilityError(format string, args ...any) error {
	return errors.Wrapf(ErrSchemaIncompatible, format, args...)
}

// IsConfigurationError reports whether err was caused by ErrConfiguration.
func IsConfigurationError(err error) bool {
	return errors.Cause(err) == ErrConfiguration
}

// IsMismatchError reports whether err was caused by ErrMismatch.
func IsMismatchError(err error) bool {
	return errors.Cause(err) == ErrMismatch
}

// IsSchemaIncompatibilityError reports whether err was caused by
// ErrSchemaIncompatible.
func IsSchemaIncompatibilityError(err error) bool {
	return errors.Cause(err) == ErrSchemaIncompatible
}
