package schema

import "github.com/cloudera-labs/hms-mirror/pkg/mirror"

type (
	// CopySpec describes how the definition for Target is derived from the
	// definition in Source. It is built once with NewCopySpec and never
	// modified.
	CopySpec struct {
		Source mirror.Environment
		Target mirror.Environment

		ReplaceLocation      bool
		StripLocation        bool
		Upgrade              bool
		MakeExternal         bool
		MakeNonTransactional bool
		TakeOwnership        bool
		TableNamePrefix      string
		Location             string
	}

	// Option sets one field of a CopySpec.
	Option func(*CopySpec)
)

// NewCopySpec returns the spec for deriving target from source.
func NewCopySpec(source, target mirror.Environment, opts ...Option) CopySpec {
	spec := CopySpec{Source: source, Target: target}
	for _, opt := range opts {
		opt(&spec)
	}

	return spec
}

// WithReplaceLocation translates the source location to the target.
func WithReplaceLocation() Option {
	return func(s *CopySpec) { s.ReplaceLocation = true }
}

// WithStripLocation removes the LOCATION clause so the table lands in the
// database directory.
func WithStripLocation() Option {
	return func(s *CopySpec) { s.StripLocation = true }
}

// WithUpgrade converts legacy managed tables to EXTERNAL.
func WithUpgrade() Option {
	return func(s *CopySpec) { s.Upgrade = true }
}

// WithMakeExternal creates the target as an EXTERNAL table.
func WithMakeExternal() Option {
	return func(s *CopySpec) { s.MakeExternal = true }
}

// WithMakeNonTransactional drops the transactional table properties.
func WithMakeNonTransactional() Option {
	return func(s *CopySpec) { s.MakeNonTransactional = true }
}

// WithTakeOwnership lets the target own its data. It is a no-op when
// allowed is false so callers can pass Config.OwnershipAllowed directly.
func WithTakeOwnership(allowed bool) Option {
	return func(s *CopySpec) { s.TakeOwnership = allowed }
}

// WithTableNamePrefix renames the target to prefix + table name.
func WithTableNamePrefix(prefix string) Option {
	return func(s *CopySpec) { s.TableNamePrefix = prefix }
}

// WithLocation sets an explicit target location.
func WithLocation(location string) Option {
	return func(s *CopySpec) { s.Location = location }
}

// If applies opt only when cond holds.
func If(cond bool, opt Option) Option {
	return func(s *CopySpec) {
		if cond {
			opt(s)
		}
	}
}

// RenameTable reports whether the target gets a prefixed name.
func (s CopySpec) RenameTable() bool {
	return s.TableNamePrefix != ""
}
