package utils

// Ptr returns a pointer to a copy of v, for optional fields such as the
// error text of a ledger revision.
func Ptr[T any](v T) *T {
	return &v
}
