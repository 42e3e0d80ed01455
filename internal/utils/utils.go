package utils

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences v, yielding the zero value for a nil pointer.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}
