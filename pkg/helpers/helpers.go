package helpers

// Remove deletes n elements starting at off, shifting the tail left. The
// result reuses the input's backing array.
func Remove[T any](s []T, off, n int) []T {
	return append(s[:off], s[off+n:]...)
}

// FindIf returns the index of the first element matching eq, or -1.
func FindIf[T any](haystack []T, eq func(el T) bool) int {
	for i, v := range haystack {
		if eq(v) {
			return i
		}
	}

	return -1
}
