package gridview

const (
	// NoLimit is the query limit used when the page size is the unlimited
	// sentinel (0).
	NoLimit            = -1
	DefaultPageSize    = 20
	DefaultMaxPageSize = 50
)

// IsClampedPageSize clamps size into [0, maxPageSize]. The second return
// value reports whether size was already inside the range.
func IsClampedPageSize(size int, maxPageSize int) (int, bool) {
	if size < 0 {
		return 0, false
	} else if size > maxPageSize {
		return maxPageSize, false
	}

	return size, true
}

// ClampPageSize clamps size into [0, maxPageSize]. A result of 0 means
// "unlimited".
func ClampPageSize(size int, maxPageSize int) int {
	ret, _ := IsClampedPageSize(size, maxPageSize)
	return ret
}
