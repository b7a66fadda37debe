package util

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// PolyHash computes the polynomial rolling hash h = h*31 + b over all bytes
// of s and reduces it modulo size. The arithmetic wraps at 32 bits and bytes
// are unsigned, so keys with bytes >= 0x80 hash the same on every platform.
func PolyHash(s string, size uint32) uint32 {
	var hash uint32
	for i := 0; i < len(s); i++ {
		hash = hash*31 + uint32(s[i])
	}
	return hash % size
}

// CString returns the content of b up to (not including) the first NUL byte.
// If b contains no NUL byte, the whole buffer is returned.
func CString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Truncate shortens s to at most n bytes.
func Truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
