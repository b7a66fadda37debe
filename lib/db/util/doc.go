// Package util provides helper functions for database implementations and the
// wire codec: the polynomial string hash used to pick a slot and conversions
// between Go strings and NUL-terminated byte buffers.
package util
