// Package hexid generates the short identifiers used for launches and log files.
package hexid

import (
	"crypto/rand"
	"encoding/hex"
)

// Len is the length of an identifier returned by New.
const Len = 8

// New returns Len lowercase hex characters.
func New() string {
	var b [Len / 2]byte
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// Valid reports whether id has the shape New produces.
func Valid(id string) bool {
	if len(id) != Len {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
