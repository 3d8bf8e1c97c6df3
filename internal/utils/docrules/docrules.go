// Package docrules holds the pure predicates for supporting documents:
// which file extensions are accepted and how large an upload may be.
package docrules

import (
	"path/filepath"
	"strings"
)

// MaxFileSizeBytes is the upload ceiling (10 MiB).
const MaxFileSizeBytes = 10 * 1024 * 1024

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".xlsx": {},
}

// IsAllowed reports whether the filename carries an accepted extension
// (case insensitive).
func IsAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := allowedExtensions[ext]
	return ok
}

// IsTooLarge reports whether byteLength exceeds the upload ceiling.
func IsTooLarge(byteLength int64) bool {
	return byteLength > MaxFileSizeBytes
}
