package fileservice

import (
	"strings"
)

// TempPrefix marks in-flight uploads. Names with this prefix are never
// accepted from callers and never listed.
const TempPrefix = ".fileservice-tmp-"

// ValidateName rejects names that are empty, contain path separators or NUL
// bytes, refer to the directory itself or its parent, or collide with the
// temporary upload prefix. The store is a flat directory, so a valid name is
// always a single path element under the base directory.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
	case strings.ContainsAny(name, "/\\\x00"):
	case strings.HasPrefix(name, TempPrefix):
	default:
		return nil
	}
	return &PermissionDeniedError{Key: name, Err: ErrInvalidName}
}
