// Package filesys provides the small set of file system utilities minidb
// needs beyond what internal/fio already wraps: existence checks (used by
// Open to confirm all three sibling files are present before attempting
// to parse any of them) and whole-file reads (used for the superblock,
// which is read once, in full, rather than through positioned I/O).
package filesys

import (
	"errors"
	"os"
)

// ErrIsNotDir is returned by callers that expect a path to be a directory
// but find a regular file instead.
var ErrIsNotDir = errors.New("path isn't a directory")

// Exists checks if a file or directory at the given `file` path exists.
// It returns true if the file/directory exists, false if it does not,
// and an error if there's any other issue checking its status.
func Exists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadFile reads the entire content of the file at `filePath` into a byte slice.
func ReadFile(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}
