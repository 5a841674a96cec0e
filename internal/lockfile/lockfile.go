// Package lockfile enforces the single-instance rule through a filesystem
// marker.
package lockfile

import (
	"fmt"
	"os"
)

// Lock is a held singleton lock.
type Lock struct {
	path string
}

// Acquire creates the marker file exclusively. It fails when another
// instance already holds the lock.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("lock file %s exists, another instance is running", path)
		}
		return nil, fmt.Errorf("create lock file %s: %w", path, err)
	}

	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return &Lock{path: path}, nil
}

// Release removes the marker. Safe to call once on every exit path.
func (l *Lock) Release() {
	os.Remove(l.path)
}
