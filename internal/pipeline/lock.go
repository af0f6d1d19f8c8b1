package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrOutputLocked reports another run writing into the same output root.
var ErrOutputLocked = errors.New("output directory is locked by another slasher run")

const lockFileName = ".slasher.lock"

// acquireOutputLock takes a non-blocking exclusive lock on dir.
func acquireOutputLock(dir string) (*flock.Flock, error) {
	path := filepath.Join(dir, lockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrOutputLocked, path)
	}
	return lock, nil
}
