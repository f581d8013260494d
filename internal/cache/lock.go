package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
)

// ErrLocked is returned when another process holds the run lock.
var ErrLocked = errors.New("cache is locked by another run")

// Lock takes an exclusive, non-blocking lock on path. The caller must Unlock
// the returned lock when the run is over.
func Lock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory for %s: %w", path, err)
	}
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("error acquiring lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	log.Debugf("Acquired run lock %s", path)
	return fl, nil
}

// LockPath returns the lock file path used alongside a cache database.
func LockPath(cachePath string) string {
	return filepath.Clean(cachePath) + ".lock"
}
