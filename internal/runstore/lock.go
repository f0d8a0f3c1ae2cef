package runstore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const lockFileName = ".clipper.lock"

// DirLock guards an output directory against concurrent pipeline runs.
type DirLock struct {
	fl *flock.Flock
}

func AcquireDirLock(dir string) (DirLock, error) {
	target := strings.TrimSpace(dir)
	if target == "" {
		return DirLock{}, fmt.Errorf("lock directory is required")
	}
	if err := Mkdir(target); err != nil {
		return DirLock{}, err
	}

	fl := flock.New(filepath.Join(target, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return DirLock{}, fmt.Errorf("acquire lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return DirLock{}, fmt.Errorf("output directory is locked by another run: %s", target)
	}
	return DirLock{fl: fl}, nil
}

func (l DirLock) Release() error {
	if l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.fl.Path(), err)
	}
	return nil
}
