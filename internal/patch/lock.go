package patch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// lockFileName is the lock file guarding the apply phase. One bump
// operation per working directory at a time; concurrent invocations wait
// for the lock rather than interleaving writes.
const lockFileName = ".bumpv.lock"

// LockTimeout is how long WithLock waits for a competing operation.
const LockTimeout = 2 * time.Second

const lockRetryInterval = 10 * time.Millisecond

var errLockTimeout = errors.New("lock timeout")

// WithLock runs handler while holding an exclusive flock on the working
// directory's lock file. The lock is released when handler returns.
func WithLock(workDir string, handler func() error) error {
	lockPath := filepath.Join(workDir, lockFileName)

	file, err := acquireLock(lockPath, LockTimeout)
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	defer releaseLock(lockPath, file)

	return handler()
}

func acquireLock(lockPath string, timeout time.Duration) (*os.File, error) {
	deadline := time.Now().Add(timeout)

	for {
		file, openErr := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
		if openErr != nil {
			return nil, fmt.Errorf("open lock file: %w", openErr)
		}

		flockErr := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if flockErr == nil {
			return file, nil
		}

		_ = file.Close()

		if !errors.Is(flockErr, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("flock: %w", flockErr)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", errLockTimeout, lockPath)
		}

		time.Sleep(lockRetryInterval)
	}
}

// releaseLock removes the lock file while still holding the lock, then
// unlocks and closes. Removing first keeps a waiter that already opened
// the old inode from locking a deleted file and succeeding spuriously
// only for an instant; the waiter re-opens on its next retry.
func releaseLock(lockPath string, file *os.File) {
	_ = os.Remove(lockPath)
	_ = unix.Flock(int(file.Fd()), unix.LOCK_UN)
	_ = file.Close()
}
