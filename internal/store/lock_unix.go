//go:build !windows

package store

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock is a held cross-process advisory lock on one (kind, key) pair.
type Lock struct {
	f *os.File
}

// LockExclusive acquires a named lock, blocking on contention, so that
// at most one process installs a given (kind, key) at a time. The lock is
// released by calling Unlock on the returned Lock.
func (s *Store) LockExclusive(kind Kind, key string) (*Lock, error) {
	path := s.lockFilePath(kind, key)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, &LockError{Kind: kind, Key: key, Err: err}
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, &LockError{Kind: kind, Key: key, Err: err}
	}
	return &Lock{f: f}, nil
}

// Unlock releases the lock and closes its underlying file handle.
func (l *Lock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		l.f.Close()
		return fmt.Errorf("store: unlocking: %w", err)
	}
	return l.f.Close()
}

func (s *Store) lockFilePath(kind Kind, key string) string {
	return s.locksDir() + "/" + string(kind) + "-" + key + ".lock"
}
