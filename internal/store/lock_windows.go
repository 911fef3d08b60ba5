//go:build windows

package store

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// Lock is a held cross-process advisory lock on one (kind, key) pair.
type Lock struct {
	f *os.File
}

// LockExclusive acquires a named lock, blocking on contention, via
// LockFileEx so the same key serializes across processes the same way it
// does on unix via flock.
func (s *Store) LockExclusive(kind Kind, key string) (*Lock, error) {
	path := s.lockFilePath(kind, key)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, &LockError{Kind: kind, Key: key, Err: err}
	}

	ol := new(windows.Overlapped)
	err = windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK,
		0, 1, 0, ol,
	)
	if err != nil {
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
	ol := new(windows.Overlapped)
	if err := windows.UnlockFileEx(windows.Handle(l.f.Fd()), 0, 1, 0, ol); err != nil {
		l.f.Close()
		return fmt.Errorf("store: unlocking: %w", err)
	}
	return l.f.Close()
}

func (s *Store) lockFilePath(kind Kind, key string) string {
	return s.locksDir() + "\\" + string(kind) + "-" + key + ".lock"
}
