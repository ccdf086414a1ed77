// Package filelock provides a typed, three-state wrapper over flock(2)
// advisory locking. The three states — Unlocked, LockedShared,
// LockedExclusive — are distinct Go types, so that a caller can never
// accidentally invoke an operation (like "upgrade to exclusive") on a value
// that has already been consumed by a prior transition: each transition
// takes the receiver by value and returns a new, differently-typed value.
package filelock

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Unlocked is a file handle holding no flock. It is the entry point: open a
// path with Open to get one.
type Unlocked struct {
	f *os.File
}

// LockedShared is a file handle holding a shared (LOCK_SH) flock.
type LockedShared struct {
	f *os.File
}

// LockedExclusive is a file handle holding an exclusive (LOCK_EX) flock.
type LockedExclusive struct {
	f *os.File
}

// Open opens (creating if necessary) the file at path and returns an
// Unlocked handle over it. The file is never written to or read from by
// this package; it exists purely as a lock target.
func Open(path string) (Unlocked, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return Unlocked{}, fmt.Errorf("filelock: open %s: %w", path, err)
	}
	return Unlocked{f: f}, nil
}

// Path returns the path backing the lock, if the underlying os.File
// exposes one.
func (u Unlocked) Path() string { return u.f.Name() }

func flock(f *os.File, how int) error {
	return unix.Flock(int(f.Fd()), how)
}

// LockShared blocks until a shared lock is acquired.
func (u Unlocked) LockShared() (LockedShared, error) {
	if err := flock(u.f, unix.LOCK_SH); err != nil {
		return LockedShared{}, fmt.Errorf("filelock: lock_shared %s: %w", u.f.Name(), err)
	}
	return LockedShared{f: u.f}, nil
}

// TryLockShared attempts to acquire a shared lock without blocking. If the
// OS would have blocked, it returns (u, false, nil): the receiver is
// returned unchanged ("Left"), and the caller should try something else or
// retry later.
func (u Unlocked) TryLockShared() (unlocked Unlocked, locked LockedShared, ok bool, err error) {
	ferr := flock(u.f, unix.LOCK_SH|unix.LOCK_NB)
	if ferr == nil {
		return Unlocked{}, LockedShared{f: u.f}, true, nil
	}
	if ferr == unix.EWOULDBLOCK {
		return u, LockedShared{}, false, nil
	}
	return Unlocked{}, LockedShared{}, false, fmt.Errorf("filelock: try_lock_shared %s: %w", u.f.Name(), ferr)
}

// LockExclusive blocks until an exclusive lock is acquired.
func (u Unlocked) LockExclusive() (LockedExclusive, error) {
	if err := flock(u.f, unix.LOCK_EX); err != nil {
		return LockedExclusive{}, fmt.Errorf("filelock: lock_exclusive %s: %w", u.f.Name(), err)
	}
	return LockedExclusive{f: u.f}, nil
}

// TryLockExclusive attempts to acquire an exclusive lock without blocking.
func (u Unlocked) TryLockExclusive() (unlocked Unlocked, locked LockedExclusive, ok bool, err error) {
	ferr := flock(u.f, unix.LOCK_EX|unix.LOCK_NB)
	if ferr == nil {
		return Unlocked{}, LockedExclusive{f: u.f}, true, nil
	}
	if ferr == unix.EWOULDBLOCK {
		return u, LockedExclusive{}, false, nil
	}
	return Unlocked{}, LockedExclusive{}, false, fmt.Errorf("filelock: try_lock_exclusive %s: %w", u.f.Name(), ferr)
}

// Close releases the underlying file descriptor without changing the lock
// state; used only when discarding an Unlocked value the caller never
// locked.
func (u Unlocked) Close() error { return u.f.Close() }

// Unlock releases a shared lock, blocking if necessary (flock's unlock
// itself never blocks in practice, but the signature mirrors the other
// transitions for consistency).
func (s LockedShared) Unlock() (Unlocked, error) {
	if err := flock(s.f, unix.LOCK_UN); err != nil {
		return Unlocked{}, fmt.Errorf("filelock: unlock %s: %w", s.f.Name(), err)
	}
	return Unlocked{f: s.f}, nil
}

// TryUnlock releases a shared lock without blocking.
func (s LockedShared) TryUnlock() (Unlocked, error) { return s.Unlock() }

// LockExclusive upgrades a shared lock to exclusive, blocking until the
// upgrade succeeds.
func (s LockedShared) LockExclusive() (LockedExclusive, error) {
	if err := flock(s.f, unix.LOCK_EX); err != nil {
		return LockedExclusive{}, fmt.Errorf("filelock: lock_exclusive (upgrade) %s: %w", s.f.Name(), err)
	}
	return LockedExclusive{f: s.f}, nil
}

// TryLockExclusive attempts a non-blocking upgrade from shared to
// exclusive. On "would block" it returns the receiver unchanged.
func (s LockedShared) TryLockExclusive() (shared LockedShared, exclusive LockedExclusive, ok bool, err error) {
	ferr := flock(s.f, unix.LOCK_EX|unix.LOCK_NB)
	if ferr == nil {
		return LockedShared{}, LockedExclusive{f: s.f}, true, nil
	}
	if ferr == unix.EWOULDBLOCK {
		return s, LockedExclusive{}, false, nil
	}
	return LockedShared{}, LockedExclusive{}, false, fmt.Errorf("filelock: try_lock_exclusive (upgrade) %s: %w", s.f.Name(), ferr)
}

// Unlock releases an exclusive lock.
func (e LockedExclusive) Unlock() (Unlocked, error) {
	if err := flock(e.f, unix.LOCK_UN); err != nil {
		return Unlocked{}, fmt.Errorf("filelock: unlock %s: %w", e.f.Name(), err)
	}
	return Unlocked{f: e.f}, nil
}

// TryUnlock releases an exclusive lock without blocking.
func (e LockedExclusive) TryUnlock() (Unlocked, error) { return e.Unlock() }

// LockShared downgrades an exclusive lock to shared, blocking if necessary.
func (e LockedExclusive) LockShared() (LockedShared, error) {
	if err := flock(e.f, unix.LOCK_SH); err != nil {
		return LockedShared{}, fmt.Errorf("filelock: lock_shared (downgrade) %s: %w", e.f.Name(), err)
	}
	return LockedShared{f: e.f}, nil
}

// TryLockShared attempts a non-blocking downgrade from exclusive to shared.
func (e LockedExclusive) TryLockShared() (exclusive LockedExclusive, shared LockedShared, ok bool, err error) {
	ferr := flock(e.f, unix.LOCK_SH|unix.LOCK_NB)
	if ferr == nil {
		return LockedExclusive{}, LockedShared{f: e.f}, true, nil
	}
	if ferr == unix.EWOULDBLOCK {
		return e, LockedShared{}, false, nil
	}
	return LockedExclusive{}, LockedShared{}, false, fmt.Errorf("filelock: try_lock_shared (downgrade) %s: %w", e.f.Name(), ferr)
}
