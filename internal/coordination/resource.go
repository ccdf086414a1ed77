package coordination

import "pgcluster/internal/filelock"

// ResourceFree pairs an unlocked file lock with the subject it guards.
// Holding a ResourceFree asserts nothing about the subject's state — it is
// only the entry point into the lock/subject pair.
type ResourceFree[S Subject] struct {
	Lock    filelock.Unlocked
	Subject S
}

// ResourceShared pairs a shared-locked file lock with its subject. Holding a
// ResourceShared is a read license: any number of processes can hold one at
// once, and the subject is guaranteed not to be destroyed out from under
// them, but none of them may assume they're the only one running it.
type ResourceShared[S Subject] struct {
	Lock    filelock.LockedShared
	Subject S
}

// ResourceExclusive pairs an exclusive-locked file lock with its subject.
// Holding a ResourceExclusive is a write license: the holder is the only
// process touching the subject, so it is safe to start, stop, or destroy it.
type ResourceExclusive[S Subject] struct {
	Lock    filelock.LockedExclusive
	Subject S
}

// NewResourceFree opens path and pairs the resulting lock with subject.
func NewResourceFree[S Subject](path string, subject S) (ResourceFree[S], error) {
	lock, err := filelock.Open(path)
	if err != nil {
		return ResourceFree[S]{}, err
	}
	return ResourceFree[S]{Lock: lock, Subject: subject}, nil
}

// Decompose is the only way to recover the subject out of a ResourceFree
// without going through a lock transition; used when giving up on
// coordination entirely (e.g. a CLI subcommand that just wants the path).
func (r ResourceFree[S]) Decompose() (filelock.Unlocked, S) { return r.Lock, r.Subject }

// TryLockExclusive attempts to acquire the lock without blocking. On
// success ok is true and the exclusive handle is populated; on "would
// block" ok is false and the ResourceFree is returned unchanged so the
// caller can fall back to LockShared.
func (r ResourceFree[S]) TryLockExclusive() (still ResourceFree[S], exclusive ResourceExclusive[S], ok bool, err error) {
	unlocked, locked, ok, err := r.Lock.TryLockExclusive()
	if err != nil {
		return ResourceFree[S]{}, ResourceExclusive[S]{}, false, err
	}
	if !ok {
		return ResourceFree[S]{Lock: unlocked, Subject: r.Subject}, ResourceExclusive[S]{}, false, nil
	}
	return ResourceFree[S]{}, ResourceExclusive[S]{Lock: locked, Subject: r.Subject}, true, nil
}

// LockShared blocks until a shared lock is acquired.
func (r ResourceFree[S]) LockShared() (ResourceShared[S], error) {
	locked, err := r.Lock.LockShared()
	if err != nil {
		return ResourceShared[S]{}, err
	}
	return ResourceShared[S]{Lock: locked, Subject: r.Subject}, nil
}

// LockExclusive blocks until an exclusive lock is acquired.
func (r ResourceFree[S]) LockExclusive() (ResourceExclusive[S], error) {
	locked, err := r.Lock.LockExclusive()
	if err != nil {
		return ResourceExclusive[S]{}, err
	}
	return ResourceExclusive[S]{Lock: locked, Subject: r.Subject}, nil
}

// Close discards the lock file descriptor without ever having locked it.
func (r ResourceFree[S]) Close() error { return r.Lock.Close() }

// Release drops back to ResourceFree, giving up the read license.
func (r ResourceShared[S]) Release() (ResourceFree[S], error) {
	unlocked, err := r.Lock.Unlock()
	if err != nil {
		return ResourceFree[S]{}, err
	}
	return ResourceFree[S]{Lock: unlocked, Subject: r.Subject}, nil
}

// TryLockExclusive attempts to upgrade to an exclusive lock without
// blocking. On "would block" the receiver is returned unchanged so the
// caller keeps its read license.
func (r ResourceShared[S]) TryLockExclusive() (still ResourceShared[S], exclusive ResourceExclusive[S], ok bool, err error) {
	shared, locked, ok, err := r.Lock.TryLockExclusive()
	if err != nil {
		return ResourceShared[S]{}, ResourceExclusive[S]{}, false, err
	}
	if !ok {
		return ResourceShared[S]{Lock: shared, Subject: r.Subject}, ResourceExclusive[S]{}, false, nil
	}
	return ResourceShared[S]{}, ResourceExclusive[S]{Lock: locked, Subject: r.Subject}, true, nil
}

// LockExclusive blocks until the shared lock can be upgraded to exclusive.
func (r ResourceShared[S]) LockExclusive() (ResourceExclusive[S], error) {
	locked, err := r.Lock.LockExclusive()
	if err != nil {
		return ResourceExclusive[S]{}, err
	}
	return ResourceExclusive[S]{Lock: locked, Subject: r.Subject}, nil
}

// Release drops back to ResourceFree, giving up the write license.
func (r ResourceExclusive[S]) Release() (ResourceFree[S], error) {
	unlocked, err := r.Lock.Unlock()
	if err != nil {
		return ResourceFree[S]{}, err
	}
	return ResourceFree[S]{Lock: unlocked, Subject: r.Subject}, nil
}

// LockShared downgrades an exclusive lock to shared, blocking if necessary.
// This never actually blocks in practice (downgrades never conflict), but
// the signature matches the rest of the lattice.
func (r ResourceExclusive[S]) LockShared() (ResourceShared[S], error) {
	locked, err := r.Lock.LockShared()
	if err != nil {
		return ResourceShared[S]{}, err
	}
	return ResourceShared[S]{Lock: locked, Subject: r.Subject}, nil
}
