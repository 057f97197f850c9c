//go:build linux || darwin
// +build linux darwin

// Shared-lock guard for `diskimage validate` against a concurrent
// `build` writing the same file.
//
// Grounded on ../../filewatcher_unix.go (and its darwin counterpart)
// once they were the kernel repo's inotify/kqueue file watchers: same
// "declare fd, call into golang.org/x/sys/unix, wrap the error with
// fmt.Errorf" idiom, pointed here at unix.Flock over a plain *os.File
// instead of an inotify watch descriptor. Those two files were removed
// from the kernel build itself (see DESIGN.md) because a freestanding,
// single-core, no-syscall kernel binary has nothing for a file watcher
// to watch; this is the "real job" DESIGN.md's domain-stack entry gives
// golang.org/x/sys/unix in this repository instead.
package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// lockShared takes a shared (read) flock on f for the duration of a
// validate pass, returning a function that releases it. A concurrent
// `build` targeting the same path would need an exclusive lock to
// truncate-and-rewrite, so this is sufficient to keep validate from
// observing a half-written file without blocking other concurrent
// validates.
func lockShared(f *os.File) (unlock func(), err error) {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
		return nil, fmt.Errorf("flock: %w", err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}, nil
}
