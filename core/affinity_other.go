//go:build !linux

package core

import "errors"

var errAffinityUnsupported = errors.New("rtask: thread pinning not supported on this platform")

// pinCurrentThread is a stub on platforms without a thread-affinity
// syscall. Tasks still run with a locked OS thread; the core assignment is
// recorded as a hint only.
func pinCurrentThread(cpu int) error {
	return errAffinityUnsupported
}
