//go:build linux

package core

import "golang.org/x/sys/unix"

// pinCurrentThread binds the calling OS thread to the given CPU.
// The caller must already hold runtime.LockOSThread.
func pinCurrentThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
