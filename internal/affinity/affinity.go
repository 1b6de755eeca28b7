// Package affinity pins the calling goroutine's OS thread to a CPU.
package affinity

import "runtime"

// Pin locks the calling goroutine to its OS thread and binds that thread to
// cpu. A negative cpu only locks the thread. Callers release the lock with
// Unpin from the same goroutine.
func Pin(cpu int) error {
	runtime.LockOSThread()
	if cpu < 0 {
		return nil
	}
	return setAffinityPlatform(cpu)
}

// Unpin releases the OS thread lock taken by Pin.
func Unpin() {
	runtime.UnlockOSThread()
}
