package scene

import "sync/atomic"

// active is the process-wide builder visible to call sites that have no
// explicit builder reference.
var active atomic.Pointer[Builder]

// SetActive installs b as the active builder. A nil b clears it.
func SetActive(b *Builder) {
	active.Store(b)
}

// Active returns the active builder, or nil when no import is running.
func Active() *Builder {
	return active.Load()
}
