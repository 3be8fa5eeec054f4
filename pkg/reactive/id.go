package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for effects.
var globalIDCounter uint64

// nextID returns the next unique ID. IDs are monotonically increasing and
// never reused, so they also order effects by creation.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
