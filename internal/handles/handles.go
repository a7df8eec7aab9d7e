// Package handles maps Go objects to integer handles that can be stored in
// C memory. FFmpeg's custom I/O callbacks receive an opaque void* supplied at
// setup time; storing a Go pointer there would violate the cgo pointer rules,
// so we hand FFmpeg a handle instead and look the object up when the
// callback fires.
package handles

import "sync"

var (
	mu     sync.RWMutex
	table          = make(map[uintptr]any)
	nextID uintptr = 1
)

// Register stores v and returns a handle that is safe to keep in C memory.
// The object stays reachable until Unregister is called.
func Register(v any) uintptr {
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	table[id] = v
	return id
}

// Lookup returns the object for a handle, or nil if it was never registered
// or has been released.
func Lookup(id uintptr) any {
	mu.RLock()
	defer mu.RUnlock()
	return table[id]
}

// Unregister releases a handle so the object can be collected.
func Unregister(id uintptr) {
	mu.Lock()
	defer mu.Unlock()
	delete(table, id)
}

// Count returns the number of live handles. Used by tests to check for leaks.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(table)
}
