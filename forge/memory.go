package forge

import (
	"fmt"

	"dusk/typing"
)

// WordSize is the storage slot width of the target VM in bytes.
const WordSize = 8

// Memory is the layout manager for function-local storage.  Every symbol the
// symbol table accepts gets a slot here; the analyzer resets the manager at
// the end of each function so offsets restart for the next frame.
type Memory struct {
	offsets map[string]int
	next    int
}

// NewMemory creates an empty layout manager.
func NewMemory() *Memory {
	return &Memory{offsets: make(map[string]int)}
}

// Allocate records a storage slot for name and returns its frame offset.
func (m *Memory) Allocate(name string, dt typing.DataType) (int, error) {
	if _, ok := m.offsets[name]; ok {
		return 0, fmt.Errorf("storage already allocated for %q", name)
	}

	if typing.BaseOf(dt) == typing.Undefined {
		return 0, fmt.Errorf("cannot allocate storage of type %s for %q", dt.Repr(), name)
	}

	offset := m.next
	m.offsets[name] = offset
	m.next += WordSize
	return offset, nil
}

// Release frees the slot held by name so a later block may reuse the
// identifier.  The frame offset itself is not reused within the function.
func (m *Memory) Release(name string) {
	delete(m.offsets, name)
}

// OffsetOf returns the frame offset previously allocated for name.
func (m *Memory) OffsetOf(name string) (int, bool) {
	offset, ok := m.offsets[name]
	return offset, ok
}

// FrameSize returns the number of bytes allocated so far.
func (m *Memory) FrameSize() int {
	return m.next
}

// Reset discards all allocations for the next function frame.
func (m *Memory) Reset() {
	m.offsets = make(map[string]int)
	m.next = 0
}
