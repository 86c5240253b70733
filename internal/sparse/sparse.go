// Package sparse provides a sparse set data structure for efficient membership testing.
//
// A sparse set supports O(1) insertion, membership testing and clearing while
// maintaining a dense list of elements for iteration. The acceleration builder
// uses it to deduplicate opcode offsets during the walks that derive minimum
// match length, fixed prefixes and needle sets, where the universe of possible
// values is known up front.
package sparse

// Set is a set of uint32 values that supports O(1) operations.
// It maintains both a sparse array (for membership testing) and a dense array
// (for iteration). The sparse array maps values to indices in the dense array.
type Set struct {
	sparse []uint32 // Maps value -> index in dense
	dense  []uint32 // Contains the actual values
	size   uint32   // Current number of elements
}

// New creates a new sparse set with the given capacity.
// The capacity represents the maximum value that can be stored (exclusive).
func New(capacity uint32) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds a value to the set and reports whether it was newly added.
// Panics if value >= capacity.
func (s *Set) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	s.dense = append(s.dense, value)
	s.sparse[value] = s.size
	s.size++
	return true
}

// Contains returns true if the value is in the set.
func (s *Set) Contains(value uint32) bool {
	if value >= uint32(len(s.sparse)) {
		return false
	}
	idx := s.sparse[value]
	return idx < s.size && s.dense[idx] == value
}

// Len returns the number of elements in the set.
func (s *Set) Len() int {
	return int(s.size)
}

// Values returns the dense slice of elements in insertion order.
// The slice is owned by the set and is invalidated by Insert and Clear.
func (s *Set) Values() []uint32 {
	return s.dense
}

// Clear removes all elements in O(1) without releasing memory.
func (s *Set) Clear() {
	s.dense = s.dense[:0]
	s.size = 0
}
