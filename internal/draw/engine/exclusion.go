package engine

// ExclusionSet tracks formatted values that range-mode sampling must not
// produce again. Keys are display strings, not integers, so two integers
// that collapse to the same truncated form count as one entry.
//
// ExclusionSet is not safe for concurrent use; the owning Session guards
// it with its own lock.
type ExclusionSet struct {
	members map[string]struct{}
}

// NewExclusionSet returns an empty set.
func NewExclusionSet() *ExclusionSet {
	return &ExclusionSet{members: make(map[string]struct{})}
}

// Add marks value as drawn.
func (e *ExclusionSet) Add(value string) {
	e.members[value] = struct{}{}
}

// Contains reports whether value has been drawn before.
func (e *ExclusionSet) Contains(value string) bool {
	_, ok := e.members[value]
	return ok
}

// Len is the number of excluded values.
func (e *ExclusionSet) Len() int {
	return len(e.members)
}

// Clear empties the set.
func (e *ExclusionSet) Clear() {
	e.members = make(map[string]struct{})
}
