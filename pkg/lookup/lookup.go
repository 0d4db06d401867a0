// Package lookup provides the key-indexed storage contract backing the
// operator traces and work queues, with three interchangeable
// implementations: a general-purpose map, a linear-scan slice for small key
// populations, and a shift-indexed dense array for densely packed unsigned
// keys. Callers select the implementation through a Factory at construction
// time; the consumers stay agnostic to which strategy backs a given key type.
package lookup

// Lookup is a key-value association. All implementations are semantically
// equivalent; they differ in complexity and space trade-offs.
//
// Pointers returned by GetRef and EntryOrInsert are valid only until the
// next mutating call on the same Lookup: implementations are free to move
// entries on insert or removal.
type Lookup[K comparable, V any] interface {
	// Get returns the value stored under key.
	Get(key K) (V, bool)
	// GetRef returns a pointer to the value stored under key for in-place
	// mutation, or nil if the key is absent.
	GetRef(key K) *V
	// EntryOrInsert returns a pointer to the value stored under key,
	// inserting one produced by factory first if the key is absent. The
	// factory is only invoked on insertion.
	EntryOrInsert(key K, factory func() V) *V
	// Remove deletes the entry for key and returns its value.
	Remove(key K) (V, bool)
}

// Factory produces a Lookup for a given number of key bits already consumed
// by upstream partitioning. Only the dense implementation cares about the
// parameter; the others ignore it.
type Factory[K comparable, V any] func(partitionBits uint) Lookup[K, V]
