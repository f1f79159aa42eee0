// Package cache memoizes derived artifacts by a stable content key.
//
// A Cache is owned by its caller and lives as long as the caller keeps it;
// there is no package-level instance. Entries are created on the first
// successful computation and never evicted. Failed computations are not
// stored, so the next lookup for the same key runs the factory again.
//
// A Cache is not safe for concurrent use. Hosts that drive the patch engine
// from more than one goroutine must serialize access.
package cache

// Cache maps keys to computed values.
type Cache[K comparable, V any] struct {
	entries map[K]V
}

func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: map[K]V{}}
}

// GetOrCompute returns the value stored under key, calling factory to
// compute and store it on a miss. A factory error is returned as is and
// nothing is stored.
func (c *Cache[K, V]) GetOrCompute(key K, factory func() (V, error)) (V, error) {
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	v, err := factory()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = v
	return v, nil
}

// Peek returns the stored value without computing.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}
