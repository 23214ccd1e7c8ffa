// Package registry provides a generic thread-safe registry that keeps its
// entries in registration order.
//
// Ordered is designed for read-heavy workloads where readers iterate far
// more often than writers mutate, such as a per-frame broadcast over a set of
// rarely changing listeners. It supports any comparable key type and any
// value type through Go generics.
//
// # Basic Usage
//
//	r := registry.New[string, int]()
//	r.Insert("one", 1)
//	r.Insert("two", 2)
//
//	value, ok := r.Get("one")
//	if ok {
//	    fmt.Println(value) // Output: 1
//	}
//
// Insert never overwrites. To replace an entry, Take it first and Insert the
// replacement; the replacement then sorts after every other entry.
//
// # Ordering
//
// Keys, Snapshot and Range all report entries in the order they were
// inserted. The order depends only on the sequence of Insert and Take calls,
// so it is reproducible across runs.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Range iterates over the view that
// was current when it started, allowing mutations during iteration without
// affecting the iteration itself:
//
//	r.Range(func(key string, value int) bool {
//	    if value < 0 {
//	        r.Take(key) // Won't affect current iteration
//	    }
//	    return true
//	})
package registry
