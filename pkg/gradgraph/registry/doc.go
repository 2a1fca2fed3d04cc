// Package registry provides a generic thread-safe registry for values indexed
// by an ordered key.
//
// Registry is designed for read-heavy workloads using sync.RWMutex. It supports
// any ordered key type and any value type through Go generics. Keys being
// ordered lets Keys and Range report entries in a stable sorted order, so
// output built from a registry (operation listings, error messages) is
// deterministic.
//
// # Basic Usage
//
// Create a registry and register values:
//
//	r := registry.New[string, int]()
//	r.Register("one", 1)
//	r.Register("two", 2)
//
//	value, ok := r.Get("one")
//	if ok {
//	    fmt.Println(value) // Output: 1
//	}
//
// RegisterMany adds a batch of entries in one call, which keeps init-time
// registration of built-in sets compact:
//
//	r.RegisterMany(map[string]int{"three": 3, "four": 4})
//
// # Lookup Tables
//
// Registries work well for name-to-implementation tables where behavior is
// resolved by string at run time:
//
//	ops := registry.New[string, Op]()
//	ops.Register("exp", expOp)
//	ops.Register("log", logOp)
//
//	// Later, resolve an operation by name
//	op, ok := ops.Get("exp")
//	if ok {
//	    y := op.Apply(x)
//	}
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. The Range method iterates
// over a snapshot of the registry in sorted key order, allowing mutations
// during iteration without affecting the iteration itself:
//
//	r.Range(func(key string, value int) bool {
//	    // Safe to call r.Register() here
//	    return true // continue iteration
//	})
package registry
