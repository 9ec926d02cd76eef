// Package store provides the path-addressed reactive state store behind each
// Orbit scope.
//
// A Store holds one root object. Reads and writes go through Object and Array
// views that know their own field path, so every write can notify the
// subscribers of exactly the path it touched:
//
//	s := store.New()
//	root, _ := s.Init(map[string]any{
//	    "count": 1,
//	    "double": store.Computed(func(this *store.Object) any {
//	        return this.Int("count") * 2
//	    }),
//	})
//
//	unsubscribe := s.Subscribe("double", func(v any) { fmt.Println(v) }) // prints 2
//	root.Set("count", 2)                                                 // prints 4
//	unsubscribe()
//
// # Dependency Tracking
//
// Computed values are evaluated on every read. While one is evaluating, its
// path sits on the store's caller stack and every path read during the
// evaluation records a dependency edge back to it. Writing a path notifies
// its own subscribers and then walks the recorded edges depth first, so
// subscribers of computed values (including computed values that read other
// computed values) see the change. Each notification pass visits a path at
// most once, which also stops cyclic dependency graphs.
//
// # Arrays
//
// Array mutators (Push, Pop, Shift, Unshift, Splice, Sort, Reverse) notify
// the array's own path unconditionally after mutating, since they can move
// any number of indices at once.
//
// # Threading
//
// A Store belongs to one scope and is used from that scope's single logical
// thread; it performs no locking. Notification runs synchronously inside the
// write call, in mutation order.
package store
