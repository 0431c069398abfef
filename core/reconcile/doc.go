// Package reconcile compares two sources of truth, database records and storage
// objects, and plans the deletions that bring them back in line.
//
// # Architecture
//
// 1. Engine: builds the union of keys from both sources and flags presence on each side.
//
// 2. Adapter: model-specific loading of the record index and the object set, plus
//    optional mutations (Mutator, DBBatchDeleter) to execute purge actions.
//
// 3. Cache: TTL-based caching layer with stampede protection for targeted lookups.
//
// Both indices are built concurrently with an errgroup; the first failure cancels the
// other side. A full reconcile lists storage in pages; only ReconcileOne without a
// CacheTTL checks a single key.
//
// # Usage Example
//
//	spec := &reconcile.Spec{Adapter: adapter, CacheTTL: time.Minute}
//
//	plan, err := reconcile.ReconcileWithPlan(ctx, spec, reconcile.Options{DoPurge: true})
//	executed, err := reconcile.ApplyPlan(ctx, spec, plan, reconcile.Options{DoPurge: true, Confirmed: true})
package reconcile
