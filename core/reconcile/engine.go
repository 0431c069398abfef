package reconcile

import (
	"context"
	"sort"
)

// ReconcileAll performs a full reconciliation across all keys.
// It builds both indices, computes the union of keys, and returns a result for each key
// indicating presence on each side.
func ReconcileAll(ctx context.Context, spec *Spec) ([]Result, error) {
	cache, err := BuildCache(ctx, spec)
	if err != nil {
		return nil, err
	}
	return reconcileFromCache(cache, spec.Adapter), nil
}

// ReconcileOne performs a targeted reconciliation for a single key.
// It uses cached indices if caching is enabled, or performs targeted lookups.
func ReconcileOne(ctx context.Context, spec *Spec, key string) (*Result, error) {
	if spec.CacheTTL > 0 {
		cache, err := GetOrBuildCache(ctx, spec)
		if err != nil {
			return nil, err
		}
		result := buildResult(key, cache.DBIndex, cache.StorageSet, spec.Adapter)
		return &result, nil
	}

	item, err := spec.Adapter.QueryDB(ctx, key)
	if err != nil {
		return nil, err
	}

	storagePresent, err := spec.Adapter.CheckStorage(ctx, key)
	if err != nil {
		return nil, err
	}

	return &Result{
		Key:            key,
		DBPresent:      item != nil,
		StoragePresent: storagePresent,
		Metadata:       spec.Adapter.GetMetadata(item),
	}, nil
}

// reconcileFromCache builds sorted results for the union of both indices.
func reconcileFromCache(cache *Cache, adapter Adapter) []Result {
	union := buildUnion(cache.DBIndex, cache.StorageSet)

	results := make([]Result, 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, cache.DBIndex, cache.StorageSet, adapter))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})
	return results
}

// buildUnion creates a union of all keys from the database and storage.
func buildUnion(dbIndex map[string]DBItem, storageSet map[string]struct{}) map[string]struct{} {
	union := make(map[string]struct{}, len(dbIndex)+len(storageSet))
	for key := range dbIndex {
		union[key] = struct{}{}
	}
	for key := range storageSet {
		union[key] = struct{}{}
	}
	return union
}

// buildResult creates a Result for a single key.
func buildResult(key string, dbIndex map[string]DBItem, storageSet map[string]struct{}, adapter Adapter) Result {
	item, dbPresent := dbIndex[key]
	_, storagePresent := storageSet[key]

	result := Result{
		Key:            key,
		DBPresent:      dbPresent,
		StoragePresent: storagePresent,
	}
	if dbPresent {
		result.Metadata = adapter.GetMetadata(item)
	}
	return result
}
