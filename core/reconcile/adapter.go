package reconcile

import "context"

// Adapter defines how to load both sides of a reconciliation for one model.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "uploadedfiles").
	Name() string

	// LoadDBIndex loads all relevant records indexed by object key.
	// Implementations should use one query selecting minimal columns.
	LoadDBIndex(ctx context.Context) (map[string]DBItem, error)

	// LoadStorageSet lists the objects the model is responsible for. Implementations
	// should use paginated listing and avoid per-item existence calls.
	LoadStorageSet(ctx context.Context) (map[string]struct{}, error)

	// QueryDB looks up the record of a single key. Returns nil if no match is found.
	QueryDB(ctx context.Context, key string) (DBItem, error)

	// CheckStorage checks if a single object exists.
	CheckStorage(ctx context.Context, key string) (bool, error)

	// GetMetadata returns model-specific metadata for a record. item may be nil.
	GetMetadata(item DBItem) map[string]string
}

// Mutator is implemented by adapters able to execute purge actions.
type Mutator interface {
	// DeleteDB removes the record of key.
	DeleteDB(ctx context.Context, key string) error

	// DeleteStorage removes the object key.
	DeleteStorage(ctx context.Context, key string) error
}

// DBBatchDeleter is an optional Mutator extension removing many records at once.
type DBBatchDeleter interface {
	DeleteDBBatch(ctx context.Context, keys []string) error
}
