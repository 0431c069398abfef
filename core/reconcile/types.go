package reconcile

import "time"

// Result is the reconciliation output for a single object key.
type Result struct {
	// Key is the object key, which is also the record's file name.
	Key string `json:"key"`

	// DBPresent indicates whether a database record points at the key.
	DBPresent bool `json:"db_present"`

	// StoragePresent indicates whether the object exists in storage.
	StoragePresent bool `json:"storage_present"`

	// Metadata contains adapter-specific data (e.g., record id, owner).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Complete reports whether the key is present on both sides.
func (r Result) Complete() bool {
	return r.DBPresent && r.StoragePresent
}

// Spec defines the configuration for a reconciliation operation.
type Spec struct {
	// Adapter provides model-specific reconciliation logic.
	Adapter Adapter

	// CacheTTL is the time-to-live for cached indices.
	// If zero, caching is disabled.
	CacheTTL time.Duration
}

// CacheKey returns a unique key for caching based on spec parameters.
func (s *Spec) CacheKey() string {
	return s.Adapter.Name()
}

// DBItem represents a database entity with arbitrary fields.
// Adapters define the concrete type.
type DBItem any

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionDeleteDB deletes a record whose object is gone.
	ActionDeleteDB ActionType = "delete_db"
	// ActionDeleteStorage deletes an object no record points at.
	ActionDeleteStorage ActionType = "delete_storage"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the object key.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// Plan contains reconciliation results and planned actions.
type Plan struct {
	// Results contains per-key reconciliation data.
	Results []Result `json:"results"`

	// Actions contains planned mutation operations.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalItems is the total number of unique keys.
	TotalItems int `json:"total_items"`

	// MissingStorage counts records whose object is missing.
	MissingStorage int `json:"missing_storage"`

	// MissingDB counts objects without a record.
	MissingDB int `json:"missing_db"`

	// PurgeActions counts planned purge (delete) actions.
	PurgeActions int `json:"purge_actions"`
}

// Options controls reconcile behavior for purge operations.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoPurge plans deletion of keys missing on either side.
	DoPurge bool

	// Confirmed indicates user has confirmed destructive actions.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}
