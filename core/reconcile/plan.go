package reconcile

import (
	"context"
	"fmt"
)

// ReconcileWithPlan performs reconciliation and returns a plan with results and actions.
// It does NOT execute actions; use ApplyPlan for that. Indices are always rebuilt so a
// plan never acts on stale data.
func ReconcileWithPlan(ctx context.Context, spec *Spec, opts Options) (*Plan, error) {
	cache, err := BuildCache(ctx, spec)
	if err != nil {
		return nil, err
	}

	results := reconcileFromCache(cache, spec.Adapter)
	summary, actions := buildPlanFromResults(results, opts)

	return &Plan{
		Results: results,
		Actions: actions,
		Summary: summary,
	}, nil
}

// ApplyPlan executes the actions in a reconcile plan.
// Returns the number of actions executed and any error encountered.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, spec *Spec, plan *Plan, opts Options) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	mutator, ok := spec.Adapter.(Mutator)
	if !ok {
		return 0, fmt.Errorf("adapter %s does not implement Mutator interface", spec.Adapter.Name())
	}
	defer InvalidateCache(spec)

	var deleteDBKeys, deleteStorageKeys []string
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionDeleteDB:
			deleteDBKeys = append(deleteDBKeys, action.Key)
		case ActionDeleteStorage:
			deleteStorageKeys = append(deleteStorageKeys, action.Key)
		}
	}

	if len(deleteDBKeys) > 0 {
		if batchDeleter, ok := mutator.(DBBatchDeleter); ok {
			if err := batchDeleter.DeleteDBBatch(ctx, deleteDBKeys); err != nil {
				return executed, fmt.Errorf("failed to batch delete DB keys: %w", err)
			}
			executed += len(deleteDBKeys)
		} else {
			for _, key := range deleteDBKeys {
				if err := mutator.DeleteDB(ctx, key); err != nil {
					return executed, fmt.Errorf("failed to delete DB key %s: %w", key, err)
				}
				executed++
			}
		}
	}

	for _, key := range deleteStorageKeys {
		if err := mutator.DeleteStorage(ctx, key); err != nil {
			return executed, fmt.Errorf("failed to delete storage key %s: %w", key, err)
		}
		executed++
	}

	return executed, nil
}

// ReconcileAndApply is a convenience wrapper that plans and optionally applies actions.
func ReconcileAndApply(ctx context.Context, spec *Spec, opts Options) (*Plan, int, error) {
	plan, err := ReconcileWithPlan(ctx, spec, opts)
	if err != nil {
		return nil, 0, err
	}

	executed, err := ApplyPlan(ctx, spec, plan, opts)
	return plan, executed, err
}

// buildPlanFromResults generates a summary and action plan from reconciliation results.
func buildPlanFromResults(results []Result, opts Options) (PlanSummary, []Action) {
	summary := PlanSummary{TotalItems: len(results)}
	actions := []Action{}

	for _, result := range results {
		switch {
		case result.DBPresent && !result.StoragePresent:
			summary.MissingStorage++
			if opts.DoPurge {
				actions = append(actions, Action{
					Type:   ActionDeleteDB,
					Key:    result.Key,
					Reason: "missing in: storage",
				})
				summary.PurgeActions++
			}
		case result.StoragePresent && !result.DBPresent:
			summary.MissingDB++
			if opts.DoPurge {
				actions = append(actions, Action{
					Type:   ActionDeleteStorage,
					Key:    result.Key,
					Reason: "missing in: database",
				})
				summary.PurgeActions++
			}
		}
	}

	return summary, actions
}
