package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileWithPlan_PurgeActions(t *testing.T) {
	spec := &Spec{Adapter: newMockAdapter()}

	plan, err := ReconcileWithPlan(context.Background(), spec, Options{DoPurge: true})
	require.NoError(t, err)

	assert.Equal(t, 3, plan.Summary.TotalItems)
	assert.Equal(t, 1, plan.Summary.MissingStorage)
	assert.Equal(t, 1, plan.Summary.MissingDB)
	assert.Equal(t, 2, plan.Summary.PurgeActions)
	assert.Equal(t, []Action{
		{Type: ActionDeleteDB, Key: "chris/uploads/a", Reason: "missing in: storage"},
		{Type: ActionDeleteStorage, Key: "chris/uploads/c", Reason: "missing in: database"},
	}, plan.Actions)
}

func TestReconcileWithPlan_ReportOnly(t *testing.T) {
	plan, err := ReconcileWithPlan(context.Background(), &Spec{Adapter: newMockAdapter()}, Options{})
	require.NoError(t, err)
	assert.Empty(t, plan.Actions)
	assert.Equal(t, 0, plan.Summary.PurgeActions)
	assert.Equal(t, 1, plan.Summary.MissingDB)
}

func TestApplyPlan_ConfirmationGating(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		executed int
	}{
		{"NotConfirmed", Options{DoPurge: true}, 0},
		{"DryRun", Options{DoPurge: true, Confirmed: true, DryRun: true}, 0},
		{"Confirmed", Options{DoPurge: true, Confirmed: true}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newMockAdapter()
			spec := &Spec{Adapter: adapter}

			plan, executed, err := ReconcileAndApply(context.Background(), spec, tt.opts)
			require.NoError(t, err)
			assert.Len(t, plan.Actions, 2)
			assert.Equal(t, tt.executed, executed)
			assert.Len(t, adapter.deletedDB, tt.executed/2)
			assert.Len(t, adapter.deletedStorage, tt.executed/2)
		})
	}
}

type batchAdapter struct {
	*mockAdapter
}

func (b *batchAdapter) DeleteDBBatch(ctx context.Context, keys []string) error {
	b.batchCalls++
	b.deletedDB = append(b.deletedDB, keys...)
	return nil
}

func TestApplyPlan_UsesBatchDeletion(t *testing.T) {
	adapter := &batchAdapter{mockAdapter: newMockAdapter()}
	adapter.storageSet = map[string]struct{}{}
	spec := &Spec{Adapter: adapter}

	_, executed, err := ReconcileAndApply(context.Background(), spec, Options{DoPurge: true, Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 2, executed)
	assert.Equal(t, 1, adapter.batchCalls)
	assert.ElementsMatch(t, []string{"chris/uploads/a", "chris/uploads/b"}, adapter.deletedDB)
}

type readOnlyAdapter struct {
	Adapter
}

func TestApplyPlan_RequiresMutator(t *testing.T) {
	spec := &Spec{Adapter: readOnlyAdapter{Adapter: newMockAdapter()}}
	plan := &Plan{Actions: []Action{{Type: ActionDeleteDB, Key: "x"}}}

	_, err := ApplyPlan(context.Background(), spec, plan, Options{DoPurge: true, Confirmed: true})
	assert.ErrorContains(t, err, "Mutator")
}
